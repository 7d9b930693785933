package embed

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"github.com/mentorgraph/mentorgraph/internal/vecmath"
)

// DefaultDimensions matches the output size of all-MiniLM-L6-v2, the model
// the real deployments encode with.
const DefaultDimensions = 384

// Deterministic produces stable pseudo-embeddings from token hashes: each
// token seeds an LCG stream that is summed into the output, so texts sharing
// vocabulary land near each other and identical texts embed identically.
// Good enough for offline development and deterministic tests; not a
// semantic model.
type Deterministic struct {
	dims int
}

// NewDeterministic creates a hash embedder. A non-positive dims falls back
// to DefaultDimensions.
func NewDeterministic(dims int) *Deterministic {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &Deterministic{dims: dims}
}

// Embed returns the unit-normalized token-bag vector for text.
func (e *Deterministic) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float32, e.dims)
	for _, tok := range tokenize(text) {
		h := fnv.New64a()
		h.Write([]byte(tok))
		seed := h.Sum64()
		for i := range vec {
			seed = seed*6364136223846793005 + 1442695040888963407
			vec[i] += float32(int64(seed)) / float32(math.MaxInt64)
		}
	}
	return vecmath.Normalize(vec), nil
}

// Dimensions returns the embedding size.
func (e *Deterministic) Dimensions() int { return e.dims }

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}
