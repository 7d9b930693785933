// Package privacy provides optional differential-privacy helpers applied at
// the boundary. The core stores never call these themselves; they accept
// pre- or post-processed vectors of the same fixed dimension.
package privacy

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"math/rand"
)

// DefaultEpsilon is the privacy budget used when none is configured.
const DefaultEpsilon = 1.0

// Engine perturbs vectors with Laplace noise and pseudonymizes user IDs.
type Engine struct {
	epsilon float64
}

// NewEngine creates a privacy engine. A non-positive epsilon falls back to
// DefaultEpsilon.
func NewEngine(epsilon float64) *Engine {
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}
	return &Engine{epsilon: epsilon}
}

// AddNoise returns a copy of vec with Laplace noise of scale 1/epsilon added
// to every component. The noise scale is simplified; a production deployment
// would calibrate it against query sensitivity.
func (e *Engine) AddNoise(vec []float32) []float32 {
	scale := 1.0 / e.epsilon
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = v + float32(laplace(scale))
	}
	return out
}

// Anonymize returns a stable 12-character pseudonym for a user ID.
func (e *Engine) Anonymize(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])[:12]
}

// laplace samples Laplace(0, scale) by inverse transform.
func laplace(scale float64) float64 {
	u := rand.Float64() - 0.5
	return -scale * sign(u) * math.Log(1-2*math.Abs(u))
}

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}
