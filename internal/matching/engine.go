// Package matching implements the explore/exploit match policy.
//
// Each call is a single deterministic decision procedure: draw the epsilon
// coin, pick a query vector (latest profile snapshot or cold-start text),
// search the vector store wider than requested, filter, truncate, and fall
// back to a fixed low-confidence default if nothing survives. The caller
// contract guarantees at least one suggestion per request.
package matching

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/mentorgraph/mentorgraph/internal/embed"
	"github.com/mentorgraph/mentorgraph/internal/models"
	"github.com/mentorgraph/mentorgraph/internal/vecstore"
)

// ColdStartQuery is embedded when the requesting user has no profile
// snapshot yet. The exploit path must work even for never-seen users.
const ColdStartQuery = "new user looking for mentorship"

// Config holds the engine's tunables. Epsilon and the random draw are
// injected rather than hardcoded so tests can force either branch.
type Config struct {
	// Epsilon is the exploration probability in [0,1].
	Epsilon float64

	// SearchK is the minimum raw candidate count fetched per search. The
	// engine always searches wider than top_k because filtering may discard
	// most raw hits.
	SearchK int

	// FallbackMentorID and FallbackScore form the fixed suggestion returned
	// when filtering leaves nothing. This is policy, not error masking.
	FallbackMentorID string
	FallbackScore    float64

	// ExploreScore is the fixed confidence attached to exploration results.
	ExploreScore float64

	// Rand returns a draw in [0,1). Nil means the package-level source.
	Rand func() float64
}

// DefaultConfig returns the production policy settings.
func DefaultConfig() Config {
	return Config{
		Epsilon:          0.1,
		SearchK:          20,
		FallbackMentorID: "default_mentor_01",
		FallbackScore:    0.1,
		ExploreScore:     0.5,
	}
}

// CandidateFilter decides whether a raw search hit may be offered to the
// requesting user.
type CandidateFilter func(req models.MatchRequest, hit vecstore.Hit) bool

// MenteeSeeksMentor is the default filter: no self-matches, profile
// snapshots only (raw session vectors are never ranked against profile
// vectors), and mentors only.
func MenteeSeeksMentor(req models.MatchRequest, hit vecstore.Hit) bool {
	if hit.Meta.UserID == req.UserID {
		return false
	}
	if hit.Meta.Kind != vecstore.KindProfileSnapshot {
		return false
	}
	return hit.Meta.UserType == models.UserTypeMentor
}

// Engine ranks mentor candidates for match requests.
type Engine struct {
	cfg      Config
	store    *vecstore.Store
	embedder embed.Embedder
	filter   CandidateFilter
}

// NewEngine creates an engine using the MenteeSeeksMentor filter.
func NewEngine(store *vecstore.Store, embedder embed.Embedder, cfg Config) *Engine {
	return &Engine{
		cfg:      cfg,
		store:    store,
		embedder: embedder,
		filter:   MenteeSeeksMentor,
	}
}

// WithFilter swaps the candidate filter and returns the engine.
func (e *Engine) WithFilter(f CandidateFilter) *Engine {
	if f != nil {
		e.filter = f
	}
	return e
}

// Match returns between 1 and req.TopK scored suggestions. Malformed
// requests fail before any store access; store and encoder failures
// propagate to the caller and are never retried here.
func (e *Engine) Match(ctx context.Context, req models.MatchRequest) ([]models.MatchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if e.draw() < e.cfg.Epsilon {
		return e.explore(), nil
	}

	query, err := e.queryVector(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	k := e.cfg.SearchK
	if floor := 4 * req.TopK; k < floor {
		k = floor
	}
	hits, err := e.store.Search(query, k)
	if err != nil {
		return nil, err
	}

	matches := make([]models.MatchResult, 0, req.TopK)
	seen := make(map[string]bool)
	for _, h := range hits {
		if !e.filter(req, h) {
			continue
		}
		// A user may have many superseded snapshots in the log; offer each
		// mentor once, at their best-scoring snapshot.
		if seen[h.Meta.UserID] {
			continue
		}
		seen[h.Meta.UserID] = true

		matches = append(matches, models.MatchResult{
			MentorID:  h.Meta.UserID,
			Score:     h.Score,
			Rationale: fmt.Sprintf("High semantic alignment (score %.2f)", h.Score),
		})
		if len(matches) == req.TopK {
			break
		}
	}

	if len(matches) == 0 {
		return []models.MatchResult{{
			MentorID:  e.cfg.FallbackMentorID,
			Score:     e.cfg.FallbackScore,
			Rationale: "Standard recommendation (cold start).",
		}}, nil
	}
	return matches, nil
}

// explore returns exactly one synthetic low-confidence result, regardless of
// the requested top_k.
func (e *Engine) explore() []models.MatchResult {
	return []models.MatchResult{{
		MentorID:  fmt.Sprintf("random_explorer_%d", 100+rand.Intn(900)),
		Score:     e.cfg.ExploreScore,
		Rationale: "Exploratory match to diversify connections.",
	}}
}

// queryVector returns the user's latest profile snapshot, or the embedded
// cold-start query when none exists yet.
func (e *Engine) queryVector(ctx context.Context, userID string) ([]float32, error) {
	vec, err := e.store.LatestSnapshot(userID)
	if err == nil {
		return vec, nil
	}
	if !errors.Is(err, vecstore.ErrNoSnapshot) {
		return nil, err
	}

	vec, err = e.embedder.Embed(ctx, ColdStartQuery)
	if err != nil {
		return nil, fmt.Errorf("embed cold-start query: %w", err)
	}
	return vec, nil
}

func (e *Engine) draw() float64 {
	if e.cfg.Rand != nil {
		return e.cfg.Rand()
	}
	return rand.Float64()
}
