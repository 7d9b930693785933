// Package vecstore implements the append-only vector log backing matching.
//
// Entries are never mutated or deleted; entry IDs equal insertion order, and
// that order is the only notion of recency. "The current vector for a user"
// is therefore a derived view: the highest-ID profile snapshot for that user.
// Stale snapshots stay physically present and searchable, which trades
// unbounded growth for a simple, auditable history.
package vecstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/mentorgraph/mentorgraph/internal/models"
	"github.com/mentorgraph/mentorgraph/internal/vecmath"
)

var (
	// ErrDimensionMismatch indicates a vector of the wrong length. This is a
	// programmer or configuration error and must not be silently swallowed.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrNoSnapshot indicates the user has no profile snapshot yet.
	ErrNoSnapshot = errors.New("no profile snapshot for user")

	// ErrNotFound indicates an entry ID outside the log.
	ErrNotFound = errors.New("entry not found")
)

// Kind distinguishes what an entry's vector represents.
type Kind string

const (
	// KindSessionSnapshot is the embedding of a single raw transcript.
	KindSessionSnapshot Kind = "session_snapshot"
	// KindProfileSnapshot is the embedding of a user's flattened profile
	// context. Only these represent "this user's embedding changed".
	KindProfileSnapshot Kind = "profile_snapshot"
)

// Metadata describes one entry.
type Metadata struct {
	UserID       string          `json:"user_id"`
	UserType     models.UserType `json:"user_type"`
	Kind         Kind            `json:"kind"`
	CreatedOrder int64           `json:"created_order"`
}

// Hit is one search result.
type Hit struct {
	EntryID int64    `json:"entry_id"`
	Meta    Metadata `json:"metadata"`
	Score   float64  `json:"score"`
}

// EmbedFunc returns a dense vector for the given text. The call may block on
// external I/O, so the store never invokes it while holding its lock.
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// entry is one immutable log record. Index in the log equals entry ID.
type entry struct {
	vector []float32
	meta   Metadata
}

// Store is the append-only vector log. A single writer lock covers appends;
// searches and reconstructions share a read lock. A latest read racing a
// concurrent append for the same user may observe either the pre- or
// post-update vector, never a torn one.
type Store struct {
	dim int

	mu      sync.RWMutex
	entries []entry
	// latest maps user ID to its highest profile-snapshot entry ID,
	// maintained on append so reads avoid the O(N) backward scan.
	latest map[string]int64
}

// New creates an empty store for vectors of the given fixed dimension.
func New(dim int) *Store {
	return &Store{
		dim:    dim,
		latest: make(map[string]int64),
	}
}

// Dimensions returns the fixed vector dimension D.
func (s *Store) Dimensions() int { return s.dim }

// Len returns the number of entries appended so far.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Append validates the vector dimension, assigns the next sequential entry
// ID, and stores a copy of the vector. O(1) amortized.
func (s *Store) Append(vec []float32, meta Metadata) (int64, error) {
	if len(vec) != s.dim {
		return 0, fmt.Errorf("%w: got %d, store dimension is %d", ErrDimensionMismatch, len(vec), s.dim)
	}

	stored := make([]float32, len(vec))
	copy(stored, vec)

	s.mu.Lock()
	defer s.mu.Unlock()

	id := int64(len(s.entries))
	meta.CreatedOrder = id
	s.entries = append(s.entries, entry{vector: stored, meta: meta})
	if meta.Kind == KindProfileSnapshot {
		s.latest[meta.UserID] = id
	}
	return id, nil
}

// Search returns up to k nearest entries by ascending L2 distance, scored as
// 1/(1+distance). Ties break toward the lower entry ID, so identical inputs
// always produce identical output. An empty store yields an empty slice,
// never an error.
func (s *Store) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != s.dim {
		return nil, fmt.Errorf("%w: query has %d, store dimension is %d", ErrDimensionMismatch, len(query), s.dim)
	}
	if k <= 0 {
		return []Hit{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		id   int64
		dist float64
	}
	all := make([]scored, len(s.entries))
	for i, e := range s.entries {
		all[i] = scored{id: int64(i), dist: vecmath.L2Distance(query, e.vector)}
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].dist != all[j].dist {
			return all[i].dist < all[j].dist
		}
		return all[i].id < all[j].id
	})

	if k > len(all) {
		k = len(all)
	}
	hits := make([]Hit, k)
	for i := 0; i < k; i++ {
		hits[i] = Hit{
			EntryID: all[i].id,
			Meta:    s.entries[all[i].id].meta,
			Score:   1.0 / (1.0 + all[i].dist),
		}
	}
	return hits, nil
}

// Reconstruct returns a copy of the stored vector for any entry ID,
// regardless of entry kind.
func (s *Store) Reconstruct(id int64) ([]float32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id < 0 || id >= int64(len(s.entries)) {
		return nil, fmt.Errorf("%w: entry %d", ErrNotFound, id)
	}
	out := make([]float32, s.dim)
	copy(out, s.entries[id].vector)
	return out, nil
}

// LatestSnapshot returns the vector of the highest-ID profile snapshot for
// the user, or ErrNoSnapshot.
func (s *Store) LatestSnapshot(userID string) ([]float32, error) {
	s.mu.RLock()
	id, ok := s.latest[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSnapshot, userID)
	}
	return s.Reconstruct(id)
}

// latestByScan walks the log backwards looking for the user's most recent
// profile snapshot. It is the definitional form of LatestSnapshot; tests use
// it to cross-check the side map.
func (s *Store) latestByScan(userID string) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := int64(len(s.entries)) - 1; i >= 0; i-- {
		m := s.entries[i].meta
		if m.UserID == userID && m.Kind == KindProfileSnapshot {
			return i, true
		}
	}
	return 0, false
}

// RecordProfile embeds the flattened context and appends it as the user's
// new profile snapshot. An empty context is a no-op: cold-start users have
// no usable signal and must not be given a garbage vector. This is the sole
// write path that means "this user's embedding changed".
//
// The embed call runs outside the store lock; its failure surfaces to the
// caller with no partial state.
func (s *Store) RecordProfile(ctx context.Context, userID string, userType models.UserType, contextText string, embed EmbedFunc) error {
	if contextText == "" {
		return nil
	}

	vec, err := embed(ctx, contextText)
	if err != nil {
		return fmt.Errorf("embed profile for %s: %w", userID, err)
	}

	_, err = s.Append(vec, Metadata{
		UserID:   userID,
		UserType: userType,
		Kind:     KindProfileSnapshot,
	})
	return err
}
