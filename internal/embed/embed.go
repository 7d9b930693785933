// Package embed defines the text-encoder boundary.
//
// The core treats encoding as an opaque function text -> vector with a fixed
// output dimension. Implementations here: a deterministic hash embedder for
// offline use and tests, and a client for OpenAI-compatible embedding APIs.
package embed

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnavailable indicates the encoder failed or timed out. It is fatal to
// the single call that hit it and is never retried inside the core.
var ErrUnavailable = errors.New("embedding unavailable")

// Embedder converts text to a dense vector.
type Embedder interface {
	// Embed returns the vector for a single text. The call may block on
	// external I/O; callers must not hold store locks across it.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the fixed output vector size.
	Dimensions() int
}

// timeoutEmbedder bounds each Embed call and maps failures to ErrUnavailable.
type timeoutEmbedder struct {
	inner   Embedder
	timeout time.Duration
}

// WithTimeout wraps e so every Embed call is bounded by d. Any failure,
// including the deadline, surfaces as a wrapped ErrUnavailable; no partial
// state escapes. A non-positive d returns e unchanged.
func WithTimeout(e Embedder, d time.Duration) Embedder {
	if d <= 0 {
		return e
	}
	return &timeoutEmbedder{inner: e, timeout: d}
}

func (t *timeoutEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	vec, err := t.inner.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return vec, nil
}

func (t *timeoutEmbedder) Dimensions() int { return t.inner.Dimensions() }
