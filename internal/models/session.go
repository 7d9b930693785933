// Package models defines the data types shared by the graph store, the
// vector store, and the matching engine.
package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidRequest indicates a malformed session or match request. It is
// always returned before any store mutation.
var ErrInvalidRequest = errors.New("invalid request")

// UserType distinguishes the two sides of a mentorship relation.
type UserType string

const (
	UserTypeMentor UserType = "mentor"
	UserTypeMentee UserType = "mentee"
)

// Valid reports whether t is a known user type.
func (t UserType) Valid() bool {
	return t == UserTypeMentor || t == UserTypeMentee
}

// Session is a single ingested interaction. Sessions are immutable after
// creation and are never deleted in-process.
type Session struct {
	SessionID  string         `json:"session_id"`
	UserID     string         `json:"user_id"`
	UserType   UserType       `json:"user_type"`
	Transcript string         `json:"transcript"`
	Timestamp  time.Time      `json:"timestamp"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Normalize fills in the fields callers may omit: a fresh session ID and the
// current time.
func (s *Session) Normalize() {
	if s.SessionID == "" {
		s.SessionID = uuid.NewString()
	}
	if s.Timestamp.IsZero() {
		s.Timestamp = time.Now().UTC()
	}
}

// Validate checks the fields that must be present before ingestion touches
// any store. An empty transcript is allowed; it simply yields no facts.
func (s *Session) Validate() error {
	if s.UserID == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidRequest)
	}
	if !s.UserType.Valid() {
		return fmt.Errorf("%w: user_type must be %q or %q, got %q",
			ErrInvalidRequest, UserTypeMentor, UserTypeMentee, s.UserType)
	}
	return nil
}

// MatchRequest asks for up to TopK mentor suggestions for a user.
type MatchRequest struct {
	UserID string `json:"user_id"`
	TopK   int    `json:"top_k"`
}

// Validate rejects malformed requests before any store access.
func (r MatchRequest) Validate() error {
	if r.UserID == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidRequest)
	}
	if r.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive, got %d", ErrInvalidRequest, r.TopK)
	}
	return nil
}

// MatchResult is one scored mentor suggestion. Results are produced fresh
// per call and never persisted.
type MatchResult struct {
	MentorID  string  `json:"mentor_id"`
	Score     float64 `json:"score"`
	Rationale string  `json:"rationale"`
}
