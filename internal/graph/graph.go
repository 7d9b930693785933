// Package graph implements the per-user profile graph store.
//
// Each user owns one directed multigraph whose nodes are sessions and
// extracted facts, connected by MENTIONS edges. Graphs are created lazily on
// first ingest, grow monotonically, and live for the process lifetime.
package graph

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mentorgraph/mentorgraph/internal/extract"
	"github.com/mentorgraph/mentorgraph/internal/models"
)

// LabelSession marks session nodes; fact nodes carry their extract.Label.
const LabelSession = "Session"

// RelationMentions is the edge relation from a session node to a fact node.
const RelationMentions = "MENTIONS"

// contextSeparator joins flattened facts in ContextFor output.
const contextSeparator = ". "

// Node is a single graph node: either a session or a fact.
type Node struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Text      string    `json:"text,omitempty"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// Edge is a weighted, directed relation between two nodes.
type Edge struct {
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Relation string  `json:"relation"`
	Weight   float64 `json:"weight"`
}

// userGraph holds one user's nodes and edges. The insertion-order slice is
// the source of truth for deterministic context flattening.
type userGraph struct {
	mu    sync.RWMutex
	order []string
	nodes map[string]Node
	edges []Edge
}

func newUserGraph() *userGraph {
	return &userGraph{
		nodes: make(map[string]Node),
	}
}

func (g *userGraph) addNode(n Node) {
	if _, exists := g.nodes[n.ID]; !exists {
		g.order = append(g.order, n.ID)
	}
	g.nodes[n.ID] = n
}

// Store owns all per-user profile graphs, keyed by user ID. The outer lock
// only guards the map; each graph serializes its own mutations, so ingests
// for different users never contend.
type Store struct {
	mu     sync.RWMutex
	graphs map[string]*userGraph
}

// NewStore creates an empty profile graph store.
func NewStore() *Store {
	return &Store{
		graphs: make(map[string]*userGraph),
	}
}

func (s *Store) getOrCreate(userID string) *userGraph {
	s.mu.RLock()
	g, ok := s.graphs[userID]
	s.mu.RUnlock()
	if ok {
		return g
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.graphs[userID]; ok {
		return g
	}
	g = newUserGraph()
	s.graphs[userID] = g
	return g
}

// Ingest records a session node plus one fact node and MENTIONS edge per
// extracted fact. The facts slice may be empty; a session with no facts is
// still recorded. Mutations for the same user are serialized.
func (s *Store) Ingest(session models.Session, facts []extract.Fact) error {
	if err := session.Validate(); err != nil {
		return err
	}
	if session.SessionID == "" {
		return fmt.Errorf("%w: session_id is required", models.ErrInvalidRequest)
	}

	g := s.getOrCreate(session.UserID)
	g.mu.Lock()
	defer g.mu.Unlock()

	g.addNode(Node{
		ID:        session.SessionID,
		Label:     LabelSession,
		Timestamp: session.Timestamp,
	})

	for _, f := range facts {
		g.addNode(Node{
			ID:    f.ID,
			Label: string(f.Label),
			Text:  f.Text,
		})
		g.edges = append(g.edges, Edge{
			Source:   session.SessionID,
			Target:   f.ID,
			Relation: RelationMentions,
			Weight:   1.0,
		})
	}
	return nil
}

// ContextFor flattens all fact nodes for the user into "<label>: <text>"
// fragments joined in node-insertion order. Returns "" when the user has no
// facts yet; callers must treat that as "no usable profile signal", not as
// embeddable text.
func (s *Store) ContextFor(userID string) string {
	s.mu.RLock()
	g, ok := s.graphs[userID]
	s.mu.RUnlock()
	if !ok {
		return ""
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	var parts []string
	for _, id := range g.order {
		n := g.nodes[id]
		if n.Label == LabelSession {
			continue
		}
		parts = append(parts, n.Label+": "+n.Text)
	}
	return strings.Join(parts, contextSeparator)
}

// SessionCount returns the number of session nodes recorded for the user.
func (s *Store) SessionCount(userID string) int {
	s.mu.RLock()
	g, ok := s.graphs[userID]
	s.mu.RUnlock()
	if !ok {
		return 0
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	count := 0
	for _, n := range g.nodes {
		if n.Label == LabelSession {
			count++
		}
	}
	return count
}
