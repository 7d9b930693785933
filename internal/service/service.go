// Package service wires the graph store, vector store, and match engine into
// the operations exposed at the API boundary.
package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mentorgraph/mentorgraph/internal/embed"
	"github.com/mentorgraph/mentorgraph/internal/extract"
	"github.com/mentorgraph/mentorgraph/internal/graph"
	"github.com/mentorgraph/mentorgraph/internal/matching"
	"github.com/mentorgraph/mentorgraph/internal/models"
	"github.com/mentorgraph/mentorgraph/internal/privacy"
	"github.com/mentorgraph/mentorgraph/internal/vecstore"
)

// Options configures a Service.
type Options struct {
	// SessionSnapshots additionally embeds each raw transcript into the log
	// as a session_snapshot entry. Profile snapshots alone drive matching;
	// this keeps a granular history for auditing.
	SessionSnapshots bool
}

// Service owns the process-wide core state and enforces the ingestion
// contract: graph mutation, then context extraction, then vector snapshot.
type Service struct {
	graphs    *graph.Store
	vectors   *vecstore.Store
	embedder  embed.Embedder
	extractor extract.Extractor
	engine    *matching.Engine
	privacy   *privacy.Engine
	log       *slog.Logger
	opts      Options
}

// New assembles a Service from its collaborators. A nil logger defaults to
// slog's global logger.
func New(
	graphs *graph.Store,
	vectors *vecstore.Store,
	embedder embed.Embedder,
	extractor extract.Extractor,
	engine *matching.Engine,
	priv *privacy.Engine,
	log *slog.Logger,
	opts Options,
) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		graphs:    graphs,
		vectors:   vectors,
		embedder:  embedder,
		extractor: extractor,
		engine:    engine,
		privacy:   priv,
		log:       log,
		opts:      opts,
	}
}

// IngestSession runs the full pipeline for one session: extract facts,
// grow the user's graph, flatten the context, and record a fresh profile
// snapshot. Extraction failures are logged and swallowed — a session with
// zero facts is still recorded. Graph and snapshot failures surface to the
// caller; the snapshot step only runs after the graph mutation completed.
//
// Returns the normalized session so callers see the assigned id.
func (s *Service) IngestSession(ctx context.Context, session models.Session) (models.Session, error) {
	session.Normalize()
	if err := session.Validate(); err != nil {
		return session, err
	}

	facts, err := s.extractor.Extract(session.Transcript)
	if err != nil {
		// Best-effort extraction: heuristics finding nothing must never
		// block the session itself from being recorded.
		s.log.Warn("fact extraction failed",
			"session_id", session.SessionID,
			"user_id", session.UserID,
			"error", err)
		facts = nil
	}

	if err := s.graphs.Ingest(session, facts); err != nil {
		return session, err
	}
	s.log.Debug("session ingested",
		"session_id", session.SessionID,
		"user_id", session.UserID,
		"facts", len(facts))

	contextText := s.graphs.ContextFor(session.UserID)
	if err := s.vectors.RecordProfile(ctx, session.UserID, session.UserType, contextText, s.embedder.Embed); err != nil {
		return session, err
	}

	if s.opts.SessionSnapshots && strings.TrimSpace(session.Transcript) != "" {
		vec, err := s.embedder.Embed(ctx, session.Transcript)
		if err != nil {
			return session, err
		}
		if _, err := s.vectors.Append(vec, vecstore.Metadata{
			UserID:   session.UserID,
			UserType: session.UserType,
			Kind:     vecstore.KindSessionSnapshot,
		}); err != nil {
			return session, err
		}
	}

	return session, nil
}

// Match returns between 1 and req.TopK mentor suggestions.
func (s *Service) Match(ctx context.Context, req models.MatchRequest) ([]models.MatchResult, error) {
	results, err := s.engine.Match(ctx, req)
	if err != nil {
		return nil, err
	}
	s.log.Debug("match served", "user_id", req.UserID, "results", len(results))
	return results, nil
}

// GraphExport is the payload of the observability boundary: either one
// user's graph or all graphs keyed by user id.
type GraphExport struct {
	UserID string                  `json:"user_id,omitempty"`
	Graph  *graph.Export           `json:"graph,omitempty"`
	Graphs map[string]graph.Export `json:"graphs,omitempty"`
}

// ExportGraph dumps graph state without side effects. An empty userID
// exports every user. With anonymize set, user ids are replaced by stable
// pseudonyms. Unknown users report ok=false.
func (s *Service) ExportGraph(userID string, anonymize bool) (GraphExport, bool) {
	if userID != "" {
		exp, ok := s.graphs.ExportUser(userID)
		if !ok {
			return GraphExport{}, false
		}
		id := userID
		if anonymize {
			id = s.privacy.Anonymize(userID)
		}
		return GraphExport{UserID: id, Graph: &exp}, true
	}

	all := s.graphs.ExportAll()
	if anonymize {
		masked := make(map[string]graph.Export, len(all))
		for id, exp := range all {
			masked[s.privacy.Anonymize(id)] = exp
		}
		all = masked
	}
	return GraphExport{Graphs: all}, true
}
