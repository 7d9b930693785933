// Package extract turns raw session transcripts into typed profile facts.
//
// The keyword extractor is a deliberately simple stand-in for a real
// classifier. The graph store depends only on the Extractor contract, so a
// better implementation can be swapped in without touching graph logic.
package extract

import (
	"strings"

	"github.com/lithammer/shortuuid/v4"
)

// Label classifies a fact extracted from a transcript.
type Label string

const (
	LabelGoal       Label = "Goal"
	LabelSentiment  Label = "Sentiment"
	LabelConstraint Label = "Constraint"
	LabelInterest   Label = "Interest"
)

// Fact is a single typed observation about a user. Facts are immutable and
// attached to exactly one user's graph.
type Fact struct {
	ID    string `json:"id"`
	Label Label  `json:"label"`
	Text  string `json:"text"`
}

// Extractor maps raw session text to a set of typed facts. Implementations
// are best-effort: returning zero facts for low-signal text is normal, and
// errors must not prevent the session itself from being recorded.
type Extractor interface {
	Extract(transcript string) ([]Fact, error)
}

// signal maps trigger keywords to the fact they produce.
type signal struct {
	keywords []string
	label    Label
	text     string
}

// KeywordExtractor is the concrete keyword-matching Extractor.
type KeywordExtractor struct {
	signals []signal
}

// NewKeywordExtractor creates an extractor with the default signal table.
func NewKeywordExtractor() *KeywordExtractor {
	return &KeywordExtractor{
		signals: []signal{
			{
				keywords: []string{"improve", "learn"},
				label:    LabelGoal,
				text:     "Improve Skills",
			},
			{
				keywords: []string{"stress", "anxious"},
				label:    LabelSentiment,
				text:     "Anxious",
			},
			{
				keywords: []string{"time", "busy", "schedule"},
				label:    LabelConstraint,
				text:     "Time Constraints",
			},
			{
				keywords: []string{"job", "hiring", "career"},
				label:    LabelGoal,
				text:     "Job Search / Career Growth",
			},
			{
				keywords: []string{"fundraising", "investor", "scale"},
				label:    LabelGoal,
				text:     "Startup Fundraising & Scaling",
			},
			{
				keywords: []string{"leadership", "management"},
				label:    LabelGoal,
				text:     "Leadership Skills",
			},
			{
				keywords: []string{"ai", "ml", "data"},
				label:    LabelInterest,
				text:     "AI & Data Science",
			},
		},
	}
}

// Extract matches the signal table against the lowercased transcript. Each
// signal fires at most once per call. Never returns an error; the error slot
// exists for richer extractors behind the same interface.
func (e *KeywordExtractor) Extract(transcript string) ([]Fact, error) {
	text := strings.ToLower(transcript)
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var facts []Fact
	for _, sig := range e.signals {
		for _, kw := range sig.keywords {
			if containsWord(text, kw) {
				facts = append(facts, Fact{
					ID:    NewFactID(sig.label),
					Label: sig.label,
					Text:  sig.text,
				})
				break
			}
		}
	}
	return facts, nil
}

// NewFactID returns a unique fact node identifier such as "Goal_iNKjabxz".
func NewFactID(label Label) string {
	return string(label) + "_" + shortuuid.New()[:8]
}

// containsWord reports whether text contains kw on word boundaries.
// Plain substring matching would fire "ai" inside "said" or "ml" inside
// "html"; short keywords need boundaries.
func containsWord(text, kw string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], kw)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(kw)
		leftOK := start == 0 || !isWordChar(text[start-1])
		rightOK := end == len(text) || !isWordChar(text[end])
		if leftOK && rightOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9'
}
