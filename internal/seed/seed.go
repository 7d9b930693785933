// Package seed populates a running server with a corpus of persona
// sessions, giving the matcher a realistic pool to rank against.
package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/mentorgraph/mentorgraph/internal/models"
)

// Persona is one synthetic voice posted to the session endpoint.
type Persona struct {
	ID       string
	UserType models.UserType
	Text     string
}

// Mentees covers the demand side: users looking for guidance.
var Mentees = []Persona{
	{
		ID:       "founder_sarah",
		UserType: models.UserTypeMentee,
		Text: "I've just raised my seed round and frankly, I'm terrified. " +
			"I need to scale the team from 5 to 20 in the next quarter, but I've " +
			"never managed managers before. I'm losing sleep over culture and " +
			"hiring mistakes. I need a mentor who has been through hypergrowth.",
	},
	{
		ID:       "engineer_mike",
		UserType: models.UserTypeMentee,
		Text: "I've been coding for 8 years and I'm burnt out. I want to move " +
			"into Product Management but I don't know how to demonstrate strategy. " +
			"People see me as just a 'technical guy'. I need help with my pitch " +
			"and understanding the product lifecycle beyond the code.",
	},
	{
		ID:       "marketer_jen",
		UserType: models.UserTypeMentee,
		Text: "I feel like I'm constantly being talked over in meetings. I want " +
			"to push for a promotion this cycle but I struggle with self-advocacy. " +
			"I need advice on how to be more assertive without being labeled " +
			"'aggressive', and how to negotiate my salary.",
	},
	{
		ID:       "newgrad_alex",
		UserType: models.UserTypeMentee,
		Text: "I just graduated with an ML degree but the market is brutal. I " +
			"have strong technical skills in PyTorch and transformers, but I " +
			"don't know how to network. I want to build a portfolio that stands " +
			"out. Looking for guidance on navigating the AI job market.",
	},
	{
		ID:       "pm_david",
		UserType: models.UserTypeMentee,
		Text: "My engineering lead and design lead are at war, and it's stalling " +
			"our roadmap. I feel stuck in the middle. I need advice on how to " +
			"facilitate these tough conversations and get everyone aligned on " +
			"the vision. It's affecting team morale.",
	},
}

// Mentors covers the supply side: users offering expertise.
var Mentors = []Persona{
	{
		ID:       "exec_elena",
		UserType: models.UserTypeMentor,
		Text: "I've scaled engineering organizations from 10 to 200 engineers " +
			"at two unicorns. I believe in empathetic leadership and " +
			"psychological safety. I can help you build your hiring pipeline, " +
			"reading the room, and managing up. I've seen every mistake in the book.",
	},
	{
		ID:       "cpo_marcus",
		UserType: models.UserTypeMentor,
		Text: "Product is about storytelling. I help founders and PMs craft " +
			"narratives that win over investors and customers. If you're " +
			"struggling with your pitch deck or your roadmap strategy, I can " +
			"help you cut through the noise and focus on what matters.",
	},
	{
		ID:       "coach_priya",
		UserType: models.UserTypeMentor,
		Text: "I specialize in helping quiet leaders find their voice. Whether " +
			"it's salary negotiation or a board presentation, I focus on " +
			"practical techniques to boost your presence. I've helped hundreds " +
			"of professionals overcome imposter syndrome.",
	},
	{
		ID:       "cto_james",
		UserType: models.UserTypeMentor,
		Text: "I'm a pragmatic CTO who loves the messy early days of startups. " +
			"I can mentor you on balancing technical debt with speed, choosing " +
			"the right stack, and transitioning from 'coder' to 'technical " +
			"leader'. I'm very direct and hands-on.",
	},
	{
		ID:       "director_olivia",
		UserType: models.UserTypeMentor,
		Text: "I transitioned from academia to industry 15 years ago. I love " +
			"helping detail-oriented scientists become strategic leaders. We can " +
			"talk about how to communicate data impact to non-technical " +
			"stakeholders and how to manage a high-performance data team.",
	},
}

// Seeder posts persona sessions against a mentorgraph server.
type Seeder struct {
	baseURL string
	client  *http.Client
	rand    *rand.Rand
}

// New creates a Seeder targeting baseURL, e.g. "http://localhost:8000".
func New(baseURL string) *Seeder {
	return &Seeder{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// variation rewords a persona text slightly so repeated rounds do not
// produce byte-identical transcripts.
func (s *Seeder) variation(text string) string {
	forms := []string{
		text,
		"Hi, " + text + " Really hoping to connect.",
		text + " Specifically looking for diverse perspectives.",
		"To give more context: " + text,
		text + " Ideally available for monthly calls.",
	}
	return forms[s.rand.Intn(len(forms))]
}

// Run posts rounds variations of every persona. With 5 mentors, 5 mentees,
// and rounds=5 that yields 50 distinct users. Returns the number of sessions
// accepted by the server; the first transport or non-200 failure aborts.
func (s *Seeder) Run(ctx context.Context, rounds int) (int, error) {
	total := 0
	for i := 0; i < rounds; i++ {
		for _, p := range append(append([]Persona{}, Mentors...), Mentees...) {
			sess := models.Session{
				UserID:     fmt.Sprintf("%s_%d", p.ID, i),
				UserType:   p.UserType,
				Transcript: s.variation(p.Text),
			}
			if err := s.post(ctx, sess); err != nil {
				return total, err
			}
			total++
		}
	}
	return total, nil
}

func (s *Seeder) post(ctx context.Context, sess models.Session) error {
	body, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/session", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post session for %s: %w", sess.UserID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("post session for %s: unexpected status %d", sess.UserID, resp.StatusCode)
	}
	return nil
}
