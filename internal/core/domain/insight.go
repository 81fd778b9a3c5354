package domain

import (
	"fmt"
	"strings"
)

// InsightFailureMessage is the only failure text shown for an insight,
// whatever went wrong with the generator.
const InsightFailureMessage = "Failed to get AI-powered insights. Please try again later."

// InsightStatus is the state of a selected song's generated commentary.
type InsightStatus string

const (
	InsightPending InsightStatus = "pending"
	InsightReady   InsightStatus = "ready"
	InsightFailed  InsightStatus = "failed"
)

// Insight holds generated commentary for the selected song.
// Text is set only when ready, Error only when failed.
type Insight struct {
	Status InsightStatus `json:"status"`
	Text   string        `json:"text,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// BuildInsightPrompt renders the generation prompt for a song. Title and
// artist are always included; grammar, vocab and theme clauses only when set.
func BuildInsightPrompt(s Song) string {
	level := s.Level
	if level == "" {
		level = "mixed"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "For the song \"%s\" by %s, briefly explain its educational value for an ESL lesson for students at a %s CEFR level.", s.Title, s.Artist, level)
	if s.Grammar != "" {
		fmt.Fprintf(&b, " Focus on the grammar points: %s.", s.Grammar)
	}
	if s.Vocab != "" {
		fmt.Fprintf(&b, " And vocabulary themes: %s.", s.Vocab)
	}
	if s.Theme != "" {
		fmt.Fprintf(&b, " Also consider the theme: %s.", s.Theme)
	}
	b.WriteString(" Present the information clearly in a few short paragraphs for a teacher planning a lesson.")
	return b.String()
}
