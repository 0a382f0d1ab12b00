// Package interview generates interview questions from a résumé and the
// running transcript, falling back to deterministic templates whenever the
// oracle is unavailable or its output is unusable.
package interview

import (
	"encoding/json"
	"strings"
)

// Marker prefixes every generated question line.
const Marker = "Q:"

// Origin records which generation path produced a question.
type Origin string

const (
	OriginInitial  Origin = "initial"
	OriginAdaptive Origin = "adaptive"
)

// Question is immutable once created. Text keeps the "Q:" marker.
type Question struct {
	Text   string `json:"text" yaml:"text"`
	Origin Origin `json:"origin" yaml:"origin"`
}

// Prompt returns the question text without the marker.
func (q Question) Prompt() string {
	return StripMarker(q.Text)
}

// UnmarshalJSON also accepts a bare string, the form older result files use.
func (q *Question) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*q = Question{Text: text}
		return nil
	}

	type plain Question
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*q = Question(p)
	return nil
}

// StripMarker removes a leading "Q:" marker and surrounding whitespace.
func StripMarker(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, Marker)
	return strings.TrimSpace(text)
}

// Texts returns the raw texts of qs.
func Texts(qs []Question) []string {
	out := make([]string, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.Text)
	}
	return out
}

func tag(texts []string, origin Origin) []Question {
	out := make([]Question, 0, len(texts))
	for _, text := range texts {
		out = append(out, Question{Text: text, Origin: origin})
	}
	return out
}

// parseQuestions keeps the trimmed lines that start with the marker.
func parseQuestions(raw string) []string {
	var questions []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, Marker) {
			questions = append(questions, line)
		}
	}
	return questions
}

// Context is the transcript an adaptive generation call conditions on.
// Questions may be longer than Answers; only answered pairs form the transcript.
type Context struct {
	Questions []string
	Answers   []string
}

// Transcript renders the answered question/answer pairs.
func (c Context) Transcript() string {
	n := min(len(c.Questions), len(c.Answers))

	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Q: ")
		b.WriteString(StripMarker(c.Questions[i]))
		b.WriteString("\nA: ")
		b.WriteString(strings.TrimSpace(c.Answers[i]))
	}
	return b.String()
}
