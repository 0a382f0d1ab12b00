// Package storage persists interview sessions as JSON documents.
package storage

import (
	"time"

	"github.com/spigell/interviewer/internal/interview"
	"github.com/spigell/interviewer/internal/scoring"
	"github.com/spigell/interviewer/internal/session"
)

// TimestampLayout is the layout of Record.Timestamp and of result file names.
const TimestampLayout = "20060102_150405"

// Record is the on-disk form of a session. Feedback is absent until the
// interview completes.
type Record struct {
	SessionID  string               `json:"session_id" yaml:"session_id"`
	Timestamp  string               `json:"timestamp" yaml:"timestamp"`
	State      string               `json:"state" yaml:"state"`
	ResumeText string               `json:"resume_text" yaml:"resume_text"`
	Questions  []interview.Question `json:"questions" yaml:"questions"`
	Answers    []string             `json:"answers" yaml:"answers"`
	Scores     []scoring.Score      `json:"scores" yaml:"scores"`
	Feedback   *scoring.FinalReport `json:"feedback,omitempty" yaml:"feedback,omitempty"`
	Context    Context              `json:"context" yaml:"context"`
}

// Context captures what the adaptive generator knew about the conversation.
type Context struct {
	DiscussedTopics []string `json:"discussed_topics" yaml:"discussed_topics"`
	QuestionCount   int      `json:"question_count" yaml:"question_count"`
	AnswerCount     int      `json:"answer_count" yaml:"answer_count"`
	CurrentTurn     int      `json:"current_turn" yaml:"current_turn"`
}

// FromSession builds a record from a session snapshot.
func FromSession(s session.Session) Record {
	return Record{
		SessionID:  s.ID,
		Timestamp:  s.CreatedAt.Format(TimestampLayout),
		State:      s.State.String(),
		ResumeText: s.ResumeText,
		Questions:  s.Questions,
		Answers:    s.Answers,
		Scores:     s.Scores,
		Feedback:   s.Report,
		Context: Context{
			DiscussedTopics: s.Discussed,
			QuestionCount:   len(s.Questions),
			AnswerCount:     len(s.Answers),
			CurrentTurn:     s.Turn,
		},
	}
}

// Complete reports whether the record holds a finished interview.
func (r Record) Complete() bool {
	return r.Feedback != nil
}

// Time parses Timestamp; the zero time is returned when it is malformed.
func (r Record) Time() time.Time {
	t, err := time.ParseInLocation(TimestampLayout, r.Timestamp, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Average is the mean per-answer relevance score.
func (r Record) Average() float64 {
	if len(r.Scores) == 0 {
		return 0
	}
	total := 0
	for _, s := range r.Scores {
		total += s.RelevanceScore
	}
	return float64(total) / float64(len(r.Scores))
}
