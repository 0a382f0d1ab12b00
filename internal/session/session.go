// Package session drives one interview from résumé intake to the final
// report. A Machine owns exactly one Session at a time.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/interviewer/internal/interview"
	"github.com/spigell/interviewer/internal/logger"
	"github.com/spigell/interviewer/internal/scoring"
)

// QuestionSource produces the initial and follow-up questions.
type QuestionSource interface {
	GenerateInitial(ctx context.Context, resumeText string) []interview.Question
	FollowUp(ctx context.Context, lastAnswer, resumeText string, qctx interview.Context) interview.FollowUp
}

// Grader scores single answers and the whole interview.
type Grader interface {
	Score(ctx context.Context, question, answer, resume string) scoring.Score
	Aggregate(ctx context.Context, questions, answers []string, resume string) scoring.FinalReport
}

type Deps struct {
	Questions QuestionSource
	Scorer    Grader
	Logger    *zap.Logger
	Now       func() time.Time
	NewID     func() string
}

// Config carries the interview-wide question cap. It must be the same value
// the question source was built with.
type Config struct {
	Budget int
}

// Session is the full interview state. Values handed out by Machine are
// copies and may be retained freely.
type Session struct {
	ID             string
	CreatedAt      time.Time
	State          State
	ResumeText     string
	Questions      []interview.Question
	Answers        []string
	Scores         []scoring.Score
	Turn           int
	QuestionSpoken bool
	Discussed      []string
	Report         *scoring.FinalReport
}

// Progress describes where the interview stands for display.
type Progress struct {
	Current int
	Known   int
	Budget  int
}

type Machine struct {
	deps   Deps
	budget int
	logger *zap.Logger

	// busy is held for the whole of a turn-advancing call, mu only while
	// session fields are read or written.
	busy sync.Mutex
	mu   sync.RWMutex
	s    Session
}

func New(deps Deps, cfg Config) *Machine {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}

	budget := cfg.Budget
	if budget <= 0 {
		budget = interview.DefaultBudget
	}

	m := &Machine{
		deps:   deps,
		budget: budget,
		logger: logger.OrNop(deps.Logger),
	}
	m.s = m.fresh()
	m.s.State = StateAwaitingResume

	return m
}

func (m *Machine) fresh() Session {
	return Session{
		ID:        m.deps.NewID(),
		CreatedAt: m.deps.Now(),
		State:     StateCreated,
		Questions: []interview.Question{},
		Answers:   []string{},
		Scores:    []scoring.Score{},
		Discussed: []string{},
	}
}

// Budget returns the question cap this Machine enforces.
func (m *Machine) Budget() int { return m.budget }

// State returns the current lifecycle state.
func (m *Machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.s.State
}

// LoadResume accepts the outcome of résumé extraction. A failed or empty
// extraction leaves the session waiting for a résumé.
func (m *Machine) LoadResume(_ context.Context, text string, extractErr error) error {
	if !m.busy.TryLock() {
		return ErrBusy
	}
	defer m.busy.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.s.State != StateAwaitingResume && m.s.State != StateQuestionsPending {
		return invalidState("load resume", m.s.State)
	}

	if extractErr != nil {
		m.log().Warn("resume rejected", zap.Error(extractErr))
		return &ResumeExtractionError{Err: extractErr}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		m.log().Warn("resume rejected", zap.String("reason", "empty text"))
		return &ResumeExtractionError{Err: errors.New("resume contains no text")}
	}

	m.s.ResumeText = text
	m.s.State = StateQuestionsPending
	m.log().Info("resume loaded", zap.Int("resume_length", len(text)))

	return nil
}

// Start seeds the interview with the initial questions.
func (m *Machine) Start(ctx context.Context) error {
	if !m.busy.TryLock() {
		return ErrBusy
	}
	defer m.busy.Unlock()

	m.mu.RLock()
	state, resumeText := m.s.State, m.s.ResumeText
	m.mu.RUnlock()

	if state != StateQuestionsPending {
		return invalidState("start", state)
	}

	questions := m.deps.Questions.GenerateInitial(ctx, resumeText)
	if len(questions) > m.budget {
		questions = questions[:m.budget]
	}

	m.mu.Lock()
	m.s.Questions = append([]interview.Question{}, questions...)
	m.s.Turn = 0
	m.s.QuestionSpoken = false
	m.s.State = StateActive
	m.mu.Unlock()

	m.log().Info("interview started", zap.Int("questions", len(questions)), zap.Int("budget", m.budget))

	if len(questions) == 0 {
		m.complete(ctx)
	}

	return nil
}

// CurrentQuestion returns the question for the current turn while active.
func (m *Machine) CurrentQuestion() (interview.Question, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.s.State != StateActive || m.s.Turn >= len(m.s.Questions) {
		return interview.Question{}, false
	}
	return m.s.Questions[m.s.Turn], true
}

// MarkSpoken records that the current question was played back.
func (m *Machine) MarkSpoken() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.s.State == StateActive {
		m.s.QuestionSpoken = true
	}
}

// SubmitAnswer records the answer to the current question, scores it, grows
// the question list while under budget and advances the turn. Blank answers
// are recorded as a placeholder.
func (m *Machine) SubmitAnswer(ctx context.Context, answer string) (scoring.Score, error) {
	if !m.busy.TryLock() {
		return scoring.Score{}, ErrBusy
	}
	defer m.busy.Unlock()

	if strings.TrimSpace(answer) == "" {
		answer = interview.PlaceholderNoAnswer
	}

	m.mu.Lock()
	if m.s.State != StateActive || m.s.Turn >= len(m.s.Questions) {
		state := m.s.State
		m.mu.Unlock()
		return scoring.Score{}, invalidState("submit answer", state)
	}
	question := m.s.Questions[m.s.Turn]
	resumeText := m.s.ResumeText
	m.s.Answers = append(m.s.Answers, answer)
	qctx := interview.Context{
		Questions: interview.Texts(m.s.Questions),
		Answers:   append([]string{}, m.s.Answers...),
	}
	m.mu.Unlock()

	score := m.deps.Scorer.Score(ctx, question.Text, answer, resumeText)

	var followUp interview.FollowUp
	if remaining := m.budget - len(qctx.Questions); remaining > 0 {
		followUp = m.deps.Questions.FollowUp(ctx, answer, resumeText, qctx)
		if len(followUp.Questions) > remaining {
			followUp.Questions = followUp.Questions[:remaining]
		}
	}

	m.mu.Lock()
	m.s.Scores = append(m.s.Scores, score)
	m.s.Questions = append(m.s.Questions, followUp.Questions...)
	if len(followUp.Discussed) > 0 {
		m.s.Discussed = append([]string{}, followUp.Discussed...)
	}
	m.s.Turn++
	m.s.QuestionSpoken = false
	done := m.s.Turn >= m.budget || m.s.Turn >= len(m.s.Questions)
	turn, known := m.s.Turn, len(m.s.Questions)
	m.mu.Unlock()

	m.log().Info("answer recorded",
		zap.Int("relevance_score", score.RelevanceScore),
		zap.Int("new_questions", len(followUp.Questions)),
		zap.Bool("fallback", followUp.Fallback),
		zap.Int("known_questions", known),
		zap.Int("answered", turn),
	)

	if done {
		m.complete(ctx)
	}

	return score, nil
}

// Finish ends an active interview early and builds the report over the
// answers given so far.
func (m *Machine) Finish(ctx context.Context) error {
	if !m.busy.TryLock() {
		return ErrBusy
	}
	defer m.busy.Unlock()

	if state := m.State(); state != StateActive {
		return invalidState("finish", state)
	}

	m.log().Info("interview finished early")
	m.complete(ctx)

	return nil
}

// complete aggregates and moves to StateComplete. The caller holds busy.
func (m *Machine) complete(ctx context.Context) {
	m.mu.RLock()
	answers := append([]string{}, m.s.Answers...)
	questions := interview.Texts(m.s.Questions[:len(answers)])
	resumeText := m.s.ResumeText
	m.mu.RUnlock()

	report := m.deps.Scorer.Aggregate(ctx, questions, answers, resumeText)

	m.mu.Lock()
	m.s.Report = &report
	m.s.State = StateComplete
	m.s.QuestionSpoken = false
	m.mu.Unlock()

	m.log().Info("interview complete",
		zap.Int("answered", len(answers)),
		zap.Float64("overall_score", report.OverallScore),
	)
}

// Reset discards the current session and waits for a new résumé.
func (m *Machine) Reset() error {
	if !m.busy.TryLock() {
		return ErrBusy
	}
	defer m.busy.Unlock()

	m.mu.Lock()
	m.s = m.fresh()
	m.s.State = StateAwaitingResume
	m.mu.Unlock()

	m.log().Info("session reset")
	return nil
}

// Snapshot returns a deep copy of the session.
func (m *Machine) Snapshot() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.s
	s.Questions = append([]interview.Question{}, m.s.Questions...)
	s.Answers = append([]string{}, m.s.Answers...)
	s.Discussed = append([]string{}, m.s.Discussed...)
	s.Scores = make([]scoring.Score, len(m.s.Scores))
	for i, sc := range m.s.Scores {
		s.Scores[i] = copyScore(sc)
	}
	if m.s.Report != nil {
		r := *m.s.Report
		r.ConsistentStrengths = append([]string{}, r.ConsistentStrengths...)
		r.ConsistentAreasForImprovement = append([]string{}, r.ConsistentAreasForImprovement...)
		r.Recommendations = append([]string{}, r.Recommendations...)
		s.Report = &r
	}

	return s
}

// Progress reports the 1-based current question number, the number of
// questions known so far and the cap.
func (m *Machine) Progress() Progress {
	m.mu.RLock()
	defer m.mu.RUnlock()

	current := m.s.Turn + 1
	if current > len(m.s.Questions) {
		current = len(m.s.Questions)
	}
	return Progress{Current: current, Known: len(m.s.Questions), Budget: m.budget}
}

func (m *Machine) log() *zap.Logger {
	return logger.WithFields(m.logger, logger.SessionFields(m.s.ID, m.s.Turn)...)
}

func copyScore(s scoring.Score) scoring.Score {
	s.Strengths = append([]string{}, s.Strengths...)
	s.AreasForImprovement = append([]string{}, s.AreasForImprovement...)
	return s
}
