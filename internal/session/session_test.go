package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/interviewer/internal/ai"
	"github.com/spigell/interviewer/internal/interview"
	"github.com/spigell/interviewer/internal/scoring"
)

const resumeText = "Go developer. Built Kubernetes operators and PostgreSQL tooling."

var errDown = errors.New("oracle down")

func downOracle() ai.Oracle {
	return ai.OracleFunc(func(context.Context, []ai.Message) (string, error) {
		return "", errDown
	})
}

// fakeSource hands out numbered questions, perBatch at a time.
type fakeSource struct {
	initial  int
	perBatch int
	calls    int
}

func (f *fakeSource) GenerateInitial(context.Context, string) []interview.Question {
	out := make([]interview.Question, 0, f.initial)
	for i := 0; i < f.initial; i++ {
		out = append(out, interview.Question{Text: fmt.Sprintf("Q: initial %d", i+1), Origin: interview.OriginInitial})
	}
	return out
}

func (f *fakeSource) FollowUp(_ context.Context, _ string, _ string, qctx interview.Context) interview.FollowUp {
	f.calls++
	out := make([]interview.Question, 0, f.perBatch)
	for i := 0; i < f.perBatch; i++ {
		out = append(out, interview.Question{Text: fmt.Sprintf("Q: follow-up %d.%d", f.calls, i+1), Origin: interview.OriginAdaptive})
	}
	return interview.FollowUp{Questions: out, Discussed: []string{fmt.Sprintf("topic %d", len(qctx.Answers))}}
}

type fakeGrader struct {
	aggregated [][]string
}

func (g *fakeGrader) Score(_ context.Context, _ string, answer, _ string) scoring.Score {
	return scoring.Score{RelevanceScore: len(answer) % 101, Strengths: []string{"s"}, AreasForImprovement: []string{}}
}

func (g *fakeGrader) Aggregate(_ context.Context, questions, answers []string, _ string) scoring.FinalReport {
	g.aggregated = append(g.aggregated, questions)
	return scoring.FinalReport{OverallScore: float64(len(answers)), OverallAssessment: "done"}
}

func newMachine(t *testing.T, src QuestionSource, grader Grader, budget int) *Machine {
	t.Helper()
	return New(Deps{
		Questions: src,
		Scorer:    grader,
		Logger:    zap.NewNop(),
		Now:       func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) },
	}, Config{Budget: budget})
}

func startMachine(t *testing.T, m *Machine) {
	t.Helper()
	if err := m.LoadResume(context.Background(), resumeText, nil); err != nil {
		t.Fatalf("load resume: %v", err)
	}
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
}

func checkInvariants(t *testing.T, m *Machine) {
	t.Helper()
	s := m.Snapshot()
	if len(s.Answers) != len(s.Scores) {
		t.Fatalf("answers/scores mismatch: %d vs %d", len(s.Answers), len(s.Scores))
	}
	if len(s.Answers) > len(s.Questions) {
		t.Fatalf("more answers than questions: %d > %d", len(s.Answers), len(s.Questions))
	}
	if len(s.Questions) > m.Budget() {
		t.Fatalf("questions exceed budget: %d > %d", len(s.Questions), m.Budget())
	}
	if s.State == StateComplete && s.Report == nil {
		t.Fatalf("complete session without report")
	}
	if s.State == StateActive && s.Turn >= len(s.Questions) {
		t.Fatalf("active session without a current question (turn %d, %d questions)", s.Turn, len(s.Questions))
	}
}

func TestNewAwaitsResume(t *testing.T) {
	m := newMachine(t, &fakeSource{initial: 3}, &fakeGrader{}, 15)

	s := m.Snapshot()
	if s.State != StateAwaitingResume {
		t.Fatalf("expected awaiting_resume, got %s", s.State)
	}
	if s.ID == "" {
		t.Fatalf("expected session id")
	}
	if _, ok := m.CurrentQuestion(); ok {
		t.Fatalf("expected no current question before start")
	}
}

func TestLoadResumeRejectsFailedExtraction(t *testing.T) {
	tests := []struct {
		name string
		text string
		err  error
	}{
		{name: "extraction error", err: errors.New("corrupt pdf")},
		{name: "empty text", text: "  \n "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMachine(t, &fakeSource{initial: 3}, &fakeGrader{}, 15)

			err := m.LoadResume(context.Background(), tt.text, tt.err)

			var extractErr *ResumeExtractionError
			if !errors.As(err, &extractErr) {
				t.Fatalf("expected ResumeExtractionError, got %v", err)
			}
			if tt.err != nil && !errors.Is(err, tt.err) {
				t.Fatalf("expected wrapped cause, got %v", err)
			}
			if m.State() != StateAwaitingResume {
				t.Fatalf("state changed to %s", m.State())
			}
		})
	}
}

func TestStartRequiresResume(t *testing.T) {
	m := newMachine(t, &fakeSource{initial: 3}, &fakeGrader{}, 15)

	if err := m.Start(context.Background()); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if _, err := m.SubmitAnswer(context.Background(), "x"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if err := m.Finish(context.Background()); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestStartCapsInitialQuestions(t *testing.T) {
	m := newMachine(t, &fakeSource{initial: 5}, &fakeGrader{}, 2)
	startMachine(t, m)

	s := m.Snapshot()
	if len(s.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(s.Questions))
	}
	if s.State != StateActive || s.Turn != 0 {
		t.Fatalf("expected active at turn 0, got %s/%d", s.State, s.Turn)
	}
	if q, ok := m.CurrentQuestion(); !ok || q.Text != "Q: initial 1" {
		t.Fatalf("unexpected current question %#v", q)
	}
}

func TestSubmitAnswerAdvancesTurn(t *testing.T) {
	m := newMachine(t, &fakeSource{initial: 3, perBatch: 2}, &fakeGrader{}, 15)
	startMachine(t, m)
	m.MarkSpoken()

	score, err := m.SubmitAnswer(context.Background(), "I used Go")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if score.RelevanceScore != len("I used Go") {
		t.Fatalf("unexpected score %#v", score)
	}

	s := m.Snapshot()
	if s.Turn != 1 {
		t.Fatalf("expected turn 1, got %d", s.Turn)
	}
	if s.QuestionSpoken {
		t.Fatalf("expected spoken flag cleared")
	}
	if len(s.Questions) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(s.Questions))
	}
	if s.Questions[3].Origin != interview.OriginAdaptive {
		t.Fatalf("expected adaptive origin, got %s", s.Questions[3].Origin)
	}
	if len(s.Discussed) != 1 || s.Discussed[0] != "topic 1" {
		t.Fatalf("unexpected discussed topics %#v", s.Discussed)
	}
	if got := m.Progress(); got != (Progress{Current: 2, Known: 5, Budget: 15}) {
		t.Fatalf("unexpected progress %#v", got)
	}
	checkInvariants(t, m)
}

func TestEmptyAnswerRecordedAsPlaceholder(t *testing.T) {
	m := newMachine(t, &fakeSource{initial: 3}, &fakeGrader{}, 15)
	startMachine(t, m)

	if _, err := m.SubmitAnswer(context.Background(), "   "); err != nil {
		t.Fatalf("submit: %v", err)
	}

	s := m.Snapshot()
	if s.Answers[0] != interview.PlaceholderNoAnswer {
		t.Fatalf("expected placeholder, got %q", s.Answers[0])
	}
	if s.Turn != 1 {
		t.Fatalf("expected the turn to advance, got %d", s.Turn)
	}
}

func TestCompletesWhenQuestionsRunOut(t *testing.T) {
	grader := &fakeGrader{}
	m := newMachine(t, &fakeSource{initial: 2}, grader, 15)
	startMachine(t, m)

	for i := 0; i < 2; i++ {
		if _, err := m.SubmitAnswer(context.Background(), "answer"); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		checkInvariants(t, m)
	}

	s := m.Snapshot()
	if s.State != StateComplete {
		t.Fatalf("expected complete, got %s", s.State)
	}
	if s.Report == nil || s.Report.OverallScore != 2 {
		t.Fatalf("unexpected report %#v", s.Report)
	}
	if len(grader.aggregated) != 1 || len(grader.aggregated[0]) != 2 {
		t.Fatalf("expected one aggregation over 2 questions, got %#v", grader.aggregated)
	}
	if _, err := m.SubmitAnswer(context.Background(), "late"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState after completion, got %v", err)
	}
}

func TestAllOracleFailuresStillComplete(t *testing.T) {
	oracle := downOracle()
	gen := interview.NewGenerator(oracle, interview.GeneratorConfig{Budget: 15}, nil)
	m := newMachine(t, gen, scoring.NewScorer(oracle, nil, 0), gen.Budget())
	startMachine(t, m)

	s := m.Snapshot()
	if len(s.Questions) != 3 {
		t.Fatalf("expected 3 fallback questions, got %d", len(s.Questions))
	}

	answers := 0
	for m.State() == StateActive {
		if _, err := m.SubmitAnswer(context.Background(), "I built a REST API with Docker and Kubernetes"); err != nil {
			t.Fatalf("submit %d: %v", answers, err)
		}
		answers++
		checkInvariants(t, m)
		if answers > 15 {
			t.Fatalf("session did not complete within budget")
		}
	}

	s = m.Snapshot()
	if answers != 15 || len(s.Questions) != 15 {
		t.Fatalf("expected 15 answered questions, got %d answers and %d questions", answers, len(s.Questions))
	}
	if s.Report == nil {
		t.Fatalf("expected a fallback report")
	}
	for _, q := range s.Questions {
		if q.Text == "" {
			t.Fatalf("empty question in %#v", s.Questions)
		}
	}
}

func TestFinishAfterSingleAnswer(t *testing.T) {
	grader := &fakeGrader{}
	m := newMachine(t, &fakeSource{initial: 3, perBatch: 2}, grader, 15)
	startMachine(t, m)

	if _, err := m.SubmitAnswer(context.Background(), "only answer"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := m.Finish(context.Background()); err != nil {
		t.Fatalf("finish: %v", err)
	}

	s := m.Snapshot()
	if s.State != StateComplete || s.Report == nil {
		t.Fatalf("expected complete with report, got %s", s.State)
	}
	if len(grader.aggregated[0]) != 1 {
		t.Fatalf("expected aggregation over the answered pair only, got %#v", grader.aggregated[0])
	}
	checkInvariants(t, m)
}

// blockingGrader holds Score until released.
type blockingGrader struct {
	fakeGrader
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *blockingGrader) Score(ctx context.Context, q, a, r string) scoring.Score {
	g.once.Do(func() { close(g.entered) })
	<-g.release
	return g.fakeGrader.Score(ctx, q, a, r)
}

func TestConcurrentSubmitIsBusy(t *testing.T) {
	grader := &blockingGrader{entered: make(chan struct{}), release: make(chan struct{})}
	m := newMachine(t, &fakeSource{initial: 3}, grader, 15)
	startMachine(t, m)

	done := make(chan error, 1)
	go func() {
		_, err := m.SubmitAnswer(context.Background(), "first")
		done <- err
	}()

	<-grader.entered

	if _, err := m.SubmitAnswer(context.Background(), "second"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if err := m.Finish(context.Background()); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy from finish, got %v", err)
	}
	if err := m.Reset(); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy from reset, got %v", err)
	}
	_ = m.Snapshot()

	close(grader.release)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if got := len(m.Snapshot().Answers); got != 1 {
		t.Fatalf("expected exactly one answer, got %d", got)
	}
}

func TestMachinesAreIndependent(t *testing.T) {
	grader := &blockingGrader{entered: make(chan struct{}), release: make(chan struct{})}
	busy := newMachine(t, &fakeSource{initial: 3}, grader, 15)
	startMachine(t, busy)
	idle := newMachine(t, &fakeSource{initial: 3}, &fakeGrader{}, 15)
	startMachine(t, idle)

	done := make(chan struct{})
	go func() {
		_, _ = busy.SubmitAnswer(context.Background(), "first")
		close(done)
	}()
	<-grader.entered

	if _, err := idle.SubmitAnswer(context.Background(), "other"); err != nil {
		t.Fatalf("independent machine reported %v", err)
	}

	close(grader.release)
	<-done
}

func TestResetStartsFreshSession(t *testing.T) {
	m := newMachine(t, &fakeSource{initial: 3}, &fakeGrader{}, 15)
	startMachine(t, m)
	first := m.Snapshot().ID

	if _, err := m.SubmitAnswer(context.Background(), "a"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := m.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}

	s := m.Snapshot()
	if s.State != StateAwaitingResume {
		t.Fatalf("expected awaiting_resume, got %s", s.State)
	}
	if s.ID == first {
		t.Fatalf("expected a new session id")
	}
	if len(s.Questions)+len(s.Answers)+len(s.Scores) != 0 || s.ResumeText != "" || s.Report != nil {
		t.Fatalf("expected empty session, got %#v", s)
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	m := newMachine(t, &fakeSource{initial: 3}, &fakeGrader{}, 15)
	startMachine(t, m)
	if _, err := m.SubmitAnswer(context.Background(), "a"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	s := m.Snapshot()
	s.Questions[0].Text = "mutated"
	s.Answers[0] = "mutated"
	s.Scores[0].Strengths[0] = "mutated"

	fresh := m.Snapshot()
	if fresh.Questions[0].Text == "mutated" || fresh.Answers[0] == "mutated" || fresh.Scores[0].Strengths[0] == "mutated" {
		t.Fatalf("snapshot shares memory with the machine")
	}
}

func TestLogsCarrySessionID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := New(Deps{Questions: &fakeSource{initial: 1}, Scorer: &fakeGrader{}, Logger: zap.New(core), NewID: func() string { return "fixed-id" }}, Config{})
	startMachine(t, m)

	entries := logs.FilterMessage("interview started").All()
	if len(entries) != 1 {
		t.Fatalf("expected a start log, got %v", logs.All())
	}
	if got := entries[0].ContextMap()["session_id"]; got != "fixed-id" {
		t.Fatalf("expected session_id field, got %v", got)
	}
	if m.Budget() != interview.DefaultBudget {
		t.Fatalf("expected default budget, got %d", m.Budget())
	}
}

func TestStateString(t *testing.T) {
	for st := StateCreated; st <= StateComplete; st++ {
		parsed, ok := ParseState(st.String())
		if !ok || parsed != st {
			t.Fatalf("state %d did not round trip through %q", st, st.String())
		}
	}
	if _, ok := ParseState("bogus"); ok {
		t.Fatalf("expected unknown state to fail")
	}
}
