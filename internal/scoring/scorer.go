package scoring

import (
	"context"
	"errors"
	"fmt"
	"strings"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/interviewer/internal/ai"
	"github.com/spigell/interviewer/internal/interview"
	"github.com/spigell/interviewer/internal/logger"
	"github.com/spigell/interviewer/internal/utils"
)

//go:embed score_prompt.md
var scorePromptTemplate string

//go:embed report_prompt.md
var reportPromptTemplate string

const (
	resumeExcerptRunes  = 1000
	defaultMaxLogLength = 200
)

const systemPrompt = "You are an expert interviewer. Respond with a single JSON object and nothing else."

// Scorer grades answers and produces the final report. Neither operation
// fails: oracle or parse errors fall back to a local estimate.
type Scorer struct {
	oracle    ai.Oracle
	logger    *zap.Logger
	maxLogLen int
}

func NewScorer(oracle ai.Oracle, log *zap.Logger, maxLogLength int) *Scorer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	return &Scorer{oracle: oracle, logger: logger.OrNop(log), maxLogLen: maxLogLength}
}

// Score grades a single answer against its question and the résumé.
func (s *Scorer) Score(ctx context.Context, question, answer, resume string) Score {
	if interview.IsPlaceholder(answer) {
		return estimate(question, answer, resume)
	}

	prompt := buildPrompt(scorePromptTemplate, map[string]string{
		"{{RESUME}}":   utils.Head(resume, resumeExcerptRunes),
		"{{QUESTION}}": question,
		"{{ANSWER}}":   answer,
	})

	raw, err := s.complete(ctx, prompt)
	if err != nil {
		s.logger.Warn("scoring answer, using estimate", zap.Error(err))
		return estimate(question, answer, resume)
	}

	score, err := ParseScore(raw)
	if err != nil {
		s.logger.Warn("parsing answer score, using estimate",
			zap.Error(err),
			zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
		)
		return estimate(question, answer, resume)
	}

	s.logger.Debug("answer scored", zap.Int("relevance_score", score.RelevanceScore))
	return score
}

// Aggregate builds the final report over the pairs questions[i], answers[i]
// for i below the shorter of the two lengths.
func (s *Scorer) Aggregate(ctx context.Context, questions, answers []string, resume string) FinalReport {
	n := min(len(questions), len(answers))
	if n == 0 {
		return summarize(nil, nil, resume)
	}

	prompt := buildPrompt(reportPromptTemplate, map[string]string{
		"{{RESUME}}":     utils.Head(resume, resumeExcerptRunes),
		"{{TRANSCRIPT}}": transcript(questions[:n], answers[:n]),
	})

	raw, err := s.complete(ctx, prompt)
	if err != nil {
		s.logger.Warn("building final report, using estimate", zap.Error(err))
		return summarize(questions, answers, resume)
	}

	report, err := ParseReport(raw)
	if err != nil {
		s.logger.Warn("parsing final report, using estimate",
			zap.Error(err),
			zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
		)
		return summarize(questions, answers, resume)
	}

	return report
}

func (s *Scorer) complete(ctx context.Context, prompt string) (string, error) {
	if s.oracle == nil {
		return "", errors.New("oracle is not configured")
	}
	return s.oracle.Complete(ctx, []ai.Message{ai.System(systemPrompt), ai.User(prompt)})
}

// ParseScore decodes a score object. relevance_score is required; the list
// and text fields default to empty.
func ParseScore(raw string) (Score, error) {
	data, err := ai.DecodeObject(raw)
	if err != nil {
		return Score{}, err
	}
	data = ai.NormalizeKeys(data)
	if _, ok := data["relevance_score"]; !ok {
		return Score{}, errors.New("response has no relevance_score")
	}

	var score Score
	if err := decode(data, &score); err != nil {
		return Score{}, fmt.Errorf("decode score: %w", err)
	}

	score.RelevanceScore = clampInt(score.RelevanceScore)
	score.Strengths = nonNil(score.Strengths)
	score.AreasForImprovement = nonNil(score.AreasForImprovement)
	return score, nil
}

// ParseReport decodes a final report object. overall_score is required.
func ParseReport(raw string) (FinalReport, error) {
	data, err := ai.DecodeObject(raw)
	if err != nil {
		return FinalReport{}, err
	}
	data = ai.NormalizeKeys(data)
	if _, ok := data["overall_score"]; !ok {
		return FinalReport{}, errors.New("response has no overall_score")
	}

	var report FinalReport
	if err := decode(data, &report); err != nil {
		return FinalReport{}, fmt.Errorf("decode report: %w", err)
	}

	report.OverallScore = clampFloat(report.OverallScore)
	report.ConsistentStrengths = nonNil(report.ConsistentStrengths)
	report.ConsistentAreasForImprovement = nonNil(report.ConsistentAreasForImprovement)
	report.Recommendations = nonNil(report.Recommendations)
	return report, nil
}

func decode(input map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func buildPrompt(template string, values map[string]string) string {
	out := template
	for placeholder, value := range values {
		out = strings.ReplaceAll(out, placeholder, strings.TrimSpace(value))
	}
	return out
}

func transcript(questions, answers []string) string {
	var b strings.Builder
	for i := range questions {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%d. %s\nA: %s", i+1, questions[i], answers[i])
	}
	return b.String()
}

func nonNil(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
