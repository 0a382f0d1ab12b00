package interview

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/interviewer/internal/ai"
	"github.com/spigell/interviewer/internal/logger"
	"github.com/spigell/interviewer/internal/utils"
)

const (
	DefaultBudget       = 15
	DefaultInitialCount = 3
	DefaultBatchSize    = 2

	resumeContextRunes = 500
)

const initialSystemPrompt = `You are an expert AI interviewer. Generate diverse initial questions covering different aspects
of the candidate's background. Questions should cover different areas like technical skills,
projects, and work experience.`

const discussedSystemPrompt = `Analyze these interview questions and answers to identify discussed topics.
Return a list of key topics, skills, and themes that have been covered, one per line.`

// GeneratorConfig bounds question generation. Budget is the single
// interview-wide question cap and must match the session's cap.
type GeneratorConfig struct {
	Budget       int
	InitialCount int
	BatchSize    int
}

func (c GeneratorConfig) withDefaults() GeneratorConfig {
	if c.Budget <= 0 {
		c.Budget = DefaultBudget
	}
	if c.InitialCount <= 0 {
		c.InitialCount = DefaultInitialCount
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	return c
}

// Generator produces initial and adaptive question batches.
type Generator struct {
	oracle ai.Oracle
	topics *TopicExtractor
	cfg    GeneratorConfig
	logger *zap.Logger
}

// FollowUp is the outcome of one adaptive generation call.
type FollowUp struct {
	Questions []Question
	Discussed []string
	Fallback  bool
}

func NewGenerator(oracle ai.Oracle, cfg GeneratorConfig, log *zap.Logger) *Generator {
	log = logger.OrNop(log)
	return &Generator{
		oracle: oracle,
		topics: NewTopicExtractor(oracle, log),
		cfg:    cfg.withDefaults(),
		logger: log,
	}
}

// Budget returns the configured interview-wide question cap.
func (g *Generator) Budget() int { return g.cfg.Budget }

// GenerateInitial returns up to InitialCount opening questions, or the fixed
// fallback triplet when the oracle fails or yields no "Q:" lines.
func (g *Generator) GenerateInitial(ctx context.Context, resumeText string) []Question {
	count := min(g.cfg.InitialCount, g.cfg.Budget)
	summary := g.topics.Extract(ctx, resumeText)

	user := fmt.Sprintf(`Based on this resume analysis:
%s

Generate %d different questions that:
- Cover different aspects (e.g., one technical, one project-based, one behavioral)
- Help understand the candidate's background comprehensively
- Serve as good conversation starters

Format: Return %d questions, each on its own line starting with Q:`, summary, count, count)

	raw, err := g.oracle.Complete(ctx, []ai.Message{ai.System(initialSystemPrompt), ai.User(user)})
	if err != nil {
		g.logger.Warn("generating initial questions, using fallback", zap.Error(err))
		return truncate(FallbackInitial(), count)
	}

	texts := parseQuestions(raw)
	if len(texts) == 0 {
		g.logger.Warn("no questions in oracle response, using fallback",
			zap.String("response_preview", utils.TruncateForLog(raw, 200)),
		)
		return truncate(FallbackInitial(), count)
	}

	return truncate(tag(texts, OriginInitial), count)
}

// GenerateAdaptive returns at most min(BatchSize, Budget-len(qctx.Questions))
// follow-up questions and none once the budget is reached.
func (g *Generator) GenerateAdaptive(ctx context.Context, lastAnswer, resumeText string, qctx Context) []Question {
	return g.FollowUp(ctx, lastAnswer, resumeText, qctx).Questions
}

// FollowUp is GenerateAdaptive that also reports the discussed topics it
// conditioned on and whether the fallback path produced the questions.
func (g *Generator) FollowUp(ctx context.Context, lastAnswer, resumeText string, qctx Context) FollowUp {
	asked := len(qctx.Questions)
	if asked >= g.cfg.Budget {
		return FollowUp{}
	}

	count := min(g.cfg.BatchSize, g.cfg.Budget-asked)

	discussed := g.AnalyzeDiscussed(ctx, qctx)
	summary := g.topics.Extract(ctx, resumeText)

	system := fmt.Sprintf(`You are an expert AI interviewer conducting a comprehensive interview.
Topics already discussed: %s

Available topics from resume: %s

Generate questions that:
1. Follow up on relevant points from the last answer
2. Explore unexplored topics from their resume
3. Connect different aspects of their experience`, formatList(discussed), summary)

	user := fmt.Sprintf(`Resume Context:
%s...

Interview History:
%s

Most Recent Answer:
%s

Generate %d questions that:
- Follow up on specific points from their last answer
- Explore unexplored skills or projects from their resume
- Connect their previous answers to other relevant experience
- Ensure comprehensive coverage of their background

Format: Return exactly %d questions, one per line, starting with 'Q: '`,
		utils.Head(resumeText, resumeContextRunes), qctx.Transcript(), lastAnswer, count, count)

	raw, err := g.oracle.Complete(ctx, []ai.Message{ai.System(system), ai.User(user)})
	if err != nil {
		g.logger.Warn("generating adaptive questions, using fallback", zap.Error(err))
		return FollowUp{Questions: truncate(Fallback(lastAnswer, discussed), count), Discussed: discussed, Fallback: true}
	}

	texts := parseQuestions(raw)
	if len(texts) == 0 {
		g.logger.Warn("no adaptive questions in oracle response, using fallback",
			zap.String("response_preview", utils.TruncateForLog(raw, 200)),
		)
		return FollowUp{Questions: truncate(Fallback(lastAnswer, discussed), count), Discussed: discussed, Fallback: true}
	}

	return FollowUp{Questions: truncate(tag(texts, OriginAdaptive), count), Discussed: discussed}
}

// AnalyzeDiscussed asks the oracle which topics the transcript already
// covers. It returns an empty slice on failure.
func (g *Generator) AnalyzeDiscussed(ctx context.Context, qctx Context) []string {
	transcript := qctx.Transcript()
	if transcript == "" {
		return []string{}
	}

	raw, err := g.oracle.Complete(ctx, []ai.Message{ai.System(discussedSystemPrompt), ai.User(transcript)})
	if err != nil {
		g.logger.Warn("analyzing discussed topics", zap.Error(err))
		return []string{}
	}

	lines := utils.NonEmptyLines(raw)
	if lines == nil {
		return []string{}
	}
	return lines
}

func truncate(qs []Question, n int) []Question {
	if n <= 0 {
		return []Question{}
	}
	if len(qs) > n {
		return qs[:n]
	}
	return qs
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "none yet"
	}
	return fmt.Sprintf("%q", items)
}
