package interview

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/interviewer/internal/ai"
	"github.com/spigell/interviewer/internal/logger"
)

const topicsSystemPrompt = `You are an expert resume analyzer. Extract key topics from this resume including:
1. Technical skills
2. Projects
3. Work experiences
4. Soft skills
5. Achievements

Format: Return a single JSON object with the keys "technical_skills", "projects",
"work_experience", "soft_skills" and "achievements", each mapping to a list of short strings.`

// TopicSummary is a best-effort structured view of a résumé. It is transient
// and recomputed for every generation call.
type TopicSummary struct {
	TechnicalSkills []string            `mapstructure:"technical_skills"`
	Projects        []string            `mapstructure:"projects"`
	WorkExperience  []string            `mapstructure:"work_experience"`
	SoftSkills      []string            `mapstructure:"soft_skills"`
	Achievements    []string            `mapstructure:"achievements"`
	Other           map[string][]string `mapstructure:",remain"`
}

var categoryAliases = map[string]string{
	"skills":           "technical_skills",
	"technical":        "technical_skills",
	"work_experiences": "work_experience",
	"experience":       "work_experience",
	"experiences":      "work_experience",
	"soft":             "soft_skills",
}

// Empty reports that no evidence was extracted.
func (t TopicSummary) Empty() bool {
	if len(t.TechnicalSkills)+len(t.Projects)+len(t.WorkExperience)+len(t.SoftSkills)+len(t.Achievements) > 0 {
		return false
	}
	for _, items := range t.Other {
		if len(items) > 0 {
			return false
		}
	}
	return true
}

// String renders the summary for use inside prompts.
func (t TopicSummary) String() string {
	if t.Empty() {
		return "no topics extracted"
	}

	var b strings.Builder
	write := func(name string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&b, "%s: %s\n", name, strings.Join(items, ", "))
	}

	write("Technical skills", t.TechnicalSkills)
	write("Projects", t.Projects)
	write("Work experience", t.WorkExperience)
	write("Soft skills", t.SoftSkills)
	write("Achievements", t.Achievements)

	keys := make([]string, 0, len(t.Other))
	for k := range t.Other {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		write(k, t.Other[k])
	}

	return strings.TrimSpace(b.String())
}

// ParseTopics decodes an oracle completion into a TopicSummary.
func ParseTopics(raw string) (TopicSummary, error) {
	var summary TopicSummary

	data, err := ai.DecodeObject(raw)
	if err != nil {
		return summary, err
	}

	flat := make(map[string][]string, len(data))
	for key, value := range ai.NormalizeKeys(data) {
		if alias, ok := categoryAliases[key]; ok {
			key = alias
		}
		if items := flattenItems(value); len(items) > 0 {
			flat[key] = append(flat[key], items...)
		}
	}

	if len(flat) == 0 {
		return summary, errors.New("response contains no topic categories")
	}

	if err := mapstructure.Decode(flat, &summary); err != nil {
		return TopicSummary{}, fmt.Errorf("decode topics: %w", err)
	}

	return summary, nil
}

// flattenItems turns a category value into a list of strings. Scalars become
// a single item and nested objects are rendered as "key: value" pairs.
func flattenItems(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if s := strings.TrimSpace(val); s != "" {
			return []string{s}
		}
		return nil
	case []any:
		var out []string
		for _, item := range val {
			out = append(out, flattenItems(item)...)
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if items := flattenItems(val[k]); len(items) > 0 {
				parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(items, ", ")))
			}
		}
		if len(parts) == 0 {
			return nil
		}
		return []string{strings.Join(parts, "; ")}
	default:
		return []string{fmt.Sprintf("%v", val)}
	}
}

// TopicExtractor derives a TopicSummary from résumé text via the oracle.
type TopicExtractor struct {
	oracle ai.Oracle
	logger *zap.Logger
}

func NewTopicExtractor(oracle ai.Oracle, log *zap.Logger) *TopicExtractor {
	return &TopicExtractor{oracle: oracle, logger: logger.OrNop(log)}
}

// Extract never fails: oracle and parse errors collapse into an empty
// summary, which callers treat as "no evidence".
func (e *TopicExtractor) Extract(ctx context.Context, resumeText string) TopicSummary {
	raw, err := e.oracle.Complete(ctx, []ai.Message{
		ai.System(topicsSystemPrompt),
		ai.User("Analyze this resume and extract key topics:\n" + resumeText),
	})
	if err != nil {
		e.logger.Warn("extracting resume topics", zap.Error(err))
		return TopicSummary{}
	}

	summary, err := ParseTopics(raw)
	if err != nil {
		e.logger.Warn("parsing resume topics", zap.Error(err))
		return TopicSummary{}
	}

	return summary
}
