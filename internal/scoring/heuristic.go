package scoring

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/spigell/interviewer/internal/interview"
)

const (
	coverageWindow = 15
	detailWindow   = 25
)

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "that": {}, "this": {}, "was": {},
	"were": {}, "are": {}, "you": {}, "your": {}, "have": {}, "has": {}, "had": {},
	"not": {}, "but": {}, "from": {}, "they": {}, "them": {}, "what": {}, "how": {},
	"could": {}, "would": {}, "about": {}, "which": {}, "when": {}, "where": {},
	"did": {}, "does": {}, "into": {}, "our": {}, "all": {}, "also": {}, "can": {},
}

func terms(text string) map[string]struct{} {
	out := make(map[string]struct{})
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
	for _, f := range fields {
		if len([]rune(f)) < 3 {
			continue
		}
		if _, stop := stopwords[f]; stop {
			continue
		}
		out[f] = struct{}{}
	}
	return out
}

// estimate scores an answer without the oracle from term overlap with the
// question and résumé and from how much the candidate actually said.
func estimate(question, answer, resume string) Score {
	if interview.IsPlaceholder(answer) {
		return Score{
			RelevanceScore:      0,
			Feedback:            "No usable answer was captured for this question.",
			Strengths:           []string{},
			AreasForImprovement: []string{"Provide an answer to the question"},
		}
	}

	words := terms(answer)
	reference := terms(question + " " + resume)

	hits := 0
	for w := range words {
		if _, ok := reference[w]; ok {
			hits++
		}
	}

	coverage := math.Min(1, float64(hits)/math.Max(1, math.Min(float64(len(words)), coverageWindow)))
	detail := math.Min(1, float64(len(words))/detailWindow)
	score := int(math.Round(100 * (0.6*coverage + 0.4*detail)))

	s := Score{
		RelevanceScore: clampInt(score),
		Feedback: fmt.Sprintf("Automatic estimate: the answer uses %d of its %d distinct terms from the question or resume.",
			hits, len(words)),
		Strengths:           []string{},
		AreasForImprovement: []string{},
	}

	if coverage >= 0.5 {
		s.Strengths = append(s.Strengths, "Answer stays close to the question and resume")
	} else {
		s.AreasForImprovement = append(s.AreasForImprovement, "Tie the answer more directly to the question and your experience")
	}
	if detail >= 1 {
		s.Strengths = append(s.Strengths, "Answer is detailed")
	} else if detail < 0.5 {
		s.AreasForImprovement = append(s.AreasForImprovement, "Give a more detailed answer with concrete examples")
	}

	return s
}

// summarize aggregates per-answer estimates into a report.
func summarize(questions, answers []string, resume string) FinalReport {
	n := min(len(questions), len(answers))
	if n == 0 {
		return FinalReport{
			OverallScore:                  0,
			ConsistentStrengths:           []string{},
			ConsistentAreasForImprovement: []string{},
			Recommendations:               []string{"Complete at least one answer to receive an assessment"},
			OverallAssessment:             "No answers were recorded.",
		}
	}

	strengths := map[string]int{}
	areas := map[string]int{}
	var strengthOrder, areaOrder []string
	total := 0

	for i := 0; i < n; i++ {
		s := estimate(questions[i], answers[i], resume)
		total += s.RelevanceScore
		for _, v := range s.Strengths {
			if strengths[v] == 0 {
				strengthOrder = append(strengthOrder, v)
			}
			strengths[v]++
		}
		for _, v := range s.AreasForImprovement {
			if areas[v] == 0 {
				areaOrder = append(areaOrder, v)
			}
			areas[v]++
		}
	}

	consistent := func(order []string, counts map[string]int) []string {
		out := []string{}
		for _, v := range order {
			if counts[v]*2 >= n {
				out = append(out, v)
			}
		}
		return out
	}

	report := FinalReport{
		OverallScore:                  math.Round(float64(total)/float64(n)*10) / 10,
		ConsistentStrengths:           consistent(strengthOrder, strengths),
		ConsistentAreasForImprovement: consistent(areaOrder, areas),
		Recommendations:               []string{},
	}

	for _, area := range report.ConsistentAreasForImprovement {
		report.Recommendations = append(report.Recommendations, area+" in future interviews")
	}
	if len(report.Recommendations) == 0 {
		report.Recommendations = append(report.Recommendations, "Keep backing answers with concrete examples from your projects")
	}

	report.OverallAssessment = fmt.Sprintf("Automatic assessment of %d answer(s): average relevance %.1f/100 (%s).",
		n, report.OverallScore, BandOf(report.OverallScore))

	return report
}

func clampInt(v int) int {
	return max(0, min(100, v))
}

func clampFloat(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}
