package interview

import (
	"fmt"
	"sort"
	"strings"
)

const genericTopic = "this technical approach"

// Vocabulary is scanned in order; the first term found in an answer becomes
// its key topic.
var Vocabulary = []string{
	"python", "java", "javascript", "react", "node", "database",
	"api", "cloud", "aws", "azure", "docker", "kubernetes",
	"machine learning", "ai", "testing", "agile", "project management",
	"leadership", "development", "architecture", "design", "implementation",
}

var initialFallback = []string{
	"Q: Could you walk me through your most significant technical project?",
	"Q: What are your core technical skills and how have you applied them?",
	"Q: Tell me about a challenging situation in your work and how you handled it.",
}

// FallbackInitial returns the fixed opening triplet covering the technical
// project, skills and behavioral angles.
func FallbackInitial() []Question {
	return tag(initialFallback, OriginInitial)
}

// KeyTopic returns the first vocabulary term contained in text,
// case-insensitively, or a generic phrase.
func KeyTopic(text string) string {
	lower := strings.ToLower(text)
	for _, topic := range Vocabulary {
		if strings.Contains(lower, topic) {
			return topic
		}
	}
	return genericTopic
}

// Fallback builds follow-up questions without the oracle. The five templated
// questions are always present; a sixth one names the lexicographically first
// vocabulary term absent from discussed. Callers truncate to what they need.
func Fallback(answer string, discussed []string) []Question {
	key := KeyTopic(answer)

	texts := []string{
		fmt.Sprintf("Q: Could you provide a specific example of how you used %s in your work?", key),
		fmt.Sprintf("Q: What technical challenges did you face while working with %s?", key),
		fmt.Sprintf("Q: How does your experience with %s relate to your other technical skills?", key),
		"Q: Could you elaborate on the technical decision-making process?",
		"Q: What were the technical outcomes and metrics of this work?",
	}

	if topic, ok := unusedTopic(discussed); ok {
		texts = append(texts, fmt.Sprintf("Q: How have you worked with %s in your projects?", topic))
	}

	return tag(texts, OriginAdaptive)
}

func unusedTopic(discussed []string) (string, bool) {
	seen := make(map[string]struct{}, len(discussed))
	for _, d := range discussed {
		seen[normalizeTopic(d)] = struct{}{}
	}

	var unused []string
	for _, topic := range Vocabulary {
		if _, ok := seen[topic]; !ok {
			unused = append(unused, topic)
		}
	}
	if len(unused) == 0 {
		return "", false
	}

	sort.Strings(unused)
	return unused[0], true
}

// normalizeTopic lowercases a discussed-topic line and strips list bullets
// and numbering the oracle tends to add ("- Python", "2. Docker").
func normalizeTopic(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimLeft(s, "-*•· \t")
	if idx := strings.IndexAny(s, ".)"); idx > 0 && isDigits(s[:idx]) {
		s = s[idx+1:]
	}
	return strings.TrimSpace(s)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
