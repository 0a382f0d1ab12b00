// Package report renders scores, final assessments and stored records for
// the terminal.
package report

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/spigell/interviewer/internal/interview"
	"github.com/spigell/interviewer/internal/scoring"
	"github.com/spigell/interviewer/internal/storage"
	"github.com/spigell/interviewer/internal/utils"
)

const (
	barWidth      = 20
	questionRunes = 70
	ruleWidth     = 60
)

// Stats summarises per-answer relevance scores.
type Stats struct {
	Count   int
	Average float64
	Min     int
	Max     int
}

func StatsOf(scores []scoring.Score) Stats {
	if len(scores) == 0 {
		return Stats{}
	}

	st := Stats{Count: len(scores), Min: scores[0].RelevanceScore, Max: scores[0].RelevanceScore}
	total := 0
	for _, s := range scores {
		total += s.RelevanceScore
		st.Min = min(st.Min, s.RelevanceScore)
		st.Max = max(st.Max, s.RelevanceScore)
	}
	st.Average = float64(total) / float64(len(scores))

	return st
}

func paint(score float64) *color.Color {
	switch scoring.BandOf(score) {
	case scoring.BandHigh:
		return color.New(color.FgGreen)
	case scoring.BandMedium:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

// Bar draws a fixed-width bar for a 0..100 score.
func Bar(score int) string {
	score = max(0, min(100, score))
	filled := score * barWidth / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

func heading(sb *strings.Builder, title string) {
	sb.WriteString(color.New(color.FgCyan, color.Bold).Sprint(title))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("─", ruleWidth))
	sb.WriteString("\n")
}

// ScoreLine renders the evaluation of one answer.
func ScoreLine(n int, s scoring.Score) string {
	var sb strings.Builder

	c := paint(float64(s.RelevanceScore))
	fmt.Fprintf(&sb, "%s %s\n", c.Sprintf("Answer %d: %d/100", n, s.RelevanceScore), c.Sprint(Bar(s.RelevanceScore)))
	if s.Feedback != "" {
		fmt.Fprintf(&sb, "  %s\n", s.Feedback)
	}
	writeList(&sb, "  Strengths", s.Strengths)
	writeList(&sb, "  To improve", s.AreasForImprovement)

	return sb.String()
}

// Scores renders every answered question with its score and summary stats.
func Scores(questions []interview.Question, scores []scoring.Score) string {
	var sb strings.Builder

	heading(&sb, "Answer Relevance Scores")
	if len(scores) == 0 {
		sb.WriteString("No answers scored yet\n")
		return sb.String()
	}

	for i, s := range scores {
		label := fmt.Sprintf("Q%d", i+1)
		if i < len(questions) {
			label = fmt.Sprintf("Q%d %s", i+1, utils.Head(questions[i].Prompt(), questionRunes))
		}
		c := paint(float64(s.RelevanceScore))
		fmt.Fprintf(&sb, "%s %s %s\n", c.Sprint(Bar(s.RelevanceScore)), c.Sprintf("%3d", s.RelevanceScore), label)
	}

	st := StatsOf(scores)
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Average: %s  Min: %d  Max: %d\n", paint(st.Average).Sprintf("%.1f", st.Average), st.Min, st.Max)

	return sb.String()
}

// Final renders the whole-interview report.
func Final(r scoring.FinalReport) string {
	var sb strings.Builder

	heading(&sb, "Interview Feedback")
	fmt.Fprintf(&sb, "Overall score: %s\n", paint(r.OverallScore).Sprintf("%.1f/100", r.OverallScore))
	if r.OverallAssessment != "" {
		fmt.Fprintf(&sb, "\n%s\n", r.OverallAssessment)
	}

	writeSection(&sb, "Strengths", r.ConsistentStrengths)
	writeSection(&sb, "Areas for improvement", r.ConsistentAreasForImprovement)
	writeSection(&sb, "Recommendations", r.Recommendations)

	return sb.String()
}

// Record renders a stored session in full.
func Record(r storage.Record) string {
	var sb strings.Builder

	heading(&sb, fmt.Sprintf("Interview %s", r.Timestamp))
	fmt.Fprintf(&sb, "Session: %s\nState: %s\nQuestions: %d  Answers: %d\n", r.SessionID, r.State, len(r.Questions), len(r.Answers))
	if len(r.Context.DiscussedTopics) > 0 {
		fmt.Fprintf(&sb, "Discussed: %s\n", strings.Join(r.Context.DiscussedTopics, ", "))
	}
	sb.WriteString("\n")

	for i, q := range r.Questions {
		fmt.Fprintf(&sb, "%s %s\n", color.New(color.Bold).Sprintf("Q%d.", i+1), q.Prompt())
		if i < len(r.Answers) {
			fmt.Fprintf(&sb, "A: %s\n", r.Answers[i])
		}
		if i < len(r.Scores) {
			sb.WriteString(ScoreLine(i+1, r.Scores[i]))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(Scores(r.Questions, r.Scores))
	if r.Feedback != nil {
		sb.WriteString("\n")
		sb.WriteString(Final(*r.Feedback))
	}

	return sb.String()
}

// List renders one line per stored record.
func List(entries []storage.Entry) string {
	if len(entries) == 0 {
		return "No interviews found\n"
	}

	var sb strings.Builder
	for _, e := range entries {
		r := e.Record
		status := color.YellowString("in progress")
		score := fmt.Sprintf("avg %.1f", r.Average())
		if r.Complete() {
			status = color.GreenString("complete")
			score = paint(r.Feedback.OverallScore).Sprintf("overall %.1f", r.Feedback.OverallScore)
		}
		fmt.Fprintf(&sb, "%s  %-11s  %2d answers  %s  %s\n", r.Timestamp, status, len(r.Answers), score, e.Path)
	}

	return sb.String()
}

func writeList(sb *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "%s: %s\n", label, strings.Join(items, "; "))
}

func writeSection(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%s\n", color.New(color.Bold).Sprint(title))
	for _, item := range items {
		fmt.Fprintf(sb, "  • %s\n", item)
	}
}
