// Package capture collects answers from the candidate and plays questions
// back. The console implementations stand in for speech input and output.
package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"

	"github.com/spigell/interviewer/internal/interview"
)

// ErrInterrupted is returned when the candidate aborts input (Ctrl+C).
var ErrInterrupted = errors.New("answer capture interrupted")

type Capturer interface {
	Capture(ctx context.Context, prompt string) (string, error)
}

type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Console reads answers from the terminal.
type Console struct {
	prompt func(label string) (string, error)
}

func NewConsole() *Console {
	return &Console{prompt: runPrompt}
}

func runPrompt(label string) (string, error) {
	p := promptui.Prompt{Label: label}
	return p.Run()
}

func (c *Console) Capture(ctx context.Context, label string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	answer, err := c.prompt(label)
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) {
			return "", ErrInterrupted
		}
		return "", err
	}

	return strings.TrimSpace(answer), nil
}

// Placeholder maps a capture failure to the answer recorded in its place.
func Placeholder(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, promptui.ErrEOF), errors.Is(err, io.EOF):
		return interview.PlaceholderNoAnswer
	case errors.Is(err, promptui.ErrAbort):
		return interview.PlaceholderUnrecognized
	default:
		return interview.CaptureFailed(err.Error())
	}
}

// Answer captures one answer. Capture failures become placeholder answers;
// only interruption and cancellation are returned as errors.
func Answer(ctx context.Context, c Capturer, label string) (string, error) {
	answer, err := c.Capture(ctx, label)
	if err == nil {
		return answer, nil
	}
	if errors.Is(err, ErrInterrupted) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "", err
	}
	return Placeholder(err), nil
}

// ConsoleSpeaker prints questions instead of synthesising speech.
type ConsoleSpeaker struct {
	Out io.Writer
}

func NewConsoleSpeaker() *ConsoleSpeaker {
	return &ConsoleSpeaker{Out: os.Stdout}
}

func (s *ConsoleSpeaker) Speak(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New("nothing to speak")
	}

	label := color.New(color.FgCyan, color.Bold).Sprint("Interviewer:")
	_, err := fmt.Fprintf(s.Out, "\n%s %s\n\n", label, text)
	return err
}
