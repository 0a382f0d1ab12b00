package ai

import (
	"context"
	"errors"
	"fmt"
)

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

var (
	// ErrTransient marks a backend failure worth retrying (rate limits, 5xx, timeouts).
	ErrTransient = errors.New("transient oracle failure")
	// ErrExhausted is matched by errors returned once all retry attempts failed.
	ErrExhausted = errors.New("oracle retries exhausted")
)

// Message is one role-tagged entry of a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// System builds a system message.
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }

// User builds a user message.
func User(content string) Message { return Message{Role: RoleUser, Content: content} }

// Oracle turns a list of messages into a single text completion.
type Oracle interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// OracleFunc adapts a function to the Oracle interface.
type OracleFunc func(ctx context.Context, messages []Message) (string, error)

func (f OracleFunc) Complete(ctx context.Context, messages []Message) (string, error) {
	return f(ctx, messages)
}

// OracleError is returned by RetryOracle after the last attempt failed.
type OracleError struct {
	Attempts int
	Err      error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("oracle failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *OracleError) Unwrap() []error {
	return []error{ErrExhausted, e.Err}
}

// Transient wraps err so that errors.Is(err, ErrTransient) holds.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrTransient, err)
}
