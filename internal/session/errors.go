package session

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned when a turn-advancing call arrives while another one
	// is still in flight on the same Machine.
	ErrBusy = errors.New("session is busy")
	// ErrInvalidState is returned for operations the current state does not allow.
	ErrInvalidState = errors.New("operation not allowed in current session state")
)

// ResumeExtractionError blocks the session until a usable résumé is loaded.
type ResumeExtractionError struct {
	Err error
}

func (e *ResumeExtractionError) Error() string {
	if e.Err == nil {
		return "resume extraction failed"
	}
	return fmt.Sprintf("resume extraction failed: %v", e.Err)
}

func (e *ResumeExtractionError) Unwrap() error { return e.Err }

func invalidState(op string, st State) error {
	return fmt.Errorf("%s in state %s: %w", op, st, ErrInvalidState)
}
