package interview

import "strings"

// Placeholder answers stand in for a turn where nothing usable was captured.
// They are valid answers and advance the session like any other.
const (
	PlaceholderNoAnswer     = "No speech detected. Please try again."
	PlaceholderUnrecognized = "Speech was not understood. Please speak more clearly."
	placeholderErrorPrefix  = "Could not process speech: "
)

var placeholders = []string{PlaceholderNoAnswer, PlaceholderUnrecognized}

// CaptureFailed builds the placeholder recorded when answer capture errors out.
func CaptureFailed(reason string) string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return PlaceholderNoAnswer
	}
	return placeholderErrorPrefix + reason
}

// IsPlaceholder reports whether answer carries no candidate content.
func IsPlaceholder(answer string) bool {
	answer = strings.TrimSpace(answer)
	if answer == "" || strings.HasPrefix(answer, placeholderErrorPrefix) {
		return true
	}
	for _, p := range placeholders {
		if answer == p {
			return true
		}
	}
	return false
}
