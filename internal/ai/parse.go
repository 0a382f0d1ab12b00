package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON is returned when a completion does not contain a JSON object.
var ErrNoJSON = errors.New("no json object in response")

// ExtractJSON strips markdown fences and surrounding prose from a completion
// and returns the outermost JSON object it contains.
func ExtractJSON(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.TrimSpace(strings.Trim(raw, "`"))

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return "", ErrNoJSON
	}

	return raw[start : end+1], nil
}

// DecodeObject extracts and unmarshals the JSON object of a completion.
func DecodeObject(raw string) (map[string]any, error) {
	cleaned, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse json response: %w", err)
	}

	return data, nil
}

// NormalizeKey lowercases a key and folds spaces and hyphens into underscores,
// so "Technical Skills" and "technical-skills" decode to the same field.
func NormalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	return key
}

// NormalizeKeys applies NormalizeKey to the top level keys of data.
func NormalizeKeys(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[NormalizeKey(k)] = v
	}
	return out
}
