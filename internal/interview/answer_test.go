package interview

import (
	"encoding/json"
	"testing"
)

func TestIsPlaceholder(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{"", true},
		{"  \n", true},
		{PlaceholderNoAnswer, true},
		{PlaceholderUnrecognized, true},
		{CaptureFailed("timeout"), true},
		{"I used Go for five years", false},
		{"No speech detected, but here is my answer", false},
	}

	for _, tt := range tests {
		if got := IsPlaceholder(tt.answer); got != tt.want {
			t.Fatalf("IsPlaceholder(%q) = %v, want %v", tt.answer, got, tt.want)
		}
	}

	if CaptureFailed(" ") != PlaceholderNoAnswer {
		t.Fatalf("expected blank reason to map to the no-answer placeholder")
	}
}

func TestQuestionUnmarshalAcceptsString(t *testing.T) {
	var qs []Question
	if err := json.Unmarshal([]byte(`["Q: plain", {"text": "Q: tagged", "origin": "adaptive"}]`), &qs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(qs) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(qs))
	}
	if qs[0].Text != "Q: plain" || qs[0].Origin != "" {
		t.Fatalf("unexpected first question %#v", qs[0])
	}
	if qs[1].Origin != OriginAdaptive || qs[1].Prompt() != "tagged" {
		t.Fatalf("unexpected second question %#v", qs[1])
	}

	var bad Question
	if err := json.Unmarshal([]byte(`42`), &bad); err == nil {
		t.Fatalf("expected error for a number")
	}
}
