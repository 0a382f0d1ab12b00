package interview

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseTopics(t *testing.T) {
	raw := "```json\n" + `{
		"Technical Skills": ["Go", "Kubernetes"],
		"projects": [{"name": "billing", "stack": ["Go", "Postgres"]}],
		"Work-Experience": "5 years at Acme",
		"soft_skills": [],
		"Achievements": ["Speaker", 2021],
		"Certifications": ["CKA"]
	}` + "\n```"

	summary, err := ParseTopics(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Join(summary.TechnicalSkills, ",") != "Go,Kubernetes" {
		t.Fatalf("unexpected technical skills: %q", summary.TechnicalSkills)
	}
	if len(summary.Projects) != 1 || summary.Projects[0] != "name: billing; stack: Go, Postgres" {
		t.Fatalf("unexpected projects: %q", summary.Projects)
	}
	if len(summary.WorkExperience) != 1 || summary.WorkExperience[0] != "5 years at Acme" {
		t.Fatalf("unexpected work experience: %q", summary.WorkExperience)
	}
	if len(summary.SoftSkills) != 0 {
		t.Fatalf("expected no soft skills, got %q", summary.SoftSkills)
	}
	if strings.Join(summary.Achievements, ",") != "Speaker,2021" {
		t.Fatalf("unexpected achievements: %q", summary.Achievements)
	}
	if got := summary.Other["certifications"]; len(got) != 1 || got[0] != "CKA" {
		t.Fatalf("unexpected other categories: %v", summary.Other)
	}

	rendered := summary.String()
	for _, want := range []string{"Technical skills: Go, Kubernetes", "certifications: CKA"} {
		if !strings.Contains(rendered, want) {
			t.Fatalf("expected %q in %q", want, rendered)
		}
	}
}

func TestParseTopicsAliases(t *testing.T) {
	summary, err := ParseTopics(`{"skills": ["Go"], "experience": ["Acme"]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summary.TechnicalSkills) != 1 || len(summary.WorkExperience) != 1 {
		t.Fatalf("aliases were not applied: %+v", summary)
	}
}

func TestParseTopicsFailures(t *testing.T) {
	for _, raw := range []string{"", "Skills: Go, Python", "{broken", `{"projects": []}`} {
		if _, err := ParseTopics(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestTopicExtractorFailsSoft(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)

	tests := []struct {
		name   string
		oracle *routeOracle
	}{
		{name: "malformed", oracle: (&routeOracle{}).on(routeTopics, "technical skills: go", nil)},
		{name: "oracle error", oracle: failingOracle()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := NewTopicExtractor(tt.oracle, zap.New(core)).Extract(context.Background(), "resume")
			if !summary.Empty() {
				t.Fatalf("expected empty summary, got %+v", summary)
			}
			if summary.String() != "no topics extracted" {
				t.Fatalf("unexpected rendering: %q", summary.String())
			}
		})
	}

	if observed.Len() != 2 {
		t.Fatalf("expected 2 warnings, got %d", observed.Len())
	}
}
