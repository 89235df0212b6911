package ats

import (
	"reflect"
	"testing"
)

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name           string
		jobDescription string
		wantTechnical  []string
		wantTools      []string
		wantSoft       []string
	}{
		{
			name:           "empty description",
			jobDescription: "",
		},
		{
			name:           "case insensitive matching",
			jobDescription: "We need PYTHON and Docker experience",
			wantTechnical:  []string{"python"},
			wantTools:      []string{"docker"},
		},
		{
			name:           "substring matching includes java inside javascript",
			jobDescription: "Senior JavaScript engineer",
			wantTechnical:  []string{"java", "javascript"},
		},
		{
			name:           "multi-word soft skills",
			jobDescription: "Strong problem solving and cross-functional collaboration",
			wantSoft:       []string{"collaboration", "problem solving", "cross-functional"},
		},
		{
			name:           "no duplicates for repeated mentions",
			jobDescription: "python python python",
			wantTechnical:  []string{"python"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractKeywords(tt.jobDescription)
			if !reflect.DeepEqual(got.TechnicalSkills, tt.wantTechnical) {
				t.Errorf("TechnicalSkills = %v, want %v", got.TechnicalSkills, tt.wantTechnical)
			}
			if !reflect.DeepEqual(got.Tools, tt.wantTools) {
				t.Errorf("Tools = %v, want %v", got.Tools, tt.wantTools)
			}
			if !reflect.DeepEqual(got.SoftSkills, tt.wantSoft) {
				t.Errorf("SoftSkills = %v, want %v", got.SoftSkills, tt.wantSoft)
			}
		})
	}
}

func TestExtractKeywordsIndustryGating(t *testing.T) {
	// Industry terms require a trigger word before the vocabulary is scanned.
	noTrigger := ExtractKeywords("We process payments at scale")
	if len(noTrigger.IndustryTerms) != 0 {
		t.Errorf("expected no industry terms without a trigger, got %v", noTrigger.IndustryTerms)
	}

	withTrigger := ExtractKeywords("Fintech company processing payments with fraud detection")
	want := []string{"payments", "fraud detection"}
	if !reflect.DeepEqual(withTrigger.IndustryTerms, want) {
		t.Errorf("IndustryTerms = %v, want %v", withTrigger.IndustryTerms, want)
	}
}

func TestExtractKeywordsDeterministic(t *testing.T) {
	description := "Go engineer with Kubernetes, Docker, React, agile, leadership"
	first := ExtractKeywords(description)
	for range 5 {
		if got := ExtractKeywords(description); !reflect.DeepEqual(got, first) {
			t.Fatalf("extraction not deterministic: %v vs %v", got, first)
		}
	}
}

func TestPrioritizedKeywords(t *testing.T) {
	kw := ExtractKeywords("Fintech role: Python, Go, React, Docker, Kubernetes, agile, ci/cd, leadership, payments")

	got := PrioritizedKeywords(kw, 2)
	// Two per category, technical skills first; soft skills last.
	if len(got) == 0 {
		t.Fatal("expected prioritized keywords, got none")
	}
	if got[0] != "python" {
		t.Errorf("first prioritized keyword = %q, want %q", got[0], "python")
	}
	if got[len(got)-1] != "leadership" {
		t.Errorf("last prioritized keyword = %q, want %q", got[len(got)-1], "leadership")
	}
	for i, term := range got {
		for j := i + 1; j < len(got); j++ {
			if got[j] == term {
				t.Errorf("duplicate keyword %q at positions %d and %d", term, i, j)
			}
		}
	}
}

func BenchmarkExtractKeywords(b *testing.B) {
	description := "Senior Go engineer at a fintech company. Python, Kubernetes, Docker, " +
		"PostgreSQL, Kafka, React, agile, ci/cd, microservices, leadership, payments, compliance."
	for b.Loop() {
		ExtractKeywords(description)
	}
}
