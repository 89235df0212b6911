package ats

import (
	"strings"
	"testing"

	"resumeforge/internal/types"
)

func sampleResume() types.Resume {
	return types.Resume{
		JobTitle: "Backend Engineer",
		Location: "Berlin, Germany",
		Summary:  "Backend engineer with eight years of distributed systems experience.",
		Skills: map[string][]string{
			"Languages":      {"Go", "Python"},
			"Infrastructure": {"Kubernetes", "Terraform"},
		},
		Experience: []types.EntrySection{
			{
				Title:   "Senior Engineer, Acme",
				Period:  "2021 - Present",
				Bullets: []string{"Built the payments pipeline", "Led a team of four"},
			},
			{
				Title:   "Engineer, Initech",
				Period:  "2018 - 2021",
				Bullets: []string{"Maintained billing services"},
			},
		},
		Projects: []types.EntrySection{
			{Title: "opensource/queue", Bullets: []string{"Wrote a durable job queue"}},
		},
	}
}

func TestFormatForScoring(t *testing.T) {
	out := FormatForScoring(sampleResume())

	for _, want := range []string{
		"CONTACT\nBackend Engineer\nBerlin, Germany",
		"SUMMARY\nBackend engineer with eight years",
		"Infrastructure: Kubernetes, Terraform",
		"Languages: Go, Python",
		"Senior Engineer, Acme (2021 - Present)",
		"• Built the payments pipeline",
		"PROJECTS\nopensource/queue\n• Wrote a durable job queue",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\nfull output:\n%s", want, out)
		}
	}

	if strings.HasSuffix(out, "\n") {
		t.Error("output should not end with a trailing newline")
	}
}

func TestFormatForScoringSectionOrder(t *testing.T) {
	out := FormatForScoring(sampleResume())

	order := []string{"CONTACT", "SUMMARY", "SKILLS", "EXPERIENCE", "PROJECTS"}
	last := -1
	for _, header := range order {
		idx := strings.Index(out, header)
		if idx < 0 {
			t.Fatalf("missing section header %q", header)
		}
		if idx < last {
			t.Errorf("section %q out of order", header)
		}
		last = idx
	}

	// Skill categories sort alphabetically so repeated renders are identical.
	if strings.Index(out, "Infrastructure:") > strings.Index(out, "Languages:") {
		t.Error("skill categories not sorted alphabetically")
	}
}

func TestFormatForScoringOmitsEmptySections(t *testing.T) {
	tests := []struct {
		name   string
		resume types.Resume
		absent []string
	}{
		{
			name:   "zero resume renders empty",
			resume: types.Resume{},
			absent: []string{"CONTACT", "SUMMARY", "SKILLS", "EXPERIENCE", "PROJECTS"},
		},
		{
			name:   "summary only",
			resume: types.Resume{Summary: "Just a summary."},
			absent: []string{"CONTACT", "SKILLS", "EXPERIENCE", "PROJECTS"},
		},
		{
			name: "entry without period has no parentheses",
			resume: types.Resume{
				Experience: []types.EntrySection{{Title: "Engineer, Acme"}},
			},
			absent: []string{"(", ")"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := FormatForScoring(tt.resume)
			for _, header := range tt.absent {
				if strings.Contains(out, header) {
					t.Errorf("output should not contain %q:\n%s", header, out)
				}
			}
		})
	}
}

func TestFormatForScoringStable(t *testing.T) {
	r := sampleResume()
	first := FormatForScoring(r)
	for range 10 {
		if got := FormatForScoring(r); got != first {
			t.Fatal("formatting not stable across calls")
		}
	}
}
