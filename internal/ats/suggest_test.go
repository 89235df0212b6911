package ats

import (
	"testing"

	"resumeforge/internal/types"
)

func perfectBreakdown() types.ScoreBreakdown {
	return types.ScoreBreakdown{
		KeywordMatch:        20,
		ExperienceRelevance: 20,
		FormatCompatibility: 20,
		SectionCompleteness: 20,
		ClarityUniqueness:   20,
	}
}

func TestSuggestNoWeakComponents(t *testing.T) {
	result := types.ScoreResult{Score: 100, Breakdown: perfectBreakdown()}
	if got := Suggest(result); len(got) != 0 {
		t.Errorf("expected no suggestions for a perfect breakdown, got %v", got)
	}
}

func TestSuggestThresholdBoundary(t *testing.T) {
	// 15 is the floor: exactly 15 is acceptable, 14 triggers.
	b := perfectBreakdown()
	b.ExperienceRelevance = 15
	if got := Suggest(types.ScoreResult{Breakdown: b}); len(got) != 0 {
		t.Errorf("component at threshold should not trigger, got %v", got)
	}

	b.ExperienceRelevance = 14
	got := Suggest(types.ScoreResult{Breakdown: b})
	if len(got) != 1 {
		t.Fatalf("expected one suggestion, got %v", got)
	}
	if got[0].Section != types.SectionExperience {
		t.Errorf("Section = %q, want experience", got[0].Section)
	}
	if got[0].Priority != types.PriorityHigh {
		t.Errorf("Priority = %q, want high", got[0].Priority)
	}
}

func TestSuggestComponentMapping(t *testing.T) {
	tests := []struct {
		name         string
		mutate       func(*types.ScoreBreakdown)
		wantSections []types.Section
	}{
		{
			name:         "low keyword match targets skills then summary",
			mutate:       func(b *types.ScoreBreakdown) { b.KeywordMatch = 10 },
			wantSections: []types.Section{types.SectionSkills, types.SectionSummary},
		},
		{
			name:         "low clarity targets experience then projects",
			mutate:       func(b *types.ScoreBreakdown) { b.ClarityUniqueness = 10 },
			wantSections: []types.Section{types.SectionExperience, types.SectionProjects},
		},
		{
			name:         "low completeness targets summary",
			mutate:       func(b *types.ScoreBreakdown) { b.SectionCompleteness = 10 },
			wantSections: []types.Section{types.SectionSummary},
		},
		{
			name:         "low format compatibility targets experience",
			mutate:       func(b *types.ScoreBreakdown) { b.FormatCompatibility = 10 },
			wantSections: []types.Section{types.SectionExperience},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := perfectBreakdown()
			tt.mutate(&b)
			got := Suggest(types.ScoreResult{Breakdown: b})
			if len(got) != len(tt.wantSections) {
				t.Fatalf("got %d suggestions, want %d: %v", len(got), len(tt.wantSections), got)
			}
			for i, want := range tt.wantSections {
				if got[i].Section != want {
					t.Errorf("suggestion %d targets %q, want %q", i, got[i].Section, want)
				}
			}
		})
	}
}

func TestSuggestOrdering(t *testing.T) {
	// Multiple weak components rank by priority first, then by expected
	// improvement within the same priority.
	b := perfectBreakdown()
	b.KeywordMatch = 10
	b.ClarityUniqueness = 10
	b.SectionCompleteness = 10

	got := Suggest(types.ScoreResult{Breakdown: b})
	if len(got) == 0 {
		t.Fatal("expected suggestions")
	}

	if got[0].Priority != types.PriorityHigh {
		t.Errorf("first suggestion priority = %q, want high", got[0].Priority)
	}
	if got[0].Section != types.SectionSkills {
		t.Errorf("first suggestion = %q, want skills (highest expected improvement)", got[0].Section)
	}

	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		if cur.Priority.Rank() > prev.Priority.Rank() {
			t.Errorf("suggestion %d outranks suggestion %d by priority", i, i-1)
		}
		if cur.Priority == prev.Priority && cur.ExpectedImprovement > prev.ExpectedImprovement {
			t.Errorf("suggestion %d outranks suggestion %d by expected improvement", i, i-1)
		}
	}
}

func TestSuggestReasonsCarryComponentScores(t *testing.T) {
	b := perfectBreakdown()
	b.KeywordMatch = 7
	got := Suggest(types.ScoreResult{Breakdown: b})
	for _, s := range got {
		if s.Reason == "" || s.Action == "" {
			t.Errorf("suggestion missing reason or action: %+v", s)
		}
	}
	if want := "keyword match scored 7/20"; got[0].Reason != want {
		t.Errorf("Reason = %q, want %q", got[0].Reason, want)
	}
}
