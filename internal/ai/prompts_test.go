package ai

import (
	"strings"
	"testing"

	"resumeforge/internal/ats"
	"resumeforge/internal/types"
)

func TestBuildRegeneratePromptCarriesKeywords(t *testing.T) {
	jd := "Looking for React, TypeScript, and AWS."
	genCtx := types.GenerationContext{
		JobTitle:       "Frontend Engineer",
		CompanyName:    "Initech",
		JobDescription: jd,
		Keywords:       ats.ExtractKeywords(jd),
	}

	prompt := buildRegeneratePrompt(DefaultUserPrompts.RegenerateSection, types.SectionSummary, genCtx, nil)

	// Extracted keywords surface as the prioritized comma-separated list.
	if !strings.Contains(prompt, "typescript, react, aws") {
		t.Errorf("prompt missing prioritized keywords, got:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Frontend Engineer at Initech") {
		t.Errorf("prompt missing target role line, got:\n%s", prompt)
	}
	if !strings.Contains(prompt, jd) {
		t.Error("prompt missing the job description")
	}
	if !strings.Contains(prompt, `"summary"`) {
		t.Error("prompt missing the summary response shape")
	}
}

func TestBuildRegeneratePromptWithoutKeywords(t *testing.T) {
	genCtx := types.GenerationContext{
		JobTitle:       "Data Engineer",
		JobDescription: "We move a lot of numbers around.",
		Keywords:       ats.ExtractKeywords("We move a lot of numbers around."),
	}

	prompt := buildRegeneratePrompt(DefaultUserPrompts.RegenerateSection, types.SectionSkills, genCtx, nil)

	if !strings.Contains(prompt, "(none extracted)") {
		t.Errorf("prompt should mark the empty keyword list, got:\n%s", prompt)
	}
	if strings.Contains(prompt, " at \n") {
		t.Error("prompt should omit the company clause when none is set")
	}
}
