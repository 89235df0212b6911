package ats

import (
	"fmt"
	"sort"

	"resumeforge/internal/types"
)

// suggestionThreshold is the per-component floor (out of 20) below which a
// breakdown category triggers suggestions.
const suggestionThreshold = 15

// Suggest maps a score breakdown to a ranked list of section-regeneration
// suggestions. Pure and synchronous. Any component under 15/20 nominates the
// section(s) most likely to move it; expected improvements are static
// heuristics used only for ranking. An empty result means no actionable
// improvement was found, which the optimization loop treats as a clean stop.
func Suggest(result types.ScoreResult) []types.OptimizationSuggestion {
	var suggestions []types.OptimizationSuggestion
	b := result.Breakdown

	if b.KeywordMatch < suggestionThreshold {
		reason := fmt.Sprintf("keyword match scored %d/20", b.KeywordMatch)
		suggestions = append(suggestions,
			types.OptimizationSuggestion{
				Section:             types.SectionSkills,
				Priority:            types.PriorityHigh,
				Reason:              reason,
				Action:              "regenerate the skills section with job-description vocabulary",
				ExpectedImprovement: 8,
			},
			types.OptimizationSuggestion{
				Section:             types.SectionSummary,
				Priority:            types.PriorityHigh,
				Reason:              reason,
				Action:              "rewrite the summary around the role's core keywords",
				ExpectedImprovement: 5,
			},
		)
	}

	if b.ExperienceRelevance < suggestionThreshold {
		suggestions = append(suggestions, types.OptimizationSuggestion{
			Section:             types.SectionExperience,
			Priority:            types.PriorityHigh,
			Reason:              fmt.Sprintf("experience relevance scored %d/20", b.ExperienceRelevance),
			Action:              "regenerate experience bullets emphasizing role-relevant outcomes",
			ExpectedImprovement: 7,
		})
	}

	if b.FormatCompatibility < suggestionThreshold {
		suggestions = append(suggestions, types.OptimizationSuggestion{
			Section:             types.SectionExperience,
			Priority:            types.PriorityMedium,
			Reason:              fmt.Sprintf("format compatibility scored %d/20", b.FormatCompatibility),
			Action:              "rewrite bullets as single-line statements free of special formatting",
			ExpectedImprovement: 4,
		})
	}

	if b.SectionCompleteness < suggestionThreshold {
		suggestions = append(suggestions, types.OptimizationSuggestion{
			Section:             types.SectionSummary,
			Priority:            types.PriorityMedium,
			Reason:              fmt.Sprintf("section completeness scored %d/20", b.SectionCompleteness),
			Action:              "expand the summary to cover missing profile ground",
			ExpectedImprovement: 5,
		})
	}

	if b.ClarityUniqueness < suggestionThreshold {
		reason := fmt.Sprintf("clarity and uniqueness scored %d/20", b.ClarityUniqueness)
		suggestions = append(suggestions,
			types.OptimizationSuggestion{
				Section:             types.SectionExperience,
				Priority:            types.PriorityMedium,
				Reason:              reason,
				Action:              "vary bullet verbs and replace generic phrasing in experience",
				ExpectedImprovement: 6,
			},
			types.OptimizationSuggestion{
				Section:             types.SectionProjects,
				Priority:            types.PriorityMedium,
				Reason:              reason,
				Action:              "sharpen project bullets with concrete, distinctive detail",
				ExpectedImprovement: 4,
			},
		)
	}

	// Priority descending, ties broken by expected improvement descending.
	// The optimization loop relies on this order to pick the top suggestion.
	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Priority.Rank() != suggestions[j].Priority.Rank() {
			return suggestions[i].Priority.Rank() > suggestions[j].Priority.Rank()
		}
		return suggestions[i].ExpectedImprovement > suggestions[j].ExpectedImprovement
	})

	return suggestions
}
