package ats

import (
	"context"
	"fmt"

	"resumeforge/internal/errors"
	"resumeforge/internal/types"
)

// Default loop bounds applied when a request leaves them unset.
const (
	DefaultTargetScore = 90
	DefaultMaxAttempts = 3
)

// lowImpactDelta is the score movement below which an attempt is logged as
// low-impact when alternative suggestions were available.
const lowImpactDelta = 2

// Scorer evaluates a formatted resume against a job description.
type Scorer interface {
	Score(ctx context.Context, resumeText, jobDescription string) (types.ScoreResult, error)
}

// SectionRegenerator produces replacement content for one resume section.
// sectionIndex selects the entry within experience or projects; it is ignored
// for summary and skills.
type SectionRegenerator interface {
	Regenerate(ctx context.Context, section types.Section, genCtx types.GenerationContext, sectionIndex int) (types.SectionContent, error)
}

// OptimizeRequest carries one optimization run's inputs. TargetScore and
// MaxAttempts fall back to the package defaults when zero.
type OptimizeRequest struct {
	Resume         types.Resume
	JobTitle       string
	CompanyName    string
	JobDescription string
	Profile        types.UserProfile
	Tier           types.ModelTier
	TargetScore    int
	MaxAttempts    int
}

// Optimizer drives the score, suggest, regenerate loop until the resume
// reaches the target score or the attempt budget runs out.
type Optimizer struct {
	scorer      Scorer
	regenerator SectionRegenerator
	logger      *errors.Logger
}

func NewOptimizer(scorer Scorer, regenerator SectionRegenerator, logger *errors.Logger) *Optimizer {
	return &Optimizer{
		scorer:      scorer,
		regenerator: regenerator,
		logger:      logger,
	}
}

// Optimize runs the bounded improvement loop. The input resume is never
// mutated; each accepted regeneration produces a new value. A scoring failure
// aborts the run, as does a regeneration failure, since continuing with stale
// content would just re-score the same text.
func (o *Optimizer) Optimize(ctx context.Context, req OptimizeRequest) (types.OptimizationResult, error) {
	targetScore := req.TargetScore
	if targetScore <= 0 {
		targetScore = DefaultTargetScore
	}
	maxAttempts := req.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	keywords := ExtractKeywords(req.JobDescription)
	genCtx := types.GenerationContext{
		JobTitle:       req.JobTitle,
		CompanyName:    req.CompanyName,
		JobDescription: req.JobDescription,
		Profile:        req.Profile,
		Keywords:       keywords,
		Tier:           req.Tier,
	}

	current := req.Resume
	score, err := o.scorer.Score(ctx, FormatForScoring(current), req.JobDescription)
	if err != nil {
		return types.OptimizationResult{}, errors.NewScoringError("initial scoring failed", err)
	}

	result := types.OptimizationResult{
		FinalResume: current,
		FinalScore:  score.Score,
	}

	if score.Score >= targetScore {
		o.logger.Info("resume already meets target score",
			"score", score.Score, "target", targetScore)
		result.ReachedTarget = true
		return result, nil
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return types.OptimizationResult{}, fmt.Errorf("optimization cancelled before attempt %d: %w", attempt, err)
		}

		suggestions := Suggest(score)
		if len(suggestions) == 0 {
			o.logger.Info("no actionable suggestions remain, stopping early",
				"score", score.Score, "attempt", attempt)
			break
		}

		top := suggestions[0]
		o.logger.Info("regenerating section",
			"attempt", attempt,
			"section", string(top.Section),
			"reason", top.Reason,
			"score", score.Score)

		content, err := o.regenerator.Regenerate(ctx, top.Section, genCtx, 0)
		if err != nil {
			return types.OptimizationResult{}, errors.NewRegenerationError(
				fmt.Sprintf("regenerating %s failed on attempt %d", top.Section, attempt), err)
		}

		candidate := applySectionContent(current, top.Section, content)

		newScore, err := o.scorer.Score(ctx, FormatForScoring(candidate), req.JobDescription)
		if err != nil {
			return types.OptimizationResult{}, errors.NewScoringError(
				fmt.Sprintf("scoring failed on attempt %d", attempt), err)
		}

		step := types.OptimizationStep{
			Section:      top.Section,
			BeforeScore:  score.Score,
			AfterScore:   newScore.Score,
			Improvements: topImprovements(newScore.Improvements, 2),
		}
		result.OptimizationSteps = append(result.OptimizationSteps, step)
		result.TotalAttempts = attempt

		if newScore.Score-score.Score < lowImpactDelta && len(suggestions) > 1 {
			o.logger.Debug("low-impact attempt",
				"section", string(top.Section),
				"delta", newScore.Score-score.Score,
				"alternatives", len(suggestions)-1)
		}

		current = candidate
		score = newScore
		result.FinalResume = current
		result.FinalScore = score.Score

		if score.Score >= targetScore {
			result.ReachedTarget = true
			o.logger.Info("target score reached",
				"score", score.Score, "attempts", attempt)
			return result, nil
		}
	}

	o.logger.Info("optimization finished below target",
		"score", result.FinalScore,
		"target", targetScore,
		"attempts", result.TotalAttempts)
	return result, nil
}

// applySectionContent merges regenerated content into a copy of the resume.
// Experience and project rewrites always patch the first entry; later entries
// are assumed to carry older, less load-bearing history.
func applySectionContent(r types.Resume, section types.Section, content types.SectionContent) types.Resume {
	switch section {
	case types.SectionSummary:
		return r.WithSummary(content.Summary)
	case types.SectionSkills:
		return r.WithSkills(content.Skills)
	case types.SectionExperience, types.SectionProjects:
		return r.WithEntryBullets(section, 0, content.Bullets)
	default:
		return r
	}
}

func topImprovements(improvements []string, n int) []string {
	if len(improvements) <= n {
		return improvements
	}
	return improvements[:n]
}
