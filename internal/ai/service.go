package ai

import (
	"context"
	"fmt"

	"resumeforge/internal/config"
	"resumeforge/internal/errors"
	"resumeforge/internal/types"
)

// Service handles AI operations for resume scoring and regeneration
type Service struct {
	Provider AIProvider // Exported for access from server package
	config   *config.OperationAIConfig
	logger   *errors.Logger
}

// NewService creates a new AI service instance with configuration for a specific operation
func NewService(cfg *config.OperationAIConfig, tiers config.ModelTiersConfig, operationType string, logger *errors.Logger) (*Service, error) {
	var provider AIProvider
	var err error

	logger.Debug("Initializing AI service",
		"provider", cfg.Provider,
		"operation_type", operationType,
		"model", cfg.Model,
		"temperature", *cfg.Temperature,
		"timeout", *cfg.Timeout,
		"max_retries", *cfg.MaxRetries,
		"use_system_prompts", *cfg.UseSystemPrompts)

	switch cfg.Provider {
	case "gemini":
		provider, err = NewGeminiProvider(cfg, tiers, operationType, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}

	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
			"Failed to create AI provider", err)
	}

	return &Service{
		Provider: provider,
		config:   cfg,
		logger:   logger,
	}, nil
}

// GetModelInfo returns information about the AI model for health checks
func (s *Service) GetModelInfo(ctx context.Context) any {
	return s.Provider.GetModelInfo(ctx)
}

// Score implements ats.Scorer against the configured provider. Token usage
// is logged here and dropped from the narrower interface.
func (s *Service) Score(ctx context.Context, resumeText, jobDescription string) (types.ScoreResult, error) {
	ctx, cancel := context.WithTimeout(ctx, *s.config.Timeout)
	defer cancel()

	result, tokenUsage, err := s.Provider.ScoreResume(ctx, types.ScoreInput{
		ResumeText:     resumeText,
		JobDescription: jobDescription,
	})
	if err != nil {
		return types.ScoreResult{}, err
	}

	if tokenUsage != nil {
		s.logger.Debug("Resume scored",
			"score", result.Score,
			"input_tokens", tokenUsage.InputTokens,
			"output_tokens", tokenUsage.OutputTokens)
	}

	return result, nil
}

// Regenerate implements ats.SectionRegenerator against the configured provider
func (s *Service) Regenerate(ctx context.Context, section types.Section, genCtx types.GenerationContext, sectionIndex int) (types.SectionContent, error) {
	ctx, cancel := context.WithTimeout(ctx, *s.config.Timeout)
	defer cancel()

	content, tokenUsage, err := s.Provider.RegenerateSection(ctx, section, genCtx, sectionIndex)
	if err != nil {
		return types.SectionContent{}, err
	}

	if tokenUsage != nil {
		s.logger.Debug("Section regenerated",
			"section", section,
			"input_tokens", tokenUsage.InputTokens,
			"output_tokens", tokenUsage.OutputTokens)
	}

	return content, nil
}

// ZeroScoreResult builds a synthetic zero score used by call sites that
// surface scoring failures without aborting the surrounding request.
func ZeroScoreResult(err error) types.ScoreResult {
	return types.ScoreResult{
		Score: 0,
		Feedback: []string{
			fmt.Sprintf("Automatic scoring failed: %v", err),
		},
		Improvements: []string{
			"Retry scoring once the AI service is available",
		},
	}
}
