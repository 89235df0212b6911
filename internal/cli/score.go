package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"resumeforge/internal/ai"
	"resumeforge/internal/ats"
	"resumeforge/internal/common"
	"resumeforge/internal/types"

	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score [resume-file] [job-description-file]",
	Short: "Score a resume against a job description",
	Long: `Score a resume against a job description using an AI rubric that
mirrors applicant tracking system screening. The command takes two arguments:
the path to the resume file (JSON) and the path to the job description file
(plain text). The result includes a 0-100 score with a per-category breakdown.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if scoreConfig.OutputFormat == "" {
			scoreConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(scoreConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runScore,
}

var scoreConfig common.CommandConfig

func init() {
	scoreCmd.Flags().StringVarP(&scoreConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	scoreCmd.Flags().StringVar(&scoreConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	// Add completion for format flag
	_ = scoreCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

type scoreInput struct {
	Resume         types.Resume
	JobDescription string
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	// Create AI service for the score operation
	scoreAIConfig := cfg.GetScoreConfig()
	aiService, err := ai.NewService(&scoreAIConfig, cfg.AI.Tiers, "score", logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}

	createInput := func(contents []string) (scoreInput, error) {
		if len(contents) != 2 {
			return scoreInput{}, fmt.Errorf("expected 2 file paths, got %d", len(contents))
		}
		var resume types.Resume
		if err := json.Unmarshal([]byte(contents[0]), &resume); err != nil {
			return scoreInput{}, fmt.Errorf("resume file is not valid JSON: %w", err)
		}
		return scoreInput{
			Resume:         resume,
			JobDescription: contents[1],
		}, nil
	}

	logDetails := func(input scoreInput, cfg common.CommandConfig) {
		logger.Info("Starting resume scoring",
			"job_chars", len(input.JobDescription),
			"output_format", cfg.OutputFormat)
	}

	scoreOperation := func(ctx context.Context, input scoreInput) (types.ScoreResult, error) {
		return aiService.Score(ctx, ats.FormatForScoring(input.Resume), input.JobDescription)
	}

	err = common.RunCommand(
		cmd.Context(),
		logger,
		scoreConfig,
		args,
		createInput,
		scoreOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to score resume: %w", err)
	}
	logger.Info("Resume scoring completed successfully")
	return nil
}
