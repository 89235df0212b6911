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

var optimizeCmd = &cobra.Command{
	Use:   "optimize [resume-file] [job-description-file] [profile-file]",
	Short: "Iteratively optimize a resume toward a target ATS score",
	Long: `Optimize a resume for a specific job description. The command scores
the resume, regenerates the weakest section using the user profile as ground
truth, and repeats until the target score is reached or the attempt budget
runs out. Takes three arguments: the resume file (JSON), the job description
file (plain text), and the user profile file (JSON).`,
	Args: cobra.ExactArgs(3),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if optimizeConfig.OutputFormat == "" {
			optimizeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(optimizeConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runOptimize,
}

var (
	optimizeConfig      common.CommandConfig
	optimizeTarget      int
	optimizeMaxAttempts int
	optimizeTier        string
	optimizeJobTitle    string
	optimizeCompany     string
)

func init() {
	optimizeCmd.Flags().StringVarP(&optimizeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	optimizeCmd.Flags().StringVar(&optimizeConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	optimizeCmd.Flags().IntVar(&optimizeTarget, "target", 0, "Target ATS score, 1-100 (default from config)")
	optimizeCmd.Flags().IntVar(&optimizeMaxAttempts, "max-attempts", 0, "Maximum regeneration attempts (default from config)")
	optimizeCmd.Flags().StringVar(&optimizeTier, "tier", "", "Model tier for regeneration: high or low")
	optimizeCmd.Flags().StringVar(&optimizeJobTitle, "job-title", "", "Job title for regeneration context")
	optimizeCmd.Flags().StringVar(&optimizeCompany, "company", "", "Company name for regeneration context")

	_ = optimizeCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
	_ = optimizeCmd.RegisterFlagCompletionFunc("tier", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{string(types.TierHigh), string(types.TierLow)}, cobra.ShellCompDirectiveNoFileComp
	})
}

type optimizeInput struct {
	Resume         types.Resume
	JobDescription string
	Profile        types.UserProfile
}

func runOptimize(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	if err := common.ValidateModelTier(optimizeTier); err != nil {
		return err
	}
	if err := common.ValidateOptimizationBounds(optimizeTarget, optimizeMaxAttempts); err != nil {
		return err
	}
	tier := types.ModelTier(optimizeTier)

	// Scoring and regeneration get independently configured AI services
	scoreAIConfig := cfg.GetScoreConfig()
	scoreService, err := ai.NewService(&scoreAIConfig, cfg.AI.Tiers, "score", logger)
	if err != nil {
		return fmt.Errorf("failed to create scoring AI service: %w", err)
	}

	regenerateAIConfig := cfg.GetRegenerateConfig()
	regenerateService, err := ai.NewService(&regenerateAIConfig, cfg.AI.Tiers, "regenerate", logger)
	if err != nil {
		return fmt.Errorf("failed to create regeneration AI service: %w", err)
	}

	optimizer := ats.NewOptimizer(scoreService, regenerateService, logger)

	createInput := func(contents []string) (optimizeInput, error) {
		if len(contents) != 3 {
			return optimizeInput{}, fmt.Errorf("expected 3 file paths, got %d", len(contents))
		}
		var input optimizeInput
		if err := json.Unmarshal([]byte(contents[0]), &input.Resume); err != nil {
			return optimizeInput{}, fmt.Errorf("resume file is not valid JSON: %w", err)
		}
		input.JobDescription = contents[1]
		if err := json.Unmarshal([]byte(contents[2]), &input.Profile); err != nil {
			return optimizeInput{}, fmt.Errorf("profile file is not valid JSON: %w", err)
		}
		return input, nil
	}

	logDetails := func(input optimizeInput, cmdCfg common.CommandConfig) {
		logger.Info("Starting resume optimization",
			"job_chars", len(input.JobDescription),
			"work_history_entries", len(input.Profile.WorkHistory),
			"target_score", resolveTarget(optimizeTarget, cfg.Optimizer.TargetScore),
			"output_format", cmdCfg.OutputFormat)
	}

	optimizeOperation := func(ctx context.Context, input optimizeInput) (types.OptimizationResult, error) {
		return optimizer.Optimize(ctx, ats.OptimizeRequest{
			Resume:         input.Resume,
			JobTitle:       optimizeJobTitle,
			CompanyName:    optimizeCompany,
			JobDescription: input.JobDescription,
			Profile:        input.Profile,
			Tier:           tier,
			TargetScore:    resolveTarget(optimizeTarget, cfg.Optimizer.TargetScore),
			MaxAttempts:    resolveTarget(optimizeMaxAttempts, cfg.Optimizer.MaxAttempts),
		})
	}

	err = common.RunCommand(
		cmd.Context(),
		logger,
		optimizeConfig,
		args,
		createInput,
		optimizeOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to optimize resume: %w", err)
	}
	logger.Info("Resume optimization completed successfully")
	return nil
}

// resolveTarget prefers an explicit flag value over the configured default
func resolveTarget(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}
