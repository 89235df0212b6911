package cli

import (
	"context"
	"fmt"

	"resumeforge/internal/ats"
	"resumeforge/internal/common"
	"resumeforge/internal/types"

	"github.com/spf13/cobra"
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords [job-description-file]",
	Short: "Extract ATS keywords from a job description",
	Long: `Extract the categorized keywords a job description screens for:
technical skills, tools, frameworks, soft skills, requirements, industry
terms, and action verbs. Extraction is deterministic and runs locally
without calling the AI service.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if keywordsConfig.OutputFormat == "" {
			keywordsConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(keywordsConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runKeywords,
}

var keywordsConfig common.CommandConfig

func init() {
	keywordsCmd.Flags().StringVarP(&keywordsConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	keywordsCmd.Flags().StringVar(&keywordsConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	_ = keywordsCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runKeywords(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())

	createInput := func(contents []string) (string, error) {
		if len(contents) != 1 {
			return "", fmt.Errorf("expected 1 file path, got %d", len(contents))
		}
		return contents[0], nil
	}

	logDetails := func(input string, cfg common.CommandConfig) {
		logger.Info("Starting keyword extraction",
			"job_chars", len(input),
			"output_format", cfg.OutputFormat)
	}

	extractOperation := func(ctx context.Context, jobDescription string) (types.ExtractedKeywords, error) {
		return ats.ExtractKeywords(jobDescription), nil
	}

	err := common.RunCommand(
		cmd.Context(),
		logger,
		keywordsConfig,
		args,
		createInput,
		extractOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to extract keywords: %w", err)
	}
	logger.Info("Keyword extraction completed successfully")
	return nil
}
