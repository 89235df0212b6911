package cli

import (
	"context"

	"resumeforge/internal/config"
	"resumeforge/internal/errors"

	"github.com/spf13/cobra"
)

// Private context key types so subcommands can pull shared state out of the
// command context without key collisions.
type (
	configKeyType struct{}
	loggerKeyType struct{}
)

var (
	configKey = configKeyType{}
	loggerKey = loggerKeyType{}
)

var rootCmd = &cobra.Command{
	Use:   "resumeforge",
	Short: "A CLI tool for ATS resume optimization using AI",
	Long: `Resumeforge scores resumes against job descriptions the way an
applicant tracking system would, and iteratively regenerates weak sections
until the resume meets a target score. It can also extract the keywords a
job description screens for.`,
}

// Execute attaches the loaded config and logger to the command context and
// runs the CLI.
func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

func getConfigFromContext(ctx context.Context) *config.Config {
	cfg, ok := ctx.Value(configKey).(*config.Config)
	if !ok {
		panic("config not found in context")
	}
	return cfg
}

func getLoggerFromContext(ctx context.Context) *errors.Logger {
	logger, ok := ctx.Value(loggerKey).(*errors.Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

func init() {
	rootCmd.AddCommand(
		scoreCmd,
		optimizeCmd,
		keywordsCmd,
		versionCmd,
		serveCmd,
	)
}
