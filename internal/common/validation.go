package common

import (
	"fmt"
	"slices"

	"resumeforge/internal/types"
)

// ValidateOutputFormat validates format against configured supported formats
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 {
		return nil // No restrictions configured
	}

	if slices.Contains(supportedFormats, format) {
		return nil
	}

	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}

// GetSupportedFormats returns the list of supported formats
func GetSupportedFormats(supportedFormats []string) []string {
	return supportedFormats
}

// ValidateModelTier validates a model tier name. The empty string is allowed
// and means "use the configured default tier".
func ValidateModelTier(tier string) error {
	if tier == "" {
		return nil
	}
	if types.ModelTier(tier) == types.TierHigh || types.ModelTier(tier) == types.TierLow {
		return nil
	}
	return fmt.Errorf("invalid tier %q: must be %q or %q", tier, types.TierHigh, types.TierLow)
}

// ValidateOptimizationBounds validates user-supplied optimization loop bounds.
// Zero values are allowed and mean "use the configured default".
func ValidateOptimizationBounds(targetScore, maxAttempts int) error {
	if targetScore < 0 || targetScore > 100 {
		return fmt.Errorf("target score must be between 1 and 100, got %d", targetScore)
	}
	if maxAttempts < 0 {
		return fmt.Errorf("max attempts must be positive, got %d", maxAttempts)
	}
	return nil
}
