package ai

import (
	"context"

	"resumeforge/internal/types"
)

// AIProvider interface for different AI implementations.
// All methods return token usage information - callers can ignore it if not needed.
type AIProvider interface {
	ScoreResume(ctx context.Context, input types.ScoreInput) (types.ScoreResult, *TokenUsage, error)
	RegenerateSection(ctx context.Context, section types.Section, genCtx types.GenerationContext, sectionIndex int) (types.SectionContent, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	GetCircuitBreakerStats() map[string]any
	Close() error
}
