package ai

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/http"
	"time"

	"resumeforge/internal/ats"
	"resumeforge/internal/config"
	resumeforgeErrors "resumeforge/internal/errors"
	"resumeforge/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// GeminiProvider implements AIProvider for Google Gemini
type GeminiProvider struct {
	client         *genai.Client
	config         *config.OperationAIConfig
	tiers          config.ModelTiersConfig
	circuitBreaker *AICircuitBreaker
	modelBreaker   *ModelCircuitBreaker
	logger         *resumeforgeErrors.Logger
}

// Ensure GeminiProvider implements AIProvider
var _ AIProvider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a new Gemini provider instance for a specific operation
func NewGeminiProvider(cfg *config.OperationAIConfig, tiers config.ModelTiersConfig, operationType string, logger *resumeforgeErrors.Logger) (*GeminiProvider, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, resumeforgeErrors.NewAIError(resumeforgeErrors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}

	return &GeminiProvider{
		client:         client,
		config:         cfg,
		tiers:          tiers,
		circuitBreaker: NewAICircuitBreaker(operationType, cfg, logger),
		modelBreaker:   NewModelCircuitBreaker(operationType, cfg, logger),
		logger:         logger,
	}, nil
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{
		Name:      g.config.Model,
		Available: false,
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	model, err := g.modelBreaker.ExecuteModel(func() (*genai.Model, error) {
		return g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"provider", g.config.Provider,
			"error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	if model.DisplayName != "" {
		modelInfo.DisplayName = model.DisplayName
	}
	if model.Version != "" {
		modelInfo.Version = model.Version
	}

	g.logger.Debug("Model availability check successful",
		"model", g.config.Model,
		"provider", g.config.Provider,
		"display_name", modelInfo.DisplayName,
		"version", modelInfo.Version)

	return modelInfo
}

// executeWithRetry executes an AI operation with retry logic and exponential backoff
func (g *GeminiProvider) executeWithRetry(ctx context.Context, operation string, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= *g.config.MaxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Retrying AI operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", *g.config.MaxRetries,
				"error", lastErr.Error())

			// Exponential backoff with jitter to prevent thundering herd
			baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			jitterMax := big.NewInt(int64(float64(baseDelay) * 0.1))
			jitterBig, _ := rand.Int(rand.Reader, jitterMax)
			jitter := time.Duration(jitterBig.Int64())
			// Cap maximum backoff at 30 seconds
			backoff := min(baseDelay+jitter, 30*time.Second)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				g.logger.Info("AI operation succeeded after retry",
					"operation", operation,
					"total_attempts", attempt+1)
			}
			return result, nil
		}

		lastErr = err

		// Don't retry on certain errors (auth, invalid input, etc.)
		if !g.isRetryableError(err) {
			g.logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	g.logger.LogError(lastErr, "AI operation failed after all retry attempts",
		"operation", operation,
		"total_attempts", *g.config.MaxRetries+1)

	return nil, fmt.Errorf("operation '%s' failed after %d retries: %w", operation, *g.config.MaxRetries, lastErr)
}

// isRetryableError determines if an error should trigger a retry
func (g *GeminiProvider) isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Network errors (timeouts, connection issues) are retryable
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// Google API errors: retry on throttling and server-side failures
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}

// executeAIOperation is a generic helper to run AI operations with common
// tracing, circuit breaker, retry, and response decoding logic.
func executeAIOperation[Out any](
	g *GeminiProvider,
	ctx context.Context,
	operationName string,
	model string,
	userPrompt string,
	systemPrompt string,
	genaiConfig *genai.GenerateContentConfig,
	validator *ResponseValidator,
	spanAttributes ...attribute.KeyValue,
) (Out, *TokenUsage, error) {
	var output Out
	tracer := otel.Tracer("resumeforge.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+operationName)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", model),
		attribute.Float64("ai.temperature", float64(*g.config.Temperature)),
	)
	span.SetAttributes(spanAttributes...)

	if *g.config.UseSystemPrompts && systemPrompt != "" {
		genaiConfig.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	result, err := g.circuitBreaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.executeWithRetry(ctx, operationName, func() (*genai.GenerateContentResponse, error) {
			return g.client.Models.GenerateContent(ctx, model, genai.Text(userPrompt), genaiConfig)
		})
	})

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return output, nil, resumeforgeErrors.NewAIError(resumeforgeErrors.ErrCodeAIServiceFailed,
			"Failed to generate content for "+operationName, err)
	}

	output, err = DecodeModelResponse[Out](result.Text(), validator)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return output, nil, err
	}

	tokenUsage := extractTokenUsage(result)
	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", tokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", tokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", tokenUsage.TotalTokens),
		)
	}

	span.SetAttributes(attribute.Bool("success", true))
	return output, tokenUsage, nil
}

// ScoreResume implements AIProvider for ATS scoring
func (g *GeminiProvider) ScoreResume(ctx context.Context, input types.ScoreInput) (types.ScoreResult, *TokenUsage, error) {
	systemPrompt := g.getSystemPrompt("score")
	userPrompt := fmt.Sprintf(g.getUserPrompt("score"), input.ResumeText, input.JobDescription)

	result, tokenUsage, err := executeAIOperation[types.ScoreResult](
		g,
		ctx,
		"score_resume",
		g.config.Model,
		userPrompt,
		systemPrompt,
		g.buildScoreSchema(),
		scoreResultValidator,
		attribute.Int("input.resume_length", len(input.ResumeText)),
		attribute.Int("input.job_length", len(input.JobDescription)),
	)
	if err != nil {
		return types.ScoreResult{}, nil, err
	}

	result = clampScoreResult(result)

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.Int("ats.score", result.Score),
			attribute.Int("ats.improvements_count", len(result.Improvements)),
		)
	}

	return result, tokenUsage, nil
}

// RegenerateSection implements AIProvider for section regeneration
func (g *GeminiProvider) RegenerateSection(ctx context.Context, section types.Section, genCtx types.GenerationContext, sectionIndex int) (types.SectionContent, *TokenUsage, error) {
	if !section.IsValid() {
		return types.SectionContent{}, nil, resumeforgeErrors.NewValidationError(
			resumeforgeErrors.ErrCodeInvalidRequest,
			fmt.Sprintf("unknown resume section: %s", section), nil)
	}

	entry := g.selectProfileEntry(section, genCtx.Profile, sectionIndex)
	systemPrompt := g.getSystemPrompt("regenerate")
	userPrompt := buildRegeneratePrompt(g.getUserPrompt("regenerate"), section, genCtx, entry)
	model := g.modelForTier(genCtx.Tier)

	content, tokenUsage, err := executeAIOperation[types.SectionContent](
		g,
		ctx,
		"regenerate_section",
		model,
		userPrompt,
		systemPrompt,
		g.buildRegenerateSchema(section),
		sectionContentValidator,
		attribute.String("section", string(section)),
		attribute.String("ai.tier", string(genCtx.Tier)),
		attribute.Int("input.job_length", len(genCtx.JobDescription)),
	)
	if err != nil {
		return types.SectionContent{}, nil, err
	}

	content.Section = section
	if err := g.finishSectionContent(&content, section, genCtx); err != nil {
		return types.SectionContent{}, nil, err
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.Int("output.bullets_count", len(content.Bullets)),
			attribute.Int("output.notes_count", len(content.Notes)),
		)
	}

	return content, tokenUsage, nil
}

// selectProfileEntry picks the work-history or project entry a regeneration
// targets. An out-of-range experience index falls back to the named default
// work history instead of failing the run.
func (g *GeminiProvider) selectProfileEntry(section types.Section, profile types.UserProfile, sectionIndex int) *types.WorkHistoryEntry {
	switch section {
	case types.SectionExperience:
		if sectionIndex >= 0 && sectionIndex < len(profile.WorkHistory) {
			return &profile.WorkHistory[sectionIndex]
		}
		g.logger.Warn("work history entry not found, using default fallback",
			"section_index", sectionIndex,
			"profile_entries", len(profile.WorkHistory))
		if sectionIndex >= 0 && sectionIndex < len(DefaultWorkHistoryFallback) {
			return &DefaultWorkHistoryFallback[sectionIndex]
		}
		return &DefaultWorkHistoryFallback[0]
	case types.SectionProjects:
		if sectionIndex >= 0 && sectionIndex < len(profile.Projects) {
			return &profile.Projects[sectionIndex]
		}
		return nil
	default:
		return nil
	}
}

// finishSectionContent validates section-specific presence and runs the
// bullet cleanup pass for bullet-bearing sections.
func (g *GeminiProvider) finishSectionContent(content *types.SectionContent, section types.Section, genCtx types.GenerationContext) error {
	switch section {
	case types.SectionSummary:
		if content.Summary == "" {
			return resumeforgeErrors.NewRegenerationError("model returned no summary content", nil)
		}
	case types.SectionSkills:
		if len(content.Skills) == 0 {
			return resumeforgeErrors.NewRegenerationError("model returned no skills content", nil)
		}
	case types.SectionExperience, types.SectionProjects:
		if len(content.Bullets) == 0 {
			return resumeforgeErrors.NewRegenerationError("model returned no bullet content", nil)
		}
		keywords := ats.PrioritizedKeywords(genCtx.Keywords, promptKeywordsPerCategory)
		cleaned, notes := ats.CleanBullets(content.Bullets, keywords)
		if len(cleaned) == 0 {
			return resumeforgeErrors.NewRegenerationError("all regenerated bullets were empty after cleanup", nil)
		}
		quality := ats.BulletQuality(cleaned, keywords)
		content.Bullets = cleaned
		content.Notes = notes
		content.Quality = &quality
	}
	return nil
}

// modelForTier maps a generation tier to the configured model name. An
// explicit per-operation model wins over the tier mapping.
func (g *GeminiProvider) modelForTier(tier types.ModelTier) string {
	switch tier {
	case types.TierHigh:
		if g.tiers.High != "" {
			return g.tiers.High
		}
	case types.TierLow:
		if g.tiers.Low != "" {
			return g.tiers.Low
		}
	}
	return g.config.Model
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiProvider) GetCircuitBreakerStats() map[string]any {
	stats := map[string]any{
		"ai_operations":    g.circuitBreaker.GetStats(),
		"model_operations": g.modelBreaker.GetModelStats(),
	}

	// Overall health - both breakers must be healthy
	stats["overall_healthy"] = g.circuitBreaker.IsHealthy() && g.modelBreaker.IsModelHealthy()

	return stats
}

// Close implements AIProvider interface
func (g *GeminiProvider) Close() error {
	// Gemini client doesn't have a Close method in current single-shot usage
	return nil
}

// buildScoreSchema creates the response schema for scoring requests
func (g *GeminiProvider) buildScoreSchema() *genai.GenerateContentConfig {
	breakdownProps := map[string]*genai.Schema{
		"keywordMatch":        {Type: genai.TypeInteger},
		"experienceRelevance": {Type: genai.TypeInteger},
		"formatCompatibility": {Type: genai.TypeInteger},
		"sectionCompleteness": {Type: genai.TypeInteger},
		"clarityUniqueness":   {Type: genai.TypeInteger},
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"score": {Type: genai.TypeInteger},
				"breakdown": {
					Type:       genai.TypeObject,
					Properties: breakdownProps,
					Required: []string{"keywordMatch", "experienceRelevance",
						"formatCompatibility", "sectionCompleteness", "clarityUniqueness"},
				},
				"feedback": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
				"improvements": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
			},
			Required: []string{"score", "breakdown", "feedback", "improvements"},
		},
	}

	if *g.config.Temperature > 0 {
		config.Temperature = g.config.Temperature
	}

	return config
}

// buildRegenerateSchema creates the response schema for a section rewrite.
// Skills have model-chosen category names, so that section only pins the MIME
// type and relies on post-decode validation.
func (g *GeminiProvider) buildRegenerateSchema(section types.Section) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	switch section {
	case types.SectionSummary:
		config.ResponseSchema = &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"summary": {Type: genai.TypeString},
			},
			Required: []string{"summary"},
		}
	case types.SectionExperience, types.SectionProjects:
		config.ResponseSchema = &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"bullets": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
			},
			Required: []string{"bullets"},
		}
	}

	if *g.config.Temperature > 0 {
		config.Temperature = g.config.Temperature
	}

	return config
}

// clampScoreResult clamps the overall score to 0-100 and every breakdown
// component to 0-20. Models occasionally drift out of the requested ranges.
func clampScoreResult(result types.ScoreResult) types.ScoreResult {
	result.Score = clampInt(result.Score, 0, 100)
	result.Breakdown.KeywordMatch = clampInt(result.Breakdown.KeywordMatch, 0, 20)
	result.Breakdown.ExperienceRelevance = clampInt(result.Breakdown.ExperienceRelevance, 0, 20)
	result.Breakdown.FormatCompatibility = clampInt(result.Breakdown.FormatCompatibility, 0, 20)
	result.Breakdown.SectionCompleteness = clampInt(result.Breakdown.SectionCompleteness, 0, 20)
	result.Breakdown.ClarityUniqueness = clampInt(result.Breakdown.ClarityUniqueness, 0, 20)
	return result
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// extractTokenUsage extracts token usage information from a Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}

// getSystemPrompt resolves the system prompt for an operation: file-loaded
// content wins, then config, then the built-in default.
func (g *GeminiProvider) getSystemPrompt(promptType string) string {
	loaded := config.GetPromptsForOperation(promptType)

	switch promptType {
	case "score":
		return resolvePrompt(
			loaded.SystemPrompts.ScoreResume,
			g.config.CustomPrompts.SystemPrompts.ScoreResume,
			DefaultSystemPrompts.ScoreResume,
		)
	case "regenerate":
		return resolvePrompt(
			loaded.SystemPrompts.RegenerateSection,
			g.config.CustomPrompts.SystemPrompts.RegenerateSection,
			DefaultSystemPrompts.RegenerateSection,
		)
	default:
		return ""
	}
}

// getUserPrompt resolves the user prompt template for an operation
func (g *GeminiProvider) getUserPrompt(promptType string) string {
	loaded := config.GetPromptsForOperation(promptType)

	switch promptType {
	case "score":
		return resolvePrompt(
			loaded.UserPrompts.ScoreResume,
			g.config.CustomPrompts.UserPrompts.ScoreResume,
			DefaultUserPrompts.ScoreResume,
		)
	case "regenerate":
		return resolvePrompt(
			loaded.UserPrompts.RegenerateSection,
			g.config.CustomPrompts.UserPrompts.RegenerateSection,
			DefaultUserPrompts.RegenerateSection,
		)
	default:
		return ""
	}
}

// resolvePrompt selects the correct prompt string based on priority:
// 1. A prompt loaded from a file.
// 2. A prompt defined directly in the configuration.
// 3. A hardcoded default prompt.
func resolvePrompt(loadedFromFile, fromConfig, fromDefault string) string {
	if loadedFromFile != "" {
		return loadedFromFile
	}
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}
