package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"resumeforge/internal/ai"
	"resumeforge/internal/ats"
	"resumeforge/internal/common"
	"resumeforge/internal/observability"
	"resumeforge/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// createScoreHandler wraps the score handler with observability
func (s *Server) createScoreHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumeforge.api")
		ctx, span := tracer.Start(ctx, "api.score")
		defer span.End()

		var req ScoreRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		resumeText := ats.FormatForScoring(req.Resume)
		if strings.TrimSpace(resumeText) == "" {
			err := fmt.Errorf("missing resume")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing resume", "resume field is required", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.JobDescription) == "" {
			err := fmt.Errorf("missing job description")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing job description", "jobDescription field is required", http.StatusBadRequest)
			return
		}
		if len(req.JobDescription) > int(s.MaxRequestSize/2) {
			err := fmt.Errorf("job description too large: %d chars", len(req.JobDescription))
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Job description too large", fmt.Sprintf("jobDescription exceeds recommended size limit of %d characters", s.MaxRequestSize/2), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.resume_length", len(resumeText)),
			attribute.Int("request.job_length", len(req.JobDescription)),
			attribute.String("operation", "score"),
		)

		scoreConfig := s.AppConfig.GetScoreConfig()
		aiService, err := ai.NewService(&scoreConfig, s.AppConfig.AI.Tiers, "score", s.Logger)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}

		metrics := om.GetMetrics()
		var result types.ScoreResult
		err = metrics.TrackAIOperationWithTokens(ctx, "score", func(ctx context.Context) *observability.AIOperationResult {
			output, tokenUsage, aiErr := aiService.Provider.ScoreResume(ctx, types.ScoreInput{
				ResumeText:     resumeText,
				JobDescription: req.JobDescription,
			})
			result = output
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "ai_processing"))
			metrics.RecordBusinessMetric(ctx, "resume_scored", false, om,
				attribute.String("error", err.Error()))
			writeErrorResponse(w, "Failed to score resume", err.Error(), http.StatusInternalServerError)
			return
		}

		metrics.RecordBusinessMetric(ctx, "resume_scored", true, om,
			attribute.Int("ats.score", result.Score))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("ats.score", result.Score),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createOptimizeHandler wraps the optimize handler with observability
func (s *Server) createOptimizeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumeforge.api")
		ctx, span := tracer.Start(ctx, "api.optimize")
		defer span.End()

		var req OptimizeRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		resumeText := ats.FormatForScoring(req.Resume)
		if strings.TrimSpace(resumeText) == "" {
			err := fmt.Errorf("missing resume")
			span.RecordError(err)
			writeErrorResponse(w, "Missing resume", "resume field is required", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.JobDescription) == "" {
			err := fmt.Errorf("missing job description")
			span.RecordError(err)
			writeErrorResponse(w, "Missing job description", "jobDescription field is required", http.StatusBadRequest)
			return
		}

		if err := common.ValidateModelTier(req.Tier); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid tier", err.Error(), http.StatusBadRequest)
			return
		}
		if err := common.ValidateOptimizationBounds(req.TargetScore, req.MaxAttempts); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid optimization bounds", err.Error(), http.StatusBadRequest)
			return
		}
		tier := types.ModelTier(req.Tier)

		span.SetAttributes(
			attribute.Int("request.resume_length", len(resumeText)),
			attribute.Int("request.job_length", len(req.JobDescription)),
			attribute.String("operation", "optimize"),
		)

		scoreConfig := s.AppConfig.GetScoreConfig()
		scoreService, err := ai.NewService(&scoreConfig, s.AppConfig.AI.Tiers, "score", s.Logger)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}
		regenerateConfig := s.AppConfig.GetRegenerateConfig()
		regenerateService, err := ai.NewService(&regenerateConfig, s.AppConfig.AI.Tiers, "regenerate", s.Logger)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}

		optimizer := ats.NewOptimizer(scoreService, regenerateService, s.Logger)

		targetScore := req.TargetScore
		if targetScore <= 0 {
			targetScore = s.AppConfig.Optimizer.TargetScore
		}
		maxAttempts := req.MaxAttempts
		if maxAttempts <= 0 {
			maxAttempts = s.AppConfig.Optimizer.MaxAttempts
		}

		metrics := om.GetMetrics()
		optCtx, optSpan := tracer.Start(ctx, "optimizer.run",
			trace.WithAttributes(
				attribute.Int("optimization.target_score", targetScore),
				attribute.Int("optimization.max_attempts", maxAttempts),
			))
		result, err := optimizer.Optimize(optCtx, ats.OptimizeRequest{
			Resume:         req.Resume,
			JobTitle:       req.JobTitle,
			CompanyName:    req.CompanyName,
			JobDescription: req.JobDescription,
			Profile:        req.Profile,
			Tier:           tier,
			TargetScore:    targetScore,
			MaxAttempts:    maxAttempts,
		})
		if err != nil {
			optSpan.RecordError(err)
			optSpan.End()
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "ai_processing"))
			metrics.RecordBusinessMetric(ctx, "resume_optimized", false, om,
				attribute.String("error", err.Error()))
			writeErrorResponse(w, "Failed to optimize resume", err.Error(), http.StatusInternalServerError)
			return
		}

		improvement := 0
		if len(result.OptimizationSteps) > 0 {
			improvement = result.FinalScore - result.OptimizationSteps[0].BeforeScore
		}

		optSpan.SetAttributes(
			attribute.Int("ats.final_score", result.FinalScore),
			attribute.Int("optimization.attempts", result.TotalAttempts),
			attribute.Bool("optimization.reached_target", result.ReachedTarget),
		)
		optSpan.End()

		metrics.RecordBusinessMetric(ctx, "resume_optimized", true, om,
			attribute.Int("ats.final_score", result.FinalScore),
			attribute.Int("optimization.attempts", result.TotalAttempts))
		metrics.RecordOptimizationRun(ctx, result.TotalAttempts, improvement, result.ReachedTarget, om)

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("ats.final_score", result.FinalScore),
			attribute.Int("optimization.attempts", result.TotalAttempts),
			attribute.Bool("optimization.reached_target", result.ReachedTarget),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createKeywordsHandler wraps the keywords handler with observability.
// Keyword extraction is local and does not call the AI provider.
func (s *Server) createKeywordsHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumeforge.api")
		ctx, span := tracer.Start(ctx, "api.keywords")
		defer span.End()

		var req KeywordsRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.JobDescription) == "" {
			err := fmt.Errorf("missing job description")
			span.RecordError(err)
			writeErrorResponse(w, "Missing job description", "jobDescription field is required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.job_length", len(req.JobDescription)),
			attribute.String("operation", "keywords"),
		)

		result := ats.ExtractKeywords(req.JobDescription)
		total := keywordCount(result)

		metrics := om.GetMetrics()
		metrics.RecordBusinessMetric(ctx, "keywords_extracted", true, om,
			attribute.Int("keywords.total", total))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("keywords.total", total),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// keywordCount totals keywords across all categories
func keywordCount(k types.ExtractedKeywords) int {
	return len(k.TechnicalSkills) + len(k.Tools) + len(k.Frameworks) +
		len(k.SoftSkills) + len(k.Requirements) + len(k.IndustryTerms) +
		len(k.ActionVerbs)
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Wrap the ResponseWriter to detect rate limit responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			if wrapper.statusCode == http.StatusTooManyRequests {
				metrics := om.GetMetrics()
				metrics.RecordBusinessMetric(r.Context(), "rate_limit_hit", true, om,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
