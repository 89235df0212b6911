package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"resumeforge/internal/ai"
	"resumeforge/internal/config"
)

// aiOperations lists the AI-backed operations the server exposes, with the
// per-operation config each one resolves. Keyword extraction is local and
// has no entry here.
func (s *Server) aiOperations() map[string]config.OperationAIConfig {
	return map[string]config.OperationAIConfig{
		"score":      s.AppConfig.GetScoreConfig(),
		"regenerate": s.AppConfig.GetRegenerateConfig(),
	}
}

// healthHandler provides a health check endpoint including AI model status
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status":  "healthy",
		"service": "resumeforge",
		"version": s.Version,
	}

	aiStatus := s.checkAIModelsHealth()
	response["ai_models"] = aiStatus
	response["circuit_breakers"] = s.checkCircuitBreakerHealth()

	// Any unavailable model degrades the overall status
	for _, modelStatus := range aiStatus {
		modelInfo, ok := modelStatus.(map[string]any)
		if !ok {
			continue
		}
		if available, ok := modelInfo["available"].(bool); ok && !available {
			response["status"] = "degraded"
			w.WriteHeader(http.StatusServiceUnavailable)
			break
		}
	}

	encodeJSONResponse(w, response)
}

// checkAIModelsHealth checks the model used by each AI-backed operation
func (s *Server) checkAIModelsHealth() map[string]any {
	timeout := s.AppConfig.Observability.HealthCheck.Timeout
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	aiStatus := make(map[string]any)

	for operation, opConfig := range s.aiOperations() {
		service, err := ai.NewService(&opConfig, s.AppConfig.AI.Tiers, operation, s.Logger)
		if err != nil {
			aiStatus[operation] = map[string]any{
				"available": false,
				"error":     fmt.Sprintf("Failed to create %s service: %v", operation, err),
			}
			continue
		}
		aiStatus[operation] = service.GetModelInfo(ctx)
	}

	return aiStatus
}

// checkCircuitBreakerHealth reports circuit breaker state per AI operation
func (s *Server) checkCircuitBreakerHealth() map[string]any {
	circuitBreakerStatus := make(map[string]any)

	for operation, opConfig := range s.aiOperations() {
		service, err := ai.NewService(&opConfig, s.AppConfig.AI.Tiers, operation, s.Logger)
		if err != nil {
			circuitBreakerStatus[operation] = map[string]any{
				"available": false,
				"error":     fmt.Sprintf("Failed to create %s service: %v", operation, err),
			}
			continue
		}
		circuitBreakerStatus[operation] = map[string]any{
			"available": true,
			"stats":     service.Provider.GetCircuitBreakerStats(),
		}
	}

	return circuitBreakerStatus
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"service": "resumeforge",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	response["circuit_breakers"] = s.checkCircuitBreakerHealth()

	encodeJSONResponse(w, response)
}

// encodeJSONResponse writes v as a JSON body, reporting encode failures
// as a 500.
func encodeJSONResponse(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// parseJSONRequest decodes the request body into v. The body is already
// wrapped in http.MaxBytesReader, so oversized requests surface here as a
// MaxBytesError with the configured limit.
func parseJSONRequest(r *http.Request, v any) error {
	if r.Header.Get("Content-Type") != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	encodeJSONResponse(w, ErrorResponse{Error: error, Message: message})
}
