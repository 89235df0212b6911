package ai

import (
	"fmt"

	"resumeforge/internal/config"
	"resumeforge/internal/errors"

	"github.com/sony/gobreaker/v2"
	"google.golang.org/genai"
)

// AICircuitBreaker wraps generation calls for a single operation type with
// circuit breaker protection.
type AICircuitBreaker struct {
	cb *gobreaker.CircuitBreaker[*genai.GenerateContentResponse]
}

// ModelCircuitBreaker wraps model info lookups with circuit breaker protection
type ModelCircuitBreaker struct {
	cb *gobreaker.CircuitBreaker[*genai.Model]
}

// newBreakerSettings builds gobreaker settings shared by both breaker kinds.
// The trip decision differs per kind and is passed in.
func newBreakerSettings(name, operationType string, cfg *config.OperationAIConfig,
	readyToTrip func(gobreaker.Counts) bool, logger *errors.Logger) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.CircuitBreaker.MaxRequests,
		Interval:    cfg.CircuitBreaker.Interval,
		Timeout:     cfg.CircuitBreaker.Timeout,
		ReadyToTrip: readyToTrip,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				"name", name,
				"operation_type", operationType,
				"from", from.String(),
				"to", to.String())
		},
	}
}

// NewAICircuitBreaker creates a circuit breaker configured for a specific operation type.
// Returns nil when the breaker is disabled; a nil breaker executes calls directly.
func NewAICircuitBreaker(operationType string, cfg *config.OperationAIConfig, logger *errors.Logger) *AICircuitBreaker {
	if !cfg.CircuitBreaker.Enabled {
		return nil
	}

	readyToTrip := func(counts gobreaker.Counts) bool {
		failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
		return counts.Requests >= cfg.CircuitBreaker.MinRequests &&
			failureRatio >= cfg.CircuitBreaker.FailureThreshold
	}

	settings := newBreakerSettings(fmt.Sprintf("AI-%s", operationType), operationType, cfg, readyToTrip, logger)
	return &AICircuitBreaker{
		cb: gobreaker.NewCircuitBreaker[*genai.GenerateContentResponse](settings),
	}
}

// NewModelCircuitBreaker creates a model circuit breaker configured for a specific
// operation type. Model info lookups are less critical, so the trip condition is
// more lenient than the configured one.
func NewModelCircuitBreaker(operationType string, cfg *config.OperationAIConfig, logger *errors.Logger) *ModelCircuitBreaker {
	if !cfg.CircuitBreaker.Enabled {
		return nil
	}

	readyToTrip := func(counts gobreaker.Counts) bool {
		failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
		return counts.Requests >= 5 && failureRatio >= 0.8
	}

	settings := newBreakerSettings(fmt.Sprintf("AI-Model-%s", operationType), operationType, cfg, readyToTrip, logger)
	return &ModelCircuitBreaker{
		cb: gobreaker.NewCircuitBreaker[*genai.Model](settings),
	}
}

// Execute executes the provided function with circuit breaker protection
func (cb *AICircuitBreaker) Execute(fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	if cb == nil || cb.cb == nil {
		return fn()
	}
	return cb.cb.Execute(fn)
}

// ExecuteModel executes the provided model function with circuit breaker protection
func (cb *ModelCircuitBreaker) ExecuteModel(fn func() (*genai.Model, error)) (*genai.Model, error) {
	if cb == nil || cb.cb == nil {
		return fn()
	}
	return cb.cb.Execute(fn)
}

// breakerStats renders a breaker's observable state for health and stats endpoints
func breakerStats[T any](cb *gobreaker.CircuitBreaker[T]) map[string]any {
	if cb == nil {
		return map[string]any{"enabled": false}
	}
	return map[string]any{
		"name":    cb.Name(),
		"state":   cb.State().String(),
		"counts":  cb.Counts(),
		"enabled": true,
	}
}

// GetStats returns circuit breaker statistics
func (cb *AICircuitBreaker) GetStats() map[string]any {
	if cb == nil {
		return map[string]any{"enabled": false}
	}
	return breakerStats(cb.cb)
}

// GetModelStats returns model circuit breaker statistics
func (cb *ModelCircuitBreaker) GetModelStats() map[string]any {
	if cb == nil {
		return map[string]any{"enabled": false}
	}
	return breakerStats(cb.cb)
}

// IsHealthy returns true if the circuit breaker is in closed state
func (cb *AICircuitBreaker) IsHealthy() bool {
	return cb == nil || cb.cb == nil || cb.cb.State() == gobreaker.StateClosed
}

// IsModelHealthy returns true if the model circuit breaker is in closed state
func (cb *ModelCircuitBreaker) IsModelHealthy() bool {
	return cb == nil || cb.cb == nil || cb.cb.State() == gobreaker.StateClosed
}
