package ai

import (
	"log/slog"
	"testing"
	"time"

	"resumeforge/internal/config"
	"resumeforge/internal/errors"
)

// Helper functions to create pointers for test values
func timePtr(d time.Duration) *time.Duration { return &d }
func intPtr(i int) *int                      { return &i }
func float32Ptr(f float32) *float32          { return &f }
func boolPtr(b bool) *bool                   { return &b }

var testLogger = errors.NewLogger(slog.LevelDebug)

// TestOperationSpecificConfigDerivation verifies that operation-specific
// configurations are correctly derived, with fallbacks to the global
// configuration.
func TestOperationSpecificConfigDerivation(t *testing.T) {
	testConfig := createTestConfigWithOverrides()

	testCases := []struct {
		name           string
		operation      string
		getConfig      func() config.OperationAIConfig
		expectedValues map[string]any
		fallbackValues map[string]any
	}{
		{
			name:      "ScoreConfigDerivation",
			operation: "score",
			getConfig: testConfig.GetScoreConfig,
			expectedValues: map[string]any{
				"Model":       "score-specific-model",
				"Timeout":     90 * time.Second,
				"Temperature": float32(0.3),
			},
			fallbackValues: map[string]any{
				"APIKey":     "global-api-key",
				"MaxRetries": 5,
			},
		},
		{
			name:      "RegenerateConfigDerivation",
			operation: "regenerate",
			getConfig: testConfig.GetRegenerateConfig,
			expectedValues: map[string]any{
				"MaxRetries": 1,
			},
			fallbackValues: map[string]any{
				"Model":   "global-model",
				"Timeout": 60 * time.Second,
				"APIKey":  "global-api-key",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := tc.getConfig()
			assertConfigValues(t, cfg, tc.expectedValues, tc.fallbackValues)
			assertServiceCreation(t, testConfig, cfg, tc.operation)
		})
	}
}

// createTestConfigWithOverrides creates a test config with operation-specific overrides
func createTestConfigWithOverrides() *config.Config {
	return &config.Config{
		AI: config.AIConfig{
			// Global defaults that should be used as fallbacks
			Provider:         "gemini",
			Model:            "global-model",
			Timeout:          60 * time.Second,
			APIKey:           "global-api-key",
			MaxRetries:       5,
			Temperature:      0.9,
			UseSystemPrompts: true,

			Tiers: config.ModelTiersConfig{
				High: "gemini-2.5-pro",
				Low:  "gemini-2.0-flash",
			},

			// Operation-specific configurations that override globals
			Score: config.OperationAIConfig{
				Model:       "score-specific-model",
				Timeout:     timePtr(90 * time.Second),
				Temperature: float32Ptr(0.3),
				// APIKey and MaxRetries should fall back to global values.
			},

			Regenerate: config.OperationAIConfig{
				MaxRetries: intPtr(1),
				// Other values should fall back.
			},
		},
	}
}

// assertConfigValues verifies that config values match expected and fallback values
func assertConfigValues(t *testing.T, cfg config.OperationAIConfig, expectedValues, fallbackValues map[string]any) {
	t.Helper()

	for key, expected := range expectedValues {
		assertConfigValue(t, cfg, key, expected)
	}

	for key, expected := range fallbackValues {
		assertConfigValue(t, cfg, key, expected)
	}
}

// assertConfigValue checks a specific config value
func assertConfigValue(t *testing.T, cfg config.OperationAIConfig, key string, expected any) {
	t.Helper()

	switch key {
	case "Model":
		if cfg.Model != expected.(string) {
			t.Errorf("Expected %s '%s', got '%s'", key, expected, cfg.Model)
		}
	case "Timeout":
		if *cfg.Timeout != expected.(time.Duration) {
			t.Errorf("Expected %s %v, got %v", key, expected, *cfg.Timeout)
		}
	case "Temperature":
		if *cfg.Temperature != expected.(float32) {
			t.Errorf("Expected %s %f, got %f", key, expected, *cfg.Temperature)
		}
	case "APIKey":
		if cfg.APIKey != expected.(string) {
			t.Errorf("Expected %s '%s', got '%s'", key, expected, cfg.APIKey)
		}
	case "MaxRetries":
		if *cfg.MaxRetries != expected.(int) {
			t.Errorf("Expected %s %d, got %d", key, expected, *cfg.MaxRetries)
		}
	}
}

// assertServiceCreation verifies that a service can be created with the derived config
func assertServiceCreation(t *testing.T, fullCfg *config.Config, cfg config.OperationAIConfig, operation string) {
	t.Helper()

	_, err := NewService(&cfg, fullCfg.AI.Tiers, operation, testLogger)
	if err != nil {
		// An error from the dummy API key is fine; the factory must not panic.
		t.Logf("Received expected error when creating service with test key: %v", err)
	}
}

func TestCircuitBreakerIntegrationWithServices(t *testing.T) {
	testOpConfig := &config.OperationAIConfig{
		Provider:         "gemini",
		Model:            "test-model",
		Timeout:          timePtr(30 * time.Second),
		APIKey:           "test-key",
		MaxRetries:       intPtr(1),
		Temperature:      float32Ptr(0.5),
		UseSystemPrompts: boolPtr(true),
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      5,
			Interval:         30 * time.Second,
			Timeout:          45 * time.Second,
			MinRequests:      2,
			FailureThreshold: 0.8,
		},
	}

	service, err := NewService(testOpConfig, config.ModelTiersConfig{}, "test-op", testLogger)
	if err != nil {
		t.Logf("Received expected error when creating service with test key: %v", err)
	}

	if service.config.CircuitBreaker.MaxRequests != 5 {
		t.Errorf("Expected circuit breaker max requests 5, got %d", service.config.CircuitBreaker.MaxRequests)
	}
	if service.config.CircuitBreaker.FailureThreshold != 0.8 {
		t.Errorf("Expected circuit breaker failure threshold 0.8, got %f", service.config.CircuitBreaker.FailureThreshold)
	}

	geminiProvider, ok := service.Provider.(*GeminiProvider)
	if !ok {
		t.Fatal("Service provider is not of type *GeminiProvider")
	}

	stats := geminiProvider.GetCircuitBreakerStats()

	aiOpsStats, ok := stats["ai_operations"].(map[string]any)
	if !ok {
		t.Fatal("AI operations stats should exist and be a map")
	}
	if name, _ := aiOpsStats["name"].(string); name != "AI-test-op" {
		t.Errorf("Expected circuit breaker name 'AI-test-op', got '%s'", name)
	}

	modelOpsStats, ok := stats["model_operations"].(map[string]any)
	if !ok {
		t.Fatal("Model operations stats should exist and be a map")
	}
	if name, _ := modelOpsStats["name"].(string); name != "AI-Model-test-op" {
		t.Errorf("Expected model circuit breaker name 'AI-Model-test-op', got '%s'", name)
	}

	if overallHealthy, _ := stats["overall_healthy"].(bool); !overallHealthy {
		t.Error("Circuit breaker should be healthy initially")
	}
}
