package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// AI Configuration - Global defaults
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.maxRetries", 3)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.useSystemPrompts", true)

	// Model tiers used by section regeneration
	v.SetDefault("ai.tiers.high", "gemini-2.5-pro")
	v.SetDefault("ai.tiers.low", "gemini-2.0-flash")

	// AI Configuration - Score operation defaults
	v.SetDefault("ai.score.provider", "gemini")
	v.SetDefault("ai.score.model", "")
	v.SetDefault("ai.score.timeout", 60*time.Second)
	v.SetDefault("ai.score.apiKey", "")
	v.SetDefault("ai.score.maxRetries", 3)
	v.SetDefault("ai.score.temperature", 0.2) // Low temperature keeps scoring repeatable
	v.SetDefault("ai.score.useSystemPrompts", true)

	// AI Configuration - Regenerate operation defaults
	v.SetDefault("ai.regenerate.provider", "gemini")
	v.SetDefault("ai.regenerate.model", "")
	v.SetDefault("ai.regenerate.timeout", 90*time.Second) // Longer timeout for generation
	v.SetDefault("ai.regenerate.apiKey", "")
	v.SetDefault("ai.regenerate.maxRetries", 2)
	v.SetDefault("ai.regenerate.temperature", 0.6)
	v.SetDefault("ai.regenerate.useSystemPrompts", true)

	// Circuit Breaker Configuration defaults for all operations
	v.SetDefault("ai.score.circuitBreaker.enabled", true)
	v.SetDefault("ai.score.circuitBreaker.maxRequests", 3)
	v.SetDefault("ai.score.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("ai.score.circuitBreaker.timeout", 60*time.Second)
	v.SetDefault("ai.score.circuitBreaker.minRequests", 3)
	v.SetDefault("ai.score.circuitBreaker.failureThreshold", 0.6)

	v.SetDefault("ai.regenerate.circuitBreaker.enabled", true)
	v.SetDefault("ai.regenerate.circuitBreaker.maxRequests", 3)
	v.SetDefault("ai.regenerate.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("ai.regenerate.circuitBreaker.timeout", 60*time.Second)
	v.SetDefault("ai.regenerate.circuitBreaker.minRequests", 3)
	v.SetDefault("ai.regenerate.circuitBreaker.failureThreshold", 0.6)

	// Optimizer Configuration
	v.SetDefault("optimizer.targetScore", 90)
	v.SetDefault("optimizer.maxAttempts", 3)

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 60*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	// TLS Configuration defaults
	v.SetDefault("server.tls.mode", "disabled") // disabled, server, mutual
	v.SetDefault("server.tls.certFile", "")
	v.SetDefault("server.tls.keyFile", "")
	v.SetDefault("server.tls.caFile", "")
	v.SetDefault("server.tls.minVersion", "1.2")           // TLS 1.2 minimum
	v.SetDefault("server.tls.cipherSuites", []string{})    // Use Go defaults
	v.SetDefault("server.tls.clientAuthPolicy", "require") // require, request, verify
	v.SetDefault("server.tls.insecureSkipVerify", false)
	v.SetDefault("server.tls.serverName", "")
	// API Authentication defaults
	v.SetDefault("server.apiKeys", []string{})
	// Rate limiting defaults
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)
	v.SetDefault("server.rateLimit.window", time.Minute)

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 1024*1024) // 1MB

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.geminiKey", "")
	v.SetDefault("vault.secrets.tlsCerts", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "resumeforge")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)

	// Tracing Configuration
	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)

	// Metrics Configuration
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	// Console Configuration
	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)

	// Prometheus Configuration
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")

	// OTLP Configuration
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})

	// Health Check Configuration
	v.SetDefault("observability.healthCheck.timeout", 15*time.Second)
	v.SetDefault("observability.healthCheck.aiModelCheckTimeout", 10*time.Second)
}
