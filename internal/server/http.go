package server

import (
	"time"

	"resumeforge/internal/config"
	resumeforgeErrors "resumeforge/internal/errors"
	"resumeforge/internal/types"
)

// ScoreRequest represents the request body for the score endpoint
type ScoreRequest struct {
	Resume         types.Resume `json:"resume"`
	JobDescription string       `json:"jobDescription"`
}

// OptimizeRequest represents the request body for the optimize endpoint
type OptimizeRequest struct {
	Resume         types.Resume      `json:"resume"`
	JobDescription string            `json:"jobDescription"`
	Profile        types.UserProfile `json:"profile"`
	JobTitle       string            `json:"jobTitle,omitempty"`
	CompanyName    string            `json:"companyName,omitempty"`
	Tier           string            `json:"tier,omitempty"`
	TargetScore    int               `json:"targetScore,omitempty"`
	MaxAttempts    int               `json:"maxAttempts,omitempty"`
}

// KeywordsRequest represents the request body for the keywords endpoint
type KeywordsRequest struct {
	JobDescription string `json:"jobDescription"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// TLS Configuration
	TLSConfig config.TLSConfig

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Prompt file hot-reload (set by Start when prompt files are configured)
	PromptWatcher *config.PromptWatcher

	// Logger
	Logger *resumeforgeErrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, logger *resumeforgeErrors.Logger) *Server {
	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.Window,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Logger:         logger,
	}
}
