package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
// API Key Precedence Order:
// 1. Vault (if configured) - Highest priority
// 2. Config File values
// 3. Environment Variables (RESUMEFORGE_AI_APIKEY, etc.)
// 4. Default values - Lowest priority
type Config struct {
	AI            AIConfig            `mapstructure:"ai"`
	Optimizer     OptimizerConfig     `mapstructure:"optimizer"`
	Server        ServerConfig        `mapstructure:"server"`
	App           AppConfig           `mapstructure:"app"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AIConfig holds AI service configuration
type AIConfig struct {
	// Global/fallback configuration
	Provider         string        `mapstructure:"provider"`
	Model            string        `mapstructure:"model"`
	Timeout          time.Duration `mapstructure:"timeout"`
	APIKey           string        `mapstructure:"apiKey"`
	MaxRetries       int           `mapstructure:"maxRetries"`
	Temperature      float32       `mapstructure:"temperature"`
	UseSystemPrompts bool          `mapstructure:"useSystemPrompts"`
	CustomPrompts    PromptConfig  `mapstructure:"customPrompts"`

	// Model tier mapping used by section regeneration
	Tiers ModelTiersConfig `mapstructure:"tiers"`

	// Operation-specific configurations
	Score      OperationAIConfig `mapstructure:"score"`
	Regenerate OperationAIConfig `mapstructure:"regenerate"`
}

// ModelTiersConfig maps generation quality tiers to concrete model names
type ModelTiersConfig struct {
	High string `mapstructure:"high"`
	Low  string `mapstructure:"low"`
}

// OptimizerConfig holds the optimization loop bounds
type OptimizerConfig struct {
	TargetScore int `mapstructure:"targetScore"`
	MaxAttempts int `mapstructure:"maxAttempts"`
}

// CircuitBreakerConfig tunes the per-operation breakers in front of the
// AI provider.
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // allowed while half-open
	Interval         time.Duration `mapstructure:"interval"`         // count-reset interval
	Timeout          time.Duration `mapstructure:"timeout"`          // how long the breaker stays open
	MinRequests      uint32        `mapstructure:"minRequests"`      // floor before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // failure ratio that trips
}

// OperationAIConfig holds AI configuration for a specific operation.
// Pointer fields distinguish "unset" from explicit zero values so the global
// defaults can be applied per field.
type OperationAIConfig struct {
	Provider         string               `mapstructure:"provider"`
	Model            string               `mapstructure:"model"`
	Timeout          *time.Duration       `mapstructure:"timeout"`
	APIKey           string               `mapstructure:"apiKey"`
	MaxRetries       *int                 `mapstructure:"maxRetries"`
	Temperature      *float32             `mapstructure:"temperature"`
	UseSystemPrompts *bool                `mapstructure:"useSystemPrompts"`
	CustomPrompts    PromptConfig         `mapstructure:"customPrompts"`
	CircuitBreaker   CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// PromptConfig holds configuration for customizable prompts
type PromptConfig struct {
	SystemPrompts SystemPrompts `mapstructure:"systemPrompts"`
	UserPrompts   UserPrompts   `mapstructure:"userPrompts"`
}

// SystemPrompts contains system-level instructions
type SystemPrompts struct {
	ScoreResume           string `mapstructure:"scoreResume"`
	ScoreResumeFile       string `mapstructure:"scoreResumeFile"`
	RegenerateSection     string `mapstructure:"regenerateSection"`
	RegenerateSectionFile string `mapstructure:"regenerateSectionFile"`
}

// UserPrompts contains user-level prompt templates
type UserPrompts struct {
	ScoreResume           string `mapstructure:"scoreResume"`
	ScoreResumeFile       string `mapstructure:"scoreResumeFile"`
	RegenerateSection     string `mapstructure:"regenerateSection"`
	RegenerateSectionFile string `mapstructure:"regenerateSectionFile"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration `mapstructure:"idleTimeout"`

	// TLS Configuration
	TLS TLSConfig `mapstructure:"tls"`

	// API Authentication
	APIKeys []string `mapstructure:"apiKeys"` // Valid API keys for authentication

	// Rate Limiting Configuration
	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

// TLSConfig holds TLS and mTLS settings. Certificates come either from
// files or, when populated by Vault, directly as PEM content.
type TLSConfig struct {
	Mode     string `mapstructure:"mode"` // "disabled", "server", or "mutual"
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`
	CAFile   string `mapstructure:"caFile"` // required for mutual mode

	// PEM content variants, set when Vault supplies the certificates
	CertContent string `mapstructure:"certContent"`
	KeyContent  string `mapstructure:"keyContent"`
	CAContent   string `mapstructure:"caContent"`

	MinVersion       string   `mapstructure:"minVersion"`       // "1.2" or "1.3"
	CipherSuites     []string `mapstructure:"cipherSuites"`     // optional allow-list
	ClientAuthPolicy string   `mapstructure:"clientAuthPolicy"` // "require", "request", or "verify"

	InsecureSkipVerify bool   `mapstructure:"insecureSkipVerify"` // dev only
	ServerName         string `mapstructure:"serverName"`
}

// RateLimitConfig holds token-bucket rate limiting settings.
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	RequestsPerMin int           `mapstructure:"requestsPerMin"`
	BurstCapacity  int           `mapstructure:"burstCapacity"`
	ByIP           bool          `mapstructure:"byIP"`     // key buckets by client IP
	ByAPIKey       bool          `mapstructure:"byAPIKey"` // key buckets by API key
	Window         time.Duration `mapstructure:"window"`
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool              `mapstructure:"enabled"`
	ServiceName     string            `mapstructure:"serviceName"`
	ServiceVersion  string            `mapstructure:"serviceVersion"`
	ServiceInstance string            `mapstructure:"serviceInstance"`
	ConsoleOutput   bool              `mapstructure:"consoleOutput"`
	SampleRate      float64           `mapstructure:"sampleRate"`
	Tracing         TracingConfig     `mapstructure:"tracing"`
	Metrics         MetricsConfig     `mapstructure:"metrics"`
	Console         ConsoleConfig     `mapstructure:"console"`
	Prometheus      PrometheusConfig  `mapstructure:"prometheus"`
	OTLP            OTLPConfig        `mapstructure:"otlp"`
	HealthCheck     HealthCheckConfig `mapstructure:"healthCheck"`
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	SampleRate float64 `mapstructure:"sampleRate"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// ConsoleConfig holds console output configuration
type ConsoleConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// HealthCheckConfig holds health check configuration
type HealthCheckConfig struct {
	Timeout             time.Duration `mapstructure:"timeout"`
	AIModelCheckTimeout time.Duration `mapstructure:"aiModelCheckTimeout"`
}

// LoadConfig builds a Config from defaults, an optional YAML file, and
// environment variables, then resolves operation fallbacks and loads any
// external prompt files.
func LoadConfig() (*Config, error) {
	log.Println("[CONFIG] Starting configuration loading process")

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("RESUMEFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/resumeforge/")
	v.AddConfigPath("$HOME/.resumeforge")
	v.AddConfigPath(".")

	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine, anything else is a real failure.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("[CONFIG] No config file found, using defaults and environment variables")
	} else {
		configFileUsed = v.ConfigFileUsed()
		log.Printf("[CONFIG] Successfully loaded config file: %s", configFileUsed)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyFallbacks()
	config.logConfigurationSources(configFileUsed)

	// Prompt files are checked before being read so a bad path fails fast.
	if err := config.validatePromptFiles(); err != nil {
		return nil, fmt.Errorf("prompt file validation failed: %w", err)
	}

	if err := config.loadPromptsFromFiles(); err != nil {
		return nil, fmt.Errorf("failed to load custom prompts from files: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Println("[CONFIG] Configuration loading completed successfully")
	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.AI.APIKey == "" {
		return fmt.Errorf("AI API key is required (set RESUMEFORGE_AI_APIKEY environment variable)")
	}

	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI timeout must be positive")
	}

	if c.Optimizer.TargetScore < 1 || c.Optimizer.TargetScore > 100 {
		return fmt.Errorf("optimizer target score must be between 1 and 100, got %d", c.Optimizer.TargetScore)
	}

	if c.Optimizer.MaxAttempts < 1 {
		return fmt.Errorf("optimizer max attempts must be at least 1, got %d", c.Optimizer.MaxAttempts)
	}

	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	defaultFormatOK := false
	for _, format := range c.App.SupportedFormats {
		if format == c.App.DefaultFormat {
			defaultFormatOK = true
			break
		}
	}
	if !defaultFormatOK {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	if err := c.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("TLS configuration error: %w", err)
	}

	return nil
}

// ModelForTier resolves a generation tier name to a configured model, falling
// back to the global model for unknown tiers.
func (c *Config) ModelForTier(tier string) string {
	switch tier {
	case "high":
		if c.AI.Tiers.High != "" {
			return c.AI.Tiers.High
		}
	case "low":
		if c.AI.Tiers.Low != "" {
			return c.AI.Tiers.Low
		}
	}
	return c.AI.Model
}

// Global configuration instance
var GlobalConfig *Config

// InitConfig initializes the global configuration
func InitConfig() error {
	config, err := LoadConfig()
	if err != nil {
		return err
	}
	GlobalConfig = config
	return nil
}
