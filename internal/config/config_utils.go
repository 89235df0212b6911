package config

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// applyFallbacks fills in values viper cannot express as plain defaults.
// API key fallbacks for operations live in the Get...Config() accessors.
func (c *Config) applyFallbacks() {
	c.applyServerAPIKeyFallbacks()
	c.applyTLSDefaults()
	c.applyObservabilityDefaults()
}

// applyServerAPIKeyFallbacks reads server API keys from the environment
// when the config file left them empty.
func (c *Config) applyServerAPIKeyFallbacks() {
	if len(c.Server.APIKeys) > 0 {
		return
	}
	apiKeysEnv := os.Getenv("RESUMEFORGE_SERVER_APIKEYS")
	if apiKeysEnv == "" {
		return
	}

	keys := strings.Split(apiKeysEnv, ",")
	for i := range keys {
		keys[i] = strings.TrimSpace(keys[i])
	}
	c.Server.APIKeys = keys
}

func (c *Config) applyTLSDefaults() {
	if c.Server.TLS.Mode == "mutual" && c.Server.TLS.ClientAuthPolicy == "" {
		c.Server.TLS.ClientAuthPolicy = "require"
	}
	if c.Server.TLS.MinVersion == "" && c.Server.TLS.Mode != "disabled" {
		c.Server.TLS.MinVersion = "1.2"
	}
}

func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = generateServiceInstanceID(c.Observability.ServiceName)
	}
}

func generateServiceInstanceID(serviceName string) string {
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}

// Environment variables surfaced in the startup summary. Values containing
// "key" are masked when printed.
var summaryEnvVars = []string{
	"RESUMEFORGE_AI_APIKEY",
	"RESUMEFORGE_AI_PROVIDER",
	"RESUMEFORGE_AI_MODEL",
	"RESUMEFORGE_SERVER_PORT",
	"RESUMEFORGE_SERVER_HOST",
	"RESUMEFORGE_APP_LOGLEVEL",
	"RESUMEFORGE_VAULT_ENABLED",
	"GEMINI_API_KEY", // legacy
}

// logConfigurationSources prints where each piece of configuration came
// from, masking anything secret-shaped.
func (c *Config) logConfigurationSources(configFileUsed string) {
	log.Println("[CONFIG] === Configuration Sources Summary ===")

	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: None (using defaults)")
	}

	log.Println("[CONFIG] Environment variables:")
	anySet := false
	for _, envVar := range summaryEnvVars {
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}
		anySet = true
		if strings.Contains(strings.ToLower(envVar), "key") {
			log.Printf("[CONFIG]   %s=***MASKED***", envVar)
		} else {
			log.Printf("[CONFIG]   %s=%s", envVar, value)
		}
	}
	if !anySet {
		log.Println("[CONFIG]   None set")
	}

	log.Println("[CONFIG] === Key Configuration Values ===")
	log.Printf("[CONFIG] AI Provider: %s", c.AI.Provider)
	log.Printf("[CONFIG] AI Model: %s", c.AI.Model)
	if c.AI.APIKey != "" {
		log.Println("[CONFIG] AI API Key: ***CONFIGURED***")
	} else {
		log.Println("[CONFIG] AI API Key: ***NOT SET***")
	}
	log.Printf("[CONFIG] Server Host: %s", c.Server.Host)
	log.Printf("[CONFIG] Server Port: %s", c.Server.Port)
	log.Printf("[CONFIG] Log Level: %s", c.App.LogLevel)
	log.Printf("[CONFIG] TLS Mode: %s", c.Server.TLS.Mode)
	log.Printf("[CONFIG] Vault Enabled: %t", c.Vault.Enabled)
	log.Printf("[CONFIG] Observability Enabled: %t", c.Observability.Enabled)
	log.Printf("[CONFIG] Optimizer Target Score: %d", c.Optimizer.TargetScore)
	log.Printf("[CONFIG] Optimizer Max Attempts: %d", c.Optimizer.MaxAttempts)

	log.Println("[CONFIG] === Operation-Specific AI Configurations ===")
	log.Printf("[CONFIG] Score - Provider: %s, Model: %s", c.AI.Score.Provider, c.AI.Score.Model)
	log.Printf("[CONFIG] Regenerate - Provider: %s, Model: %s", c.AI.Regenerate.Provider, c.AI.Regenerate.Model)
	log.Printf("[CONFIG] Model Tiers - High: %s, Low: %s", c.AI.Tiers.High, c.AI.Tiers.Low)

	log.Println("[CONFIG] =====================================")
}
