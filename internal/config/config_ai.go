package config

// applyOperationDefaults applies global defaults to operation-specific configuration
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.Timeout == nil {
		opCfg.Timeout = &c.AI.Timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.MaxRetries == nil {
		opCfg.MaxRetries = &c.AI.MaxRetries
	}
	if opCfg.Temperature == nil {
		opCfg.Temperature = &c.AI.Temperature
	}
	// UseSystemPrompts: apply global default only if not explicitly set
	if opCfg.UseSystemPrompts == nil {
		opCfg.UseSystemPrompts = &c.AI.UseSystemPrompts
	}
}

// GetScoreConfig returns the AI configuration for score operations with fallback to global config
func (c *Config) GetScoreConfig() OperationAIConfig {
	config := c.AI.Score

	// Apply common defaults
	c.applyOperationDefaults(&config)

	// Apply score-specific prompt fallbacks
	if config.CustomPrompts.SystemPrompts.ScoreResume == "" {
		config.CustomPrompts.SystemPrompts.ScoreResume = c.AI.CustomPrompts.SystemPrompts.ScoreResume
	}
	if config.CustomPrompts.UserPrompts.ScoreResume == "" {
		config.CustomPrompts.UserPrompts.ScoreResume = c.AI.CustomPrompts.UserPrompts.ScoreResume
	}
	// Also copy file paths for potential later loading
	if config.CustomPrompts.SystemPrompts.ScoreResumeFile == "" {
		config.CustomPrompts.SystemPrompts.ScoreResumeFile = c.AI.CustomPrompts.SystemPrompts.ScoreResumeFile
	}
	if config.CustomPrompts.UserPrompts.ScoreResumeFile == "" {
		config.CustomPrompts.UserPrompts.ScoreResumeFile = c.AI.CustomPrompts.UserPrompts.ScoreResumeFile
	}

	return config
}

// GetRegenerateConfig returns the AI configuration for regenerate operations with fallback to global config
func (c *Config) GetRegenerateConfig() OperationAIConfig {
	config := c.AI.Regenerate

	// Apply common defaults
	c.applyOperationDefaults(&config)

	// Apply regenerate-specific prompt fallbacks
	if config.CustomPrompts.SystemPrompts.RegenerateSection == "" {
		config.CustomPrompts.SystemPrompts.RegenerateSection = c.AI.CustomPrompts.SystemPrompts.RegenerateSection
	}
	if config.CustomPrompts.UserPrompts.RegenerateSection == "" {
		config.CustomPrompts.UserPrompts.RegenerateSection = c.AI.CustomPrompts.UserPrompts.RegenerateSection
	}
	// Also copy file paths for potential later loading
	if config.CustomPrompts.SystemPrompts.RegenerateSectionFile == "" {
		config.CustomPrompts.SystemPrompts.RegenerateSectionFile = c.AI.CustomPrompts.SystemPrompts.RegenerateSectionFile
	}
	if config.CustomPrompts.UserPrompts.RegenerateSectionFile == "" {
		config.CustomPrompts.UserPrompts.RegenerateSectionFile = c.AI.CustomPrompts.UserPrompts.RegenerateSectionFile
	}

	return config
}

// GetLoadedScorePrompts returns a copy of the loaded prompts for the score operation
func (c *Config) GetLoadedScorePrompts() OperationLoadedPrompts {
	loadedPromptsMu.RLock()
	defer loadedPromptsMu.RUnlock()
	return loadedPrompts.Score
}

// GetLoadedRegeneratePrompts returns a copy of the loaded prompts for the regenerate operation
func (c *Config) GetLoadedRegeneratePrompts() OperationLoadedPrompts {
	loadedPromptsMu.RLock()
	defer loadedPromptsMu.RUnlock()
	return loadedPrompts.Regenerate
}

// GetLoadedGlobalPrompts returns a copy of the loaded global prompts
func (c *Config) GetLoadedGlobalPrompts() LoadedPrompts {
	loadedPromptsMu.RLock()
	defer loadedPromptsMu.RUnlock()
	return loadedPrompts.Global
}
