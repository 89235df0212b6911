package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// GetLoadedPrompts returns a snapshot of the loaded prompt content
func GetLoadedPrompts() AllLoadedPrompts {
	loadedPromptsMu.RLock()
	defer loadedPromptsMu.RUnlock()
	return loadedPrompts
}

// loadPromptsFromFiles loads custom prompts from external files if file paths are specified.
// Safe to call again after startup; the prompt watcher uses it to hot-reload edited files.
func (c *Config) loadPromptsFromFiles() error {
	loadedPromptsOnce.Do(func() {
		loadedPrompts = AllLoadedPrompts{}
	})

	loadedPromptsMu.Lock()
	defer loadedPromptsMu.Unlock()

	sets := []struct {
		scope   string
		prompts *PromptConfig
		sysDst  *LoadedSystemPrompts
		userDst *LoadedUserPrompts
	}{
		{"global", &c.AI.CustomPrompts, &loadedPrompts.Global.SystemPrompts, &loadedPrompts.Global.UserPrompts},
		{"score", &c.AI.Score.CustomPrompts, &loadedPrompts.Score.SystemPrompts, &loadedPrompts.Score.UserPrompts},
		{"regenerate", &c.AI.Regenerate.CustomPrompts, &loadedPrompts.Regenerate.SystemPrompts, &loadedPrompts.Regenerate.UserPrompts},
	}
	for _, set := range sets {
		if err := c.loadPromptSet(set.prompts, set.sysDst, set.userDst); err != nil {
			return fmt.Errorf("failed to load %s prompts: %w", set.scope, err)
		}
	}

	c.logPromptLoadingSummary()
	return nil
}

// loadPromptSet reads every file-backed prompt in one PromptConfig into its
// loaded-content destination. Prompts without a file path are skipped.
func (c *Config) loadPromptSet(prompts *PromptConfig, sysDst *LoadedSystemPrompts, userDst *LoadedUserPrompts) error {
	entries := []struct {
		path       string
		promptType string
		operation  string
		dst        *string
	}{
		{prompts.SystemPrompts.ScoreResumeFile, "system", "scoreResume", &sysDst.ScoreResume},
		{prompts.SystemPrompts.RegenerateSectionFile, "system", "regenerateSection", &sysDst.RegenerateSection},
		{prompts.UserPrompts.ScoreResumeFile, "user", "scoreResume", &userDst.ScoreResume},
		{prompts.UserPrompts.RegenerateSectionFile, "user", "regenerateSection", &userDst.RegenerateSection},
	}

	for _, e := range entries {
		if e.path == "" {
			continue
		}
		content, err := c.loadPromptFromFile(e.path, e.promptType, e.operation)
		if err != nil {
			return err
		}
		*e.dst = content
	}
	return nil
}

// loadPromptFromFile reads one prompt file, rejecting missing and empty
// files with errors that name the prompt they were meant to fill.
func (c *Config) loadPromptFromFile(filePath, promptType, operation string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s %s prompt file '%s': %w", promptType, operation, filePath, err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%s %s prompt file not found: %s", promptType, operation, absPath)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s %s prompt file '%s': %w", promptType, operation, absPath, err)
	}

	trimmed := strings.TrimSpace(string(content))
	if trimmed == "" {
		return "", fmt.Errorf("%s %s prompt file '%s' is empty", promptType, operation, absPath)
	}

	log.Printf("[CONFIG] Successfully loaded %s %s prompt from file: %s (%d characters)",
		promptType, operation, absPath, len(trimmed))

	return trimmed, nil
}

// validatePromptFiles checks that every configured prompt file exists, so a
// bad path fails startup instead of surfacing mid-request.
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	validateFile := func(filePath, promptType, operation string) {
		if filePath == "" {
			return
		}

		absPath, err := filepath.Abs(filePath)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s %s prompt: %s", promptType, operation, filePath))
			return
		}

		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s %s prompt file not found: %s", promptType, operation, absPath))
		}
	}

	validateFile(c.AI.CustomPrompts.SystemPrompts.ScoreResumeFile, "system", "scoreResume")
	validateFile(c.AI.CustomPrompts.SystemPrompts.RegenerateSectionFile, "system", "regenerateSection")
	validateFile(c.AI.CustomPrompts.UserPrompts.ScoreResumeFile, "user", "scoreResume")
	validateFile(c.AI.CustomPrompts.UserPrompts.RegenerateSectionFile, "user", "regenerateSection")

	validateFile(c.AI.Score.CustomPrompts.SystemPrompts.ScoreResumeFile, "score system", "scoreResume")
	validateFile(c.AI.Score.CustomPrompts.UserPrompts.ScoreResumeFile, "score user", "scoreResume")
	validateFile(c.AI.Regenerate.CustomPrompts.SystemPrompts.RegenerateSectionFile, "regenerate system", "regenerateSection")
	validateFile(c.AI.Regenerate.CustomPrompts.UserPrompts.RegenerateSectionFile, "regenerate user", "regenerateSection")

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}
	return nil
}

// logPromptLoadingSummary reports which custom prompts are active. Called
// with loadedPromptsMu held.
func (c *Config) logPromptLoadingSummary() {
	promptChecks := []struct {
		content string
		message string
	}{
		{loadedPrompts.Global.SystemPrompts.ScoreResume, "[CONFIG] Global system score prompt: loaded from file"},
		{loadedPrompts.Global.SystemPrompts.RegenerateSection, "[CONFIG] Global system regenerate prompt: loaded from file"},
		{loadedPrompts.Global.UserPrompts.ScoreResume, "[CONFIG] Global user score prompt: loaded from file"},
		{loadedPrompts.Global.UserPrompts.RegenerateSection, "[CONFIG] Global user regenerate prompt: loaded from file"},
		{loadedPrompts.Score.SystemPrompts.ScoreResume, "[CONFIG] Score-specific system prompt: loaded from file"},
		{loadedPrompts.Score.UserPrompts.ScoreResume, "[CONFIG] Score-specific user prompt: loaded from file"},
		{loadedPrompts.Regenerate.SystemPrompts.RegenerateSection, "[CONFIG] Regenerate-specific system prompt: loaded from file"},
		{loadedPrompts.Regenerate.UserPrompts.RegenerateSection, "[CONFIG] Regenerate-specific user prompt: loaded from file"},
	}

	promptCount := 0
	for _, check := range promptChecks {
		if check.content != "" {
			log.Println(check.message)
			promptCount++
		}
	}

	if promptCount == 0 {
		log.Println("[CONFIG] No custom prompts loaded - using built-in defaults")
	} else {
		log.Printf("[CONFIG] Total custom prompts loaded: %d", promptCount)
	}
}
