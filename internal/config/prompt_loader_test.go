package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writePromptFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoadPromptsFromFiles(t *testing.T) {
	tempDir := t.TempDir()

	const systemContent = "Test system prompt for scoring"
	const userContent = "Test user prompt template: %s and %s"

	systemFile := writePromptFile(t, tempDir, "system.score.md", systemContent)
	userFile := writePromptFile(t, tempDir, "user.score.md", userContent)

	config := &Config{
		AI: AIConfig{
			Score: OperationAIConfig{
				CustomPrompts: PromptConfig{
					SystemPrompts: SystemPrompts{ScoreResumeFile: systemFile},
					UserPrompts:   UserPrompts{ScoreResumeFile: userFile},
				},
			},
		},
	}

	if err := config.loadPromptsFromFiles(); err != nil {
		t.Fatalf("loadPromptsFromFiles: %v", err)
	}

	loaded := GetPromptsForOperation("score")
	if loaded.SystemPrompts.ScoreResume != systemContent {
		t.Errorf("system prompt = %q, want %q", loaded.SystemPrompts.ScoreResume, systemContent)
	}
	if loaded.UserPrompts.ScoreResume != userContent {
		t.Errorf("user prompt = %q, want %q", loaded.UserPrompts.ScoreResume, userContent)
	}

	// Loading fills the in-memory store without clobbering the path fields.
	if got := config.AI.Score.CustomPrompts.SystemPrompts.ScoreResumeFile; got != systemFile {
		t.Errorf("system prompt path changed to %q", got)
	}
	if got := config.AI.Score.CustomPrompts.UserPrompts.ScoreResumeFile; got != userFile {
		t.Errorf("user prompt path changed to %q", got)
	}
}

func TestValidatePromptFiles(t *testing.T) {
	tempDir := t.TempDir()
	validFile := writePromptFile(t, tempDir, "valid.md", "Valid content")

	config := &Config{
		AI: AIConfig{
			Score: OperationAIConfig{
				CustomPrompts: PromptConfig{
					SystemPrompts: SystemPrompts{ScoreResumeFile: validFile},
				},
			},
		},
	}

	if err := config.validatePromptFiles(); err != nil {
		t.Errorf("validation of existing file failed: %v", err)
	}

	config.AI.Score.CustomPrompts.SystemPrompts.ScoreResumeFile = filepath.Join(tempDir, "nonexistent.md")
	if err := config.validatePromptFiles(); err == nil {
		t.Error("validation passed for a missing file")
	}
}

func TestLoadPromptFromFile(t *testing.T) {
	tempDir := t.TempDir()
	config := &Config{}

	const content = "Test prompt content"
	testFile := writePromptFile(t, tempDir, "test.md", content)

	loaded, err := config.loadPromptFromFile(testFile, "system", "score")
	if err != nil {
		t.Fatalf("loadPromptFromFile: %v", err)
	}
	if loaded != content {
		t.Errorf("content = %q, want %q", loaded, content)
	}

	emptyFile := writePromptFile(t, tempDir, "empty.md", "")
	if _, err := config.loadPromptFromFile(emptyFile, "system", "score"); err == nil {
		t.Error("empty file accepted")
	}

	if _, err := config.loadPromptFromFile(filepath.Join(tempDir, "nonexistent.md"), "system", "score"); err == nil {
		t.Error("missing file accepted")
	}
}

func TestPromptFileIntegration(t *testing.T) {
	tempDir := t.TempDir()

	const systemPrompt = "Custom system prompt for regeneration testing"
	const userPrompt = "Custom user prompt: %s %s"

	systemFile := writePromptFile(t, tempDir, "system.md", systemPrompt)
	userFile := writePromptFile(t, tempDir, "user.md", userPrompt)

	config := &Config{
		AI: AIConfig{
			Provider:    "gemini",
			Model:       "test-model",
			Timeout:     60 * time.Second,
			APIKey:      "test-key",
			MaxRetries:  3,
			Temperature: 0.7,
			Regenerate: OperationAIConfig{
				CustomPrompts: PromptConfig{
					SystemPrompts: SystemPrompts{RegenerateSectionFile: systemFile},
					UserPrompts:   UserPrompts{RegenerateSectionFile: userFile},
				},
			},
		},
		App: AppConfig{
			LogLevel:         "info",
			DefaultFormat:    "json",
			SupportedFormats: []string{"json", "text", "markdown"},
			MaxFileSize:      1024 * 1024,
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: "8080",
		},
	}

	// Run the same sequence LoadConfig uses after unmarshalling.
	config.applyFallbacks()

	if err := config.validatePromptFiles(); err != nil {
		t.Fatalf("validatePromptFiles: %v", err)
	}
	if err := config.loadPromptsFromFiles(); err != nil {
		t.Fatalf("loadPromptsFromFiles: %v", err)
	}

	loaded := GetPromptsForOperation("regenerate")
	if loaded.SystemPrompts.RegenerateSection != systemPrompt {
		t.Errorf("system prompt = %q, want %q", loaded.SystemPrompts.RegenerateSection, systemPrompt)
	}
	if loaded.UserPrompts.RegenerateSection != userPrompt {
		t.Errorf("user prompt = %q, want %q", loaded.UserPrompts.RegenerateSection, userPrompt)
	}

	if got := config.AI.Regenerate.CustomPrompts.SystemPrompts.RegenerateSectionFile; got != systemFile {
		t.Errorf("system prompt path changed to %q", got)
	}
	if got := config.AI.Regenerate.CustomPrompts.UserPrompts.RegenerateSectionFile; got != userFile {
		t.Errorf("user prompt path changed to %q", got)
	}
}
