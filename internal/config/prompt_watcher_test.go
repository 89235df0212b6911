package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPromptFilesToWatch(t *testing.T) {
	sharedFile := "/prompts/score.md"

	config := &Config{
		AI: AIConfig{
			CustomPrompts: PromptConfig{
				SystemPrompts: SystemPrompts{
					ScoreResumeFile: sharedFile,
				},
				UserPrompts: UserPrompts{
					RegenerateSectionFile: "/prompts/regenerate.user.md",
				},
			},
			Score: OperationAIConfig{
				CustomPrompts: PromptConfig{
					SystemPrompts: SystemPrompts{
						ScoreResumeFile: sharedFile, // duplicate of the global path
					},
				},
			},
		},
	}

	files := config.promptFilesToWatch()

	if len(files) != 2 {
		t.Fatalf("Expected 2 unique files to watch, got %d: %v", len(files), files)
	}

	found := map[string]bool{}
	for _, file := range files {
		found[file] = true
	}
	if !found[sharedFile] || !found["/prompts/regenerate.user.md"] {
		t.Errorf("Expected watch list to contain both configured files, got %v", files)
	}
}

func TestNewPromptWatcherNoFiles(t *testing.T) {
	config := &Config{}

	watcher, err := NewPromptWatcher(config, nil)
	if err != nil {
		t.Fatalf("NewPromptWatcher failed: %v", err)
	}
	if watcher != nil {
		t.Error("Expected nil watcher when no prompt files are configured")
	}
}

func TestPromptWatcherStartStop(t *testing.T) {
	tempDir := t.TempDir()

	promptFile := filepath.Join(tempDir, "score.md")
	if err := os.WriteFile(promptFile, []byte("Score this resume"), 0600); err != nil {
		t.Fatalf("Failed to create test prompt file: %v", err)
	}

	config := &Config{
		AI: AIConfig{
			Score: OperationAIConfig{
				CustomPrompts: PromptConfig{
					SystemPrompts: SystemPrompts{
						ScoreResumeFile: promptFile,
					},
				},
			},
		},
	}

	watcher, err := NewPromptWatcher(config, nil)
	if err != nil {
		t.Fatalf("NewPromptWatcher failed: %v", err)
	}
	if watcher == nil {
		t.Fatal("Expected a watcher when prompt files are configured")
	}

	watched := watcher.GetWatchedFiles()
	if len(watched) != 1 || watched[0] != promptFile {
		t.Errorf("Expected watched files [%s], got %v", promptFile, watched)
	}

	if watcher.IsRunning() {
		t.Error("Watcher should not be running before Start")
	}

	if err := watcher.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !watcher.IsRunning() {
		t.Error("Watcher should be running after Start")
	}

	if err := watcher.Start(); err == nil {
		t.Error("Expected error when starting an already running watcher")
	}

	if err := watcher.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if watcher.IsRunning() {
		t.Error("Watcher should not be running after Stop")
	}

	// Stopping again is a no-op
	if err := watcher.Stop(); err != nil {
		t.Errorf("Second Stop should not fail: %v", err)
	}
}

func TestPromptWatcherHasFileChanged(t *testing.T) {
	tempDir := t.TempDir()

	promptFile := filepath.Join(tempDir, "score.md")
	if err := os.WriteFile(promptFile, []byte("original"), 0600); err != nil {
		t.Fatalf("Failed to create test prompt file: %v", err)
	}

	watcher := &PromptWatcher{
		watchedFiles: []string{promptFile},
		lastModTime:  make(map[string]time.Time),
	}

	// First observation records the mod time and reports a change
	if !watcher.hasFileChanged(promptFile) {
		t.Error("Expected first check of an unrecorded file to report a change")
	}
	if watcher.hasFileChanged(promptFile) {
		t.Error("Expected no change when the file has not been modified")
	}

	// Bump the mod time to simulate an edit
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(promptFile, future, future); err != nil {
		t.Fatalf("Failed to update file times: %v", err)
	}
	if !watcher.hasFileChanged(promptFile) {
		t.Error("Expected a change after the file was modified")
	}

	// Deleting the file counts as a change exactly once
	if err := os.Remove(promptFile); err != nil {
		t.Fatalf("Failed to remove test file: %v", err)
	}
	if !watcher.hasFileChanged(promptFile) {
		t.Error("Expected a change when the file was deleted")
	}
	if watcher.hasFileChanged(promptFile) {
		t.Error("Expected no further change reports after deletion was observed")
	}
}

func TestPromptWatcherReloadPrompts(t *testing.T) {
	tempDir := t.TempDir()

	promptFile := filepath.Join(tempDir, "score.md")
	if err := os.WriteFile(promptFile, []byte("first version"), 0600); err != nil {
		t.Fatalf("Failed to create test prompt file: %v", err)
	}

	config := &Config{
		AI: AIConfig{
			Score: OperationAIConfig{
				CustomPrompts: PromptConfig{
					SystemPrompts: SystemPrompts{
						ScoreResumeFile: promptFile,
					},
				},
			},
		},
	}

	if err := config.loadPromptsFromFiles(); err != nil {
		t.Fatalf("Initial prompt load failed: %v", err)
	}
	if got := GetPromptsForOperation("score").SystemPrompts.ScoreResume; got != "first version" {
		t.Fatalf("Expected initial prompt content 'first version', got '%s'", got)
	}

	if err := os.WriteFile(promptFile, []byte("second version"), 0600); err != nil {
		t.Fatalf("Failed to rewrite test prompt file: %v", err)
	}

	watcher, err := NewPromptWatcher(config, nil)
	if err != nil {
		t.Fatalf("NewPromptWatcher failed: %v", err)
	}
	watcher.reloadPrompts()

	if got := GetPromptsForOperation("score").SystemPrompts.ScoreResume; got != "second version" {
		t.Errorf("Expected reloaded prompt content 'second version', got '%s'", got)
	}

	snapshot := GetLoadedPrompts()
	if snapshot.Score.SystemPrompts.ScoreResume != "second version" {
		t.Errorf("Expected snapshot to reflect reloaded content, got '%s'",
			snapshot.Score.SystemPrompts.ScoreResume)
	}
}
