package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"resumeforge/internal/errors"
)

// PromptWatcher watches configured prompt files and reloads their content
// when they change on disk, so long-running serve processes pick up prompt
// edits without a restart.
type PromptWatcher struct {
	mu sync.RWMutex

	config       *Config
	watchedFiles []string
	lastModTime  map[string]time.Time

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan   chan struct{}
	reloadChan chan struct{}

	logger  *errors.Logger
	running bool
}

// NewPromptWatcher creates a watcher for every prompt file referenced by the
// configuration. Returns (nil, nil) when no prompt files are configured.
func NewPromptWatcher(config *Config, logger *errors.Logger) (*PromptWatcher, error) {
	files := config.promptFilesToWatch()
	if len(files) == 0 {
		return nil, nil
	}

	return &PromptWatcher{
		config:        config,
		watchedFiles:  files,
		lastModTime:   make(map[string]time.Time),
		debounceDelay: 1 * time.Second,
		stopChan:      make(chan struct{}),
		reloadChan:    make(chan struct{}, 1),
		logger:        logger,
	}, nil
}

// promptFilesToWatch collects every non-empty prompt file path from the
// global and operation-specific prompt configuration.
func (c *Config) promptFilesToWatch() []string {
	candidates := []string{
		c.AI.CustomPrompts.SystemPrompts.ScoreResumeFile,
		c.AI.CustomPrompts.SystemPrompts.RegenerateSectionFile,
		c.AI.CustomPrompts.UserPrompts.ScoreResumeFile,
		c.AI.CustomPrompts.UserPrompts.RegenerateSectionFile,
		c.AI.Score.CustomPrompts.SystemPrompts.ScoreResumeFile,
		c.AI.Score.CustomPrompts.UserPrompts.ScoreResumeFile,
		c.AI.Regenerate.CustomPrompts.SystemPrompts.RegenerateSectionFile,
		c.AI.Regenerate.CustomPrompts.UserPrompts.RegenerateSectionFile,
	}

	var files []string
	for _, file := range candidates {
		if file == "" {
			continue
		}
		if !slices.Contains(files, file) {
			files = append(files, file)
		}
	}
	return files
}

// Start begins watching the configured prompt files
func (pw *PromptWatcher) Start() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if pw.running {
		return fmt.Errorf("prompt watcher is already running")
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file system watcher: %w", err)
	}
	pw.fsWatcher = fsWatcher

	if err := pw.updateModTimes(); err != nil {
		pw.fsWatcher.Close()
		return fmt.Errorf("failed to record initial file state: %w", err)
	}

	for _, file := range pw.watchedFiles {
		if err := pw.addFileToWatcher(file); err != nil && pw.logger != nil {
			pw.logger.Warn("Failed to watch prompt file", "file", file, "error", err)
		}
	}

	pw.running = true
	go pw.watchLoop()

	if pw.logger != nil {
		pw.logger.Info("Prompt file watcher started",
			"files", pw.watchedFiles,
			"debounce_delay", pw.debounceDelay)
	}

	return nil
}

// Stop stops the prompt file watcher
func (pw *PromptWatcher) Stop() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if !pw.running {
		return nil
	}

	close(pw.stopChan)

	if pw.debounceTimer != nil {
		pw.debounceTimer.Stop()
	}

	if pw.fsWatcher != nil {
		if err := pw.fsWatcher.Close(); err != nil {
			if pw.logger != nil {
				pw.logger.LogError(err, "Failed to close file system watcher")
			}
			return err
		}
	}

	pw.running = false

	if pw.logger != nil {
		pw.logger.Info("Prompt file watcher stopped")
	}

	return nil
}

// IsRunning returns whether the watcher is currently running
func (pw *PromptWatcher) IsRunning() bool {
	pw.mu.RLock()
	defer pw.mu.RUnlock()
	return pw.running
}

// GetWatchedFiles returns the list of prompt files being watched
func (pw *PromptWatcher) GetWatchedFiles() []string {
	return slices.Clone(pw.watchedFiles)
}

// addFileToWatcher adds a file and its directory to the file system watcher
func (pw *PromptWatcher) addFileToWatcher(file string) error {
	if err := pw.fsWatcher.Add(file); err != nil {
		if os.IsNotExist(err) {
			dir := filepath.Dir(file)
			if err := pw.fsWatcher.Add(dir); err != nil {
				return fmt.Errorf("failed to watch directory %s: %w", dir, err)
			}
			if pw.logger != nil {
				pw.logger.Info("Watching directory for prompt file",
					"file", file, "directory", dir)
			}
		} else {
			return fmt.Errorf("failed to watch file %s: %w", file, err)
		}
	}

	// Watch the directory too so atomic writes (rename) are caught
	dir := filepath.Dir(file)
	if err := pw.fsWatcher.Add(dir); err != nil {
		if pw.logger != nil {
			pw.logger.Warn("Failed to watch directory for atomic writes",
				"directory", dir, "error", err)
		}
	}

	return nil
}

// updateModTimes records the current modification times for all watched files
func (pw *PromptWatcher) updateModTimes() error {
	for _, file := range pw.watchedFiles {
		if stat, err := os.Stat(file); err == nil {
			pw.lastModTime[file] = stat.ModTime()
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat file %s: %w", file, err)
		}
	}
	return nil
}

// hasFileChanged checks if a file has been modified since the last check
func (pw *PromptWatcher) hasFileChanged(file string) bool {
	stat, err := os.Stat(file)
	if err != nil {
		if os.IsNotExist(err) {
			if _, exists := pw.lastModTime[file]; exists {
				delete(pw.lastModTime, file)
				return true
			}
		}
		return false
	}

	lastMod, exists := pw.lastModTime[file]
	if !exists || stat.ModTime().After(lastMod) {
		pw.lastModTime[file] = stat.ModTime()
		return true
	}

	return false
}

// watchLoop is the main event loop for file watching
func (pw *PromptWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-pw.fsWatcher.Events:
			if !ok {
				return
			}
			if pw.shouldProcessEvent(event) {
				pw.scheduleReload()
			}

		case err, ok := <-pw.fsWatcher.Errors:
			if !ok {
				return
			}
			if pw.logger != nil {
				pw.logger.LogError(err, "Prompt file watcher error")
			}

		case <-pw.reloadChan:
			// Debounced reload trigger
			if pw.hasAnyFileChanged() {
				pw.reloadPrompts()
			}

		case <-pw.stopChan:
			return
		}
	}
}

// shouldProcessEvent determines if a file system event concerns a watched file
func (pw *PromptWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	isWatchedFile := slices.ContainsFunc(pw.watchedFiles, func(file string) bool {
		return event.Name == file || filepath.Base(event.Name) == filepath.Base(file)
	})
	if !isWatchedFile {
		return false
	}

	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// hasAnyFileChanged checks if any of the watched files have changed
func (pw *PromptWatcher) hasAnyFileChanged() bool {
	return slices.ContainsFunc(pw.watchedFiles, pw.hasFileChanged)
}

// scheduleReload schedules a debounced reload
func (pw *PromptWatcher) scheduleReload() {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if pw.debounceTimer != nil {
		pw.debounceTimer.Stop()
	}

	pw.debounceTimer = time.AfterFunc(pw.debounceDelay, func() {
		select {
		case pw.reloadChan <- struct{}{}:
		default:
			// Reload already scheduled
		}
	})
}

// reloadPrompts re-reads the prompt files into the loaded prompt store.
// A failed reload keeps the previously loaded content.
func (pw *PromptWatcher) reloadPrompts() {
	if pw.logger != nil {
		pw.logger.Info("Prompt files changed, reloading")
	}

	if err := pw.config.loadPromptsFromFiles(); err != nil {
		if pw.logger != nil {
			pw.logger.LogError(err, "Failed to reload prompt files, keeping previous prompts")
		}
		return
	}

	if pw.logger != nil {
		pw.logger.Info("Prompt files reloaded")
	}
}
