package ai

import (
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"resumeforge/internal/config"
	"resumeforge/internal/errors"
	"resumeforge/internal/types"

	"google.golang.org/api/googleapi"
)

// timeoutError implements net.Error for retry classification tests
type timeoutError struct{}

func (timeoutError) Error() string   { return "dial tcp: i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func testProvider(t *testing.T) *GeminiProvider {
	t.Helper()
	timeout := 60 * time.Second
	maxRetries := 3
	temperature := float32(0.2)
	useSystemPrompts := true
	return &GeminiProvider{
		config: &config.OperationAIConfig{
			Provider:         "gemini",
			Model:            "gemini-2.0-flash",
			Timeout:          &timeout,
			MaxRetries:       &maxRetries,
			Temperature:      &temperature,
			UseSystemPrompts: &useSystemPrompts,
		},
		tiers: config.ModelTiersConfig{
			High: "gemini-2.5-pro",
			Low:  "gemini-2.0-flash",
		},
		logger: errors.NewLogger(slog.LevelError + 4),
	}
}

func TestIsRetryableError(t *testing.T) {
	g := testProvider(t)

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"network timeout", timeoutError{}, true},
		{"rate limited", &googleapi.Error{Code: 429}, true},
		{"internal server error", &googleapi.Error{Code: 500}, true},
		{"bad gateway", &googleapi.Error{Code: 502}, true},
		{"service unavailable", &googleapi.Error{Code: 503}, true},
		{"gateway timeout", &googleapi.Error{Code: 504}, true},
		{"bad request", &googleapi.Error{Code: 400}, false},
		{"unauthorized", &googleapi.Error{Code: 401}, false},
		{"not found", &googleapi.Error{Code: 404}, false},
		{"plain error", fmt.Errorf("something broke"), false},
		{"wrapped api error", fmt.Errorf("call failed: %w", &googleapi.Error{Code: 503}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.isRetryableError(tt.err); got != tt.want {
				t.Errorf("isRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClampScoreResult(t *testing.T) {
	result := clampScoreResult(types.ScoreResult{
		Score: 140,
		Breakdown: types.ScoreBreakdown{
			KeywordMatch:        25,
			ExperienceRelevance: -3,
			FormatCompatibility: 20,
			SectionCompleteness: 100,
			ClarityUniqueness:   14,
		},
	})

	if result.Score != 100 {
		t.Errorf("Score = %d, want 100", result.Score)
	}
	if result.Breakdown.KeywordMatch != 20 {
		t.Errorf("KeywordMatch = %d, want 20", result.Breakdown.KeywordMatch)
	}
	if result.Breakdown.ExperienceRelevance != 0 {
		t.Errorf("ExperienceRelevance = %d, want 0", result.Breakdown.ExperienceRelevance)
	}
	if result.Breakdown.SectionCompleteness != 20 {
		t.Errorf("SectionCompleteness = %d, want 20", result.Breakdown.SectionCompleteness)
	}
	if result.Breakdown.ClarityUniqueness != 14 {
		t.Errorf("ClarityUniqueness = %d, want 14", result.Breakdown.ClarityUniqueness)
	}
}

func TestSelectProfileEntry(t *testing.T) {
	g := testProvider(t)
	profile := types.UserProfile{
		WorkHistory: []types.WorkHistoryEntry{
			{Title: "Staff Engineer", Company: "Acme"},
			{Title: "Senior Engineer", Company: "Initech"},
		},
		Projects: []types.WorkHistoryEntry{
			{Title: "Open Source Metrics Agent"},
		},
	}

	t.Run("experience in range", func(t *testing.T) {
		entry := g.selectProfileEntry(types.SectionExperience, profile, 1)
		if entry == nil || entry.Company != "Initech" {
			t.Errorf("entry = %v, want Initech entry", entry)
		}
	})

	t.Run("experience out of range uses fallback", func(t *testing.T) {
		entry := g.selectProfileEntry(types.SectionExperience, profile, 7)
		if entry == nil {
			t.Fatal("expected fallback entry, got nil")
		}
		if entry.Company != DefaultWorkHistoryFallback[0].Company {
			t.Errorf("fallback company = %q, want %q", entry.Company, DefaultWorkHistoryFallback[0].Company)
		}
	})

	t.Run("empty work history uses fallback", func(t *testing.T) {
		entry := g.selectProfileEntry(types.SectionExperience, types.UserProfile{}, 0)
		if entry == nil {
			t.Fatal("expected fallback entry, got nil")
		}
		if entry.Title != DefaultWorkHistoryFallback[0].Title {
			t.Errorf("fallback title = %q, want %q", entry.Title, DefaultWorkHistoryFallback[0].Title)
		}
	})

	t.Run("project in range", func(t *testing.T) {
		entry := g.selectProfileEntry(types.SectionProjects, profile, 0)
		if entry == nil || entry.Title != "Open Source Metrics Agent" {
			t.Errorf("entry = %v, want project entry", entry)
		}
	})

	t.Run("project out of range", func(t *testing.T) {
		if entry := g.selectProfileEntry(types.SectionProjects, profile, 3); entry != nil {
			t.Errorf("entry = %v, want nil", entry)
		}
	})

	t.Run("summary needs no entry", func(t *testing.T) {
		if entry := g.selectProfileEntry(types.SectionSummary, profile, 0); entry != nil {
			t.Errorf("entry = %v, want nil", entry)
		}
	})
}

func TestModelForTier(t *testing.T) {
	g := testProvider(t)

	tests := []struct {
		tier types.ModelTier
		want string
	}{
		{types.TierHigh, "gemini-2.5-pro"},
		{types.TierLow, "gemini-2.0-flash"},
		{types.ModelTier(""), "gemini-2.0-flash"},
		{types.ModelTier("unknown"), "gemini-2.0-flash"},
	}

	for _, tt := range tests {
		if got := g.modelForTier(tt.tier); got != tt.want {
			t.Errorf("modelForTier(%q) = %q, want %q", tt.tier, got, tt.want)
		}
	}

	t.Run("empty tier mapping falls back to operation model", func(t *testing.T) {
		g := testProvider(t)
		g.tiers = config.ModelTiersConfig{}
		if got := g.modelForTier(types.TierHigh); got != "gemini-2.0-flash" {
			t.Errorf("modelForTier(high) = %q, want operation model", got)
		}
	})
}

func TestResolvePrompt(t *testing.T) {
	tests := []struct {
		name           string
		loadedFromFile string
		fromConfig     string
		fromDefault    string
		expected       string
	}{
		{"file takes priority", "file prompt", "config prompt", "default prompt", "file prompt"},
		{"config when no file", "", "config prompt", "default prompt", "config prompt"},
		{"default when nothing else", "", "", "default prompt", "default prompt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolvePrompt(tt.loadedFromFile, tt.fromConfig, tt.fromDefault); got != tt.expected {
				t.Errorf("resolvePrompt() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestZeroScoreResult(t *testing.T) {
	result := ZeroScoreResult(fmt.Errorf("circuit breaker is open"))
	if result.Score != 0 {
		t.Errorf("Score = %d, want 0", result.Score)
	}
	if len(result.Feedback) == 0 {
		t.Fatal("expected explanatory feedback")
	}
	if want := "circuit breaker is open"; !strings.Contains(result.Feedback[0], want) {
		t.Errorf("feedback %v should mention %q", result.Feedback, want)
	}
}
