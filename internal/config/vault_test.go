package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test parseVersionValue function
func TestParseVersionValue(t *testing.T) {
	tests := []struct {
		name        string
		input       any
		path        string
		expected    int64
		expectError bool
	}{
		{
			name:     "int64 value",
			input:    int64(42),
			path:     "test/path",
			expected: 42,
		},
		{
			name:     "float64 value",
			input:    float64(42.0),
			path:     "test/path",
			expected: 42,
		},
		{
			name:     "string value",
			input:    "42",
			path:     "test/path",
			expected: 42,
		},
		{
			name:        "invalid string value",
			input:       "not-a-number",
			path:        "test/path",
			expectError: true,
		},
		{
			name:        "unsupported type",
			input:       []string{"42"},
			path:        "test/path",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseVersionValue(tt.input, tt.path)

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

// Test applyGeminiKeyToConfig function
func TestApplyGeminiKeyToConfig(t *testing.T) {
	config := &Config{
		AI: AIConfig{
			Score:      OperationAIConfig{},
			Regenerate: OperationAIConfig{},
		},
	}

	geminiKey := "test-gemini-key"
	applyGeminiKeyToConfig(config, geminiKey)

	assert.Equal(t, geminiKey, config.AI.APIKey)
	assert.Equal(t, geminiKey, config.AI.Score.APIKey)
	assert.Equal(t, geminiKey, config.AI.Regenerate.APIKey)
}

func TestApplyGeminiKeyToConfigWithExistingKeys(t *testing.T) {
	existingScoreKey := "existing-score-key"
	config := &Config{
		AI: AIConfig{
			Score:      OperationAIConfig{APIKey: existingScoreKey},
			Regenerate: OperationAIConfig{},
		},
	}

	geminiKey := "test-gemini-key"
	applyGeminiKeyToConfig(config, geminiKey)

	assert.Equal(t, geminiKey, config.AI.APIKey)
	assert.Equal(t, existingScoreKey, config.AI.Score.APIKey) // Should not overwrite existing
	assert.Equal(t, geminiKey, config.AI.Regenerate.APIKey)
}

// Test resolveVaultToken function
func TestResolveVaultToken(t *testing.T) {
	t.Run("token from config", func(t *testing.T) {
		token, err := resolveVaultToken(VaultConfig{Token: "direct-token"})
		assert.NoError(t, err)
		assert.Equal(t, "direct-token", token)
	})

	t.Run("token from file", func(t *testing.T) {
		tokenFile := filepath.Join(t.TempDir(), "token")
		err := os.WriteFile(tokenFile, []byte("file-token\n"), 0600)
		assert.NoError(t, err)

		token, err := resolveVaultToken(VaultConfig{TokenFile: tokenFile})
		assert.NoError(t, err)
		assert.Equal(t, "file-token", token)
	})

	t.Run("config token takes precedence over file", func(t *testing.T) {
		tokenFile := filepath.Join(t.TempDir(), "token")
		err := os.WriteFile(tokenFile, []byte("file-token"), 0600)
		assert.NoError(t, err)

		token, err := resolveVaultToken(VaultConfig{Token: "direct-token", TokenFile: tokenFile})
		assert.NoError(t, err)
		assert.Equal(t, "direct-token", token)
	})

	t.Run("missing token file", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{TokenFile: "/nonexistent/token"})
		assert.Error(t, err)
	})

	t.Run("no token at all", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "vault token is required")
	})
}

// Test loadSingleCertificate function
func TestLoadSingleCertificate(t *testing.T) {
	tests := []struct {
		name          string
		tlsData       *VaultSecret
		key           string
		expectedCount int
		expectedValue string
	}{
		{
			name: "certificate present",
			tlsData: &VaultSecret{
				Data: map[string]any{"cert": "cert-content"},
			},
			key:           "cert",
			expectedCount: 1,
			expectedValue: "cert-content",
		},
		{
			name: "certificate missing",
			tlsData: &VaultSecret{
				Data: map[string]any{},
			},
			key:           "cert",
			expectedCount: 0,
			expectedValue: "",
		},
		{
			name: "empty certificate ignored",
			tlsData: &VaultSecret{
				Data: map[string]any{"key": ""},
			},
			key:           "key",
			expectedCount: 0,
			expectedValue: "",
		},
		{
			name: "non-string value ignored",
			tlsData: &VaultSecret{
				Data: map[string]any{"ca": 42},
			},
			key:           "ca",
			expectedCount: 0,
			expectedValue: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var target string
			count := loadSingleCertificate(tt.tlsData, tt.key, &target)

			assert.Equal(t, tt.expectedCount, count)
			assert.Equal(t, tt.expectedValue, target)
		})
	}
}

// Test ApplyVaultSecrets with Vault disabled
func TestApplyVaultSecretsDisabled(t *testing.T) {
	config := &Config{
		Vault: VaultConfig{Enabled: false},
	}

	err := ApplyVaultSecrets(config, nil)
	assert.NoError(t, err)
	assert.Empty(t, config.Server.APIKeys)
	assert.Empty(t, config.AI.APIKey)
}
