package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/karolswdev/careplan/internal/config"
)

func testAppConfig(provider string) *config.AppConfig {
	return &config.AppConfig{
		LLM: config.LLMConfig{
			Provider:  provider,
			Gemini:    config.GeminiConfig{ModelName: "gemini-test"},
			OpenAI:    config.OpenAIConfig{ModelName: "gpt-test", BaseURL: "http://localhost:9999/v1"},
			Anthropic: config.AnthropicConfig{ModelName: "claude-test", MaxTokens: 2048},
		},
		Server: config.ServerConfig{Address: ":9090", MaxInflight: 2},
		Plan:   config.PlanDefaults{DailyHours: 5, Confidence: "high"},
	}
}

func TestConfigShowCmd_Success(t *testing.T) {
	mockProvider := new(MockConfigProvider)
	mockKeyring := new(MockKeyringClient)
	var out bytes.Buffer

	mockProvider.On("LoadConfig").Return(testAppConfig("openai"), nil)
	mockKeyring.On("GetAPIKey", config.KeyringService, config.KeyringUser).Return("test-key-****-end", nil)

	err := configShowRunE(mockProvider, mockKeyring, &out, outputText)

	assert.NoError(t, err)
	assert.Contains(t, out.String(), "Current CarePlan Configuration:")
	assert.Contains(t, out.String(), "  LLM Provider:   openai")
	assert.Contains(t, out.String(), "    OpenAI Model: gpt-test")
	assert.Contains(t, out.String(), "    OpenAI BaseURL: http://localhost:9999/v1")
	assert.Contains(t, out.String(), "  Server Address: :9090")
	assert.Contains(t, out.String(), "  Plan Defaults:  5 hours/day, high confidence")
	assert.Contains(t, out.String(), "  LLM API Key:    "+apiKeySet)
	assert.NotContains(t, out.String(), "test-key-****-end")
	mockProvider.AssertExpectations(t)
	mockKeyring.AssertExpectations(t)
}

func TestConfigShowCmd_ProviderSettings(t *testing.T) {
	tests := []struct {
		provider string
		want     string
	}{
		{"gemini", "    Gemini Model: gemini-test"},
		{"anthropic", "    Anthropic Max Tokens: 2048"},
		{"mock", "    (No specific settings shown for provider 'mock')"},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			mockProvider := new(MockConfigProvider)
			mockKeyring := new(MockKeyringClient)
			var out bytes.Buffer
			mockProvider.On("LoadConfig").Return(testAppConfig(tt.provider), nil)
			mockKeyring.On("GetAPIKey", mock.Anything, mock.Anything).Return("k", nil)

			require.NoError(t, configShowRunE(mockProvider, mockKeyring, &out, outputText))
			assert.Contains(t, out.String(), tt.want)
		})
	}
}

func TestConfigShowCmd_ConfigLoadError(t *testing.T) {
	mockProvider := new(MockConfigProvider)
	mockKeyring := new(MockKeyringClient)
	var out bytes.Buffer

	expectedErr := errors.New("failed to read config file")
	mockProvider.On("LoadConfig").Return((*config.AppConfig)(nil), expectedErr)

	err := configShowRunE(mockProvider, mockKeyring, &out, outputText)

	assert.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.Contains(t, err.Error(), "error loading configuration:")
	assert.Empty(t, out.String())
	mockKeyring.AssertNotCalled(t, "GetAPIKey", mock.Anything, mock.Anything)
}

func TestConfigShowCmd_KeyringGetError_NotFound(t *testing.T) {
	mockProvider := new(MockConfigProvider)
	mockKeyring := new(MockKeyringClient)
	var out bytes.Buffer

	mockProvider.On("LoadConfig").Return(testAppConfig("gemini"), nil)
	mockKeyring.On("GetAPIKey", config.KeyringService, config.KeyringUser).Return("", config.ErrAPIKeyNotFound)

	err := configShowRunE(mockProvider, mockKeyring, &out, outputText)

	assert.NoError(t, err)
	assert.Contains(t, out.String(), "  LLM API Key:    "+apiKeyNotSet)
	mockKeyring.AssertExpectations(t)
}

func TestConfigShowCmd_KeyringGetError_Other(t *testing.T) {
	mockProvider := new(MockConfigProvider)
	mockKeyring := new(MockKeyringClient)
	var out bytes.Buffer

	mockProvider.On("LoadConfig").Return(testAppConfig("gemini"), nil)
	mockKeyring.On("GetAPIKey", config.KeyringService, config.KeyringUser).Return("", errors.New("keyring daemon unavailable"))

	err := configShowRunE(mockProvider, mockKeyring, &out, outputText)

	assert.NoError(t, err)
	assert.Contains(t, out.String(), "  LLM API Key:    Status Unknown (error checking keychain/env: keyring daemon unavailable)")
}

func TestConfigShowCmd_Structured(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		mockProvider := new(MockConfigProvider)
		mockKeyring := new(MockKeyringClient)
		var out bytes.Buffer
		mockProvider.On("LoadConfig").Return(testAppConfig("anthropic"), nil)
		mockKeyring.On("GetAPIKey", mock.Anything, mock.Anything).Return("", config.ErrAPIKeyNotFound)

		require.NoError(t, configShowRunE(mockProvider, mockKeyring, &out, outputJSON))

		var got map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
		assert.Equal(t, apiKeyNotSet, got["api_key"])
		llmSection, ok := got["llm"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "anthropic", llmSection["provider"])
	})

	t.Run("YAML", func(t *testing.T) {
		mockProvider := new(MockConfigProvider)
		mockKeyring := new(MockKeyringClient)
		var out bytes.Buffer
		mockProvider.On("LoadConfig").Return(testAppConfig("gemini"), nil)
		mockKeyring.On("GetAPIKey", mock.Anything, mock.Anything).Return("k", nil)

		require.NoError(t, configShowRunE(mockProvider, mockKeyring, &out, outputYAML))

		var got struct {
			Server config.ServerConfig `yaml:"server"`
			APIKey string              `yaml:"api_key"`
		}
		require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
		assert.Equal(t, ":9090", got.Server.Address)
		assert.Equal(t, apiKeySet, got.APIKey)
	})
}
