package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog/log"
)

// Defaults for the Anthropic client.
const (
	DefaultAnthropicModel     = "claude-sonnet-4-20250514"
	DefaultAnthropicMaxTokens = 8192
)

// anthropicSystemPrompt is sent as the system block; the full instructions travel in the user turn.
const anthropicSystemPrompt = "Follow the requested output format exactly."

// AnthropicClient implements the llm.Client interface for the Anthropic Messages API.
type AnthropicClient struct {
	client    anthropic.Client
	model     string
	maxTokens int
}

// NewAnthropicClient creates an Anthropic client. baseURL is optional. The SDK's automatic
// retries are turned off so a submission makes exactly one call.
func NewAnthropicClient(apiKey, model, baseURL string, maxTokens int) (*AnthropicClient, error) {
	if KeyMissing(apiKey) {
		return nil, ErrAPIKeyMissing
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = DefaultAnthropicModel
	}
	if maxTokens <= 0 {
		maxTokens = DefaultAnthropicMaxTokens
	}
	return &AnthropicClient{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Name implements llm.Client.
func (a *AnthropicClient) Name() string { return ProviderAnthropic }

// GenerateStudyPlan implements the llm.Client interface for Anthropic.
func (a *AnthropicClient) GenerateStudyPlan(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrLLMPromptEmpty
	}

	log.Debug().Str("model", a.model).Int("max_tokens", a.maxTokens).Msg("Sending request to Anthropic API")
	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(a.maxTokens),
		System: []anthropic.TextBlockParam{
			{Text: anthropicSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("Anthropic API call failed")
		return "", fmt.Errorf("%w: %w", ErrLLMCompletion, err)
	}
	if len(resp.Content) == 0 {
		log.Error().Msg("Received an empty response (no content blocks) from Anthropic")
		return "", ErrLLMEmptyResponse
	}

	var output strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			output.WriteString(block.Text)
		}
	}
	return output.String(), nil
}
