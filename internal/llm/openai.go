package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient implements the llm.Client interface for the OpenAI API
// and OpenAI-compatible endpoints.
type OpenAIClient struct {
	client    *openai.Client
	modelName string
}

// NewOpenAIClient creates a new OpenAI client wrapper.
// It requires a configured go-openai client and the model name to use.
func NewOpenAIClient(client *openai.Client, modelName string) (*OpenAIClient, error) {
	if client == nil {
		return nil, ErrLLMClientNil
	}
	if modelName == "" {
		log.Warn().Msg("modelName is empty for OpenAIClient, defaulting to gpt-4o")
		modelName = openai.GPT4o
	}
	return &OpenAIClient{
		client:    client,
		modelName: modelName,
	}, nil
}

// Name implements llm.Client.
func (o *OpenAIClient) Name() string { return ProviderOpenAI }

// GenerateStudyPlan implements the llm.Client interface for OpenAI.
func (o *OpenAIClient) GenerateStudyPlan(ctx context.Context, prompt string) (string, error) {
	if o.client == nil {
		return "", ErrLLMClientNil
	}
	if prompt == "" {
		return "", ErrLLMPromptEmpty
	}

	log.Debug().Str("model", o.modelName).Msg("Preparing OpenAI chat completion request")
	req := openai.ChatCompletionRequest{
		Model: o.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("OpenAI API call failed")
		return "", fmt.Errorf("%w: %w", ErrLLMCompletion, err)
	}
	log.Debug().Str("id", resp.ID).Int("total_tokens", resp.Usage.TotalTokens).Msg("Received response from OpenAI API")

	if len(resp.Choices) == 0 {
		log.Error().Msg("Received an empty response (no choices) from OpenAI")
		return "", ErrLLMEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
