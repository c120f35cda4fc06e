package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is used when llm.gemini.model_name is empty.
const DefaultGeminiModel = "gemini-2.5-flash"

// contentGenerator is the part of *genai.GenerativeModel the client uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiClient implements the llm.Client interface for Google's Gemini API.
type GeminiClient struct {
	client    *genai.Client
	model     contentGenerator
	modelName string
}

// NewGeminiClient connects to the Gemini API with apiKey. Extra opts are passed to the SDK
// after the key (an endpoint override, for instance).
func NewGeminiClient(ctx context.Context, apiKey, modelName string, opts ...option.ClientOption) (*GeminiClient, error) {
	if KeyMissing(apiKey) {
		return nil, ErrAPIKeyMissing
	}
	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	return &GeminiClient{
		client:    client,
		model:     client.GenerativeModel(modelName),
		modelName: modelName,
	}, nil
}

func newGeminiClientWithModel(model contentGenerator, modelName string) *GeminiClient {
	return &GeminiClient{model: model, modelName: modelName}
}

// Name implements llm.Client.
func (g *GeminiClient) Name() string { return ProviderGemini }

// Close releases the underlying connection.
func (g *GeminiClient) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// GenerateStudyPlan implements the llm.Client interface for Gemini.
func (g *GeminiClient) GenerateStudyPlan(ctx context.Context, prompt string) (string, error) {
	if g.model == nil {
		return "", ErrLLMClientNil
	}
	if prompt == "" {
		return "", ErrLLMPromptEmpty
	}

	log.Debug().Str("model", g.modelName).Msg("Sending request to Gemini API")
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		log.Error().Err(err).Msg("Gemini API call failed")
		return "", fmt.Errorf("%w: %w", ErrLLMCompletion, err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		log.Error().Msg("Received an empty response (no candidates) from Gemini")
		return "", ErrLLMEmptyResponse
	}
	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			log.Warn().Int("candidate", i).Str("finish_reason", cand.FinishReason.String()).Msg("Gemini stopped early")
		}
	}
	return extractText(resp), nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text.WriteString(string(t))
			}
		}
		// Only the first candidate with content is used.
		if text.Len() > 0 {
			break
		}
	}
	return text.String()
}
