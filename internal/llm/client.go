package llm

import (
	"context"
	"strings"
)

// Provider names accepted in llm.provider.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

// Providers lists every supported provider name.
var Providers = []string{ProviderGemini, ProviderOpenAI, ProviderAnthropic, ProviderMock}

// Client defines the interface for interacting with different LLM providers.
type Client interface {
	// GenerateStudyPlan sends prompt to the model once and returns its text answer.
	// An answer with no text is not an error; callers decide what to show instead.
	GenerateStudyPlan(ctx context.Context, prompt string) (string, error)
	// Name is the provider name, as used in llm.provider.
	Name() string
}

// KeyMissing reports whether key is blank or the literal "undefined".
func KeyMissing(key string) bool {
	k := strings.TrimSpace(key)
	return k == "" || k == "undefined"
}
