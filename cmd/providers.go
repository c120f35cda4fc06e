package cmd

import (
	"context"
	"fmt"
	"io"
	"slices"

	openai "github.com/sashabaranov/go-openai"
	keyring "github.com/zalando/go-keyring"

	"github.com/karolswdev/careplan/internal/config"
	"github.com/karolswdev/careplan/internal/llm"
	"github.com/karolswdev/careplan/internal/plan"
	"github.com/karolswdev/careplan/internal/syllabus"
)

// --- Concrete Implementations of Shared Interfaces ---

// DefaultConfigProvider implements the ConfigProvider interface using the config package.
// BaseDir overrides the configuration directory; empty means the default location.
type DefaultConfigProvider struct {
	BaseDir string
}

func (p *DefaultConfigProvider) LoadConfig() (*config.AppConfig, error) {
	return config.LoadConfig(p.BaseDir)
}

func (p *DefaultConfigProvider) LoadSystemPrompt() (string, error) {
	return config.LoadSystemPrompt(p.BaseDir)
}

func (p *DefaultConfigProvider) LoadContext() (string, error) {
	return config.LoadContext(p.BaseDir)
}

func (p *DefaultConfigProvider) LoadSyllabus() (*syllabus.Catalog, error) {
	return config.LoadSyllabus(p.BaseDir)
}

func (p *DefaultConfigProvider) GetAPIKey() (string, error) {
	return config.GetAPIKey()
}

// CreateDefaultConfigFiles writes the default files into configDir, or into BaseDir
// when configDir is empty.
func (p *DefaultConfigProvider) CreateDefaultConfigFiles(configDir string) error {
	if configDir == "" {
		configDir = p.BaseDir
	}
	return config.CreateDefaultConfigFiles(configDir, plan.DefaultSystemPrompt)
}

func (p *DefaultConfigProvider) EnsureConfigDir() (string, error) {
	return config.EnsureConfigDir(p.BaseDir)
}

// --- Keyring Client Implementation ---

// defaultKeyringClient implements the KeyringClient interface using the keyring package.
type defaultKeyringClient struct{}

func (k *defaultKeyringClient) Set(service, user, password string) error {
	return keyring.Set(service, user, password)
}

// GetAPIKey resolves the key through the same chain generation uses (keychain, then
// environment), so service and user only identify the keychain entry.
func (k *defaultKeyringClient) GetAPIKey(service, user string) (string, error) {
	return config.GetAPIKey()
}

// --- LLM Client Construction ---

// NewLLMClient builds the client for cfg.LLM.Provider. The mock provider needs no key.
func NewLLMClient(ctx context.Context, cfg *config.AppConfig, apiKey string) (llm.Client, error) {
	switch cfg.LLM.Provider {
	case llm.ProviderGemini:
		Log.Debug().Str("provider", llm.ProviderGemini).Str("model", cfg.LLM.Gemini.ModelName).Msg("Initializing Gemini LLM client")
		c, err := llm.NewGeminiClient(ctx, apiKey, cfg.LLM.Gemini.ModelName)
		if err != nil {
			return nil, err
		}
		return c, nil
	case llm.ProviderOpenAI:
		if llm.KeyMissing(apiKey) {
			return nil, llm.ErrAPIKeyMissing
		}
		Log.Debug().Str("provider", llm.ProviderOpenAI).Str("model", cfg.LLM.OpenAI.ModelName).Msg("Initializing OpenAI LLM client")
		openAIConfig := openai.DefaultConfig(apiKey)
		if cfg.LLM.OpenAI.BaseURL != "" {
			openAIConfig.BaseURL = cfg.LLM.OpenAI.BaseURL
			Log.Debug().Str("baseURLUsed", openAIConfig.BaseURL).Msg("Using custom OpenAI BaseURL")
		}
		c, err := llm.NewOpenAIClient(openai.NewClientWithConfig(openAIConfig), cfg.LLM.OpenAI.ModelName)
		if err != nil {
			return nil, err
		}
		return c, nil
	case llm.ProviderAnthropic:
		Log.Debug().Str("provider", llm.ProviderAnthropic).Str("model", cfg.LLM.Anthropic.ModelName).Msg("Initializing Anthropic LLM client")
		c, err := llm.NewAnthropicClient(apiKey, cfg.LLM.Anthropic.ModelName, cfg.LLM.Anthropic.BaseURL, int(cfg.LLM.Anthropic.MaxTokens))
		if err != nil {
			return nil, err
		}
		return c, nil
	case llm.ProviderMock:
		Log.Info().Msg("Using mock LLM provider with the built-in sample plan.")
		return llm.NewSampleClient(), nil
	default:
		return nil, fmt.Errorf("%w: %q (expected one of %v)", llm.ErrUnknownProvider, cfg.LLM.Provider, llm.Providers)
	}
}

// --- Central Provider ---

// clientFactory builds the LLM client for a loaded config.
type clientFactory func(ctx context.Context, cfg *config.AppConfig, apiKey string) (llm.Client, error)

// Provider serves as a central dependency injection container, aggregating the
// services the commands need. LLM is nil when no credential could be found; plan
// generation then reports the missing key instead of failing at startup. When the
// client could not be built for another reason, LLMErr holds the cause and LLM is a
// stand-in that returns it from every generation.
type Provider struct {
	Config ConfigProvider
	LLM    llm.Client
	LLMErr error
}

// Close releases the LLM client's resources when it holds any.
func (p *Provider) Close() error {
	if c, ok := p.LLM.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// unavailableClient stands in for a client whose construction failed.
type unavailableClient struct {
	provider string
	err      error
}

func (u *unavailableClient) Name() string { return u.provider }

func (u *unavailableClient) GenerateStudyPlan(ctx context.Context, prompt string) (string, error) {
	return "", u.err
}

// GetProvider loads the application config and initializes the services for it.
// An unsupported provider name is an error. A missing API key is only logged.
func GetProvider(ctx context.Context) (*Provider, error) {
	return newProvider(ctx, &DefaultConfigProvider{}, NewLLMClient)
}

func newProvider(ctx context.Context, cfgProvider ConfigProvider, build clientFactory) (*Provider, error) {
	appCfg, err := cfgProvider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load application config: %w", err)
	}
	if !slices.Contains(llm.Providers, appCfg.LLM.Provider) {
		return nil, fmt.Errorf("%w: %q (expected one of %v)", llm.ErrUnknownProvider, appCfg.LLM.Provider, llm.Providers)
	}

	var apiKey string
	if appCfg.LLM.Provider != llm.ProviderMock {
		var keyErr error
		apiKey, keyErr = cfgProvider.GetAPIKey()
		if keyErr != nil {
			Log.Warn().Err(keyErr).Msg("Failed to get LLM API key during provider setup. Plan generation will fail until a key is set.")
		}
	}

	p := &Provider{Config: cfgProvider}
	if appCfg.LLM.Provider == llm.ProviderMock || !llm.KeyMissing(apiKey) {
		client, err := build(ctx, appCfg, apiKey)
		if err != nil {
			Log.Warn().Err(err).Str("provider", appCfg.LLM.Provider).Msg("Failed to initialize LLM client. Plan generation will fail.")
			p.LLMErr = fmt.Errorf("%w: %s: %w", llm.ErrLLMClientInit, appCfg.LLM.Provider, err)
			client = &unavailableClient{provider: appCfg.LLM.Provider, err: p.LLMErr}
		}
		p.LLM = client
	}

	Log.Debug().Str("provider", appCfg.LLM.Provider).Bool("llm_ready", p.LLM != nil && p.LLMErr == nil).Msg("Service Provider initialized successfully.")
	return p, nil
}
