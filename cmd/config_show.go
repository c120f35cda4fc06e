package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/karolswdev/careplan/internal/config"
	"github.com/karolswdev/careplan/internal/llm"
)

// API key states reported by config show.
const (
	apiKeySet     = "Set (use 'careplan config set-key' to change)"
	apiKeyNotSet  = "Not Set (use 'careplan config set-key' to set)"
	apiKeyUnknown = "Status Unknown (error checking keychain/env: %v)"
)

// configView is the structured form of config show.
type configView struct {
	config.AppConfig `yaml:",inline"`
	APIKey           string `json:"api_key" yaml:"api_key"`
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current CarePlan configuration",
		Long: `Displays the currently loaded configuration values from config.yaml,
.env files and CAREPLAN_* environment variables. The API key itself is never printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			return configShowRunE(&DefaultConfigProvider{}, &defaultKeyringClient{}, cmd.OutOrStdout(), format)
		},
	}
}

// configShowRunE contains the core logic for the 'config show' command.
func configShowRunE(cfgProvider ConfigProvider, keyringClient KeyringClient, writer io.Writer, format string) error {
	cfg, err := cfgProvider.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	apiKeyStatus := apiKeySet
	if _, err := keyringClient.GetAPIKey(config.KeyringService, config.KeyringUser); err != nil {
		if errors.Is(err, config.ErrAPIKeyNotFound) {
			apiKeyStatus = apiKeyNotSet
		} else {
			apiKeyStatus = fmt.Sprintf(apiKeyUnknown, err)
		}
	}

	switch format {
	case outputJSON:
		data, err := json.MarshalIndent(configView{AppConfig: *cfg, APIKey: apiKeyStatus}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format configuration as JSON: %w", err)
		}
		fmt.Fprintln(writer, string(data))
		return nil
	case outputYAML:
		data, err := yaml.Marshal(configView{AppConfig: *cfg, APIKey: apiKeyStatus})
		if err != nil {
			return fmt.Errorf("failed to format configuration as YAML: %w", err)
		}
		fmt.Fprint(writer, string(data))
		return nil
	}

	fmt.Fprintln(writer, "Current CarePlan Configuration:")
	fmt.Fprintf(writer, "  LLM Provider:   %s\n", cfg.LLM.Provider)
	switch cfg.LLM.Provider {
	case llm.ProviderGemini:
		fmt.Fprintf(writer, "    Gemini Model: %s\n", cfg.LLM.Gemini.ModelName)
	case llm.ProviderOpenAI:
		fmt.Fprintf(writer, "    OpenAI Model: %s\n", cfg.LLM.OpenAI.ModelName)
		if cfg.LLM.OpenAI.BaseURL != "" {
			fmt.Fprintf(writer, "    OpenAI BaseURL: %s\n", cfg.LLM.OpenAI.BaseURL)
		}
	case llm.ProviderAnthropic:
		fmt.Fprintf(writer, "    Anthropic Model: %s\n", cfg.LLM.Anthropic.ModelName)
		fmt.Fprintf(writer, "    Anthropic Max Tokens: %d\n", cfg.LLM.Anthropic.MaxTokens)
		if cfg.LLM.Anthropic.BaseURL != "" {
			fmt.Fprintf(writer, "    Anthropic BaseURL: %s\n", cfg.LLM.Anthropic.BaseURL)
		}
	default:
		fmt.Fprintf(writer, "    (No specific settings shown for provider '%s')\n", cfg.LLM.Provider)
	}
	fmt.Fprintf(writer, "  Server Address: %s\n", cfg.Server.Address)
	fmt.Fprintf(writer, "    Max In-flight Plans: %d\n", cfg.Server.MaxInflight)
	fmt.Fprintf(writer, "    Show Error Details: %t\n", cfg.Server.ShowErrorDetails)
	fmt.Fprintf(writer, "  Plan Defaults:  %d hours/day, %s confidence\n", cfg.Plan.DailyHours, cfg.Plan.Confidence)
	fmt.Fprintf(writer, "  LLM API Key:    %s\n", apiKeyStatus)

	return nil
}
