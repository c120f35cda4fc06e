package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/karolswdev/careplan/internal/config"
)

func newConfigSetKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-key [api-key]",
		Short: "Stores the LLM API key securely in the OS keychain",
		Long: `Stores the LLM provider's API key in the operating system's keychain or keyring.
This is the recommended way to configure the API key for CarePlan.
The key will be associated with the service 'careplan' and user 'llm_api_key'.
The CAREPLAN_LLM_API_KEY and API_KEY environment variables are used when no key is stored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return configSetKeyRun(&defaultKeyringClient{}, cmd.OutOrStdout(), args[0])
		},
	}
}

// configSetKeyRun contains the core logic for the set-key command.
func configSetKeyRun(kc KeyringClient, writer io.Writer, apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return errors.New("API key cannot be empty")
	}

	log.Info().Msgf("Attempting to store API key in keychain for service '%s'...", config.KeyringService)

	if err := kc.Set(config.KeyringService, config.KeyringUser, apiKey); err != nil {
		log.Error().Err(err).Msg("Failed to store API key in keychain")
		return fmt.Errorf("failed to store API key in keychain: %w", err)
	}

	log.Info().Msg("API key stored successfully in keychain.")
	fmt.Fprintln(writer, "API key stored successfully.")
	return nil
}
