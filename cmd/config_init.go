package cmd

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize CarePlan configuration",
		Long: `Creates the configuration directory and the default config.yaml,
system_prompt.txt, context.md and syllabus.yaml files if they don't exist.
Existing files are left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return configInitRunE(&DefaultConfigProvider{}, cmd.OutOrStdout())
		},
	}
}

// configInitRunE contains the core logic for the config init command.
func configInitRunE(configProvider ConfigProvider, writer io.Writer) error {
	log.Info().Msg("Initializing configuration...")
	configDir, err := configProvider.EnsureConfigDir()
	if err != nil {
		log.Error().Err(err).Msg("Failed to ensure configuration directory")
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}
	if err := configProvider.CreateDefaultConfigFiles(configDir); err != nil {
		log.Error().Err(err).Msg("Failed to initialize configuration files")
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}
	log.Info().Str("path", configDir).Msg("Configuration initialization complete.")
	fmt.Fprintf(writer, "Configuration directory and default files ensured: %s\n", configDir)
	fmt.Fprintln(writer, "Next, store your API key with 'careplan config set-key <key>'.")
	return nil
}
