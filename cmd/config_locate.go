package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/karolswdev/careplan/internal/config"
)

// configLocateRunE contains the core logic for the config locate command.
func configLocateRunE(cfgProvider ConfigProvider, out io.Writer) error {
	configDir, err := cfgProvider.EnsureConfigDir()
	if err != nil {
		return fmt.Errorf("error ensuring config directory: %w", err)
	}

	fmt.Fprintf(out, "Configuration directory: %s\n", configDir)
	fmt.Fprintln(out, "Expected configuration files:")
	for _, name := range config.DefaultFiles() {
		fmt.Fprintf(out, "- %s\n", filepath.Join(configDir, name))
	}
	fmt.Fprintf(out, "Optional environment file: %s\n", filepath.Join(configDir, config.DefaultDotEnvFileName))
	return nil
}

func newConfigLocateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "locate",
		Short: "Locate CarePlan configuration files",
		Long: `Displays the paths to the configuration files being used by CarePlan.
This command helps you find where CarePlan is looking for its settings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return configLocateRunE(&DefaultConfigProvider{}, cmd.OutOrStdout())
		},
	}
}
