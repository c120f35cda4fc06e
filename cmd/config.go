package cmd

import (
	"github.com/spf13/cobra"
)

// newConfigCmd creates the config command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CarePlan configuration",
		Long: `Provides commands to initialize, show, locate and manage CarePlan configuration files.
This command itself does not perform any action but serves as a parent for subcommands.`,
	}
	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigLocateCmd())
	configCmd.AddCommand(newConfigSetKeyCmd())
	return configCmd
}
