package cmd

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// version is set during build time (e.g., via ldflags)
// Default is "dev" for local development.
var version = "dev"

// Log is the globally configured zerolog logger instance used throughout the cmd package.
// It's reconfigured in the root command's PersistentPreRunE based on the --log-level flag.
var Log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

// Output formats accepted by the persistent --output flag.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

var outputFormats = []string{outputText, outputJSON, outputYAML}

// configureLogger sets up the global zerolog logger based on the logLevel flag.
func configureLogger(levelStr string) error {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	level, err := zerolog.ParseLevel(strings.ToLower(levelStr))
	if err != nil {
		log.Warn().Msgf("Invalid log level '%s', defaulting to 'info'", levelStr)
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	Log = log.Logger.With().Timestamp().Logger()

	Log.Debug().Msgf("Log level set to '%s'", level.String())
	return nil
}

// outputFormat returns the validated value of the persistent --output flag.
func outputFormat(cmd *cobra.Command) (string, error) {
	format, _ := cmd.Flags().GetString("output")
	format = strings.ToLower(format)
	if !slices.Contains(outputFormats, format) {
		return "", fmt.Errorf("unsupported output format %q (expected one of %s)", format, strings.Join(outputFormats, ", "))
	}
	return format, nil
}

// Execute is the main entry point for the Cobra CLI application. It is typically
// called directly from main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		Log.Error().Err(err).Msg("Command execution failed")
		os.Exit(1)
	}
}

// NewRootCmd creates the root command with every subcommand attached. Each call
// builds a fresh command tree with its own flag state, so tests and embedders can
// execute it repeatedly.
func NewRootCmd() *cobra.Command {
	var logLevel string
	rootCmd := &cobra.Command{
		Use:   "careplan",
		Short: "CarePlan - exam study plans for the chapters you choose",
		Long: `CarePlan (careplan) builds a day-by-day study plan for an upcoming exam.
Pick the chapters you still need to cover, the exam date, your daily study
hours and how confident you feel, and an LLM drafts the plan. Plans can be
generated from the terminal or through the bundled web interface.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return configureLogger(logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Set log level (debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringP("output", "o", outputText, "Output format for listings (text|json|yaml)")

	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSyllabusCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newContextCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// newCompletionCmd creates the completion command.
func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `To load completions:

Bash:
  $ source <(careplan completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ careplan completion bash > /etc/bash_completion.d/careplan
  # macOS:
  $ careplan completion bash > /usr/local/etc/bash_completion.d/careplan

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ careplan completion zsh > "${fpath[1]}/_careplan"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ careplan completion fish | source

  # To load completions for each session, execute once:
  $ careplan completion fish > ~/.config/fish/completions/careplan.fish

PowerShell:
  PS> careplan completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> careplan completion powershell > careplan.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletion(out)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell type %q", args[0])
			}
		},
	}
}
