package cmd

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/karolswdev/careplan/internal/config"
)

func newContextCmd() *cobra.Command {
	contextCmd := &cobra.Command{
		Use:   "context",
		Short: "Manage the student notes file (~/.careplan/context.md)",
		Long: `Provides subcommands to show, edit, or add entries to the context.md
file. Its contents (minus '#' comment lines) are added to every study plan
prompt, so it is a good place for notes like "I learn best in the morning".`,
	}
	contextCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the notes that are sent with every plan request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return contextShowRunE(&DefaultConfigProvider{}, cmd.OutOrStdout())
		},
	})
	contextCmd.AddCommand(&cobra.Command{
		Use:   "edit",
		Short: "Edit the context file using $EDITOR",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return contextEditRunE(&DefaultConfigProvider{}, resolveEditor(os.Getenv, runtime.GOOS))
		},
	})
	contextCmd.AddCommand(&cobra.Command{
		Use:   "add [entry]",
		Short: "Add a new entry (line) to the context file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return contextAddRunE(&DefaultConfigProvider{}, cmd.OutOrStdout(), args[0])
		},
	})
	return contextCmd
}

func contextShowRunE(cp ConfigProvider, out io.Writer) error {
	log.Debug().Msg("Executing context show command")
	notes, err := cp.LoadContext()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load context file")
		return fmt.Errorf("failed to read context file: %w", err)
	}
	if notes == "" {
		fmt.Fprintln(out, "No notes yet. Add one with 'careplan context add \"...\"'.")
		return nil
	}
	fmt.Fprintln(out, notes)
	return nil
}

// resolveEditor picks $EDITOR, falling back to a default for the OS.
func resolveEditor(getenv func(string) string, goos string) string {
	if editor := strings.TrimSpace(getenv("EDITOR")); editor != "" {
		return editor
	}
	log.Debug().Msg("$EDITOR not set, using default editor for OS")
	if goos == "windows" {
		return "notepad"
	}
	return "vim"
}

func contextFilePath(cp ConfigProvider) (string, error) {
	configDir, err := cp.EnsureConfigDir()
	if err != nil {
		log.Error().Err(err).Msg("Failed to ensure config directory exists")
		return "", fmt.Errorf("failed to ensure config directory: %w", err)
	}
	path := filepath.Join(configDir, config.DefaultContextFileName)
	log.Debug().Str("path", path).Msg("Context file path determined")
	return path, nil
}

func contextEditRunE(cp ConfigProvider, editor string) error {
	log.Debug().Msg("Executing context edit command")
	path, err := contextFilePath(cp)
	if err != nil {
		return err
	}

	editorCmd := exec.Command(editor, path)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	log.Debug().Str("editor", editor).Msg("Launching editor...")
	if err := editorCmd.Run(); err != nil {
		log.Error().Err(err).Str("editor", editor).Msg("Editor command failed")
		return fmt.Errorf("failed to run editor '%s': %w", editor, err)
	}
	log.Info().Msg("Editor finished.")
	return nil
}

func contextAddRunE(cp ConfigProvider, out io.Writer, entry string) error {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return fmt.Errorf("context entry cannot be empty")
	}
	log.Debug().Str("entry", entry).Msg("Executing context add command")

	path, err := contextFilePath(cp)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to open context file for appending")
		return fmt.Errorf("failed to open context file: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s\n", entry); err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to write entry to context file")
		return fmt.Errorf("failed to write to context file: %w", err)
	}

	log.Info().Str("path", path).Msg("Entry successfully added to context file")
	fmt.Fprintln(out, "Entry added to context file.")
	return nil
}
