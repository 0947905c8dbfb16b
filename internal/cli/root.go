// Package cli provides the command-line interface for mmwrtab.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/mmwrtab/internal/cli/commands"
	"github.com/ccollicutt/mmwrtab/internal/cli/plugins"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCommand()

	// Check if the first argument might be a plugin command
	if name, ok := pluginCandidate(rootCmd, os.Args); ok {
		if pluginPath, err := plugins.FindPlugin(name); err == nil {
			return plugins.Execute(ctx, pluginPath, os.Args[2:])
		}
		// Plugin not found - fall through to Cobra which will report it
	}

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if name, ok := pluginCandidate(rootCmd, os.Args); ok {
			_, _ = fmt.Fprintln(os.Stderr, plugins.FormatNotFoundError(name))
			return 2
		}
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2 // Configuration or runtime error
	}
	return commands.ExitCode
}

// pluginCandidate returns the first argument when it is neither a flag nor
// a built-in command.
func pluginCandidate(rootCmd *cobra.Command, args []string) (string, bool) {
	if len(args) < 2 {
		return "", false
	}
	name := args[1]
	if name == "" || name[0] == '-' || isBuiltinCommand(rootCmd, name) {
		return "", false
	}
	return name, true
}

// isBuiltinCommand checks if a command name is a built-in cobra command.
func isBuiltinCommand(rootCmd *cobra.Command, name string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == name || cmd.HasAlias(name) {
			return true
		}
	}
	// Also check for special commands like help and completion
	return name == "help" || name == "completion"
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mmwrtab",
		Short: "Parse MMWR weekly notifiable disease tables",
		Long: `mmwrtab reads the weekly tab-delimited tables of the CDC Morbidity and
Mortality Weekly Report (MMWR) and turns each bulletin into a table of
cells keyed by column name and row label.

It can:
  - Parse many bulletins at once and report the ones that fail
  - Extract a time series for one disease column and reporting area
  - List the column names and row labels seen across bulletins
  - Download bulletins from CDC WONDER
  - Load parsed cells into MySQL

PLUGINS:
  mmwrtab supports plugins for extended functionality. Plugins are standalone
  binaries named mmwrtab-<command> that are automatically discovered and invoked.

  Plugin locations (searched in order):
    1. Same directory as the mmwrtab binary
    2. ~/.mmwrtab/plugins/ (or $MMWRTAB_PLUGIN_DIR)
    3. Anywhere in PATH`,
		Version:       commands.VersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate("mmwrtab {{.Version}}\n")

	// Add subcommands
	rootCmd.AddCommand(commands.NewParseCommand())
	rootCmd.AddCommand(commands.NewSeriesCommand())
	rootCmd.AddCommand(commands.NewFieldsCommand())
	rootCmd.AddCommand(commands.NewInspectCommand())
	rootCmd.AddCommand(commands.NewFetchCommand())
	rootCmd.AddCommand(commands.NewLoadCommand())
	rootCmd.AddCommand(commands.NewDiagnoseCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
