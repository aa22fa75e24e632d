// Package cli wires the engine, store, and config into the leancoffee
// command tree.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Config  string
}

// NewRootCommand creates the root command for the leancoffee CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "leancoffee",
		Short: "Collaborative topic voting and timed discussion",
		Long: `A realtime client for Lean Coffee sessions: collect topics, vote,
and drive timed discussions against a shared document store.`,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "path to YAML config file")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// setupLogging configures the process-wide slog handler.
func setupLogging(verbose bool, level string) {
	logLevel := slog.LevelInfo
	if level == "debug" || verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}
