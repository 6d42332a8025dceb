package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// cliLogger returns a logger for service code run inside the CLI.
// Output goes to stderr only under --verbose so it never mixes with the
// formatted command output on stdout.
func cliLogger() *slog.Logger {
	if cfg != nil && cfg.Verbose {
		return slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "rummy",
		Short: "CLI tool for the rummy scoreboard API",
		Long: `rummy is a CLI tool for interacting with the rummy scoreboard JSON API.

It supports creating games, recording scores, managing the player roster,
viewing settlements, and streaming live scoreboard updates over SSE. The
local subcommands keep score offline without a server.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Fall back to the remembered PIN when none was provided
			if cfg.Pin == "" {
				sess, err := cfg.LoadSession()
				if err != nil {
					return err
				}
				if sess != nil {
					cfg.Pin = sess.Pin
				}
			}

			// Create HTTP client
			client = NewClient(cfg.ServerURL, cfg.Pin)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: RUMMY_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Pin, "pin", cfg.Pin, "Edit PIN (env: RUMMY_PIN)")
	rootCmd.PersistentFlags().StringVar(&cfg.SessionFile, "session-file", cfg.SessionFile, "Session file path (env: RUMMY_SESSION_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newGameCmd())
	rootCmd.AddCommand(newLocalCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
