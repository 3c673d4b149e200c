// Package cmd provides the CLI commands for haystackd.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/haystackd/haystackd/internal/logging"
	"github.com/haystackd/haystackd/pkg/version"
)

// Logging flags, shared by all subcommands.
var (
	logLevel string
	logFile  string
)

// NewRootCmd creates the root command for the haystackd CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "haystackd",
		Short: "Exact-match line search over TCP",
		Long: `haystackd answers one question per connection: does the target text
file currently contain a line equal to this query string?

Clients connect over TCP (optionally TLS), send the raw query bytes, and
receive "STRING EXISTS" or "STRING NOT FOUND".`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("haystackd version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write logs to this file")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newQueryCmd())
	cmd.AddCommand(newBenchCmd())
	cmd.AddCommand(newGenCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// newLogger builds the logger from the persistent flags.
func newLogger() (*slog.Logger, func(), error) {
	cfg := logging.DefaultConfig()
	cfg.Level = logLevel
	cfg.FilePath = logFile
	return logging.Setup(cfg)
}
