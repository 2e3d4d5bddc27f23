// Package cmd provides the CLI commands for kbforge.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/utcpkb/kbforge/internal/config"
	"github.com/utcpkb/kbforge/internal/logging"
	"github.com/utcpkb/kbforge/pkg/version"
)

var (
	configPath     string
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the kbforge CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kbforge",
		Short: "Repository knowledge-base pipeline",
		Long: `kbforge extracts facts from source repositories, builds a concept
and relationship graph, and derives search indexes and wisdom from it.

The pipeline runs in three stages:

  extract   scan upstream repositories and persist raw per-file facts
  process   rebuild the knowledge graph from the raw extractions
  optimize  derive lexical indexes, vector indexes, and wisdom

Run 'kbforge run' to execute all three in order.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.SetVersionTemplate("kbforge version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default .kbforge.yaml)")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.kbforge/logs/")

	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newExtractCmd())
	cmd.AddCommand(newProcessCmd())
	cmd.AddCommand(newOptimizeCmd())
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startLogging installs the default logger. Debug mode lowers the level
// and announces the log file location.
func startLogging(_ *cobra.Command, _ []string) error {
	cfg := logging.DefaultConfig()
	if debugMode {
		cfg = logging.DebugConfig()
	}

	logger, cleanup, err := logging.Setup(cfg)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)

	if debugMode {
		slog.Debug("debug logging enabled",
			slog.String("log_file", logging.DefaultLogPath()),
			slog.String("version", version.Version))
	}
	return nil
}

func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// loadConfig loads the effective configuration for a command.
func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
