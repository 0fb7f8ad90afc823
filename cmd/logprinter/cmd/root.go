// Package cmd implements the logprinter command line.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/missionpuck/logprinter/internal/infrastructure/config"
)

// Version is stamped at build time with -ldflags "-X ...cmd.Version=..."
var Version = "dev"

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "logprinter",
	Short: "Print mission logs on the ICS-109 communications log form",
	Long: `logprinter lays a mission's log records out on the ICS-109 form,
rasterizes the pages with Ghostscript and sends them to a printer.

Examples:
  # Print one mission log to PNG files
  logprinter print --mission mission.json --logs logs.json --output-dir ./out

  # Run the HTTP API
  logprinter serve

  # Inspect a form template
  logprinter template check --template forms/ics109.yaml`,
	SilenceUsage: true,
	Version:      Version,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./logprinter.toml or /etc/logprinter/logprinter.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
}

// loadConfig reads the config file and environment, then applies global flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFile(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}
