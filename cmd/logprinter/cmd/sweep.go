package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	infra "github.com/missionpuck/logprinter/internal/infrastructure/printing"
)

var olderThan time.Duration

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove job workspaces left behind by crashed processes",
	Args:  cobra.NoArgs,
	RunE:  runSweep,
}

func init() {
	sweepCmd.Flags().DurationVar(&olderThan, "older-than", 24*time.Hour, "only remove workspaces older than this (default: app.sweep_older_than)")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("older-than") {
		olderThan = cfg.App.SweepOlderThan
	}
	if olderThan <= 0 {
		return fmt.Errorf("--older-than must be positive")
	}
	log, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	scratch, err := infra.NewScratch(&infra.ScratchConfig{BaseDir: cfg.App.ScratchDir, Logger: log})
	if err != nil {
		return err
	}
	n, err := scratch.CleanupOlderThan(cmd.Context(), olderThan)
	if err != nil {
		return err
	}

	log.Info("sweep finished", zap.String("dir", scratch.BaseDir()), zap.Int("removed", n))
	fmt.Fprintf(cmd.OutOrStdout(), "removed %d workspaces from %s\n", n, scratch.BaseDir())
	return nil
}
