package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	printingapp "github.com/missionpuck/logprinter/internal/application/printing"
	"github.com/missionpuck/logprinter/internal/infrastructure/source"
)

var (
	missionFile string
	logsFile    string
	printerName string
	outputDir   string
)

var printCmd = &cobra.Command{
	Use:   "print",
	Short: "Print one mission log and wait for it to finish",
	Long: `Print reads a mission and its log records from files and runs one print
job in the foreground. Log records may be JSON (an array, or an object with a
"records" array) or CSV with id, mission_id, when and message columns.`,
	Example: `  logprinter print --mission mission.json --logs logs.csv
  logprinter print --mission mission.json --logs logs.json --printer ops-laser`,
	Args: cobra.NoArgs,
	RunE: runPrint,
}

func init() {
	printCmd.Flags().StringVar(&missionFile, "mission", "", "mission JSON file")
	printCmd.Flags().StringVar(&logsFile, "logs", "", "log records file (.json or .csv)")
	printCmd.Flags().StringVar(&printerName, "printer", "", "registered printer name (default: printer.default)")
	printCmd.Flags().StringVar(&outputDir, "output-dir", "", "write pages as PNG files to this directory")
	_ = printCmd.MarkFlagRequired("mission")
	_ = printCmd.MarkFlagRequired("logs")
	rootCmd.AddCommand(printCmd)
}

func runPrint(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if outputDir != "" {
		cfg.Printer.OutputDir = outputDir
		if printerName == "" {
			cfg.Printer.Default = "directory"
		}
	}

	log, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	mission, err := source.LoadMission(missionFile)
	if err != nil {
		return err
	}
	records, err := source.LoadRecords(logsFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log, func(u printingapp.ProgressUpdate) {
		log.Info("progress",
			zap.String("job_id", u.JobID.String()),
			zap.String("status", u.Status.String()),
			zap.Int("percent", u.Percent))
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := a.close(context.Background()); err != nil {
			log.Warn("shutdown", zap.Error(err))
		}
	}()

	job, err := a.service.Run(ctx, printingapp.SubmitPrintJobRequest{
		Mission: mission,
		Records: records,
		Printer: printerName,
	})
	if err != nil {
		if job != nil {
			log.Error("print job failed",
				zap.String("job_id", job.ID),
				zap.String("failure_kind", job.FailureKind))
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "job %s: %d records, %d pages on %s\n",
		job.ID, job.RecordCount, job.PageCount, job.Printer)
	return nil
}
