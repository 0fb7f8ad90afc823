package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	printingapp "github.com/missionpuck/logprinter/internal/application/printing"
	"github.com/missionpuck/logprinter/internal/infrastructure/scheduler"
	"github.com/missionpuck/logprinter/internal/infrastructure/telemetry"
	"github.com/missionpuck/logprinter/internal/interfaces/http/handler"
	"github.com/missionpuck/logprinter/internal/interfaces/http/middleware"
	"github.com/missionpuck/logprinter/internal/interfaces/http/router"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the print HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, false)
	if err != nil {
		return err
	}

	logs, err := telemetry.NewLoggerProvider(cmd.Context(), telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to initialize log export: %w", err)
	}
	defer func() { _ = logs.Shutdown(context.Background()) }()

	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	log = telemetry.BridgeLogger(log, telemetry.ZapBridgeConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		LoggerProvider: logs,
		Level:          level,
	})
	defer func() { _ = log.Sync() }()

	log.Info("Starting logprinter",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", Version),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log, func(u printingapp.ProgressUpdate) {
		log.Debug("progress",
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

	sweeper := scheduler.NewSweeper(scheduler.SweeperConfig{
		Interval:  cfg.App.SweepInterval,
		OlderThan: cfg.App.SweepOlderThan,
	}, a.scratch, log)
	if err := sweeper.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = sweeper.Stop(context.Background()) }()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine, err := router.NewEngine(router.EngineConfig{
		Logger: log,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		},
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	})
	if err != nil {
		return err
	}

	jobs := handler.NewPrintJobHandler(a.service)
	handler.RegisterHealth(engine, handler.NewHealthHandler(a.db, a.service, Version))
	router.NewRouter(engine).Register(handler.PrintJobRoutes(jobs)).Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info("Server exited gracefully")
	return nil
}
