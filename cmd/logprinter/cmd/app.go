package cmd

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	printingapp "github.com/missionpuck/logprinter/internal/application/printing"
	"github.com/missionpuck/logprinter/internal/infrastructure/cache"
	"github.com/missionpuck/logprinter/internal/infrastructure/config"
	"github.com/missionpuck/logprinter/internal/infrastructure/logger"
	"github.com/missionpuck/logprinter/internal/infrastructure/persistence"
	infra "github.com/missionpuck/logprinter/internal/infrastructure/printing"
	"github.com/missionpuck/logprinter/internal/infrastructure/telemetry"
)

// app holds the wired components shared by print and serve
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	db       *persistence.Database
	tracer   *telemetry.TracerProvider
	meter    *telemetry.MeterProvider
	printers *infra.PrinterRegistry
	scratch  *infra.Scratch
	service  *printingapp.PrintService
}

// newLogger builds the process logger. Commands other than serve keep stdout
// free and log to stderr.
func newLogger(cfg *config.Config, cli bool) (*zap.Logger, error) {
	lc := &logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	if cli && lc.Output == "stdout" {
		lc.Output = "stderr"
	}
	return logger.New(lc)
}

// newApp wires the print pipeline from configuration. onProgress may be nil.
func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger, onProgress printingapp.ProgressFunc) (_ *app, err error) {
	a := &app{cfg: cfg, log: log}
	defer func() {
		if err != nil {
			a.close(context.Background())
		}
	}()

	a.tracer, err = telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	a.meter, err = telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	metrics, err := telemetry.NewJobMetrics(a.meter.Meter("logprinter/printing"))
	if err != nil {
		return nil, err
	}

	a.db, err = persistence.NewDatabaseWithOptions(&cfg.Database, persistence.Options{
		Logger:       log,
		LogLevel:     logger.MapGormLogLevel(cfg.Log.Level),
		TraceQueries: cfg.Telemetry.DBTraceEnabled,
	})
	if err != nil {
		return nil, err
	}
	jobs := persistence.NewGormPrintJobRepository(a.db.DB)
	if err := jobs.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate job history: %w", err)
	}

	guard, err := cache.NewJobGuardFactory(cfg.Redis, cache.WithLogger(log)).CreateGuard()
	if err != nil {
		return nil, err
	}

	location, err := cfg.App.Location()
	if err != nil {
		return nil, err
	}

	templates := infra.NewTemplateStore(&infra.TemplateStoreConfig{
		ExternalDir: cfg.Template.ExternalDir,
		Logger:      log,
	})
	tpl, err := templates.Get(cfg.Template.Name)
	if err != nil {
		return nil, err
	}
	assembler, err := infra.NewDocumentAssembler(&infra.DocumentAssemblerConfig{
		PageWidth:  tpl.Page.Width,
		PageHeight: tpl.Page.Height,
		Logger:     log,
	})
	if err != nil {
		return nil, err
	}

	rasterizer, err := infra.NewGhostscriptRasterizer(&infra.GhostscriptConfig{
		BinaryPath:     cfg.Ghostscript.BinaryPath,
		DefaultTimeout: cfg.Ghostscript.Timeout,
		DPI:            cfg.Ghostscript.DPI,
		Device:         cfg.Ghostscript.Device,
		Logger:         log,
	})
	if err != nil {
		return nil, err
	}

	a.scratch, err = infra.NewScratch(&infra.ScratchConfig{BaseDir: cfg.App.ScratchDir, Logger: log})
	if err != nil {
		return nil, err
	}

	a.printers, err = newPrinterRegistry(cfg.Printer, log)
	if err != nil {
		return nil, err
	}

	a.service = printingapp.NewPrintService(printingapp.Dependencies{
		Jobs:       jobs,
		Guard:      guard,
		Templates:  templates,
		Measurer:   infra.NewFpdfMeasurer(),
		Assembler:  assembler,
		Rasterizer: rasterizer,
		Scratch:    a.scratch,
		Printers:   a.printers,
		Metrics:    metrics,
	}, printingapp.Config{
		TemplateName:   cfg.Template.Name,
		PreparedBy:     cfg.Render.PreparedBy,
		WatermarkLabel: cfg.Render.WatermarkLabel,
		Location:       location,
		GuardTTL:       cfg.Redis.GuardTTL,
		DPI:            cfg.Ghostscript.DPI,
		OnProgress:     onProgress,
	}, log)

	return a, nil
}

// newPrinterRegistry registers the directory printer, and the spool printer
// when a destination is configured
func newPrinterRegistry(cfg config.PrinterConfig, log *zap.Logger) (*infra.PrinterRegistry, error) {
	geometry := infra.PaperGeometry{
		WidthIn:  cfg.PaperWidth,
		HeightIn: cfg.PaperHeight,
		MarginIn: cfg.Margin,
		DPI:      cfg.DPI,
	}
	registry := infra.NewPrinterRegistry()

	dir, err := infra.NewDirectoryPrinter(&infra.DirectoryPrinterConfig{
		Dir:      cfg.OutputDir,
		Geometry: geometry,
		Logger:   log,
	})
	if err != nil {
		return nil, err
	}
	registry.Register(dir)

	if cfg.Destination != "" {
		spool, err := infra.NewSpoolPrinter(&infra.SpoolPrinterConfig{
			Destination: cfg.Destination,
			BinaryPath:  cfg.SpoolBinary,
			Sides:       cfg.Sides,
			Copies:      cfg.Copies,
			Timeout:     cfg.Timeout,
			Geometry:    geometry,
			Logger:      log,
		})
		if err != nil {
			return nil, err
		}
		registry.Register(spool)
	}

	defaultName := dir.Name()
	if cfg.Default == "spool" {
		defaultName = cfg.Destination
	}
	if err := registry.SetDefault(defaultName); err != nil {
		return nil, err
	}
	return registry, nil
}

// close waits for running jobs, then releases the database and flushes
// telemetry
func (a *app) close(ctx context.Context) error {
	var errs []error
	if a.service != nil {
		a.service.Wait()
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	if a.meter != nil {
		errs = append(errs, a.meter.Shutdown(ctx))
	}
	if a.tracer != nil {
		errs = append(errs, a.tracer.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
