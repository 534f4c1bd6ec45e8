// Command printer prints packing slips and shipping labels for the current
// window and exits. It is meant to be started by cron or a systemd timer.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	app "github.com/shipprint/backend/internal/application/printing"
	"github.com/shipprint/backend/internal/infrastructure/config"
	"github.com/shipprint/backend/internal/infrastructure/logger"
	"github.com/shipprint/backend/internal/infrastructure/printing"
	"github.com/shipprint/backend/internal/infrastructure/printing/layout"
	"github.com/shipprint/backend/internal/infrastructure/scheduler"
	"github.com/shipprint/backend/internal/infrastructure/sentinel"
	"github.com/shipprint/backend/internal/infrastructure/shippo"
	"github.com/shipprint/backend/internal/infrastructure/telemetry"
)

// Exit codes
const (
	exitOK          = 0
	exitRunErrors   = 1
	exitConfigError = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		dryRun      bool
		packingOnly bool
		labelsOnly  bool
	)
	flag.BoolVar(&dryRun, "dry-run", false, "Render documents into the output directory without printing")
	flag.BoolVar(&packingOnly, "packing-slips", false, "Only run the packing slip job")
	flag.BoolVar(&labelsOnly, "labels", false, "Only run the label job")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return exitCodeFor(err)
	}
	if dryRun {
		cfg.App.DryRun = true
	}
	if packingOnly && labelsOnly {
		fmt.Fprintln(os.Stderr, "-packing-slips and -labels are mutually exclusive")
		return exitConfigError
	}
	if err := cfg.RequirePrinting(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitConfigError
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return exitConfigError
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting shipping print run",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("printer", cfg.Printer.Name),
		zap.Bool("dry_run", cfg.App.DryRun),
		zap.String("sentinel_backend", cfg.Sentinel.Backend),
	)
	log.Info("API token configured")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.App.RunTimeout)
	defer cancel()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Error("Failed to initialize tracing", zap.Error(err))
		return exitConfigError
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Warn("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	logExport, err := telemetry.NewLogExporter(ctx, telemetry.LogExportConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.ExportLogs,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Error("Failed to initialize log export", zap.Error(err))
		return exitConfigError
	}
	defer func() {
		if err := logExport.Shutdown(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Error flushing exported logs: %v\n", err)
		}
	}()
	log = logExport.Bridge(log, logger.ParseLevel(cfg.Log.Level))

	metrics := telemetry.NewPrintMetrics(telemetry.PrintMetricsConfig{
		PushgatewayURL: cfg.Metrics.PushgatewayURL,
		Job:            cfg.Metrics.Job,
	})

	shippoClient, err := shippo.NewClient(&shippo.Config{
		APIToken: cfg.Shippo.APIToken,
		BaseURL:  cfg.Shippo.BaseURL,
		PageSize: cfg.Shippo.PageSize,
		Timeout:  cfg.Shippo.Timeout,
		MaxPages: 1000,
	}, log.Named("shippo"))
	if err != nil {
		log.Error("Invalid Shippo configuration", zap.Error(err))
		return exitConfigError
	}

	renderer, err := newPackingSlipRenderer(cfg, log)
	if err != nil {
		log.Error("Failed to initialize renderer", zap.Error(err))
		return exitConfigError
	}
	defer func() {
		if err := renderer.Close(); err != nil {
			log.Warn("Error closing renderer", zap.Error(err))
		}
	}()

	pipeline, closePipeline, err := newPipeline(ctx, cfg, metrics, log)
	if err != nil {
		log.Error("Failed to initialize print pipeline", zap.Error(err))
		return exitCodeFor(err)
	}
	defer closePipeline()

	svcCfg := app.ServiceConfig{
		Pipeline: pipeline,
		Window: scheduler.WindowConfig{
			IntervalMinutes: cfg.Window.IntervalMinutes,
			Lookback:        cfg.Window.Lookback,
		},
		IncludeAllStatuses: cfg.Orders.IncludeAllStatuses,
		Metrics:            metrics,
		Logger:             log,
	}
	if !labelsOnly {
		svcCfg.Orders = shippoClient
		svcCfg.Slips = renderer
	}
	if !packingOnly {
		svcCfg.Labels = shippoClient
		svcCfg.LabelDocs = shippoClient
	}

	svc, err := app.NewPrintService(svcCfg)
	if err != nil {
		log.Error("Invalid window configuration", zap.Error(err))
		return exitConfigError
	}

	summary, err := svc.Run(ctx)
	if err != nil {
		log.Error("Print run could not start", zap.Error(err))
		return exitCodeFor(err)
	}

	for _, report := range summary.Reports {
		fields := []zap.Field{
			zap.String("kind", report.Kind.DisplayName()),
			zap.Int("success", report.Success),
			zap.Int("skipped", report.Skipped),
			zap.Int("errors", report.Errors),
		}
		if report.JobErr != nil {
			fields = append(fields, zap.NamedError("job_error", report.JobErr))
		}
		log.Info("Job summary", fields...)
	}

	if code := summary.ExitCode(); code != exitOK {
		return exitRunErrors
	}
	return exitOK
}

// newPackingSlipRenderer builds the renderer for the configured backend
func newPackingSlipRenderer(cfg *config.Config, log *zap.Logger) (*printing.PackingSlipRenderer, error) {
	html, err := printing.NewPDFRendererFor(printing.Backend(cfg.Render.Backend), cfg.Render.Timeout, log.Named("render"))
	if err != nil {
		return nil, err
	}
	return printing.NewPackingSlipRenderer(printing.PackingSlipRendererConfig{
		Business: layout.BusinessInfo{
			Name:   cfg.Business.Name,
			Street: cfg.Business.Street,
			City:   cfg.Business.City,
			State:  cfg.Business.State,
			Zip:    cfg.Business.Zip,
		},
		HTMLRenderer: html,
		Timeout:      cfg.Render.Timeout,
		Logger:       log.Named("render"),
	}), nil
}

// newPipeline wires the sentinel store, spool and printer. A dry run writes
// into the output directory and opens neither the store nor the printer.
func newPipeline(ctx context.Context, cfg *config.Config, metrics *telemetry.PrintMetrics, log *zap.Logger) (*app.Pipeline, func(), error) {
	if cfg.App.DryRun {
		out, err := printing.NewFileSpool(&printing.FileSpoolConfig{Dir: cfg.App.OutputDir, Logger: log})
		if err != nil {
			return nil, nil, err
		}
		log.Info("Dry run: documents are written, not printed", zap.String("output_dir", out.Dir()))
		p, err := app.NewPipeline(app.PipelineConfig{DryRun: true, Output: out, Metrics: metrics, Logger: log})
		return p, func() {}, err
	}

	store, err := sentinel.NewFactory(cfg.Sentinel, cfg.App.ScratchDir,
		sentinel.WithLogger(log.Named("sentinel")),
		sentinel.WithSQLTracing(cfg.Telemetry.Enabled && cfg.Telemetry.TraceSQL),
	).CreateStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			log.Warn("Error closing sentinel store", zap.Error(err))
		}
	}

	spool, err := printing.NewFileSpool(&printing.FileSpoolConfig{
		Dir:    filepath.Join(cfg.App.ScratchDir, "spool"),
		Logger: log.Named("spool"),
	})
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	if n, err := spool.CleanupOlderThan(ctx, cfg.App.RunTimeout); err != nil {
		log.Warn("Failed to clean up stale spool files", zap.Error(err))
	} else if n > 0 {
		log.Info("Removed stale spool files", zap.Int("count", n))
	}

	printer, err := printing.NewLPPrinter(&printing.LPConfig{
		Printer:    cfg.Printer.Name,
		BinaryPath: cfg.Printer.LPPath,
		Timeout:    cfg.Printer.Timeout,
		Logger:     log.Named("lp"),
	})
	if err != nil {
		closeStore()
		return nil, nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}

	p, err := app.NewPipeline(app.PipelineConfig{
		Sentinels:     store,
		Spool:         spool,
		Sink:          printer,
		ConsumeOnSkip: cfg.Sentinel.ConsumeOnSkip,
		Interval:      time.Duration(cfg.Window.IntervalMinutes) * time.Minute,
		Metrics:       metrics,
		Logger:        log,
	})
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return p, closeStore, nil
}

// exitCodeFor maps configuration problems to 2 and everything else to 1
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, scheduler.ErrInvalidInterval),
		errors.Is(err, scheduler.ErrInvalidLookback),
		errors.Is(err, shippo.ErrConfigMissingToken),
		errors.Is(err, shippo.ErrConfigPageSize):
		return exitConfigError
	default:
		return exitRunErrors
	}
}
