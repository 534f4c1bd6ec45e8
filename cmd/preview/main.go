// Command preview renders packing slips into a directory without printing
// or touching delivery markers. With -sample it renders a built-in order and
// needs no API token.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	app "github.com/shipprint/backend/internal/application/printing"
	domain "github.com/shipprint/backend/internal/domain/printing"
	"github.com/shipprint/backend/internal/domain/shipping"
	"github.com/shipprint/backend/internal/infrastructure/config"
	"github.com/shipprint/backend/internal/infrastructure/logger"
	"github.com/shipprint/backend/internal/infrastructure/printing"
	"github.com/shipprint/backend/internal/infrastructure/printing/layout"
	"github.com/shipprint/backend/internal/infrastructure/scheduler"
	"github.com/shipprint/backend/internal/infrastructure/shippo"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		sample    bool
		hoursBack int
		outputDir string
	)
	flag.BoolVar(&sample, "sample", false, "Render the built-in sample order instead of fetching orders")
	flag.IntVar(&hoursBack, "hours", 120, "How many hours back to fetch orders")
	flag.StringVar(&outputDir, "out", "", "Output directory (default: app.output_dir)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 2
	}
	if outputDir != "" {
		cfg.App.OutputDir = outputDir
	}
	if !sample {
		if err := cfg.RequireShippo(); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 2
		}
		if hoursBack < 1 {
			fmt.Fprintln(os.Stderr, "-hours must be at least 1")
			return 2
		}
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 2
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.App.RunTimeout)
	defer cancel()

	html, err := printing.NewPDFRendererFor(printing.Backend(cfg.Render.Backend), cfg.Render.Timeout, log.Named("render"))
	if err != nil {
		log.Error("Failed to initialize renderer", zap.Error(err))
		return 2
	}
	renderer := printing.NewPackingSlipRenderer(printing.PackingSlipRendererConfig{
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
	})
	defer func() {
		_ = renderer.Close()
	}()

	out, err := printing.NewFileSpool(&printing.FileSpoolConfig{Dir: cfg.App.OutputDir, Logger: log})
	if err != nil {
		log.Error("Failed to prepare output directory", zap.Error(err))
		return 1
	}
	pipeline, err := app.NewPipeline(app.PipelineConfig{DryRun: true, Output: out, Logger: log})
	if err != nil {
		log.Error("Failed to initialize pipeline", zap.Error(err))
		return 1
	}

	var source app.OrderSource
	var window domain.TimeWindow
	if sample {
		order := sampleOrder()
		source = staticOrders{order}
		window = domain.TimeWindow{Start: *order.PlacedAt, End: order.PlacedAt.Add(time.Minute)}
	} else {
		client, err := shippo.NewClient(&shippo.Config{
			APIToken: cfg.Shippo.APIToken,
			BaseURL:  cfg.Shippo.BaseURL,
			PageSize: cfg.Shippo.PageSize,
			Timeout:  cfg.Shippo.Timeout,
			MaxPages: 1000,
		}, log.Named("shippo"))
		if err != nil {
			log.Error("Invalid Shippo configuration", zap.Error(err))
			return 2
		}
		source = client
		now := time.Now().UTC()
		window = domain.TimeWindow{Start: now.Add(-time.Duration(hoursBack) * time.Hour), End: now}
	}

	svc, err := app.NewPrintService(app.ServiceConfig{
		Pipeline:           pipeline,
		Window:             scheduler.DefaultWindowConfig(),
		Orders:             source,
		Slips:              renderer,
		IncludeAllStatuses: cfg.Orders.IncludeAllStatuses,
		Logger:             log,
	})
	if err != nil {
		log.Error("Failed to initialize print service", zap.Error(err))
		return 1
	}

	report := svc.RunPackingSlips(ctx, window)
	log.Info("Preview finished",
		zap.String("output_dir", out.Dir()),
		zap.Int("generated", report.Success),
		zap.Int("errors", report.Errors),
		zap.Error(report.JobErr),
	)
	if report.HasErrors() {
		return 1
	}
	return 0
}

// staticOrders serves a fixed list of orders regardless of window
type staticOrders []*shipping.Order

func (s staticOrders) ListOrders(context.Context, domain.TimeWindow, bool) ([]*shipping.Order, error) {
	if len(s) == 0 {
		return nil, errors.New("no sample orders")
	}
	return s, nil
}
