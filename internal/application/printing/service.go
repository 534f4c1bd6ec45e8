package printing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shipprint/backend/internal/domain/printing"
	"github.com/shipprint/backend/internal/domain/shipping"
	applog "github.com/shipprint/backend/internal/infrastructure/logger"
	"github.com/shipprint/backend/internal/infrastructure/scheduler"
	"github.com/shipprint/backend/internal/infrastructure/telemetry"
)

// OrderSource lists the orders placed inside a window
type OrderSource interface {
	ListOrders(ctx context.Context, window printing.TimeWindow, includeAll bool) ([]*shipping.Order, error)
}

// LabelSource lists the labels created inside a window
type LabelSource interface {
	ListLabels(ctx context.Context, window printing.TimeWindow) ([]*shipping.Label, error)
}

// ServiceConfig configures a PrintService
type ServiceConfig struct {
	Pipeline *Pipeline
	Window   scheduler.WindowConfig

	// Orders and Slips drive the packing slip job; nil Orders skips it
	Orders             OrderSource
	Slips              DocumentAcquirer
	IncludeAllStatuses bool

	// Labels and LabelDocs drive the label job; nil Labels skips it
	Labels    LabelSource
	LabelDocs DocumentAcquirer

	Metrics *telemetry.PrintMetrics
	Logger  *zap.Logger
	// Now defaults to time.Now
	Now func() time.Time
}

// PrintService runs the packing slip and label jobs for one window
type PrintService struct {
	pipeline   *Pipeline
	window     scheduler.WindowConfig
	orders     OrderSource
	slips      DocumentAcquirer
	includeAll bool
	labels     LabelSource
	labelDocs  DocumentAcquirer
	metrics    *telemetry.PrintMetrics
	logger     *zap.Logger
	now        func() time.Time
}

// NewPrintService creates a new PrintService
func NewPrintService(cfg ServiceConfig) (*PrintService, error) {
	if cfg.Pipeline == nil {
		return nil, errors.New("print service requires a pipeline")
	}
	if cfg.Orders != nil && cfg.Slips == nil {
		return nil, errors.New("packing slip job requires a document acquirer")
	}
	if cfg.Labels != nil && cfg.LabelDocs == nil {
		return nil, errors.New("label job requires a document acquirer")
	}
	if err := cfg.Window.Validate(); err != nil {
		return nil, err
	}
	if cfg.Pipeline.consumeOnSkip && cfg.Pipeline.interval != cfg.Window.Interval() {
		return nil, fmt.Errorf("pipeline consumes markers on a %s interval, window runs every %s",
			cfg.Pipeline.interval, cfg.Window.Interval())
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &PrintService{
		pipeline:   cfg.Pipeline,
		window:     cfg.Window,
		orders:     cfg.Orders,
		slips:      cfg.Slips,
		includeAll: cfg.IncludeAllStatuses,
		labels:     cfg.Labels,
		labelDocs:  cfg.LabelDocs,
		metrics:    cfg.Metrics,
		logger:     logger,
		now:        now,
	}, nil
}

// RunPackingSlips prints a packing slip for every order in the window
func (s *PrintService) RunPackingSlips(ctx context.Context, window printing.TimeWindow) *printing.JobReport {
	fetch := func(ctx context.Context) ([]shipping.Record, error) {
		orders, err := s.orders.ListOrders(ctx, window, s.includeAll)
		if err != nil {
			return nil, err
		}
		records := make([]shipping.Record, 0, len(orders))
		for _, o := range orders {
			records = append(records, o)
		}
		return records, nil
	}
	return s.pipeline.RunJob(ctx, printing.DocKindPackingSlip, window, fetch, s.slips)
}

// RunLabels prints every purchased label created in the window
func (s *PrintService) RunLabels(ctx context.Context, window printing.TimeWindow) *printing.JobReport {
	fetch := func(ctx context.Context) ([]shipping.Record, error) {
		labels, err := s.labels.ListLabels(ctx, window)
		if err != nil {
			return nil, err
		}
		records := make([]shipping.Record, 0, len(labels))
		for _, l := range labels {
			records = append(records, l)
		}
		return records, nil
	}
	return s.pipeline.RunJob(ctx, printing.DocKindLabel, window, fetch, s.labelDocs)
}

// Run computes the current window and runs packing slips, then labels.
// A failed job does not prevent the other from running.
func (s *PrintService) Run(ctx context.Context) (*printing.RunSummary, error) {
	window, err := scheduler.ComputeWindow(s.now(), s.window)
	if err != nil {
		return nil, err
	}

	runID := uuid.New()
	ctx, log := applog.WithRunID(ctx, s.logger, runID.String())

	ctx, span := telemetry.StartServiceSpan(ctx, "print", "run",
		telemetry.WithAttribute(telemetry.SpanAttrRunID, runID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrWindow, window.String()),
	)
	defer span.End()

	log.Info("print run started",
		zap.Time("window_start", window.Start),
		zap.Time("window_end", window.End),
	)

	summary := &printing.RunSummary{RunID: runID.String(), Window: window}

	if s.orders != nil {
		summary.Add(s.track(runID, printing.DocKindPackingSlip, window, func() *printing.JobReport {
			return s.RunPackingSlips(ctx, window)
		}))
	}
	if s.labels != nil {
		summary.Add(s.track(runID, printing.DocKindLabel, window, func() *printing.JobReport {
			return s.RunLabels(ctx, window)
		}))
	}

	if pruned, err := s.pipeline.PruneMarkers(ctx, s.window.Retention()); err != nil {
		log.Warn("failed to prune delivery markers", zap.Error(err))
	} else if pruned > 0 {
		log.Info("pruned delivery markers", zap.Int("count", pruned), zap.Duration("older_than", s.window.Retention()))
	}

	s.metrics.RecordRun(summary, s.now())
	if s.metrics.PushEnabled() {
		if err := s.metrics.Push(context.WithoutCancel(ctx)); err != nil {
			log.Warn("failed to push run metrics", zap.Error(err))
		}
	}

	if summary.Errors() > 0 {
		telemetry.SetAttribute(span, "errors", summary.Errors())
	} else {
		telemetry.SetOK(span)
	}

	log.Info("print run finished",
		zap.Int("success", summary.Success()),
		zap.Int("skipped", summary.Skipped()),
		zap.Int("errors", summary.Errors()),
		zap.Int("exit_code", summary.ExitCode()),
	)
	return summary, nil
}

// track wraps one job with PrintJob status bookkeeping
func (s *PrintService) track(runID uuid.UUID, kind printing.DocKind, window printing.TimeWindow, run func() *printing.JobReport) *printing.JobReport {
	job := scheduler.NewPrintJob(runID, kind, window)
	job.Start()
	report := run()
	if err := job.Complete(report); err != nil {
		job.Fail(err.Error())
	}

	s.logger.Debug("print job completed",
		zap.String("job_id", job.ID.String()),
		zap.String("kind", kind.String()),
		zap.String("status", string(job.Status)),
		zap.Duration("duration", job.Duration()),
		zap.Strings("failed_keys", job.FailedKeys),
	)
	return report
}
