package printing

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/shipprint/backend/internal/domain/printing"
	"github.com/shipprint/backend/internal/domain/shipping"
	applog "github.com/shipprint/backend/internal/infrastructure/logger"
	"github.com/shipprint/backend/internal/infrastructure/telemetry"
)

// DocumentAcquirer produces the printable bytes of a record, by rendering
// (packing slips) or downloading (labels)
type DocumentAcquirer interface {
	Acquire(ctx context.Context, rec shipping.Record) ([]byte, error)
}

// PrintSink hands a file to the print queue. Submit returns once the job is
// queued, not once it is printed.
type PrintSink interface {
	Submit(ctx context.Context, path string) (jobID string, err error)
	Printer() string
}

// Spool stages documents on disk for the print sink
type Spool interface {
	Write(ctx context.Context, key string, data []byte) (path string, err error)
	Remove(ctx context.Context, path string) error
}

// PipelineConfig configures a Pipeline
type PipelineConfig struct {
	Sentinels printing.SentinelStore
	Spool     Spool
	// Sink may be nil in dry-run mode
	Sink PrintSink
	// ConsumeOnSkip deletes a marker once it has suppressed a reprint in the
	// last window that still contains the record. It assumes one run per
	// interval; a second run inside that final interval would print again.
	ConsumeOnSkip bool
	// Interval is the run interval, required with ConsumeOnSkip
	Interval time.Duration
	// DryRun writes documents to Output instead of printing and never
	// touches sentinels
	DryRun bool
	Output Spool
	// Metrics may be nil
	Metrics *telemetry.PrintMetrics
	Logger  *zap.Logger
}

// Pipeline delivers records one at a time: check the marker, acquire the
// document, spool it, submit it, mark it delivered
type Pipeline struct {
	sentinels     printing.SentinelStore
	spool         Spool
	sink          PrintSink
	consumeOnSkip bool
	interval      time.Duration
	dryRun        bool
	output        Spool
	metrics       *telemetry.PrintMetrics
	logger        *zap.Logger
}

// NewPipeline creates a new Pipeline
func NewPipeline(cfg PipelineConfig) (*Pipeline, error) {
	if cfg.DryRun {
		if cfg.Output == nil {
			return nil, errors.New("dry run requires an output spool")
		}
	} else {
		if cfg.Sentinels == nil || cfg.Spool == nil || cfg.Sink == nil {
			return nil, errors.New("pipeline requires a sentinel store, a spool and a print sink")
		}
		if cfg.ConsumeOnSkip && cfg.Interval <= 0 {
			return nil, errors.New("consuming markers on skip requires the run interval")
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		sentinels:     cfg.Sentinels,
		spool:         cfg.Spool,
		sink:          cfg.Sink,
		consumeOnSkip: cfg.ConsumeOnSkip,
		interval:      cfg.Interval,
		dryRun:        cfg.DryRun,
		output:        cfg.Output,
		metrics:       cfg.Metrics,
		logger:        logger,
	}, nil
}

// ProcessRecord runs the per-record state machine for a record fetched in
// window and returns its outcome. It never returns an error: failures are
// carried by the Result.
func (p *Pipeline) ProcessRecord(ctx context.Context, window printing.TimeWindow, rec shipping.Record, acquirer DocumentAcquirer) printing.Result {
	key := printing.KeyFor(rec)
	recordID := rec.ObjectID()

	ctx, span := telemetry.StartServiceSpan(ctx, "pipeline", "process_record",
		telemetry.WithAttribute(telemetry.SpanAttrRecordID, recordID),
		telemetry.WithAttribute(telemetry.SpanAttrRecordKey, key),
	)
	defer span.End()

	ctx, log := applog.WithRecord(ctx, applog.WithTraceContext(ctx, p.loggerFrom(ctx)), recordID, key)

	var res printing.Result
	if p.dryRun {
		res = p.preview(ctx, log, rec, key, acquirer)
	} else {
		res = p.deliver(ctx, log, window, rec, key, acquirer)
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrOutcome, res.Outcome)
	if res.Err != nil {
		var de *printing.DeliveryError
		if errors.As(res.Err, &de) {
			telemetry.SetAttribute(span, telemetry.SpanAttrStage, string(de.Stage))
		}
		telemetry.RecordError(span, res.Err)
	}
	return res
}

func (p *Pipeline) deliver(ctx context.Context, log *zap.Logger, window printing.TimeWindow, rec shipping.Record, key string, acquirer DocumentAcquirer) printing.Result {
	recordID := rec.ObjectID()

	// An unreadable marker is never taken to mean "not delivered"
	delivered, err := p.sentinels.Has(ctx, key)
	if err != nil {
		return printing.Failed(recordID, key,
			printing.NewDeliveryError(printing.StageSentinelCheck, recordID, printing.ErrSentinelCheck, err))
	}
	if delivered {
		if p.consumeOnSkip && p.finalWindowFor(rec, window) {
			if err := p.sentinels.Remove(ctx, key); err != nil {
				log.Warn("failed to consume sentinel", zap.Error(err))
			}
		}
		log.Info("already printed, skipping")
		return printing.Skipped(recordID, key)
	}

	data, err := acquirer.Acquire(ctx, rec)
	if err != nil {
		return printing.Failed(recordID, key,
			printing.NewDeliveryError(printing.StageAcquire, recordID, acquireErrorKind(err), err))
	}

	path, err := p.spool.Write(ctx, key, data)
	if err != nil {
		return printing.Failed(recordID, key,
			printing.NewDeliveryError(printing.StageSpool, recordID, printing.ErrSpool, err))
	}
	defer func() {
		if err := p.spool.Remove(context.WithoutCancel(ctx), path); err != nil {
			log.Warn("failed to remove spool file", zap.String("path", path), zap.Error(err))
		}
	}()

	jobID, err := p.sink.Submit(ctx, path)
	if err != nil {
		return printing.Failed(recordID, key,
			printing.NewDeliveryError(printing.StageSubmit, recordID, printing.ErrSubmission, err))
	}

	// The job is queued now; a failed mark means the next run prints it again
	if err := p.sentinels.Put(ctx, key, data); err != nil {
		log.Error("printed but could not mark as delivered", zap.String("print_job_id", jobID), zap.Error(err))
		return printing.Failed(recordID, key,
			printing.NewDeliveryError(printing.StageMark, recordID, printing.ErrSentinelWrite, err))
	}

	log.Info("printed", append([]zap.Field{
		zap.String("printer", p.sink.Printer()),
		zap.String("print_job_id", jobID),
		zap.Int("bytes", len(data)),
	}, recordFields(rec)...)...)
	return printing.Delivered(recordID, key, jobID)
}

// preview acquires the document and writes it to the output spool only
func (p *Pipeline) preview(ctx context.Context, log *zap.Logger, rec shipping.Record, key string, acquirer DocumentAcquirer) printing.Result {
	recordID := rec.ObjectID()

	data, err := acquirer.Acquire(ctx, rec)
	if err != nil {
		return printing.Failed(recordID, key,
			printing.NewDeliveryError(printing.StageAcquire, recordID, acquireErrorKind(err), err))
	}

	path, err := p.output.Write(ctx, key, data)
	if err != nil {
		return printing.Failed(recordID, key,
			printing.NewDeliveryError(printing.StageSpool, recordID, printing.ErrSpool, err))
	}

	log.Info("dry run: document written", append([]zap.Field{
		zap.String("path", path),
		zap.Int("bytes", len(data)),
	}, recordFields(rec)...)...)
	return printing.Delivered(recordID, key, "")
}

// RunJob processes records sequentially and aggregates their results.
// fetch failing is a job-level error; a record failing never stops the batch.
func (p *Pipeline) RunJob(ctx context.Context, kind printing.DocKind, window printing.TimeWindow,
	fetch func(ctx context.Context) ([]shipping.Record, error), acquirer DocumentAcquirer) *printing.JobReport {

	report := printing.NewJobReport(kind, window)
	log := p.loggerFrom(ctx).With(zap.String("kind", kind.String()))

	ctx, span := telemetry.StartServiceSpan(ctx, "pipeline", "run_job",
		telemetry.WithAttribute(telemetry.SpanAttrDocKind, kind),
		telemetry.WithAttribute(telemetry.SpanAttrWindow, window.String()),
	)
	defer span.End()

	records, err := fetch(ctx)
	if err != nil {
		report.Fail(err)
		p.metrics.RecordJobFailure(kind)
		telemetry.RecordError(span, err)
		log.Error("job failed", zap.Error(err))
		return report
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrRecords, len(records))
	log.Info("records fetched", zap.Int("count", len(records)), zap.Stringer("window", window))

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			report.Fail(err)
			log.Error("job interrupted", zap.Int("remaining", len(records)-report.Total), zap.Error(err))
			break
		}

		start := time.Now()
		res := p.ProcessRecord(ctx, window, rec, acquirer)
		p.metrics.RecordOutcome(kind, res.Outcome, time.Since(start))
		if res.Err != nil {
			log.Error("record failed", zap.String("record_id", res.RecordID), zap.String("key", res.Key), zap.Error(res.Err))
		}
		report.Add(res)
	}

	log.Info("job finished",
		zap.Int("success", report.Success),
		zap.Int("skipped", report.Skipped),
		zap.Int("errors", report.Errors),
	)
	return report
}

// PruneMarkers deletes markers older than age when the sentinel store can
// list them by age. Stores without that ability rely on their own TTL.
func (p *Pipeline) PruneMarkers(ctx context.Context, age time.Duration) (int, error) {
	if p.dryRun {
		return 0, nil
	}
	pruner, ok := p.sentinels.(markerPruner)
	if !ok {
		return 0, nil
	}
	return pruner.CleanupOlderThan(ctx, age)
}

type markerPruner interface {
	CleanupOlderThan(ctx context.Context, age time.Duration) (int, error)
}

// finalWindowFor reports whether window is the last aligned window that
// contains the record. Later windows start after the record, so dropping the
// marker now cannot let a later run reprint it. Untimed records keep theirs.
func (p *Pipeline) finalWindowFor(rec shipping.Record, window printing.TimeWindow) bool {
	t := rec.BusinessTime()
	if t == nil || window.Start.IsZero() {
		return false
	}
	return t.Before(window.Start.Add(p.interval))
}

func (p *Pipeline) loggerFrom(ctx context.Context) *zap.Logger {
	if applog.GetRunID(ctx) != "" {
		return applog.FromContext(ctx)
	}
	return p.logger
}

// recordFields describes the document contents on the delivery log line
func recordFields(rec shipping.Record) []zap.Field {
	order, ok := rec.(*shipping.Order)
	if !ok {
		return nil
	}
	fields := []zap.Field{zap.Int("total_items", order.TotalQuantity())}
	if total, currency := order.TotalPrice(); currency != "" {
		fields = append(fields,
			zap.String("order_total", total.StringFixed(2)),
			zap.String("currency", currency),
		)
	}
	return fields
}

// acquireErrorKind tells a failed download from a failed render
func acquireErrorKind(err error) error {
	if errors.Is(err, printing.ErrFetch) {
		return printing.ErrFetch
	}
	return printing.ErrRender
}
