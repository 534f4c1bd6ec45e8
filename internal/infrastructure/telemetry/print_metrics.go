package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/shipprint/backend/internal/domain/printing"
)

// Prometheus metric names, without namespace.
const (
	MetricRecordsTotal          = "records_total"
	MetricJobFailuresTotal      = "job_failures_total"
	MetricRecordDurationSeconds = "record_duration_seconds"
	MetricLastRunTimestamp      = "last_run_timestamp_seconds"
	MetricLastRunErrors         = "last_run_errors"
)

// PrintMetricsConfig holds configuration for the run metrics.
type PrintMetricsConfig struct {
	// Namespace prefixes every metric name.
	// Default: "shipprint"
	Namespace string

	// PushgatewayURL enables Push. A run exits before any scrape could
	// happen, so metrics are pushed instead of served.
	PushgatewayURL string

	// Job is the Pushgateway job label.
	// Default: "shipprint"
	Job string

	// HistogramBuckets are the buckets for per-record duration.
	// Default: prometheus.DefBuckets
	HistogramBuckets []float64
}

// PrintMetrics records delivery outcomes in a private Prometheus registry.
type PrintMetrics struct {
	config   PrintMetricsConfig
	registry *prometheus.Registry

	recordsTotal     *prometheus.CounterVec
	jobFailuresTotal *prometheus.CounterVec
	recordDuration   *prometheus.HistogramVec
	lastRunTimestamp prometheus.Gauge
	lastRunErrors    prometheus.Gauge
}

// NewPrintMetrics creates and registers the run metrics.
func NewPrintMetrics(config PrintMetricsConfig) *PrintMetrics {
	if config.Namespace == "" {
		config.Namespace = "shipprint"
	}
	if config.Job == "" {
		config.Job = "shipprint"
	}
	if len(config.HistogramBuckets) == 0 {
		config.HistogramBuckets = prometheus.DefBuckets
	}

	m := &PrintMetrics{
		config:   config,
		registry: prometheus.NewRegistry(),
	}

	m.recordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      MetricRecordsTotal,
			Help:      "Records processed, by document kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)
	m.jobFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      MetricJobFailuresTotal,
			Help:      "Jobs that failed before processing any record.",
		},
		[]string{"kind"},
	)
	m.recordDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      MetricRecordDurationSeconds,
			Help:      "Time spent processing one record.",
			Buckets:   config.HistogramBuckets,
		},
		[]string{"kind"},
	)
	m.lastRunTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: config.Namespace,
		Name:      MetricLastRunTimestamp,
		Help:      "Unix time of the last completed run.",
	})
	m.lastRunErrors = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: config.Namespace,
		Name:      MetricLastRunErrors,
		Help:      "Errors reported by the last completed run.",
	})

	m.registry.MustRegister(
		m.recordsTotal,
		m.jobFailuresTotal,
		m.recordDuration,
		m.lastRunTimestamp,
		m.lastRunErrors,
	)
	return m
}

// RecordOutcome counts one processed record.
func (m *PrintMetrics) RecordOutcome(kind printing.DocKind, outcome printing.Outcome, d time.Duration) {
	if m == nil {
		return
	}
	m.recordsTotal.WithLabelValues(kind.String(), outcome.String()).Inc()
	m.recordDuration.WithLabelValues(kind.String()).Observe(d.Seconds())
}

// RecordJobFailure counts a job that failed before iterating its records.
func (m *PrintMetrics) RecordJobFailure(kind printing.DocKind) {
	if m == nil {
		return
	}
	m.jobFailuresTotal.WithLabelValues(kind.String()).Inc()
}

// RecordRun stores the totals of a finished run.
func (m *PrintMetrics) RecordRun(summary *printing.RunSummary, finishedAt time.Time) {
	if m == nil || summary == nil {
		return
	}
	m.lastRunTimestamp.Set(float64(finishedAt.Unix()))
	m.lastRunErrors.Set(float64(summary.Errors()))
}

// Registry returns the underlying registry.
func (m *PrintMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// PushEnabled reports whether a Pushgateway is configured.
func (m *PrintMetrics) PushEnabled() bool {
	return m != nil && m.config.PushgatewayURL != ""
}

// Push replaces this job's metric group on the Pushgateway. It is a no-op
// when no gateway is configured.
func (m *PrintMetrics) Push(ctx context.Context) error {
	if !m.PushEnabled() {
		return nil
	}
	err := push.New(m.config.PushgatewayURL, m.config.Job).
		Gatherer(m.registry).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}
