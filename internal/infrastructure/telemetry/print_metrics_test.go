package telemetry_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipprint/backend/internal/domain/printing"
	"github.com/shipprint/backend/internal/infrastructure/telemetry"
)

func TestNewPrintMetrics_Defaults(t *testing.T) {
	m := telemetry.NewPrintMetrics(telemetry.PrintMetricsConfig{})
	require.NotNil(t, m.Registry())
	assert.False(t, m.PushEnabled())
	assert.NoError(t, m.Push(context.Background()))

	m.RecordOutcome(printing.DocKindLabel, printing.OutcomeSkipped, time.Millisecond)
	families, err := m.Registry().Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "shipprint_records_total")
	assert.Contains(t, names, "shipprint_record_duration_seconds")
}

func TestPrintMetrics_Counters(t *testing.T) {
	m := telemetry.NewPrintMetrics(telemetry.PrintMetricsConfig{Namespace: "test", HistogramBuckets: prometheus.LinearBuckets(0.1, 0.1, 5)})

	m.RecordOutcome(printing.DocKindPackingSlip, printing.OutcomeDelivered, 200*time.Millisecond)
	m.RecordOutcome(printing.DocKindPackingSlip, printing.OutcomeDelivered, 300*time.Millisecond)
	m.RecordOutcome(printing.DocKindPackingSlip, printing.OutcomeFailed, time.Second)
	m.RecordJobFailure(printing.DocKindLabel)

	summary := &printing.RunSummary{}
	report := printing.NewJobReport(printing.DocKindPackingSlip, printing.TimeWindow{})
	report.Add(printing.Failed("o1", "k1", assert.AnError))
	summary.Add(report)
	m.RecordRun(summary, time.Unix(1770042600, 0))

	expected := `
# HELP test_records_total Records processed, by document kind and outcome.
# TYPE test_records_total counter
test_records_total{kind="packing-slip",outcome="DELIVERED"} 2
test_records_total{kind="packing-slip",outcome="FAILED"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "test_records_total"))

	expectedJobs := `
# HELP test_job_failures_total Jobs that failed before processing any record.
# TYPE test_job_failures_total counter
test_job_failures_total{kind="label"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expectedJobs), "test_job_failures_total"))

	expectedRun := `
# HELP test_last_run_errors Errors reported by the last completed run.
# TYPE test_last_run_errors gauge
test_last_run_errors 1
# HELP test_last_run_timestamp_seconds Unix time of the last completed run.
# TYPE test_last_run_timestamp_seconds gauge
test_last_run_timestamp_seconds 1.7700426e+09
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expectedRun),
		"test_last_run_errors", "test_last_run_timestamp_seconds"))
}

func TestPrintMetrics_NilSafe(t *testing.T) {
	var m *telemetry.PrintMetrics
	assert.NotPanics(t, func() {
		m.RecordOutcome(printing.DocKindLabel, printing.OutcomeDelivered, time.Second)
		m.RecordJobFailure(printing.DocKindLabel)
		m.RecordRun(&printing.RunSummary{}, time.Now())
	})
	assert.False(t, m.PushEnabled())
	assert.NoError(t, m.Push(context.Background()))
}

func TestPrintMetrics_Push(t *testing.T) {
	var gotMethod, gotPath, gotBody string
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()

	m := telemetry.NewPrintMetrics(telemetry.PrintMetricsConfig{PushgatewayURL: gateway.URL, Job: "nightly"})
	m.RecordOutcome(printing.DocKindLabel, printing.OutcomeDelivered, time.Second)

	require.True(t, m.PushEnabled())
	require.NoError(t, m.Push(context.Background()))
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/metrics/job/nightly", gotPath)
	assert.NotEmpty(t, gotBody)
}

func TestPrintMetrics_PushFailure(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer gateway.Close()

	m := telemetry.NewPrintMetrics(telemetry.PrintMetricsConfig{PushgatewayURL: gateway.URL})
	assert.Error(t, m.Push(context.Background()))
}
