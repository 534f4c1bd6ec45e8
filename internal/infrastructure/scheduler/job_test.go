package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipprint/backend/internal/domain/printing"
)

func newTestJob() *PrintJob {
	start := time.Date(2026, 2, 2, 13, 30, 0, 0, time.UTC)
	return NewPrintJob(uuid.New(), printing.DocKindPackingSlip, printing.TimeWindow{Start: start, End: start.Add(time.Hour)})
}

func TestNewPrintJob(t *testing.T) {
	runID := uuid.New()
	job := NewPrintJob(runID, printing.DocKindLabel, printing.TimeWindow{})

	assert.NotEqual(t, uuid.Nil, job.ID)
	assert.Equal(t, runID, job.RunID)
	assert.Equal(t, printing.DocKindLabel, job.Kind)
	assert.Equal(t, PrintJobStatusPending, job.Status)
	assert.Nil(t, job.StartedAt)
	assert.Zero(t, job.Duration())
}

func TestPrintJob_Complete(t *testing.T) {
	tests := []struct {
		name    string
		results []printing.Result
		jobErr  error
		status  PrintJobStatus
	}{
		{
			name:    "all delivered",
			results: []printing.Result{printing.Delivered("a", "ka", "")},
			status:  PrintJobStatusSuccess,
		},
		{
			name:   "empty window",
			status: PrintJobStatusSuccess,
		},
		{
			name: "some failed",
			results: []printing.Result{
				printing.Delivered("a", "ka", ""),
				printing.Failed("b", "kb", errors.New("x")),
			},
			status: PrintJobStatusPartial,
		},
		{
			name: "skipped and failed",
			results: []printing.Result{
				printing.Skipped("a", "ka"),
				printing.Failed("b", "kb", errors.New("x")),
			},
			status: PrintJobStatusPartial,
		},
		{
			name:    "all failed",
			results: []printing.Result{printing.Failed("b", "kb", errors.New("x"))},
			status:  PrintJobStatusFailed,
		},
		{
			name:   "job level error",
			jobErr: errors.New("upstream unavailable"),
			status: PrintJobStatusFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := newTestJob()
			job.Start()

			report := printing.NewJobReport(job.Kind, job.Window)
			for _, r := range tt.results {
				report.Add(r)
			}
			if tt.jobErr != nil {
				report.Fail(tt.jobErr)
			}

			require.NoError(t, job.Complete(report))
			assert.Equal(t, tt.status, job.Status)
			assert.NotNil(t, job.CompletedAt)
			assert.Equal(t, report.Errors, len(job.FailedKeys))
			if tt.jobErr != nil {
				assert.Equal(t, tt.jobErr.Error(), job.Error)
			}
		})
	}
}

func TestPrintJob_CompleteRequiresStart(t *testing.T) {
	job := newTestJob()
	err := job.Complete(printing.NewJobReport(job.Kind, job.Window))
	assert.ErrorIs(t, err, ErrJobNotRunning)
}

func TestPrintJob_Fail(t *testing.T) {
	job := newTestJob()
	job.Start()
	job.Fail("context canceled")

	assert.Equal(t, PrintJobStatusFailed, job.Status)
	assert.Equal(t, "context canceled", job.Error)
	assert.GreaterOrEqual(t, job.Duration(), time.Duration(0))
}
