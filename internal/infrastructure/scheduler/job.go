package scheduler

import (
	"time"

	"github.com/google/uuid"

	"github.com/shipprint/backend/internal/domain/printing"
)

// PrintJobStatus represents the status of one job type within a run
type PrintJobStatus string

const (
	PrintJobStatusPending PrintJobStatus = "PENDING"
	PrintJobStatusRunning PrintJobStatus = "RUNNING"
	PrintJobStatusSuccess PrintJobStatus = "SUCCESS"
	PrintJobStatusPartial PrintJobStatus = "PARTIAL"
	PrintJobStatusFailed  PrintJobStatus = "FAILED"
)

// PrintJob tracks one job type (packing slips or labels) over one window
type PrintJob struct {
	ID          uuid.UUID
	RunID       uuid.UUID
	Kind        printing.DocKind
	Window      printing.TimeWindow
	Status      PrintJobStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time

	TotalRecords int
	SuccessCount int
	FailedCount  int
	SkippedCount int
	FailedKeys   []string
}

// NewPrintJob creates a new pending print job
func NewPrintJob(runID uuid.UUID, kind printing.DocKind, window printing.TimeWindow) *PrintJob {
	return &PrintJob{
		ID:     uuid.New(),
		RunID:  runID,
		Kind:   kind,
		Window: window,
		Status: PrintJobStatusPending,
	}
}

// Start marks the job as running
func (j *PrintJob) Start() {
	now := time.Now()
	j.Status = PrintJobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

// Complete records the job report and derives the final status
func (j *PrintJob) Complete(report *printing.JobReport) error {
	if j.Status != PrintJobStatusRunning {
		return ErrJobNotRunning
	}
	now := time.Now()
	j.TotalRecords = report.Total
	j.SuccessCount = report.Success
	j.FailedCount = report.Errors
	j.SkippedCount = report.Skipped
	j.CompletedAt = &now
	j.FailedKeys = j.FailedKeys[:0]
	for _, res := range report.Results {
		if res.Outcome == printing.OutcomeFailed {
			j.FailedKeys = append(j.FailedKeys, res.Key)
		}
	}

	switch {
	case report.JobErr != nil:
		j.Status = PrintJobStatusFailed
		j.Error = report.JobErr.Error()
	case j.FailedCount == 0:
		j.Status = PrintJobStatusSuccess
	case j.SuccessCount > 0 || j.SkippedCount > 0:
		j.Status = PrintJobStatusPartial
	default:
		j.Status = PrintJobStatusFailed
	}
	return nil
}

// Fail marks the job as failed
func (j *PrintJob) Fail(err string) {
	now := time.Now()
	j.Status = PrintJobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// Duration returns how long the job ran, zero until completed
func (j *PrintJob) Duration() time.Duration {
	if j.StartedAt == nil || j.CompletedAt == nil {
		return 0
	}
	return j.CompletedAt.Sub(*j.StartedAt)
}
