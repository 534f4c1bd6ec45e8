package printing

import (
	"errors"
	"fmt"
)

var (
	// ErrFetch is returned when the upstream data source or a remote document cannot be read
	ErrFetch = errors.New("fetch failed")

	// ErrSentinelCheck is returned when the delivery marker state cannot be determined
	ErrSentinelCheck = errors.New("sentinel check failed")

	// ErrRender is returned when a document cannot be built
	ErrRender = errors.New("render failed")

	// ErrSpool is returned when a document cannot be staged for the print queue
	ErrSpool = errors.New("spool failed")

	// ErrSubmission is returned when the print queue rejects a job
	ErrSubmission = errors.New("print submission failed")

	// ErrSentinelWrite is returned when a delivered document cannot be marked
	ErrSentinelWrite = errors.New("sentinel write failed")
)

// Stage names the pipeline step at which a record failed
type Stage string

const (
	StageSentinelCheck Stage = "sentinel_check"
	StageAcquire       Stage = "acquire"
	StageSpool         Stage = "spool"
	StageSubmit        Stage = "submit"
	StageMark          Stage = "mark_delivered"
)

// DeliveryError is a record-level failure. errors.Is matches both the stage
// sentinel (Kind) and the underlying cause.
type DeliveryError struct {
	Stage    Stage
	RecordID string
	Kind     error
	Cause    error
}

// NewDeliveryError creates a new DeliveryError
func NewDeliveryError(stage Stage, recordID string, kind, cause error) *DeliveryError {
	return &DeliveryError{
		Stage:    stage,
		RecordID: recordID,
		Kind:     kind,
		Cause:    cause,
	}
}

func (e *DeliveryError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: record %s: %v", e.Kind, e.RecordID, e.Cause)
	}
	return fmt.Sprintf("%s: record %s", e.Kind, e.RecordID)
}

func (e *DeliveryError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}
