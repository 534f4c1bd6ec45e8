package printing

// Result is the outcome of processing a single record
type Result struct {
	RecordID string
	Key      string
	Outcome  Outcome
	// PrintJobID is the print queue job id when one was reported
	PrintJobID string
	Err        error
}

// Delivered builds a delivered result
func Delivered(recordID, key, printJobID string) Result {
	return Result{RecordID: recordID, Key: key, Outcome: OutcomeDelivered, PrintJobID: printJobID}
}

// Skipped builds a result for a record that was already delivered
func Skipped(recordID, key string) Result {
	return Result{RecordID: recordID, Key: key, Outcome: OutcomeSkipped}
}

// Failed builds a failed result
func Failed(recordID, key string, err error) Result {
	return Result{RecordID: recordID, Key: key, Outcome: OutcomeFailed, Err: err}
}

// JobReport aggregates the results of one job type over one window
type JobReport struct {
	Kind    DocKind
	Window  TimeWindow
	Total   int
	Success int
	Skipped int
	Errors  int
	// JobErr is set when the job failed before per-record iteration
	JobErr  error
	Results []Result
}

// NewJobReport creates an empty report
func NewJobReport(kind DocKind, window TimeWindow) *JobReport {
	return &JobReport{Kind: kind, Window: window}
}

// Add records one result
func (r *JobReport) Add(res Result) {
	r.Total++
	switch res.Outcome {
	case OutcomeDelivered:
		r.Success++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeFailed:
		r.Errors++
	}
	r.Results = append(r.Results, res)
}

// Fail marks the whole job as failed
func (r *JobReport) Fail(err error) {
	r.JobErr = err
}

// HasErrors reports whether any record or the job itself failed
func (r *JobReport) HasErrors() bool {
	return r.Errors > 0 || r.JobErr != nil
}

// RunSummary aggregates all job reports of one invocation
type RunSummary struct {
	RunID   string
	Window  TimeWindow
	Reports []*JobReport
}

// Add appends a job report
func (s *RunSummary) Add(r *JobReport) {
	s.Reports = append(s.Reports, r)
}

// Success returns the number of delivered records across jobs
func (s *RunSummary) Success() int {
	n := 0
	for _, r := range s.Reports {
		n += r.Success
	}
	return n
}

// Skipped returns the number of skipped records across jobs
func (s *RunSummary) Skipped() int {
	n := 0
	for _, r := range s.Reports {
		n += r.Skipped
	}
	return n
}

// Errors returns record errors plus one per failed job
func (s *RunSummary) Errors() int {
	n := 0
	for _, r := range s.Reports {
		n += r.Errors
		if r.JobErr != nil {
			n++
		}
	}
	return n
}

// ExitCode maps the summary to the process exit contract: 0 clean, 1 any error
func (s *RunSummary) ExitCode() int {
	if s.Errors() > 0 {
		return 1
	}
	return 0
}
