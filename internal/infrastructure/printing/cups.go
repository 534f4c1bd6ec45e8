package printing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shipprint/backend/internal/domain/printing"
)

const (
	defaultLPPath    = "lp"
	defaultLPTimeout = 30 * time.Second
)

var lpRequestID = regexp.MustCompile(`request id is (\S+)`)

// SubmissionError reports a rejected print submission.
// It matches printing.ErrSubmission with errors.Is.
type SubmissionError struct {
	Printer string
	Path    string
	Stderr  string
	Cause   error
}

func (e *SubmissionError) Error() string {
	msg := fmt.Sprintf("failed to print %s to printer %q", e.Path, e.Printer)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *SubmissionError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the domain submission failure
func (e *SubmissionError) Is(target error) bool {
	return target == printing.ErrSubmission
}

// LPConfig contains configuration for the CUPS lp submitter
type LPConfig struct {
	// Printer is the CUPS destination name
	Printer string
	// BinaryPath is the lp command, searched in PATH when relative
	BinaryPath string
	// Timeout bounds one submission
	Timeout time.Duration
	// Logger for operations
	Logger *zap.Logger
}

// LPPrinter submits files to a CUPS queue with lp. Submission is
// fire-and-forget: success means the spooler accepted the job.
type LPPrinter struct {
	config *LPConfig
	logger *zap.Logger
}

// NewLPPrinter creates a CUPS submitter
func NewLPPrinter(config *LPConfig) (*LPPrinter, error) {
	if config == nil || strings.TrimSpace(config.Printer) == "" {
		return nil, errors.New("printer name is required")
	}
	if config.BinaryPath == "" {
		config.BinaryPath = defaultLPPath
	}
	if config.Timeout == 0 {
		config.Timeout = defaultLPTimeout
	}

	binaryPath, err := resolveBinaryPath(config.BinaryPath)
	if err != nil {
		return nil, fmt.Errorf("lp binary not found: %s: %w", config.BinaryPath, err)
	}
	config.BinaryPath = binaryPath

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &LPPrinter{
		config: config,
		logger: logger,
	}, nil
}

// Printer returns the destination queue name
func (p *LPPrinter) Printer() string {
	return p.config.Printer
}

// Submit sends a file to the printer and returns the spooler job id, if reported
func (p *LPPrinter) Submit(ctx context.Context, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.config.BinaryPath, "-d", p.config.Printer, path)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &SubmissionError{
			Printer: p.config.Printer,
			Path:    path,
			Stderr:  strings.TrimSpace(stderr.String()),
			Cause:   err,
		}
	}

	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		p.logger.Warn("lp reported warnings",
			zap.String("printer", p.config.Printer),
			zap.String("stderr", msg))
	}

	jobID := ParseLPJobID(stdout.String())
	p.logger.Debug("print job submitted",
		zap.String("printer", p.config.Printer),
		zap.String("path", path),
		zap.String("job_id", jobID))
	return jobID, nil
}

// ParseLPJobID extracts the job id from lp output such as
// "request id is Zebra-42 (1 file(s))"
func ParseLPJobID(output string) string {
	if m := lpRequestID.FindStringSubmatch(output); m != nil {
		return m[1]
	}
	return ""
}
