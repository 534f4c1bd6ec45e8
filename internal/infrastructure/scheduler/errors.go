package scheduler

import "errors"

var (
	// ErrInvalidInterval is returned when the interval length does not evenly divide a day
	ErrInvalidInterval = errors.New("interval minutes must be positive and evenly divide 1440")

	// ErrInvalidLookback is returned when the lookback multiplier is below one
	ErrInvalidLookback = errors.New("lookback must be at least one interval")

	// ErrJobNotRunning is returned when completing a job that was never started
	ErrJobNotRunning = errors.New("print job is not running")
)
