package scheduler

import (
	"fmt"
	"time"

	"github.com/shipprint/backend/internal/domain/printing"
)

// MinutesPerDay bounds the interval length; intervals must divide it evenly
const MinutesPerDay = 24 * 60

// WindowConfig holds the window alignment settings
type WindowConfig struct {
	// IntervalMinutes is the run interval; must evenly divide 1440
	IntervalMinutes int
	// Lookback is how many intervals before the aligned end the window starts
	Lookback int
}

// DefaultWindowConfig returns the default configuration: 30 minute interval,
// two intervals of lookback so records delayed past one boundary are still caught
func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		IntervalMinutes: 30,
		Lookback:        2,
	}
}

// Validate validates the configuration
func (c WindowConfig) Validate() error {
	if c.IntervalMinutes <= 0 || MinutesPerDay%c.IntervalMinutes != 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidInterval, c.IntervalMinutes)
	}
	if c.Lookback < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidLookback, c.Lookback)
	}
	return nil
}

// Interval returns the interval as a duration
func (c WindowConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

// Retention is how long a delivery marker must outlive the run that wrote it.
// A record stays inside Lookback+1 consecutive windows at most.
func (c WindowConfig) Retention() time.Duration {
	return time.Duration(c.Lookback+1) * c.Interval()
}

// ComputeWindow returns the window for a run at now.
// end = floor(now / interval) * interval, start = end - lookback * interval.
// Runs anywhere inside the same interval get identical windows.
func ComputeWindow(now time.Time, cfg WindowConfig) (printing.TimeWindow, error) {
	if err := cfg.Validate(); err != nil {
		return printing.TimeWindow{}, err
	}

	intervalMs := int64(cfg.IntervalMinutes) * int64(time.Minute/time.Millisecond)
	nowMs := now.UnixMilli()

	endMs := floorDiv(nowMs, intervalMs) * intervalMs
	startMs := endMs - int64(cfg.Lookback)*intervalMs

	return printing.TimeWindow{
		Start: time.UnixMilli(startMs).UTC(),
		End:   time.UnixMilli(endMs).UTC(),
	}, nil
}

// floorDiv divides rounding toward negative infinity
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
