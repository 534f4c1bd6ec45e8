package printing

import (
	"fmt"
	"time"
)

// Margins represents page margins in points
type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// TimeWindow is the half-open interval [Start, End) of business timestamps
// considered in one run
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies inside the window
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Duration returns the window length
func (w TimeWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// String formats the window in RFC3339 UTC
func (w TimeWindow) String() string {
	return fmt.Sprintf("[%s, %s)", w.Start.UTC().Format(time.RFC3339), w.End.UTC().Format(time.RFC3339))
}
