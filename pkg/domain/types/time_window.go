package types

import (
	"fmt"
	"time"
)

// TimeWindow is the number of months of company history to review
type TimeWindow int

const DefaultTimeWindow = TimeWindow(24)

// AllTimeWindows returns the supported time windows in months
func AllTimeWindows() []TimeWindow {
	return []TimeWindow{6, 12, 24, 36, 64, 120}
}

// IsValid checks whether the window is one of the supported values
func (w TimeWindow) IsValid() bool {
	for _, v := range AllTimeWindows() {
		if w == v {
			return true
		}
	}
	return false
}

// Months returns the window length in months
func (w TimeWindow) Months() int {
	return int(w)
}

// Duration approximates the window as a wall-clock duration, used for
// citation freshness checks.
func (w TimeWindow) Duration() time.Duration {
	return time.Duration(w) * 30 * 24 * time.Hour
}

// ParseTimeWindow validates months as a supported window. Zero defaults to
// DefaultTimeWindow.
func ParseTimeWindow(months int) (TimeWindow, error) {
	if months == 0 {
		return DefaultTimeWindow, nil
	}
	w := TimeWindow(months)
	if !w.IsValid() {
		return 0, fmt.Errorf("unsupported time window: %d months", months)
	}
	return w, nil
}
