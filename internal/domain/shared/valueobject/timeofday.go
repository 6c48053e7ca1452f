package valueobject

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time in minutes after midnight
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM" (24h)
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q, expected HH:MM", s)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

// TimeOfDayFrom extracts the wall-clock time from t in t's location
func TimeOfDayFrom(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

// String formats as HH:MM
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// InWindow reports whether t falls in [open, close).
// A close before open is an overnight window; open == close means always open.
func (t TimeOfDay) InWindow(open, close TimeOfDay) bool {
	if open == close {
		return true
	}
	if open < close {
		return t >= open && t < close
	}
	return t >= open || t < close
}
