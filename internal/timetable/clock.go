package timetable

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ClockTime is a time of day stored as minutes since midnight. Periods
// compare and serialize clock times without any date or zone attached, so
// the resolver stays a pure function over caller-supplied timestamps.
type ClockTime int

// ParseClock parses an "HH:MM" string into a ClockTime.
func ParseClock(s string) (ClockTime, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("invalid clock time %q: expected HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: expected HH:MM", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: expected HH:MM", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock time %q: out of range", s)
	}
	return ClockTime(h*60 + m), nil
}

// ClockOf extracts the time-of-day component of a timestamp.
// Seconds are truncated; a period boundary is minute-granular.
func ClockOf(t time.Time) ClockTime {
	return ClockTime(t.Hour()*60 + t.Minute())
}

// Hour returns the hour component (0-23).
func (t ClockTime) Hour() int {
	return int(t) / 60
}

// Minute returns the minute component (0-59).
func (t ClockTime) Minute() int {
	return int(t) % 60
}

func (t ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// MarshalJSON renders the clock time as an "HH:MM" string.
func (t ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON parses an "HH:MM" JSON string.
func (t *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
