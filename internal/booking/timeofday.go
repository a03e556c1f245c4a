package booking

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time expressed as minutes since midnight.
// Schedules carry a calendar date separately, so a compact minute offset is
// enough for interval comparisons.
type TimeOfDay int

// ParseTimeOfDay parses a "15:04" formatted wall-clock value.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("booking: invalid time of day %q", value)
	}
	return TimeOfDay(parsed.Hour()*60 + parsed.Minute()), nil
}

// String renders the time in 24-hour "15:04" form.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Clock renders the time in 12-hour "3:04 PM" form for human-facing messages.
func (t TimeOfDay) Clock() string {
	reference := time.Date(2000, time.January, 1, int(t)/60, int(t)%60, 0, 0, time.UTC)
	return reference.Format("3:04 PM")
}

// Valid reports whether the value falls within a single day.
func (t TimeOfDay) Valid() bool {
	return t >= 0 && t < 24*60
}

// DateOf normalizes a timestamp to its calendar date at midnight UTC.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a calendar date the way conflict messages present it.
func FormatDate(date time.Time) string {
	return date.Format("Jan 2, 2006")
}
