package recurrence

import (
	"errors"
	"time"
)

// DefaultMaxOccurrences bounds how many dates a single pattern may generate.
// A multi-year daily pattern would otherwise expand without limit.
const DefaultMaxOccurrences = 366

// Pattern describes a date range plus the weekdays on which occurrences fall.
// Weekday selectors use a 0=Sunday..6=Saturday numbering.
type Pattern struct {
	StartDate  time.Time
	EndDate    time.Time
	DaysOfWeek []int
}

var (
	// ErrWindowInverted indicates the pattern end date precedes its start date.
	ErrWindowInverted = errors.New("recurrence: end date precedes start date")
	// ErrNoWeekdays indicates the pattern selects no weekdays at all.
	ErrNoWeekdays = errors.New("recurrence: at least one weekday is required")
	// ErrInvalidWeekday indicates a weekday selector outside 0..6.
	ErrInvalidWeekday = errors.New("recurrence: weekday selectors must be between 0 and 6")
	// ErrTooManyOccurrences indicates the pattern would expand past the
	// configured occurrence cap.
	ErrTooManyOccurrences = errors.New("recurrence: pattern generates too many dates")
)

// Expander turns recurrence patterns into concrete calendar dates.
type Expander struct {
	maxOccurrences int
}

// NewExpander constructs an Expander with the given occurrence cap. A
// non-positive cap falls back to DefaultMaxOccurrences.
func NewExpander(maxOccurrences int) *Expander {
	if maxOccurrences <= 0 {
		maxOccurrences = DefaultMaxOccurrences
	}
	return &Expander{maxOccurrences: maxOccurrences}
}

// Expand walks every calendar date from StartDate through EndDate inclusive
// and keeps the dates whose weekday is selected by the pattern. The result is
// ordered and the expansion is a pure function of its input.
func (e *Expander) Expand(pattern Pattern) ([]time.Time, error) {
	start := dateOnly(pattern.StartDate)
	end := dateOnly(pattern.EndDate)

	if end.Before(start) {
		return nil, ErrWindowInverted
	}
	if len(pattern.DaysOfWeek) == 0 {
		return nil, ErrNoWeekdays
	}

	selected := make(map[int]struct{}, len(pattern.DaysOfWeek))
	for _, day := range pattern.DaysOfWeek {
		if day < 0 || day > 6 {
			return nil, ErrInvalidWeekday
		}
		selected[day] = struct{}{}
	}

	var dates []time.Time
	for current := start; !current.After(end); current = current.AddDate(0, 0, 1) {
		// time.Weekday already numbers Sunday as 0.
		if _, ok := selected[int(current.Weekday())]; !ok {
			continue
		}
		if len(dates) >= e.maxOccurrences {
			return nil, ErrTooManyOccurrences
		}
		dates = append(dates, current)
	}

	return dates, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
