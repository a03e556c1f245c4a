package booking

import (
	"sort"
	"time"
)

// Booking represents the slice of a schedule that matters for conflict
// detection: which room, which date, and the occupied time window.
type Booking struct {
	ID     int64
	RoomID int64
	Date   time.Time
	Start  TimeOfDay
	End    TimeOfDay
}

// Interval is a half-open [Start, End) time window within a single day.
type Interval struct {
	Start TimeOfDay
	End   TimeOfDay
}

// Overlaps reports whether two half-open intervals share any time. The
// comparison is strict: a booking ending at 10:00 does not overlap one
// starting at 10:00, so back-to-back bookings are allowed.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && other.Start < i.End
}

// FindConflicts returns the bookings whose windows overlap the candidate
// window, ordered by start time then id. A booking whose id equals excludeID
// is skipped so that an update never conflicts with its own prior version;
// pass 0 when no exclusion applies.
func FindConflicts(existing []Booking, window Interval, excludeID int64) []Booking {
	var conflicts []Booking
	for _, b := range existing {
		if excludeID != 0 && b.ID == excludeID {
			continue
		}
		if window.Overlaps(Interval{Start: b.Start, End: b.End}) {
			conflicts = append(conflicts, b)
		}
	}

	sort.Slice(conflicts, func(i, j int) bool {
		if conflicts[i].Start == conflicts[j].Start {
			return conflicts[i].ID < conflicts[j].ID
		}
		return conflicts[i].Start < conflicts[j].Start
	})

	return conflicts
}

// HasConflict reports whether any existing booking overlaps the candidate
// window, honoring the same exclusion rule as FindConflicts.
func HasConflict(existing []Booking, window Interval, excludeID int64) bool {
	for _, b := range existing {
		if excludeID != 0 && b.ID == excludeID {
			continue
		}
		if window.Overlaps(Interval{Start: b.Start, End: b.End}) {
			return true
		}
	}
	return false
}
