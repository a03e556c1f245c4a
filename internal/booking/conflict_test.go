package booking

import (
	"testing"
	"time"
)

func TestInterval_Overlaps(t *testing.T) {
	t.Parallel()

	mustParse := func(value string) TimeOfDay {
		t.Helper()
		tod, err := ParseTimeOfDay(value)
		if err != nil {
			t.Fatalf("failed to parse %q: %v", value, err)
		}
		return tod
	}

	cases := []struct {
		name     string
		a, b     Interval
		overlaps bool
	}{
		{
			name:     "identical windows overlap",
			a:        Interval{mustParse("09:00"), mustParse("10:00")},
			b:        Interval{mustParse("09:00"), mustParse("10:00")},
			overlaps: true,
		},
		{
			name:     "partial overlap at the end",
			a:        Interval{mustParse("09:00"), mustParse("10:30")},
			b:        Interval{mustParse("10:00"), mustParse("11:00")},
			overlaps: true,
		},
		{
			name:     "containment overlaps",
			a:        Interval{mustParse("09:00"), mustParse("12:00")},
			b:        Interval{mustParse("10:00"), mustParse("11:00")},
			overlaps: true,
		},
		{
			name:     "back to back does not overlap",
			a:        Interval{mustParse("09:00"), mustParse("10:00")},
			b:        Interval{mustParse("10:00"), mustParse("11:00")},
			overlaps: false,
		},
		{
			name:     "back to back reversed does not overlap",
			a:        Interval{mustParse("10:00"), mustParse("11:00")},
			b:        Interval{mustParse("09:00"), mustParse("10:00")},
			overlaps: false,
		},
		{
			name:     "disjoint windows do not overlap",
			a:        Interval{mustParse("08:00"), mustParse("09:00")},
			b:        Interval{mustParse("13:00"), mustParse("14:00")},
			overlaps: false,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.a.Overlaps(tc.b); got != tc.overlaps {
				t.Fatalf("Overlaps(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.overlaps)
			}
			if got := tc.b.Overlaps(tc.a); got != tc.overlaps {
				t.Fatalf("Overlaps is not symmetric for %v and %v", tc.a, tc.b)
			}
		})
	}
}

func TestFindConflicts_ExcludesSelfAndSorts(t *testing.T) {
	t.Parallel()

	date := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	existing := []Booking{
		{ID: 3, RoomID: 1, Date: date, Start: 11 * 60, End: 12 * 60},
		{ID: 1, RoomID: 1, Date: date, Start: 9 * 60, End: 10 * 60},
		{ID: 2, RoomID: 1, Date: date, Start: 9*60 + 30, End: 10*60 + 30},
	}
	window := Interval{Start: 9 * 60, End: 12 * 60}

	conflicts := FindConflicts(existing, window, 2)
	if len(conflicts) != 2 {
		t.Fatalf("expected 2 conflicts, got %d", len(conflicts))
	}
	if conflicts[0].ID != 1 || conflicts[1].ID != 3 {
		t.Fatalf("expected conflicts ordered by start time [1 3], got [%d %d]", conflicts[0].ID, conflicts[1].ID)
	}
}

func TestFindConflicts_NoExclusionWithZeroID(t *testing.T) {
	t.Parallel()

	existing := []Booking{
		{ID: 0, Start: 9 * 60, End: 10 * 60},
	}
	window := Interval{Start: 9 * 60, End: 10 * 60}

	if got := FindConflicts(existing, window, 0); len(got) != 1 {
		t.Fatalf("expected zero excludeID to disable exclusion, got %d conflicts", len(got))
	}
	if !HasConflict(existing, window, 0) {
		t.Fatal("HasConflict should report the overlap")
	}
}
