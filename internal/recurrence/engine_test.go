package recurrence

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExpander_Expand_SelectsMatchingWeekdays(t *testing.T) {
	t.Parallel()

	expander := NewExpander(0)
	dates, err := expander.Expand(Pattern{
		StartDate:  date(2024, time.January, 1),
		EndDate:    date(2024, time.January, 31),
		DaysOfWeek: []int{1}, // Mondays
	})
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}

	want := []time.Time{
		date(2024, time.January, 1),
		date(2024, time.January, 8),
		date(2024, time.January, 15),
		date(2024, time.January, 22),
		date(2024, time.January, 29),
	}
	if len(dates) != len(want) {
		t.Fatalf("expected %d dates, got %d: %v", len(want), len(dates), dates)
	}
	for i, d := range want {
		if !dates[i].Equal(d) {
			t.Fatalf("dates[%d] = %v, want %v", i, dates[i], d)
		}
	}
}

func TestExpander_Expand_SingleDayWindow(t *testing.T) {
	t.Parallel()

	// 2024-06-03 is a Monday; the window is inclusive at both ends.
	expander := NewExpander(0)
	dates, err := expander.Expand(Pattern{
		StartDate:  date(2024, time.June, 3),
		EndDate:    date(2024, time.June, 3),
		DaysOfWeek: []int{1},
	})
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if len(dates) != 1 || !dates[0].Equal(date(2024, time.June, 3)) {
		t.Fatalf("expected single occurrence on 2024-06-03, got %v", dates)
	}
}

func TestExpander_Expand_NoMatchingWeekday(t *testing.T) {
	t.Parallel()

	expander := NewExpander(0)
	dates, err := expander.Expand(Pattern{
		StartDate:  date(2024, time.June, 3), // Monday
		EndDate:    date(2024, time.June, 7), // Friday
		DaysOfWeek: []int{0},                 // Sundays only
	})
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if len(dates) != 0 {
		t.Fatalf("expected no occurrences, got %v", dates)
	}
}

func TestExpander_Expand_Validation(t *testing.T) {
	t.Parallel()

	expander := NewExpander(0)

	t.Run("inverted window", func(t *testing.T) {
		t.Parallel()
		_, err := expander.Expand(Pattern{
			StartDate:  date(2024, time.June, 10),
			EndDate:    date(2024, time.June, 3),
			DaysOfWeek: []int{1},
		})
		if !errors.Is(err, ErrWindowInverted) {
			t.Fatalf("expected ErrWindowInverted, got %v", err)
		}
	})

	t.Run("no weekdays", func(t *testing.T) {
		t.Parallel()
		_, err := expander.Expand(Pattern{
			StartDate: date(2024, time.June, 3),
			EndDate:   date(2024, time.June, 10),
		})
		if !errors.Is(err, ErrNoWeekdays) {
			t.Fatalf("expected ErrNoWeekdays, got %v", err)
		}
	})

	t.Run("weekday out of range", func(t *testing.T) {
		t.Parallel()
		_, err := expander.Expand(Pattern{
			StartDate:  date(2024, time.June, 3),
			EndDate:    date(2024, time.June, 10),
			DaysOfWeek: []int{7},
		})
		if !errors.Is(err, ErrInvalidWeekday) {
			t.Fatalf("expected ErrInvalidWeekday, got %v", err)
		}
	})
}

func TestExpander_Expand_OccurrenceCap(t *testing.T) {
	t.Parallel()

	expander := NewExpander(3)
	_, err := expander.Expand(Pattern{
		StartDate:  date(2024, time.January, 1),
		EndDate:    date(2024, time.December, 31),
		DaysOfWeek: []int{1},
	})
	if !errors.Is(err, ErrTooManyOccurrences) {
		t.Fatalf("expected ErrTooManyOccurrences, got %v", err)
	}
}
