package booking

import (
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input   string
		want    TimeOfDay
		wantErr bool
	}{
		{input: "00:00", want: 0},
		{input: "09:30", want: 9*60 + 30},
		{input: "23:59", want: 23*60 + 59},
		{input: "24:00", wantErr: true},
		{input: "9:75", wantErr: true},
		{input: "morning", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseTimeOfDay(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %v", tc.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTimeOfDay(%q) returned error: %v", tc.input, err)
			}
			if got != tc.want {
				t.Fatalf("ParseTimeOfDay(%q) = %d, want %d", tc.input, got, tc.want)
			}
		})
	}
}

func TestTimeOfDay_Rendering(t *testing.T) {
	t.Parallel()

	tod := TimeOfDay(13*60 + 5)
	if got := tod.String(); got != "13:05" {
		t.Fatalf("String() = %q, want %q", got, "13:05")
	}
	if got := tod.Clock(); got != "1:05 PM" {
		t.Fatalf("Clock() = %q, want %q", got, "1:05 PM")
	}

	morning := TimeOfDay(9 * 60)
	if got := morning.Clock(); got != "9:00 AM" {
		t.Fatalf("Clock() = %q, want %q", got, "9:00 AM")
	}
}

func TestDateOf_NormalizesToMidnightUTC(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("JST", 9*3600)
	stamp := time.Date(2024, 6, 3, 18, 45, 12, 0, loc)
	got := DateOf(stamp)

	want := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("DateOf(%v) = %v, want %v", stamp, got, want)
	}
}

func TestFormatDate(t *testing.T) {
	t.Parallel()

	date := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	if got := FormatDate(date); got != "Jan 2, 2024" {
		t.Fatalf("FormatDate = %q, want %q", got, "Jan 2, 2024")
	}
}
