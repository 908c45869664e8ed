package utils

import (
	"testing"
	"time"
)

func TestDaysBetween(t *testing.T) {
	loc := time.UTC
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{
			"same day different hours",
			time.Date(2026, 3, 10, 8, 0, 0, 0, loc),
			time.Date(2026, 3, 10, 23, 0, 0, 0, loc),
			0,
		},
		{
			"late evening still counts the full day",
			time.Date(2026, 3, 10, 23, 59, 0, 0, loc),
			time.Date(2026, 3, 13, 0, 0, 0, 0, loc),
			3,
		},
		{
			"early morning to late night",
			time.Date(2026, 3, 10, 0, 1, 0, 0, loc),
			time.Date(2026, 3, 12, 23, 59, 0, 0, loc),
			2,
		},
		{
			"end before start is negative",
			time.Date(2026, 3, 13, 0, 0, 0, 0, loc),
			time.Date(2026, 3, 10, 0, 0, 0, 0, loc),
			-3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysBetween(tt.start, tt.end); got != tt.want {
				t.Errorf("DaysBetween() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDaysBetweenAcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}

	// US DST starts 2026-03-08: Mar 7 to Mar 10 is 71 wall-clock hours
	// but still three calendar days.
	start := time.Date(2026, 3, 7, 12, 0, 0, 0, ny)
	end := time.Date(2026, 3, 10, 0, 0, 0, 0, ny)
	if got := DaysBetween(start, end); got != 3 {
		t.Errorf("DaysBetween across spring-forward = %d, want 3", got)
	}

	// Fall-back: Nov 1 2026, 73 wall-clock hours over three days.
	start = time.Date(2026, 10, 31, 12, 0, 0, 0, ny)
	end = time.Date(2026, 11, 3, 0, 0, 0, 0, ny)
	if got := DaysBetween(start, end); got != 3 {
		t.Errorf("DaysBetween across fall-back = %d, want 3", got)
	}
}

func TestDaysBetweenMixedLocations(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}

	// A server-local clock against a UTC-stored date column must still
	// count whole calendar days.
	start := time.Date(2026, 1, 10, 18, 0, 0, 0, chicago)
	end := time.Date(2026, 1, 13, 0, 0, 0, 0, time.UTC)
	if got := DaysBetween(start, end); got != 3 {
		t.Errorf("DaysBetween(Chicago, UTC) = %d, want 3", got)
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:00", 540, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"09:60", 0, true},
		{"9am", 0, true},
		{"", 0, true},
		{"09:00:00", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseClock(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseClock(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseClock(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "00:00"},
		{540, "09:00"},
		{570, "09:30"},
		{1439, "23:59"},
	}

	for _, tt := range tests {
		if got := FormatClock(tt.minutes); got != tt.want {
			t.Errorf("FormatClock(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestClockRoundTrip(t *testing.T) {
	for _, s := range []string{"00:00", "08:15", "12:00", "17:45", "23:59"} {
		min, err := ParseClock(s)
		if err != nil {
			t.Fatalf("ParseClock(%q): %v", s, err)
		}
		if back := FormatClock(min); back != s {
			t.Errorf("round trip %q -> %d -> %q", s, min, back)
		}
	}
}
