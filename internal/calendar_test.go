package internal

import (
	"testing"
	"time"
)

// date returns local midnight of an ISO date and fails the test on bad input
func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, ok := ParseISODate(s)
	if !ok {
		t.Fatalf("bad test date %q", s)
	}
	return d
}

func TestParseISODate(t *testing.T) {
	tests := []struct {
		input  string
		wantOK bool
		want   string
	}{
		{"2025-03-15", true, "2025-03-15"},
		{"2024-02-29", true, "2024-02-29"},
		{" 2025-01-01 ", true, "2025-01-01"},
		{"2025-3-5", true, "2025-03-05"},
		{"", false, ""},
		{"2025-03", false, ""},
		{"2025-03-15-01", false, ""},
		{"2025-00-10", false, ""},
		{"2025-01-00", false, ""},
		{"0000-01-10", false, ""},
		{"2025-ab-10", false, ""},
		{"2025-13-01", false, ""},
		{"2023-02-29", false, ""},
		{"2024-04-31", false, ""},
		{"15.03.2025", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseISODate(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseISODate(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if FormatISODate(got) != tt.want {
				t.Errorf("ParseISODate(%q) = %s, want %s", tt.input, FormatISODate(got), tt.want)
			}
			if got.Hour() != 0 || got.Minute() != 0 || got.Location() != time.Local {
				t.Errorf("ParseISODate(%q) = %v, want local midnight", tt.input, got)
			}
		})
	}
}

func TestFormatISODate(t *testing.T) {
	if got := FormatISODate(time.Time{}); got != "" {
		t.Errorf("FormatISODate(zero) = %q, want empty", got)
	}
	d := time.Date(2025, time.July, 4, 18, 30, 0, 0, time.Local)
	if got := FormatISODate(d); got != "2025-07-04" {
		t.Errorf("FormatISODate = %q, want 2025-07-04", got)
	}
}

func TestAddDays(t *testing.T) {
	tests := []struct {
		start string
		n     int
		want  string
	}{
		{"2025-01-31", 1, "2025-02-01"},
		{"2024-02-28", 1, "2024-02-29"},
		{"2025-03-01", -1, "2025-02-28"},
		{"2025-12-31", 1, "2026-01-01"},
		{"2025-06-10", 0, "2025-06-10"},
		{"2025-03-25", 14, "2025-04-08"},
	}

	for _, tt := range tests {
		got := FormatISODate(AddDays(date(t, tt.start), tt.n))
		if got != tt.want {
			t.Errorf("AddDays(%s, %d) = %s, want %s", tt.start, tt.n, got, tt.want)
		}
	}
}

func TestStartOfDay(t *testing.T) {
	in := time.Date(2025, time.May, 20, 23, 59, 59, 999, time.Local)
	got := StartOfDay(in)
	want := time.Date(2025, time.May, 20, 0, 0, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("StartOfDay = %v, want %v", got, want)
	}
}

func TestApplyTimeOfDay(t *testing.T) {
	base := time.Date(2025, time.May, 20, 0, 0, 0, 0, time.Local)

	tests := []struct {
		name       string
		timeOfDay  string
		wantHour   int
		wantMinute int
	}{
		{"regular", "08:30", 8, 30},
		{"midnight", "00:00", 0, 0},
		{"late", "23:59", 23, 59},
		{"empty uses default", "", 9, 0},
		{"no colon uses default", "0830", 9, 0},
		{"bad hour", "xx:15", 9, 15},
		{"bad minute", "07:yy", 7, 0},
		{"hour out of range", "25:10", 9, 10},
		{"minute out of range", "10:75", 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyTimeOfDay(base, tt.timeOfDay)
			if got.Hour() != tt.wantHour || got.Minute() != tt.wantMinute {
				t.Errorf("ApplyTimeOfDay(%q) = %02d:%02d, want %02d:%02d",
					tt.timeOfDay, got.Hour(), got.Minute(), tt.wantHour, tt.wantMinute)
			}
			if FormatISODate(got) != "2025-05-20" {
				t.Errorf("ApplyTimeOfDay changed the day: %v", got)
			}
		})
	}
}

func TestFormatDateShort(t *testing.T) {
	if got := FormatDateShort(date(t, "2025-03-05")); got != "05.03.2025" {
		t.Errorf("FormatDateShort = %q, want 05.03.2025", got)
	}
	if got := FormatDateShort(time.Time{}); got != "" {
		t.Errorf("FormatDateShort(zero) = %q, want empty", got)
	}
}

func TestAddMonthsClamped(t *testing.T) {
	tests := []struct {
		start string
		n     int
		want  string
	}{
		{"2025-01-31", 1, "2025-02-28"},
		{"2024-01-31", 1, "2024-02-29"},
		{"2025-01-31", 2, "2025-03-31"},
		{"2025-01-31", 3, "2025-04-30"},
		{"2025-11-15", 3, "2026-02-15"},
		{"2024-02-29", 12, "2025-02-28"},
		{"2024-02-29", 48, "2028-02-29"},
	}

	for _, tt := range tests {
		got := FormatISODate(addMonthsClamped(date(t, tt.start), tt.n))
		if got != tt.want {
			t.Errorf("addMonthsClamped(%s, %d) = %s, want %s", tt.start, tt.n, got, tt.want)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"2025-01-01", "2025-01-01", 0},
		{"2025-01-01", "2025-01-31", 30},
		{"2025-03-01", "2025-04-01", 31},
		{"2025-10-20", "2025-10-27", 7},
		{"2025-02-01", "2025-01-01", -31},
	}
	for _, tt := range tests {
		if got := daysBetween(date(t, tt.a), date(t, tt.b)); got != tt.want {
			t.Errorf("daysBetween(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
