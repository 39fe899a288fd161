package internal

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const isoDateLayout = "2006-01-02"

const defaultTimeOfDay = "09:00"

// ParseISODate parses a strict YYYY-MM-DD string as a calendar date in local time.
// Returns false for empty input, a wrong segment count, zero or non-numeric segments,
// and dates that do not exist (2024-02-30).
func ParseISODate(s string) (time.Time, bool) {
	return ParseISODateIn(s, time.Local)
}

// ParseISODateIn is ParseISODate for an explicit location
func ParseISODateIn(s string, loc *time.Location) (time.Time, bool) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	var ymd [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			return time.Time{}, false
		}
		ymd[i] = n
	}

	year, month, day := ymd[0], ymd[1], ymd[2]
	if month > 12 || day > daysIn(year, time.Month(month)) {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc), true
}

// FormatISODate formats a date as YYYY-MM-DD, or "" for the zero time
func FormatISODate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(isoDateLayout)
}

// AddDays shifts a date by n calendar days (n may be negative)
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// StartOfDay returns midnight of t's calendar day in t's location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ApplyTimeOfDay returns t's calendar day at the given local "HH:MM".
// A missing or colon-less string means 09:00; an unusable hour falls back
// to 9 and an unusable minute to 0.
func ApplyTimeOfDay(t time.Time, timeOfDay string) time.Time {
	if !strings.Contains(timeOfDay, ":") {
		timeOfDay = defaultTimeOfDay
	}
	parts := strings.Split(timeOfDay, ":")

	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || hour < 0 || hour > 23 {
		hour = 9
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || minute < 0 || minute > 59 {
		minute = 0
	}

	y, m, d := t.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, t.Location())
}

// FormatDateShort renders DD.MM.YYYY
func FormatDateShort(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%02d.%02d.%04d", t.Day(), int(t.Month()), t.Year())
}

// daysIn returns the number of days in the given month
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// dateClamped builds year/month/day, clamping day to the month's last day.
// month may be outside 1-12; it is normalized first.
func dateClamped(year int, month time.Month, day int, loc *time.Location) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	y, m, _ := first.Date()
	if last := daysIn(y, m); day > last {
		day = last
	}
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}

// addMonthsClamped adds n months to t, keeping t's day of month where it exists
// and using the last day of the target month otherwise (31 Jan + 1 = 28/29 Feb).
func addMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	return dateClamped(y, m+time.Month(n), d, t.Location())
}

// daysBetween returns the number of calendar days from a to b
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	// Unix seconds rather than Sub: a Duration overflows past ~292 years
	return int((db.Unix() - da.Unix()) / 86400)
}

// monthsBetween returns the number of calendar months from a's month to b's month
func monthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()-a.Month())
}
