package utils

import (
	"fmt"
	"time"
)

// Clock times are zero-padded "HH:MM" strings throughout the scheduling
// tables, so plain string comparison orders them correctly within a day.

// ValidClockTime reports whether s is a zero-padded "HH:MM" time of day.
func ValidClockTime(s string) bool {
	_, err := ClockToMinutes(s)
	return err == nil
}

// ClockToMinutes converts "HH:MM" to minutes since midnight. Unpadded input
// is rejected: time.Parse would accept "9:00", but an unpadded value stored
// next to padded ones breaks the string ordering.
func ClockToMinutes(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil || t.Format("15:04") != s {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// AddMinutesToClock returns the clock time m minutes after s. The result is
// not wrapped at midnight: a slot running past 24:00 yields an hour >= 24,
// which keeps interval comparisons monotonic for same-day overlap checks.
func AddMinutesToClock(s string, m int) string {
	mins, err := ClockToMinutes(s)
	if err != nil {
		return s
	}
	mins += m
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}

// DateOnly truncates t to midnight UTC so date columns compare cleanly.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateKey formats t as the YYYY-MM-DD key used for client-side grouping.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// WeekBounds returns the Sunday and Saturday of the week containing date.
// The week starts on Sunday; this is a fixed business convention.
func WeekBounds(date time.Time) (time.Time, time.Time) {
	d := DateOnly(date)
	start := d.AddDate(0, 0, -int(d.Weekday()))
	end := start.AddDate(0, 0, 6)
	return start, end
}

// SameDate reports whether a and b fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	return DateKey(a) == DateKey(b)
}
