// Package week holds the calendar arithmetic for the weekly meal plan.
// Weeks start on Monday at local midnight; dates travel as YYYY-MM-DD.
package week

import (
	"fmt"
	"time"
)

const Layout = "2006-01-02"

// StartOfWeek returns Monday 00:00 of the week containing t, in t's location.
func StartOfWeek(t time.Time) time.Time {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return midnight.AddDate(0, 0, -DayIndex(t))
}

// DayIndex returns the weekday of t with Monday as 0 and Sunday as 6.
func DayIndex(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 6
	}
	return wd - 1
}

// ISODate formats t from its own calendar fields, without converting to UTC.
func ISODate(t time.Time) string {
	y, m, d := t.Date()
	return fmt.Sprintf("%04d-%02d-%02d", y, int(m), d)
}

// ParseISODate parses YYYY-MM-DD as local midnight.
func ParseISODate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// IsWeekStart reports whether s is a valid date falling on a Monday.
func IsWeekStart(s string) bool {
	t, err := ParseISODate(s)
	if err != nil {
		return false
	}
	return t.Weekday() == time.Monday
}

// Shift moves weekStart by n whole weeks. Calendar days are used so a DST
// change never knocks the result off midnight.
func Shift(weekStart time.Time, n int) time.Time {
	return weekStart.AddDate(0, 0, 7*n)
}

// DayDate returns the date of day (0 = Monday) within the week.
func DayDate(weekStart time.Time, day int) time.Time {
	return weekStart.AddDate(0, 0, day)
}

// RangeLabel renders the navigator label, e.g. "Mar 2 - Mar 8, 2026".
func RangeLabel(weekStart time.Time) string {
	end := DayDate(weekStart, 6)
	return fmt.Sprintf("%s - %s, %d", weekStart.Format("Jan 2"), end.Format("Jan 2"), end.Year())
}
