// Package calendar holds whole-day date arithmetic. Every date is a UTC midnight.
package calendar

import "time"

// Layout is the wire format for dates.
const Layout = "2006-01-02"

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Date builds a UTC midnight.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// AddDays shifts a date by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}

// DaysBetween returns the number of days from a to b, negative when b is earlier.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// InclusiveDays counts the days in [start, end], or 0 when end is before start.
func InclusiveDays(start, end time.Time) int {
	return max(0, DaysBetween(start, end)+1)
}

// Earlier returns the earlier of two dates.
func Earlier(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}

	return a
}

// Parse reads a Layout date.
func Parse(s string) (time.Time, error) {
	return time.ParseInLocation(Layout, s, time.UTC)
}
