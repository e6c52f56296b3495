package training

import "time"

// DayNumber returns the 1-indexed training day for today given the class
// start date. Not clamped: before the start it can be zero or negative, and
// after the end it can exceed TotalDays. Callers tolerate out-of-range days
// (an out-of-range schedule lookup is simply empty).
func DayNumber(start, today time.Time) int {
	return daysBetween(start, today) + 1
}

// TotalDays returns the inclusive length of the class in days.
func TotalDays(start, end time.Time) int {
	return daysBetween(start, end) + 1
}

func daysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a) / (24 * time.Hour))
}
