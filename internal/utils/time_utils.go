package utils

import (
	"time"
)

// Rolling P&L windows are anchored in UTC. They are recomputed lazily
// from the trade stream on read, so boundary crossings need no
// scheduled rollover job.

// StartOfDay returns 00:00:00 UTC of the given instant's day
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfWeek returns 00:00:00 UTC of the Monday of the given instant's week
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the preceding Monday-anchored week
	}
	return day.AddDate(0, 0, -(weekday - 1))
}

// StartOfMonth returns 00:00:00 UTC of the first day of the given instant's month
func StartOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
