package util

import "time"

// DateLayout is the canonical calendar-date format used across the service.
const DateLayout = "2006-01-02"

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// DateKey formats a timestamp as the calendar date in its own location.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}
