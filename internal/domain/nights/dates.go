package nights

import (
	"time"

	apperrors "github.com/thomas-desmond/owltrek/pkg/errors"
)

// DateWindow returns the local midnights of "today" and the following
// count-1 days in the given IANA timezone, as absolute instants.
//
// Each midnight is built from that day's own wall-clock rules rather
// than by adding 24h to the previous value, so days shortened or
// stretched by DST transitions stay calendar-correct. The result does
// not depend on the host's timezone; only now and the target zone
// matter.
func DateWindow(timezone string, count int, now time.Time) ([]time.Time, error) {
	if count < 1 {
		return nil, apperrors.Wrap("invalid_input", "day count must be at least 1", nil)
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, apperrors.Wrap("invalid_timezone", "unknown IANA timezone "+timezone, err)
	}

	year, month, day := now.In(loc).Date()
	window := make([]time.Time, 0, count)
	for i := 0; i < count; i++ {
		window = append(window, time.Date(year, month, day+i, 0, 0, 0, 0, loc))
	}
	return window, nil
}
