// Package astro implements the astronomical oracle consumed by the
// night analyzer: lunar illumination and phase from the synodic cycle,
// and moonrise/moonset/sunset from medium-precision position series
// with a generic altitude-crossing solver. Accuracy is a few minutes
// for event times, which is ample for planning an evening outdoors.
package astro

import (
	"time"

	"github.com/thomas-desmond/owltrek/internal/domain/nights"
)

// Ephemeris is the production nights.Ephemeris implementation. It is
// stateless and safe for concurrent use.
type Ephemeris struct{}

// NewEphemeris constructs the oracle.
func NewEphemeris() *Ephemeris {
	return &Ephemeris{}
}

// Illumination returns the Moon's lit fraction and cycle position at t.
func (e *Ephemeris) Illumination(t time.Time) nights.Illumination {
	cycle := moonCycle(t)
	return nights.Illumination{
		Fraction: litFraction(cycle),
		Phase:    cycle,
	}
}

// MoonEvents finds the Moon's rise and set inside the local calendar
// day of date. Either may be absent: the lunar day is about 50 minutes
// longer than ours, so roughly once a month a rise or set skips a
// calendar date entirely, and at high latitudes the Moon can stay
// above or below the horizon for days.
func (e *Ephemeris) MoonEvents(date time.Time, lat, lon float64) nights.MoonEvents {
	start, end := localDayBounds(date)

	altitude := func(t time.Time) float64 {
		_, _, distanceKm := moonEquatorial(t)
		return moonAltitude(lat, lon, t) - moonHorizonAltitude(distanceKm)
	}

	var events nights.MoonEvents
	if rise, ok := findCrossing(altitude, start, end, crossingUp); ok {
		events.Rise = rise
		events.HasRise = true
	}
	if set, ok := findCrossing(altitude, start, end, crossingDown); ok {
		events.Set = set
		events.HasSet = true
	}
	return events
}

// Sunset finds the Sun's downward horizon crossing in the local
// calendar day of date. ok is false during polar day and polar night.
func (e *Ephemeris) Sunset(date time.Time, lat, lon float64) (time.Time, bool) {
	start, end := localDayBounds(date)

	altitude := func(t time.Time) float64 {
		return sunAltitude(lat, lon, t) - sunsetAltitude
	}
	return findCrossing(altitude, start, end, crossingDown)
}

// localDayBounds returns the [00:00, 24:00) window of date's calendar
// day in its own location, DST-safe.
func localDayBounds(date time.Time) (start, end time.Time) {
	year, month, day := date.Date()
	loc := date.Location()
	start = time.Date(year, month, day, 0, 0, 0, 0, loc)
	end = time.Date(year, month, day+1, 0, 0, 0, 0, loc)
	return start, end
}

var _ nights.Ephemeris = (*Ephemeris)(nil)
