package astro

import "time"

// altitudeFunc returns a body's altitude in degrees at time t.
type altitudeFunc func(t time.Time) float64

type crossing int

const (
	crossingUp crossing = iota
	crossingDown
)

const (
	solverSteps     = 48 // samples across a day, one per 30 minutes
	solverTolerance = 30 * time.Second
)

// findCrossing locates the time in [start, end] where f crosses zero in
// the requested direction, by sampling for a sign change and bisecting
// the bracket. Returns ok=false when no crossing occurs in the window,
// which is a legitimate outcome (circumpolar moon, polar sun).
func findCrossing(f altitudeFunc, start, end time.Time, dir crossing) (time.Time, bool) {
	if !start.Before(end) {
		return time.Time{}, false
	}

	interval := end.Sub(start) / time.Duration(solverSteps-1)
	prevT := start
	prevAlt := f(prevT)

	for i := 1; i < solverSteps; i++ {
		t := start.Add(time.Duration(i) * interval)
		alt := f(t)
		if brackets(prevAlt, alt, dir) {
			return bisect(f, prevT, t, dir)
		}
		prevT, prevAlt = t, alt
	}
	return time.Time{}, false
}

func brackets(a, b float64, dir crossing) bool {
	if dir == crossingUp {
		return a < 0 && b >= 0
	}
	return a > 0 && b <= 0
}

func bisect(f altitudeFunc, a, b time.Time, dir crossing) (time.Time, bool) {
	altA := f(a)
	if !brackets(altA, f(b), dir) {
		return time.Time{}, false
	}

	for b.Sub(a) > solverTolerance {
		mid := a.Add(b.Sub(a) / 2)
		altM := f(mid)
		if brackets(altA, altM, dir) {
			b = mid
		} else {
			a = mid
			altA = altM
		}
	}
	return a.Add(b.Sub(a) / 2), true
}
