package astro

import (
	"math"
	"time"
)

var j2000 = time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)

func daysSinceJ2000(t time.Time) float64 {
	return t.UTC().Sub(j2000).Hours() / 24.0
}

func deg2rad(d float64) float64 {
	return d * math.Pi / 180.0
}

func rad2deg(r float64) float64 {
	return r * 180.0 / math.Pi
}

func normalize360(d float64) float64 {
	d = math.Mod(d, 360.0)
	if d < 0 {
		d += 360.0
	}
	return d
}

// localSiderealDeg returns the local sidereal time in degrees at the
// given longitude (east positive).
func localSiderealDeg(t time.Time, lon float64) float64 {
	d := daysSinceJ2000(t)
	gmst := 280.46061837 + 360.98564736629*d
	return normalize360(gmst + lon)
}

// wrapHourAngle folds an hour angle in radians into [-pi, pi].
func wrapHourAngle(h float64) float64 {
	for h > math.Pi {
		h -= 2 * math.Pi
	}
	for h < -math.Pi {
		h += 2 * math.Pi
	}
	return h
}
