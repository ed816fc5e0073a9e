package astro

import (
	"math"
	"time"
)

// sunsetAltitude is the Sun's center altitude when its apparent upper
// limb touches the horizon under standard refraction, in degrees.
const sunsetAltitude = -0.833

// sunEquatorial returns the Sun's approximate geocentric RA/Dec in
// degrees, via the simplified NOAA/Meeus solar position model
// (arcminute-level accuracy).
func sunEquatorial(t time.Time) (ra, dec float64) {
	d := daysSinceJ2000(t)

	g := deg2rad(357.529 + 0.98560028*d) // mean anomaly
	q := deg2rad(280.459 + 0.98564736*d) // mean longitude

	// Ecliptic longitude with equation of center.
	lambda := q + deg2rad(1.915)*math.Sin(g) + deg2rad(0.020)*math.Sin(2*g)

	eps := deg2rad(23.439 - 0.00000036*d)

	x := math.Cos(lambda)
	y := math.Cos(eps) * math.Sin(lambda)
	z := math.Sin(eps) * math.Sin(lambda)

	raRad := math.Atan2(y, x)
	if raRad < 0 {
		raRad += 2 * math.Pi
	}
	return rad2deg(raRad), rad2deg(math.Asin(z))
}

// sunAltitude computes the Sun's geometric altitude in degrees for an
// observer at (lat, lon) at time t.
func sunAltitude(lat, lon float64, t time.Time) float64 {
	ra, dec := sunEquatorial(t)

	raRad := deg2rad(ra)
	decRad := deg2rad(dec)
	latRad := deg2rad(lat)

	h := wrapHourAngle(deg2rad(localSiderealDeg(t, lon)) - raRad)

	sinAlt := math.Sin(latRad)*math.Sin(decRad) + math.Cos(latRad)*math.Cos(decRad)*math.Cos(h)
	return rad2deg(math.Asin(sinAlt))
}
