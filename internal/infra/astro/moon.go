package astro

import (
	"math"
	"time"
)

// Synodic cycle constants for illumination and phase. The reference
// instant is the new moon of 2000-01-06 18:14 UTC.
const synodicMonthDays = 29.53058867

var referenceNewMoon = time.Date(2000, 1, 6, 18, 14, 0, 0, time.UTC)

// moonCycle returns the Moon's position in the synodic cycle at t as a
// 0-1 fraction (0 new, 0.5 full).
func moonCycle(t time.Time) float64 {
	days := t.Sub(referenceNewMoon).Hours() / 24.0
	cycle := math.Mod(days/synodicMonthDays, 1.0)
	if cycle < 0 {
		cycle++
	}
	return cycle
}

// litFraction converts a cycle position into the illuminated fraction
// of the lunar disk.
func litFraction(cycle float64) float64 {
	return (1.0 - math.Cos(2.0*math.Pi*cycle)) / 2.0
}

// moonEquatorial returns the Moon's approximate geocentric RA/Dec in
// degrees plus the Earth-Moon distance in km, from a truncated
// Meeus-style periodic series (the handful of dominant terms).
func moonEquatorial(t time.Time) (ra, dec, distanceKm float64) {
	d := daysSinceJ2000(t)

	// Fundamental arguments, deg/day linear models.
	lp := normalize360(218.3164477 + 13.17639648*d) // mean longitude
	ms := normalize360(357.5291092 + 0.98560028*d)  // Sun mean anomaly
	mm := normalize360(134.9633964 + 13.06499295*d) // Moon mean anomaly
	el := normalize360(297.8501921 + 12.19074912*d) // elongation from Sun
	f := normalize360(93.2720950 + 13.22935024*d)   // argument of latitude

	lpR := deg2rad(lp)
	msR := deg2rad(ms)
	mmR := deg2rad(mm)
	elR := deg2rad(el)
	fR := deg2rad(f)

	// Ecliptic longitude.
	lon := lpR +
		deg2rad(6.289)*math.Sin(mmR) +
		deg2rad(1.274)*math.Sin(2*elR-mmR) +
		deg2rad(0.658)*math.Sin(2*elR) +
		deg2rad(0.214)*math.Sin(2*mmR) -
		deg2rad(0.186)*math.Sin(msR) -
		deg2rad(0.114)*math.Sin(2*fR)

	// Ecliptic latitude.
	lat := deg2rad(5.128)*math.Sin(fR) +
		deg2rad(0.280)*math.Sin(mmR+fR) +
		deg2rad(0.277)*math.Sin(mmR-fR) +
		deg2rad(0.173)*math.Sin(2*elR-fR)

	eps := deg2rad(23.439291 - 0.0000137*d)

	x := math.Cos(lat) * math.Cos(lon)
	y := math.Cos(lat)*math.Sin(lon)*math.Cos(eps) - math.Sin(lat)*math.Sin(eps)
	z := math.Cos(lat)*math.Sin(lon)*math.Sin(eps) + math.Sin(lat)*math.Cos(eps)

	raRad := math.Atan2(y, x)
	if raRad < 0 {
		raRad += 2 * math.Pi
	}

	distanceKm = 385000.56 -
		20905.0*math.Cos(mmR) -
		3699.0*math.Cos(2*elR-mmR) -
		2956.0*math.Cos(2*elR) -
		570.0*math.Cos(2*mmR) -
		246.0*math.Cos(2*elR+mmR)

	return rad2deg(raRad), rad2deg(math.Asin(z)), distanceKm
}

// moonAltitude computes the Moon's topocentric altitude in degrees,
// correcting the geocentric position for horizontal parallax (the Moon
// is close enough that the observer's offset from Earth's center
// shifts it by up to a degree).
func moonAltitude(lat, lon float64, t time.Time) float64 {
	ra, dec, distanceKm := moonEquatorial(t)

	raRad := deg2rad(ra)
	decRad := deg2rad(dec)
	latRad := deg2rad(lat)

	h := wrapHourAngle(deg2rad(localSiderealDeg(t, lon)) - raRad)

	parallax := horizontalParallax(distanceKm)

	// Meeus sea-level observer factors.
	rhoSin := 0.99883 * math.Sin(latRad)
	rhoCos := 0.99883 * math.Cos(latRad)

	sinPar := math.Sin(parallax)
	cosDec := math.Cos(decRad)

	deltaRA := math.Atan2(-rhoCos*sinPar*math.Sin(h), cosDec-rhoCos*sinPar*math.Cos(h))
	decTopo := math.Atan2(math.Sin(decRad)-rhoSin*sinPar, cosDec-rhoCos*sinPar*math.Cos(h))

	hTopo := wrapHourAngle(h - deltaRA)

	sinAlt := math.Sin(latRad)*math.Sin(decTopo) + math.Cos(latRad)*math.Cos(decTopo)*math.Cos(hTopo)
	return rad2deg(math.Asin(sinAlt))
}

// moonHorizonAltitude is the altitude of the Moon's center at apparent
// rise/set: refraction plus upper-limb correction, with a small
// distance term because the angular size changes across the orbit.
func moonHorizonAltitude(distanceKm float64) float64 {
	const (
		meanDistanceKm = 384400.0
		baseHorizon    = -0.90
		distanceScale  = 0.6
	)
	if distanceKm <= 0 {
		return baseHorizon
	}
	frac := (distanceKm - meanDistanceKm) / meanDistanceKm
	return baseHorizon - distanceScale*frac
}

func horizontalParallax(distanceKm float64) float64 {
	const earthRadiusKm = 6378.14
	if distanceKm <= earthRadiusKm {
		return deg2rad(1.0)
	}
	return math.Asin(earthRadiusKm / distanceKm)
}
