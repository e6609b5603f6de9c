package sun

import (
	"math"

	"github.com/thurmanmarka/sunwindow/internal/solver"
	"github.com/thurmanmarka/sunwindow/internal/timeutil"
)

// Equatorial represents equatorial coordinates of the Sun.
type Equatorial struct {
	RA  float64 // right ascension, hours [0, 24)
	Dec float64 // declination, degrees
}

const (
	// Mean obliquity of the ecliptic at J2000.0 and its drift per day (deg).
	obliquityJ2000 = 23.439
	obliquityRate  = 0.00000036
)

// Position returns an approximate geocentric RA/Dec for the Sun, days after
// J2000.0.
//
// This is a standard low-precision solar position model, good to
// arcminute-level accuracy in RA/Dec, which is plenty for rise/set timing.
//
//	g   = mean anomaly of the Sun
//	q   = mean longitude of the Sun
//	L   = ecliptic longitude (q plus the equation of center)
//	eps = mean obliquity of the ecliptic
func Position(days float64) Equatorial {
	// Mean anomaly of the Sun (deg)
	g := timeutil.Deg2Rad(357.529 + 0.98560028*days)

	// Mean longitude of the Sun (deg)
	q := timeutil.Deg2Rad(280.459 + 0.98564736*days)

	// Ecliptic longitude with equation of center
	L := q +
		timeutil.Deg2Rad(1.915)*math.Sin(g) +
		timeutil.Deg2Rad(0.020)*math.Sin(2*g)

	eps := timeutil.Deg2Rad(obliquityJ2000 - obliquityRate*days)

	// Convert to equatorial
	x := math.Cos(L)
	y := math.Cos(eps) * math.Sin(L)
	z := math.Sin(eps) * math.Sin(L)

	ra := math.Atan2(y, x)
	if ra < 0 {
		ra += 2 * math.Pi
	}
	dec := math.Asin(timeutil.Clamp(z, -1, 1))

	return Equatorial{
		RA:  timeutil.Rad2Deg(ra) / 15.0,
		Dec: timeutil.Rad2Deg(dec),
	}
}

// unwrapRA returns next's RA shifted by whole days so that it is not behind
// prev's RA, keeping a 24h -> 0h wrap smooth for interpolation.
func unwrapRA(prev, next float64) float64 {
	for next < prev-12 {
		next += 24
	}
	for next > prev+12 {
		next -= 24
	}
	return next
}

// Midpoint returns the average of e and other, handling the RA wrap.
func (e Equatorial) Midpoint(other Equatorial) Equatorial {
	ra := unwrapRA(e.RA, other.RA)
	return Equatorial{
		RA:  timeutil.Normalize24((e.RA + ra) / 2),
		Dec: (e.Dec + other.Dec) / 2,
	}
}

// Interpolate evaluates the quadratic through three positions sampled at the
// start, middle and end of an interval, at fraction p of the interval.
func Interpolate(p [3]Equatorial, frac float64) Equatorial {
	ra1 := unwrapRA(p[0].RA, p[1].RA)
	ra2 := unwrapRA(ra1, p[2].RA)
	return Equatorial{
		RA:  timeutil.Normalize24(solver.Interpolate(p[0].RA, ra1, ra2, frac)),
		Dec: solver.Interpolate(p[0].Dec, p[1].Dec, p[2].Dec, frac),
	}
}
