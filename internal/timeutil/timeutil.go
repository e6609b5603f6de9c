package timeutil

import "math"

// -----------------------------
// Time relative to J2000
// -----------------------------

const (
	// SecondsPerDay is the length of a UTC day in seconds.
	SecondsPerDay = 86400

	// J2000Unix is the J2000.0 epoch (2000-01-01 12:00:00 UTC) in Unix seconds.
	J2000Unix int64 = 946728000

	// UnixEpochJD is the Julian day number of 1970-01-01 00:00:00 UTC.
	UnixEpochJD = 2440587.5

	// SiderealRatio is the ratio of the sidereal to the solar rotation rate.
	SiderealRatio = 1.0027379

	// SiderealDegreesPerHour is how far the local meridian sweeps across the
	// sky per solar hour.
	SiderealDegreesPerHour = 15 * SiderealRatio

	// gmstAtJ2000 is the Greenwich mean sidereal time (degrees) at J2000.0.
	gmstAtJ2000 = 280.46061837
)

// DaysSinceJ2000 returns the number of (UTC) days between the J2000.0 epoch
// and the Unix time t, including the fraction of the day.
//
// Day 0.0 is 2000-01-01 12:00 UTC. This ignores the TT/UTC offset, which is
// fine at the minute-level precision we work with.
func DaysSinceJ2000(t int64) float64 {
	return float64(t-J2000Unix) / SecondsPerDay
}

// UnixFromDays converts a day offset from J2000.0 back to Unix seconds,
// rounded to the nearest second.
func UnixFromDays(days float64) int64 {
	return J2000Unix + int64(math.Round(days*SecondsPerDay))
}

// JulianDay returns the absolute Julian day for the Unix time t.
func JulianDay(t int64) float64 {
	return float64(t)/SecondsPerDay + UnixEpochJD
}

// LocalSiderealTime returns the local sidereal time in degrees [0, 360) for
// an observer at longitude lon (degrees, east positive), days after J2000.0.
//
// Linear approximation: the meridian advances SiderealDegreesPerHour per
// solar hour starting from GMST at the epoch.
func LocalSiderealTime(days, lon float64) float64 {
	return Normalize360(gmstAtJ2000 + 24*SiderealDegreesPerHour*days + lon)
}

// -----------------------------
// Basic degree/radian helpers and trig with degree inputs.
// -----------------------------

func Deg2Rad(d float64) float64 {
	return d * math.Pi / 180.0
}

func Rad2Deg(r float64) float64 {
	return r * 180.0 / math.Pi
}

func SinD(deg float64) float64 {
	return math.Sin(Deg2Rad(deg))
}

func CosD(deg float64) float64 {
	return math.Cos(Deg2Rad(deg))
}

func Normalize360(d float64) float64 {
	d = math.Mod(d, 360.0)
	if d < 0 {
		d += 360.0
	}
	return d
}

// Normalize180 maps d into [-180, 180).
func Normalize180(d float64) float64 {
	return Normalize360(d+180.0) - 180.0
}

func Normalize24(h float64) float64 {
	h = math.Mod(h, 24.0)
	if h < 0 {
		h += 24.0
	}
	return h
}

// Clamp limits v to [lo, hi]. Used ahead of inverse trig calls where
// rounding can push an argument slightly past ±1.
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
