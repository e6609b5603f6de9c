package sunwindow

import (
	"math"

	"github.com/thurmanmarka/sunwindow/internal/solver"
	"github.com/thurmanmarka/sunwindow/internal/sun"
	"github.com/thurmanmarka/sunwindow/internal/timeutil"
)

const secondsPerHour = 3600

// Calculate finds the rise and set events nearest to t (UTC Unix seconds) for
// an observer at latitude lat and longitude lon (degrees, east positive).
//
// Latitude is clamped to [-90, 90] and longitude wrapped into [-180, 180).
// Non-finite coordinates yield a Result carrying only QueryTime.
func (f *Finder) Calculate(lat, lon float64, t int64) Result {
	r := Result{QueryTime: t}
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return r
	}
	obs := sun.NewObserver(
		timeutil.Clamp(lat, -90, 90),
		timeutil.Normalize180(lon),
		f.horizon,
	)

	start := t - int64(f.window/2)*secondsPerHour
	startDays := timeutil.DaysSinceJ2000(start)

	lo := sun.Position(startDays)
	for k := 0; k < f.window; k++ {
		hi := sun.Position(startDays + float64(k+1)/24)
		testHour(&r, obs, start+int64(k)*secondsPerHour, [3]sun.Equatorial{lo, lo.Midpoint(hi), hi})
		lo = hi
	}

	r.IsVisible = obs.Altitude(timeutil.DaysSinceJ2000(t)) > f.horizon
	return r
}

// testHour looks for horizon crossings during the hour starting at
// hourStart, given the Sun's position at the start, middle and end of it.
func testHour(r *Result, obs sun.Observer, hourStart int64, p [3]sun.Equatorial) {
	days := timeutil.DaysSinceJ2000(hourStart)

	var v [3]float64
	for i := range p {
		v[i] = obs.AboveHorizon(days+float64(i)/48, p[i])
	}

	for _, c := range solver.Crossings(v[0], v[1], v[2]) {
		at := hourStart + int64(math.Round(c.Frac*secondsPerHour))
		atDays := days + c.Frac/24

		eq := sun.Interpolate(p, c.Frac)
		az := obs.HorizonAzimuth(eq.Dec, obs.HourAngle(atDays, eq.RA))

		kind := Sunrise
		if c.Type == solver.CrossingDown {
			kind = Sunset
		}
		r.record(Event{Kind: kind, Time: at, Azimuth: az})
	}
}
