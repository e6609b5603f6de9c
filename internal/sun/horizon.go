package sun

import (
	"math"

	"github.com/thurmanmarka/sunwindow/internal/timeutil"
)

// ApparentHorizonAltitude is the altitude (in degrees) of the Sun's center
// when the apparent upper limb is on the horizon under "standard" conditions:
// 34' of refraction plus 16' of semi-diameter.
const ApparentHorizonAltitude = -0.833

// Observer is a fixed place on the Earth together with the altitude that
// counts as "the horizon" for it.
type Observer struct {
	Lat     float64 // degrees, north positive
	Lon     float64 // degrees, east positive
	Horizon float64 // threshold altitude, degrees

	sinLat, cosLat float64
	sinH0, cosH0   float64
}

// NewObserver precomputes the trigonometry shared by every sample.
func NewObserver(lat, lon, horizon float64) Observer {
	return Observer{
		Lat:     lat,
		Lon:     lon,
		Horizon: horizon,
		sinLat:  timeutil.SinD(lat),
		cosLat:  timeutil.CosD(lat),
		sinH0:   timeutil.SinD(horizon),
		cosH0:   timeutil.CosD(horizon),
	}
}

// HourAngle returns the local hour angle (degrees, [-180, 180), positive
// west of the meridian) of a body at right ascension ra (hours), days after
// J2000.0.
func (o Observer) HourAngle(days, ra float64) float64 {
	lst := timeutil.LocalSiderealTime(days, o.Lon)
	return timeutil.Normalize180(lst - ra*15.0)
}

// SinAltitude returns sin(altitude) for a body at declination dec (deg) and
// hour angle ha (deg).
func (o Observer) SinAltitude(dec, ha float64) float64 {
	return o.sinLat*timeutil.SinD(dec) + o.cosLat*timeutil.CosD(dec)*timeutil.CosD(ha)
}

// AboveHorizon returns the horizon function sin(alt) - sin(h0) for the Sun at
// position eq, days after J2000.0. It is positive when the Sun is above the
// observer's horizon threshold.
func (o Observer) AboveHorizon(days float64, eq Equatorial) float64 {
	return o.SinAltitude(eq.Dec, o.HourAngle(days, eq.RA)) - o.sinH0
}

// Altitude returns the Sun's geometric altitude in degrees, days after
// J2000.0.
func (o Observer) Altitude(days float64) float64 {
	eq := Position(days)
	s := o.SinAltitude(eq.Dec, o.HourAngle(days, eq.RA))
	return timeutil.Rad2Deg(math.Asin(timeutil.Clamp(s, -1, 1)))
}

// HorizonAzimuth returns the azimuth (degrees from north, [0, 360)) at which
// a body at declination dec and hour angle ha sits on the horizon threshold.
//
//	cos A = (sin dec - sin h0 sin lat) / (cos h0 cos lat)
//
// A is east of north while the body is east of the meridian (sin ha <= 0),
// otherwise 360 - A.
func (o Observer) HorizonAzimuth(dec, ha float64) float64 {
	den := o.cosH0 * o.cosLat
	var cosA float64
	if den != 0 {
		cosA = (timeutil.SinD(dec) - o.sinH0*o.sinLat) / den
	} else if o.Lat > 0 {
		// At the north pole every direction is south.
		cosA = -1
	} else {
		cosA = 1
	}
	az := timeutil.Rad2Deg(math.Acos(timeutil.Clamp(cosA, -1, 1)))
	if timeutil.SinD(ha) > 0 {
		az = 360 - az
	}
	return timeutil.Normalize360(az)
}
