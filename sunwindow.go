// Package sunwindow finds the sunrise and sunset events nearest to a moment
// in time for a given location, the compass azimuth of each, and whether the
// Sun is up at that moment.
//
// All times are UTC Unix seconds. The search scans a fixed window centred on
// the query time (WindowHours by default) one hour at a time, fitting a
// quadratic through the Sun's altitude at the start, middle and end of each
// hour to locate horizon crossings. Events outside the window are not found;
// at high latitudes there may be none at all, which is reported through the
// HasRise/HasSet flags rather than as an error.
//
// The package keeps no global mutable state: every call is self-contained and
// a Finder may be shared between goroutines.
package sunwindow

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/thurmanmarka/sunwindow/internal/sun"
)

const (
	// WindowHours is the default total span of the event search, centred on
	// the query time. Events further than WindowHours/2 from the query are
	// not found. Must be even.
	WindowHours = 48

	// MaxWindowHours bounds the window accepted by WithWindow. Wider windows
	// buy nothing but interpolation error far from the query.
	MaxWindowHours = 24 * 14

	// HorizonAltitude is the default altitude (degrees) of the Sun's center
	// at rise and set: refraction plus semi-diameter below the geometric
	// horizon.
	HorizonAltitude = sun.ApparentHorizonAltitude
)

// TwilightKind identifies the type of twilight based on the Sun's altitude
// below the horizon.
type TwilightKind int

const (
	// TwilightCivil corresponds to the Sun's center at -6 degrees altitude.
	TwilightCivil TwilightKind = iota

	// TwilightNautical corresponds to the Sun's center at -12 degrees altitude.
	TwilightNautical

	// TwilightAstronomical corresponds to the Sun's center at -18 degrees altitude.
	TwilightAstronomical
)

// Altitude returns the Sun's altitude (degrees) that defines the twilight.
func (k TwilightKind) Altitude() (float64, error) {
	switch k {
	case TwilightCivil:
		return -6.0, nil
	case TwilightNautical:
		return -12.0, nil
	case TwilightAstronomical:
		return -18.0, nil
	default:
		return 0, fmt.Errorf("unknown TwilightKind: %d", k)
	}
}

func (k TwilightKind) String() string {
	switch k {
	case TwilightCivil:
		return "civil"
	case TwilightNautical:
		return "nautical"
	case TwilightAstronomical:
		return "astronomical"
	default:
		return fmt.Sprintf("TwilightKind(%d)", int(k))
	}
}

// ParseTwilight maps "civil", "nautical" or "astronomical" to a TwilightKind.
func ParseTwilight(s string) (TwilightKind, error) {
	for _, k := range []TwilightKind{TwilightCivil, TwilightNautical, TwilightAstronomical} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown twilight kind %q (use civil, nautical, or astronomical)", s)
}

// Coordinates represent an observer's location.
type Coordinates struct {
	Lat       float64 // degrees, north positive
	Lon       float64 // degrees, east positive (west negative, e.g. -105 for 105°W)
	Elevation float64 // meters above sea level (reserved for future use)
}

var (
	// ErrOddWindow is returned when the search window is not an even number
	// of hours.
	ErrOddWindow = errors.New("search window must be an even number of hours")

	// ErrWindowRange is returned when the search window is outside
	// [2, MaxWindowHours].
	ErrWindowRange = errors.New("search window out of range")

	// ErrHorizonRange is returned when the horizon altitude is not strictly
	// between -90 and 90 degrees.
	ErrHorizonRange = errors.New("horizon altitude out of range")
)

// Finder computes Results with a fixed window and horizon threshold. It is
// immutable once built and safe for concurrent use.
type Finder struct {
	window  int
	horizon float64
}

// Option configures a Finder.
type Option func(*Finder) error

// WithWindow sets the total search window in hours. It must be even.
func WithWindow(hours int) Option {
	return func(f *Finder) error {
		if hours < 2 || hours > MaxWindowHours {
			return fmt.Errorf("window %dh: %w", hours, ErrWindowRange)
		}
		if hours%2 != 0 {
			return fmt.Errorf("window %dh: %w", hours, ErrOddWindow)
		}
		f.window = hours
		return nil
	}
}

// WithHorizon sets the altitude (degrees) the Sun's center has to cross to
// count as rising or setting.
func WithHorizon(deg float64) Option {
	return func(f *Finder) error {
		if math.IsNaN(deg) || deg <= -90 || deg >= 90 {
			return fmt.Errorf("horizon %v°: %w", deg, ErrHorizonRange)
		}
		f.horizon = deg
		return nil
	}
}

// WithTwilight searches for dawn and dusk of the given twilight kind instead
// of sunrise and sunset. Rise then means dawn and Set means dusk.
func WithTwilight(kind TwilightKind) Option {
	return func(f *Finder) error {
		alt, err := kind.Altitude()
		if err != nil {
			return err
		}
		f.horizon = alt
		return nil
	}
}

// NewFinder returns a Finder using WindowHours and HorizonAltitude unless
// overridden by opts.
func NewFinder(opts ...Option) (*Finder, error) {
	f := &Finder{window: WindowHours, horizon: HorizonAltitude}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Window returns the total search window in hours.
func (f *Finder) Window() int { return f.window }

// Horizon returns the threshold altitude in degrees.
func (f *Finder) Horizon() float64 { return f.horizon }

var defaultFinder = Finder{window: WindowHours, horizon: HorizonAltitude}

// Calculate finds the sunrise and sunset nearest to t (UTC Unix seconds) for
// an observer at latitude lat and longitude lon (degrees, east positive),
// searching WindowHours centred on t.
func Calculate(lat, lon float64, t int64) Result {
	return defaultFinder.Calculate(lat, lon, t)
}

// CalculateAt is Calculate for Coordinates and a time.Time. Sub-second
// precision is dropped.
func CalculateAt(c Coordinates, t time.Time) Result {
	return defaultFinder.Calculate(c.Lat, c.Lon, t.Unix())
}
