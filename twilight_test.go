package sunwindow

import (
	"testing"
	"time"
)

func TestTwilight_Phoenix_2025_11_28(t *testing.T) {
	mst := time.FixedZone("MST", -7*3600)

	// Reference values from an online twilight calculator for Phoenix, AZ
	// on 2025-11-28 (local time, UTC-7):
	//
	//   Astronomical dawn: 05:44   Astronomical dusk: 18:48
	//   Nautical dawn:     06:14   Nautical dusk:     18:18
	//   Civil dawn:        06:45   Civil dusk:        17:47
	//   Sunrise:           07:11   Sunset:            17:21
	tests := []struct {
		name       string
		opt        Option
		expectDawn string // HH:MM local
		expectDusk string // HH:MM local
	}{
		{"Sunrise", WithHorizon(HorizonAltitude), "07:11", "17:21"},
		{"Civil", WithTwilight(TwilightCivil), "06:45", "17:47"},
		{"Nautical", WithTwilight(TwilightNautical), "06:14", "18:18"},
		{"Astronomical", WithTwilight(TwilightAstronomical), "05:44", "18:48"},
	}

	noon := time.Date(2025, time.November, 28, 12, 0, 0, 0, mst)

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f, err := NewFinder(tc.opt)
			if err != nil {
				t.Fatalf("NewFinder: %v", err)
			}
			r := f.Calculate(33.4484, -112.0740, noon.Unix())
			dawn, okDawn := r.Rise()
			dusk, okDusk := r.Set()
			if !okDawn || !okDusk {
				t.Fatalf("dawn found=%v dusk found=%v", okDawn, okDusk)
			}

			refDawn := atLocal(t, noon, tc.expectDawn)
			refDusk := atLocal(t, noon, tc.expectDusk)

			dawnErr := dawn.Sub(refDawn).Minutes()
			duskErr := dusk.Sub(refDusk).Minutes()
			t.Logf("[%s / Phoenix 2025-11-28] dawn %s (err %+.2f min), dusk %s (err %+.2f min)",
				tc.name, dawn.In(mst).Format("15:04:05"), dawnErr, dusk.In(mst).Format("15:04:05"), duskErr)

			if dawnErr < -4 || dawnErr > 4 || duskErr < -4 || duskErr > 4 {
				t.Errorf("%s: dawn error %.2f min, dusk error %.2f min, want within 4", tc.name, dawnErr, duskErr)
			}
		})
	}
}

func atLocal(t *testing.T, day time.Time, hhmm string) time.Time {
	t.Helper()
	clock, err := time.ParseInLocation("15:04", hhmm, day.Location())
	if err != nil {
		t.Fatalf("bad clock %q: %v", hhmm, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, day.Location())
}
