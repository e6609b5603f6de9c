package sun

import (
	"math"
	"testing"
	"time"

	"github.com/thurmanmarka/sunwindow/internal/timeutil"
)

func daysAt(t time.Time) float64 {
	return timeutil.DaysSinceJ2000(t.Unix())
}

func TestPositionMeeusExample(t *testing.T) {
	// Meeus, Astronomical Algorithms, example 25.a: 1992 October 13, 0h TD.
	// Apparent RA 13h13m31.4s, Dec -7°47'06".
	days := daysAt(time.Date(1992, time.October, 13, 0, 0, 0, 0, time.UTC))
	eq := Position(days)

	wantRA := 13 + 13.0/60 + 31.4/3600
	wantDec := -(7 + 47.0/60 + 6.0/3600)

	if math.Abs(eq.RA-wantRA) > 0.01 {
		t.Errorf("RA = %.4fh, want %.4fh", eq.RA, wantRA)
	}
	if math.Abs(eq.Dec-wantDec) > 0.05 {
		t.Errorf("Dec = %.4f°, want %.4f°", eq.Dec, wantDec)
	}
}

func TestPositionSeasons(t *testing.T) {
	tests := []struct {
		name    string
		at      time.Time
		wantRA  float64
		wantDec float64
	}{
		{"March equinox 2025", time.Date(2025, time.March, 20, 9, 1, 0, 0, time.UTC), 0, 0},
		{"June solstice 2025", time.Date(2025, time.June, 21, 2, 42, 0, 0, time.UTC), 6, 23.44},
		{"September equinox 2025", time.Date(2025, time.September, 22, 18, 19, 0, 0, time.UTC), 12, 0},
		{"December solstice 2025", time.Date(2025, time.December, 21, 15, 3, 0, 0, time.UTC), 18, -23.44},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eq := Position(daysAt(tt.at))
			dRA := math.Abs(eq.RA - tt.wantRA)
			if dRA > 12 {
				dRA = 24 - dRA
			}
			if dRA > 0.02 {
				t.Errorf("RA = %.4fh, want %.2fh", eq.RA, tt.wantRA)
			}
			if math.Abs(eq.Dec-tt.wantDec) > 0.05 {
				t.Errorf("Dec = %.4f°, want %.2f°", eq.Dec, tt.wantDec)
			}
			t.Logf("%s: RA=%.4fh Dec=%.4f°", tt.name, eq.RA, eq.Dec)
		})
	}
}

func TestMidpointWrapsRA(t *testing.T) {
	a := Equatorial{RA: 23.9, Dec: -0.2}
	b := Equatorial{RA: 0.1, Dec: 0.2}
	m := a.Midpoint(b)
	if m.RA > 1e-9 && math.Abs(m.RA-24) > 1e-9 {
		t.Errorf("Midpoint RA = %v, want 0", m.RA)
	}
	if math.Abs(m.Dec) > 1e-12 {
		t.Errorf("Midpoint Dec = %v, want 0", m.Dec)
	}
}

func TestInterpolateAcrossWrap(t *testing.T) {
	p := [3]Equatorial{{RA: 23.98, Dec: 1}, {RA: 23.99, Dec: 1.5}, {RA: 0.0, Dec: 2}}
	got := Interpolate(p, 0.75)
	if math.Abs(got.RA-23.995) > 1e-9 {
		t.Errorf("RA = %v, want 23.995", got.RA)
	}
	if math.Abs(got.Dec-1.75) > 1e-9 {
		t.Errorf("Dec = %v, want 1.75", got.Dec)
	}
}
