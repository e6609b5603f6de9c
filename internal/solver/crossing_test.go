package solver

import (
	"math"
	"testing"
)

func TestInterpolateHitsSamples(t *testing.T) {
	f0, f1, f2 := -0.3, 0.25, 0.4
	for _, tc := range []struct {
		p    float64
		want float64
	}{
		{0, f0},
		{0.5, f1},
		{1, f2},
	} {
		if got := Interpolate(f0, f1, f2, tc.p); math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("Interpolate(p=%v) = %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestCrossings(t *testing.T) {
	tests := []struct {
		name       string
		f0, f1, f2 float64
		want       []Crossing
	}{
		{
			name: "linear rise",
			f0:   -1, f1: 0, f2: 1,
			want: []Crossing{{Frac: 0.5, Type: CrossingUp}},
		},
		{
			name: "linear set",
			f0:   1, f1: 0, f2: -1,
			want: []Crossing{{Frac: 0.5, Type: CrossingDown}},
		},
		{
			name: "curved rise early in interval",
			f0:   -1, f1: 0.5, f2: 1,
			// -2p² + 4p - 1 = 0 -> p = 1 - 1/√2
			want: []Crossing{{Frac: 1 - 1/math.Sqrt2, Type: CrossingUp}},
		},
		{
			name: "always above",
			f0:   1, f1: 2, f2: 3,
		},
		{
			name: "always below",
			f0:   -3, f1: -2, f2: -1,
		},
		{
			name: "hump crosses twice",
			f0:   -1, f1: 1, f2: -1,
			// -8p² + 8p - 1 = 0
			want: []Crossing{
				{Frac: 0.5 - math.Sqrt(32)/16, Type: CrossingUp},
				{Frac: 0.5 + math.Sqrt(32)/16, Type: CrossingDown},
			},
		},
		{
			name: "dip crosses twice",
			f0:   1, f1: -1, f2: 1,
			want: []Crossing{
				{Frac: 0.5 - math.Sqrt(32)/16, Type: CrossingDown},
				{Frac: 0.5 + math.Sqrt(32)/16, Type: CrossingUp},
			},
		},
		{
			name: "tangent touch is not an event",
			f0:   -1, f1: 0, f2: -1,
		},
		{
			name: "hump that stays below",
			f0:   -1, f1: -0.2, f2: -1,
		},
		{
			name: "zero at the end counts as above",
			f0:   -1, f1: -0.5, f2: 0,
			want: []Crossing{{Frac: 1, Type: CrossingUp}},
		},
		{
			name: "zero at the start is not reported again",
			f0:   0, f1: 0.5, f2: 1,
		},
		{
			name: "set exactly at the start then rise",
			f0:   0, f1: -0.25, f2: 0.5,
			// 2p² - 1.5p = 0 -> p = 0, 0.75
			want: []Crossing{
				{Frac: 0, Type: CrossingDown},
				{Frac: 0.75, Type: CrossingUp},
			},
		},
		{
			name: "rise exactly at the start was the previous interval's",
			f0:   0, f1: 0.25, f2: -0.5,
			// -2p² + 1.5p = 0 -> p = 0, 0.75
			want: []Crossing{{Frac: 0.75, Type: CrossingDown}},
		},
		{
			name: "set then rise exactly at the end",
			f0:   0.5, f1: -0.25, f2: 0,
			// 2p² - 2.5p + 0.5 = 0 -> p = 0.25, 1
			want: []Crossing{
				{Frac: 0.25, Type: CrossingDown},
				{Frac: 1, Type: CrossingUp},
			},
		},
		{
			name: "set exactly at the end belongs to the next interval",
			f0:   -0.5, f1: 0.25, f2: 0,
			want: []Crossing{{Frac: 0.25, Type: CrossingUp}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Crossings(tt.f0, tt.f1, tt.f2)
			if len(got) != len(tt.want) {
				t.Fatalf("Crossings(%v, %v, %v) = %+v, want %+v", tt.f0, tt.f1, tt.f2, got, tt.want)
			}
			for i := range got {
				if got[i].Type != tt.want[i].Type {
					t.Errorf("crossing %d type = %v, want %v", i, got[i].Type, tt.want[i].Type)
				}
				if math.Abs(got[i].Frac-tt.want[i].Frac) > 1e-9 {
					t.Errorf("crossing %d frac = %v, want %v", i, got[i].Frac, tt.want[i].Frac)
				}
			}
		})
	}
}

func TestCrossingsRootIsZeroOfFit(t *testing.T) {
	samples := [][3]float64{
		{-0.02, 0.004, 0.03},
		{0.5, 0.1, -0.4},
		{-0.9, -0.1, 0.7},
	}
	for _, s := range samples {
		cs := Crossings(s[0], s[1], s[2])
		if len(cs) != 1 {
			t.Fatalf("Crossings(%v) returned %d crossings, want 1", s, len(cs))
		}
		if v := Interpolate(s[0], s[1], s[2], cs[0].Frac); math.Abs(v) > 1e-9 {
			t.Errorf("fit at root %v = %v, want 0", cs[0].Frac, v)
		}
	}
}

// A zero landing exactly on an interval boundary must be reported by one of
// the two intervals sharing it, and only once.
func TestCrossingsSharedBoundaryZero(t *testing.T) {
	// Sampled at 0, ½, 1, 1½, 2: above, touches zero at 1, dips below and
	// comes back up.
	f := func(p float64) float64 { return (p - 1) * (p - 1.75) }
	var got []Crossing
	for k := 0; k < 2; k++ {
		x := float64(k)
		for _, c := range Crossings(f(x), f(x+0.5), f(x+1)) {
			got = append(got, Crossing{Frac: x + c.Frac, Type: c.Type})
		}
	}
	want := []Crossing{{Frac: 1, Type: CrossingDown}, {Frac: 1.75, Type: CrossingUp}}
	if len(got) != len(want) {
		t.Fatalf("crossings = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i].Type != want[i].Type || math.Abs(got[i].Frac-want[i].Frac) > 1e-9 {
			t.Errorf("crossing %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
