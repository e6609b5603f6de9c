package solver

import "math"

// EventType describes whether a crossing is a rising or setting event.
type EventType int

const (
	// CrossingUp means the function is increasing through zero (rise).
	CrossingUp EventType = iota
	// CrossingDown means the function is decreasing through zero (set).
	CrossingDown
)

func (e EventType) String() string {
	switch e {
	case CrossingUp:
		return "up"
	case CrossingDown:
		return "down"
	default:
		return "unknown"
	}
}

// Crossing is a zero of the interpolated function inside a sample interval.
type Crossing struct {
	Frac float64   // position in the interval, 0 at the first sample, 1 at the last
	Type EventType // direction of the crossing
}

// degenerate is the quadratic coefficient below which the fit is treated as
// a straight line.
const degenerate = 1e-12

// Interpolate evaluates the quadratic through f0, f1, f2 sampled at 0, ½
// and 1, at position p.
func Interpolate(f0, f1, f2, p float64) float64 {
	a, b, c := coefficients(f0, f1, f2)
	return (a*p+b)*p + c
}

// coefficients returns a, b, c such that a·p² + b·p + c passes through
// (0, f0), (½, f1) and (1, f2).
func coefficients(f0, f1, f2 float64) (a, b, c float64) {
	a = 2*f2 - 4*f1 + 2*f0
	b = 4*f1 - 3*f0 - f2
	c = f0
	return a, b, c
}

// Crossings finds where the quadratic through the three equally spaced
// samples f0 (start), f1 (middle) and f2 (end) crosses zero inside [0, 1].
//
// A negative value counts as "below", zero or positive as "above", so an
// exact zero on a shared interval boundary is reported once.
//
// When the end samples disagree in sign there is exactly one crossing. When
// they agree there is either none, or two when the extremum between them
// crosses zero. Tangent touches are not reported.
func Crossings(f0, f1, f2 float64) []Crossing {
	if hasCrossing(f0, f2, CrossingUp) {
		return []Crossing{{Frac: edgeRoot(f0, f1, f2, CrossingUp), Type: CrossingUp}}
	}
	if hasCrossing(f0, f2, CrossingDown) {
		return []Crossing{{Frac: edgeRoot(f0, f1, f2, CrossingDown), Type: CrossingDown}}
	}
	return interiorRoots(f0, f1, f2)
}

func hasCrossing(a1, a2 float64, eventType EventType) bool {
	switch eventType {
	case CrossingUp:
		return a1 < 0 && a2 >= 0
	case CrossingDown:
		return a1 >= 0 && a2 < 0
	}
	return false
}

// edgeRoot returns the single root in [0, 1] when f0 and f2 bracket zero.
// If both roots of the fit land in [0, 1] (an end sample exactly on zero),
// the one crossing in direction typ wins.
func edgeRoot(f0, f1, f2 float64, typ EventType) float64 {
	a, b, c := coefficients(f0, f1, f2)
	if math.Abs(a) < degenerate {
		return clampUnit(-c / b)
	}
	r1, r2, ok := roots(a, b, c)
	if !ok {
		// Bracketed but no real root: only possible through rounding.
		return clampUnit(f0 / (f0 - f2))
	}
	const eps = 1e-9
	in1 := r1 >= -eps && r1 <= 1+eps
	in2 := r2 >= -eps && r2 <= 1+eps
	switch {
	case in1 && in2:
		if (2*a*r1+b > 0) == (typ == CrossingUp) {
			return clampUnit(r1)
		}
		return clampUnit(r2)
	case in1:
		return clampUnit(r1)
	case in2:
		return clampUnit(r2)
	}
	return clampUnit(f0 / (f0 - f2))
}

// interiorRoots handles end samples on the same side of zero.
//
// A root exactly on a boundary sample is kept only when the neighbouring
// interval cannot have reported it: a set at 0 (the previous interval saw its
// zero end as "above") or a rise at 1 (the next interval starts "above").
func interiorRoots(f0, f1, f2 float64) []Crossing {
	a, b, c := coefficients(f0, f1, f2)
	if math.Abs(a) < degenerate {
		return nil
	}
	r1, r2, ok := roots(a, b, c)
	if !ok || r1 == r2 {
		return nil
	}
	if r1 > r2 {
		r1, r2 = r2, r1
	}
	if r1 < 0 || r2 > 1 {
		return nil
	}
	out := make([]Crossing, 0, 2)
	for _, r := range [2]float64{r1, r2} {
		typ := CrossingDown
		if 2*a*r+b > 0 {
			typ = CrossingUp
		}
		if (r == 0 && typ == CrossingUp) || (r == 1 && typ == CrossingDown) {
			continue
		}
		out = append(out, Crossing{Frac: r, Type: typ})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// roots solves a·p² + b·p + c = 0 using the cancellation-free form of the
// quadratic formula. ok is false when there is no real root.
func roots(a, b, c float64) (r1, r2 float64, ok bool) {
	d := b*b - 4*a*c
	if d < 0 {
		return 0, 0, false
	}
	q := -0.5 * (b + math.Copysign(math.Sqrt(d), b))
	if q == 0 {
		// b == 0 and c == 0: double root at zero.
		return 0, 0, true
	}
	return q / a, c / q, true
}

func clampUnit(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
