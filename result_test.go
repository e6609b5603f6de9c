package sunwindow

import (
	"testing"
)

func TestRecordBracketing(t *testing.T) {
	const h = 3600
	q := int64(100 * h)

	tests := []struct {
		name     string
		events   []Event
		wantRise int64
		wantSet  int64
	}{
		{
			name: "day",
			events: []Event{
				{Kind: Sunset, Time: q - 18*h},
				{Kind: Sunrise, Time: q - 6*h},
				{Kind: Sunset, Time: q + 6*h},
				{Kind: Sunrise, Time: q + 18*h},
			},
			wantRise: q - 6*h,
			wantSet:  q + 6*h,
		},
		{
			name: "night",
			events: []Event{
				{Kind: Sunrise, Time: q - 18*h},
				{Kind: Sunset, Time: q - 6*h},
				{Kind: Sunrise, Time: q + 6*h},
				{Kind: Sunset, Time: q + 18*h},
			},
			wantRise: q + 6*h,
			wantSet:  q - 6*h,
		},
		{
			name: "long day keeps the far preceding rise",
			events: []Event{
				{Kind: Sunset, Time: q - 19*h},
				{Kind: Sunrise, Time: q - 14*h},
				{Kind: Sunset, Time: q + 5*h},
				{Kind: Sunrise, Time: q + 10*h},
			},
			wantRise: q - 14*h,
			wantSet:  q + 5*h,
		},
		{
			name: "only following events",
			events: []Event{
				{Kind: Sunrise, Time: q + 2*h},
				{Kind: Sunset, Time: q + 4*h},
				{Kind: Sunrise, Time: q + 20*h},
				{Kind: Sunset, Time: q + 22*h},
			},
			wantRise: q + 2*h,
			wantSet:  q + 4*h,
		},
		{
			name: "only preceding events",
			events: []Event{
				{Kind: Sunrise, Time: q - 22*h},
				{Kind: Sunset, Time: q - 20*h},
				{Kind: Sunrise, Time: q - 4*h},
				{Kind: Sunset, Time: q - 2*h},
			},
			wantRise: q - 4*h,
			wantSet:  q - 2*h,
		},
		{
			name: "event exactly at the query counts as following",
			events: []Event{
				{Kind: Sunset, Time: q - 10*h},
				{Kind: Sunrise, Time: q},
				{Kind: Sunset, Time: q + 12*h},
			},
			wantRise: q,
			wantSet:  q - 10*h,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Result{QueryTime: q}
			for _, e := range tt.events {
				r.record(e)
			}
			if !r.HasRise || r.RiseTime != tt.wantRise {
				t.Errorf("rise = %v (has %v), want %v", (r.RiseTime-q)/h, r.HasRise, (tt.wantRise-q)/h)
			}
			if !r.HasSet || r.SetTime != tt.wantSet {
				t.Errorf("set = %v (has %v), want %v", (r.SetTime-q)/h, r.HasSet, (tt.wantSet-q)/h)
			}
		})
	}
}

func TestResultHelpers(t *testing.T) {
	r := Result{
		QueryTime: 1000,
		RiseTime:  400, RiseAz: 95, HasRise: true,
		SetTime: 1600, SetAz: 265, HasSet: true,
	}

	ev := r.Events()
	if len(ev) != 2 || ev[0].Kind != Sunrise || ev[1].Kind != Sunset {
		t.Fatalf("Events() = %+v", ev)
	}
	if p := r.Preceding(); len(p) != 1 || p[0].Time != 400 || p[0].Azimuth != 95 {
		t.Errorf("Preceding() = %+v", p)
	}
	if s := r.Succeeding(); len(s) != 1 || s[0].Time != 1600 || s[0].Azimuth != 265 {
		t.Errorf("Succeeding() = %+v", s)
	}
	if rise, ok := r.Rise(); !ok || rise.Unix() != 400 {
		t.Errorf("Rise() = %v, %v", rise, ok)
	}

	empty := Result{QueryTime: 1000}
	if _, ok := empty.Set(); ok {
		t.Errorf("Set() reported an event on an empty result")
	}
	if len(empty.Events()) != 0 {
		t.Errorf("Events() on empty result = %+v", empty.Events())
	}
	if Sunrise.String() != "rise" || Sunset.String() != "set" {
		t.Errorf("EventKind strings: %q %q", Sunrise, Sunset)
	}
}
