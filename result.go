package sunwindow

import (
	"fmt"
	"sort"
	"time"
)

// EventKind distinguishes rising from setting.
type EventKind int

const (
	Sunrise EventKind = iota
	Sunset
)

func (k EventKind) String() string {
	switch k {
	case Sunrise:
		return "rise"
	case Sunset:
		return "set"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is a single horizon crossing.
type Event struct {
	Kind    EventKind `json:"kind"`
	Time    int64     `json:"time"`    // UTC Unix seconds
	Azimuth float64   `json:"azimuth"` // degrees from north
}

// At returns the event time in UTC.
func (e Event) At() time.Time {
	return time.Unix(e.Time, 0).UTC()
}

// Result holds the outcome of a search.
//
// The rise and set slots hold the events adjacent to QueryTime: by day the
// preceding sunrise and the following sunset, by night the preceding sunset
// and the following sunrise. When events exist on only one side of QueryTime
// within the window, each slot holds the nearest event of its kind.
//
// RiseTime and RiseAz are zero and meaningless unless HasRise is set, and
// likewise for the set fields.
type Result struct {
	QueryTime int64   `json:"query_time"`
	RiseTime  int64   `json:"rise_time"`
	SetTime   int64   `json:"set_time"`
	RiseAz    float64 `json:"rise_azimuth"`
	SetAz     float64 `json:"set_azimuth"`
	HasRise   bool    `json:"has_rise"`
	HasSet    bool    `json:"has_set"`
	IsVisible bool    `json:"is_visible"`
}

// record offers a newly found event to the matching slot. Events must be
// offered in chronological order.
func (r *Result) record(e Event) {
	switch e.Kind {
	case Sunrise:
		if r.replaces(r.HasRise, r.RiseTime, r.HasSet, r.SetTime, e.Time) {
			r.RiseTime, r.RiseAz, r.HasRise = e.Time, e.Azimuth, true
		}
	case Sunset:
		if r.replaces(r.HasSet, r.SetTime, r.HasRise, r.RiseTime, e.Time) {
			r.SetTime, r.SetAz, r.HasSet = e.Time, e.Azimuth, true
		}
	}
}

// replaces reports whether an event at t should take a slot currently
// holding stored (if has). other is the stored event of the opposite kind.
func (r *Result) replaces(has bool, stored int64, hasOther bool, other int64, t int64) bool {
	if !has {
		return true
	}
	q := r.QueryTime
	if (stored < q) == (t < q) {
		return distance(t, q) < distance(stored, q)
	}
	// stored precedes q and t follows it. If the other kind happened between
	// them, stored is no longer adjacent to q and t is.
	return stored < q && hasOther && stored < other && other < q
}

func distance(a, b int64) int64 {
	if a < b {
		return b - a
	}
	return a - b
}

// Rise returns the rise time in UTC, if one was found.
func (r Result) Rise() (time.Time, bool) {
	if !r.HasRise {
		return time.Time{}, false
	}
	return time.Unix(r.RiseTime, 0).UTC(), true
}

// Set returns the set time in UTC, if one was found.
func (r Result) Set() (time.Time, bool) {
	if !r.HasSet {
		return time.Time{}, false
	}
	return time.Unix(r.SetTime, 0).UTC(), true
}

// Events returns the events found, in chronological order.
func (r Result) Events() []Event {
	var ev []Event
	if r.HasRise {
		ev = append(ev, Event{Kind: Sunrise, Time: r.RiseTime, Azimuth: r.RiseAz})
	}
	if r.HasSet {
		ev = append(ev, Event{Kind: Sunset, Time: r.SetTime, Azimuth: r.SetAz})
	}
	sort.Slice(ev, func(i, j int) bool { return ev[i].Time < ev[j].Time })
	return ev
}

// Preceding returns the events strictly before QueryTime.
func (r Result) Preceding() []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Time < r.QueryTime {
			out = append(out, e)
		}
	}
	return out
}

// Succeeding returns the events at or after QueryTime.
func (r Result) Succeeding() []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Time >= r.QueryTime {
			out = append(out, e)
		}
	}
	return out
}
