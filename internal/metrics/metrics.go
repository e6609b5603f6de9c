// Package metrics exposes finder activity to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thurmanmarka/sunwindow"
)

// Metrics holds the collectors for one registry.
type Metrics struct {
	registry *prometheus.Registry

	calculations *prometheus.CounterVec // calculations by source (api, monitor)
	eventsFound  *prometheus.CounterVec // events found by kind
	visible      *prometheus.GaugeVec   // 1 when the Sun is up at a monitored location
	untilEvent   *prometheus.GaugeVec   // seconds from the last evaluation to the next event
	lastUpdate   *prometheus.GaugeVec   // Unix time of the last monitored evaluation
	duration     prometheus.Histogram   // time spent in Calculate
}

// New creates a Metrics with its own registry so several instances (and
// tests) never collide on the default one.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		calculations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sunwindow",
			Name:      "calculations_total",
			Help:      "Number of rise/set searches performed.",
		}, []string{"source"}),
		eventsFound: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sunwindow",
			Name:      "events_found_total",
			Help:      "Number of rise/set events returned, by kind.",
		}, []string{"kind"}),
		visible: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "sunwindow",
			Name:      "sun_visible",
			Help:      "1 if the Sun is above the horizon at the monitored location.",
		}, []string{"location"}),
		untilEvent: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "sunwindow",
			Name:      "seconds_until_event",
			Help:      "Seconds from the last evaluation to the next event of each kind.",
		}, []string{"location", "kind"}),
		lastUpdate: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "sunwindow",
			Name:      "last_update_timestamp_seconds",
			Help:      "Unix time of the last monitored evaluation.",
		}, []string{"location"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sunwindow",
			Name:      "calculation_duration_seconds",
			Help:      "Time spent searching for events.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
	}
}

// ObserveCalculation records one search and the events it produced.
func (m *Metrics) ObserveCalculation(source string, r sunwindow.Result, took time.Duration) {
	m.calculations.WithLabelValues(source).Inc()
	m.duration.Observe(took.Seconds())
	for _, e := range r.Events() {
		m.eventsFound.WithLabelValues(e.Kind.String()).Inc()
	}
}

// ObserveLocation updates the per-location gauges from a monitored result.
func (m *Metrics) ObserveLocation(location string, r sunwindow.Result) {
	v := 0.0
	if r.IsVisible {
		v = 1
	}
	m.visible.WithLabelValues(location).Set(v)
	m.lastUpdate.WithLabelValues(location).Set(float64(r.QueryTime))
	ahead := map[sunwindow.EventKind]bool{}
	for _, e := range r.Succeeding() {
		m.untilEvent.WithLabelValues(location, e.Kind.String()).Set(float64(e.Time - r.QueryTime))
		ahead[e.Kind] = true
	}
	// A kind with no upcoming event has no meaningful countdown.
	for _, k := range []sunwindow.EventKind{sunwindow.Sunrise, sunwindow.Sunset} {
		if !ahead[k] {
			m.untilEvent.DeleteLabelValues(location, k.String())
		}
	}
}

// Registry exposes the underlying registry for gathering in tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
