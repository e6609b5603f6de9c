// Package monitor periodically evaluates a fixed location and fans the
// result out to metrics, the observation log and MQTT.
package monitor

import (
	"context"
	"sync"
	"time"

	"cloudeng.io/logging/ctxlog"

	"github.com/thurmanmarka/sunwindow"
	"github.com/thurmanmarka/sunwindow/internal/metrics"
)

// Store persists results that differ from the previous one.
type Store interface {
	SaveResult(location string, c sunwindow.Coordinates, r sunwindow.Result) error
}

// Publisher forwards results that differ from the previous one.
type Publisher interface {
	Publish(ctx context.Context, location string, c sunwindow.Coordinates, r sunwindow.Result) error
}

type Config struct {
	Location    string
	Coordinates sunwindow.Coordinates
	Finder      *sunwindow.Finder
	Interval    time.Duration
	Enabled     bool

	Metrics   *metrics.Metrics // optional
	Store     Store            // optional
	Publisher Publisher        // optional

	// Now defaults to time.Now.
	Now func() time.Time
}

type Monitor struct {
	cfg Config

	mu        sync.RWMutex
	latest    sunwindow.Result
	hasLatest bool
	running   bool
}

func New(cfg Config) *Monitor {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Finder == nil {
		cfg.Finder, _ = sunwindow.NewFinder()
	}
	return &Monitor{cfg: cfg}
}

// Run evaluates immediately and then on every tick until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	logger := ctxlog.Logger(ctx).With("location", m.cfg.Location)
	if !m.cfg.Enabled {
		logger.Info("monitor is disabled")
		return nil
	}

	m.setRunning(true)
	defer m.setRunning(false)
	logger.Info("starting monitor", "interval", m.cfg.Interval)

	m.Tick(ctx, m.cfg.Now())

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("monitor stopped")
			return nil
		case <-ticker.C:
			m.Tick(ctx, m.cfg.Now())
		}
	}
}

// Tick evaluates the location at now. Metrics are updated on every tick;
// the store and publisher only see results whose events or visibility
// changed. It reports whether the result changed.
func (m *Monitor) Tick(ctx context.Context, now time.Time) bool {
	logger := ctxlog.Logger(ctx).With("location", m.cfg.Location)
	c := m.cfg.Coordinates

	start := time.Now()
	r := m.cfg.Finder.Calculate(c.Lat, c.Lon, now.Unix())
	took := time.Since(start)

	if m.cfg.Metrics != nil {
		m.cfg.Metrics.ObserveCalculation("monitor", r, took)
		m.cfg.Metrics.ObserveLocation(m.cfg.Location, r)
	}

	m.mu.Lock()
	changed := !m.hasLatest || differs(m.latest, r)
	m.latest, m.hasLatest = r, true
	m.mu.Unlock()

	if !changed {
		return false
	}
	logger.Info("sun state changed",
		"visible", r.IsVisible,
		"has_rise", r.HasRise, "rise", r.RiseTime,
		"has_set", r.HasSet, "set", r.SetTime)

	if m.cfg.Store != nil {
		if err := m.cfg.Store.SaveResult(m.cfg.Location, c, r); err != nil {
			logger.Error("saving observation", "error", err)
		}
	}
	if m.cfg.Publisher != nil {
		if err := m.cfg.Publisher.Publish(ctx, m.cfg.Location, c, r); err != nil {
			logger.Error("publishing to mqtt", "error", err)
		}
	}
	return true
}

// differs ignores QueryTime. The same event found from a shifted window can
// move by a few seconds, which is not a change.
func differs(a, b sunwindow.Result) bool {
	const slack = 60
	if a.IsVisible != b.IsVisible || a.HasRise != b.HasRise || a.HasSet != b.HasSet {
		return true
	}
	if a.HasRise && abs(a.RiseTime-b.RiseTime) > slack {
		return true
	}
	if a.HasSet && abs(a.SetTime-b.SetTime) > slack {
		return true
	}
	return false
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// Latest returns the most recent result, if any.
func (m *Monitor) Latest() (sunwindow.Result, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest, m.hasLatest
}

func (m *Monitor) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

func (m *Monitor) setRunning(v bool) {
	m.mu.Lock()
	m.running = v
	m.mu.Unlock()
}

// Location returns the monitored location's name and coordinates.
func (m *Monitor) Location() (string, sunwindow.Coordinates) {
	return m.cfg.Location, m.cfg.Coordinates
}
