// Package api serves finder results over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"cloudeng.io/logging/ctxlog"
	"github.com/gin-gonic/gin"

	"github.com/thurmanmarka/sunwindow"
	"github.com/thurmanmarka/sunwindow/internal/metrics"
	"github.com/thurmanmarka/sunwindow/internal/monitor"
	"github.com/thurmanmarka/sunwindow/internal/storage"
)

type Server struct {
	router  *gin.Engine
	server  *http.Server
	port    int
	monitor *monitor.Monitor
	db      *storage.Database
	metrics *metrics.Metrics
	finder  *sunwindow.Finder
	now     func() time.Time
}

type ServerConfig struct {
	Port     int
	Monitor  *monitor.Monitor  // optional, backs /api/v1/sun/current
	Database *storage.Database // optional, backs /api/v1/observations
	Metrics  *metrics.Metrics  // optional, backs /metrics
	Finder   *sunwindow.Finder // defaults for /api/v1/sun
	Now      func() time.Time
}

// SunResponse is the body returned by the sun endpoints.
type SunResponse struct {
	Latitude   float64           `json:"latitude"`
	Longitude  float64           `json:"longitude"`
	Location   string            `json:"location,omitempty"`
	Window     int               `json:"window_hours"`
	Horizon    float64           `json:"horizon"`
	Result     sunwindow.Result  `json:"result"`
	Preceding  []sunwindow.Event `json:"preceding"`
	Succeeding []sunwindow.Event `json:"succeeding"`
}

func NewServer(cfg ServerConfig) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		router:  router,
		port:    cfg.Port,
		monitor: cfg.Monitor,
		db:      cfg.Database,
		metrics: cfg.Metrics,
		finder:  cfg.Finder,
		now:     cfg.Now,
	}
	if s.finder == nil {
		s.finder, _ = sunwindow.NewFinder()
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.setupRoutes()
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.router,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthHandler)
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := s.router.Group("/api/v1")
	{
		api.GET("/sun", s.sunHandler)
		api.GET("/sun/current", s.currentHandler)
		api.GET("/observations", s.observationsHandler)
		api.GET("/observations/daily", s.dailyHandler)
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(ctx context.Context) error {
	ctxlog.Logger(ctx).Info("api server starting", "port", s.port)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	monitoring := false
	if s.monitor != nil {
		monitoring = s.monitor.IsRunning()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"monitoring": monitoring,
		"database":   s.db != nil,
		"timestamp":  s.now().UTC(),
	})
}

func (s *Server) sunHandler(c *gin.Context) {
	lat, err := parseFloat(c.Query("lat"), -90, 90)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'lat': " + err.Error()})
		return
	}
	lon, err := parseFloat(c.Query("lon"), -180, 180)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'lon': " + err.Error()})
		return
	}
	at := s.now()
	if v := c.Query("time"); v != "" {
		if at, err = parseTime(v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'time': " + err.Error()})
			return
		}
	}
	finder, err := s.finderFor(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	r := finder.Calculate(lat, lon, at.Unix())
	if s.metrics != nil {
		s.metrics.ObserveCalculation("api", r, time.Since(start))
	}
	c.JSON(http.StatusOK, newSunResponse("", lat, lon, finder, r))
}

// finderFor honours the optional window and twilight query parameters.
func (s *Server) finderFor(c *gin.Context) (*sunwindow.Finder, error) {
	window, twilight := c.Query("window"), c.Query("twilight")
	if window == "" && twilight == "" {
		return s.finder, nil
	}
	opts := []sunwindow.Option{
		sunwindow.WithWindow(s.finder.Window()),
		sunwindow.WithHorizon(s.finder.Horizon()),
	}
	if window != "" {
		h, err := strconv.Atoi(window)
		if err != nil {
			return nil, fmt.Errorf("invalid 'window': %w", err)
		}
		opts = append(opts, sunwindow.WithWindow(h))
	}
	if twilight != "" {
		k, err := sunwindow.ParseTwilight(twilight)
		if err != nil {
			return nil, err
		}
		opts = append(opts, sunwindow.WithTwilight(k))
	}
	return sunwindow.NewFinder(opts...)
}

func (s *Server) currentHandler(c *gin.Context) {
	if s.monitor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Monitor is not configured"})
		return
	}
	r, ok := s.monitor.Latest()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No data available yet"})
		return
	}
	name, loc := s.monitor.Location()
	c.JSON(http.StatusOK, newSunResponse(name, loc.Lat, loc.Lon, s.finder, r))
}

func (s *Server) observationsHandler(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Database is not enabled"})
		return
	}
	fromStr, toStr := c.Query("from"), c.Query("to")
	if fromStr != "" && toStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'from' date format"})
			return
		}
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'to' date format"})
			return
		}
		obs, err := s.db.GetByRange(from, to)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, obs)
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 || limit > 1000 {
		limit = 100
	}
	obs, err := s.db.GetWithLimit(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, obs)
}

func (s *Server) dailyHandler(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Database is not enabled"})
		return
	}
	date := s.now().UTC()
	if v := c.Query("date"); v != "" {
		d, err := time.Parse(time.DateOnly, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'date' format, use YYYY-MM-DD"})
			return
		}
		date = d
	}
	summary, err := s.db.GetDailySummary(date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func newSunResponse(location string, lat, lon float64, f *sunwindow.Finder, r sunwindow.Result) SunResponse {
	resp := SunResponse{
		Latitude:   lat,
		Longitude:  lon,
		Location:   location,
		Window:     f.Window(),
		Horizon:    f.Horizon(),
		Result:     r,
		Preceding:  r.Preceding(),
		Succeeding: r.Succeeding(),
	}
	if resp.Preceding == nil {
		resp.Preceding = []sunwindow.Event{}
	}
	if resp.Succeeding == nil {
		resp.Succeeding = []sunwindow.Event{}
	}
	return resp
}

func parseFloat(s string, lo, hi float64) (float64, error) {
	if s == "" {
		return 0, errors.New("missing")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || v < lo || v > hi {
		return 0, fmt.Errorf("%v outside [%v, %v]", v, lo, hi)
	}
	return v, nil
}

// parseTime accepts RFC 3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(n, 0).UTC(), nil
	}
	return time.Parse(time.RFC3339, s)
}
