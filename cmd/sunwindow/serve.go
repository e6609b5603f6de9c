package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"cloudeng.io/logging/ctxlog"
	"github.com/spf13/cobra"

	"github.com/thurmanmarka/sunwindow/config"
	"github.com/thurmanmarka/sunwindow/internal/api"
	"github.com/thurmanmarka/sunwindow/internal/metrics"
	"github.com/thurmanmarka/sunwindow/internal/monitor"
	"github.com/thurmanmarka/sunwindow/internal/mqtt"
	"github.com/thurmanmarka/sunwindow/internal/storage"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the monitoring service",
		Long:  "Start the monitor, API server, MQTT publisher and observation log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, err := loadConfig(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := ctxlog.Logger(ctx)

	finder, err := cfg.Finder()
	if err != nil {
		return err
	}
	m := metrics.New()

	var db *storage.Database
	if cfg.Database.Enabled {
		db, err = storage.NewDatabase(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "path", cfg.Database.Path)
		if cfg.Database.RetentionDays > 0 {
			go pruneLoop(ctx, db, cfg.Database.RetentionDays, 24*time.Hour)
		}
	}

	publisher, err := mqtt.NewPublisher(ctx, mqtt.PublisherConfig{
		Broker:      cfg.MQTT.Broker,
		ClientID:    cfg.MQTT.ClientID,
		Username:    cfg.MQTT.Username,
		Password:    cfg.MQTT.Password,
		TopicPrefix: cfg.MQTT.TopicPrefix,
		Enabled:     cfg.MQTT.Enabled,
	})
	if err != nil {
		logger.Warn("mqtt connection failed, continuing without it", "error", err)
		publisher = nil
	} else {
		defer publisher.Close()
	}

	monCfg := monitor.Config{
		Location:    cfg.Location.Name,
		Coordinates: cfg.Coordinates(),
		Finder:      finder,
		Interval:    cfg.Monitor.Interval,
		Enabled:     cfg.Monitor.Enabled,
		Metrics:     m,
	}
	// Assigning a nil pointer to the interface fields would make them non-nil.
	if db != nil {
		monCfg.Store = db
	}
	if publisher != nil {
		monCfg.Publisher = publisher
	}
	mon := monitor.New(monCfg)

	go func() {
		if err := mon.Run(ctx); err != nil {
			logger.Error("monitor error", "error", err)
		}
	}()

	var server *api.Server
	if cfg.API.Enabled {
		server = api.NewServer(api.ServerConfig{
			Port:     cfg.API.Port,
			Monitor:  mon,
			Database: db,
			Metrics:  m,
			Finder:   finder,
		})
		go func() {
			if err := server.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("api server error", "error", err)
			}
		}()
	}

	logger.Info("sunwindow started, press Ctrl+C to stop",
		"location", cfg.Location.Name,
		"lat", cfg.Location.Latitude, "lon", cfg.Location.Longitude,
		"window", finder.Window(), "horizon", finder.Horizon())

	<-ctx.Done()
	logger.Info("shutting down")

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Stop(shutdownCtx); err != nil {
			logger.Warn("api shutdown", "error", err)
		}
	}
	return nil
}

// pruneLoop drops observations older than days now and then every interval
// until ctx is done.
func pruneLoop(ctx context.Context, db *storage.Database, days int, interval time.Duration) {
	logger := ctxlog.Logger(ctx).With("retention_days", days)
	prune := func() {
		n, err := db.CleanOldData(days)
		if err != nil {
			logger.Error("pruning observations", "error", err)
			return
		}
		logger.Debug("pruned observations", "deleted", n)
	}

	prune()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prune()
		}
	}
}
