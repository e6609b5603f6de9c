// Command sunwindow reports the sunrise and sunset nearest to a moment, runs
// a monitoring service for a fixed location, and profiles the finder
// against other implementations.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"cloudeng.io/logging/ctxlog"
	"github.com/spf13/cobra"

	"github.com/thurmanmarka/sunwindow/config"
)

var (
	configFile string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sunwindow",
		Short: "Sunrise and sunset nearest to a moment",
		Long: "Finds the sunrise and sunset bracketing a moment for a location, " +
			"their azimuths, and whether the Sun is up.",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")

	rootCmd.AddCommand(calcCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(profileCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads and validates the configuration and returns a context
// carrying the configured logger.
func loadConfig(ctx context.Context, stderr io.Writer) (context.Context, *config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return ctx, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return ctx, nil, fmt.Errorf("invalid config:\n%w", err)
	}
	logger, err := newLogger(cfg.Log, stderr)
	if err != nil {
		return ctx, nil, err
	}
	return ctxlog.Context(ctx, logger), cfg, nil
}

func newLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
