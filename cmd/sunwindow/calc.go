package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"cloudeng.io/logging/ctxlog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thurmanmarka/sunwindow"
)

type calcOptions struct {
	lat, lon float64
	timeStr  string
	tzName   string
	window   int
	twilight string
	format   string
}

func calcCmd() *cobra.Command {
	var o calcOptions
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Print the sunrise and sunset nearest to a moment",
		Long: "Print the preceding and succeeding sunrise/sunset for a location. " +
			"Latitude, longitude and search settings default to the config file.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, err := loadConfig(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("lat") {
				cfg.Location.Latitude = o.lat
			}
			if flags.Changed("lon") {
				cfg.Location.Longitude = o.lon
			}
			if flags.Changed("window") {
				cfg.Search.WindowHours = o.window
			}
			if flags.Changed("twilight") {
				cfg.Search.Twilight = o.twilight
			}
			if cfg.Location.Latitude == 0 && cfg.Location.Longitude == 0 {
				ctxlog.Logger(ctx).Warn("lat=0 lon=0 (Gulf of Guinea); use --lat and --lon to set a real location")
			}

			loc, err := time.LoadLocation(o.tzName)
			if err != nil {
				return fmt.Errorf("invalid time zone %q: %w", o.tzName, err)
			}
			at := time.Now()
			if o.timeStr != "" {
				if at, err = parseQueryTime(o.timeStr, loc); err != nil {
					return fmt.Errorf("could not parse --time %q: %w", o.timeStr, err)
				}
			}
			finder, err := cfg.Finder()
			if err != nil {
				return err
			}

			c := cfg.Coordinates()
			r := finder.Calculate(c.Lat, c.Lon, at.Unix())
			ctxlog.Logger(ctx).Debug("calculated", "lat", c.Lat, "lon", c.Lon, "query", r.QueryTime,
				"window", finder.Window(), "horizon", finder.Horizon())
			return writeCalc(cmd.OutOrStdout(), o.format, c, finder, r, loc)
		},
	}

	fs := cmd.Flags()
	fs.Float64Var(&o.lat, "lat", 0, "latitude in degrees (north positive)")
	fs.Float64Var(&o.lon, "lon", 0, "longitude in degrees (east positive, west negative)")
	fs.StringVar(&o.timeStr, "time", "", "query time: RFC3339, Unix seconds or 'YYYY-MM-DDTHH:MM' in --tz (default now)")
	fs.StringVar(&o.tzName, "tz", "UTC", "IANA time zone used to parse and print times (e.g. America/Phoenix)")
	fs.IntVar(&o.window, "window", sunwindow.WindowHours, "search window in hours (even)")
	fs.StringVar(&o.twilight, "twilight", "", "search for dawn/dusk instead: civil, nautical or astronomical")
	fs.StringVar(&o.format, "format", "human", "output format: human, json or yaml")
	return cmd
}

// parseQueryTime accepts Unix seconds or one of a few common layouts
// interpreted in loc.
func parseQueryTime(s string, loc *time.Location) (time.Time, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(n, 0), nil
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04",
		"2006-01-02 15:04",
		"2006-01-02",
	}
	var err error
	for _, layout := range layouts {
		var t time.Time
		if t, err = time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

type calcEvent struct {
	Kind    string    `json:"kind" yaml:"kind"`
	Time    time.Time `json:"time" yaml:"time"`
	Azimuth float64   `json:"azimuth" yaml:"azimuth"`
}

type calcOutput struct {
	Latitude   float64          `json:"latitude" yaml:"latitude"`
	Longitude  float64          `json:"longitude" yaml:"longitude"`
	Query      time.Time        `json:"query" yaml:"query"`
	Timezone   string           `json:"timezone" yaml:"timezone"`
	Window     int              `json:"window_hours" yaml:"window_hours"`
	Horizon    float64          `json:"horizon" yaml:"horizon"`
	Visible    bool             `json:"visible" yaml:"visible"`
	Preceding  []calcEvent      `json:"preceding" yaml:"preceding"`
	Succeeding []calcEvent      `json:"succeeding" yaml:"succeeding"`
	Raw        sunwindow.Result `json:"raw" yaml:"raw"`
}

func newCalcOutput(c sunwindow.Coordinates, f *sunwindow.Finder, r sunwindow.Result, loc *time.Location) calcOutput {
	conv := func(events []sunwindow.Event) []calcEvent {
		out := []calcEvent{}
		for _, e := range events {
			out = append(out, calcEvent{Kind: e.Kind.String(), Time: e.At().In(loc), Azimuth: e.Azimuth})
		}
		return out
	}
	return calcOutput{
		Latitude:   c.Lat,
		Longitude:  c.Lon,
		Query:      time.Unix(r.QueryTime, 0).In(loc),
		Timezone:   loc.String(),
		Window:     f.Window(),
		Horizon:    f.Horizon(),
		Visible:    r.IsVisible,
		Preceding:  conv(r.Preceding()),
		Succeeding: conv(r.Succeeding()),
		Raw:        r,
	}
}

func writeCalc(w io.Writer, format string, c sunwindow.Coordinates, f *sunwindow.Finder, r sunwindow.Result, loc *time.Location) error {
	out := newCalcOutput(c, f, r, loc)
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return enc.Close()
	case "human", "":
		printHuman(w, out)
		return nil
	default:
		return fmt.Errorf("unknown format %q (use human, json or yaml)", format)
	}
}

func printHuman(w io.Writer, out calcOutput) {
	const layout = "Mon Jan _2 15:04:05 2006 MST"
	name := "Sun rise/set"
	if out.Horizon != sunwindow.HorizonAltitude {
		name = fmt.Sprintf("Sun crossing %.3f°", out.Horizon)
	}
	fmt.Fprintf(w, "%s nearest %s for latitude %.2f longitude %.2f:\n",
		name, out.Query.Format(layout), out.Latitude, out.Longitude)

	section := func(title, side string, events []calcEvent) {
		fmt.Fprintf(w, "%s event:\n", title)
		if len(events) == 0 {
			fmt.Fprintf(w, "\tNo sun rise or set during %s %d hours\n", side, out.Window/2)
		}
		for _, e := range events {
			label := "Sun rise at"
			if e.Kind == sunwindow.Sunset.String() {
				label = "Sun set at "
			}
			fmt.Fprintf(w, "\t%s %s, Azimuth %.2f\n", label, e.Time.Format(layout), e.Azimuth)
		}
	}
	section("Preceding", "preceding", out.Preceding)
	section("Succeeding", "succeeding", out.Succeeding)

	if out.Visible {
		fmt.Fprintln(w, "Sun visible.")
	} else {
		fmt.Fprintln(w, "Sun not visible.")
	}
}
