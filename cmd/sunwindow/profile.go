package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cloudeng.io/logging/ctxlog"
	"github.com/spf13/cobra"

	"github.com/thurmanmarka/sunwindow"
	"github.com/thurmanmarka/sunwindow/internal/reference"
)

type profileOptions struct {
	lat, lon float64
	tzName   string
	refCSV   string
	model    string
	from     string
	days     int
	twilight string
	outCSV   string
	perRow   bool
}

// sample is one day's reference rise and set. A zero time means the
// reference has no event.
type sample struct {
	date    time.Time // local midnight
	refRise time.Time
	refSet  time.Time
}

func profileCmd() *cobra.Command {
	var o profileOptions
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Measure the finder against reference rise/set times",
		Long: `Compare the finder's sunrise and sunset, day by day, against either a
reference CSV or another implementation (suncalc or go-sunrise).

CSV format:

  date,rise,set
  2025-01-01,07:32,17:12
  2025-01-02,07:32,17:13

date is YYYY-MM-DD, rise/set are local HH:MM or HH:MM:SS in --tz.
With --twilight the CSV rise/set columns are read as dawn/dusk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, err := loadConfig(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return runProfile(ctx, cmd.OutOrStdout(), o)
		},
	}
	fs := cmd.Flags()
	fs.Float64Var(&o.lat, "lat", 0, "latitude in degrees (north positive)")
	fs.Float64Var(&o.lon, "lon", 0, "longitude in degrees (east positive, west negative)")
	fs.StringVar(&o.tzName, "tz", "UTC", "IANA time zone of the dates and times (e.g. America/Phoenix)")
	fs.StringVar(&o.refCSV, "refcsv", "", "path to reference CSV file (date,rise,set)")
	fs.StringVar(&o.model, "model", reference.SunCalc, "reference model when no CSV is given: suncalc or go-sunrise")
	fs.StringVar(&o.from, "from", "", "first date (YYYY-MM-DD) when comparing against a model (default: Jan 1 this year)")
	fs.IntVar(&o.days, "days", 365, "number of days to compare against a model")
	fs.StringVar(&o.twilight, "twilight", "", "twilight kind: civil, nautical, astronomical (CSV only)")
	fs.StringVar(&o.outCSV, "outcsv", "", "optional path to write per-row error CSV")
	fs.BoolVar(&o.perRow, "per-row", false, "print per-day errors instead of only the summary")
	return cmd
}

func runProfile(ctx context.Context, w io.Writer, o profileOptions) error {
	logger := ctxlog.Logger(ctx)

	loc, err := time.LoadLocation(o.tzName)
	if err != nil {
		return fmt.Errorf("failed to load timezone %q: %w", o.tzName, err)
	}

	opts := []sunwindow.Option{}
	modeDesc := "SUN"
	if o.twilight != "" {
		if o.refCSV == "" {
			return fmt.Errorf("--twilight needs --refcsv: the reference models only give sunrise and sunset")
		}
		kind, err := sunwindow.ParseTwilight(strings.ToLower(o.twilight))
		if err != nil {
			return err
		}
		opts = append(opts, sunwindow.WithTwilight(kind))
		modeDesc = fmt.Sprintf("SUN (%s TWILIGHT)", strings.ToUpper(kind.String()))
	}
	finder, err := sunwindow.NewFinder(opts...)
	if err != nil {
		return err
	}

	if o.lat == 0 && o.lon == 0 {
		logger.Warn("lat=0 lon=0 (Gulf of Guinea), did you mean to set --lat/--lon?")
	}

	var (
		samples []sample
		skipped int
		source  string
	)
	if o.refCSV != "" {
		f, err := os.Open(o.refCSV)
		if err != nil {
			return fmt.Errorf("failed to open refcsv %q: %w", o.refCSV, err)
		}
		defer f.Close()
		samples, skipped, err = readReferenceCSV(ctx, f, loc)
		if err != nil {
			return err
		}
		source = o.refCSV
	} else {
		model, err := reference.Lookup(o.model)
		if err != nil {
			return err
		}
		from := time.Date(time.Now().In(loc).Year(), 1, 1, 0, 0, 0, 0, loc)
		if o.from != "" {
			if from, err = time.ParseInLocation(time.DateOnly, o.from, loc); err != nil {
				return fmt.Errorf("invalid --from %q: %w", o.from, err)
			}
		}
		samples = modelSamples(model, o.lat, o.lon, from, o.days)
		source = o.model
	}

	var outWriter *csv.Writer
	if o.outCSV != "" {
		outFile, err := os.Create(o.outCSV)
		if err != nil {
			return fmt.Errorf("failed to create outcsv %q: %w", o.outCSV, err)
		}
		defer outFile.Close()
		outWriter = csv.NewWriter(outFile)
	}

	p := profiler{
		finder:   finder,
		coords:   sunwindow.Coordinates{Lat: o.lat, Lon: o.lon},
		loc:      loc,
		modeDesc: modeDesc,
		perRow:   o.perRow,
	}
	if err := p.run(w, outWriter, samples); err != nil {
		return err
	}
	if outWriter != nil {
		outWriter.Flush()
		if err := outWriter.Error(); err != nil {
			return fmt.Errorf("failed to write outcsv: %w", err)
		}
	}

	fmt.Fprintln(w, "=== sunwindow profiler summary ===")
	fmt.Fprintf(w, "Mode:    %s\n", modeDesc)
	fmt.Fprintf(w, "Source:  %s\n", source)
	fmt.Fprintf(w, "Lat/Lon: %.4f / %.4f\n", o.lat, o.lon)
	fmt.Fprintf(w, "TZ:      %s\n", loc.String())
	fmt.Fprintf(w, "Rows:    %d (processed), %d skipped, %d without events\n", len(samples), skipped, p.missing)
	if p.rise.count == 0 {
		fmt.Fprintln(w, "No valid rows to compute stats.")
		return nil
	}
	p.rise.write(w, "Rise error (minutes)")
	p.set.write(w, "Set error (minutes)")
	p.riseSigned.write(w, "Rise signed error (minutes, ours - ref)")
	p.setSigned.write(w, "Set signed error (minutes, ours - ref)")
	return nil
}

type profiler struct {
	finder   *sunwindow.Finder
	coords   sunwindow.Coordinates
	loc      *time.Location
	modeDesc string
	perRow   bool

	rise, set, riseSigned, setSigned stats
	missing                          int
}

var profileHeader = []string{
	"date", "mode",
	"rise", "set", "ref_rise", "ref_set",
	"rise_err", "set_err", "rise_signed", "set_signed",
	"rise_azimuth", "set_azimuth",
}

func (p *profiler) run(w io.Writer, out *csv.Writer, samples []sample) error {
	if out != nil {
		if err := out.Write(profileHeader); err != nil {
			return fmt.Errorf("failed to write outcsv header: %w", err)
		}
	}
	for _, s := range samples {
		// Local solar noon falls between the day's rise and set, so the
		// bracketing pair is exactly that day's events.
		noon := reference.LocalSolarNoon(p.coords.Lon,
			time.Date(s.date.Year(), s.date.Month(), s.date.Day(), 12, 0, 0, 0, p.loc))
		r := p.finder.Calculate(p.coords.Lat, p.coords.Lon, noon.Unix())

		var gotRise, gotSet time.Time
		if t, ok := r.Rise(); ok && r.RiseTime <= r.QueryTime {
			gotRise = t.In(p.loc)
		}
		if t, ok := r.Set(); ok && r.SetTime >= r.QueryTime {
			gotSet = t.In(p.loc)
		}
		if gotRise.IsZero() || gotSet.IsZero() {
			p.missing++
		}

		riseErr, setErr := diffMinutes(gotRise, s.refRise), diffMinutes(gotSet, s.refSet)
		riseSigned, setSigned := diffMinutesSigned(gotRise, s.refRise), diffMinutesSigned(gotSet, s.refSet)
		p.rise.add(riseErr)
		p.set.add(setErr)
		p.riseSigned.add(riseSigned)
		p.setSigned.add(setSigned)

		date := s.date.Format(time.DateOnly)
		if p.perRow {
			fmt.Fprintf(w, "%s %s: rise err=%.2f min (got=%s ref=%s), set err=%.2f min (got=%s ref=%s)\n",
				date, p.modeDesc,
				riseErr, clock(gotRise), clock(s.refRise),
				setErr, clock(gotSet), clock(s.refSet))
		}
		if out != nil {
			rec := []string{
				date, p.modeDesc,
				clock(gotRise), clock(gotSet), clock(s.refRise), clock(s.refSet),
				fmt.Sprintf("%.6f", riseErr), fmt.Sprintf("%.6f", setErr),
				fmt.Sprintf("%.6f", riseSigned), fmt.Sprintf("%.6f", setSigned),
				fmt.Sprintf("%.3f", r.RiseAz), fmt.Sprintf("%.3f", r.SetAz),
			}
			if err := out.Write(rec); err != nil {
				return fmt.Errorf("%s: failed to write outcsv: %w", date, err)
			}
		}
	}
	return nil
}

func clock(t time.Time) string {
	if t.IsZero() {
		return "--:--"
	}
	return t.Format("15:04")
}

// readReferenceCSV parses date,rise,set rows. Malformed rows are logged and
// counted as skipped.
func readReferenceCSV(ctx context.Context, r io.Reader, loc *time.Location) ([]sample, int, error) {
	logger := ctxlog.Logger(ctx)

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // validated per row
	records, err := cr.ReadAll()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, 0, fmt.Errorf("empty CSV file")
	}

	start := 0
	if len(records[0]) >= 1 && strings.EqualFold(strings.TrimSpace(records[0][0]), "date") {
		start = 1
	}

	var (
		samples []sample
		skipped int
	)
	for i := start; i < len(records); i++ {
		row := records[i]
		if len(row) < 3 {
			logger.Warn("skipping row: expected date,rise,set", "row", i+1, "columns", len(row))
			skipped++
			continue
		}
		dateStr := strings.TrimSpace(row[0])
		date, err := time.ParseInLocation(time.DateOnly, dateStr, loc)
		if err != nil {
			logger.Warn("skipping row: invalid date", "row", i+1, "date", dateStr, "error", err)
			skipped++
			continue
		}
		rise, err := parseLocalTime(date, strings.TrimSpace(row[1]), loc)
		if err != nil {
			logger.Warn("skipping row: invalid rise time", "row", i+1, "rise", row[1], "error", err)
			skipped++
			continue
		}
		set, err := parseLocalTime(date, strings.TrimSpace(row[2]), loc)
		if err != nil {
			logger.Warn("skipping row: invalid set time", "row", i+1, "set", row[2], "error", err)
			skipped++
			continue
		}
		samples = append(samples, sample{date: date, refRise: rise, refSet: set})
	}
	return samples, skipped, nil
}

// modelSamples evaluates model for days consecutive dates starting at from.
func modelSamples(model reference.Model, lat, lon float64, from time.Time, days int) []sample {
	samples := make([]sample, 0, days)
	for i := 0; i < days; i++ {
		date := from.AddDate(0, 0, i)
		noon := reference.LocalSolarNoon(lon,
			time.Date(date.Year(), date.Month(), date.Day(), 12, 0, 0, 0, date.Location()))
		d := model(lat, lon, noon)
		s := sample{date: date}
		if d.OK {
			s.refRise, s.refSet = d.Rise.In(date.Location()), d.Set.In(date.Location())
		}
		samples = append(samples, s)
	}
	return samples
}

func parseLocalTime(date time.Time, hhmm string, loc *time.Location) (time.Time, error) {
	layout := "15:04"
	if strings.Count(hhmm, ":") == 2 {
		layout = "15:04:05"
	}
	parsed, err := time.ParseInLocation(layout, hhmm, loc)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		parsed.Hour(), parsed.Minute(), parsed.Second(), 0, loc), nil
}
