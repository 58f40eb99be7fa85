// Command fetch runs one projection query against the remote service and writes
// the records as CSV. Credentials and service settings come from the same
// environment variables as the explorer service.
//
// Usage:
//
//	go run ./cmd/fetch \
//	  -lat 25.0 -lon 30.0 \
//	  -start 2025-01-01 -end 2025-12-31 \
//	  -model ACCESS-CM2 -scenario ssp245 \
//	  -resolution monthly -out climate_projections_monthly.csv
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/climate-projection-explorer/internal/adapter/cache"
	"github.com/couchcryptid/climate-projection-explorer/internal/adapter/earthengine"
	"github.com/couchcryptid/climate-projection-explorer/internal/config"
	"github.com/couchcryptid/climate-projection-explorer/internal/domain"
	"github.com/couchcryptid/climate-projection-explorer/internal/observability"
	"github.com/couchcryptid/climate-projection-explorer/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fetch failed", "error", err)
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run() error {
	lat := flag.Float64("lat", 0, "latitude in degrees")
	lon := flag.Float64("lon", 0, "longitude in degrees")
	start := flag.String("start", domain.DefaultStart.Format(domain.DateLayout), "first day (YYYY-MM-DD)")
	end := flag.String("end", domain.DefaultEnd.Format(domain.DateLayout), "last day, inclusive (YYYY-MM-DD)")
	model := flag.String("model", string(domain.Models[0]), "climate model")
	scenario := flag.String("scenario", string(domain.Scenarios[0]), "emissions scenario")
	resolution := flag.String("resolution", string(domain.ResolutionDaily), "daily or monthly")
	out := flag.String("out", "-", "output CSV path, - for stdout")
	flag.Parse()

	_ = godotenv.Load()

	q, err := buildQuery(*lat, *lon, *start, *end, *model, *scenario, isSet("lat") && isSet("lon"))
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// Stdout may carry the CSV.
	logger := observability.NewCLILogger(os.Stderr, cfg.LogLevel)
	metrics := observability.NewUnregisteredMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := earthengine.NewClientFromConfig(cfg, logger, metrics)
	if err != nil {
		return err
	}
	source := cache.NewCachedSource(client, cache.NewLRUStore(cfg.CacheSize), logger, metrics)
	fetcher := pipeline.New(source, nil, cfg.EEDataset, logger, metrics)

	proj, err := fetcher.Fetch(ctx, domain.Resolution(*resolution), q)
	if err != nil {
		return err
	}

	if err := writeOutput(*out, proj); err != nil {
		return err
	}
	logger.Info("wrote projection", "records", proj.Len(), "skipped", proj.Skipped, "out", *out)
	return nil
}

func buildQuery(lat, lon float64, start, end, model, scenario string, hasPoint bool) (domain.QueryParams, error) {
	q := domain.QueryParams{Model: domain.Model(model), Scenario: domain.Scenario(scenario)}
	if hasPoint {
		q.Point = &domain.Point{Lat: lat, Lon: lon}
	}
	var err error
	if q.Start, err = domain.ParseDate(start); err != nil {
		return q, &domain.ValidationError{Field: "start", Message: "start: " + err.Error()}
	}
	if q.End, err = domain.ParseDate(end); err != nil {
		return q, &domain.ValidationError{Field: "end", Message: "end: " + err.Error()}
	}
	return q, nil
}

// writeOutput writes the CSV to stdout for "-", otherwise to the named file. A
// failed close is reported since it can truncate the file.
func writeOutput(path string, proj domain.Projection) (err error) {
	if path == "-" {
		return writeCSV(os.Stdout, proj)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()
	return writeCSV(f, proj)
}

func writeCSV(w io.Writer, proj domain.Projection) error {
	if proj.Resolution == domain.ResolutionMonthly {
		return domain.WriteMonthlyCSV(w, proj.Monthly)
	}
	return domain.WriteDailyCSV(w, proj.Daily)
}

func isSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
