package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/climate-projection-explorer/internal/domain"
	"github.com/couchcryptid/climate-projection-explorer/internal/observability"
)

// Publisher exports finished projections.
type Publisher interface {
	Publish(ctx context.Context, p domain.Projection) error
}

// ReadinessChecker is implemented by sources that depend on a remote system.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Fetcher runs the fetch-transform batch for one query: it samples the source day
// by day or month by month, converts units, and assembles a Projection.
type Fetcher struct {
	source    domain.ProjectionSource
	publisher Publisher
	dataset   string
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Fetcher. Pass a nil publisher to disable publishing.
func New(source domain.ProjectionSource, publisher Publisher, dataset string, logger *slog.Logger, metrics *observability.Metrics) *Fetcher {
	if dataset == "" {
		dataset = domain.DefaultDataset
	}
	return &Fetcher{
		source:    source,
		publisher: publisher,
		dataset:   dataset,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness reports whether the source can currently serve requests.
func (f *Fetcher) CheckReadiness(ctx context.Context) error {
	if rc, ok := f.source.(ReadinessChecker); ok {
		return rc.CheckReadiness(ctx)
	}
	return nil
}

// Fetch dispatches on resolution.
func (f *Fetcher) Fetch(ctx context.Context, res domain.Resolution, q domain.QueryParams) (domain.Projection, error) {
	switch res {
	case domain.ResolutionDaily:
		return f.FetchDaily(ctx, q)
	case domain.ResolutionMonthly:
		return f.FetchMonthly(ctx, q)
	default:
		return domain.Projection{}, &domain.ValidationError{Field: "resolution", Message: fmt.Sprintf("unknown resolution %q", res)}
	}
}

// FetchDaily returns one record per day in the inclusive range for which the
// source produced all three bands.
func (f *Fetcher) FetchDaily(ctx context.Context, q domain.QueryParams) (domain.Projection, error) {
	return f.run(ctx, domain.ResolutionDaily, q, func(cq domain.CollectionQuery, p *domain.Projection) error {
		records := make([]domain.DailyRecord, 0, q.Days())
		for day := q.Start; !day.After(q.End); day = day.AddDate(0, 0, 1) {
			s, err := f.source.SampleDay(ctx, cq, day)
			if err != nil {
				if fatal(ctx, err) {
					return fmt.Errorf("sample %s: %w", day.Format(domain.DateLayout), err)
				}
				f.skip(p, &domain.SampleError{Key: day.Format(domain.DateLayout), Err: err})
				continue
			}
			rec, err := domain.NewDailyRecord(day, s)
			if err != nil {
				f.skip(p, err)
				continue
			}
			records = append(records, rec)
		}
		p.Daily = records
		return nil
	})
}

// FetchMonthly returns one aggregated, risk-labelled record per month present in
// the collection, in ascending month order.
func (f *Fetcher) FetchMonthly(ctx context.Context, q domain.QueryParams) (domain.Projection, error) {
	return f.run(ctx, domain.ResolutionMonthly, q, func(cq domain.CollectionQuery, p *domain.Projection) error {
		months, err := f.source.ListMonths(ctx, cq)
		if err != nil {
			return fmt.Errorf("list months: %w", err)
		}

		records := make([]domain.MonthlyRecord, 0, len(months))
		for _, month := range months {
			s, err := f.source.SampleMonth(ctx, cq, month)
			if err != nil {
				if fatal(ctx, err) {
					return fmt.Errorf("sample %s: %w", month, err)
				}
				f.skip(p, &domain.SampleError{Key: month.String(), Err: err})
				continue
			}
			rec, err := domain.NewMonthlyRecord(month, s)
			if err != nil {
				f.skip(p, err)
				continue
			}
			records = append(records, rec)
		}

		slices.SortFunc(records, func(a, b domain.MonthlyRecord) int {
			switch {
			case a.Month.Before(b.Month):
				return -1
			case b.Month.Before(a.Month):
				return 1
			default:
				return 0
			}
		})
		p.Monthly = records
		return nil
	})
}

// run wraps a batch with validation, metrics, the empty-result check, and publishing.
func (f *Fetcher) run(ctx context.Context, res domain.Resolution, q domain.QueryParams, batch func(domain.CollectionQuery, *domain.Projection) error) (domain.Projection, error) {
	label := string(res)
	if err := q.Validate(); err != nil {
		f.metrics.ProjectionRequests.WithLabelValues(label, "invalid").Inc()
		return domain.Projection{}, err
	}

	start := time.Now()
	p := domain.Projection{
		RequestID:  uuid.NewString(),
		Resolution: res,
		Query:      q,
	}
	logger := f.logger.With("request_id", p.RequestID, "resolution", label)
	logger.Info("fetching projection",
		"lat", q.Point.Lat,
		"lon", q.Point.Lon,
		"start", q.Start.Format(domain.DateLayout),
		"end", q.End.Format(domain.DateLayout),
		"model", q.Model,
		"scenario", q.Scenario,
	)

	if err := batch(q.Collection(f.dataset), &p); err != nil {
		f.metrics.ProjectionRequests.WithLabelValues(label, "error").Inc()
		logger.Error("projection failed", "error", err)
		return domain.Projection{}, err
	}

	f.metrics.SamplesFetched.WithLabelValues(label).Add(float64(p.Len()))
	f.metrics.ProjectionDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())

	if p.Len() == 0 {
		f.metrics.ProjectionRequests.WithLabelValues(label, "no_data").Inc()
		logger.Warn("projection has no data", "skipped", p.Skipped)
		return domain.Projection{}, domain.ErrNoData
	}

	p.GeneratedAt = domain.Now()
	f.metrics.ProjectionRequests.WithLabelValues(label, "success").Inc()
	f.metrics.RecordsProduced.WithLabelValues(label).Observe(float64(p.Len()))
	logger.Info("projection complete", "records", p.Len(), "skipped", p.Skipped, "duration", time.Since(start))

	f.publish(ctx, p)
	return p, nil
}

// skip records an isolated sample failure. Missing bands are routine (masked
// pixels, gaps in the collection) and log at debug; remote errors log at warn.
func (f *Fetcher) skip(p *domain.Projection, err error) {
	p.Skipped++
	label := string(p.Resolution)

	var se *domain.SampleError
	if errors.As(err, &se) && se.Err == nil {
		f.logger.Debug("sample incomplete, skipping", "request_id", p.RequestID, "sample", se.Key, "missing", se.Missing)
		f.metrics.SamplesSkipped.WithLabelValues(label, "missing").Inc()
		return
	}
	f.logger.Warn("sample failed, skipping", "request_id", p.RequestID, "error", err)
	f.metrics.SamplesSkipped.WithLabelValues(label, "remote").Inc()
}

func (f *Fetcher) publish(ctx context.Context, p domain.Projection) {
	if f.publisher == nil {
		return
	}
	if err := f.publisher.Publish(ctx, p); err != nil {
		f.metrics.PublishErrors.Inc()
		f.logger.Error("publish projection failed", "request_id", p.RequestID, "error", err)
		return
	}
	f.metrics.ProjectionsPublished.Inc()
}

// fatal reports whether a sample error should abort the whole batch.
func fatal(ctx context.Context, err error) bool {
	return ctx.Err() != nil ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, domain.ErrSourceUnavailable)
}
