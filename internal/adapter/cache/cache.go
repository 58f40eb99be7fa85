// Package cache provides a read-through cache over a domain.ProjectionSource.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/climate-projection-explorer/internal/domain"
	"github.com/couchcryptid/climate-projection-explorer/internal/observability"
)

// Store holds encoded source results. Implementations treat every failure as a miss.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
}

// ReadinessChecker is implemented by sources and stores that depend on a remote system.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// CachedSource wraps a ProjectionSource with a Store.
type CachedSource struct {
	inner   domain.ProjectionSource
	store   Store
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewCachedSource creates a cache decorator around a projection source.
func NewCachedSource(inner domain.ProjectionSource, store Store, logger *slog.Logger, metrics *observability.Metrics) *CachedSource {
	return &CachedSource{inner: inner, store: store, metrics: metrics, logger: logger}
}

func (c *CachedSource) SampleDay(ctx context.Context, q domain.CollectionQuery, day time.Time) (domain.RawSample, error) {
	key := fmt.Sprintf("day:%s|%s", queryKey(q), day.UTC().Format(domain.DateLayout))
	var s domain.RawSample
	if c.lookup(ctx, "sample_day", key, &s) {
		return s, nil
	}
	s, err := c.inner.SampleDay(ctx, q, day)
	if err != nil {
		return s, err
	}
	// Only cache complete samples so masked or not-yet-published days are asked again.
	if s.Complete() {
		c.save(ctx, key, s)
	}
	return s, nil
}

func (c *CachedSource) ListMonths(ctx context.Context, q domain.CollectionQuery) ([]domain.YearMonth, error) {
	key := fmt.Sprintf("months:%s|%s|%s", queryKey(q), q.Start.UTC().Format(domain.DateLayout), q.End.UTC().Format(domain.DateLayout))
	var months []domain.YearMonth
	if c.lookup(ctx, "list_months", key, &months) {
		return months, nil
	}
	months, err := c.inner.ListMonths(ctx, q)
	if err != nil {
		return months, err
	}
	if len(months) > 0 {
		c.save(ctx, key, months)
	}
	return months, nil
}

func (c *CachedSource) SampleMonth(ctx context.Context, q domain.CollectionQuery, month domain.YearMonth) (domain.RawSample, error) {
	// The month window is clipped to the query range, so the range is part of the key.
	key := fmt.Sprintf("month:%s|%s|%s|%s", queryKey(q), month, q.Start.UTC().Format(domain.DateLayout), q.End.UTC().Format(domain.DateLayout))
	var s domain.RawSample
	if c.lookup(ctx, "sample_month", key, &s) {
		return s, nil
	}
	s, err := c.inner.SampleMonth(ctx, q, month)
	if err != nil {
		return s, err
	}
	if s.Complete() {
		c.save(ctx, key, s)
	}
	return s, nil
}

// CheckReadiness checks the wrapped source and store when they support it.
func (c *CachedSource) CheckReadiness(ctx context.Context) error {
	var errs []error
	if rc, ok := c.inner.(ReadinessChecker); ok {
		errs = append(errs, rc.CheckReadiness(ctx))
	}
	if rc, ok := c.store.(ReadinessChecker); ok {
		errs = append(errs, rc.CheckReadiness(ctx))
	}
	return errors.Join(errs...)
}

func (c *CachedSource) lookup(ctx context.Context, op, key string, out any) bool {
	data, ok := c.store.Get(ctx, key)
	if ok {
		if err := json.Unmarshal(data, out); err != nil {
			c.logger.Warn("discarding undecodable cache entry", "key", key, "error", err)
			ok = false
		}
	}
	result := "miss"
	if ok {
		result = "hit"
	}
	c.metrics.SourceCache.WithLabelValues(op, result).Inc()
	return ok
}

func (c *CachedSource) save(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("failed to encode cache entry", "key", key, "error", err)
		return
	}
	c.store.Set(ctx, key, data)
}

func queryKey(q domain.CollectionQuery) string {
	return fmt.Sprintf("%s|%s|%s|%.6f,%.6f", q.Dataset, q.Model, q.Scenario, q.Point.Lat, q.Point.Lon)
}
