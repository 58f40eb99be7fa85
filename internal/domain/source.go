package domain

import (
	"context"
	"time"
)

// ProjectionSource queries the remote image collection. Implementations do the
// filtering and the spatial/temporal reduction server-side and hand back scalars.
type ProjectionSource interface {
	// SampleDay reduces the single image for day (if any) at the query point.
	SampleDay(ctx context.Context, q CollectionQuery, day time.Time) (RawSample, error)

	// ListMonths returns the distinct year-months present in the filtered collection.
	ListMonths(ctx context.Context, q CollectionQuery) ([]YearMonth, error)

	// SampleMonth re-filters the collection to month, sums precipitation and
	// averages temperatures over time, then reduces at the query point.
	SampleMonth(ctx context.Context, q CollectionQuery, month YearMonth) (RawSample, error)
}
