//go:build earthengine

package earthengine

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-projection-explorer/internal/domain"
	"github.com/couchcryptid/climate-projection-explorer/internal/observability"
)

// These tests hit the real Earth Engine API and require EE_CREDENTIALS_FILE
// (and EE_PROJECT unless the key file names one).
// Run with: go test -tags=earthengine ./internal/adapter/earthengine/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	path := os.Getenv("EE_CREDENTIALS_FILE")
	if path == "" {
		t.Fatal("EE_CREDENTIALS_FILE must be set to run smoke tests")
	}
	creds, err := LoadCredentials(path, "", "")
	require.NoError(t, err)

	c, err := NewClient(Options{
		BaseURL:    "https://earthengine.googleapis.com",
		TokenURL:   "https://oauth2.googleapis.com/token",
		Project:    os.Getenv("EE_PROJECT"),
		Timeout:    60 * time.Second,
		MaxRetries: 2,
	}, creds, slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())
	require.NoError(t, err)
	return c
}

func smokeQuery() domain.CollectionQuery {
	return domain.CollectionQuery{
		Dataset:  domain.DefaultDataset,
		Model:    domain.ModelACCESSCM2,
		Scenario: domain.ScenarioSSP245,
		Point:    domain.Point{Lat: 25.0, Lon: 30.0},
		Start:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestSmoke_SampleDay(t *testing.T) {
	c := smokeClient(t)

	s, err := c.SampleDay(context.Background(), smokeQuery(), time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.True(t, s.Complete(), "missing bands: %v", s.Missing())

	// Southern Egypt in January: dry, 5 to 35 °C.
	assert.GreaterOrEqual(t, *s.Pr, 0.0)
	assert.InDelta(t, 20.0, domain.Celsius(*s.Tasmin), 15)
	assert.InDelta(t, 20.0, domain.Celsius(*s.Tasmax), 15)
}

func TestSmoke_ListMonthsAndSampleMonth(t *testing.T) {
	c := smokeClient(t)

	months, err := c.ListMonths(context.Background(), smokeQuery())
	require.NoError(t, err)
	assert.Equal(t, []domain.YearMonth{
		{Year: 2025, Month: time.January},
		{Year: 2025, Month: time.February},
	}, months)

	s, err := c.SampleMonth(context.Background(), smokeQuery(), months[0])
	require.NoError(t, err)
	assert.True(t, s.Complete(), "missing bands: %v", s.Missing())
}

func TestSmoke_CheckReadiness(t *testing.T) {
	require.NoError(t, smokeClient(t).CheckReadiness(context.Background()))
}
