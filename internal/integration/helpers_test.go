//go:build integration

package integration_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/couchcryptid/climate-projection-explorer/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node KRaft broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("climate-explorer-test"))
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start kafka container")

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// startRedis runs a Redis server and returns its host:port.
func startRedis(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start redis container")

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	return endpoint
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	cconn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cconn.Close()

	require.NoError(t, cconn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// stubSource serves complete samples for every day and month and counts calls.
type stubSource struct {
	dayCalls   int
	monthCalls int
}

func ptr(v float64) *float64 { return &v }

func (s *stubSource) SampleDay(_ context.Context, _ domain.CollectionQuery, day time.Time) (domain.RawSample, error) {
	s.dayCalls++
	d := float64(day.Day())
	return domain.RawSample{Pr: ptr(d / 86400), Tasmin: ptr(273.15 + d), Tasmax: ptr(283.15 + d)}, nil
}

func (s *stubSource) ListMonths(_ context.Context, q domain.CollectionQuery) ([]domain.YearMonth, error) {
	var months []domain.YearMonth
	for m := domain.YearMonthOf(q.Start); m.Start().Before(q.End); m = m.Next() {
		months = append(months, m)
	}
	return months, nil
}

func (s *stubSource) SampleMonth(_ context.Context, _ domain.CollectionQuery, month domain.YearMonth) (domain.RawSample, error) {
	s.monthCalls++
	p := float64(month.Month) * 20
	return domain.RawSample{Pr: ptr(p / 86400), Tasmin: ptr(278.15), Tasmax: ptr(300.15)}, nil
}
