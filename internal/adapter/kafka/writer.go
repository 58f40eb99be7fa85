package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/climate-projection-explorer/internal/config"
	"github.com/couchcryptid/climate-projection-explorer/internal/domain"
)

// Publisher produces finished projections to a Kafka topic.
// It implements pipeline.Publisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured projection topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.LeastBytes{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
		// Multi-year daily projections exceed the default 1 MB batch.
		BatchBytes: 16 << 20,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish writes one message per projection keyed by its request ID.
func (p *Publisher) Publish(ctx context.Context, proj domain.Projection) error {
	msg, err := serializeToMessage(proj)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write projection %s: %w", proj.RequestID, err)
	}
	p.logger.Debug("projection published", "request_id", proj.RequestID, "topic", p.writer.Topic, "bytes", len(msg.Value))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a Projection into a Kafka message.
func serializeToMessage(proj domain.Projection) (kafkago.Message, error) {
	data, err := json.Marshal(proj)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize projection: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(proj.RequestID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "resolution", Value: []byte(proj.Resolution)},
			{Key: "model", Value: []byte(proj.Query.Model)},
			{Key: "scenario", Value: []byte(proj.Query.Scenario)},
			{Key: "generated_at", Value: []byte(proj.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
