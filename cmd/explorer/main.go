package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/climate-projection-explorer/internal/adapter/cache"
	"github.com/couchcryptid/climate-projection-explorer/internal/adapter/earthengine"
	httpadapter "github.com/couchcryptid/climate-projection-explorer/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/climate-projection-explorer/internal/adapter/kafka"
	"github.com/couchcryptid/climate-projection-explorer/internal/config"
	"github.com/couchcryptid/climate-projection-explorer/internal/observability"
	"github.com/couchcryptid/climate-projection-explorer/internal/pipeline"
)

func main() {
	// A local .env file stands in for the secret store; real env vars take precedence.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := earthengine.NewClientFromConfig(cfg, logger, metrics)
	if err != nil {
		logger.Error("earth engine initialization failed", "error", err)
		os.Exit(1)
	}
	logger.Info("earth engine client ready", "base_url", cfg.EEBaseURL, "dataset", cfg.EEDataset, "timeout", cfg.EETimeout)

	store, closeStore, err := cache.NewStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("sample cache initialization failed", "error", err)
		os.Exit(1)
	}
	source := cache.NewCachedSource(client, store, logger, metrics)

	// Projection publishing is feature-flagged via KAFKA_ENABLED.
	var publisher pipeline.Publisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg, logger)
		publisher = kafkaPublisher
		metrics.PublishEnabled.Set(1)
		logger.Info("projection publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("projection publishing disabled")
	}

	fetcher := pipeline.New(source, publisher, cfg.EEDataset, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, fetcher, fetcher, cfg.CORSAllowedOrigins, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}
	if err := closeStore(); err != nil {
		logger.Error("sample cache close error", "error", err)
	}

	logger.Info("shutdown complete")
}
