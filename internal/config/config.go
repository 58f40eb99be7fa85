package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/climate-projection-explorer/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr           string
	LogLevel           string
	LogFormat          string
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string

	// Remote geospatial service.
	EEBaseURL             string
	EETokenURL            string
	EEProject             string
	EEDataset             string
	EECredentialsFile     string
	EEServiceAccountEmail string
	EEPrivateKey          string
	EETimeout             time.Duration
	EEMaxRetries          int

	// Sample cache. Redis is used when RedisAddr is set, otherwise an in-memory LRU.
	CacheSize     int
	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Projection publishing (feature-flagged via KAFKA_ENABLED).
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	eeTimeout, err := parseDuration("EE_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	cacheTTL, err := parseDuration("CACHE_TTL", "24h")
	if err != nil {
		return nil, err
	}

	maxRetries, err := parseInt("EE_MAX_RETRIES", 3, 0, 10)
	if err != nil {
		return nil, err
	}

	cacheSize, err := parseInt("CACHE_SIZE", 5000, 1, 1_000_000)
	if err != nil {
		return nil, err
	}

	redisDB, err := parseInt("REDIS_DB", 0, 0, 15)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),

		EEBaseURL:             strings.TrimRight(sharedcfg.EnvOrDefault("EE_BASE_URL", "https://earthengine.googleapis.com"), "/"),
		EETokenURL:            sharedcfg.EnvOrDefault("EE_TOKEN_URL", "https://oauth2.googleapis.com/token"),
		EEProject:             os.Getenv("EE_PROJECT"),
		EEDataset:             sharedcfg.EnvOrDefault("EE_DATASET", domain.DefaultDataset),
		EECredentialsFile:     os.Getenv("EE_CREDENTIALS_FILE"),
		EEServiceAccountEmail: os.Getenv("EE_SERVICE_ACCOUNT_EMAIL"),
		EEPrivateKey:          os.Getenv("EE_PRIVATE_KEY"),
		EETimeout:             eeTimeout,
		EEMaxRetries:          maxRetries,

		CacheSize:     cacheSize,
		CacheTTL:      cacheTTL,
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		KafkaEnabled: os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "climate-projections"),
	}

	if cfg.EEDataset == "" {
		return nil, errors.New("EE_DATASET is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_TOPIC is empty")
	}

	return cfg, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseInt(key string, def, lo, hi int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: must be an integer between %d and %d", key, lo, hi)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
