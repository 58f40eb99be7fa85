package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.CORSAllowedOrigins)

	assert.Equal(t, "https://earthengine.googleapis.com", cfg.EEBaseURL)
	assert.Equal(t, "https://oauth2.googleapis.com/token", cfg.EETokenURL)
	assert.Empty(t, cfg.EEProject)
	assert.Equal(t, "NASA/GDDP-CMIP6", cfg.EEDataset)
	assert.Equal(t, 30*time.Second, cfg.EETimeout)
	assert.Equal(t, 3, cfg.EEMaxRetries)

	assert.Equal(t, 5000, cfg.CacheSize)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 0, cfg.RedisDB)

	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "climate-projections", cfg.KafkaTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("EE_BASE_URL", "http://localhost:9999/")
	t.Setenv("EE_PROJECT", "climate-sandbox")
	t.Setenv("EE_DATASET", "NASA/GDDP-CMIP6-test")
	t.Setenv("EE_CREDENTIALS_FILE", "/secrets/sa.json")
	t.Setenv("EE_TIMEOUT", "5s")
	t.Setenv("EE_MAX_RETRIES", "0")
	t.Setenv("CACHE_SIZE", "10")
	t.Setenv("CACHE_TTL", "1h")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-projections")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "http://localhost:9999", cfg.EEBaseURL)
	assert.Equal(t, "climate-sandbox", cfg.EEProject)
	assert.Equal(t, "NASA/GDDP-CMIP6-test", cfg.EEDataset)
	assert.Equal(t, "/secrets/sa.json", cfg.EECredentialsFile)
	assert.Equal(t, 5*time.Second, cfg.EETimeout)
	assert.Equal(t, 0, cfg.EEMaxRetries)
	assert.Equal(t, 10, cfg.CacheSize)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-projections", cfg.KafkaTopic)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidDurations(t *testing.T) {
	for _, key := range []string{"EE_TIMEOUT", "CACHE_TTL"} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, "-1s")
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_InvalidIntegers(t *testing.T) {
	tests := map[string]string{
		"EE_MAX_RETRIES": "11",
		"CACHE_SIZE":     "0",
		"REDIS_DB":       "abc",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_KafkaEnabledOnlyWhenTrue(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "yes")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}
