package cache

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/climate-projection-explorer/internal/config"
)

// NewStore returns a Redis store when REDIS_ADDR is configured, otherwise an
// in-memory LRU store. The returned close function is never nil.
func NewStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, func() error, error) {
	if cfg.RedisAddr == "" {
		logger.Info("sample cache: in-memory LRU", "cache_size", cfg.CacheSize)
		return NewLRUStore(cfg.CacheSize), func() error { return nil }, nil
	}
	rs, err := NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL, logger)
	if err != nil {
		return nil, func() error { return nil }, err
	}
	logger.Info("sample cache: redis", "addr", cfg.RedisAddr, "db", cfg.RedisDB, "ttl", cfg.CacheTTL)
	return rs, rs.Close, nil
}
