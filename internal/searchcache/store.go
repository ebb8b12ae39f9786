package searchcache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"trackmerge/internal/catalog"
	"trackmerge/internal/config"
)

// Store keeps search results keyed by an opaque string.
type Store interface {
	Get(ctx context.Context, key string) ([]catalog.Record, bool, error)
	Put(ctx context.Context, key string, records []catalog.Record) error
	Close() error
}

// Open returns the store selected by cfg.Cache.Backend, or nil when caching
// is disabled.
func Open(cfg *config.Config, logger *slog.Logger) (Store, error) {
	if cfg == nil {
		return nil, nil
	}
	ttl := cfg.CacheTTL()
	switch strings.ToLower(cfg.Cache.Backend) {
	case "", "none":
		return nil, nil
	case "file":
		return NewFileStore(cfg.Cache.Path, ttl, logger), nil
	case "redis":
		return NewRedisStore(cfg.Cache.RedisAddr, ttl), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.Cache.Backend)
	}
}

func expired(cachedAt time.Time, ttl time.Duration, now time.Time) bool {
	return ttl > 0 && now.Sub(cachedAt) > ttl
}
