package remote

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rpggio/sitetrack/internal/config"
	"github.com/rpggio/sitetrack/internal/domain/project"
)

// Open creates the remote store selected by cfg. The returned closer is
// always safe to call.
func Open(cfg config.RemoteConfig, logger *slog.Logger) (project.RemoteStore, func(), error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryStore(), func() {}, nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			// An unreachable remote is not fatal; the store falls back to the cache.
			if logger != nil {
				logger.Warn("redis ping failed", "addr", cfg.Addr, "error", err)
			}
		}
		closer := func() { _ = rdb.Close() }
		return NewRedisStore(rdb, cfg.Prefix, cfg.Timeout, logger), closer, nil
	default:
		return nil, func() {}, fmt.Errorf("unknown remote driver %q", cfg.Driver)
	}
}
