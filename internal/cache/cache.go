// Package cache stores JSON-encoded values under string keys with a TTL.
package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/maxviazov/member-crm/internal/config"
)

// Cache is a key-value store for read models.
// Get fills dest (a pointer) and reports a hit; a miss is (false, nil).
// A ttl of zero means the cache's default.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, val any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string, any) (bool, error)       { return false, nil }
func (Nop) Set(context.Context, string, any, time.Duration) error { return nil }
func (Nop) Delete(context.Context, string) error                  { return nil }

// New builds the configured cache and a func releasing it. An unreachable redis falls back
// to the in-memory cache so the service still starts.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (Cache, func()) {
	log := logger.With().Str("component", "cache").Logger()
	switch cfg.Cache.Driver {
	case "none":
		return Nop{}, func() {}
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		err := client.Ping(pingCtx).Err()
		if err == nil {
			log.Info().Str("addr", cfg.Redis.Addr).Msg("Using redis cache")
			return NewRedisCache(client, cfg.Cache.TTL), func() { _ = client.Close() }
		}
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unreachable, falling back to in-memory cache")
		_ = client.Close()
	}
	c := NewInMemoryCache(cfg.Cache.TTL, cfg.Cache.CleanupInterval)
	return c, c.Stop
}
