package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/maxviazov/member-crm/internal/cache"
)

// summaryCache guards the cached dashboard with a generation counter. A summary computed
// before a write must not land in the cache after that write dropped it.
type summaryCache struct {
	c   cache.Cache
	gen atomic.Uint64
}

func newSummaryCache(c cache.Cache) *summaryCache {
	if c == nil {
		c = cache.Nop{}
	}
	return &summaryCache{c: c}
}

func (s *summaryCache) get(ctx context.Context, dst any) (bool, error) {
	return s.c.Get(ctx, DashboardCacheKey, dst)
}

// generation is read before computing; store needs it to tell whether a write intervened.
func (s *summaryCache) generation() uint64 { return s.gen.Load() }

func (s *summaryCache) invalidate(ctx context.Context) error {
	s.gen.Add(1)
	return s.c.Delete(ctx, DashboardCacheKey)
}

// store caches v unless a write happened since gen. The second check covers a write that
// raced the Set itself.
func (s *summaryCache) store(ctx context.Context, gen uint64, v any, ttl time.Duration) error {
	if s.gen.Load() != gen {
		return nil
	}
	if err := s.c.Set(ctx, DashboardCacheKey, v, ttl); err != nil {
		return err
	}
	if s.gen.Load() != gen {
		return s.c.Delete(ctx, DashboardCacheKey)
	}
	return nil
}
