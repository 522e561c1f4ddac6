package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/maxviazov/member-crm/internal/cache"
	"github.com/maxviazov/member-crm/internal/model"
	"github.com/maxviazov/member-crm/internal/query"
	"github.com/maxviazov/member-crm/internal/repository"
)

// DashboardCacheKey holds the cached summary; every write through a Resource drops it.
const DashboardCacheKey = "dashboard:summary"

type dashboardService struct {
	repo     repository.DashboardRepository
	counters map[string]repository.Counter
	cache    *summaryCache
	ttl      time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

// NewDashboardService builds a standalone dashboard. Writes made elsewhere are only picked
// up once ttl expires; use New to share invalidation with the resource services.
func NewDashboardService(repo repository.DashboardRepository, counters map[string]repository.Counter, c cache.Cache, ttl time.Duration, logger zerolog.Logger) DashboardService {
	return newDashboardService(repo, counters, newSummaryCache(c), ttl, logger)
}

func newDashboardService(repo repository.DashboardRepository, counters map[string]repository.Counter, c *summaryCache, ttl time.Duration, logger zerolog.Logger) *dashboardService {
	l := logger.With().Str("module", "service").Str("component", "dashboard").Logger()
	return &dashboardService{repo: repo, counters: counters, cache: c, ttl: ttl, now: time.Now, log: l}
}

func (s *dashboardService) Summary(ctx context.Context) (model.DashboardSummary, error) {
	var cached model.DashboardSummary
	gen := s.cache.generation()
	hit, err := s.cache.get(ctx, &cached)
	if err != nil {
		s.log.Warn().Err(err).Msg("dashboard cache read failed")
	}
	if hit {
		return cached, nil
	}

	start := time.Now()
	out, err := s.compute(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("dashboard summary failed")
		return model.DashboardSummary{}, err
	}
	if err := s.cache.store(ctx, gen, out, s.ttl); err != nil {
		s.log.Warn().Err(err).Msg("dashboard cache write failed")
	}
	s.log.Debug().Dur("took", time.Since(start)).Msg("dashboard summary computed")
	return out, nil
}

func (s *dashboardService) compute(ctx context.Context) (model.DashboardSummary, error) {
	out := model.DashboardSummary{Totals: make(map[string]int, len(s.counters)), GeneratedAt: s.now().UTC()}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	for name, c := range s.counters {
		name, c := name, c
		g.Go(func() error {
			n, err := c.Count(gctx, query.Plan{})
			if err != nil {
				return err
			}
			mu.Lock()
			out.Totals[name] = n
			mu.Unlock()
			return nil
		})
	}
	g.Go(func() (err error) {
		out.ActiveMembers, out.InactiveMembers, err = s.repo.MemberActivity(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.MembersByType, err = s.repo.MembersByType(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.OpportunitiesByStage, err = s.repo.OpportunitiesByStage(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.CancellationsByReason, err = s.repo.CancellationsByReason(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return model.DashboardSummary{}, err
	}
	return out, nil
}
