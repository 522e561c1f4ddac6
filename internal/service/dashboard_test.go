package service_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/member-crm/internal/cache"
	"github.com/maxviazov/member-crm/internal/config"
	"github.com/maxviazov/member-crm/internal/model"
	"github.com/maxviazov/member-crm/internal/repository"
	"github.com/maxviazov/member-crm/internal/repository/memstore"
	"github.com/maxviazov/member-crm/internal/service"
)

func TestDashboard_SummaryAndInvalidation(t *testing.T) {
	reg := memstore.NewRegistry()
	c := cache.NewInMemoryCache(time.Minute, time.Hour)
	defer c.Stop()
	svc := service.New(reg, service.Deps{
		Cache:  c,
		Paging: config.PaginationConfig{DefaultPageSize: 10, MaxPageSize: 50},
		Logger: zerolog.New(io.Discard),
	}, time.Minute)
	ctx := context.Background()

	mt, err := svc.MembershipTypes.Create(ctx, model.MembershipType{Name: "Gold"})
	require.NoError(t, err)
	_, err = svc.Members.Create(ctx, model.Member{Name: "Ann", MembershipTypeID: mt.ID, JoinedOn: time.Now(), Active: true})
	require.NoError(t, err)

	sum, err := svc.Dashboard.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Totals["members"])
	assert.Equal(t, 0, sum.Totals["contacts"])
	assert.Len(t, sum.Totals, 10)
	assert.Equal(t, 1, sum.ActiveMembers)
	assert.Equal(t, []model.Count{{Label: "Gold", Count: 1}}, sum.MembersByType)

	var cached model.DashboardSummary
	hit, err := c.Get(ctx, service.DashboardCacheKey, &cached)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, sum.Totals, cached.Totals)

	// a write bypassing the services is not seen while the cache holds
	_, err = reg.Members.Create(ctx, model.Member{Name: "Bob", MembershipTypeID: mt.ID, JoinedOn: time.Now()})
	require.NoError(t, err)
	sum, err = svc.Dashboard.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Totals["members"])

	// a write through a service drops it
	_, err = svc.Members.Create(ctx, model.Member{Name: "Cy", MembershipTypeID: mt.ID, JoinedOn: time.Now()})
	require.NoError(t, err)
	sum, err = svc.Dashboard.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Totals["members"])
	assert.Equal(t, 2, sum.InactiveMembers)
}

type failingDashboard struct{ repository.DashboardRepository }

func (failingDashboard) MemberActivity(context.Context) (int, int, error) {
	return 0, 0, errors.New("db down")
}

func TestDashboard_PropagatesErrorsAndSkipsCache(t *testing.T) {
	reg := memstore.NewRegistry()
	c := cache.NewInMemoryCache(time.Minute, time.Hour)
	defer c.Stop()
	d := service.NewDashboardService(failingDashboard{reg.Dashboard}, reg.Counters(), c, time.Minute, zerolog.New(io.Discard))

	_, err := d.Summary(context.Background())
	assert.EqualError(t, err, "db down")

	var cached model.DashboardSummary
	hit, _ := c.Get(context.Background(), service.DashboardCacheKey, &cached)
	assert.False(t, hit)
}

// blockingDashboard parks MemberActivity until released so a write can land mid-compute.
type blockingDashboard struct {
	repository.DashboardRepository
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (b *blockingDashboard) MemberActivity(ctx context.Context) (int, int, error) {
	b.once.Do(func() {
		close(b.entered)
		<-b.release
	})
	return b.DashboardRepository.MemberActivity(ctx)
}

func TestDashboard_WriteDuringComputeIsNotOverwritten(t *testing.T) {
	reg := memstore.NewRegistry()
	blocking := &blockingDashboard{DashboardRepository: reg.Dashboard, entered: make(chan struct{}), release: make(chan struct{})}
	reg.Dashboard = blocking
	c := cache.NewInMemoryCache(time.Minute, time.Hour)
	defer c.Stop()
	svc := service.New(reg, service.Deps{
		Cache:  c,
		Paging: config.PaginationConfig{DefaultPageSize: 10, MaxPageSize: 50},
		Logger: zerolog.New(io.Discard),
	}, time.Minute)
	ctx := context.Background()

	mt, err := svc.MembershipTypes.Create(ctx, model.MembershipType{Name: "Gold"})
	require.NoError(t, err)

	type result struct {
		sum model.DashboardSummary
		err error
	}
	done := make(chan result, 1)
	go func() {
		sum, err := svc.Dashboard.Summary(ctx)
		done <- result{sum, err}
	}()
	<-blocking.entered

	_, err = svc.Members.Create(ctx, model.Member{Name: "Ann", MembershipTypeID: mt.ID, JoinedOn: time.Now(), Active: true})
	require.NoError(t, err)
	close(blocking.release)

	stale := <-done
	require.NoError(t, stale.err)

	var cached model.DashboardSummary
	hit, err := c.Get(ctx, service.DashboardCacheKey, &cached)
	require.NoError(t, err)
	assert.False(t, hit, "summary computed before the write must not be cached")

	sum, err := svc.Dashboard.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Totals["members"])
	assert.Equal(t, 1, sum.ActiveMembers)

	hit, err = c.Get(ctx, service.DashboardCacheKey, &cached)
	require.NoError(t, err)
	assert.True(t, hit)
}
