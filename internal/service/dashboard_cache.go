package service

import (
	"context"
	"sync/atomic"
	"time"

	"healthsure/internal/domain/entity"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const DashboardCacheKey = "dashboard:policies"

// Cache is the subset of the JSON cache the dashboard needs.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// StatsLoader computes dashboard stats from the database.
type StatsLoader func(ctx context.Context) (*entity.DashboardStats, error)

type DashboardCache interface {
	Stats(ctx context.Context, load StatsLoader) (*entity.DashboardStats, error)
	Invalidate(ctx context.Context)
}

type dashboardCache struct {
	cache Cache
	ttl   time.Duration
	log   *logrus.Logger
	group singleflight.Group
	// gen is bumped by Invalidate; a load that overlaps it is not cached.
	gen atomic.Uint64
}

func NewDashboardCache(cache Cache, ttl time.Duration, log *logrus.Logger) DashboardCache {
	return &dashboardCache{
		cache: cache,
		ttl:   ttl,
		log:   log,
	}
}

// Stats serves the cached aggregate, loading it on a miss. Concurrent misses
// share one load, which runs detached from the caller's cancellation. Cache
// failures fall back to load and are only logged.
func (c *dashboardCache) Stats(ctx context.Context, load StatsLoader) (*entity.DashboardStats, error) {
	var cached entity.DashboardStats
	found, err := c.cache.Get(ctx, DashboardCacheKey, &cached)
	switch {
	case err != nil:
		dashboardCacheLookups.WithLabelValues("error").Inc()
		c.log.Warnf("Failed to read dashboard cache: %+v", err)
	case found:
		dashboardCacheLookups.WithLabelValues("hit").Inc()
		return &cached, nil
	default:
		dashboardCacheLookups.WithLabelValues("miss").Inc()
	}

	v, err, _ := c.group.Do(DashboardCacheKey, func() (interface{}, error) {
		loadCtx := context.WithoutCancel(ctx)
		gen := c.gen.Load()
		stats, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		if c.ttl > 0 && c.gen.Load() == gen {
			if err := c.cache.Set(loadCtx, DashboardCacheKey, stats, c.ttl); err != nil {
				c.log.Warnf("Failed to write dashboard cache: %+v", err)
			}
		}
		return stats, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*entity.DashboardStats), nil
}

func (c *dashboardCache) Invalidate(ctx context.Context) {
	c.gen.Add(1)
	c.group.Forget(DashboardCacheKey)
	if err := c.cache.Invalidate(ctx, DashboardCacheKey); err != nil {
		c.log.Warnf("Failed to invalidate dashboard cache: %+v", err)
	}
}
