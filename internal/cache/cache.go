package cache

import (
	"context"
	"time"

	"lankapos/internal/domain"
)

type StatsCache interface {
	Get(ctx context.Context, key string) (*domain.DashboardOverview, bool, error)
	Set(ctx context.Context, key string, value *domain.DashboardOverview, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

type NoopStatsCache struct{}

func (NoopStatsCache) Get(_ context.Context, _ string) (*domain.DashboardOverview, bool, error) {
	return nil, false, nil
}

func (NoopStatsCache) Set(_ context.Context, _ string, _ *domain.DashboardOverview, _ time.Duration) error {
	return nil
}

func (NoopStatsCache) Invalidate(_ context.Context, _ string) error {
	return nil
}
