package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/privacyops/gdpr-compliance-backend/internal/domain/compliance"
	"github.com/privacyops/gdpr-compliance-backend/internal/service/monitoring"
)

func newTestCache(t *testing.T) (*DashboardCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewDashboardCacheWithClient(client, zaptest.NewLogger(t), 30*time.Second), mr
}

func sampleDashboard() *monitoring.Dashboard {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	snap := compliance.NewScoreSnapshot(map[compliance.Category]float64{
		compliance.CategoryConsent: 12,
	}, now)
	return &monitoring.Dashboard{
		Score:       snap,
		Checks:      compliance.NewCheckRun(nil, now),
		Trends:      &monitoring.TrendReport{WindowDays: 30, TrendDirection: monitoring.TrendStable},
		GeneratedAt: now,
	}
}

func TestDashboardCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	_, ok := cache.GetDashboard(ctx)
	assert.False(t, ok, "empty cache should miss")

	want := sampleDashboard()
	cache.SetDashboard(ctx, want)

	got, ok := cache.GetDashboard(ctx)
	require.True(t, ok)
	assert.InDelta(t, want.Score.OverallScore, got.Score.OverallScore, 1e-9)
	assert.Equal(t, want.Trends.TrendDirection, got.Trends.TrendDirection)
	assert.True(t, want.GeneratedAt.Equal(got.GeneratedAt))
}

func TestDashboardCacheExpiry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	cache.SetDashboard(ctx, sampleDashboard())
	mr.FastForward(time.Minute)

	_, ok := cache.GetDashboard(ctx)
	assert.False(t, ok, "entry should expire after TTL")
}

func TestDashboardCacheCorruptEntry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("compliance:dashboard", "{not json"))

	_, ok := cache.GetDashboard(ctx)
	assert.False(t, ok, "corrupt entry should read as a miss")
}

func TestDashboardCacheInvalidate(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	cache.SetDashboard(ctx, sampleDashboard())
	cache.Invalidate(ctx)

	_, ok := cache.GetDashboard(ctx)
	assert.False(t, ok)
}
