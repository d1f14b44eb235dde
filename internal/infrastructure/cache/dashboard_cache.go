package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/privacyops/gdpr-compliance-backend/internal/infrastructure/config"
	"github.com/privacyops/gdpr-compliance-backend/internal/service/monitoring"
)

const dashboardKey = "compliance:dashboard"

// DashboardCache caches the composed dashboard read model in Redis with a
// short TTL. It is strictly an optimization: every failure degrades to a
// cache miss and is logged, never surfaced to callers.
type DashboardCache struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewDashboardCache connects to Redis and verifies the connection.
func NewDashboardCache(cfg *config.RedisConfig, logger *zap.Logger) (*DashboardCache, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.URL,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Info("dashboard cache initialized",
		zap.String("addr", cfg.URL),
		zap.Duration("ttl", cfg.CacheTTL))

	return NewDashboardCacheWithClient(client, logger, cfg.CacheTTL), nil
}

// NewDashboardCacheWithClient wraps an existing client; tests use this with
// miniredis.
func NewDashboardCacheWithClient(client *redis.Client, logger *zap.Logger, ttl time.Duration) *DashboardCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &DashboardCache{client: client, logger: logger, ttl: ttl}
}

// GetDashboard returns the cached dashboard, if any.
func (c *DashboardCache) GetDashboard(ctx context.Context) (*monitoring.Dashboard, bool) {
	data, err := c.client.Get(ctx, dashboardKey).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var dashboard monitoring.Dashboard
	if err := json.Unmarshal([]byte(data), &dashboard); err != nil {
		c.logger.Warn("dashboard cache entry corrupt, discarding", zap.Error(err))
		c.client.Del(ctx, dashboardKey)
		return nil, false
	}
	return &dashboard, true
}

// SetDashboard stores the dashboard with the configured TTL, best-effort.
func (c *DashboardCache) SetDashboard(ctx context.Context, dashboard *monitoring.Dashboard) {
	data, err := json.Marshal(dashboard)
	if err != nil {
		c.logger.Warn("dashboard cache encode failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, dashboardKey, data, c.ttl).Err(); err != nil {
		c.logger.Warn("dashboard cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached dashboard.
func (c *DashboardCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, dashboardKey).Err(); err != nil {
		c.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

// Close closes the underlying connection.
func (c *DashboardCache) Close() error {
	return c.client.Close()
}
