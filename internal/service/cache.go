package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ananyakrishnaeemani/ai-learning/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const dashboardKeyPrefix = "dashboard:"

// DashboardCache is a short-TTL read-through cache for computed dashboard
// snapshots. A nil cache (tests, redis-less deployments) is a no-op.
type DashboardCache struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewDashboardCache(rdb *redis.Client, ttl time.Duration) *DashboardCache {
	return &DashboardCache{Redis: rdb, TTL: ttl}
}

func (c *DashboardCache) key(userID uint) string {
	return fmt.Sprintf("%s%d", dashboardKeyPrefix, userID)
}

func (c *DashboardCache) Get(ctx context.Context, userID uint) (*DashboardSnapshot, bool) {
	if c == nil || c.Redis == nil {
		return nil, false
	}

	val, err := c.Redis.Get(ctx, c.key(userID)).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Log.Warn("dashboard cache read failed", zap.Error(err))
		return nil, false
	}

	var snap DashboardSnapshot
	if err := json.Unmarshal([]byte(val), &snap); err != nil {
		return nil, false
	}
	return &snap, true
}

func (c *DashboardCache) Set(ctx context.Context, userID uint, snap *DashboardSnapshot) {
	if c == nil || c.Redis == nil {
		return
	}

	val, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := c.Redis.Set(ctx, c.key(userID), val, c.TTL).Err(); err != nil {
		logger.Log.Warn("dashboard cache write failed", zap.Error(err))
	}
}

// Invalidate drops the user's snapshot after any graded submission.
func (c *DashboardCache) Invalidate(ctx context.Context, userID uint) {
	if c == nil || c.Redis == nil {
		return
	}
	if err := c.Redis.Del(ctx, c.key(userID)).Err(); err != nil {
		logger.Log.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}
