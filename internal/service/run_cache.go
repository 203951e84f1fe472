package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/filmflow/shootplan-api/internal/optimizer"
)

// RunCache stores finished schedules beyond the in-memory run store so a
// completed run survives process restarts until its TTL lapses.
type RunCache interface {
	GetResult(ctx context.Context, runID string) (*optimizer.ScheduleResult, bool)
	SetResult(ctx context.Context, runID string, result *optimizer.ScheduleResult)
}

// RedisRunCache is the redis-backed RunCache. All failures degrade to a
// cache miss; the cache is never on the correctness path.
type RedisRunCache struct {
	client  *redis.Client
	ttl     time.Duration
	metrics *MetricsService
	logger  *zap.Logger
}

func NewRedisRunCache(client *redis.Client, ttl time.Duration, metrics *MetricsService, logger *zap.Logger) *RedisRunCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisRunCache{client: client, ttl: ttl, metrics: metrics, logger: logger}
}

func runResultKey(runID string) string {
	return "shootplan:run-result:" + runID
}

func (c *RedisRunCache) GetResult(ctx context.Context, runID string) (*optimizer.ScheduleResult, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, runResultKey(runID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("run cache get failed", zap.String("run_id", runID), zap.Error(err))
		}
		c.metrics.RecordCacheLookup(false)
		return nil, false
	}
	var result optimizer.ScheduleResult
	if err := json.Unmarshal(raw, &result); err != nil {
		c.logger.Warn("run cache payload corrupt", zap.String("run_id", runID), zap.Error(err))
		c.metrics.RecordCacheLookup(false)
		return nil, false
	}
	c.metrics.RecordCacheLookup(true)
	return &result, true
}

func (c *RedisRunCache) SetResult(ctx context.Context, runID string, result *optimizer.ScheduleResult) {
	if c == nil || c.client == nil || result == nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn("run cache marshal failed", zap.String("run_id", runID), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, runResultKey(runID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("run cache set failed", zap.String("run_id", runID), zap.Error(err))
	}
}
