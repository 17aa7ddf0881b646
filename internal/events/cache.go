package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gatherhq/events-api/internal/models"
	"github.com/gatherhq/events-api/pkg/redis"
)

const cacheTTL = 60 * time.Second

// RedisCache caches single events as JSON (UTC instants) under a short TTL,
// invalidated on update and delete. Cache failures fall back to the store.
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisCache creates the event read cache.
func NewRedisCache(client *redis.Client, logger *zap.Logger) *RedisCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCache{client: client, logger: logger}
}

func cacheKey(id uuid.UUID) string {
	return "event:" + id.String()
}

// Get returns the cached event, if any.
func (c *RedisCache) Get(ctx context.Context, id uuid.UUID) (*models.Event, bool) {
	raw, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var e models.Event
	if err := json.Unmarshal(raw, &e); err != nil {
		c.logger.Warn("event cache decode failed", zap.Error(err))
		return nil, false
	}
	return &e, true
}

// Set stores the event with the cache TTL.
func (c *RedisCache) Set(ctx context.Context, e *models.Event) {
	raw, err := json.Marshal(e)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(e.ID), raw, cacheTTL).Err(); err != nil {
		c.logger.Warn("event cache set failed", zap.Error(err))
	}
}

// Del drops the cached event after a mutation.
func (c *RedisCache) Del(ctx context.Context, id uuid.UUID) {
	if err := c.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		c.logger.Warn("event cache invalidate failed", zap.Error(err))
	}
}
