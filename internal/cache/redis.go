package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"statree-backend/internal/models"
)

const detailKeyPrefix = "problem_detail:"

// redisCommander is the subset of *redis.Client the cache needs.
type redisCommander interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisCache stores details as JSON so every process sharing the Redis
// instance sees the same entries. Keys have no TTL.
type RedisCache struct {
	rdb   redisCommander
	stats counters
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func detailKey(slug string) string {
	return detailKeyPrefix + slug
}

func (c *RedisCache) Get(ctx context.Context, slug string) (*models.ProblemDetail, bool, error) {
	raw, err := c.rdb.Get(ctx, detailKey(slug)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.stats.record("redis", false)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached detail %s: %w", slug, err)
	}

	var detail models.ProblemDetail
	if err := json.Unmarshal(raw, &detail); err != nil {
		// Unreadable entries are treated as absent and overwritten on the
		// next Put.
		c.stats.record("redis", false)
		return nil, false, nil
	}
	c.stats.record("redis", true)
	return &detail, true, nil
}

func (c *RedisCache) Put(ctx context.Context, slug string, detail *models.ProblemDetail) error {
	payload, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("failed to encode detail %s: %w", slug, err)
	}
	if err := c.rdb.Set(ctx, detailKey(slug), payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to cache detail %s: %w", slug, err)
	}
	return nil
}

func (c *RedisCache) Stats() Stats {
	return Stats{
		Hits:   atomic.LoadInt64(&c.stats.hits),
		Misses: atomic.LoadInt64(&c.stats.misses),
	}
}
