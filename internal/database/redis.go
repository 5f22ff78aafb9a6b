package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClients keeps the blocking job queue off the connection used for
// cache reads.
type RedisClients struct {
	Cache *redis.Client
	Queue *redis.Client
}

func NewRedisClients(redisURL string) (*RedisClients, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cacheClient := redis.NewClient(opt)
	if err := cacheClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis (cache): %w", err)
	}

	// BLPOP holds a connection for its whole timeout, so workers get their own pool
	queueOpt := *opt
	queueClient := redis.NewClient(&queueOpt)
	if err := queueClient.Ping(ctx).Err(); err != nil {
		cacheClient.Close()
		return nil, fmt.Errorf("failed to ping Redis (queue): %w", err)
	}

	return &RedisClients{
		Cache: cacheClient,
		Queue: queueClient,
	}, nil
}

func (r *RedisClients) Close() {
	r.Cache.Close()
	r.Queue.Close()
}
