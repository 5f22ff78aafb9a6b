package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"statree-backend/internal/logger"
	"statree-backend/internal/models"
)

const (
	catalogTotalKey    = "catalog:total"
	catalogSyncedAtKey = "catalog:synced_at"
)

type CatalogClient interface {
	AllProblems(ctx context.Context, batchSize int, progress func(fetched int)) ([]models.ProblemRecord, error)
	TotalProblemCount(ctx context.Context) (int, error)
}

// kvStore is the subset of *redis.Client used for the catalog counters.
type kvStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type CatalogSync struct {
	client    CatalogClient
	rdb       kvStore
	log       *logger.Logger
	batchSize int
	now       func() time.Time
}

func NewCatalogSync(client CatalogClient, rdb *redis.Client, batchSize int, log *logger.Logger) *CatalogSync {
	if log == nil {
		log = logger.NewNop()
	}
	return &CatalogSync{client: client, rdb: rdb, log: log, batchSize: batchSize, now: time.Now}
}

// Run walks the whole catalog and records its size. It returns the number of
// records fetched.
func (s *CatalogSync) Run(ctx context.Context) (int, error) {
	started := s.now()
	all, err := s.client.AllProblems(ctx, s.batchSize, func(fetched int) {
		s.log.Debug("catalog sync progress", "fetched", fetched)
	})
	if err != nil {
		return len(all), fmt.Errorf("catalog sync: %w", err)
	}

	if err := s.rdb.Set(ctx, catalogTotalKey, len(all), 0).Err(); err != nil {
		return len(all), fmt.Errorf("failed to store catalog total: %w", err)
	}
	if err := s.rdb.Set(ctx, catalogSyncedAtKey, s.now().UTC().Format(time.RFC3339), 0).Err(); err != nil {
		s.log.Warn("failed to store catalog sync time", "error", err)
	}
	s.log.Info("catalog sync complete", "records", len(all), "duration", s.now().Sub(started).String())
	return len(all), nil
}

// Total returns the catalog size recorded by the last sync, asking the
// platform when no sync has run yet.
func (s *CatalogSync) Total(ctx context.Context) (int, error) {
	raw, err := s.rdb.Get(ctx, catalogTotalKey).Result()
	switch {
	case err == nil:
		if total, convErr := strconv.Atoi(raw); convErr == nil {
			return total, nil
		}
		s.log.Warn("ignoring malformed catalog total", "value", raw)
	case errors.Is(err, redis.Nil):
	default:
		s.log.Warn("failed to read catalog total", "error", err)
	}

	total, err := s.client.TotalProblemCount(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.rdb.Set(ctx, catalogTotalKey, total, 0).Err(); err != nil {
		s.log.Warn("failed to store catalog total", "error", err)
	}
	return total, nil
}
