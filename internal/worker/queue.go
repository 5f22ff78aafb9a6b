package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"statree-backend/internal/models"
)

const (
	QueueDetailPrefetch = "queue:detail-prefetch"
	QueueCatalogSync    = "queue:catalog-sync"

	defaultMaxRetries = 3
)

var queues = []string{QueueCatalogSync, QueueDetailPrefetch}

func jobQueueName(jobType string) string {
	switch jobType {
	case models.JobDetailPrefetch:
		return QueueDetailPrefetch
	case models.JobCatalogSync:
		return QueueCatalogSync
	default:
		return "queue:" + jobType
	}
}

// JobStore records job lifecycle for status lookups.
type JobStore interface {
	Create(ctx context.Context, j *models.Job) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	UpdateError(ctx context.Context, id uuid.UUID, errMsg string, retryCount int) error
}

type pusher interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// Queue pushes jobs onto the Redis lists the pool consumes.
type Queue struct {
	rdb   pusher
	store JobStore
}

func NewQueue(rdb *redis.Client, store JobStore) *Queue {
	return &Queue{rdb: rdb, store: store}
}

func (q *Queue) Enqueue(ctx context.Context, jobType, reference string) (*models.Job, error) {
	switch jobType {
	case models.JobDetailPrefetch:
		if reference == "" {
			return nil, fmt.Errorf("%s job needs a problem slug", jobType)
		}
	case models.JobCatalogSync:
	default:
		return nil, fmt.Errorf("unknown job type: %s", jobType)
	}

	job := &models.Job{
		ID:         uuid.New(),
		Type:       jobType,
		Reference:  reference,
		Status:     models.JobStatusPending,
		MaxRetries: defaultMaxRetries,
		CreatedAt:  time.Now().UTC(),
	}
	if q.store != nil {
		if err := q.store.Create(ctx, job); err != nil {
			return nil, fmt.Errorf("failed to record job: %w", err)
		}
	}

	jobBytes, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("failed to encode job: %w", err)
	}
	if err := q.rdb.LPush(ctx, jobQueueName(jobType), string(jobBytes)).Err(); err != nil {
		return nil, fmt.Errorf("failed to queue job: %w", err)
	}
	return job, nil
}
