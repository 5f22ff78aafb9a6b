package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"statree-backend/internal/leetcode"
	"statree-backend/internal/logger"
	"statree-backend/internal/models"
	"statree-backend/internal/observability"
)

type DetailFetcher interface {
	Detail(ctx context.Context, slug string) (*models.ProblemDetail, error)
}

type CatalogSyncer interface {
	Run(ctx context.Context) (int, error)
}

// queueBackend is the subset of *redis.Client the pool uses.
type queueBackend interface {
	BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

type Pool struct {
	redis       queueBackend
	details     DetailFetcher
	catalog     CatalogSyncer
	jobs        JobStore
	log         *logger.Logger
	workerCount int
	jobTimeout  time.Duration
	stopChan    chan struct{}
	schedule    func(time.Duration, func())
}

func NewPool(
	redisClient *redis.Client,
	details DetailFetcher,
	catalog CatalogSyncer,
	jobs JobStore,
	log *logger.Logger,
	workerCount int,
) *Pool {
	if log == nil {
		log = logger.NewNop()
	}
	return &Pool{
		redis:       redisClient,
		details:     details,
		catalog:     catalog,
		jobs:        jobs,
		log:         log,
		workerCount: workerCount,
		jobTimeout:  10 * time.Minute,
		stopChan:    make(chan struct{}),
		schedule:    func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		go p.worker(i, queues)
	}

	p.log.Info("started worker goroutines", "count", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int, queues []string) {
	for {
		select {
		case <-p.stopChan:
			p.log.Info("worker shutting down", "worker", id)
			return
		default:
		}

		ctx := context.Background()

		// BLPOP with 5s timeout so Stop is noticed promptly
		result, err := p.redis.BLPop(ctx, 5*time.Second, queues...).Result()
		if err != nil {
			continue // Timeout or error, retry
		}

		if len(result) < 2 {
			continue
		}

		var job models.Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			p.log.Warn("failed to parse job", "worker", id, "error", err)
			continue
		}

		lockKey := fmt.Sprintf("job_lock:%s", job.ID.String())
		locked, err := p.redis.SetNX(ctx, lockKey, "1", p.jobTimeout).Result()
		if err != nil || !locked {
			continue // Another worker has this job
		}

		p.log.Debug("processing job", "worker", id, "job", job.ID.String(), "type", job.Type)
		p.updateStatus(ctx, &job, models.JobStatusProcessing)

		jobCtx, cancel := context.WithTimeout(ctx, p.jobTimeout)
		processErr := p.process(jobCtx, &job)
		cancel()

		if processErr != nil {
			p.handleFailure(ctx, &job, processErr)
		} else {
			p.handleSuccess(ctx, &job)
		}

		p.redis.Del(ctx, lockKey)
	}
}

func (p *Pool) process(ctx context.Context, job *models.Job) error {
	switch job.Type {
	case models.JobDetailPrefetch:
		if _, err := p.details.Detail(ctx, job.Reference); err != nil {
			return fmt.Errorf("prefetch %s: %w", job.Reference, err)
		}
		return nil
	case models.JobCatalogSync:
		n, err := p.catalog.Run(ctx)
		if err != nil {
			return err
		}
		p.log.Info("catalog sync job finished", "job", job.ID.String(), "records", n)
		return nil
	default:
		return errPermanent{fmt.Errorf("unknown job type: %s", job.Type)}
	}
}

// errPermanent marks failures that retrying cannot fix.
type errPermanent struct{ error }

func (e errPermanent) Unwrap() error { return e.error }

func shouldRetry(job *models.Job, err error) bool {
	var permanent errPermanent
	if errors.As(err, &permanent) {
		return false
	}
	if leetcode.Classify(err) != "unknown" && !leetcode.Retryable(err) {
		return false
	}
	maxRetries := job.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return job.RetryCount < maxRetries
}

func retryBackoff(retryCount int) time.Duration {
	return time.Duration(1<<uint(retryCount)) * time.Second
}

func (p *Pool) handleSuccess(ctx context.Context, job *models.Job) {
	p.updateStatus(ctx, job, models.JobStatusCompleted)
	observability.ObserveJob(job.Type, models.JobStatusCompleted)
	p.log.Debug("job completed", "job", job.ID.String(), "type", job.Type)
}

func (p *Pool) handleFailure(ctx context.Context, job *models.Job, err error) {
	job.RetryCount++
	errMsg := err.Error()
	job.LastError = &errMsg

	if p.jobs != nil {
		if updateErr := p.jobs.UpdateError(ctx, job.ID, errMsg, job.RetryCount); updateErr != nil {
			p.log.Warn("failed to record job error", "job", job.ID.String(), "error", updateErr)
		}
	}

	if shouldRetry(job, err) {
		p.log.Warn("job failed, retrying", "job", job.ID.String(), "attempt", job.RetryCount, "error", errMsg)
		p.updateStatus(ctx, job, models.JobStatusPending)
		observability.ObserveJob(job.Type, "retried")

		jobBytes, _ := json.Marshal(job)
		queue := jobQueueName(job.Type)
		p.schedule(retryBackoff(job.RetryCount), func() {
			if err := p.redis.LPush(context.Background(), queue, string(jobBytes)).Err(); err != nil {
				p.log.Error("failed to requeue job", "job", job.ID.String(), "error", err)
			}
		})
		return
	}

	p.log.Error("job failed permanently", "job", job.ID.String(), "type", job.Type, "error", errMsg)
	p.updateStatus(ctx, job, models.JobStatusFailed)
	observability.ObserveJob(job.Type, models.JobStatusFailed)
}

func (p *Pool) updateStatus(ctx context.Context, job *models.Job, status string) {
	job.Status = status
	p.publishUpdate(ctx, job)
	if p.jobs == nil {
		return
	}
	if err := p.jobs.UpdateStatus(ctx, job.ID, status); err != nil {
		p.log.Warn("failed to update job status", "job", job.ID.String(), "status", status, "error", err)
	}
}

func (p *Pool) publishUpdate(ctx context.Context, job *models.Job) {
	update, _ := json.Marshal(models.JobUpdate{
		JobID:     job.ID,
		Type:      job.Type,
		Reference: job.Reference,
		Status:    job.Status,
		Error:     job.LastError,
	})
	if err := p.redis.Publish(ctx, models.JobUpdatesChannel, string(update)).Err(); err != nil {
		p.log.Debug("failed to publish job update", "job", job.ID.String(), "error", err)
	}
}
