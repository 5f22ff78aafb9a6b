package services

import (
	"context"
	"sync"
	"time"

	"statree-backend/internal/logger"
	"statree-backend/internal/models"
)

type DailyClient interface {
	DailyChallenge(ctx context.Context) (*models.DailyChallenge, error)
}

// Enqueuer schedules background jobs.
type Enqueuer interface {
	Enqueue(ctx context.Context, jobType, reference string) (*models.Job, error)
}

// DailyService keeps the current daily challenge and warms the detail cache
// for it in the background.
type DailyService struct {
	client DailyClient
	queue  Enqueuer
	log    *logger.Logger
	now    func() time.Time

	mu   sync.RWMutex
	last *models.DailyChallenge
}

func NewDailyService(client DailyClient, queue Enqueuer, log *logger.Logger) *DailyService {
	if log == nil {
		log = logger.NewNop()
	}
	return &DailyService{client: client, queue: queue, log: log, now: time.Now}
}

// Today returns the held challenge while it is still today's (UTC), and
// fetches a new one otherwise.
func (s *DailyService) Today(ctx context.Context) (*models.DailyChallenge, error) {
	s.mu.RLock()
	last := s.last
	s.mu.RUnlock()
	if last != nil && last.Date == s.now().UTC().Format("2006-01-02") {
		return last, nil
	}
	return s.Refresh(ctx)
}

// Refresh fetches the challenge unconditionally. On failure the previously
// held value is kept.
func (s *DailyService) Refresh(ctx context.Context) (*models.DailyChallenge, error) {
	daily, err := s.client.DailyChallenge(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	changed := s.last == nil || s.last.Question.TitleSlug != daily.Question.TitleSlug
	s.last = daily
	s.mu.Unlock()

	if changed && s.queue != nil {
		if _, err := s.queue.Enqueue(ctx, models.JobDetailPrefetch, daily.Question.TitleSlug); err != nil {
			s.log.Warn("failed to enqueue daily detail prefetch", "slug", daily.Question.TitleSlug, "error", err)
		}
	}
	return daily, nil
}

func (s *DailyService) Last() *models.DailyChallenge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}
