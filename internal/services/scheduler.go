package services

import (
	"context"
	"time"

	"statree-backend/internal/logger"
	"statree-backend/internal/models"
)

const sessionIdleTimeout = 2 * time.Hour

type DailyRefresher interface {
	Refresh(ctx context.Context) (*models.DailyChallenge, error)
}

type SessionPruner interface {
	Prune(maxIdle time.Duration) int
}

// Scheduler refreshes the daily challenge and drops idle catalog sessions on
// fixed intervals.
type Scheduler struct {
	daily         DailyRefresher
	sessions      SessionPruner
	dailyInterval time.Duration
	pruneInterval time.Duration
	log           *logger.Logger
	stopChan      chan struct{}
}

func NewScheduler(daily DailyRefresher, sessions SessionPruner, dailyInterval time.Duration, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.NewNop()
	}
	if dailyInterval <= 0 {
		dailyInterval = time.Hour
	}
	return &Scheduler{
		daily:         daily,
		sessions:      sessions,
		dailyInterval: dailyInterval,
		pruneInterval: 10 * time.Minute,
		log:           log,
		stopChan:      make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	if s.daily != nil {
		go s.loop(s.dailyInterval, s.refreshDaily)
	}
	if s.sessions != nil {
		go s.loop(s.pruneInterval, s.pruneSessions)
	}
	s.log.Info("scheduler started", "daily_interval", s.dailyInterval.String())
}

func (s *Scheduler) Stop() {
	select {
	case <-s.stopChan:
		return
	default:
		close(s.stopChan)
	}
}

func (s *Scheduler) loop(interval time.Duration, runFn func(ctx context.Context)) {
	// Run on startup as well as by interval.
	runFn(context.Background())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			runFn(context.Background())
		}
	}
}

func (s *Scheduler) refreshDaily(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	daily, err := s.daily.Refresh(ctx)
	if err != nil {
		s.log.Warn("daily challenge refresh failed", "error", err)
		return
	}
	s.log.Debug("daily challenge refreshed", "date", daily.Date, "slug", daily.Question.TitleSlug)
}

func (s *Scheduler) pruneSessions(context.Context) {
	if removed := s.sessions.Prune(sessionIdleTimeout); removed > 0 {
		s.log.Info("pruned idle catalog sessions", "removed", removed)
	}
}
