package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"statree-backend/internal/logger"
	"statree-backend/internal/models"
)

const contestReminderLead = 30 * time.Minute

type ContestClient interface {
	Contests(ctx context.Context) ([]models.Contest, error)
	ContestHistory(ctx context.Context, username string) (*models.ContestHistory, error)
}

type ContestService struct {
	client ContestClient
	log    *logger.Logger
}

func NewContestService(client ContestClient, log *logger.Logger) *ContestService {
	if log == nil {
		log = logger.NewNop()
	}
	return &ContestService{client: client, log: log}
}

// Overview fetches the contest list and, when username is set, the user's
// contest history in parallel. A history failure leaves History nil.
func (s *ContestService) Overview(ctx context.Context, username string, now time.Time) (*models.ContestOverview, error) {
	var (
		contests []models.Contest
		history  *models.ContestHistory
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		contests, err = s.client.Contests(gctx)
		return err
	})
	if strings.TrimSpace(username) != "" {
		g.Go(func() error {
			h, err := s.client.ContestHistory(gctx, username)
			if err != nil {
				s.log.Warn("contest history unavailable", "username", username, "error", err)
				return nil
			}
			history = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.ContestOverview{
		Upcoming: UpcomingContests(contests, now),
		History:  history,
	}, nil
}

// UpcomingContests keeps contests starting after now, soonest first, each
// with a reminder time 30 minutes before its start.
func UpcomingContests(all []models.Contest, now time.Time) []models.UpcomingContest {
	upcoming := []models.UpcomingContest{}
	for _, c := range all {
		start := c.StartsAt()
		if !start.After(now) {
			continue
		}
		upcoming = append(upcoming, models.UpcomingContest{
			Contest:    c,
			ReminderAt: start.Add(-contestReminderLead),
		})
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].StartTime < upcoming[j].StartTime
	})
	return upcoming
}
