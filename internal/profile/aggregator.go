package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"statree-backend/internal/calendar"
	"statree-backend/internal/leetcode"
	"statree-backend/internal/logger"
	"statree-backend/internal/models"
)

type Client interface {
	UserProfile(ctx context.Context, username string) (*models.UserProfile, error)
	TagProblemCounts(ctx context.Context, username string) (*models.TagSolveCounts, error)
}

// UsernameStore holds the locally remembered username.
type UsernameStore interface {
	GetUsername(ctx context.Context) (string, error)
	ClearUsername(ctx context.Context) error
}

type Aggregator struct {
	client Client
	store  UsernameStore
	log    *logger.Logger
	loc    *time.Location
	now    func() time.Time
}

func NewAggregator(client Client, store UsernameStore, log *logger.Logger, loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Aggregator{client: client, store: store, log: log, loc: loc, now: time.Now}
}

// ShouldClearUsername reports whether err means the stored username no
// longer names an account.
func ShouldClearUsername(err error) bool {
	var notFound *leetcode.NotFoundError
	return errors.As(err, &notFound)
}

// Aggregate builds the profile view for username. The profile query must
// succeed; tag counts are best effort.
func (a *Aggregator) Aggregate(ctx context.Context, username string) (*models.ProfileView, error) {
	user, err := a.client.UserProfile(ctx, username)
	if err != nil {
		return nil, err
	}

	now := a.now().In(a.loc)
	cal := calendar.Parse(nil, a.loc)
	if user.SubmissionCalendar != nil {
		parsed, err := calendar.ParseJSON(*user.SubmissionCalendar, a.loc)
		if err != nil {
			a.log.Error("submission calendar unreadable", "username", username, "error", err)
		}
		cal = parsed
	}

	view := &models.ProfileView{
		Username:           user.Username,
		SolvedByDifficulty: map[string]int{},
		Stats:              cal.Stats(now),
		Activity:           cal.Month(now.Year(), now.Month()),
		WeakTopics:         []string{},
		GeneratedAt:        now,
	}
	if p := user.Profile; p != nil {
		if p.RealName != nil {
			view.RealName = *p.RealName
		}
		if p.UserAvatar != nil {
			view.AvatarURL = *p.UserAvatar
		}
		if p.Ranking != nil {
			view.Ranking = *p.Ranking
		}
	}
	if user.SubmitStats != nil {
		for _, sc := range user.SubmitStats.AcSubmissionNum {
			view.SolvedByDifficulty[sc.Difficulty] = sc.Count
		}
	}

	tags, err := a.client.TagProblemCounts(ctx, username)
	if err != nil {
		a.log.Warn("tag counts unavailable, weak topics left empty", "username", username, "error", err)
		return view, nil
	}
	view.TagCounts = tags
	view.WeakTopics = calendar.WeakTopics(*tags)
	return view, nil
}

// AggregateStored aggregates the stored username. When the platform reports
// that user as missing the stored username is cleared.
func (a *Aggregator) AggregateStored(ctx context.Context) (*models.ProfileView, error) {
	username, err := a.store.GetUsername(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored username: %w", err)
	}
	if username == "" {
		return nil, &leetcode.ValidationError{Field: "username", Message: "no username stored"}
	}

	view, err := a.Aggregate(ctx, username)
	if err != nil {
		if ShouldClearUsername(err) {
			if clearErr := a.store.ClearUsername(ctx); clearErr != nil {
				a.log.Error("failed to clear stored username", "username", username, "error", clearErr)
			} else {
				a.log.Info("cleared stored username for missing user", "username", username)
			}
		}
		return nil, err
	}
	return view, nil
}
