package services

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/singleflight"

	"statree-backend/internal/cache"
	"statree-backend/internal/leetcode"
	"statree-backend/internal/logger"
	"statree-backend/internal/models"
)

type ProblemClient interface {
	ProblemDetail(ctx context.Context, slug string) (*models.ProblemDetail, error)
	SolvedSlugs(ctx context.Context, username string) ([]string, error)
}

// ProblemService serves problem details through the detail cache. Concurrent
// misses for the same slug share one upstream request.
type ProblemService struct {
	client ProblemClient
	cache  cache.DetailCache
	log    *logger.Logger
	group  singleflight.Group

	fetchTimeout time.Duration
}

const defaultDetailFetchTimeout = 30 * time.Second

func NewProblemService(client ProblemClient, detailCache cache.DetailCache, log *logger.Logger) *ProblemService {
	if log == nil {
		log = logger.NewNop()
	}
	return &ProblemService{client: client, cache: detailCache, log: log, fetchTimeout: defaultDetailFetchTimeout}
}

func (s *ProblemService) Detail(ctx context.Context, slug string) (*models.ProblemDetail, error) {
	if detail, ok, err := s.cache.Get(ctx, slug); err != nil {
		s.log.Warn("detail cache read failed, fetching upstream", "slug", slug, "error", err)
	} else if ok {
		return detail, nil
	}

	// The shared fetch outlives any single caller; each caller still stops
	// waiting when its own ctx ends.
	ch := s.group.DoChan(slug, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
		defer cancel()
		detail, err := s.client.ProblemDetail(fetchCtx, slug)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Put(fetchCtx, slug, detail); err != nil {
			s.log.Warn("detail cache write failed", "slug", slug, "error", err)
		}
		return detail, nil
	})

	select {
	case <-ctx.Done():
		return nil, &leetcode.TransportError{Op: "questionData", Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.log.Debug("detail fetch shared", "slug", slug)
		}
		return res.Val.(*models.ProblemDetail), nil
	}
}

// Solved returns the user's solved slugs, sorted and without duplicates.
func (s *ProblemService) Solved(ctx context.Context, username string) ([]string, error) {
	slugs, err := s.client.SolvedSlugs(ctx, username)
	if err != nil {
		return nil, err
	}
	sort.Strings(slugs)
	out := slugs[:0]
	for i, slug := range slugs {
		if i > 0 && slug == slugs[i-1] {
			continue
		}
		out = append(out, slug)
	}
	return out, nil
}
