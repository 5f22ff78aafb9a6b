package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"statree-backend/internal/leetcode"
	"statree-backend/internal/models"
)

type stubBackend struct {
	mu        sync.Mutex
	pushed    map[string][]string
	published []models.JobUpdate
}

func newStubBackend() *stubBackend {
	return &stubBackend{pushed: map[string][]string{}}
}

func (s *stubBackend) BLPop(context.Context, time.Duration, ...string) *redis.StringSliceCmd {
	return redis.NewStringSliceResult(nil, redis.Nil)
}

func (s *stubBackend) SetNX(context.Context, string, interface{}, time.Duration) *redis.BoolCmd {
	return redis.NewBoolResult(true, nil)
}

func (s *stubBackend) Del(context.Context, ...string) *redis.IntCmd {
	return redis.NewIntResult(1, nil)
}

func (s *stubBackend) LPush(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range values {
		s.pushed[key] = append(s.pushed[key], v.(string))
	}
	return redis.NewIntResult(int64(len(s.pushed[key])), nil)
}

func (s *stubBackend) Publish(_ context.Context, _ string, message interface{}) *redis.IntCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	var update models.JobUpdate
	json.Unmarshal([]byte(message.(string)), &update)
	s.published = append(s.published, update)
	return redis.NewIntResult(1, nil)
}

type stubJobStore struct {
	mu       sync.Mutex
	created  []*models.Job
	statuses []string
	errors   []string
}

func (s *stubJobStore) Create(_ context.Context, j *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, j)
	return nil
}

func (s *stubJobStore) UpdateStatus(_ context.Context, _ uuid.UUID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, status)
	return nil
}

func (s *stubJobStore) UpdateError(_ context.Context, _ uuid.UUID, errMsg string, _ int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, errMsg)
	return nil
}

type stubDetails struct {
	slugs []string
	err   error
}

func (s *stubDetails) Detail(_ context.Context, slug string) (*models.ProblemDetail, error) {
	s.slugs = append(s.slugs, slug)
	if s.err != nil {
		return nil, s.err
	}
	return &models.ProblemDetail{TitleSlug: slug}, nil
}

type stubSyncer struct {
	runs int
}

func (s *stubSyncer) Run(context.Context) (int, error) {
	s.runs++
	return 10, nil
}

func newTestPool(details DetailFetcher, syncer CatalogSyncer) (*Pool, *stubBackend, *stubJobStore, *[]time.Duration) {
	backend := newStubBackend()
	store := &stubJobStore{}
	p := NewPool(nil, details, syncer, store, nil, 1)
	p.redis = backend
	var delays []time.Duration
	p.schedule = func(d time.Duration, f func()) {
		delays = append(delays, d)
		f()
	}
	return p, backend, store, &delays
}

func TestQueue_Enqueue(t *testing.T) {
	backend := newStubBackend()
	store := &stubJobStore{}
	q := &Queue{rdb: backend, store: store}

	job, err := q.Enqueue(context.Background(), models.JobDetailPrefetch, "two-sum")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.created) != 1 || store.created[0].ID != job.ID {
		t.Fatalf("expected job to be recorded")
	}
	pushed := backend.pushed[QueueDetailPrefetch]
	if len(pushed) != 1 {
		t.Fatalf("expected 1 job on %s, got %d", QueueDetailPrefetch, len(pushed))
	}
	var decoded models.Job
	if err := json.Unmarshal([]byte(pushed[0]), &decoded); err != nil {
		t.Fatalf("failed to decode queued job: %v", err)
	}
	if decoded.Reference != "two-sum" || decoded.MaxRetries != defaultMaxRetries {
		t.Fatalf("unexpected queued job %+v", decoded)
	}
}

func TestQueue_EnqueueValidation(t *testing.T) {
	q := &Queue{rdb: newStubBackend()}
	tests := []struct {
		name    string
		jobType string
		ref     string
	}{
		{"unknown type", "summary-generation", "x"},
		{"prefetch without slug", models.JobDetailPrefetch, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := q.Enqueue(context.Background(), tc.jobType, tc.ref); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestProcess_Dispatch(t *testing.T) {
	details := &stubDetails{}
	syncer := &stubSyncer{}
	p, _, _, _ := newTestPool(details, syncer)

	if err := p.process(context.Background(), &models.Job{Type: models.JobDetailPrefetch, Reference: "lru-cache"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.process(context.Background(), &models.Job{Type: models.JobCatalogSync}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(details.slugs) != 1 || details.slugs[0] != "lru-cache" || syncer.runs != 1 {
		t.Fatalf("unexpected dispatch: %v / %d", details.slugs, syncer.runs)
	}
	if err := p.process(context.Background(), &models.Job{Type: "bogus"}); err == nil {
		t.Fatalf("expected error for unknown job type")
	}
}

func TestHandleFailure_RetriesTransientErrors(t *testing.T) {
	p, backend, store, delays := newTestPool(&stubDetails{}, &stubSyncer{})
	job := &models.Job{ID: uuid.New(), Type: models.JobDetailPrefetch, Reference: "two-sum", MaxRetries: 3}

	p.handleFailure(context.Background(), job, &leetcode.TransportError{Op: "questionData", StatusCode: 503})

	if job.RetryCount != 1 || job.Status != models.JobStatusPending {
		t.Fatalf("unexpected job state %+v", job)
	}
	if len(*delays) != 1 || (*delays)[0] != 2*time.Second {
		t.Fatalf("expected 2s backoff, got %v", *delays)
	}
	if len(backend.pushed[QueueDetailPrefetch]) != 1 {
		t.Fatalf("expected job to be requeued")
	}
	if len(store.errors) != 1 {
		t.Fatalf("expected error to be recorded")
	}
}

func TestHandleFailure_PermanentErrors(t *testing.T) {
	tests := []struct {
		name string
		job  *models.Job
		err  error
	}{
		{"not found", &models.Job{Type: models.JobDetailPrefetch, MaxRetries: 3}, &leetcode.NotFoundError{Op: "questionData", Field: "question"}},
		{"retries exhausted", &models.Job{Type: models.JobDetailPrefetch, MaxRetries: 3, RetryCount: 2}, errors.New("flaky")},
		{"unknown type", &models.Job{Type: "bogus", MaxRetries: 3}, errPermanent{errors.New("unknown job type: bogus")}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, backend, store, _ := newTestPool(&stubDetails{}, &stubSyncer{})
			tc.job.ID = uuid.New()
			p.handleFailure(context.Background(), tc.job, tc.err)

			if tc.job.Status != models.JobStatusFailed {
				t.Fatalf("expected failed status, got %q", tc.job.Status)
			}
			if len(backend.pushed) != 0 {
				t.Fatalf("expected no requeue, got %v", backend.pushed)
			}
			if store.statuses[len(store.statuses)-1] != models.JobStatusFailed {
				t.Fatalf("expected failed status to be persisted")
			}
		})
	}
}

func TestHandleSuccess(t *testing.T) {
	p, backend, store, _ := newTestPool(&stubDetails{}, &stubSyncer{})
	job := &models.Job{ID: uuid.New(), Type: models.JobCatalogSync}
	p.handleSuccess(context.Background(), job)
	if job.Status != models.JobStatusCompleted || store.statuses[0] != models.JobStatusCompleted {
		t.Fatalf("expected completed status, got %q", job.Status)
	}
	if len(backend.published) != 1 || backend.published[0].JobID != job.ID || backend.published[0].Status != models.JobStatusCompleted {
		t.Fatalf("expected completion to be published, got %+v", backend.published)
	}
}
