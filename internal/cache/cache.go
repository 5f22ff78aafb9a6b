package cache

import (
	"context"
	"sync"
	"sync/atomic"

	"statree-backend/internal/models"
	"statree-backend/internal/observability"
)

// DetailCache memoizes the last fetched ProblemDetail per slug. Entries are
// never evicted; a later Put for the same slug replaces the earlier one.
type DetailCache interface {
	Get(ctx context.Context, slug string) (*models.ProblemDetail, bool, error)
	Put(ctx context.Context, slug string, detail *models.ProblemDetail) error
}

type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

type counters struct {
	hits   int64
	misses int64
}

func (c *counters) record(backend string, hit bool) {
	if hit {
		atomic.AddInt64(&c.hits, 1)
	} else {
		atomic.AddInt64(&c.misses, 1)
	}
	observability.ObserveCacheLookup(backend, hit)
}

// MemoryCache is an in-process DetailCache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*models.ProblemDetail
	stats   counters
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]*models.ProblemDetail)}
}

func (m *MemoryCache) Get(_ context.Context, slug string) (*models.ProblemDetail, bool, error) {
	m.mu.RLock()
	detail, ok := m.entries[slug]
	m.mu.RUnlock()
	m.stats.record("memory", ok)
	return detail, ok, nil
}

func (m *MemoryCache) Put(_ context.Context, slug string, detail *models.ProblemDetail) error {
	m.mu.Lock()
	m.entries[slug] = detail
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Stats() Stats {
	m.mu.RLock()
	entries := len(m.entries)
	m.mu.RUnlock()
	return Stats{
		Hits:    atomic.LoadInt64(&m.stats.hits),
		Misses:  atomic.LoadInt64(&m.stats.misses),
		Entries: entries,
	}
}
