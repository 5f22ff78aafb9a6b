package catalog

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type session struct {
	collection *Collection
	lastUsed   time.Time
}

// Registry hands out one Collection per UI session.
type Registry struct {
	fetcher  PageFetcher
	pageSize int

	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
	now      func() time.Time
}

func NewRegistry(fetcher PageFetcher, pageSize int) *Registry {
	return &Registry{
		fetcher:  fetcher,
		pageSize: pageSize,
		sessions: make(map[uuid.UUID]*session),
		now:      time.Now,
	}
}

func (r *Registry) Create() (uuid.UUID, *Collection) {
	id := uuid.New()
	c := NewCollection(r.fetcher, r.pageSize)
	r.mu.Lock()
	r.sessions[id] = &session{collection: c, lastUsed: r.now()}
	r.mu.Unlock()
	return id, c
}

func (r *Registry) Get(id uuid.UUID) (*Collection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	s.lastUsed = r.now()
	return s.collection, true
}

func (r *Registry) Delete(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Prune drops sessions idle for longer than maxIdle and returns how many
// were removed.
func (r *Registry) Prune(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, s := range r.sessions {
		if s.lastUsed.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}
