package catalog

import (
	"context"
	"sync"

	"statree-backend/internal/models"
	"statree-backend/internal/observability"
)

const (
	DefaultPageSize = 50

	// loadMoreThreshold is how close to the tail a visible row must be to
	// trigger the next page.
	loadMoreThreshold = 5
)

// PageFetcher fetches one page of catalog records for a query.
type PageFetcher interface {
	FetchPage(ctx context.Context, q models.CatalogQuery, limit, skip int) ([]models.ProblemRecord, error)
}

type Outcome string

const (
	OutcomeSkipped Outcome = "skipped"
	OutcomeApplied Outcome = "applied"
	OutcomeStale   Outcome = "stale"
	OutcomeFailed  Outcome = "failed"
)

// PageRequest captures the query and offset a fetch was started with.
type PageRequest struct {
	Query      models.CatalogQuery
	Limit      int
	Skip       int
	generation uint64
}

type State struct {
	Query     models.CatalogQuery    `json:"query"`
	Records   []models.ProblemRecord `json:"records"`
	Cursor    int                    `json:"cursor"`
	PageSize  int                    `json:"page_size"`
	Exhausted bool                   `json:"exhausted"`
	Loading   bool                   `json:"loading"`
}

// Collection accumulates catalog pages for one query at a time. All state
// changes happen under mu; fetches run outside it.
type Collection struct {
	fetcher  PageFetcher
	pageSize int

	mu         sync.Mutex
	query      models.CatalogQuery
	records    []models.ProblemRecord
	seen       map[string]struct{}
	cursor     int
	exhausted  bool
	loading    bool
	generation uint64
}

func NewCollection(fetcher PageFetcher, pageSize int) *Collection {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Collection{
		fetcher:  fetcher,
		pageSize: pageSize,
		records:  []models.ProblemRecord{},
		seen:     make(map[string]struct{}),
	}
}

// SetQuery switches to q. If q selects a different result set the
// accumulated records are dropped and any in-flight page becomes stale.
// It reports whether a reset happened.
func (c *Collection) SetQuery(q models.CatalogQuery) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.query.Equal(q) {
		return false
	}
	c.resetLocked(q)
	return true
}

// Refresh drops everything for the current query so the next page starts
// from the beginning.
func (c *Collection) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked(c.query)
}

func (c *Collection) resetLocked(q models.CatalogQuery) {
	c.query = q.Clone()
	c.records = []models.ProblemRecord{}
	c.seen = make(map[string]struct{})
	c.cursor = 0
	c.exhausted = false
	c.loading = false
	c.generation++
}

// Begin admits a page fetch. It returns false while a fetch is in flight or
// after the last page has been seen.
func (c *Collection) Begin() (PageRequest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading || c.exhausted {
		return PageRequest{}, false
	}
	c.loading = true
	return PageRequest{
		Query:      c.query.Clone(),
		Limit:      c.pageSize,
		Skip:       c.cursor,
		generation: c.generation,
	}, true
}

// Complete applies the result of a fetch started by Begin. Results for a
// superseded query are dropped without touching state.
func (c *Collection) Complete(req PageRequest, records []models.ProblemRecord, err error) (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if req.generation != c.generation || !c.loading || !req.Query.Equal(c.query) {
		return OutcomeStale, nil
	}
	c.loading = false
	if err != nil {
		return OutcomeFailed, err
	}

	for _, rec := range records {
		if _, dup := c.seen[rec.TitleSlug]; dup {
			continue
		}
		c.seen[rec.TitleSlug] = struct{}{}
		c.records = append(c.records, rec)
	}
	c.cursor += len(records)
	c.exhausted = len(records) < c.pageSize
	return OutcomeApplied, nil
}

// RequestNextPage fetches and applies the next page. It never retries.
func (c *Collection) RequestNextPage(ctx context.Context) (Outcome, error) {
	req, ok := c.Begin()
	if !ok {
		observability.ObserveCatalogPage(string(OutcomeSkipped))
		return OutcomeSkipped, nil
	}
	records, err := c.fetcher.FetchPage(ctx, req.Query, req.Limit, req.Skip)
	outcome, err := c.Complete(req, records, err)
	observability.ObserveCatalogPage(string(outcome))
	return outcome, err
}

// ShouldLoadMore reports whether slug is among the last few accumulated
// records, i.e. the view is close enough to the end to ask for more.
func (c *Collection) ShouldLoadMore(slug string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading || c.exhausted {
		return false
	}
	start := len(c.records) - loadMoreThreshold
	if start < 0 {
		start = 0
	}
	for _, rec := range c.records[start:] {
		if rec.TitleSlug == slug {
			return true
		}
	}
	return false
}

func (c *Collection) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	records := make([]models.ProblemRecord, len(c.records))
	copy(records, c.records)
	return State{
		Query:     c.query.Clone(),
		Records:   records,
		Cursor:    c.cursor,
		PageSize:  c.pageSize,
		Exhausted: c.exhausted,
		Loading:   c.loading,
	}
}
