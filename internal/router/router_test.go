package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"statree-backend/internal/catalog"
	"statree-backend/internal/handlers"
	"statree-backend/internal/middleware"
	"statree-backend/internal/models"
	"statree-backend/internal/websocket"
)

type emptyFetcher struct{}

func (emptyFetcher) FetchPage(context.Context, models.CatalogQuery, int, int) ([]models.ProblemRecord, error) {
	return nil, nil
}

func newTestRouter(t *testing.T, burst int) http.Handler {
	t.Helper()
	limiter := middleware.NewRateLimiter(60, burst)
	t.Cleanup(limiter.Stop)
	return New(Handlers{
		Catalog:  handlers.NewCatalogHandler(catalog.NewRegistry(emptyFetcher{}, 10)),
		Problems: handlers.NewProblemHandler(nil, nil),
		Daily:    handlers.NewDailyHandler(nil),
		Contests: handlers.NewContestHandler(nil, nil),
		Profile:  handlers.NewProfileHandler(nil),
		Settings: handlers.NewSettingsHandler(nil),
		Jobs:     handlers.NewJobHandler(nil, nil),
		Health:   handlers.NewHealthHandler(nil),
		Updates:  websocket.NewHub(nil, nil),
	}, limiter, "http://localhost:5173")
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	r := newTestRouter(t, 10)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if rr.Header().Get(middleware.RequestIDHeader) == "" {
		t.Fatalf("expected request id header on every response")
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "go_goroutines") {
		t.Fatalf("expected prometheus exposition, got %d", rr.Code)
	}
}

func TestRouter_CatalogSessionLifecycle(t *testing.T) {
	r := newTestRouter(t, 10)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/catalog/sessions", nil))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, rr.Code)
	}
	var created struct {
		ID string `json:"id"`
	}
	json.NewDecoder(rr.Body).Decode(&created)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/catalog/sessions/"+created.ID+"/next", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/v1/catalog/sessions/"+created.ID, nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rr.Code)
	}
}

func TestRouter_RateLimitsAPI(t *testing.T) {
	r := newTestRouter(t, 1)

	codes := []int{}
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/sessions/not-a-uuid", nil)
		req.RemoteAddr = "10.1.1.1:4000"
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	if codes[0] != http.StatusBadRequest || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}
}
