package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"statree-backend/internal/logger"
)

func TestObserveQuery(t *testing.T) {
	before := testutil.ToFloat64(queryTotal.WithLabelValues("questionData", "ok"))
	ObserveQuery("questionData", "ok", 20*time.Millisecond)
	ObserveQuery("questionData", "ok", 30*time.Millisecond)

	if got := testutil.ToFloat64(queryTotal.WithLabelValues("questionData", "ok")) - before; got != 2 {
		t.Fatalf("expected 2 new observations, got %v", got)
	}
}

func TestObserveCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(cacheLookups.WithLabelValues("memory", "hit"))
	misses := testutil.ToFloat64(cacheLookups.WithLabelValues("memory", "miss"))

	ObserveCacheLookup("memory", true)
	ObserveCacheLookup("memory", false)
	ObserveCacheLookup("memory", false)

	if got := testutil.ToFloat64(cacheLookups.WithLabelValues("memory", "hit")) - hits; got != 1 {
		t.Fatalf("expected 1 hit, got %v", got)
	}
	if got := testutil.ToFloat64(cacheLookups.WithLabelValues("memory", "miss")) - misses; got != 2 {
		t.Fatalf("expected 2 misses, got %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	ObserveJob("catalog-sync", "completed")

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "statree_worker_jobs_total") {
		t.Fatalf("expected worker job counter in exposition")
	}
}

func TestInitOTel_Disabled(t *testing.T) {
	shutdown := InitOTel(context.Background(), logger.NewNop(), OtelConfig{Enabled: false})
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("expected no-op shutdown, got %v", err)
	}
}
