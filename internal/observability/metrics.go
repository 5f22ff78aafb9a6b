package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	queryTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "statree",
		Subsystem: "graphql",
		Name:      "queries_total",
		Help:      "GraphQL operations executed against the remote endpoint, by outcome.",
	}, []string{"operation", "outcome"})

	queryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "statree",
		Subsystem: "graphql",
		Name:      "query_duration_seconds",
		Help:      "Latency of GraphQL operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "statree",
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Problem detail cache lookups, by backend and result.",
	}, []string{"backend", "result"})

	catalogPages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "statree",
		Subsystem: "catalog",
		Name:      "page_requests_total",
		Help:      "Catalog next-page requests, by outcome.",
	}, []string{"outcome"})

	jobsProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "statree",
		Subsystem: "worker",
		Name:      "jobs_total",
		Help:      "Background jobs processed, by type and status.",
	}, []string{"type", "status"})
)

func init() {
	prometheus.MustRegister(queryTotal, queryDuration, cacheLookups, catalogPages, jobsProcessed)
}

func ObserveQuery(operation, outcome string, elapsed time.Duration) {
	queryTotal.WithLabelValues(operation, outcome).Inc()
	queryDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func ObserveCacheLookup(backend string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(backend, result).Inc()
}

func ObserveCatalogPage(outcome string) {
	catalogPages.WithLabelValues(outcome).Inc()
}

func ObserveJob(jobType, status string) {
	jobsProcessed.WithLabelValues(jobType, status).Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
