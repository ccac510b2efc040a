package glpi

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	upstreamRequests  *prometheus.CounterVec
	upstreamDuration  *prometheus.HistogramVec
	searchTruncations *prometheus.CounterVec
)

// InitMetrics registers the upstream-call metrics. Call once at startup;
// the instrumentation hooks are no-ops until then so tests don't need a
// registry.
func InitMetrics() {
	upstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "glpidesk",
			Name:      "upstream_requests_total",
			Help:      "Total number of requests issued to GLPI.",
		},
		[]string{"tenant", "operation", "status"},
	)
	upstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "glpidesk",
			Name:      "upstream_request_duration_seconds",
			Help:      "Histogram of GLPI request durations in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"tenant", "operation"},
	)
	searchTruncations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "glpidesk",
			Name:      "search_truncations_total",
			Help:      "Searches whose totalcount exceeded the fixed fetch range.",
		},
		[]string{"tenant"},
	)
	prometheus.MustRegister(upstreamRequests, upstreamDuration, searchTruncations)
}

func observeUpstream(tenant, operation string, status int, elapsed time.Duration) {
	if upstreamRequests == nil {
		return
	}
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	upstreamRequests.WithLabelValues(tenant, operation, code).Inc()
	upstreamDuration.WithLabelValues(tenant, operation).Observe(elapsed.Seconds())
}

func countTruncation(tenant string) {
	if searchTruncations == nil {
		return
	}
	searchTruncations.WithLabelValues(tenant).Inc()
}
