package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Tracks the number of outbound Zoom API calls.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zoom_api_requests_total",
			Help: "Total number of Zoom API requests made (by method and status).",
		},
		[]string{"method", "status"},
	)

	// Measures duration of Zoom API requests.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "zoom_api_request_duration_seconds",
			Help:    "Duration of Zoom API requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms → ~16s
		},
		[]string{"method"},
	)

	// Counts fan-out detail fetches by outcome.
	FanOutTasks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zoom_fanout_tasks_total",
			Help: "Number of fan-out detail fetch tasks by result.",
		},
		[]string{"result"}, // ok | error
	)

	// Counts token endpoint operations.
	TokenOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zoom_token_operations_total",
			Help: "Number of OAuth token operations (exchange, refresh, revoke) by result.",
		},
		[]string{"operation", "result"},
	)

	// Tracks cache hits and misses for app credentials.
	SecretsCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zoom_secrets_cache_access_total",
			Help: "Number of cache hits/misses in the app credential cache.",
		},
		[]string{"result"}, // hit | miss
	)
)

// ObserveRequest records one completed HTTP round trip. status is 0 for transport
// failures.
func ObserveRequest(method string, status int, elapsed time.Duration) {
	label := "transport_error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	RequestsTotal.WithLabelValues(method, label).Inc()
	RequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func IncFanOutTask(err error) {
	FanOutTasks.WithLabelValues(result(err)).Inc()
}

func IncTokenOperation(operation string, err error) {
	TokenOperations.WithLabelValues(operation, result(err)).Inc()
}

func IncCacheHit(hit bool) {
	if hit {
		SecretsCacheHits.WithLabelValues("hit").Inc()
		return
	}
	SecretsCacheHits.WithLabelValues("miss").Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
