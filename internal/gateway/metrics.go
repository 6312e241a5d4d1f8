package gateway

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	backendCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "terra_prime",
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Total number of calls made to the Terra Prime backend.",
		},
		[]string{"method", "status"},
	)

	backendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "terra_prime",
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Duration of calls made to the Terra Prime backend.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"method"},
	)
)

// Collectors returns the gateway metrics for registration.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{backendCalls, backendDuration}
}

func observeBackendCall(method, status string, elapsed time.Duration) {
	backendCalls.WithLabelValues(method, status).Inc()
	backendDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}
