package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "shareit"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by service, route and status code.",
		},
		[]string{"service", "endpoint", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by service and route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)

	bookingEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_events_total",
			Help:      "Domain events published by type.",
		},
		[]string{"type"},
	)

	upstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_upstream_requests_total",
			Help:      "Requests forwarded by the gateway by method and outcome.",
		},
		[]string{"method", "outcome"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_cache_total",
			Help:      "Gateway response cache lookups by result.",
		},
		[]string{"result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, bookingEvents, upstreamRequests, cacheLookups)
	})
}

// ObserveHTTP records one served request.
func ObserveHTTP(service, endpoint string, status int, dur time.Duration) {
	httpRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func IncEvent(eventType string) {
	bookingEvents.WithLabelValues(eventType).Inc()
}

func IncUpstream(method, outcome string) {
	upstreamRequests.WithLabelValues(method, outcome).Inc()
}

// IncCache counts a cache lookup; result is "hit", "miss" or "error".
func IncCache(result string) {
	cacheLookups.WithLabelValues(result).Inc()
}
