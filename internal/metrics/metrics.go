package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "projecthub"

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	httpLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	projectsSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "projects_submitted_total",
		Help:      "Projects accepted by the creation endpoint.",
	})

	projectsReviewed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "projects_reviewed_total",
		Help:      "Admin review decisions by outcome.",
	}, []string{"status"})

	statusQueries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "status_queries_total",
		Help:      "Status report lookups by cache outcome (hit, miss, disabled).",
	}, []string{"cache"})

	notificationsPurged = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_purged_total",
		Help:      "Read notifications removed by the retention job.",
	})
)

// Registry holds every collector of this service. Tests may read it directly.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		httpRequests,
		httpLatency,
		projectsSubmitted,
		projectsReviewed,
		statusQueries,
		notificationsPurged,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func ObserveHTTP(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

func ProjectSubmitted() {
	projectsSubmitted.Inc()
}

func ProjectReviewed(status string) {
	projectsReviewed.WithLabelValues(status).Inc()
}

// StatusQuery records a status report lookup; outcome is "hit", "miss" or "disabled".
func StatusQuery(outcome string) {
	statusQueries.WithLabelValues(outcome).Inc()
}

func NotificationsPurged(n int64) {
	notificationsPurged.Add(float64(n))
}
