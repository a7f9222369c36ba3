// Package metrics exposes Prometheus collectors for the HTTP surface and the
// workout merge path.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "workout_tracker"

// Merge outcomes recorded by RecordMerge.
const (
	MergeUpdated  = "updated"
	MergeNoMatch  = "no_match"
	MergeInvalid  = "invalid_payload"
	MergeMismatch = "shape_mismatch"
	MergeFailed   = "error"
)

// Metrics owns a private registry and the application collectors. Build one
// per process with New.
type Metrics struct {
	registry *prometheus.Registry

	httpInFlight       prometheus.Gauge
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	mergesTotal        *prometheus.CounterVec
	workoutsCommitted  prometheus.Counter
	provisionsTotal    prometheus.Counter
	verificationsTotal *prometheus.CounterVec
}

// New creates the collectors and registers them, together with the process
// and Go runtime collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		httpInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "inflight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
		),

		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "path", "status"},
		),

		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
			},
			[]string{"method", "path"},
		),

		mergesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "workouts",
				Name:      "merges_total",
				Help:      "Workout merges by outcome.",
			},
			[]string{"outcome"},
		),

		workoutsCommitted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "workouts",
				Name:      "committed_total",
				Help:      "Workouts committed by the merge path.",
			},
		),

		provisionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "users",
				Name:      "provisioned_total",
				Help:      "Users created on first read.",
			},
		),

		verificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "identity",
				Name:      "verifications_total",
				Help:      "Bearer token verifications by result.",
			},
			[]string{"result"},
		),
	}

	m.registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.mergesTotal,
		m.workoutsCommitted,
		m.provisionsTotal,
		m.verificationsTotal,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return m
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request count, latency and in-flight requests. Paths
// are labelled by route template so ids never explode label cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		m.httpRequests.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordMerge counts one PUT merge by outcome.
func (m *Metrics) RecordMerge(outcome string) {
	m.mergesTotal.WithLabelValues(outcome).Inc()
}

// RecordCommit counts a workout committed by the merge path.
func (m *Metrics) RecordCommit() {
	m.workoutsCommitted.Inc()
}

// RecordProvision counts an auto-provisioned user.
func (m *Metrics) RecordProvision() {
	m.provisionsTotal.Inc()
}

// RecordVerification counts a token verification. result is "ok" or the
// failure class.
func (m *Metrics) RecordVerification(result string) {
	if result == "" {
		result = "unknown"
	}
	m.verificationsTotal.WithLabelValues(result).Inc()
}
