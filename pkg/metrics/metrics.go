package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestSize     *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Business metrics
	AdsCreated         prometheus.Counter
	AdTransitions      *prometheus.CounterVec
	TransitionsBlocked *prometheus.CounterVec
	AdsSwept           *prometheus.CounterVec
	LearningsCreated   prometheus.Counter
	LearningFailures   prometheus.Counter
	Uploads            *prometheus.CounterVec
	ReportsGenerated   *prometheus.CounterVec
	ExportsCreated     *prometheus.CounterVec

	// Database metrics
	DBConnections prometheus.Gauge

	// Cache metrics
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
}

// New creates a new Metrics instance registered on the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a Metrics instance registered on reg
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	sizeBuckets := []float64{100, 1000, 5000, 10000, 50000, 100000, 500000, 1000000}

	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestSize: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: sizeBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: sizeBuckets,
			},
			[]string{"method", "path"},
		),

		AdsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "ads_created_total",
			Help: "Total number of ads created",
		}),
		AdTransitions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ad_transitions_total",
				Help: "Accepted ad status transitions",
			},
			[]string{"from", "to"},
		),
		TransitionsBlocked: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ad_transitions_rejected_total",
				Help: "Rejected ad status transitions",
			},
			[]string{"reason"}, // LOCKED, VALIDATION_ERROR
		),
		AdsSwept: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ads_swept_total",
				Help: "Ads changed by the expiry sweeper",
			},
			[]string{"kind"}, // expired, released
		),
		LearningsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "learnings_created_total",
			Help: "Total number of learnings extracted from completed ads",
		}),
		LearningFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "learning_failures_total",
			Help: "Learnings that could not be persisted",
		}),
		Uploads: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uploads_total",
				Help: "Media uploads by outcome",
			},
			[]string{"result"}, // stored, rejected, failed
		),
		ReportsGenerated: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reports_generated_total",
				Help: "AI reports by outcome",
			},
			[]string{"result"}, // success, failed
		),
		ExportsCreated: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "exports_created_total",
				Help: "Total number of board exports",
			},
			[]string{"format"},
		),

		DBConnections: f.NewGauge(prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		}),

		CacheHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"cache_type"},
		),
		CacheMisses: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"cache_type"},
		),
	}
}

// Middleware creates an Echo middleware for Prometheus metrics
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			path := c.Path() // Use route pattern, not actual path (e.g., /api/v1/ads/:id)

			if req.ContentLength > 0 {
				m.HTTPRequestSize.WithLabelValues(req.Method, path).Observe(float64(req.ContentLength))
			}

			err := next(c)

			status := strconv.Itoa(c.Response().Status)
			duration := time.Since(start).Seconds()

			m.HTTPRequestsTotal.WithLabelValues(req.Method, path, status).Inc()
			m.HTTPRequestDuration.WithLabelValues(req.Method, path, status).Observe(duration)
			m.HTTPResponseSize.WithLabelValues(req.Method, path).Observe(float64(c.Response().Size))

			return err
		}
	}
}

// RecordAdCreated increments ads created counter
func (m *Metrics) RecordAdCreated() {
	if m == nil {
		return
	}
	m.AdsCreated.Inc()
}

// RecordTransition counts an accepted status change
func (m *Metrics) RecordTransition(from, to string) {
	if m == nil {
		return
	}
	m.AdTransitions.WithLabelValues(from, to).Inc()
}

// RecordTransitionRejected counts a refused status change by error code
func (m *Metrics) RecordTransitionRejected(reason string) {
	if m == nil {
		return
	}
	m.TransitionsBlocked.WithLabelValues(reason).Inc()
}

// RecordSweep adds the rows changed by one sweeper run
func (m *Metrics) RecordSweep(expired, released int64) {
	if m == nil {
		return
	}
	m.AdsSwept.WithLabelValues("expired").Add(float64(expired))
	m.AdsSwept.WithLabelValues("released").Add(float64(released))
}

// RecordLearning counts a learning write attempt
func (m *Metrics) RecordLearning(success bool) {
	if m == nil {
		return
	}
	if success {
		m.LearningsCreated.Inc()
		return
	}
	m.LearningFailures.Inc()
}

// RecordUpload counts an upload by result
func (m *Metrics) RecordUpload(result string) {
	if m == nil {
		return
	}
	m.Uploads.WithLabelValues(result).Inc()
}

// RecordReport counts a report request
func (m *Metrics) RecordReport(success bool) {
	if m == nil {
		return
	}
	result := "failed"
	if success {
		result = "success"
	}
	m.ReportsGenerated.WithLabelValues(result).Inc()
}

// RecordExportCreated increments exports created counter
func (m *Metrics) RecordExportCreated(format string) {
	if m == nil {
		return
	}
	m.ExportsCreated.WithLabelValues(format).Inc()
}

// UpdateDBConnections updates active database connections gauge
func (m *Metrics) UpdateDBConnections(count float64) {
	if m == nil {
		return
	}
	m.DBConnections.Set(count)
}

// RecordCacheHit increments cache hits counter
func (m *Metrics) RecordCacheHit(cacheType string) {
	if m == nil {
		return
	}
	m.CacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss increments cache misses counter
func (m *Metrics) RecordCacheMiss(cacheType string) {
	if m == nil {
		return
	}
	m.CacheMisses.WithLabelValues(cacheType).Inc()
}
