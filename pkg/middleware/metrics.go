// Package middleware provides optional net/http middleware for fresco
// applications: Prometheus metrics and OpenTelemetry tracing.
package middleware

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "fresco").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for request duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "fresco",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// metrics holds the Prometheus metrics for fresco.
type metrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	patchesSent      prometheus.Counter
	activeSessions   prometheus.Gauge
	liveConnections  prometheus.Gauge
	renderErrors     *prometheus.CounterVec
	endpointCalls    *prometheus.CounterVec
}

// globalMetrics is the singleton metrics instance, created on the first
// call to Prometheus().
var (
	globalMetrics   *metrics
	globalMetricsMu sync.Mutex
)

func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "requests_total",
			Help:        "Total HTTP requests by method and status",
			ConstLabels: config.ConstLabels,
		}, []string{"method", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"method"}),

		patchesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "patches_sent_total",
			Help:        "Total patches pushed to live connections",
			ConstLabels: config.ConstLabels,
		}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of live sessions",
			ConstLabels: config.ConstLabels,
		}),

		liveConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "live_connections",
			Help:        "Number of open websocket connections",
			ConstLabels: config.ConstLabels,
		}),

		renderErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_errors_total",
			Help:        "Total render failures by page path",
			ConstLabels: config.ConstLabels,
		}, []string{"path"}),

		endpointCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "endpoint_calls_total",
			Help:        "Total page endpoint invocations by endpoint and status",
			ConstLabels: config.ConstLabels,
		}, []string{"endpoint", "status"}),
	}
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack delegates to the underlying writer. Websocket upgrades hijack the
// connection, so the wrapper must not hide the capability.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	conn, rw, err := hj.Hijack()
	if err == nil {
		// The 101 goes out on the raw connection, never through WriteHeader.
		r.status = http.StatusSwitchingProtocols
	}
	return conn, rw, err
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap supports http.ResponseController.
func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// Prometheus creates middleware that collects Prometheus metrics for every
// request.
//
// Metrics collected:
//   - fresco_requests_total: Counter of requests by method and status
//   - fresco_request_duration_seconds: Histogram of request duration
//   - fresco_patches_sent_total: Counter fed by RecordPatches
//   - fresco_active_sessions: Gauge fed by RecordSessionCreate/Destroy
//   - fresco_live_connections: Gauge fed by RecordLiveOpen/Close
//   - fresco_render_errors_total: Counter fed by RecordRenderError
//   - fresco_endpoint_calls_total: Counter fed by RecordEndpointCall
//
// Example:
//
//	app.Use(middleware.Prometheus(
//	    middleware.WithNamespace("myapp"),
//	))
//
//	// Expose metrics endpoint
//	http.Handle("/metrics", promhttp.Handler())
func Prometheus(opts ...MetricsOption) func(http.Handler) http.Handler {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	globalMetricsMu.Lock()
	if globalMetrics == nil {
		globalMetrics = initMetrics(config)
	}
	m := globalMetrics
	globalMetricsMu.Unlock()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			m.requestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
			m.requestsTotal.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
		})
	}
}

// RecordPatches records patches pushed to a live connection.
func RecordPatches(count int) {
	if globalMetrics != nil {
		globalMetrics.patchesSent.Add(float64(count))
	}
}

// RecordSessionCreate records a new session.
func RecordSessionCreate() {
	if globalMetrics != nil {
		globalMetrics.activeSessions.Inc()
	}
}

// RecordSessionDestroy records a session reset.
func RecordSessionDestroy() {
	if globalMetrics != nil {
		globalMetrics.activeSessions.Dec()
	}
}

// RecordLiveOpen records a websocket connection opening.
func RecordLiveOpen() {
	if globalMetrics != nil {
		globalMetrics.liveConnections.Inc()
	}
}

// RecordLiveClose records a websocket connection closing.
func RecordLiveClose() {
	if globalMetrics != nil {
		globalMetrics.liveConnections.Dec()
	}
}

// RecordRenderError records a page render failure.
func RecordRenderError(path string) {
	if globalMetrics != nil {
		globalMetrics.renderErrors.WithLabelValues(path).Inc()
	}
}

// RecordEndpointCall records a page endpoint invocation.
func RecordEndpointCall(endpoint, status string) {
	if globalMetrics != nil {
		globalMetrics.endpointCalls.WithLabelValues(endpoint, status).Inc()
	}
}
