package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "husk").
	Namespace string

	// Subsystem is the metrics subsystem (default: "http").
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
		Namespace: "husk",
		Subsystem: "http",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// statusRecorder captures the response status for labeling.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Metrics creates middleware that records request counts and latencies.
//
// Metrics collected:
//   - <ns>_http_requests_total: counter by method and status
//   - <ns>_http_request_duration_seconds: histogram by method
func Metrics(opts ...MetricsOption) func(http.Handler) http.Handler {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	requests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace:   config.Namespace,
		Subsystem:   config.Subsystem,
		Name:        "requests_total",
		Help:        "Total number of HTTP requests served",
		ConstLabels: config.ConstLabels,
	}, []string{"method", "status"})

	duration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   config.Namespace,
		Subsystem:   config.Subsystem,
		Name:        "request_duration_seconds",
		Help:        "HTTP request duration in seconds",
		ConstLabels: config.ConstLabels,
		Buckets:     config.Buckets,
	}, []string{"method"})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(rec, r)

			duration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
			requests.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
		})
	}
}
