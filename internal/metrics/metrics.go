package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Exchange outcomes
const (
	OutcomeToken         = "token"
	OutcomeUpstreamError = "upstream_error"
	OutcomeFailure       = "failure"
)

// MetricsCollector holds all Prometheus metrics for the login relay
type MetricsCollector struct {
	registry *prometheus.Registry

	// HTTP request metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Token exchange metrics
	exchangesTotal   *prometheus.CounterVec
	upstreamDuration prometheus.Histogram

	log *logrus.Logger
}

// NewMetricsCollector creates a new metrics collector registered on reg
func NewMetricsCollector(reg *prometheus.Registry, log *logrus.Logger) *MetricsCollector {
	factory := promauto.With(reg)

	return &MetricsCollector{
		registry: reg,
		log:      log,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "github_lite_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "github_lite_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		exchangesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "github_lite_token_exchanges_total",
				Help: "Total number of authorization code exchanges by outcome",
			},
			[]string{"outcome"},
		),

		upstreamDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "github_lite_upstream_duration_seconds",
				Help:    "Duration of requests to the GitHub token endpoint",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// RecordHTTPRequest records an HTTP request
func (mc *MetricsCollector) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	mc.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	mc.httpRequestDuration.With(prometheus.Labels{
		"method":   method,
		"endpoint": endpoint,
	}).Observe(duration.Seconds())
}

// RecordExchange records the outcome of a code exchange
func (mc *MetricsCollector) RecordExchange(outcome string) {
	mc.exchangesTotal.WithLabelValues(outcome).Inc()
}

// ObserveUpstream records how long the GitHub token endpoint took to answer
func (mc *MetricsCollector) ObserveUpstream(duration time.Duration) {
	mc.upstreamDuration.Observe(duration.Seconds())
}

// Handler serves the collected metrics
func (mc *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(mc.registry, promhttp.HandlerOpts{})
}

// Middleware creates an HTTP middleware for recording metrics
func (mc *MetricsCollector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		mc.RecordHTTPRequest(r.Method, getEndpointFromPath(r.URL.Path), rw.statusCode, duration)

		// Log slow requests
		if duration > time.Second {
			mc.log.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": duration,
				"status":   rw.statusCode,
			}).Warn("Slow request detected")
		}
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// getEndpointFromPath keeps label cardinality bounded
func getEndpointFromPath(path string) string {
	switch path {
	case "/", "/login":
		return "login"
	case "/health":
		return "health"
	case "/version":
		return "version"
	case "/metrics":
		return "metrics"
	default:
		return "other"
	}
}
