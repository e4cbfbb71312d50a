// Package obs exposes Prometheus metrics for case generation and the HTTP API.
package obs

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrJamesThe3rd/auditcase/internal/validation"
)

// Metrics holds the collectors on a private registry. It implements
// engine.Observer.
type Metrics struct {
	registry *prometheus.Registry

	generations        prometheus.Counter
	failures           prometheus.Counter
	attempts           prometheus.Histogram
	repairs            *prometheus.CounterVec
	allocatorFallbacks *prometheus.CounterVec

	httpInFlight        prometheus.Gauge
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		generations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auditcase_generations_total",
			Help: "Populations that reached a valid state.",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auditcase_generation_failures_total",
			Help: "Populations abandoned after the attempt cap.",
		}),
		attempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "auditcase_generation_attempts",
			Help:    "Validation passes needed per generation.",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 34, 50},
		}),
		repairs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auditcase_repairs_total",
			Help: "Repairs applied, by issue code.",
		}, []string{"code"}),
		allocatorFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auditcase_allocator_fallbacks_total",
			Help: "Invoices that fell back to a nearest-fit allocation.",
		}, []string{"vendor"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "In-flight HTTP requests.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}

	m.registry.MustRegister(
		m.generations,
		m.failures,
		m.attempts,
		m.repairs,
		m.allocatorFallbacks,
		m.httpInFlight,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	)

	for _, code := range validation.AllCodes() {
		m.repairs.WithLabelValues(code.String())
	}

	return m
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Generated(attempts int) {
	m.generations.Inc()
	m.attempts.Observe(float64(attempts))
}

func (m *Metrics) Exhausted(attempts int) {
	m.failures.Inc()
	m.attempts.Observe(float64(attempts))
}

func (m *Metrics) Repaired(code validation.Code) {
	m.repairs.WithLabelValues(code.String()).Inc()
}

func (m *Metrics) AllocationFallback(vendor string) {
	m.allocatorFallbacks.WithLabelValues(vendor).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Instrument records request count, latency and in-flight requests. The path
// label is the matched chi route pattern so IDs do not explode cardinality.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}

		next.ServeHTTP(sw, r)

		path := RoutePattern(r)
		status := strconv.Itoa(sw.code)

		m.httpRequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
		m.httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
	})
}

// RoutePattern returns the chi route pattern that served r without its
// trailing slash, or "unmatched".
func RoutePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return "unmatched"
	}

	if p := rctx.RoutePattern(); p == "/" {
		return p
	} else if p = strings.TrimRight(p, "/"); p != "" {
		return p
	}

	return "unmatched"
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
