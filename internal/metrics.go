package internal

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects HTTP and inventory metrics in a private registry. It
// implements inventory.Recorder.
type Metrics struct {
	reqTotal    *prometheus.CounterVec
	reqLatency  *prometheus.HistogramVec
	itemsLoaded prometheus.Gauge
	placements  prometheus.Counter
	registry    *prometheus.Registry
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		reqTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		reqLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		itemsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "inventory_items_loaded",
			Help: "Number of items in the current collection",
		}),
		placements: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inventory_placements_total",
			Help: "Item placements saved, manual or imported",
		}),
		registry: registry,
	}

	registry.MustRegister(m.reqTotal, m.reqLatency, m.itemsLoaded, m.placements)
	return m
}

// ItemsLoaded sets the collection size gauge.
func (m *Metrics) ItemsLoaded(n int) { m.itemsLoaded.Set(float64(n)) }

// Placed counts saved placements.
func (m *Metrics) Placed(n int) {
	if n > 0 {
		m.placements.Add(float64(n))
	}
}

// Middleware returns a chi middleware that records request count and latency
// labelled by route pattern.
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &statusRecorder{ResponseWriter: w, code: http.StatusOK}

			next.ServeHTTP(rw, r)

			path := r.URL.Path
			if chiCtx := chi.RouteContext(r.Context()); chiCtx != nil {
				if pattern := chiCtx.RoutePattern(); pattern != "" {
					path = pattern
				}
			}

			status := strconv.Itoa(rw.code)
			m.reqTotal.WithLabelValues(r.Method, path, status).Inc()
			m.reqLatency.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
		})
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// statusRecorder captures the HTTP status code for metrics
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.code = code
	sr.ResponseWriter.WriteHeader(code)
}
