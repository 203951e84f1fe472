package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and
// the solver.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	solveDuration   *prometheus.HistogramVec
	solveNodes      prometheus.Histogram
	runsTotal       *prometheus.CounterVec
	fallbackTotal   prometheus.Counter
	runsInFlight    prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	solveDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "optimizer_solve_duration_seconds",
		Help:    "Wall time of optimization solves",
		Buckets: []float64{0.05, 0.25, 1, 5, 10, 20, 30, 60},
	}, []string{"status"})

	solveNodes := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "optimizer_solve_nodes",
		Help:    "Branch-and-bound nodes explored per solve",
		Buckets: prometheus.ExponentialBuckets(256, 4, 10),
	})

	runsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "optimizer_runs_total",
		Help: "Completed optimization runs by outcome",
	}, []string{"status"})

	fallbackTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "optimizer_fallback_total",
		Help: "Runs recovered by the greedy fallback",
	})

	runsInFlight := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "optimizer_runs_in_flight",
		Help: "Optimization runs currently executing",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, solveDuration, solveNodes, runsTotal, fallbackTotal, runsInFlight, cacheHits, cacheMisses, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		solveDuration:   solveDuration,
		solveNodes:      solveNodes,
		runsTotal:       runsTotal,
		fallbackTotal:   fallbackTotal,
		runsInFlight:    runsInFlight,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	label := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, label).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, label).Inc()
}

// RunStarted marks an optimization run entering a worker.
func (m *MetricsService) RunStarted() {
	if m == nil {
		return
	}
	m.runsInFlight.Inc()
}

// RunFinished records the outcome of a completed run.
func (m *MetricsService) RunFinished(status string, fallback bool, nodes int64, duration time.Duration) {
	if m == nil {
		return
	}
	m.runsInFlight.Dec()
	m.runsTotal.WithLabelValues(status).Inc()
	m.solveDuration.WithLabelValues(status).Observe(duration.Seconds())
	m.solveNodes.Observe(float64(nodes))
	if fallback {
		m.fallbackTotal.Inc()
	}
}

// RecordCacheLookup tracks result-cache effectiveness.
func (m *MetricsService) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}
