package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yungbote/curator-backend/internal/platform/logger"
)

// Metrics owns a private registry so several instances can coexist in tests.
// Every method is safe on a nil receiver, which is what callers hold when
// metrics are disabled.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge
	jobsQueued  *prometheus.CounterVec
	uploads     *prometheus.CounterVec
}

func NewMetrics(log *logger.Logger) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "API request latency in seconds by method/route/status.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"method", "route", "status"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "In-flight API requests.",
		}),
		jobsQueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "processing_jobs_queued_total",
			Help: "Processing jobs queued, by trigger.",
		}, []string{"trigger"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "data_source_uploads_total",
			Help: "Data source uploads by result.",
		}, []string{"result"}),
	}

	for _, c := range []prometheus.Collector{
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.jobsQueued,
		m.uploads,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := m.registry.Register(c); err != nil && log != nil {
			log.Error("Failed to register metric collector", "error", err)
		}
	}
	return m
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	code := strconv.Itoa(status)
	m.apiRequests.WithLabelValues(method, route, code).Inc()
	m.apiLatency.WithLabelValues(method, route, code).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) IncJobQueued(trigger string) {
	if m == nil {
		return
	}
	m.jobsQueued.WithLabelValues(trigger).Inc()
}

func (m *Metrics) IncUpload(result string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(result).Inc()
}
