package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
)

const namespace = "adgm"

type HTTPServerMetrics struct {
	*resilienceCollectors

	registry *prometheus.Registry
	service  string
	routes   map[string]bool

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	analysisRunsTotal      *prometheus.CounterVec
	analysisDocumentsTotal *prometheus.CounterVec
	analysisIssuesTotal    *prometheus.CounterVec
	analysisCompletion     *prometheus.HistogramVec
	searchResults          *prometheus.HistogramVec
	searchDuration         *prometheus.HistogramVec
}

// NewHTTPServerMetrics registers collectors for one service. routes lists the known paths;
// any other path is reported as "other" to keep label cardinality bounded.
func NewHTTPServerMetrics(service string, routes ...string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "in_flight_requests",
			Help:        "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{"service": service},
		},
	)
	analysisRunsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "runs_total",
			Help:      "Completed batch analyses by process.",
		},
		[]string{"service", "process"},
	)
	analysisDocumentsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "documents_total",
			Help:      "Analyzed documents by detected type.",
		},
		[]string{"service", "document_type"},
	)
	analysisIssuesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "issues_total",
			Help:      "Red flags raised by type and severity.",
		},
		[]string{"service", "type", "severity"},
	)
	analysisCompletion := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "completion_ratio",
			Help:      "Checklist completion ratio per analysis.",
			Buckets:   []float64{0, 0.25, 0.34, 0.5, 0.67, 0.75, 0.99, 1},
		},
		[]string{"service", "process"},
	)
	searchResults := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "reference",
			Name:      "search_results",
			Help:      "Distribution of returned chunks per reference search.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service"},
	)
	searchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "reference",
			Name:      "search_duration_seconds",
			Help:      "Reference search duration in seconds, embedding included.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		analysisRunsTotal,
		analysisDocumentsTotal,
		analysisIssuesTotal,
		analysisCompletion,
		searchResults,
		searchDuration,
	)

	known := make(map[string]bool, len(routes))
	for _, route := range routes {
		known[route] = true
	}

	return &HTTPServerMetrics{
		resilienceCollectors:   newResilienceCollectors(registry, service),
		registry:               registry,
		service:                service,
		routes:                 known,
		requestTotal:           requestTotal,
		requestDuration:        requestDuration,
		requestInFlight:        requestInFlight,
		analysisRunsTotal:      analysisRunsTotal,
		analysisDocumentsTotal: analysisDocumentsTotal,
		analysisIssuesTotal:    analysisIssuesTotal,
		analysisCompletion:     analysisCompletion,
		searchResults:          searchResults,
		searchDuration:         searchDuration,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := m.normalizePath(r.URL.Path)
		rec := &codeRecorder{ResponseWriter: w}
		m.requestInFlight.Inc()
		started := time.Now()

		next.ServeHTTP(rec, r)

		m.requestInFlight.Dec()
		m.requestDuration.WithLabelValues(m.service, r.Method, path).Observe(time.Since(started).Seconds())
		m.requestTotal.WithLabelValues(m.service, r.Method, path, rec.status()).Inc()
	})
}

// normalizePath keeps known routes as-is. A route ending in "/" matches any single child segment,
// reported as "{key}".
func (m *HTTPServerMetrics) normalizePath(path string) string {
	if len(m.routes) == 0 || m.routes[path] {
		return path
	}
	if i := strings.LastIndexByte(path, '/'); i > 0 && i < len(path)-1 && m.routes[path[:i+1]] {
		return path[:i+1] + "{key}"
	}
	return "other"
}

func (m *HTTPServerMetrics) RecordAnalysis(batch *domain.BatchAnalysis) {
	if batch == nil {
		return
	}
	process := batch.Completeness.Process
	if process == "" {
		process = domain.ProcessUnknown
	}
	m.analysisRunsTotal.WithLabelValues(m.service, process).Inc()
	m.analysisCompletion.WithLabelValues(m.service, process).Observe(batch.Completeness.CompletionRate)
	for _, doc := range batch.Documents {
		m.analysisDocumentsTotal.WithLabelValues(m.service, doc.DocumentType).Inc()
		for _, issue := range doc.Issues {
			m.analysisIssuesTotal.WithLabelValues(m.service, issue.Type, string(issue.Severity)).Inc()
		}
	}
}

func (m *HTTPServerMetrics) RecordSearch(results int, duration time.Duration) {
	m.searchResults.WithLabelValues(m.service).Observe(float64(results))
	m.searchDuration.WithLabelValues(m.service).Observe(duration.Seconds())
}

type codeRecorder struct {
	http.ResponseWriter
	code int
}

func (w *codeRecorder) WriteHeader(code int) {
	if w.code == 0 {
		w.code = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *codeRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *codeRecorder) status() string {
	if w.code == 0 {
		return "200"
	}
	return strconv.Itoa(w.code)
}
