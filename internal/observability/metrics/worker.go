package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
)

type WorkerMetrics struct {
	*resilienceCollectors

	registry *prometheus.Registry
	service  string

	rebuildTotal    *prometheus.CounterVec
	rebuildDuration *prometheus.HistogramVec
	rebuildInFlight prometheus.Gauge
	queueLag        *prometheus.HistogramVec
	indexChunks     prometheus.Gauge
	indexSources    prometheus.Gauge
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	rebuildTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "index_rebuild_total",
			Help:      "Total index rebuilds by status.",
		},
		[]string{"service", "status"},
	)
	rebuildDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "index_rebuild_duration_seconds",
			Help:      "Index rebuild duration in seconds by status.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200},
		},
		[]string{"service", "status"},
	)
	rebuildInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "worker",
			Name:        "index_rebuild_in_flight",
			Help:        "Number of running index rebuilds.",
			ConstLabels: prometheus.Labels{"service": service},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between a rebuild request and the start of its processing.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)
	indexChunks := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "index",
			Name:        "chunks",
			Help:        "Chunks held by the active reference index.",
			ConstLabels: prometheus.Labels{"service": service},
		},
	)
	indexSources := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "index",
			Name:        "sources",
			Help:        "Distinct source URLs in the active reference index.",
			ConstLabels: prometheus.Labels{"service": service},
		},
	)

	registry.MustRegister(rebuildTotal, rebuildDuration, rebuildInFlight, queueLag, indexChunks, indexSources)

	return &WorkerMetrics{
		resilienceCollectors: newResilienceCollectors(registry, service),
		registry:             registry,
		service:              service,
		rebuildTotal:         rebuildTotal,
		rebuildDuration:      rebuildDuration,
		rebuildInFlight:      rebuildInFlight,
		queueLag:             queueLag,
		indexChunks:          indexChunks,
		indexSources:         indexSources,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartRebuild(requestedAt time.Time) {
	m.rebuildInFlight.Inc()
	if !requestedAt.IsZero() {
		if lag := time.Since(requestedAt); lag >= 0 {
			m.queueLag.WithLabelValues(m.service).Observe(lag.Seconds())
		}
	}
}

func (m *WorkerMetrics) FinishRebuild(duration time.Duration, err error) {
	m.rebuildInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}
	m.rebuildTotal.WithLabelValues(m.service, status).Inc()
	m.rebuildDuration.WithLabelValues(m.service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) SetIndexStats(stats domain.IndexStats) {
	m.indexChunks.Set(float64(stats.Chunks))
	m.indexSources.Set(float64(stats.Sources))
}
