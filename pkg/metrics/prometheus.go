// Package metrics provides Prometheus metrics for the Kestrel intelligence pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the Kestrel service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Intake metrics
	candidatesIngested  prometheus.Counter
	candidatesDuplicate prometheus.Counter
	candidatesRejected  prometheus.Counter
	poolSize            prometheus.Gauge

	// Pipeline metrics
	briefingsBuilt     prometheus.Counter
	briefingLatency    prometheus.Histogram
	stageLatency       *prometheus.HistogramVec
	threadsBuilt       prometheus.Counter
	corroboratedItems  prometheus.Counter
	emergingTrends     prometheus.Gauge
	regionsAssessed    prometheus.Gauge
	trackedSources     prometheus.Gauge
	trackedTrendTopics prometheus.Gauge
	pipelineErrors     *prometheus.CounterVec

	// Queue metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueues      prometheus.Counter
	queueDequeues      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker metrics
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Reserve store metrics
	reserveEntries     prometheus.Gauge
	reserveItemsServed prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "kestrel",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // metric registration is one long list
	auto := promauto.With(m.registry)

	m.candidatesIngested = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "candidates_ingested_total",
		Help:      "Total number of candidate items accepted at intake",
	})

	m.candidatesDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "candidates_duplicate_total",
		Help:      "Total number of duplicate candidate ids detected at intake",
	})

	m.candidatesRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "candidates_rejected_total",
		Help:      "Total number of candidate items rejected by boundary validation",
	})

	m.poolSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "candidate_pool_size",
		Help:      "Current number of candidate items in the working pool",
	})

	m.briefingsBuilt = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "briefings_built_total",
		Help:      "Total number of briefing pipeline runs completed",
	})

	m.briefingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "briefing_latency_milliseconds",
		Help:      "End-to-end briefing pipeline latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.stageLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "stage_latency_milliseconds",
			Help:      "Per-stage pipeline latency in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"stage"},
	)

	m.threadsBuilt = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "narrative_threads_total",
		Help:      "Total number of narrative threads produced by clustering",
	})

	m.corroboratedItems = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "corroborated_candidates_total",
		Help:      "Total number of candidates marked with cross-source corroboration",
	})

	m.emergingTrends = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "emerging_trends",
		Help:      "Number of topics flagged as emerging in the latest trend pass",
	})

	m.regionsAssessed = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "regions_assessed",
		Help:      "Number of regions scored in the latest geo-risk pass",
	})

	m.trackedSources = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tracked_sources",
		Help:      "Number of sources tracked by the credibility tracker",
	})

	m.trackedTrendTopics = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tracked_trend_topics",
		Help:      "Number of topics with a trend baseline",
	})

	m.pipelineErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "pipeline_errors_total",
			Help:      "Total errors by component and kind",
		},
		[]string{"component", "kind"},
	)

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current size of the intake queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured capacity of the intake queue",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization",
		Help:      "Intake queue utilization ratio (0-1)",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueues_total",
		Help:      "Total successful enqueues to the intake queue",
	})

	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeues_total",
		Help:      "Total dequeues from the intake queue",
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Total failed enqueues (closed, full, or cancelled)",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Current number of intake workers",
	})

	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_processing_latency_milliseconds",
		Help:      "Per-candidate intake processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Total intake worker processing errors",
	})

	m.reserveEntries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reserve_entries",
		Help:      "Current number of candidates held in the backfill reserve",
	})

	m.reserveItemsServed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reserve_items_served_total",
		Help:      "Total candidates served from the backfill reserve",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
}

// RecordCandidateIngested increments the intake counter.
func RecordCandidateIngested() {
	globalManager.candidatesIngested.Inc()
}

// RecordCandidateDuplicate increments the duplicate candidate counter.
func RecordCandidateDuplicate() {
	globalManager.candidatesDuplicate.Inc()
}

// RecordCandidateRejected increments the rejected candidate counter.
func RecordCandidateRejected() {
	globalManager.candidatesRejected.Inc()
}

// UpdatePoolSize sets the current candidate pool size.
func UpdatePoolSize(size int) {
	globalManager.poolSize.Set(float64(size))
}

// RecordBriefingBuilt increments the briefing counter.
func RecordBriefingBuilt() {
	globalManager.briefingsBuilt.Inc()
}

// RecordBriefingLatency records end-to-end pipeline latency in milliseconds.
func RecordBriefingLatency(latencyMs float64) {
	globalManager.briefingLatency.Observe(latencyMs)
}

// RecordStageLatency records a single pipeline stage latency in milliseconds.
func RecordStageLatency(stage string, latencyMs float64) {
	globalManager.stageLatency.WithLabelValues(stage).Observe(latencyMs)
}

// RecordThreadsBuilt adds to the narrative thread counter.
func RecordThreadsBuilt(n int) {
	globalManager.threadsBuilt.Add(float64(n))
}

// RecordCorroboratedItems adds to the corroborated candidates counter.
func RecordCorroboratedItems(n int) {
	globalManager.corroboratedItems.Add(float64(n))
}

// UpdateEmergingTrends sets the emerging trend gauge.
func UpdateEmergingTrends(n int) {
	globalManager.emergingTrends.Set(float64(n))
}

// UpdateRegionsAssessed sets the assessed region gauge.
func UpdateRegionsAssessed(n int) {
	globalManager.regionsAssessed.Set(float64(n))
}

// UpdateTrackedSources sets the tracked source gauge.
func UpdateTrackedSources(n int) {
	globalManager.trackedSources.Set(float64(n))
}

// UpdateTrackedTrendTopics sets the trend topic gauge.
func UpdateTrackedTrendTopics(n int) {
	globalManager.trackedTrendTopics.Set(float64(n))
}

// RecordErrorByComponent increments the component error counter.
func RecordErrorByComponent(component, kind string) {
	globalManager.pipelineErrors.WithLabelValues(component, kind).Inc()
}

// UpdateQueueSize sets the queue size gauge.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity gauge.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization gauge.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueues.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeues.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the worker gauge.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records per-candidate processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// UpdateReserveEntries sets the reserve store size gauge.
func UpdateReserveEntries(n int) {
	globalManager.reserveEntries.Set(float64(n))
}

// RecordReserveItemsServed adds to the served-from-reserve counter.
func RecordReserveItemsServed(n int) {
	globalManager.reserveItemsServed.Add(float64(n))
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records an HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// GetRegistry returns the custom metrics registry for serving /metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
