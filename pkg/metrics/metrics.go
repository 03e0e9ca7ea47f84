// Package metrics provides Prometheus metrics for the knowledge engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns all Prometheus collectors for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         *prometheus.Registry

	// Review pipeline
	reviewsRecorded     prometheus.Counter
	reviewsDeduplicated prometheus.Counter
	reviewConflicts     prometheus.Counter
	reviewFailures      prometheus.Counter
	recordLatency       prometheus.Histogram
	batchSize           prometheus.Histogram

	// Read side
	cacheHits         prometheus.Counter
	cacheMisses       prometheus.Counter
	cacheInvalidation prometheus.Counter
	dueQueryLatency   prometheus.Histogram

	// Ingestion pipeline
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueEnqueued    prometheus.Counter
	queueDequeued    prometheus.Counter
	queueEnqueueErrs prometheus.Counter
	workerCount      prometheus.Gauge
	workerErrors     prometheus.Counter

	// Maintenance
	digestRuns   prometheus.Counter
	importedRows prometheus.Counter
}

// Global manager backed by a custom registry so default Go collectors do not
// pollute the engine's metric namespace.
var (
	customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry
	globalManager  *Manager                   //nolint:gochecknoglobals // singleton manager
)

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "fluency",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.register()
	return m
}

func (m *Manager) register() {
	f := promauto.With(m.registry)

	m.reviewsRecorded = f.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "reviews_recorded_total",
		Help: "Review events that updated scheduling state.",
	})
	m.reviewsDeduplicated = f.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "reviews_deduplicated_total",
		Help: "Review events suppressed by the dedup window.",
	})
	m.reviewConflicts = f.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "review_version_conflicts_total",
		Help: "Optimistic-lock conflicts observed while persisting records.",
	})
	m.reviewFailures = f.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "review_failures_total",
		Help: "Review events that failed validation or persistence.",
	})
	m.recordLatency = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "record_review_duration_ms",
		Help:    "End-to-end latency of RecordReview in milliseconds.",
		Buckets: m.histogramBuckets,
	})
	m.batchSize = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "review_batch_size",
		Help:    "Number of events per RecordReviewBatch call.",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
	})

	m.cacheHits = f.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "known_words_cache_hits_total",
		Help: "Known-words snapshot cache hits.",
	})
	m.cacheMisses = f.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "known_words_cache_misses_total",
		Help: "Known-words snapshot cache misses.",
	})
	m.cacheInvalidation = f.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "known_words_cache_invalidations_total",
		Help: "Explicit cache invalidations after record writes.",
	})
	m.dueQueryLatency = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "due_query_duration_ms",
		Help:    "Latency of due-word queries in milliseconds.",
		Buckets: m.histogramBuckets,
	})

	m.queueSize = f.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "event_queue_size",
		Help: "Current number of queued review events.",
	})
	m.queueCapacity = f.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "event_queue_capacity",
		Help: "Configured review event queue capacity.",
	})
	m.queueEnqueued = f.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "event_queue_enqueued_total",
		Help: "Events accepted by the queue.",
	})
	m.queueDequeued = f.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "event_queue_dequeued_total",
		Help: "Events handed to workers.",
	})
	m.queueEnqueueErrs = f.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "event_queue_enqueue_errors_total",
		Help: "Enqueue attempts refused (full or closed queue).",
	})
	m.workerCount = f.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "worker_count",
		Help: "Number of running review workers.",
	})
	m.workerErrors = f.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "worker_errors_total",
		Help: "Errors encountered by review workers.",
	})

	m.digestRuns = f.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "digest_runs_total",
		Help: "Completed due-review digest scans.",
	})
	m.importedRows = f.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "imported_rows_total",
		Help: "Vocabulary rows imported from seed files.",
	})
}

// Handler returns an HTTP handler serving the engine registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}

// Package-level helpers operating on the global manager.

func RecordReviewRecorded() {
	if globalManager.enabled {
		globalManager.reviewsRecorded.Inc()
	}
}

func RecordReviewDeduplicated() {
	if globalManager.enabled {
		globalManager.reviewsDeduplicated.Inc()
	}
}

func RecordReviewConflict() {
	if globalManager.enabled {
		globalManager.reviewConflicts.Inc()
	}
}

func RecordReviewFailure() {
	if globalManager.enabled {
		globalManager.reviewFailures.Inc()
	}
}

func ObserveRecordLatency(ms float64) {
	if globalManager.enabled {
		globalManager.recordLatency.Observe(ms)
	}
}

func ObserveBatchSize(n int) {
	if globalManager.enabled {
		globalManager.batchSize.Observe(float64(n))
	}
}

func RecordCacheHit() {
	if globalManager.enabled {
		globalManager.cacheHits.Inc()
	}
}

func RecordCacheMiss() {
	if globalManager.enabled {
		globalManager.cacheMisses.Inc()
	}
}

func RecordCacheInvalidation() {
	if globalManager.enabled {
		globalManager.cacheInvalidation.Inc()
	}
}

func ObserveDueQueryLatency(ms float64) {
	if globalManager.enabled {
		globalManager.dueQueryLatency.Observe(ms)
	}
}

func UpdateQueueSize(n int) {
	if globalManager.enabled {
		globalManager.queueSize.Set(float64(n))
	}
}

func UpdateQueueCapacity(n int) {
	if globalManager.enabled {
		globalManager.queueCapacity.Set(float64(n))
	}
}

func RecordQueueEnqueue() {
	if globalManager.enabled {
		globalManager.queueEnqueued.Inc()
	}
}

func RecordQueueDequeue() {
	if globalManager.enabled {
		globalManager.queueDequeued.Inc()
	}
}

func RecordQueueEnqueueError() {
	if globalManager.enabled {
		globalManager.queueEnqueueErrs.Inc()
	}
}

func UpdateWorkerCount(n int) {
	if globalManager.enabled {
		globalManager.workerCount.Set(float64(n))
	}
}

func RecordWorkerError() {
	if globalManager.enabled {
		globalManager.workerErrors.Inc()
	}
}

func RecordDigestRun() {
	if globalManager.enabled {
		globalManager.digestRuns.Inc()
	}
}

func RecordImportedRows(n int) {
	if globalManager.enabled {
		globalManager.importedRows.Add(float64(n))
	}
}
