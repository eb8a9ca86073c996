// Package metrics provides Prometheus metrics for the astrocore service.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Sign resolution
	signResolutions      *prometheus.CounterVec
	signResolutionErrors *prometheus.CounterVec
	signLatency          prometheus.Histogram
	batchSize            prometheus.Histogram

	// Compatibility
	compatScores *prometheus.HistogramVec
	compatErrors prometheus.Counter

	// Cache
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter

	// Profile pipeline
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	eventsEnqueued   prometheus.Counter
	eventsDuplicate  prometheus.Counter
	eventsProcessed  prometheus.Counter
	workerCount      prometheus.Gauge
	workerLatency    prometheus.Histogram
	workerErrors     prometheus.Counter
	profilesTotal    prometheus.Gauge
	profileConflicts prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

var runtimeOnce sync.Once //nolint:gochecknoglobals // guards RegisterRuntimeCollectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// RegisterRuntimeCollectors adds Go runtime and process collectors to the
// custom registry. Only the server binary calls it; repeated calls are no-ops.
func RegisterRuntimeCollectors() {
	runtimeOnce.Do(func() {
		customRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: "astro"}),
		)
	})
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "astro",
		subsystem:        "core",
		histogramBuckets: defaultLatencyBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

var defaultLatencyBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250} //nolint:gochecknoglobals // bucket table

//nolint:funlen // one block per collector
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.signResolutions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sign_resolutions_total",
		Help:      "Sign triads resolved, by whether a rising sign was produced",
	}, []string{"rising"})

	m.signResolutionErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sign_resolution_errors_total",
		Help:      "Failed sign resolutions by error kind",
	}, []string{"kind"})

	m.signLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sign_resolution_latency_milliseconds",
		Help:      "Time to resolve one sign triad in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.batchSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sign_batch_size",
		Help:      "Number of birth events per batch request",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})

	m.compatScores = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "compatibility_score",
		Help:      "Distribution of overall compatibility scores",
		Buckets:   prometheus.LinearBuckets(0, 10, 11),
	}, []string{"relationship"})

	m.compatErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "compatibility_errors_total",
		Help:      "Rejected compatibility requests",
	})

	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_hits_total",
		Help:      "Sign triad cache hits",
	})

	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_misses_total",
		Help:      "Sign triad cache misses",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current number of pending recompute events",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Capacity of the recompute queue",
	})

	m.eventsEnqueued = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_enqueued_total",
		Help:      "Recompute events accepted onto the queue",
	})

	m.eventsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_duplicate_total",
		Help:      "Recompute events dropped as duplicates",
	})

	m.eventsProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_processed_total",
		Help:      "Recompute events processed by workers",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Number of running recompute workers",
	})

	m.workerLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_processing_latency_milliseconds",
		Help:      "Time for a worker to process one recompute event",
		Buckets:   m.histogramBuckets,
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Recompute events that failed",
	})

	m.profilesTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "profiles_total",
		Help:      "Profiles held in the repository",
	})

	m.profileConflicts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "profile_version_conflicts_total",
		Help:      "Sign writes discarded because a newer profile version exists",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordSignResolution counts a successful resolution.
func RecordSignResolution(hasRising bool) {
	label := "false"
	if hasRising {
		label = "true"
	}
	globalManager.signResolutions.WithLabelValues(label).Inc()
}

// RecordSignResolutionError counts a failed resolution by kind
// (validation, timezone, ephemeris, ...).
func RecordSignResolutionError(kind string) {
	globalManager.signResolutionErrors.WithLabelValues(kind).Inc()
}

// RecordSignLatency records resolution latency in milliseconds.
func RecordSignLatency(latencyMs float64) {
	globalManager.signLatency.Observe(latencyMs)
}

// RecordBatchSize records the size of a batch request.
func RecordBatchSize(n int) {
	globalManager.batchSize.Observe(float64(n))
}

// RecordCompatibilityScore records an overall compatibility score.
func RecordCompatibilityScore(relationship string, score int) {
	globalManager.compatScores.WithLabelValues(relationship).Observe(float64(score))
}

// RecordCompatibilityError counts a rejected compatibility request.
func RecordCompatibilityError() {
	globalManager.compatErrors.Inc()
}

// RecordCacheHit counts a sign cache hit.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss counts a sign cache miss.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

// UpdateQueueSize sets the current queue depth.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordEventEnqueued counts an accepted recompute event.
func RecordEventEnqueued() {
	globalManager.eventsEnqueued.Inc()
}

// RecordEventDuplicate counts a dropped duplicate event.
func RecordEventDuplicate() {
	globalManager.eventsDuplicate.Inc()
}

// RecordEventProcessed counts a processed recompute event.
func RecordEventProcessed() {
	globalManager.eventsProcessed.Inc()
}

// UpdateWorkerCount sets the number of running workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records per-event worker latency in milliseconds.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerLatency.Observe(latencyMs)
}

// RecordWorkerError counts a failed recompute event.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// UpdateProfilesTotal sets the number of stored profiles.
func UpdateProfilesTotal(count int) {
	globalManager.profilesTotal.Set(float64(count))
}

// RecordProfileConflict counts a stale sign write.
func RecordProfileConflict() {
	globalManager.profileConflicts.Inc()
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
