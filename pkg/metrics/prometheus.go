// Package metrics provides Prometheus metrics for the gradebase client and gateway.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector exported by the process.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Backend round-trips
	backendRequests        *prometheus.CounterVec
	backendRequestDuration *prometheus.HistogramVec

	// Grade workflow
	searches       *prometheus.CounterVec
	rowsPublished  prometheus.Gauge
	rowsIncomplete prometheus.Counter
	rosterLookups  *prometheus.CounterVec
	gradeWrites    *prometheus.CounterVec

	// ML overlays
	mlRuns         *prometheus.CounterVec
	overlayEntries *prometheus.GaugeVec

	// Gateway HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec

	// Process
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by the package-level recorders

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "gradebase",
		subsystem:        "client",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.backendRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "backend_requests_total",
		Help:      "Backend round-trips by operation and outcome",
	}, []string{"operation", "outcome"})

	m.backendRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "backend_request_duration_milliseconds",
		Help:      "Backend round-trip latency in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"operation"})

	m.searches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "searches_total",
		Help:      "Grade searches by outcome (ok, superseded, failed, roster_failed)",
	}, []string{"outcome"})

	m.rowsPublished = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rows_published",
		Help:      "Rows in the currently published grade table",
	})

	m.rowsIncomplete = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rows_incomplete_total",
		Help:      "Resolved rows that lacked a student code or name",
	})

	m.rosterLookups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "roster_lookups_total",
		Help:      "Rows reconciled against the roster by result (id, code, unresolved)",
	}, []string{"result"})

	m.gradeWrites = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "grade_writes_total",
		Help:      "Grade create/update/delete submissions by outcome",
	}, []string{"op", "outcome"})

	m.mlRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ml_runs_total",
		Help:      "ML projection/risk invocations by outcome",
	}, []string{"kind", "outcome"})

	m.overlayEntries = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "overlay_entries",
		Help:      "Student codes present in each ML overlay",
	}, []string{"kind"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "gateway",
		Name:      "http_requests_total",
		Help:      "Gateway HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "gateway",
		Name:      "http_request_duration_milliseconds",
		Help:      "Gateway HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_total",
		Help:      "Errors by component and type",
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "memory_usage_bytes",
		Help:      "Heap bytes allocated",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "goroutine_count",
		Help:      "Number of goroutines",
	})
}

// RecordBackendRequest counts one backend round-trip and its latency.
func RecordBackendRequest(operation, outcome string, latencyMs float64) {
	globalManager.backendRequests.WithLabelValues(operation, outcome).Inc()
	globalManager.backendRequestDuration.WithLabelValues(operation).Observe(latencyMs)
}

// RecordSearch counts a finished search by outcome.
func RecordSearch(outcome string) {
	globalManager.searches.WithLabelValues(outcome).Inc()
}

// UpdateRowsPublished sets the size of the published table.
func UpdateRowsPublished(n int) {
	globalManager.rowsPublished.Set(float64(n))
}

// RecordRowsIncomplete adds rows that needed identity reconciliation.
func RecordRowsIncomplete(n int) {
	globalManager.rowsIncomplete.Add(float64(n))
}

// RecordRosterLookups adds n rows reconciled with the given outcome.
func RecordRosterLookups(result string, n int) {
	globalManager.rosterLookups.WithLabelValues(result).Add(float64(n))
}

// RecordGradeWrite counts a write submission.
func RecordGradeWrite(op, outcome string) {
	globalManager.gradeWrites.WithLabelValues(op, outcome).Inc()
}

// RecordMLRun counts an ML invocation.
func RecordMLRun(kind, outcome string) {
	globalManager.mlRuns.WithLabelValues(kind, outcome).Inc()
}

// UpdateOverlayEntries sets the size of one overlay.
func UpdateOverlayEntries(kind string, n int) {
	globalManager.overlayEntries.WithLabelValues(kind).Set(float64(n))
}

// RecordHTTPRequest records a gateway request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records gateway request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
