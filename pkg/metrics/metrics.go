package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector provides application metrics collection
type Collector struct {
	// API Metrics
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	APIErrorsTotal     *prometheus.CounterVec

	// Loader Metrics
	LoadDuration       prometheus.Histogram
	LoadErrorsTotal    *prometheus.CounterVec
	RowsLoaded         prometheus.Gauge
	DatasetCacheHits   prometheus.Counter
	DatasetCacheMisses prometheus.Counter

	// Cleaning Metrics
	CleaningDuration prometheus.Histogram
	RowsRemoved      *prometheus.CounterVec
	RowsRetained     prometheus.Gauge

	// Aggregation Metrics
	AggregationDuration *prometheus.HistogramVec
	SnapshotsTotal      prometheus.Counter
}

// NewCollector creates a new metrics collector
func NewCollector(namespace string) *Collector {
	return &Collector{
		APIRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of API requests by endpoint, method, and status",
			},
			[]string{"endpoint", "method", "status"},
		),

		APIRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0},
			},
			[]string{"endpoint"},
		),

		APIErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_errors_total",
				Help:      "Total number of API errors by type",
			},
			[]string{"error_type", "endpoint"},
		),

		LoadDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dataset_load_duration_seconds",
				Help:      "Duration of dataset loads from disk in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
		),

		LoadErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dataset_load_errors_total",
				Help:      "Total number of dataset load failures by type",
			},
			[]string{"error_type"},
		),

		RowsLoaded: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "dataset_rows_loaded",
				Help:      "Number of raw rows in the most recent dataset load",
			},
		),

		DatasetCacheHits: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dataset_cache_hits_total",
				Help:      "Total number of dataset cache hits",
			},
		),

		DatasetCacheMisses: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dataset_cache_misses_total",
				Help:      "Total number of dataset cache misses",
			},
		),

		CleaningDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "cleaning_duration_seconds",
				Help:      "Duration of cleaning pipeline runs in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
		),

		RowsRemoved: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cleaning_rows_removed_total",
				Help:      "Total number of rows removed by each cleaning stage",
			},
			[]string{"stage"},
		),

		RowsRetained: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "cleaning_rows_retained",
				Help:      "Number of clean rows after the most recent pipeline run",
			},
		),

		AggregationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "aggregation_duration_seconds",
				Help:      "Duration of aggregate computation in seconds by aggregate",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.0},
			},
			[]string{"aggregate"},
		),

		SnapshotsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dashboard_snapshots_total",
				Help:      "Total number of dashboard snapshots computed",
			},
		),
	}
}

// Timer provides timing functionality for operations
type Timer struct {
	start    time.Time
	observer prometheus.Observer
}

// NewTimer creates a new timer
func (c *Collector) NewTimer(histogram prometheus.Observer) *Timer {
	return &Timer{
		start:    time.Now(),
		observer: histogram,
	}
}

// ObserveDuration records the elapsed time since timer creation
func (t *Timer) ObserveDuration() time.Duration {
	duration := time.Since(t.start)
	if t.observer != nil {
		t.observer.Observe(duration.Seconds())
	}
	return duration
}

// RecordAPIRequest increments API request counter
func (c *Collector) RecordAPIRequest(endpoint, method, status string) {
	c.APIRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
}

// RecordAPIError increments API error counter
func (c *Collector) RecordAPIError(errorType, endpoint string) {
	c.APIErrorsTotal.WithLabelValues(errorType, endpoint).Inc()
}

// RecordLoadError increments dataset load error counter
func (c *Collector) RecordLoadError(errorType string) {
	c.LoadErrorsTotal.WithLabelValues(errorType).Inc()
}

// RecordStageRemovals adds removed-row counts for a cleaning stage
func (c *Collector) RecordStageRemovals(stage string, removed int) {
	c.RowsRemoved.WithLabelValues(stage).Add(float64(removed))
}
