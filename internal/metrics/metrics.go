package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all Prometheus metrics.
//
// It carries no runtime collectors: the node_exporter textfile collector
// rejects go_* and process_* families it already exports.
type Registry struct {
	*prometheus.Registry

	// Upload metrics
	uploadsTotal *prometheus.CounterVec
	uploadBytes  prometheus.Counter
	storedBytes  prometheus.Counter

	// Restore metrics
	downloadsTotal    *prometheus.CounterVec
	remoteFetches     *prometheus.CounterVec
	fetchedBytes      prometheus.Counter
	prefetchFailures  prometheus.Counter
	prefetchScheduled prometheus.Counter

	// Retention metrics
	cleanupDeleted prometheus.Counter

	operationDuration *prometheus.HistogramVec
	lastSuccess       *prometheus.GaugeVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		Registry: reg,

		uploadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walarchive_uploads_total",
				Help: "Total number of segment uploads",
			},
			[]string{"compressed", "status"},
		),
		uploadBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "walarchive_upload_source_bytes_total",
				Help: "Bytes read from local segments before compression",
			},
		),
		storedBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "walarchive_upload_stored_bytes_total",
				Help: "Bytes handed to the object store",
			},
		),

		downloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walarchive_downloads_total",
				Help: "Total number of segment restores",
			},
			[]string{"source", "status"},
		),
		remoteFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walarchive_remote_fetches_total",
				Help: "Objects fetched from the store, by representation",
			},
			[]string{"representation"},
		),
		fetchedBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "walarchive_fetched_bytes_total",
				Help: "Bytes fetched from the object store",
			},
		),
		prefetchFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "walarchive_prefetch_failures_total",
				Help: "Prefetch tasks for sibling segments that failed and were dropped",
			},
		),
		prefetchScheduled: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "walarchive_prefetch_scheduled_total",
				Help: "Fetch tasks dispatched to the prefetch pool",
			},
		),

		cleanupDeleted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "walarchive_cleanup_deleted_total",
				Help: "Objects removed by retention cleanup",
			},
		),

		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "walarchive_operation_duration_seconds",
				Help:    "Duration of archive, restore and cleanup operations",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"operation"},
		),
		lastSuccess: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "walarchive_last_success_timestamp_seconds",
				Help: "Unix time of the last successful operation",
			},
			[]string{"operation"},
		),
	}

	reg.MustRegister(r.uploadsTotal)
	reg.MustRegister(r.uploadBytes)
	reg.MustRegister(r.storedBytes)
	reg.MustRegister(r.downloadsTotal)
	reg.MustRegister(r.remoteFetches)
	reg.MustRegister(r.fetchedBytes)
	reg.MustRegister(r.prefetchFailures)
	reg.MustRegister(r.prefetchScheduled)
	reg.MustRegister(r.cleanupDeleted)
	reg.MustRegister(r.operationDuration)
	reg.MustRegister(r.lastSuccess)

	return r
}

// RecordUpload records an upload attempt.
func (r *Registry) RecordUpload(compressed bool, err error, sourceBytes, storedBytes int64) {
	r.uploadsTotal.WithLabelValues(boolLabel(compressed), statusLabel(err)).Inc()
	if err == nil {
		r.uploadBytes.Add(float64(sourceBytes))
		r.storedBytes.Add(float64(storedBytes))
	}
}

// RecordDownload records a restore; source is "cache" or "remote".
func (r *Registry) RecordDownload(source string, err error) {
	r.downloadsTotal.WithLabelValues(source, statusLabel(err)).Inc()
}

// RecordFetch records one object fetched from the store.
func (r *Registry) RecordFetch(compressed bool, size int) {
	representation := "plain"
	if compressed {
		representation = "gzip"
	}
	r.remoteFetches.WithLabelValues(representation).Inc()
	r.fetchedBytes.Add(float64(size))
}

// RecordPrefetchScheduled records the number of tasks dispatched.
func (r *Registry) RecordPrefetchScheduled(n int) {
	r.prefetchScheduled.Add(float64(n))
}

// RecordPrefetchFailure records a dropped sibling fetch.
func (r *Registry) RecordPrefetchFailure() {
	r.prefetchFailures.Inc()
}

// RecordCleanup records objects deleted by a retention pass.
func (r *Registry) RecordCleanup(deleted int) {
	r.cleanupDeleted.Add(float64(deleted))
}

// ObserveOperation records the duration of an operation and, on success,
// its completion time.
func (r *Registry) ObserveOperation(operation string, started time.Time, err error) {
	r.operationDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
	if err == nil {
		r.lastSuccess.WithLabelValues(operation).SetToCurrentTime()
	}
}

// WriteTextfile writes the registry in the text exposition format,
// atomically, for the node_exporter textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.Registry)
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
