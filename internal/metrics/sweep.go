package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Sweep subsystem metrics
var (
	// SweepDuration tracks how long sweep cycles take
	SweepDuration prometheus.Histogram

	// BytesReclaimedTotal tracks total bytes reclaimed across all sweeps
	BytesReclaimedTotal prometheus.Counter

	// ObjectsRemovedTotal tracks total stale objects removed
	ObjectsRemovedTotal prometheus.Counter

	// SweepErrorsTotal tracks errors encountered while sweeping
	SweepErrorsTotal prometheus.Counter

	// SweepLastRunTimestamp records Unix timestamp of the last sweep
	SweepLastRunTimestamp prometheus.Gauge

	// RootBytesRemovedTotal tracks bytes removed per sweep root
	RootBytesRemovedTotal *prometheus.CounterVec
)

// initSweepMetrics initializes all sweep subsystem metrics
func initSweepMetrics() {
	SweepDuration = NewDurationHistogram(
		"tempkeeper_sweep_duration_seconds",
		"Duration of sweep cycles in seconds.",
	)

	BytesReclaimedTotal = NewCounter(
		"tempkeeper_sweep_bytes_reclaimed_total",
		"Total bytes reclaimed by the sweeper.",
	)

	ObjectsRemovedTotal = NewCounter(
		"tempkeeper_sweep_objects_removed_total",
		"Total number of stale temporary objects removed by the sweeper.",
	)

	SweepErrorsTotal = NewCounter(
		"tempkeeper_sweep_errors_total",
		"Total number of errors encountered by the sweeper.",
	)

	SweepLastRunTimestamp = NewGauge(
		"tempkeeper_sweep_last_run_timestamp",
		"Timestamp of the last sweep run (Unix epoch seconds).",
	)

	RootBytesRemovedTotal = NewCounterVec(
		"tempkeeper_sweep_root_bytes_removed_total",
		"Total bytes removed per sweep root.",
		[]string{"root"},
	)
}

// registerSweepMetrics registers all sweep metrics with Prometheus
func registerSweepMetrics() {
	prometheus.MustRegister(SweepDuration)
	prometheus.MustRegister(BytesReclaimedTotal)
	prometheus.MustRegister(ObjectsRemovedTotal)
	prometheus.MustRegister(SweepErrorsTotal)
	prometheus.MustRegister(SweepLastRunTimestamp)
	prometheus.MustRegister(RootBytesRemovedTotal)
}

// RecordSweepRun updates the last run timestamp to current time
func RecordSweepRun() {
	SweepLastRunTimestamp.Set(float64(time.Now().Unix()))
}

// RecordRootRemoval records bytes removed beneath a specific sweep root
func RecordRootRemoval(root string, bytes int64) {
	RootBytesRemovedTotal.WithLabelValues(root).Add(float64(bytes))
}
