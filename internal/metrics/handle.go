package metrics

import "github.com/prometheus/client_golang/prometheus"

// Handle lifecycle metrics.
// These are created eagerly so library handles can count events without the
// embedding application ever calling Init; Init only exports them.
var (
	// FilesCreatedTotal tracks temporary files created
	FilesCreatedTotal = NewCounter(
		"tempkeeper_files_created_total",
		"Total number of temporary files created.",
	)

	// DirsCreatedTotal tracks temporary directories created
	DirsCreatedTotal = NewCounter(
		"tempkeeper_dirs_created_total",
		"Total number of temporary directories created.",
	)

	// DeletesTotal tracks successful explicit deletions
	DeletesTotal = NewCounter(
		"tempkeeper_deletes_total",
		"Total number of successful explicit deletions.",
	)

	// DeleteErrorsTotal tracks failed explicit deletions
	DeleteErrorsTotal = NewCounter(
		"tempkeeper_delete_errors_total",
		"Total number of explicit deletions that reported an error.",
	)

	// ImplicitDeletesTotal tracks successful close-time removals
	ImplicitDeletesTotal = NewCounter(
		"tempkeeper_implicit_deletes_total",
		"Total number of successful removals triggered by handle close.",
	)

	// ImplicitDeleteErrorsTotal tracks swallowed close-time failures
	ImplicitDeleteErrorsTotal = NewCounter(
		"tempkeeper_implicit_delete_errors_total",
		"Total number of close-time removals that failed and were swallowed.",
	)

	// FinalizerFallbacksTotal tracks leaked handles reclaimed by the GC
	FinalizerFallbacksTotal = NewCounter(
		"tempkeeper_finalizer_fallbacks_total",
		"Total number of owned handles cleaned up by the GC finalizer fallback.",
	)

	// NameCollisionsTotal tracks generated names that hit existing entries
	NameCollisionsTotal = NewCounter(
		"tempkeeper_name_collisions_total",
		"Total number of generated names that collided with existing entries.",
	)
)

// registerHandleMetrics registers all handle metrics with Prometheus
func registerHandleMetrics() {
	prometheus.MustRegister(FilesCreatedTotal)
	prometheus.MustRegister(DirsCreatedTotal)
	prometheus.MustRegister(DeletesTotal)
	prometheus.MustRegister(DeleteErrorsTotal)
	prometheus.MustRegister(ImplicitDeletesTotal)
	prometheus.MustRegister(ImplicitDeleteErrorsTotal)
	prometheus.MustRegister(FinalizerFallbacksTotal)
	prometheus.MustRegister(NameCollisionsTotal)
}
