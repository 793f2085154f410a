package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Import run results used as the "result" label.
const (
	ImportResultCompleted = "completed"
	ImportResultRejected  = "rejected"
	ImportResultReplayed  = "replayed"
	ImportResultError     = "error"
)

var (
	importRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discount_import_rows_total",
			Help: "CSV discount rows processed, by outcome status.",
		},
		[]string{"status"},
	)

	importRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discount_import_runs_total",
			Help: "CSV discount import runs, by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(importRows, importRuns)
}

// RecordImportRows adds the per-status row counts of one finished run.
func RecordImportRows(ok, skipped, failed int) {
	importRows.WithLabelValues("ok").Add(float64(ok))
	importRows.WithLabelValues("skipped").Add(float64(skipped))
	importRows.WithLabelValues("failed").Add(float64(failed))
}

// RecordImportRun counts one run with the given Import* result.
func RecordImportRun(result string) {
	importRuns.WithLabelValues(result).Inc()
}
