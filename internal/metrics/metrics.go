// Package metrics records operational metrics for conversion runs behind a
// small, backend-agnostic interface.
//
// Callers depend only on the package-level helpers (RecordStep, RecordRows,
// RecordFile, RecordBytes). A no-op backend is installed by default, so the
// helpers are always safe to call; concrete systems (Prometheus Pushgateway,
// Datadog) live in subpackages and are installed with SetBackend.
package metrics

import "time"

// Metric names shared by all backends.
const (
	StepTotal           = "flightprep_step_total"
	StepDurationSeconds = "flightprep_step_duration_seconds"
	RecordsTotal        = "flightprep_records_total"
	FilesTotal          = "flightprep_files_total"
	BytesTotal          = "flightprep_output_bytes_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

func status(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// RecordStep counts one execution of a per-file step (preflight, convert,
// verify, report) and observes its duration.
func RecordStep(job, step string, err error, d time.Duration) {
	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status(err),
	}
	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// RecordRows adds delta to the record counter for kind. The converter
// reports "written" for rows that reached a Parquet file.
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RecordsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordFile counts one processed input file for year.
func RecordFile(job, year string, err error) {
	backend.IncCounter(FilesTotal, 1, Labels{
		"job":    job,
		"year":   year,
		"status": status(err),
	})
}

// RecordBytes adds the size of a written output file.
func RecordBytes(job string, n int64) {
	if n <= 0 {
		return
	}
	backend.IncCounter(BytesTotal, float64(n), Labels{"job": job})
}
