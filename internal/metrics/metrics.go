// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from a wrangle run.
//
// It exposes a narrow Backend interface (counters and timings) and a global,
// pluggable backend that defaults to a no-op implementation, so recording is
// always safe even when no real backend is configured. Concrete metric
// systems live in subpackages (prompush, datadog).
package metrics

import "time"

// Metric names.
const (
	StepTotal           = "wrangle_step_total"
	StepDurationSeconds = "wrangle_step_duration_seconds"
	FilesTotal          = "wrangle_files_total"
	RowsTotal           = "wrangle_rows_total"
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

// nopBackend is used by default so metrics are optional.
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

// RecordStep measures latency and success/failure of one pipeline step
// ("list", "fetch", "decode", "normalize", "export").
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}

	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// RecordFile counts one file outcome. Typical outcomes:
//   - "loaded"
//   - "failed"
//   - "duplicate_key"
func RecordFile(job, outcome string) {
	backend.IncCounter(FilesTotal, 1, Labels{
		"job":     job,
		"outcome": outcome,
	})
}

// RecordRows increments a row-level counter, e.g. kind "decoded",
// "deduplicated" or "exported".
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RowsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}
