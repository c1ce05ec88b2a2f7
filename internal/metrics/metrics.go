// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from the rewards pipeline.
//
// It exposes a narrow interface (Backend) focused on counters and timings, and
// a global, pluggable backend that defaults to a no-op implementation, so
// metrics are always safe to call even when no real backend is configured.
// Concrete systems live in subpackages (prompush, datadog) the same way
// storage backends live under storage/.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Metric names shared by all backends.
const (
	StepTotal     = "etl_step_total"
	StepDuration  = "etl_step_duration_seconds"
	RecordsTotal  = "etl_records_total"
	StatusSuccess = "success"
	StatusFailure = "failure"
)

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

// RecordStep records latency and success/failure for one pipeline step of a
// dataset (read, flatten, project, coerce, load).
func RecordStep(job, dataset, step string, err error, d time.Duration) {
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}

	lbls := Labels{
		"job":     job,
		"dataset": dataset,
		"step":    step,
		"status":  status,
	}

	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordRow increments a record-level counter for a dataset.
//
// Kinds used by the pipeline:
//   - "read"          records decoded from the source file
//   - "built"         rows in the finished table
//   - "coerce_nulled" cells nulled by type coercion
//   - "inserted"      rows written by the sink
func RecordRow(job, dataset, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RecordsTotal, float64(delta), Labels{
		"job":     job,
		"dataset": dataset,
		"kind":    kind,
	})
}
