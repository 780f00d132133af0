// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from the annotation pipeline.
//
// It exposes a narrow Backend interface (counters and duration
// observations) behind a global, pluggable backend defaulting to a no-op,
// so instrumentation calls are always safe even when no metrics system is
// configured. Concrete systems (Prometheus Pushgateway, Datadog) live in
// subpackages and are installed with SetBackend; the parsing code never
// imports them.
package metrics

import "time"

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

// RecordStage measures one pipeline stage (parse, coerce, validate, load):
// latency plus success/failure.
func RecordStage(job, stage string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"stage":  stage,
		"status": status,
	}

	backend.IncCounter("gtf_stage_total", 1, lbls)
	backend.ObserveHistogram("gtf_stage_duration_seconds", d.Seconds(), lbls)
}

// RecordLines increments a line-level counter for the given job and kind.
//
// Typical kinds mirror the parse summary fields:
//   - "parsed"
//   - "skipped"
//   - "filtered"
//   - "warnings"
//   - "loaded"
func RecordLines(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("gtf_lines_total", float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordColumns records how many columns the finished table carries.
func RecordColumns(job string, n int) {
	if n <= 0 {
		return
	}
	backend.IncCounter("gtf_columns_total", float64(n), Labels{
		"job": job,
	})
}
