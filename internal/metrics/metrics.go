// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from the ingestion core. The global backend
// defaults to a no-op implementation, so metrics are always safe to call
// even when no real backend is configured; a concrete Prometheus
// Pushgateway backend lives in the prompush subpackage.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveDuration records a duration-style value.
	ObserveDuration(name string, value float64, labels Labels)
	// Flush pushes metrics if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)      {}
func (nopBackend) ObserveDuration(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                              { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing one.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error { return backend.Flush() }

// RecordOp measures one core operation: latency plus success/failure.
// Typical ops: "parse", "persist", "query", "delete_upload", "sync".
func RecordOp(op string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"op": op, "status": status}
	backend.IncCounter("elta_op_total", 1, lbls)
	backend.ObserveDuration("elta_op_duration_seconds", d.Seconds(), lbls)
}

// RecordRows increments a row-level counter for the given kind, e.g.
// "normalized", "persisted", "rewritten".
func RecordRows(kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("elta_rows_total", float64(delta), Labels{"kind": kind})
}

// RecordUpload counts one persisted batch.
func RecordUpload() {
	backend.IncCounter("elta_uploads_total", 1, nil)
}
