// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package. All Prometheus-specific dependencies live here so the
// rest of the module depends only on the metrics.Backend interface.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/pr0100noob/elta-import/internal/metrics"
)

// Backend pushes collected metrics to a Prometheus Pushgateway.
type Backend struct {
	gatewayURL string
	jobName    string
	reg        *prometheus.Registry

	opCounter    *prometheus.CounterVec // "elta_op_total"
	opDuration   *prometheus.SummaryVec // "elta_op_duration_seconds"
	rowCounter   *prometheus.CounterVec // "elta_rows_total"
	uploadsCount prometheus.Counter     // "elta_uploads_total"
}

// NewBackend constructs a Pushgateway backend for the given job name.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "elta_import"
	}

	reg := prometheus.NewRegistry()

	opCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "elta_op_total",
			Help: "Total core operations, partitioned by op and status.",
		},
		[]string{"op", "status"},
	)
	opDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "elta_op_duration_seconds",
			Help:       "Duration of core operations in seconds, partitioned by op and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"op", "status"},
	)
	rowCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "elta_rows_total",
			Help: "Row-level counts per kind (normalized, persisted, rewritten).",
		},
		[]string{"kind"},
	)
	uploadsCount := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "elta_uploads_total",
			Help: "Total persisted upload batches.",
		},
	)

	for _, c := range []prometheus.Collector{opCounter, opDuration, rowCounter, uploadsCount} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register collector: %w", err)
		}
	}

	return &Backend{
		gatewayURL:   gatewayURL,
		jobName:      jobName,
		reg:          reg,
		opCounter:    opCounter,
		opDuration:   opDuration,
		rowCounter:   rowCounter,
		uploadsCount: uploadsCount,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "elta_op_total":
		b.opCounter.WithLabelValues(labels["op"], labels["status"]).Add(delta)
	case "elta_rows_total":
		b.rowCounter.WithLabelValues(labels["kind"]).Add(delta)
	case "elta_uploads_total":
		b.uploadsCount.Add(delta)
	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveDuration(name string, value float64, labels metrics.Labels) {
	if name != "elta_op_duration_seconds" {
		return
	}
	b.opDuration.WithLabelValues(labels["op"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
