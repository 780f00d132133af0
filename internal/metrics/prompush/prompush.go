// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// It adapts the generic metrics.Backend interface to Prometheus by:
//
//   - Using client_golang CounterVec and SummaryVec collectors.
//   - Mapping the pipeline labels (stage, status, kind) onto Prometheus
//     labels.
//   - Pushing collected metrics to a Pushgateway instance instead of
//     exposing a scrape endpoint, since a GTF parse is a batch job that
//     exits when done.
//
// All Prometheus-specific dependencies stay in this package so the rest of
// the project depends only on metrics.Backend.
package prompush

import (
	"fmt"

	"gtfparse/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	stageCounter  *prometheus.CounterVec // "gtf_stage_total"
	stageDuration *prometheus.SummaryVec // "gtf_stage_duration_seconds"
	lineCounter   *prometheus.CounterVec // "gtf_lines_total"
	columnCounter prometheus.Counter     // "gtf_columns_total"
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" name (usually the annotation name).
// gatewayURL: base URL of the Pushgateway server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "gtfparse"
	}

	reg := prometheus.NewRegistry()

	stageCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gtf_stage_total",
			Help: "Total number of pipeline stage executions, partitioned by stage and status.",
		},
		[]string{"stage", "status"},
	)
	stageDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "gtf_stage_duration_seconds",
			Help:       "Duration of pipeline stages in seconds, partitioned by stage and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"stage", "status"},
	)
	lineCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gtf_lines_total",
			Help: "Line-level counts per kind (parsed, skipped, filtered, warnings, loaded).",
		},
		[]string{"kind"},
	)
	columnCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gtf_columns_total",
			Help: "Number of columns in the finished annotation table.",
		},
	)

	if err := reg.Register(stageCounter); err != nil {
		return nil, fmt.Errorf("prompush: register stage counter: %w", err)
	}
	if err := reg.Register(stageDuration); err != nil {
		return nil, fmt.Errorf("prompush: register stage summary: %w", err)
	}
	if err := reg.Register(lineCounter); err != nil {
		return nil, fmt.Errorf("prompush: register line counter: %w", err)
	}
	if err := reg.Register(columnCounter); err != nil {
		return nil, fmt.Errorf("prompush: register column counter: %w", err)
	}

	return &Backend{
		gatewayURL:    gatewayURL,
		jobName:       jobName,
		reg:           reg,
		stageCounter:  stageCounter,
		stageDuration: stageDuration,
		lineCounter:   lineCounter,
		columnCounter: columnCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "gtf_stage_total":
		if b.stageCounter == nil {
			return
		}
		b.stageCounter.WithLabelValues(labels["stage"], labels["status"]).Add(delta)

	case "gtf_lines_total":
		if b.lineCounter == nil {
			return
		}
		b.lineCounter.WithLabelValues(labels["kind"]).Add(delta)

	case "gtf_columns_total":
		if b.columnCounter == nil {
			return
		}
		b.columnCounter.Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != "gtf_stage_duration_seconds" || b.stageDuration == nil {
		return
	}
	b.stageDuration.WithLabelValues(labels["stage"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
