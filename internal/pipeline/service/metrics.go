package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the prometheus collectors updated by the orchestrator.
type Metrics struct {
	WorkflowsStarted  prometheus.Counter
	WorkflowsFinished *prometheus.CounterVec
	StepDuration      *prometheus.HistogramVec
	AlertsEmitted     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		WorkflowsStarted: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "pipeline_workflows_started_total", Help: "Workflows started"},
		),
		WorkflowsFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "pipeline_workflows_finished_total", Help: "Workflows that reached a terminal status"},
			[]string{"status"},
		),
		StepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pipeline_step_duration_seconds",
				Help:    "Duration of pipeline steps",
				Buckets: prometheus.ExponentialBuckets(0.005, 4, 8),
			},
			[]string{"step", "status"},
		),
		AlertsEmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "pipeline_alerts_emitted_total", Help: "Market alerts emitted"},
			[]string{"type"},
		),
	}
	reg.MustRegister(m.WorkflowsStarted, m.WorkflowsFinished, m.StepDuration, m.AlertsEmitted)
	return m
}
