// Package metrics bundles the Prometheus collectors the environment feeds
// while an agent session runs. The viewer serves them on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the session collectors on a private registry, so two
// environments in one process never collide on collector names.
//
// All record methods are safe on a nil receiver; components treat a nil
// *Metrics as "metrics disabled".
type Metrics struct {
	registry *prometheus.Registry

	Steps        *prometheus.CounterVec
	Rewrites     prometheus.Counter
	Evals        prometheus.Counter
	EvalTimeouts prometheus.Counter
	EvalDuration prometheus.Histogram
}

// New constructs a registry with the session collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	steps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "debuggym_steps_total",
		Help: "Steps taken, by resolved tool name",
	}, []string{"tool"})

	rewrites := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "debuggym_rewrites_total",
		Help: "Attempted rewrite tool invocations",
	})

	evals := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "debuggym_evals_total",
		Help: "Evaluation runs",
	})

	timeouts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "debuggym_eval_timeouts_total",
		Help: "Evaluation runs stopped at the deadline",
	})

	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "debuggym_eval_duration_seconds",
		Help:    "Evaluation run duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	reg.MustRegister(steps, rewrites, evals, timeouts, duration)

	return &Metrics{
		registry:     reg,
		Steps:        steps,
		Rewrites:     rewrites,
		Evals:        evals,
		EvalTimeouts: timeouts,
		EvalDuration: duration,
	}
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordStep counts one step against the tool that handled it.
func (m *Metrics) RecordStep(tool string) {
	if m == nil {
		return
	}
	if tool == "" {
		tool = "unknown"
	}
	m.Steps.WithLabelValues(tool).Inc()
}

// RecordRewrite counts one attempted rewrite.
func (m *Metrics) RecordRewrite() {
	if m == nil {
		return
	}
	m.Rewrites.Inc()
}

// RecordEval records one evaluation run and its duration.
func (m *Metrics) RecordEval(duration time.Duration, timedOut bool) {
	if m == nil {
		return
	}
	m.Evals.Inc()
	m.EvalDuration.Observe(duration.Seconds())
	if timedOut {
		m.EvalTimeouts.Inc()
	}
}
