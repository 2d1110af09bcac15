package counsellor

import (
	"context"
	"errors"

	"counsellor/internal/perception"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for counsellor interactions.
type Metrics struct {
	reasoningDuration *prometheus.HistogramVec
	reasoningFailures *prometheus.CounterVec
	actions           *prometheus.CounterVec
	fallbacks         prometheus.Counter
	interactions      *prometheus.CounterVec
}

// MustNewMetrics registers the counsellor collectors with reg. A collector
// that is already registered is reused, so several engines may share one
// registry. Any other registration error panics.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		reasoningDuration: register(reg, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "counsellor",
				Subsystem: "reasoning",
				Name:      "duration_seconds",
				Help:      "Duration of reasoning provider calls.",
				Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30},
			},
			[]string{"status"},
		)),
		reasoningFailures: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "counsellor",
				Subsystem: "reasoning",
				Name:      "failures_total",
				Help:      "Reasoning calls that ended in an error.",
			},
			[]string{"reason"},
		)),
		actions: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "counsellor",
				Subsystem: "engine",
				Name:      "actions_total",
				Help:      "Interpreted actions by type and execution result.",
			},
			[]string{"type", "result"},
		)),
		fallbacks: register(reg, prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "counsellor",
				Subsystem: "engine",
				Name:      "interpret_fallbacks_total",
				Help:      "Provider replies that could not be parsed as JSON.",
			},
		)),
		interactions: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "counsellor",
				Subsystem: "engine",
				Name:      "interactions_total",
				Help:      "Chat interactions by stage at request time.",
			},
			[]string{"stage"},
		)),
	}
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// ObserveReasoning records one provider call. It satisfies perception.TraceSink.
func (m *Metrics) ObserveReasoning(tr perception.Trace) {
	if m == nil {
		return
	}
	status := "ok"
	if tr.Err != nil {
		status = "error"
		m.reasoningFailures.WithLabelValues(failureReason(tr.Err)).Inc()
	}
	m.reasoningDuration.WithLabelValues(status).Observe(tr.Duration.Seconds())
}

func failureReason(err error) string {
	var timeout interface{ Timeout() bool }
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &timeout) && timeout.Timeout():
		return "timeout"
	default:
		return "provider"
	}
}

// ObserveAction counts one executed action.
func (m *Metrics) ObserveAction(kind string, result ActionResult) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(kind, string(result)).Inc()
}

// IncFallback counts an unparseable provider reply.
func (m *Metrics) IncFallback() {
	if m == nil {
		return
	}
	m.fallbacks.Inc()
}

// IncInteraction counts one chat interaction at the given stage.
func (m *Metrics) IncInteraction(s Stage) {
	if m == nil {
		return
	}
	m.interactions.WithLabelValues(string(s)).Inc()
}

var _ perception.TraceSink = (*Metrics)(nil)
