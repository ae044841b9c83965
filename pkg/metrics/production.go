package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ProductionMetrics records counters and timings for production runs.
type ProductionMetrics struct {
	duration *prometheus.HistogramVec
	success  prometheus.Counter
	failure  *prometheus.CounterVec
}

// NewProductionMetrics registers the production metrics on the provided registerer.
func NewProductionMetrics(reg prometheus.Registerer) *ProductionMetrics {
	if reg == nil {
		return &ProductionMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "production_run_duration_seconds",
		Help:    "Duration of production runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	success := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "production_runs_success_total",
		Help: "Successful production runs.",
	})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "production_runs_failure_total",
		Help: "Failed production runs by error kind.",
	}, []string{"kind"})
	reg.MustRegister(duration, success, failure)
	return &ProductionMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records how long a run took, labeled by outcome.
func (p *ProductionMetrics) ObserveDuration(outcome string, duration time.Duration) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// IncSuccess increments the success counter.
func (p *ProductionMetrics) IncSuccess() {
	if p == nil || p.success == nil {
		return
	}
	p.success.Inc()
}

// IncFailure increments the failure counter for the given error kind.
func (p *ProductionMetrics) IncFailure(kind string) {
	if p == nil || p.failure == nil {
		return
	}
	p.failure.WithLabelValues(kind).Inc()
}
