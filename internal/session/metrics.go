package session

import "github.com/prometheus/client_golang/prometheus"

var (
	metricGenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inferd",
			Subsystem: "session",
			Name:      "generations_total",
			Help:      "Total number of finished generations by outcome",
		},
		[]string{"outcome"},
	)

	metricRejectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "inferd",
			Subsystem: "session",
			Name:      "busy_rejections_total",
			Help:      "Total runInference calls rejected because the handle was busy",
		},
	)

	metricGenerationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "inferd",
			Subsystem: "session",
			Name:      "generation_duration_seconds",
			Help:      "Duration of generations from admission to cleanup",
			Buckets:   prometheus.DefBuckets,
		},
	)

	metricFragmentsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "inferd",
			Subsystem: "session",
			Name:      "fragments_total",
			Help:      "Total text fragments streamed to listeners",
		},
	)

	metricActiveGenerations = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "inferd",
			Subsystem: "session",
			Name:      "active_generations",
			Help:      "Generations currently in flight",
		},
	)

	metricLoadsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "inferd",
			Subsystem: "session",
			Name:      "model_loads_total",
			Help:      "Total successful model loads",
		},
	)

	metricInterruptTimeouts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "inferd",
			Subsystem: "session",
			Name:      "interrupt_timeouts_total",
			Help:      "Streams abandoned because the engine ignored an interrupt",
		},
	)
)

func init() {
	prometheus.MustRegister(
		metricGenerationsTotal,
		metricRejectionsTotal,
		metricGenerationDuration,
		metricFragmentsTotal,
		metricActiveGenerations,
		metricLoadsTotal,
		metricInterruptTimeouts,
	)
}
