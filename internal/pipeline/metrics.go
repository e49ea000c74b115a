package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "outreach"

// Outcome label values for processed batches.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
)

// Metrics holds the worker pool collectors.
type Metrics struct {
	Processed *prometheus.CounterVec
	Duration  prometheus.Histogram
	Swept     prometheus.Counter
	Busy      prometheus.Gauge
}

// NewMetrics creates the pipeline collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Processed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "batches_processed_total",
				Help:      "number of batches that reached a terminal status, by outcome",
			},
			[]string{"outcome"},
		),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "time from claim to terminal write",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		Swept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_swept_total",
			Help:      "number of stale PROCESSING batches failed by the sweep",
		}),
		Busy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "workers_busy",
			Help:      "number of workers currently processing a batch",
		}),
	}

	reg.MustRegister(m.Processed, m.Duration, m.Swept, m.Busy)
	return m
}
