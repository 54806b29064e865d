package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// RunsTotal counts completed pipeline runs by result.
	RunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "triage",
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Total number of pipeline runs, labeled by result.",
	}, []string{"result"})

	// RowsScoredTotal counts scored rows by outcome. A degraded row received
	// the fallback 0.0 score instead of a real model score.
	RowsScoredTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "triage",
		Subsystem: "pipeline",
		Name:      "rows_scored_total",
		Help:      "Total number of rows scored by the classifier, labeled by outcome (ok|degraded).",
	}, []string{"outcome"})

	// TranslateDegradedTotal counts translation calls that fell back to the
	// original text.
	TranslateDegradedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "triage",
		Subsystem: "pipeline",
		Name:      "translate_degraded_total",
		Help:      "Total number of translation calls that degraded to pass-through.",
	})

	// RunDurationSeconds is the end-to-end duration of a pipeline run.
	RunDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "triage",
		Subsystem: "pipeline",
		Name:      "run_duration_seconds",
		Help:      "End-to-end time to execute a pipeline run.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
	})

	// PublishErrorTotal counts failed run-summary publishes.
	PublishErrorTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "triage",
		Subsystem: "pipeline",
		Name:      "publish_error_total",
		Help:      "Total number of run-summary publish errors.",
	})
)

// Register registers pipeline metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			RunsTotal,
			RowsScoredTotal,
			TranslateDegradedTotal,
			RunDurationSeconds,
			PublishErrorTotal,
		)
	})
}
