package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pipeline collectors.
type Metrics struct {
	Analyses         *prometheus.CounterVec
	Duration         *prometheus.HistogramVec
	InFlight         prometheus.Gauge
	CleanupDeletions *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Analyses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "posture_analyses_total",
			Help: "Analysis requests by media kind and outcome.",
		}, []string{"kind", "outcome"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "posture_analysis_duration_seconds",
			Help:    "Wall time of analysis requests.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"kind"}),
		InFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "posture_analyzer_processes_in_flight",
			Help: "Analyzer processes currently running.",
		}),
		CleanupDeletions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "posture_cleanup_deletions_total",
			Help: "Temporary file deletions by trigger and result.",
		}, []string{"trigger", "result"}),
	}
}
