package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/typedensity/typedensity/pkg/report"
)

var (
	studyRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "typedensity_study_runs_total",
		Help: "Study requests by outcome",
	}, []string{"status"})

	studyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "typedensity_study_duration_seconds",
		Help:    "Wall time of a study run",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 14), // 5ms to ~40s
	})

	studyFiles = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "typedensity_study_files",
		Help:    "Units per study request",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	elidedWeight = promauto.NewCounter(prometheus.CounterOpts{
		Name: "typedensity_elided_weight_total",
		Help: "Sum over files of weight minus weight without private members",
	})

	canonicalTypes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "typedensity_canonical_types",
		Help: "Nodes held by the process variant cache",
	})
)

// observeRun records the outcome of one study request.
func observeRun(rep *report.Report, err error) {
	if err != nil {
		studyRuns.WithLabelValues("error").Inc()
		return
	}
	studyRuns.WithLabelValues("ok").Inc()
	studyDuration.Observe(float64(rep.DurationMs) / 1000)
	studyFiles.Observe(float64(rep.Summary.Files))
	elidedWeight.Add(float64(rep.Summary.Weight - rep.Summary.WeightWithoutPrivate))
	canonicalTypes.Set(float64(rep.Summary.CanonicalTypes))
}
