package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"BundleScope/internal/domain/models"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	analysesTotal   *prometheus.CounterVec
	bundlesDetected *prometheus.CounterVec
	riskLevels      *prometheus.CounterVec
	stageLatency    *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		analysesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bundlescope_analyses_total",
				Help: "Total number of token analyses by outcome",
			},
			[]string{"chain", "outcome"},
		),
		bundlesDetected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bundlescope_bundles_detected_total",
				Help: "Total number of analyses where bundling was detected",
			},
			[]string{"chain"},
		),
		riskLevels: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bundlescope_risk_level_total",
				Help: "Analyses by assigned risk level",
			},
			[]string{"chain", "level"},
		),
		stageLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bundlescope_stage_duration_seconds",
				Help:    "Duration of analysis stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
	}
}

// RecordAnalysis records a completed analysis with its outcome.
func (r *Recorder) RecordAnalysis(chain, outcome string) {
	r.analysesTotal.WithLabelValues(chain, outcome).Inc()
}

// RecordBundleDetected records an analysis that found bundling.
func (r *Recorder) RecordBundleDetected(chain string) {
	r.bundlesDetected.WithLabelValues(chain).Inc()
}

// RecordRiskLevel records the risk level assigned to an analysis.
func (r *Recorder) RecordRiskLevel(chain string, level models.RiskLevel) {
	r.riskLevels.WithLabelValues(chain, string(level)).Inc()
}

// RecordStageLatency records the latency of an analysis stage.
func (r *Recorder) RecordStageLatency(stage string, seconds float64) {
	r.stageLatency.WithLabelValues(stage).Observe(seconds)
}
