package risk

import (
	"BundleScope/internal/domain/models"
	"BundleScope/internal/services/bundle"
)

// earlyWindowLimit caps how many leading transactions count toward the
// early-trading-dominance metric.
const earlyWindowLimit = 300

// MetricsEngine aggregates accepted clusters into intensity, concentration,
// timing and dominance metrics. Pure and synchronous; cheap enough to run
// inline in the orchestrator.
type MetricsEngine struct{}

func NewMetricsEngine() *MetricsEngine { return &MetricsEngine{} }

// Compute derives RiskMetrics from the accepted clusters and the full
// analyzed batch. With zero clusters every field keeps its zero/LOW default.
func (e *MetricsEngine) Compute(clusters []models.Cluster, txs []models.Transaction) models.RiskMetrics {
	m := models.RiskMetrics{CoordinationSophistication: models.SophisticationLow}
	if len(clusters) == 0 || len(txs) == 0 {
		return m
	}

	n := float64(len(txs))
	bundledTx, _ := bundledTxCount(txs, clusters, 0)

	sizes := make([]float64, len(clusters))
	for i, c := range clusters {
		sizes[i] = float64(c.ClusterSize)
	}
	intensity := (float64(len(clusters))/n)*200 +
		(bundle.Mean(sizes)-3)*10 +
		(float64(bundledTx)/n)*150
	m.BundleIntensityScore = clamp(intensity, 0, 100)

	distinct, reused := bundledWalletStats(txs, clusters)
	if distinct > 0 {
		m.WalletConcentrationRisk = clamp(float64(reused)/float64(distinct), 0, 1)
	}

	// Regular spacing between clusters reads as scripted coordination.
	gapCV := bundle.CoefficientOfVariation(interClusterGaps(clusters))
	m.BundleTimingConsistency = max(0, 1-min(1, gapCV/2))

	early, scanned := bundledTxCount(txs, clusters, earlyWindowLimit)
	if scanned > 0 {
		m.EarlyTradingDominance = float64(early) / float64(scanned) * 100
	}

	switch {
	case m.BundleIntensityScore > 60 && m.WalletConcentrationRisk > 0.5:
		m.CoordinationSophistication = models.SophisticationHigh
	case m.BundleIntensityScore > 30 || m.WalletConcentrationRisk > 0.3:
		m.CoordinationSophistication = models.SophisticationMedium
	}

	return m
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
