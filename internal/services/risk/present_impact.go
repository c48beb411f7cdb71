package risk

import (
	"context"

	"BundleScope/internal/domain/models"
	domsvc "BundleScope/internal/domain/service"
	"BundleScope/internal/services/bundle"
	xlogger "BundleScope/pkg/logger"
)

// PresentImpactAnalyzer combines pattern-based scoring with optional
// holder-distribution data into a current risk level. Any failure fetching
// or using holder data falls back silently to pattern-only scoring; the
// analyzer never returns an error.
type PresentImpactAnalyzer struct {
	holders domsvc.HolderStatsProvider // nil disables the combined path
	logger  *xlogger.Logger
}

func NewPresentImpactAnalyzer(holders domsvc.HolderStatsProvider, logger *xlogger.Logger) *PresentImpactAnalyzer {
	return &PresentImpactAnalyzer{holders: holders, logger: logger}
}

// Analyze scores the current-day impact of the detected bundles.
func (a *PresentImpactAnalyzer) Analyze(ctx context.Context, chain, address string, clusters []models.Cluster, txs []models.Transaction) models.PresentImpactResult {
	bundledTx, _ := bundledTxCount(txs, clusters, 0)
	distinctWallets, reusedWallets := bundledWalletStats(txs, clusters)

	pattern := patternRiskScore(clusters, bundledTx, distinctWallets, reusedWallets)
	res := models.PresentImpactResult{
		BundledWalletsCount: distinctWallets,
		PatternRiskScore:    pattern,
		CurrentImpactRisk:   patternRiskLevel(pattern),
		Method:              models.ImpactMethodPatternOnly,
	}

	if a.holders == nil {
		return res
	}

	stats, err := a.holders.FetchHolderStats(ctx, chain, address)
	if err != nil || stats == nil {
		if err != nil && a.logger != nil {
			a.logger.Warn("holder stats unavailable, using pattern-only scoring",
				xlogger.String("chain", chain), xlogger.Error(err))
		}
		res.Method = models.ImpactMethodPatternFallback
		return res
	}

	holder := holderRiskScore(stats, distinctWallets)
	combined := min(100, pattern+holder)
	res.HolderRiskScore = &holder
	res.CombinedRiskScore = &combined
	res.CurrentImpactRisk = combinedRiskLevel(combined)
	res.Method = models.ImpactMethodCombined
	return res
}

// patternRiskScore scores bundling patterns on a 0-100 scale from four
// factors: cluster volume, wallet reuse, bundle-size sophistication and
// timing coordination.
func patternRiskScore(clusters []models.Cluster, bundledTx, distinctWallets, reusedWallets int) float64 {
	score := 0.0

	// Cluster-volume tier, up to 40 points.
	switch n := len(clusters); {
	case n > 100:
		score += 40
	case n > 50:
		score += 32
	case n > 25:
		score += 25
	case n > 10:
		score += 18
	case n > 5:
		score += 12
	case n > 3:
		score += 6
	}

	// Wallet reuse across clusters, up to 30 points.
	if distinctWallets > 0 {
		switch reuse := float64(reusedWallets) / float64(distinctWallets); {
		case reuse > 0.5:
			score += 30
		case reuse > 0.3:
			score += 20
		case reuse > 0:
			score += 10
		}
	}

	// Bundle-size sophistication, up to 20 points.
	var over25, over15 int
	for _, c := range clusters {
		switch {
		case c.ClusterSize > 25:
			over25++
		case c.ClusterSize > 15:
			over15++
		}
	}
	score += min(20, float64(over25)*10+float64(over15)*5)

	// Timing coordination, up to 10 points.
	if gaps := interClusterGaps(clusters); len(gaps) > 0 {
		switch meanGap := bundle.Mean(gaps); {
		case meanGap < 10:
			score += 10
		case meanGap < 30:
			score += 5
		}
	}

	// Floor rule: near-empty data is capped to avoid false positives.
	if len(clusters) <= 3 && bundledTx <= 15 {
		score = min(score, 5)
	}

	return min(score, 100)
}

// holderRiskScore scores the current holder distribution on a 0-100 scale.
func holderRiskScore(stats *models.HolderStats, bundledWallets int) float64 {
	score := 0.0
	if stats.TotalHolders > 0 {
		switch pct := float64(bundledWallets) / float64(stats.TotalHolders) * 100; {
		case pct > 15:
			score += 30
		case pct > 10:
			score += 20
		}
	}
	if stats.Top10ConcentrationPct > 50 {
		score += 20
	}
	if stats.HolderChange24hPct < -10 {
		score += 20
	}
	return score
}

func patternRiskLevel(score float64) models.RiskLevel {
	switch {
	case score >= 80:
		return models.RiskCritical
	case score >= 60:
		return models.RiskHigh
	case score >= 35:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// combinedRiskLevel uses a MEDIUM threshold of 40, intentionally different
// from the pattern-only mapping.
func combinedRiskLevel(score float64) models.RiskLevel {
	switch {
	case score >= 80:
		return models.RiskCritical
	case score >= 60:
		return models.RiskHigh
	case score >= 40:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}
