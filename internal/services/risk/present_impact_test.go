package risk

import (
	"context"
	"errors"
	"testing"

	"BundleScope/internal/domain/models"

	"github.com/stretchr/testify/require"
)

type stubHolderStats struct {
	stats *models.HolderStats
	err   error
}

func (s stubHolderStats) FetchHolderStats(context.Context, string, string) (*models.HolderStats, error) {
	return s.stats, s.err
}

// floorFixture builds two clusters with reused wallets but few bundled
// transactions, which trips the near-empty floor rule.
func floorFixture() ([]models.Cluster, []models.Transaction) {
	clusters := []models.Cluster{
		{ClusterSize: 3, WindowSeconds: 2, FirstUnix: 0},
		{ClusterSize: 3, WindowSeconds: 2, FirstUnix: 100},
	}
	txs := []models.Transaction{
		buy("h1", "w1", 0.0),
		buy("h2", "w2", 0.5),
		buy("h3", "w3", 1.0),
		buy("h4", "w1", 100.0),
		buy("h5", "w2", 100.5),
		buy("h6", "w4", 101.0),
	}
	return clusters, txs
}

func TestPatternOnlyFloorRule(t *testing.T) {
	a := NewPresentImpactAnalyzer(nil, nil)
	clusters, txs := floorFixture()

	res := a.Analyze(context.Background(), "solana", "token", clusters, txs)

	// wallet reuse alone would score 20, but 2 clusters / 6 bundled
	// transactions is capped at 5
	require.Equal(t, 5.0, res.PatternRiskScore)
	require.Equal(t, models.RiskLow, res.CurrentImpactRisk)
	require.Equal(t, models.ImpactMethodPatternOnly, res.Method)
	require.Equal(t, 4, res.BundledWalletsCount)
	require.Nil(t, res.HolderRiskScore)
	require.Nil(t, res.CombinedRiskScore)
}

func TestCombinedScoring(t *testing.T) {
	stats := &models.HolderStats{
		TotalHolders:          20, // 4 bundled wallets = 20% > 15%
		Top10ConcentrationPct: 60,
		HolderChange24hPct:    -15,
	}
	a := NewPresentImpactAnalyzer(stubHolderStats{stats: stats}, nil)
	clusters, txs := floorFixture()

	res := a.Analyze(context.Background(), "solana", "token", clusters, txs)

	require.Equal(t, models.ImpactMethodCombined, res.Method)
	require.NotNil(t, res.HolderRiskScore)
	require.Equal(t, 70.0, *res.HolderRiskScore)
	require.NotNil(t, res.CombinedRiskScore)
	require.Equal(t, 75.0, *res.CombinedRiskScore)
	require.Equal(t, models.RiskHigh, res.CurrentImpactRisk)
}

func TestHolderFailureFallsBackToPattern(t *testing.T) {
	a := NewPresentImpactAnalyzer(stubHolderStats{err: errors.New("api down")}, nil)
	clusters, txs := floorFixture()

	res := a.Analyze(context.Background(), "solana", "token", clusters, txs)

	require.Equal(t, models.ImpactMethodPatternFallback, res.Method)
	require.Equal(t, 5.0, res.PatternRiskScore)
	require.Nil(t, res.HolderRiskScore)
	require.Nil(t, res.CombinedRiskScore)
	require.Equal(t, models.RiskLow, res.CurrentImpactRisk)
}

func TestUnsupportedChainFallsBackToPattern(t *testing.T) {
	a := NewPresentImpactAnalyzer(stubHolderStats{}, nil)
	clusters, txs := floorFixture()

	res := a.Analyze(context.Background(), "bsc", "token", clusters, txs)
	require.Equal(t, models.ImpactMethodPatternFallback, res.Method)
}

func TestPatternScoreTiers(t *testing.T) {
	// enough clusters and bundled transactions to clear the floor
	var clusters []models.Cluster
	var txs []models.Transaction
	for i := 0; i < 12; i++ {
		first := float64(i * 100)
		clusters = append(clusters, models.Cluster{
			ClusterSize:   30,
			WindowSeconds: 2,
			FirstUnix:     first,
		})
		for j := 0; j < 2; j++ {
			txs = append(txs, buy(
				string(rune('a'+i))+string(rune('a'+j)),
				"w1",
				first+float64(j),
			))
		}
	}

	a := NewPresentImpactAnalyzer(nil, nil)
	res := a.Analyze(context.Background(), "solana", "token", clusters, txs)

	// 12 clusters: 18 pts; w1 reused in all clusters: 30 pts;
	// 12 clusters of size >25: capped at 20 pts; mean gap 100s: 0 pts
	require.Equal(t, 68.0, res.PatternRiskScore)
	require.Equal(t, models.RiskHigh, res.CurrentImpactRisk)
}
