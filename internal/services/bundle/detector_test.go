package bundle

import (
	"testing"

	"BundleScope/internal/domain/models"

	"github.com/stretchr/testify/require"
)

func buy(hash, wallet string, ts, tokens, usd float64) models.Transaction {
	return models.Transaction{
		TxHash:      hash,
		Wallet:      wallet,
		Timestamp:   ts,
		TxType:      models.TxTypeBuy,
		TokenAmount: tokens,
		VolumeUSD:   usd,
	}
}

func newTestDetector(t *testing.T) *Detector {
	t.Helper()
	d, err := NewDetector(Config{})
	require.NoError(t, err)
	return d
}

func TestNewWindowClustererRejectsBadConfig(t *testing.T) {
	_, err := NewWindowClusterer(0, 3)
	require.Error(t, err)
	_, err = NewWindowClusterer(-1, 3)
	require.Error(t, err)
	_, err = NewWindowClusterer(2, 1)
	require.Error(t, err)
}

func TestDetectEmptyInput(t *testing.T) {
	d := newTestDetector(t)

	detected, clusters, volume := d.Detect(nil)
	require.False(t, detected)
	require.NotNil(t, clusters)
	require.Empty(t, clusters)
	require.Equal(t, 0.0, volume)
}

func TestDetectSingleWalletBurst(t *testing.T) {
	d := newTestDetector(t)
	txs := []models.Transaction{
		buy("h1", "w1", 10.0, 1000, 50),
		buy("h2", "w1", 10.1, 1000, 50),
		buy("h3", "w1", 10.3, 1000, 50),
		buy("h4", "w1", 10.5, 1000, 50),
	}

	detected, clusters, volume := d.Detect(txs)
	require.True(t, detected)
	require.Len(t, clusters, 1)

	c := clusters[0]
	require.Equal(t, 4, c.ClusterSize)
	require.Equal(t, 1, c.UniqueWallets)
	require.Equal(t, 0.25, c.WalletDiversityRatio)
	require.Equal(t, 10.0, c.FirstUnix)
	require.Equal(t, 4000.0, volume)
}

func TestDetectDiverseBurstRejectedByFormula(t *testing.T) {
	d := newTestDetector(t)

	// 5 wallets in 1s: diversity 1.0 exceeds the 0.7 ceiling, and wildly
	// incoherent sizes keep the composite score below 0.5.
	txs := []models.Transaction{
		buy("h1", "w1", 0.0, 10, 100),
		buy("h2", "w2", 0.2, 10, 500),
		buy("h3", "w3", 0.4, 10, 40),
		buy("h4", "w4", 0.7, 10, 900),
		buy("h5", "w5", 0.9, 10, 10),
	}

	detected, clusters, _ := d.Detect(txs)
	require.False(t, detected)
	require.Empty(t, clusters)
}

func TestDetectMinimalWindowAcceptedByScore(t *testing.T) {
	d := newTestDetector(t)

	// Three trades is the most suspicious size by the formula: the size
	// term alone contributes 0.5, which meets the acceptance threshold
	// even at full wallet diversity.
	txs := []models.Transaction{
		buy("h1", "w1", 0.0, 10, 100),
		buy("h2", "w2", 0.5, 10, 900),
		buy("h3", "w3", 1.0, 10, 30),
	}

	detected, clusters, _ := d.Detect(txs)
	require.True(t, detected)
	require.Len(t, clusters, 1)
	require.GreaterOrEqual(t, clusters[0].Score, 0.5)
}

func TestDetectDeterministic(t *testing.T) {
	d := newTestDetector(t)
	txs := []models.Transaction{
		buy("h1", "w1", 0.0, 100, 50),
		buy("h2", "w2", 0.3, 110, 55),
		buy("h3", "w1", 0.6, 90, 45),
		buy("h4", "w3", 0.9, 105, 52),
		buy("h5", "w2", 5.0, 100, 50),
	}

	d1, c1, v1 := d.Detect(txs)
	d2, c2, v2 := d.Detect(txs)
	require.Equal(t, d1, d2)
	require.Equal(t, c1, c2)
	require.Equal(t, v1, v2)
}

func TestClusterInvariants(t *testing.T) {
	d := newTestDetector(t)

	var txs []models.Transaction
	wallets := []string{"a", "b", "a", "c", "a", "b", "a", "a"}
	for i, w := range wallets {
		txs = append(txs, buy(string(rune('A'+i)), w, float64(i)*0.4, 100, 50))
	}

	detected, clusters, _ := d.Detect(txs)
	require.True(t, detected)
	require.NotEmpty(t, clusters)

	for _, c := range clusters {
		require.GreaterOrEqual(t, c.ClusterSize, DefaultMinTradesInCluster)
		require.InEpsilon(t, float64(c.UniqueWallets)/float64(c.ClusterSize), c.WalletDiversityRatio, 1e-12)
		require.Greater(t, c.WalletDiversityRatio, 0.0)
		require.LessOrEqual(t, c.WalletDiversityRatio, 1.0)
		require.LessOrEqual(t, len(c.SampleTxHashes), 5)
	}
}

func TestStaggeredWavesProduceOverlappingClusters(t *testing.T) {
	d := newTestDetector(t)

	// Two waves 2.5s apart share middle members: each wave extends the
	// window end, so both survive suffix suppression.
	txs := []models.Transaction{
		buy("h1", "w1", 0.0, 10, 50),
		buy("h2", "w1", 0.5, 10, 50),
		buy("h3", "w1", 1.0, 10, 50),
		buy("h4", "w2", 2.5, 10, 50),
		buy("h5", "w2", 3.0, 10, 50),
	}

	detected, clusters, volume := d.Detect(txs)
	require.True(t, detected)
	require.Greater(t, len(clusters), 1)

	// every transaction counts toward the volume exactly once
	require.Equal(t, 50.0, volume)
}

func TestBundledTokenVolumeDeduplicates(t *testing.T) {
	txs := []models.Transaction{
		buy("h1", "w1", 0.0, 100, 50),
		buy("h2", "w1", 1.0, 100, 50),
		buy("h3", "w1", 2.0, 100, 50),
	}
	overlapping := []models.Cluster{
		{FirstUnix: 0.0, WindowSeconds: 2.0},
		{FirstUnix: 1.0, WindowSeconds: 2.0},
	}

	require.Equal(t, 300.0, BundledTokenVolume(txs, overlapping))
}
