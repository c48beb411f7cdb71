package risk

import (
	"sort"

	"BundleScope/internal/domain/models"
)

// Helpers that replay accepted cluster windows against the original trade
// list. Clusters carry only aggregates, so wallet membership and bundled
// transaction counts are reconstructed from the [FirstUnix,
// FirstUnix+WindowSeconds] intervals.

// bundledWalletStats returns the number of distinct wallets seen inside any
// cluster window and how many of them appear in more than one cluster.
func bundledWalletStats(txs []models.Transaction, clusters []models.Cluster) (distinct, reused int) {
	clustersPerWallet := make(map[string]int)
	for _, c := range clusters {
		seen := make(map[string]struct{})
		for _, tx := range txs {
			if !c.Contains(tx.Timestamp) {
				continue
			}
			if _, ok := seen[tx.Wallet]; ok {
				continue
			}
			seen[tx.Wallet] = struct{}{}
			clustersPerWallet[tx.Wallet]++
		}
	}
	for _, n := range clustersPerWallet {
		if n > 1 {
			reused++
		}
	}
	return len(clustersPerWallet), reused
}

// bundledTxCount counts transactions falling inside any cluster window in a
// single forward scan, deduplicated by index (first match wins). limit caps
// how many leading transactions are considered; limit <= 0 means all.
func bundledTxCount(txs []models.Transaction, clusters []models.Cluster, limit int) (counted, scanned int) {
	if limit <= 0 || limit > len(txs) {
		limit = len(txs)
	}
	for i := 0; i < limit; i++ {
		for _, c := range clusters {
			if c.Contains(txs[i].Timestamp) {
				counted++
				break
			}
		}
	}
	return counted, limit
}

// BundledTxShare returns the percentage of transactions that fall inside
// any accepted cluster window, deduplicated across overlapping clusters.
func BundledTxShare(txs []models.Transaction, clusters []models.Cluster) float64 {
	if len(txs) == 0 {
		return 0
	}
	counted, _ := bundledTxCount(txs, clusters, 0)
	return float64(counted) / float64(len(txs)) * 100
}

// interClusterGaps returns the gaps in seconds between consecutive cluster
// starts, sorted by FirstUnix.
func interClusterGaps(clusters []models.Cluster) []float64 {
	if len(clusters) < 2 {
		return nil
	}
	starts := make([]float64, len(clusters))
	for i, c := range clusters {
		starts[i] = c.FirstUnix
	}
	sort.Float64s(starts)
	gaps := make([]float64, 0, len(starts)-1)
	for i := 1; i < len(starts); i++ {
		gaps = append(gaps, starts[i]-starts[i-1])
	}
	return gaps
}
