package bundle

import "BundleScope/internal/domain/models"

// ClusterFilter accepts or rejects scored candidates. Either low wallet
// diversity or a high composite score suffices on its own.
type ClusterFilter struct {
	maxDiversity float64
}

func NewClusterFilter(maxDiversity float64) *ClusterFilter {
	return &ClusterFilter{maxDiversity: maxDiversity}
}

func (f *ClusterFilter) Accept(c models.Cluster) bool {
	return c.WalletDiversityRatio <= f.maxDiversity || c.Score >= 0.5
}

// BundledTokenVolume replays the accepted clusters' windows against the
// original transaction list and sums tokens received, deduplicated globally
// by transaction index. A transaction may count toward several clusters'
// reported sizes but contributes to the volume total only once.
func BundledTokenVolume(txs []models.Transaction, accepted []models.Cluster) float64 {
	counted := make(map[int]struct{})
	total := 0.0
	for _, c := range accepted {
		for i, tx := range txs {
			if !c.Contains(tx.Timestamp) {
				continue
			}
			if _, seen := counted[i]; seen {
				continue
			}
			counted[i] = struct{}{}
			total += tx.TokenAmount
		}
	}
	return total
}
