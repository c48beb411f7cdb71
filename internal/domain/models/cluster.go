package models

// Cluster is a group of trades inside one time window suspected of
// coordinated execution. Derived, read-only.
//
// Invariants: ClusterSize >= the configured minimum trades per cluster and
// WalletDiversityRatio == UniqueWallets/ClusterSize, always in (0, 1].
type Cluster struct {
	ClusterSize          int      `json:"cluster_size"`
	WindowSeconds        float64  `json:"window_seconds"`
	UniqueWallets        int      `json:"unique_wallets"`
	WalletDiversityRatio float64  `json:"wallet_diversity_ratio"`
	Score                float64  `json:"score"`
	SampleTxHashes       []string `json:"sample_tx_hashes"` // at most 5
	FirstUnix            float64  `json:"first_unix"`
}

// Contains reports whether a transaction timestamp falls inside the
// cluster's [FirstUnix, FirstUnix+WindowSeconds] interval.
func (c Cluster) Contains(ts float64) bool {
	return ts >= c.FirstUnix && ts <= c.FirstUnix+c.WindowSeconds
}
