package bundle

import "BundleScope/internal/domain/models"

const maxSampleHashes = 5

// ClusterScorer computes diversity and coherence metrics plus the composite
// suspicion score for each candidate window.
//
// The score rewards minimal cluster size, low wallet diversity and coherent
// trade sizes, the hallmarks of one actor distributing buys across wallets.
type ClusterScorer struct {
	windowSeconds float64
	minTrades     int
	maxDiversity  float64
}

func NewClusterScorer(windowSeconds float64, minTrades int, maxDiversity float64) *ClusterScorer {
	return &ClusterScorer{windowSeconds: windowSeconds, minTrades: minTrades, maxDiversity: maxDiversity}
}

// Score builds a Cluster for one candidate window.
func (s *ClusterScorer) Score(txs []models.Transaction, w span) models.Cluster {
	size := w.End - w.Start
	wallets := make(map[string]struct{}, size)
	volumes := make([]float64, 0, size)
	hashes := make([]string, 0, maxSampleHashes)

	for i := w.Start; i < w.End; i++ {
		wallets[txs[i].Wallet] = struct{}{}
		volumes = append(volumes, txs[i].VolumeUSD)
		if len(hashes) < maxSampleHashes {
			hashes = append(hashes, txs[i].TxHash)
		}
	}

	diversity := float64(len(wallets)) / float64(size)
	volumeCV := CoefficientOfVariation(volumes)

	sizeScore := max(0, 1-(float64(size)/float64(s.minTrades)-1))
	diversityScore := max(0, 1-diversity/s.maxDiversity)
	coherenceScore := max(0, 1-volumeCV/0.2)
	score := 0.5*sizeScore + 0.3*diversityScore + 0.2*coherenceScore

	return models.Cluster{
		ClusterSize:          size,
		WindowSeconds:        s.windowSeconds,
		UniqueWallets:        len(wallets),
		WalletDiversityRatio: diversity,
		Score:                score,
		SampleTxHashes:       hashes,
		FirstUnix:            txs[w.Start].Timestamp,
	}
}
