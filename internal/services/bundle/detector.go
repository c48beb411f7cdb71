package bundle

import "BundleScope/internal/domain/models"

// Config tunes the detection pipeline. Zero values fall back to defaults.
type Config struct {
	WindowSeconds      float64
	MinTradesInCluster int
	MaxWalletDiversity float64
}

const (
	DefaultWindowSeconds      = 2.0
	DefaultMinTradesInCluster = 3
	DefaultMaxWalletDiversity = 0.7
)

func (c *Config) applyDefaults() {
	if c.WindowSeconds == 0 {
		c.WindowSeconds = DefaultWindowSeconds
	}
	if c.MinTradesInCluster == 0 {
		c.MinTradesInCluster = DefaultMinTradesInCluster
	}
	if c.MaxWalletDiversity == 0 {
		c.MaxWalletDiversity = DefaultMaxWalletDiversity
	}
}

// Detector runs clustering, scoring and filtering over one immutable batch
// of early trades. Stateless: running it twice on the same input yields
// identical results.
type Detector struct {
	clusterer *WindowClusterer
	scorer    *ClusterScorer
	filter    *ClusterFilter
}

func NewDetector(cfg Config) (*Detector, error) {
	cfg.applyDefaults()
	clusterer, err := NewWindowClusterer(cfg.WindowSeconds, cfg.MinTradesInCluster)
	if err != nil {
		return nil, err
	}
	return &Detector{
		clusterer: clusterer,
		scorer:    NewClusterScorer(cfg.WindowSeconds, cfg.MinTradesInCluster, cfg.MaxWalletDiversity),
		filter:    NewClusterFilter(cfg.MaxWalletDiversity),
	}, nil
}

// Detect returns whether bundling was found, the accepted clusters and the
// deduplicated bundled token volume. Empty input yields (false, [], 0).
func (d *Detector) Detect(txs []models.Transaction) (bool, []models.Cluster, float64) {
	accepted := make([]models.Cluster, 0)
	if len(txs) == 0 {
		return false, accepted, 0
	}
	for _, w := range d.clusterer.Windows(txs) {
		cluster := d.scorer.Score(txs, w)
		if d.filter.Accept(cluster) {
			accepted = append(accepted, cluster)
		}
	}
	if len(accepted) == 0 {
		return false, accepted, 0
	}
	return true, accepted, BundledTokenVolume(txs, accepted)
}
