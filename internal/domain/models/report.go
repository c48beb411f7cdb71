package models

import "time"

// ReportMeta carries run bookkeeping and degradation notes. "Cannot
// determine" states are data here, never errors crossing the engine boundary.
type ReportMeta struct {
	TransactionsAnalyzed int       `json:"transactions_analyzed"`
	ClustersAccepted     int       `json:"clusters_accepted"`
	AnalyzedAt           time.Time `json:"analyzed_at"`
	DurationMs           int64     `json:"duration_ms"`
	Notes                []string  `json:"notes,omitempty"`
}

// BundlerAnalysisReport is the terminal artifact of one analysis run. Built
// once, immutable, handed to downstream collaborators (narrative generation,
// persistence, delivery) and then discarded. All fields are plain values
// suitable for direct serialization.
type BundlerAnalysisReport struct {
	Chain        string `json:"chain"`
	TokenAddress string `json:"token_address"`

	BundledDetected    bool    `json:"bundled_detected"`
	BundledTxPct       float64 `json:"bundled_tx_pct"`
	BundledTokenVolume float64 `json:"bundled_token_volume"`

	Clusters      []Cluster            `json:"clusters"`
	RiskMetrics   RiskMetrics          `json:"risk_metrics"`
	PresentImpact *PresentImpactResult `json:"present_impact,omitempty"`
	PriceAction   *PriceActionResult   `json:"price_action,omitempty"`
	CreationInfo  *CreationInfo        `json:"creation_info,omitempty"`

	Meta ReportMeta `json:"meta"`
}
