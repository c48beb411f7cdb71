package models

// Sophistication grades how scripted the detected coordination looks.
type Sophistication string

const (
	SophisticationLow    Sophistication = "LOW"
	SophisticationMedium Sophistication = "MEDIUM"
	SophisticationHigh   Sophistication = "HIGH"
)

// RiskLevel is the present-impact verdict scale.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// SelloffSeverity classifies post-launch price decline from peak.
type SelloffSeverity string

const (
	SelloffNone     SelloffSeverity = "NONE"
	SelloffMild     SelloffSeverity = "MILD"
	SelloffModerate SelloffSeverity = "MODERATE"
	SelloffSevere   SelloffSeverity = "SEVERE"
	SelloffExtreme  SelloffSeverity = "EXTREME"
	SelloffUnknown  SelloffSeverity = "UNKNOWN"
)

// MitigationFactor expresses how much an observed sell-off lowers forward
// risk to new buyers (bundled supply already dumped).
type MitigationFactor string

const (
	MitigationNone   MitigationFactor = "NONE"
	MitigationLow    MitigationFactor = "LOW"
	MitigationMedium MitigationFactor = "MEDIUM"
	MitigationHigh   MitigationFactor = "HIGH"
)

// RiskMetrics aggregates accepted clusters into the four pattern metrics.
type RiskMetrics struct {
	BundleIntensityScore       float64        `json:"bundle_intensity_score"`    // [0,100]
	WalletConcentrationRisk    float64        `json:"wallet_concentration_risk"` // [0,1]
	BundleTimingConsistency    float64        `json:"bundle_timing_consistency"` // [0,1]
	EarlyTradingDominance      float64        `json:"early_trading_dominance"`   // [0,100]
	CoordinationSophistication Sophistication `json:"coordination_sophistication"`
}

// Present-impact analysis methods. Holder-data failure falls back silently
// to pattern-only and tags the result accordingly.
const (
	ImpactMethodPatternOnly     = "pattern_only"
	ImpactMethodCombined        = "combined"
	ImpactMethodPatternFallback = "pattern_fallback"
)

// PresentImpactResult estimates current-day risk from historically bundled
// wallets. HolderRiskScore and CombinedRiskScore are nil on the pattern-only
// path.
type PresentImpactResult struct {
	BundledWalletsCount int       `json:"bundled_wallets_count"`
	PatternRiskScore    float64   `json:"pattern_risk_score"`
	HolderRiskScore     *float64  `json:"holder_risk_score,omitempty"`
	CombinedRiskScore   *float64  `json:"combined_risk_score,omitempty"`
	CurrentImpactRisk   RiskLevel `json:"current_impact_risk"`
	Method              string    `json:"method"`
}

// PriceActionResult summarizes post-launch sell-off evidence.
type PriceActionResult struct {
	SelloffDetected         bool             `json:"selloff_detected"`
	SelloffSeverity         SelloffSeverity  `json:"selloff_severity"`
	PriceDeclineFromPeakPct float64          `json:"price_decline_from_peak_pct"`
	LargeDropCount          int              `json:"large_drop_count"`
	HighVolumeSelloffCount  int              `json:"high_volume_selloff_count"`
	RiskMitigationFactor    MitigationFactor `json:"risk_mitigation_factor"`
}
