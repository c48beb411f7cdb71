package risk

import (
	"context"
	"fmt"

	"BundleScope/internal/domain/models"
	domsvc "BundleScope/internal/domain/service"
)

const (
	// DefaultPriceWindowDays is the observation span anchored at the first
	// observed transaction.
	DefaultPriceWindowDays = 3

	largeDropPct     = 20.0
	highVolumeFactor = 2.0
)

// PriceActionAnalyzer inspects post-launch daily candles for sell-off
// evidence and derives a risk-mitigation factor: a severe post-bundle crash
// implies bundled supply already dumped, lowering forward risk to new buyers.
type PriceActionAnalyzer struct {
	candles    domsvc.OHLCVProvider
	windowDays int
}

func NewPriceActionAnalyzer(candles domsvc.OHLCVProvider, windowDays int) *PriceActionAnalyzer {
	if windowDays <= 0 {
		windowDays = DefaultPriceWindowDays
	}
	return &PriceActionAnalyzer{candles: candles, windowDays: windowDays}
}

// Analyze fetches candles for the window anchored at the first trade and
// evaluates them. A provider failure is returned to the caller, which
// degrades that feature alone.
func (a *PriceActionAnalyzer) Analyze(ctx context.Context, chain, address string, firstTradeUnix float64) (models.PriceActionResult, error) {
	from := int64(firstTradeUnix)
	to := from + int64(a.windowDays)*86400
	candles, err := a.candles.FetchOHLCV(ctx, chain, address, from, to)
	if err != nil {
		return models.PriceActionResult{}, fmt.Errorf("fetch ohlcv: %w", err)
	}
	return Evaluate(candles), nil
}

// Evaluate computes the sell-off verdict from a candle series. Fewer than 2
// candles yields an explicit UNKNOWN result rather than a false negative.
func Evaluate(candles []models.Candle) models.PriceActionResult {
	if len(candles) < 2 {
		return models.PriceActionResult{
			SelloffDetected:      false,
			SelloffSeverity:      models.SelloffUnknown,
			RiskMitigationFactor: models.MitigationNone,
		}
	}

	peak := 0.0
	totalVolume := 0.0
	largeDrops := 0
	for _, c := range candles {
		if c.High > peak {
			peak = c.High
		}
		totalVolume += c.VolumeUSD
		if c.Open > 0 && (c.Open-c.Close)/c.Open*100 > largeDropPct {
			largeDrops++
		}
	}
	meanVolume := totalVolume / float64(len(candles))

	highVolumeSelloffs := 0
	for _, c := range candles {
		if c.Close < c.Open && c.VolumeUSD > highVolumeFactor*meanVolume {
			highVolumeSelloffs++
		}
	}

	declinePct := 0.0
	if peak > 0 {
		declinePct = (peak - candles[len(candles)-1].Close) / peak * 100
	}

	severity := models.SelloffNone
	switch {
	case declinePct > 80:
		severity = models.SelloffExtreme
	case declinePct > 60:
		severity = models.SelloffSevere
	case declinePct > 40:
		severity = models.SelloffModerate
	case declinePct > 20:
		severity = models.SelloffMild
	}

	detected := severity != models.SelloffNone || largeDrops > 0 || highVolumeSelloffs > 0

	mitigation := models.MitigationNone
	if detected {
		switch severity {
		case models.SelloffExtreme, models.SelloffSevere:
			mitigation = models.MitigationHigh
		case models.SelloffModerate:
			mitigation = models.MitigationMedium
		default:
			mitigation = models.MitigationLow
		}
	}

	return models.PriceActionResult{
		SelloffDetected:         detected,
		SelloffSeverity:         severity,
		PriceDeclineFromPeakPct: declinePct,
		LargeDropCount:          largeDrops,
		HighVolumeSelloffCount:  highVolumeSelloffs,
		RiskMitigationFactor:    mitigation,
	}
}
