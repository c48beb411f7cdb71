package risk

import (
	"context"
	"errors"
	"testing"

	"BundleScope/internal/domain/models"

	"github.com/stretchr/testify/require"
)

func TestEvaluateTooFewCandles(t *testing.T) {
	for _, candles := range [][]models.Candle{
		nil,
		{{UnixTime: 1, Open: 100, High: 110, Low: 90, Close: 95, VolumeUSD: 1000}},
	} {
		res := Evaluate(candles)
		require.False(t, res.SelloffDetected)
		require.Equal(t, models.SelloffUnknown, res.SelloffSeverity)
		require.Equal(t, models.MitigationNone, res.RiskMitigationFactor)
	}
}

func TestEvaluateFlatMarket(t *testing.T) {
	candles := []models.Candle{
		{UnixTime: 1, Open: 100, High: 101, Low: 99, Close: 100.5, VolumeUSD: 100},
		{UnixTime: 2, Open: 100.5, High: 102, Low: 100, Close: 101, VolumeUSD: 110},
	}

	res := Evaluate(candles)
	require.False(t, res.SelloffDetected)
	require.Equal(t, models.SelloffNone, res.SelloffSeverity)
	require.Equal(t, 0, res.LargeDropCount)
	require.Equal(t, 0, res.HighVolumeSelloffCount)
	require.Equal(t, models.MitigationNone, res.RiskMitigationFactor)
}

func TestEvaluateExtremeDump(t *testing.T) {
	candles := []models.Candle{
		{UnixTime: 1, Open: 100, High: 120, Low: 85, Close: 90, VolumeUSD: 1000},
		{UnixTime: 2, Open: 90, High: 95, Low: 15, Close: 20, VolumeUSD: 5000},
	}

	res := Evaluate(candles)
	require.True(t, res.SelloffDetected)
	require.Equal(t, models.SelloffExtreme, res.SelloffSeverity)
	// peak 120, last close 20
	require.InDelta(t, 83.33, res.PriceDeclineFromPeakPct, 0.01)
	require.Equal(t, 1, res.LargeDropCount)
	require.Equal(t, models.MitigationHigh, res.RiskMitigationFactor)
}

func TestEvaluateMildDecline(t *testing.T) {
	candles := []models.Candle{
		{UnixTime: 1, Open: 100, High: 130, Low: 95, Close: 115, VolumeUSD: 100},
		{UnixTime: 2, Open: 115, High: 116, Low: 88, Close: 91, VolumeUSD: 120},
	}

	res := Evaluate(candles)
	require.True(t, res.SelloffDetected)
	require.Equal(t, models.SelloffMild, res.SelloffSeverity)
	require.InDelta(t, 30.0, res.PriceDeclineFromPeakPct, 0.01)
	require.Equal(t, models.MitigationLow, res.RiskMitigationFactor)
}

func TestEvaluateHighVolumeSelloff(t *testing.T) {
	// modest decline from peak, but one red candle carries most of the
	// volume: flagged as a high-volume sell-off
	candles := []models.Candle{
		{UnixTime: 1, Open: 100, High: 105, Low: 98, Close: 104, VolumeUSD: 100},
		{UnixTime: 2, Open: 104, High: 106, Low: 95, Close: 96, VolumeUSD: 900},
		{UnixTime: 3, Open: 96, High: 99, Low: 94, Close: 98, VolumeUSD: 100},
	}

	res := Evaluate(candles)
	require.True(t, res.SelloffDetected)
	require.Equal(t, models.SelloffNone, res.SelloffSeverity)
	require.Equal(t, 1, res.HighVolumeSelloffCount)
	require.Equal(t, models.MitigationLow, res.RiskMitigationFactor)
}

type stubOHLCV struct {
	candles []models.Candle
	err     error
}

func (s stubOHLCV) FetchOHLCV(context.Context, string, string, int64, int64) ([]models.Candle, error) {
	return s.candles, s.err
}

func TestAnalyzePropagatesProviderError(t *testing.T) {
	a := NewPriceActionAnalyzer(stubOHLCV{err: errors.New("timeout")}, 3)
	_, err := a.Analyze(context.Background(), "solana", "token", 1000)
	require.Error(t, err)
}

func TestAnalyzeEvaluatesFetchedCandles(t *testing.T) {
	a := NewPriceActionAnalyzer(stubOHLCV{candles: []models.Candle{
		{UnixTime: 1, Open: 100, High: 120, Low: 85, Close: 90, VolumeUSD: 1000},
		{UnixTime: 2, Open: 90, High: 95, Low: 15, Close: 20, VolumeUSD: 5000},
	}}, 0)

	res, err := a.Analyze(context.Background(), "solana", "token", 1000)
	require.NoError(t, err)
	require.Equal(t, models.SelloffExtreme, res.SelloffSeverity)
}
