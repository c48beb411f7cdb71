package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"BundleScope/internal/domain/models"
	"BundleScope/internal/services/bundle"
	"BundleScope/internal/services/risk"
	applogger "BundleScope/pkg/logger"
)

type stubFeed struct {
	txs   []models.Transaction
	err   error
	calls int
}

func (s *stubFeed) FetchEarlyTrades(context.Context, string, string, int64, int) ([]models.Transaction, error) {
	s.calls++
	return s.txs, s.err
}

type stubCreation struct {
	info *models.CreationInfo
	err  error
}

func (s stubCreation) FetchCreationInfo(context.Context, string, string) (*models.CreationInfo, error) {
	return s.info, s.err
}

type stubHolders struct {
	stats *models.HolderStats
	err   error
}

func (s stubHolders) FetchHolderStats(context.Context, string, string) (*models.HolderStats, error) {
	return s.stats, s.err
}

type stubCandles struct {
	candles []models.Candle
	err     error
}

func (s stubCandles) FetchOHLCV(context.Context, string, string, int64, int64) ([]models.Candle, error) {
	return s.candles, s.err
}

// captureRecorder collects metric calls for assertions. Stage latencies are
// recorded from concurrent analysis goroutines, hence the mutex.
type captureRecorder struct {
	mu       sync.Mutex
	analyses map[string]int
	bundles  int
	levels   []models.RiskLevel
	stages   []string
}

func newCaptureRecorder() *captureRecorder {
	return &captureRecorder{analyses: make(map[string]int)}
}

func (r *captureRecorder) RecordAnalysis(chain, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.analyses[chain+":"+outcome]++
}

func (r *captureRecorder) RecordBundleDetected(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bundles++
}

func (r *captureRecorder) RecordRiskLevel(_ string, level models.RiskLevel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.levels = append(r.levels, level)
}

func (r *captureRecorder) RecordStageLatency(stage string, _ float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, stage)
}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Output: "stderr"})
	require.NoError(t, err)
	return l
}

func buyTx(hash, wallet string, ts float64) models.Transaction {
	return models.Transaction{
		TxHash:      hash,
		Wallet:      wallet,
		Timestamp:   ts,
		TxType:      models.TxTypeBuy,
		TokenAmount: 1000,
		VolumeUSD:   25,
	}
}

// burstFeed builds 300 valid buys: a 4-transaction two-wallet burst inside
// one 2-second window followed by organic trades spaced 10 seconds apart.
// The burst is appended last so the analyzer's sort is exercised. A sell and
// a malformed row are mixed in and must be filtered out.
func burstFeed() []models.Transaction {
	var txs []models.Transaction
	for i := 0; i < 296; i++ {
		txs = append(txs, buyTx(fmt.Sprintf("org%d", i), fmt.Sprintf("worg%d", i), 2000+float64(i)*10))
	}
	txs = append(txs,
		models.Transaction{TxHash: "s1", Wallet: "ws", Timestamp: 1500, TxType: models.TxTypeSell, TokenAmount: 10, VolumeUSD: 1},
		models.Transaction{Wallet: "broken", Timestamp: 1501, TxType: models.TxTypeBuy},
		buyTx("b1", "w1", 1000.0),
		buyTx("b2", "w2", 1000.3),
		buyTx("b3", "w1", 1000.6),
		buyTx("b4", "w2", 1000.9),
	)
	return txs
}

func newTestAnalyzer(t *testing.T, feed *stubFeed, creation stubCreation, holders stubHolders, candles stubCandles, rec *captureRecorder) *BundleAnalyzer {
	t.Helper()
	detector, err := bundle.NewDetector(bundle.Config{})
	require.NoError(t, err)
	logger := testLogger(t)
	return NewBundleAnalyzer(
		feed,
		creation,
		detector,
		risk.NewMetricsEngine(),
		risk.NewPresentImpactAnalyzer(holders, logger),
		risk.NewPriceActionAnalyzer(candles, 3),
		rec,
		logger,
		300,
		0,
	)
}

func TestAnalyzeDetectsBurst(t *testing.T) {
	rec := newCaptureRecorder()
	a := newTestAnalyzer(t,
		&stubFeed{txs: burstFeed()},
		stubCreation{info: &models.CreationInfo{BlockUnixTime: 999, CreationTx: "genesis"}},
		stubHolders{stats: &models.HolderStats{TotalHolders: 1000, Top10ConcentrationPct: 20, HolderChange24hPct: 5}},
		stubCandles{candles: []models.Candle{
			{UnixTime: 1000, Open: 100, High: 101, Low: 99, Close: 100.5, VolumeUSD: 50},
			{UnixTime: 86400 + 1000, Open: 100.5, High: 102, Low: 100, Close: 101, VolumeUSD: 60},
		}},
		rec,
	)

	report, err := a.Analyze(context.Background(), "solana", "token-a")
	require.NoError(t, err)
	require.NotNil(t, report)

	require.True(t, report.BundledDetected)
	require.Len(t, report.Clusters, 1)
	require.Equal(t, 4, report.Clusters[0].ClusterSize)
	require.Equal(t, 2, report.Clusters[0].UniqueWallets)
	require.InDelta(t, 4000.0, report.BundledTokenVolume, 1e-9)
	require.InDelta(t, 4.0/300.0*100, report.BundledTxPct, 1e-9)

	require.InDelta(t, 12.6667, report.RiskMetrics.BundleIntensityScore, 0.01)
	require.InDelta(t, 0.0, report.RiskMetrics.WalletConcentrationRisk, 1e-9)
	require.InDelta(t, 1.0, report.RiskMetrics.BundleTimingConsistency, 1e-9)
	require.InDelta(t, 4.0/300.0*100, report.RiskMetrics.EarlyTradingDominance, 1e-9)
	require.Equal(t, models.SophisticationLow, report.RiskMetrics.CoordinationSophistication)

	require.NotNil(t, report.PresentImpact)
	require.Equal(t, models.ImpactMethodCombined, report.PresentImpact.Method)
	require.Equal(t, 2, report.PresentImpact.BundledWalletsCount)
	require.InDelta(t, 0.0, report.PresentImpact.PatternRiskScore, 1e-9)
	require.Equal(t, models.RiskLow, report.PresentImpact.CurrentImpactRisk)

	require.NotNil(t, report.PriceAction)
	require.Equal(t, models.SelloffNone, report.PriceAction.SelloffSeverity)

	require.Equal(t, 300, report.Meta.TransactionsAnalyzed)
	require.Equal(t, 1, report.Meta.ClustersAccepted)
	require.Empty(t, report.Meta.Notes)

	require.Equal(t, 1, rec.analyses["solana:ok"])
	require.Equal(t, 1, rec.bundles)
	require.Equal(t, []models.RiskLevel{models.RiskLow}, rec.levels)
	require.Contains(t, rec.stages, "fetch_trades")
	require.Contains(t, rec.stages, "detect")
	require.Contains(t, rec.stages, "present_impact")
	require.Contains(t, rec.stages, "price_action")
}

func TestAnalyzeFeedFailureDegrades(t *testing.T) {
	rec := newCaptureRecorder()
	a := newTestAnalyzer(t,
		&stubFeed{err: errors.New("upstream 503")},
		stubCreation{info: &models.CreationInfo{BlockUnixTime: 999}},
		stubHolders{},
		stubCandles{},
		rec,
	)

	report, err := a.Analyze(context.Background(), "solana", "token-a")
	require.NoError(t, err)
	require.NotNil(t, report)
	require.False(t, report.BundledDetected)
	require.NotNil(t, report.Clusters)
	require.Empty(t, report.Clusters)
	require.Zero(t, report.Meta.TransactionsAnalyzed)
	require.Len(t, report.Meta.Notes, 1)
	require.Contains(t, report.Meta.Notes[0], noteFeedFailure)
	require.Contains(t, report.Meta.Notes[0], "upstream 503")
	require.Equal(t, 1, rec.analyses["solana:error"])
	require.Zero(t, rec.bundles)
}

func TestAnalyzeCanceledContextIsFatal(t *testing.T) {
	rec := newCaptureRecorder()
	a := newTestAnalyzer(t,
		&stubFeed{err: context.Canceled},
		stubCreation{info: &models.CreationInfo{BlockUnixTime: 999}},
		stubHolders{},
		stubCandles{},
		rec,
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := a.Analyze(ctx, "solana", "token-a")
	require.Error(t, err)
	require.Nil(t, report)
	require.Equal(t, 1, rec.analyses["solana:error"])
}

func TestAnalyzeMissingAnchorSkipsDetection(t *testing.T) {
	rec := newCaptureRecorder()
	feed := &stubFeed{txs: burstFeed()}
	a := newTestAnalyzer(t,
		feed,
		stubCreation{err: errors.New("not indexed")},
		stubHolders{},
		stubCandles{},
		rec,
	)

	report, err := a.Analyze(context.Background(), "solana", "token-a")
	require.NoError(t, err)
	require.NotNil(t, report)
	require.False(t, report.BundledDetected)
	require.NotNil(t, report.Clusters)
	require.Empty(t, report.Clusters)
	require.Nil(t, report.CreationInfo)
	require.Zero(t, report.Meta.TransactionsAnalyzed)
	require.Equal(t, []string{noteNoCreationInfo}, report.Meta.Notes)
	require.Zero(t, feed.calls)
	require.Equal(t, 1, rec.analyses["solana:degraded"])
	require.Zero(t, rec.bundles)
}

func TestAnalyzeNoUsableTradesDegrades(t *testing.T) {
	rec := newCaptureRecorder()
	a := newTestAnalyzer(t,
		&stubFeed{txs: []models.Transaction{
			{TxHash: "s1", Wallet: "ws", Timestamp: 1500, TxType: models.TxTypeSell, TokenAmount: 10, VolumeUSD: 1},
		}},
		stubCreation{info: &models.CreationInfo{BlockUnixTime: 999}},
		stubHolders{},
		stubCandles{},
		rec,
	)

	report, err := a.Analyze(context.Background(), "solana", "token-a")
	require.NoError(t, err)
	require.NotNil(t, report)
	require.False(t, report.BundledDetected)
	require.NotNil(t, report.Clusters)
	require.Empty(t, report.Clusters)
	require.Equal(t, []string{noteNoTrades}, report.Meta.Notes)
	require.Equal(t, 1, rec.analyses["solana:degraded"])
	require.Zero(t, rec.bundles)
}

func TestAnalyzePriceActionFailureDegrades(t *testing.T) {
	rec := newCaptureRecorder()
	a := newTestAnalyzer(t,
		&stubFeed{txs: burstFeed()},
		stubCreation{info: &models.CreationInfo{BlockUnixTime: 999}},
		stubHolders{stats: &models.HolderStats{TotalHolders: 1000}},
		stubCandles{err: errors.New("ohlcv timeout")},
		rec,
	)

	report, err := a.Analyze(context.Background(), "solana", "token-a")
	require.NoError(t, err)
	require.Nil(t, report.PriceAction)
	require.NotNil(t, report.PresentImpact)
	require.Len(t, report.Meta.Notes, 1)
	require.Contains(t, report.Meta.Notes[0], notePriceAction)
	require.Equal(t, 1, rec.analyses["solana:degraded"])
	require.Equal(t, 1, rec.bundles)
}

func TestAnalyzeHolderFailureFallsBack(t *testing.T) {
	rec := newCaptureRecorder()
	a := newTestAnalyzer(t,
		&stubFeed{txs: burstFeed()},
		stubCreation{info: &models.CreationInfo{BlockUnixTime: 999}},
		stubHolders{err: errors.New("rate limited")},
		stubCandles{candles: []models.Candle{
			{UnixTime: 1000, Open: 100, High: 101, Low: 99, Close: 100.5, VolumeUSD: 50},
			{UnixTime: 86400 + 1000, Open: 100.5, High: 102, Low: 100, Close: 101, VolumeUSD: 60},
		}},
		rec,
	)

	report, err := a.Analyze(context.Background(), "solana", "token-a")
	require.NoError(t, err)
	require.NotNil(t, report.PresentImpact)
	require.Equal(t, models.ImpactMethodPatternFallback, report.PresentImpact.Method)
	require.Nil(t, report.PresentImpact.HolderRiskScore)
	require.Equal(t, []string{"holder data unavailable; present impact is pattern-only"}, report.Meta.Notes)
	require.Equal(t, 1, rec.analyses["solana:degraded"])
}
