package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"BundleScope/internal/domain/models"
	drepo "BundleScope/internal/domain/repository"
	domsvc "BundleScope/internal/domain/service"
	"BundleScope/internal/services/bundle"
	"BundleScope/internal/services/risk"
	applogger "BundleScope/pkg/logger"
)

// Degradation notes attached to report meta when a stage could not run.
// Analyses still complete with whatever data was available.
const (
	noteNoCreationInfo = "creation info unavailable; bundling analysis cannot be anchored"
	noteNoTrades       = "no valid early buys returned by the trade feed"
	noteFeedFailure    = "trade feed unavailable"
	notePriceAction    = "price action analysis unavailable"
)

// BundleAnalyzer orchestrates one full token analysis: fetch early trades,
// detect bundles, score risk, then run the present-impact and price-action
// analyses concurrently. Every stage degrades to a meta note instead of
// failing the run; callers always get a well-formed report back.
type BundleAnalyzer struct {
	feed     domsvc.TransactionFeed
	creation domsvc.CreationInfoProvider
	detector *bundle.Detector
	metrics  *risk.MetricsEngine
	impact   *risk.PresentImpactAnalyzer
	price    *risk.PriceActionAnalyzer
	recorder drepo.Metrics
	logger   *applogger.Logger

	txLimit     int
	callTimeout time.Duration
}

// NewBundleAnalyzer creates a new BundleAnalyzer instance.
func NewBundleAnalyzer(
	feed domsvc.TransactionFeed,
	creation domsvc.CreationInfoProvider,
	detector *bundle.Detector,
	metricsEngine *risk.MetricsEngine,
	impact *risk.PresentImpactAnalyzer,
	price *risk.PriceActionAnalyzer,
	recorder drepo.Metrics,
	logger *applogger.Logger,
	txLimit int,
	callTimeout time.Duration,
) *BundleAnalyzer {
	if txLimit <= 0 {
		txLimit = 300
	}
	if callTimeout <= 0 {
		callTimeout = 30 * time.Second
	}
	return &BundleAnalyzer{
		feed:        feed,
		creation:    creation,
		detector:    detector,
		metrics:     metricsEngine,
		impact:      impact,
		price:       price,
		recorder:    recorder,
		logger:      logger.Component("analyzer"),
		txLimit:     txLimit,
		callTimeout: callTimeout,
	}
}

// Analyze runs the full pipeline for one token and always returns a
// well-formed report: stage failures degrade into meta notes instead of
// surfacing as errors. The returned error is non-nil only when the caller's
// context was canceled before the report could be assembled.
func (a *BundleAnalyzer) Analyze(ctx context.Context, chain, address string) (*models.BundlerAnalysisReport, error) {
	start := time.Now()
	var notes []string

	report := &models.BundlerAnalysisReport{
		Chain:        chain,
		TokenAddress: address,
		Clusters:     []models.Cluster{},
	}

	creation := a.fetchCreation(ctx, chain, address)
	if creation == nil {
		// Without a creation anchor the early window cannot be trusted,
		// so detection does not run at all.
		notes = append(notes, noteNoCreationInfo)
		a.finish(report, 0, notes, start)
		a.record(chain, "degraded")
		return report, nil
	}
	report.CreationInfo = creation

	trades, err := a.fetchTrades(ctx, chain, address, creation)
	if err != nil {
		if ctx.Err() != nil {
			a.record(chain, "error")
			return nil, fmt.Errorf("fetch early trades: %w", err)
		}
		a.logger.Warn("trade feed failed, returning degraded report",
			applogger.String("chain", chain),
			applogger.String("token", address),
			applogger.Error(err))
		notes = append(notes, fmt.Sprintf("%s: %v", noteFeedFailure, err))
		a.finish(report, 0, notes, start)
		a.record(chain, "error")
		return report, nil
	}

	if len(trades) == 0 {
		notes = append(notes, noteNoTrades)
		a.finish(report, 0, notes, start)
		a.record(chain, "degraded")
		return report, nil
	}

	detectStart := time.Now()
	detected, clusters, bundledVolume := a.detector.Detect(trades)
	a.observeStage("detect", detectStart)

	report.BundledDetected = detected
	report.Clusters = clusters
	report.BundledTokenVolume = bundledVolume
	report.BundledTxPct = risk.BundledTxShare(trades, clusters)
	report.RiskMetrics = a.metrics.Compute(clusters, trades)

	if detected {
		notes = append(notes, a.analyzeDetected(ctx, chain, address, report, trades)...)
	}

	a.finish(report, len(trades), notes, start)

	outcome := "ok"
	if len(notes) > 0 {
		outcome = "degraded"
	}
	a.record(chain, outcome)
	if detected && a.recorder != nil {
		a.recorder.RecordBundleDetected(chain)
		if report.PresentImpact != nil {
			a.recorder.RecordRiskLevel(chain, report.PresentImpact.CurrentImpactRisk)
		}
	}

	a.logger.Info("analysis complete",
		applogger.String("chain", chain),
		applogger.String("address", address),
		applogger.Bool("bundled", detected),
		applogger.Int("clusters", len(clusters)),
		applogger.Int("trades", len(trades)),
		applogger.Duration("took", time.Since(start)),
	)
	return report, nil
}

// analyzeDetected runs the present-impact and price-action stages
// concurrently and returns any degradation notes they produced.
func (a *BundleAnalyzer) analyzeDetected(ctx context.Context, chain, address string, report *models.BundlerAnalysisReport, trades []models.Transaction) []string {
	var notes []string
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stageStart := time.Now()
		callCtx, cancel := context.WithTimeout(gctx, a.callTimeout)
		defer cancel()
		result := a.impact.Analyze(callCtx, chain, address, report.Clusters, trades)
		report.PresentImpact = &result
		a.observeStage("present_impact", stageStart)
		return nil
	})

	var priceNote string
	g.Go(func() error {
		stageStart := time.Now()
		callCtx, cancel := context.WithTimeout(gctx, a.callTimeout)
		defer cancel()
		result, err := a.price.Analyze(callCtx, chain, address, trades[0].Timestamp)
		a.observeStage("price_action", stageStart)
		if err != nil {
			priceNote = fmt.Sprintf("%s: %v", notePriceAction, err)
			a.logger.Warn("price action degraded",
				applogger.String("address", address),
				applogger.Error(err),
			)
			return nil
		}
		report.PriceAction = &result
		return nil
	})

	// Stages never return errors, degradation is recorded in notes.
	_ = g.Wait()

	if report.PresentImpact != nil && report.PresentImpact.Method == models.ImpactMethodPatternFallback {
		notes = append(notes, "holder data unavailable; present impact is pattern-only")
	}
	if priceNote != "" {
		notes = append(notes, priceNote)
	}
	return notes
}

// fetchCreation looks up the creation anchor. Any failure is treated as
// "anchor unknown" and logged, never propagated.
func (a *BundleAnalyzer) fetchCreation(ctx context.Context, chain, address string) *models.CreationInfo {
	if a.creation == nil {
		return nil
	}
	callCtx, cancel := context.WithTimeout(ctx, a.callTimeout)
	defer cancel()

	info, err := a.creation.FetchCreationInfo(callCtx, chain, address)
	if err != nil {
		a.logger.Warn("creation info lookup failed",
			applogger.String("address", address),
			applogger.Error(err),
		)
		return nil
	}
	return info
}

// fetchTrades pulls the earliest trades, keeps valid buys only and returns
// them sorted ascending by timestamp, capped at the configured limit.
func (a *BundleAnalyzer) fetchTrades(ctx context.Context, chain, address string, creation *models.CreationInfo) ([]models.Transaction, error) {
	var fromUnix int64
	if creation != nil {
		fromUnix = creation.BlockUnixTime
	}

	callCtx, cancel := context.WithTimeout(ctx, a.callTimeout)
	defer cancel()

	stageStart := time.Now()
	raw, err := a.feed.FetchEarlyTrades(callCtx, chain, address, fromUnix, a.txLimit)
	a.observeStage("fetch_trades", stageStart)
	if err != nil {
		return nil, err
	}

	trades := make([]models.Transaction, 0, len(raw))
	for _, tx := range raw {
		if tx.Valid() && tx.TxType == models.TxTypeBuy {
			trades = append(trades, tx)
		}
	}
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].Timestamp < trades[j].Timestamp
	})
	if len(trades) > a.txLimit {
		trades = trades[:a.txLimit]
	}
	return trades, nil
}

func (a *BundleAnalyzer) finish(report *models.BundlerAnalysisReport, txCount int, notes []string, start time.Time) {
	report.Meta = models.ReportMeta{
		TransactionsAnalyzed: txCount,
		ClustersAccepted:     len(report.Clusters),
		AnalyzedAt:           time.Now().UTC(),
		DurationMs:           time.Since(start).Milliseconds(),
		Notes:                notes,
	}
}

func (a *BundleAnalyzer) record(chain, outcome string) {
	if a.recorder != nil {
		a.recorder.RecordAnalysis(chain, outcome)
	}
}

func (a *BundleAnalyzer) observeStage(stage string, start time.Time) {
	if a.recorder != nil {
		a.recorder.RecordStageLatency(stage, time.Since(start).Seconds())
	}
}
