package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"BundleScope/internal/domain/models"
	icache "BundleScope/internal/service/cache"
	"BundleScope/internal/services/bundle"
	"BundleScope/internal/services/risk"
	"BundleScope/internal/usecase"
	pkgcache "BundleScope/pkg/cache"
	applogger "BundleScope/pkg/logger"
)

type countingFeed struct {
	calls int64
	txs   []models.Transaction
}

func (f *countingFeed) FetchEarlyTrades(context.Context, string, string, int64, int) ([]models.Transaction, error) {
	atomic.AddInt64(&f.calls, 1)
	return f.txs, nil
}

type fixedCreation struct{}

func (fixedCreation) FetchCreationInfo(context.Context, string, string) (*models.CreationInfo, error) {
	return &models.CreationInfo{BlockUnixTime: 999, CreationTx: "genesis"}, nil
}

type nilHolders struct{}

func (nilHolders) FetchHolderStats(context.Context, string, string) (*models.HolderStats, error) {
	return nil, nil
}

type emptyCandles struct{}

func (emptyCandles) FetchOHLCV(context.Context, string, string, int64, int64) ([]models.Candle, error) {
	return nil, nil
}

func burstTrades() []models.Transaction {
	mk := func(hash, wallet string, ts float64) models.Transaction {
		return models.Transaction{
			TxHash: hash, Wallet: wallet, Timestamp: ts,
			TxType: models.TxTypeBuy, TokenAmount: 100, VolumeUSD: 10,
		}
	}
	return []models.Transaction{
		mk("h1", "w1", 1000.0),
		mk("h2", "w2", 1000.3),
		mk("h3", "w1", 1000.6),
		mk("h4", "w2", 1000.9),
	}
}

func newTestHandler(t *testing.T, feed *countingFeed, opts ...HandlerOption) (*AnalysisEchoHandler, *echo.Echo) {
	t.Helper()
	logger, err := applogger.New(&applogger.Config{Level: "error", Output: "stderr"})
	require.NoError(t, err)

	detector, err := bundle.NewDetector(bundle.Config{})
	require.NoError(t, err)

	analyzer := usecase.NewBundleAnalyzer(
		feed,
		fixedCreation{},
		detector,
		risk.NewMetricsEngine(),
		risk.NewPresentImpactAnalyzer(nilHolders{}, logger),
		risk.NewPriceActionAnalyzer(emptyCandles{}, 3),
		nil,
		logger,
		300,
		5*time.Second,
	)

	backend := pkgcache.NewMemoryCache()
	t.Cleanup(func() { backend.Close() })
	reports := icache.NewReportCache(backend, logger, time.Minute)

	h := NewAnalysisEchoHandler(logger, analyzer, reports, opts...)
	e := echo.New()
	h.RegisterRoutes(e)
	return h, e
}

func doAnalyze(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeEndpoint(t *testing.T) {
	feed := &countingFeed{txs: burstTrades()}
	_, e := newTestHandler(t, feed)

	rec := doAnalyze(e, `{"chain":"solana","token_address":"So11111111111111111111111111111111111111112"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status int                          `json:"status"`
		Data   models.BundlerAnalysisReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, http.StatusOK, resp.Status)
	require.True(t, resp.Data.BundledDetected)
	require.Len(t, resp.Data.Clusters, 1)
	require.Equal(t, "solana", resp.Data.Chain)
}

func TestAnalyzeEndpointServesCachedReport(t *testing.T) {
	feed := &countingFeed{txs: burstTrades()}
	_, e := newTestHandler(t, feed)

	body := `{"chain":"solana","token_address":"So11111111111111111111111111111111111111112"}`
	require.Equal(t, http.StatusOK, doAnalyze(e, body).Code)
	require.Equal(t, http.StatusOK, doAnalyze(e, body).Code)
	require.EqualValues(t, 1, atomic.LoadInt64(&feed.calls))

	refresh := `{"chain":"solana","token_address":"So11111111111111111111111111111111111111112","refresh":true}`
	require.Equal(t, http.StatusOK, doAnalyze(e, refresh).Code)
	require.EqualValues(t, 2, atomic.LoadInt64(&feed.calls))
}

func TestAnalyzeEndpointValidation(t *testing.T) {
	feed := &countingFeed{txs: burstTrades()}
	_, e := newTestHandler(t, feed)

	rec := doAnalyze(e, `{"chain":"solana"}`)
	var resp struct {
		Status int `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, http.StatusBadRequest, resp.Status)
	require.Zero(t, atomic.LoadInt64(&feed.calls))

	rec = doAnalyze(e, `{"chain":"dogechain","token_address":"So11111111111111111111111111111111111111112"}`)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, http.StatusBadRequest, resp.Status)
}

func TestAnalyzeEndpointRateLimited(t *testing.T) {
	feed := &countingFeed{txs: burstTrades()}
	_, e := newTestHandler(t, feed, WithRateLimit(1, 0))

	body := `{"chain":"solana","token_address":"So11111111111111111111111111111111111111112"}`
	require.Equal(t, http.StatusOK, doAnalyze(e, body).Code)

	rec := doAnalyze(e, body)
	var resp struct {
		Status int `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, http.StatusTooManyRequests, resp.Status)
}

func TestLatestReportWithoutStore(t *testing.T) {
	feed := &countingFeed{}
	_, e := newTestHandler(t, feed)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/So11111111111111111111111111111111111111112", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var resp struct {
		Status int `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, http.StatusNotFound, resp.Status)
}

func TestHealthEndpoint(t *testing.T) {
	feed := &countingFeed{}
	_, e := newTestHandler(t, feed)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"ok"`)
}
