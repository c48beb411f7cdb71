package birdeye

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"BundleScope/internal/domain/models"
	domsvc "BundleScope/internal/domain/service"
	xhttp "BundleScope/pkg/http"
	applogger "BundleScope/pkg/logger"
)

// Client talks to the Birdeye public API. It backs the trade feed, the
// creation-info lookup and the OHLCV candle provider.
type Client struct {
	http     *xhttp.Client
	logger   *applogger.Logger
	apiKey   string
	baseURL  string
	pageSize int
	inFlight int
}

var (
	_ domsvc.TransactionFeed      = (*Client)(nil)
	_ domsvc.CreationInfoProvider = (*Client)(nil)
	_ domsvc.OHLCVProvider        = (*Client)(nil)
)

// Option configures Client.
type Option func(*Client)

// WithPageSize sets how many trades one page request asks for.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithMaxInFlight caps concurrent page requests.
func WithMaxInFlight(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.inFlight = n
		}
	}
}

// New creates a Birdeye API client.
func New(httpClient *xhttp.Client, logger *applogger.Logger, apiKey, baseURL string, opts ...Option) *Client {
	c := &Client{
		http:     httpClient,
		logger:   logger.Component("birdeye"),
		apiKey:   apiKey,
		baseURL:  baseURL,
		pageSize: 50,
		inFlight: 3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) headers(chain string) map[string]string {
	return map[string]string{
		"X-API-KEY": c.apiKey,
		"x-chain":   chain,
	}
}

type apiEnvelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type tradeItem struct {
	TxHash        string  `json:"txHash"`
	Owner         string  `json:"owner"`
	BlockUnixTime float64 `json:"blockUnixTime"`
	Side          string  `json:"side"`
	TokenAmount   float64 `json:"tokenAmount"`
	VolumeUSD     float64 `json:"volumeUSD"`
}

type tradePage struct {
	Items   []tradeItem `json:"items"`
	HasNext bool        `json:"hasNext"`
}

// FetchEarlyTrades pulls the token's earliest trades page by page, fetching
// pages concurrently up to the in-flight cap. Malformed rows are dropped;
// the result is sorted ascending by timestamp and capped at limit.
func (c *Client) FetchEarlyTrades(ctx context.Context, chain, address string, fromUnix int64, limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = 300
	}
	pages := (limit + c.pageSize - 1) / c.pageSize

	var mu sync.Mutex
	all := make([]models.Transaction, 0, limit)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.inFlight)
	for p := 0; p < pages; p++ {
		offset := p * c.pageSize
		g.Go(func() error {
			items, err := c.fetchTradePage(gctx, chain, address, fromUnix, offset)
			if err != nil {
				return err
			}
			txs := make([]models.Transaction, 0, len(items))
			for _, it := range items {
				tx := models.Transaction{
					TxHash:      it.TxHash,
					Wallet:      it.Owner,
					Timestamp:   it.BlockUnixTime,
					TxType:      it.Side,
					TokenAmount: it.TokenAmount,
					VolumeUSD:   it.VolumeUSD,
				}
				if !tx.Valid() {
					continue
				}
				txs = append(txs, tx)
			}
			mu.Lock()
			all = append(all, txs...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("birdeye trades: %w", err)
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].Timestamp < all[j].Timestamp })
	if len(all) > limit {
		all = all[:limit]
	}
	c.logger.Debug("fetched early trades",
		applogger.String("address", address),
		applogger.Int("count", len(all)),
	)
	return all, nil
}

func (c *Client) fetchTradePage(ctx context.Context, chain, address string, fromUnix int64, offset int) ([]tradeItem, error) {
	params := map[string]string{
		"address":   address,
		"tx_type":   "swap",
		"sort_type": "asc",
		"offset":    strconv.Itoa(offset),
		"limit":     strconv.Itoa(c.pageSize),
	}
	if fromUnix > 0 {
		params["after_time"] = strconv.FormatInt(fromUnix, 10)
	}

	var out apiEnvelope[tradePage]
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + "/defi/txs/token",
		Headers:     c.headers(chain),
		QueryParams: params,
	}, &out)
	if err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, fmt.Errorf("api error: %s", out.Message)
	}
	return out.Data.Items, nil
}

type creationData struct {
	TxHash        string `json:"txHash"`
	BlockUnixTime int64  `json:"blockUnixTime"`
}

// FetchCreationInfo returns the token's creation anchor, or (nil, nil)
// when the API has no record of it.
func (c *Client) FetchCreationInfo(ctx context.Context, chain, address string) (*models.CreationInfo, error) {
	var out apiEnvelope[*creationData]
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + "/defi/token_creation_info",
		Headers:     c.headers(chain),
		QueryParams: map[string]string{"address": address},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("birdeye creation info: %w", err)
	}
	if !out.Success || out.Data == nil || out.Data.BlockUnixTime == 0 {
		return nil, nil
	}
	return &models.CreationInfo{
		CreatedAt:     time.Unix(out.Data.BlockUnixTime, 0).UTC(),
		CreationTx:    out.Data.TxHash,
		BlockUnixTime: out.Data.BlockUnixTime,
	}, nil
}

type candleItem struct {
	UnixTime int64   `json:"unixTime"`
	Open     float64 `json:"o"`
	High     float64 `json:"h"`
	Low      float64 `json:"l"`
	Close    float64 `json:"c"`
	Volume   float64 `json:"v"`
}

type candlePage struct {
	Items []candleItem `json:"items"`
}

// FetchOHLCV returns daily candles covering [fromUnix, toUnix].
func (c *Client) FetchOHLCV(ctx context.Context, chain, address string, fromUnix, toUnix int64) ([]models.Candle, error) {
	var out apiEnvelope[candlePage]
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     c.baseURL + "/defi/ohlcv",
		Headers: c.headers(chain),
		QueryParams: map[string]string{
			"address":   address,
			"type":      "1D",
			"time_from": strconv.FormatInt(fromUnix, 10),
			"time_to":   strconv.FormatInt(toUnix, 10),
		},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("birdeye ohlcv: %w", err)
	}
	if !out.Success {
		return nil, fmt.Errorf("birdeye ohlcv: api error: %s", out.Message)
	}

	candles := make([]models.Candle, 0, len(out.Data.Items))
	for _, it := range out.Data.Items {
		candles = append(candles, models.Candle{
			UnixTime:  it.UnixTime,
			Open:      it.Open,
			High:      it.High,
			Low:       it.Low,
			Close:     it.Close,
			VolumeUSD: it.Volume,
		})
	}
	sort.Slice(candles, func(i, j int) bool { return candles[i].UnixTime < candles[j].UnixTime })
	return candles, nil
}
