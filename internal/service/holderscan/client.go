package holderscan

import (
	"context"
	"fmt"

	"BundleScope/internal/domain/models"
	domsvc "BundleScope/internal/domain/service"
	xhttp "BundleScope/pkg/http"
	applogger "BundleScope/pkg/logger"
)

// Client talks to the HolderScan API for holder-distribution snapshots.
// Chains outside the supported set resolve to (nil, nil) so the caller
// falls back to pattern-only scoring without treating it as a failure.
type Client struct {
	http    *xhttp.Client
	logger  *applogger.Logger
	apiKey  string
	baseURL string
	chains  map[string]struct{}
}

var _ domsvc.HolderStatsProvider = (*Client)(nil)

// New creates a HolderScan API client. chains lists the networks the
// account's plan supports.
func New(httpClient *xhttp.Client, logger *applogger.Logger, apiKey, baseURL string, chains []string) *Client {
	supported := make(map[string]struct{}, len(chains))
	for _, ch := range chains {
		supported[ch] = struct{}{}
	}
	return &Client{
		http:    httpClient,
		logger:  logger.Component("holderscan"),
		apiKey:  apiKey,
		baseURL: baseURL,
		chains:  supported,
	}
}

type holderBreakdown struct {
	TotalHolders int     `json:"total_holders"`
	Top10Pct     float64 `json:"top10_supply_pct"`
}

type holderDeltas struct {
	Day float64 `json:"holders_change_24h_pct"`
}

type statsResponse struct {
	Breakdown holderBreakdown `json:"breakdown"`
	Deltas    holderDeltas    `json:"deltas"`
}

// FetchHolderStats returns the current holder snapshot for supported
// chains and (nil, nil) otherwise.
func (c *Client) FetchHolderStats(ctx context.Context, chain, address string) (*models.HolderStats, error) {
	if _, ok := c.chains[chain]; !ok {
		c.logger.Debug("chain not supported, skipping holder stats",
			applogger.String("chain", chain),
		)
		return nil, nil
	}

	var out statsResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/v0/%s/tokens/%s/stats", c.baseURL, chain, address),
		Headers: map[string]string{
			"x-api-key": c.apiKey,
		},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("holderscan stats: %w", err)
	}

	return &models.HolderStats{
		TotalHolders:          out.Breakdown.TotalHolders,
		Top10ConcentrationPct: out.Breakdown.Top10Pct,
		HolderChange24hPct:    out.Deltas.Day,
	}, nil
}
