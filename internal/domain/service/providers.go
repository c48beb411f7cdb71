package service

import (
	"context"

	"BundleScope/internal/domain/models"
)

// TransactionFeed returns a token's earliest trades ascending by timestamp,
// possibly fewer than requested.
type TransactionFeed interface {
	FetchEarlyTrades(ctx context.Context, chain, address string, fromUnix int64, limit int) ([]models.Transaction, error)
}

// CreationInfoProvider looks up the creation anchor for a token.
// A (nil, nil) return means the anchor is unknown, which is not an error.
type CreationInfoProvider interface {
	FetchCreationInfo(ctx context.Context, chain, address string) (*models.CreationInfo, error)
}

// HolderStatsProvider returns the current holder-distribution snapshot.
// A (nil, nil) return means holder data is unavailable for the chain.
type HolderStatsProvider interface {
	FetchHolderStats(ctx context.Context, chain, address string) (*models.HolderStats, error)
}

// OHLCVProvider returns daily candles for [fromUnix, toUnix].
type OHLCVProvider interface {
	FetchOHLCV(ctx context.Context, chain, address string, fromUnix, toUnix int64) ([]models.Candle, error)
}
