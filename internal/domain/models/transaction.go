package models

import "time"

// Transaction types observed in a token's trade feed.
const (
	TxTypeBuy  = "buy"
	TxTypeSell = "sell"
)

// Transaction is a single normalized token trade. Upstream feeds return
// heterogeneous rows; the ingestion boundary maps them into this fixed
// schema so downstream stages never branch on missing keys.
type Transaction struct {
	TxHash      string  `json:"tx_hash"`
	Wallet      string  `json:"wallet"`
	Timestamp   float64 `json:"timestamp"` // unix seconds, sub-second precision preserved
	TxType      string  `json:"tx_type"`   // "buy" | "sell"
	TokenAmount float64 `json:"token_amount"`
	VolumeUSD   float64 `json:"volume_usd"`
}

// Valid reports whether the record carries every field the engine needs.
// Malformed rows are skipped at ingestion rather than aborting the batch.
func (t Transaction) Valid() bool {
	return t.TxHash != "" && t.Wallet != "" && t.Timestamp > 0 &&
		(t.TxType == TxTypeBuy || t.TxType == TxTypeSell)
}

// CreationInfo anchors the analysis window at the token's creation.
type CreationInfo struct {
	CreatedAt     time.Time `json:"created_at"`
	CreationTx    string    `json:"creation_tx"`
	BlockUnixTime int64     `json:"block_unix_time"`
}

// HolderStats is the optional holder-distribution snapshot used by the
// present-impact analyzer. Absence is not an error (unsupported chain).
type HolderStats struct {
	TotalHolders          int     `json:"total_holders"`
	Top10ConcentrationPct float64 `json:"top10_concentration_pct"`
	HolderChange24hPct    float64 `json:"holder_change_24h_pct"`
}

// Candle is a single OHLCV record from the market-data provider.
type Candle struct {
	UnixTime  int64   `json:"unix_time"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	VolumeUSD float64 `json:"volume_usd"`
}
