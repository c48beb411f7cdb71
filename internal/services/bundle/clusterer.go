package bundle

import (
	"fmt"

	"BundleScope/internal/domain/models"
)

// span is a candidate window [Start, End) over the ascending trade slice.
type span struct {
	Start, End int
}

// WindowClusterer groups a transaction sequence into candidate time-windowed
// clusters. The anchor advances by exactly one transaction, so windows may
// overlap: staggered multi-wave bundles are caught even when they share
// members.
type WindowClusterer struct {
	windowSeconds float64
	minTrades     int
}

func NewWindowClusterer(windowSeconds float64, minTrades int) (*WindowClusterer, error) {
	if windowSeconds <= 0 {
		return nil, fmt.Errorf("window seconds must be positive, got %v", windowSeconds)
	}
	if minTrades < 2 {
		return nil, fmt.Errorf("min trades per cluster must be at least 2, got %d", minTrades)
	}
	return &WindowClusterer{windowSeconds: windowSeconds, minTrades: minTrades}, nil
}

// Windows returns every candidate window with at least minTrades members.
// Input must be ascending by timestamp. Linear via two pointers: the window
// end only moves forward because anchors are non-decreasing.
//
// A window ending where the previous emitted window ended is a pure suffix
// of it and is skipped; only windows that reach new transactions become
// candidates. Staggered waves still produce overlapping windows because
// each wave extends the end.
func (c *WindowClusterer) Windows(txs []models.Transaction) []span {
	var out []span
	j := 0
	lastEnd := -1
	for i := range txs {
		if j < i {
			j = i
		}
		limit := txs[i].Timestamp + c.windowSeconds
		for j < len(txs) && txs[j].Timestamp <= limit {
			j++
		}
		if j-i >= c.minTrades && j != lastEnd {
			out = append(out, span{Start: i, End: j})
			lastEnd = j
		}
	}
	return out
}
