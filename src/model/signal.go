package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Signal is a structured trade request handed over by the ingestion side.
// Nil or empty requested values mean "use the configured default".
type Signal struct {
	TokenID                   string            `json:"tokenId"`
	DedupKey                  string            `json:"dedupKey,omitempty"`
	RequestedPositionPct      *decimal.Decimal  `json:"requestedPositionPct,omitempty"`
	RequestedStopLossPct      *decimal.Decimal  `json:"requestedStopLossPct,omitempty"`
	RequestedTakeProfitLevels []decimal.Decimal `json:"requestedTakeProfitLevels,omitempty"`
	Source                    string            `json:"source,omitempty"`
	ReceivedAt                time.Time         `json:"receivedAt"`
}
