package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountSnapshot is the persisted document. Every field of Position and
// TradeRecord round-trips through it.
type AccountSnapshot struct {
	VirtualBalance    decimal.Decimal   `json:"virtualBalance"`
	InitialBalance    decimal.Decimal   `json:"initialBalance"`
	Positions         []Position        `json:"positions"`
	TradeHistory      []TradeRecord     `json:"tradeHistory"`
	StartedAt         time.Time         `json:"startedAt"`
	TradingParameters TradingParameters `json:"tradingParameters"`
	Paused            bool              `json:"paused"`
	AutoExecution     bool              `json:"autoExecution"`
	SavedAt           time.Time         `json:"savedAt"`
}

// AccountSnapshotRow stores the snapshot document in a single upserted row.
type AccountSnapshotRow struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Payload   string    `gorm:"type:text;not null" json:"payload"`
	Positions int       `json:"positions"`
	Trades    int       `json:"trades"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AccountSnapshotRow) TableName() string {
	return "account_snapshots"
}
