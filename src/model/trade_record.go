package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TradeKind string

const (
	TradeKindOpen        TradeKind = "open"
	TradeKindPartialExit TradeKind = "partial_exit"
	TradeKindFullExit    TradeKind = "full_exit"
)

// Close reasons written to TradeRecord.Reason.
const (
	ReasonSignal      = "signal"
	ReasonStopLoss    = "stop_loss"
	ReasonManualClose = "manual_close"
	ReasonTakeProfit  = "take_profit_"
)

// TradeRecord is an immutable ledger entry. One is appended per open and
// per exit; records are never edited after creation.
type TradeRecord struct {
	RecordID      string           `json:"recordId"`
	PositionID    string           `json:"positionId"`
	TokenID       string           `json:"tokenId"`
	Kind          TradeKind        `json:"kind"`
	Price         decimal.Decimal  `json:"price"`
	Amount        decimal.Decimal  `json:"amount"`
	ValueUsd      decimal.Decimal  `json:"valueUsd"`
	FeeUsd        decimal.Decimal  `json:"feeUsd"`
	RealizedPnl   *decimal.Decimal `json:"realizedPnl,omitempty"`
	PnlPercentage *decimal.Decimal `json:"pnlPercentage,omitempty"`
	Timestamp     time.Time        `json:"timestamp"`
	Reason        string           `json:"reason"`
	TxID          string           `json:"txId,omitempty"`
}

func (r TradeRecord) IsExit() bool {
	return r.Kind == TradeKindPartialExit || r.Kind == TradeKindFullExit
}
