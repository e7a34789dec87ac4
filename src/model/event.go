package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventPositionOpened EventType = "position_opened"
	EventStopRaised     EventType = "stop_raised"
	EventTakeProfit     EventType = "take_profit"
	EventPositionClosed EventType = "position_closed"
	EventPriceStale     EventType = "price_stale"
	EventPriceRecovered EventType = "price_recovered"
	EventSignalRejected EventType = "signal_rejected"
	EventAccountReset   EventType = "account_reset"
)

// Event is pushed to live subscribers and notification sinks.
type Event struct {
	Type          EventType        `json:"type"`
	PositionID    string           `json:"positionId,omitempty"`
	TokenID       string           `json:"tokenId,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	StopLossPrice *decimal.Decimal `json:"stopLossPrice,omitempty"`
	Record        *TradeRecord     `json:"record,omitempty"`
	Message       string           `json:"message,omitempty"`
	Timestamp     time.Time        `json:"timestamp"`
}
