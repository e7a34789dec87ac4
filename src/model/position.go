package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PositionStatus moves open -> closing once a take-profit level has exited
// part of the position, and closing -> closed on the terminal exit.
type PositionStatus string

const (
	PositionStatusOpen    PositionStatus = "open"
	PositionStatusClosing PositionStatus = "closing"
	PositionStatusClosed  PositionStatus = "closed"
)

// TakeProfitLevel is one exit target. Fraction refers to the position's
// initial quantity, not the remaining one.
type TakeProfitLevel struct {
	Pct       decimal.Decimal `json:"pct"`
	Fraction  decimal.Decimal `json:"fraction"`
	Triggered bool            `json:"triggered"`
}

// Position is one open (or partially exited) exposure to a token.
type Position struct {
	ID               string            `json:"id"`
	TokenID          string            `json:"tokenId"`
	EntryPrice       decimal.Decimal   `json:"entryPrice"`
	EntryTime        time.Time         `json:"entryTime"`
	Quantity         decimal.Decimal   `json:"quantity"`
	InitialQuantity  decimal.Decimal   `json:"initialQuantity"`
	SizedAmountUsd   decimal.Decimal   `json:"sizedAmountUsd"`
	CostBasisUsd     decimal.Decimal   `json:"costBasisUsd"`
	ReleasedCostUsd  decimal.Decimal   `json:"releasedCostUsd"`
	FeeUsd           decimal.Decimal   `json:"feeUsd"`
	StopLossPrice    decimal.Decimal   `json:"stopLossPrice"`
	HighWaterMark    decimal.Decimal   `json:"highWaterMark"`
	TakeProfitLevels []TakeProfitLevel `json:"takeProfitLevels"`
	Status           PositionStatus    `json:"status"`
	EntryTxID        string            `json:"entryTxId,omitempty"`

	// observability, refreshed by the monitor through the ledger
	LastPrice   decimal.Decimal `json:"lastPrice"`
	LastPriceAt time.Time       `json:"lastPriceAt"`
	Stale       bool            `json:"stale"`
}

// Clone returns a deep copy; the levels slice is not shared.
func (p Position) Clone() Position {
	out := p
	if p.TakeProfitLevels != nil {
		out.TakeProfitLevels = make([]TakeProfitLevel, len(p.TakeProfitLevels))
		copy(out.TakeProfitLevels, p.TakeProfitLevels)
	}
	return out
}

// TriggeredFraction sums the fractions of all triggered levels.
func (p Position) TriggeredFraction() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range p.TakeProfitLevels {
		if l.Triggered {
			sum = sum.Add(l.Fraction)
		}
	}
	return sum
}

func (p Position) AllLevelsTriggered() bool {
	if len(p.TakeProfitLevels) == 0 {
		return false
	}
	for _, l := range p.TakeProfitLevels {
		if !l.Triggered {
			return false
		}
	}
	return true
}

// UntriggeredLevels counts the levels still waiting for their target.
func (p Position) UntriggeredLevels() int {
	n := 0
	for _, l := range p.TakeProfitLevels {
		if !l.Triggered {
			n++
		}
	}
	return n
}

// RemainingCostUsd is the part of the cost basis still tied to open quantity.
func (p Position) RemainingCostUsd() decimal.Decimal {
	return p.CostBasisUsd.Sub(p.ReleasedCostUsd)
}

// MarkPrice is the last observed price, or the entry price before the
// first tick.
func (p Position) MarkPrice() decimal.Decimal {
	if p.LastPrice.IsPositive() {
		return p.LastPrice
	}
	return p.EntryPrice
}
