package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
)

// TradingParameters is the typed trading configuration. All percentages are
// in percent units: 3 means 3%.
type TradingParameters struct {
	PositionSizePct    decimal.Decimal   `json:"positionSizePct"`
	InitialStopLossPct decimal.Decimal   `json:"initialStopLossPct"`
	TrailingStopPct    decimal.Decimal   `json:"trailingStopPct"`
	TakeProfitPcts     []decimal.Decimal `json:"takeProfitPcts"`
	FeePct             decimal.Decimal   `json:"feePct"`
	MaxSlippagePct     decimal.Decimal   `json:"maxSlippagePct"`
	MinLiquidityUsd    decimal.Decimal   `json:"minLiquidityUsd"`
	MaxBuyTaxPct       decimal.Decimal   `json:"maxBuyTaxPct"`
	MaxSellTaxPct      decimal.Decimal   `json:"maxSellTaxPct"`
	MaxTopHolderPct    decimal.Decimal   `json:"maxTopHolderPct"`
	MinHolderCount     int               `json:"minHolderCount"`
	HoneypotCheck      bool              `json:"honeypotCheck"`
}

// DefaultTradingParameters returns the named defaults used when nothing is
// configured.
func DefaultTradingParameters() TradingParameters {
	return TradingParameters{
		PositionSizePct:    decimal.NewFromInt(3),
		InitialStopLossPct: decimal.NewFromInt(30),
		TrailingStopPct:    decimal.NewFromInt(5),
		TakeProfitPcts:     []decimal.Decimal{decimal.NewFromInt(20), decimal.NewFromInt(40), decimal.NewFromInt(100)},
		FeePct:             decimal.RequireFromString("0.25"),
		MaxSlippagePct:     decimal.NewFromInt(15),
		MinLiquidityUsd:    decimal.NewFromInt(50000),
		MaxBuyTaxPct:       decimal.NewFromInt(10),
		MaxSellTaxPct:      decimal.NewFromInt(15),
		MaxTopHolderPct:    decimal.NewFromInt(50),
		MinHolderCount:     50,
		HoneypotCheck:      true,
	}
}

// Validate reports the first field outside its legal range.
func (p TradingParameters) Validate() error {
	var errs []error
	if !inOpenClosed(p.PositionSizePct) {
		errs = append(errs, fmt.Errorf("positionSizePct %s must be in (0, 100]", p.PositionSizePct))
	}
	if !p.InitialStopLossPct.IsPositive() || p.InitialStopLossPct.GreaterThanOrEqual(hundred) {
		errs = append(errs, fmt.Errorf("initialStopLossPct %s must be in (0, 100)", p.InitialStopLossPct))
	}
	if !p.TrailingStopPct.IsPositive() || p.TrailingStopPct.GreaterThanOrEqual(hundred) {
		errs = append(errs, fmt.Errorf("trailingStopPct %s must be in (0, 100)", p.TrailingStopPct))
	}
	if p.FeePct.IsNegative() || p.FeePct.GreaterThanOrEqual(hundred) {
		errs = append(errs, fmt.Errorf("feePct %s must be in [0, 100)", p.FeePct))
	}
	if p.MaxSlippagePct.IsNegative() || p.MaxSlippagePct.GreaterThanOrEqual(hundred) {
		errs = append(errs, fmt.Errorf("maxSlippagePct %s must be in [0, 100)", p.MaxSlippagePct))
	}
	if len(p.TakeProfitPcts) == 0 {
		errs = append(errs, errors.New("takeProfitPcts must not be empty"))
	}
	prev := decimal.Zero
	for i, pct := range p.TakeProfitPcts {
		if !pct.GreaterThan(prev) {
			errs = append(errs, fmt.Errorf("takeProfitPcts[%d] %s must be positive and ascending", i, pct))
			break
		}
		prev = pct
	}
	if p.MinLiquidityUsd.IsNegative() || p.MaxBuyTaxPct.IsNegative() || p.MaxSellTaxPct.IsNegative() || p.MaxTopHolderPct.IsNegative() || p.MinHolderCount < 0 {
		errs = append(errs, errors.New("safety thresholds must not be negative"))
	}
	return errors.Join(errs...)
}

// Clone copies the parameters including the level slice.
func (p TradingParameters) Clone() TradingParameters {
	out := p
	out.TakeProfitPcts = append([]decimal.Decimal(nil), p.TakeProfitPcts...)
	return out
}

func inOpenClosed(v decimal.Decimal) bool {
	return v.IsPositive() && v.LessThanOrEqual(hundred)
}

// AccountSummary is the dashboard aggregate.
type AccountSummary struct {
	VirtualBalance     decimal.Decimal `json:"virtualBalance"`
	InitialBalance     decimal.Decimal `json:"initialBalance"`
	OpenPositionsValue decimal.Decimal `json:"openPositionsValue"`
	TotalValue         decimal.Decimal `json:"totalValue"`
	TotalProfitLoss    decimal.Decimal `json:"totalProfitLoss"`
	TotalProfitLossPct decimal.Decimal `json:"totalProfitLossPct"`
	WinRate            decimal.Decimal `json:"winRate"`
	TotalTrades        int             `json:"totalTrades"`
	WinTrades          int             `json:"winTrades"`
	LossTrades         int             `json:"lossTrades"`
	OpenPositions      int             `json:"openPositions"`
	DaysRunning        int             `json:"daysRunning"`
	Paused             bool            `json:"paused"`
	AutoExecution      bool            `json:"autoExecution"`
	Dirty              bool            `json:"dirty"`
}

// OpenPositionView is one row of the open positions listing.
type OpenPositionView struct {
	PositionID    string          `json:"positionId"`
	TokenID       string          `json:"tokenId"`
	EntryPrice    decimal.Decimal `json:"entryPrice"`
	CurrentPrice  decimal.Decimal `json:"currentPrice"`
	Quantity      decimal.Decimal `json:"quantity"`
	ValueUsd      decimal.Decimal `json:"valueUsd"`
	PnlPercentage decimal.Decimal `json:"pnlPercentage"`
	StopLossPrice decimal.Decimal `json:"stopLossPrice"`
	HighWaterMark decimal.Decimal `json:"highWaterMark"`
	EntryTime     time.Time       `json:"entryTime"`
	Stale         bool            `json:"stale"`
}

type HistoryPage struct {
	Trades []TradeRecord `json:"trades"`
	Total  int           `json:"total"`
}
