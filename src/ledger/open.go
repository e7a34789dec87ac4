package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"papertrader/src/metrics"
	"papertrader/src/model"
	"papertrader/src/tp_sl"
	"papertrader/src/utils"
)

type OpenRequest struct {
	TokenID          string
	SizedAmountUsd   decimal.Decimal
	QuotePrice       decimal.Decimal
	FeePct           decimal.Decimal
	SlippagePct      decimal.Decimal
	StopLossPct      decimal.Decimal
	TakeProfitLevels []model.TakeProfitLevel
	Reason           string
	TxID             string
}

// Validate reports whether the request could be opened, without touching
// the account.
func (r OpenRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.TokenID) == "":
		return fmt.Errorf("%w: token id is empty", ErrInvalidParameter)
	case !r.SizedAmountUsd.IsPositive():
		return fmt.Errorf("%w: sized amount %s", ErrInvalidParameter, r.SizedAmountUsd)
	case !r.QuotePrice.IsPositive():
		return fmt.Errorf("%w: quote price %s", ErrInvalidParameter, r.QuotePrice)
	case r.FeePct.IsNegative() || r.FeePct.GreaterThanOrEqual(hundred):
		return fmt.Errorf("%w: fee %s%%", ErrInvalidParameter, r.FeePct)
	case r.SlippagePct.IsNegative() || r.SlippagePct.GreaterThanOrEqual(hundred):
		return fmt.Errorf("%w: slippage %s%%", ErrInvalidParameter, r.SlippagePct)
	case !r.StopLossPct.IsPositive() || r.StopLossPct.GreaterThanOrEqual(hundred):
		return fmt.Errorf("%w: stop loss %s%%", ErrInvalidParameter, r.StopLossPct)
	}
	if len(r.TakeProfitLevels) == 0 {
		return nil
	}
	sum := decimal.Zero
	prev := decimal.Zero
	for i, lvl := range r.TakeProfitLevels {
		if !lvl.Pct.GreaterThan(prev) || !lvl.Fraction.IsPositive() || lvl.Triggered {
			return fmt.Errorf("%w: take profit level %d", ErrInvalidParameter, i)
		}
		prev = lvl.Pct
		sum = sum.Add(lvl.Fraction)
	}
	if !sum.Equal(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: take profit fractions sum to %s", ErrInvalidParameter, sum)
	}
	return nil
}

// Open debits the sized amount and creates the position:
//
//	executionPrice = quote * (1 + slippage/100)
//	fee            = sized * feePct/100
//	costBasis      = sized - fee
//	quantity       = costBasis / executionPrice
//	stop           = executionPrice * (1 - stopLossPct/100)
func (l *Ledger) Open(ctx context.Context, req OpenRequest) (model.Position, error) {
	if err := req.Validate(); err != nil {
		return model.Position{}, opError("open", req.TokenID, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, open := l.byToken[req.TokenID]; open {
		return model.Position{}, opError("open", req.TokenID, ErrDuplicatePosition)
	}
	if req.SizedAmountUsd.GreaterThan(l.balance) {
		return model.Position{}, opError("open", req.TokenID,
			fmt.Errorf("%w: need %s, have %s", ErrInsufficientBalance, req.SizedAmountUsd, l.balance))
	}

	now := l.now().UTC()
	executionPrice := req.QuotePrice.Mul(hundred.Add(req.SlippagePct)).Div(hundred)
	fee := req.SizedAmountUsd.Mul(req.FeePct).Div(hundred)
	costBasis := req.SizedAmountUsd.Sub(fee)
	quantity := costBasis.Div(executionPrice)

	levels := make([]model.TakeProfitLevel, len(req.TakeProfitLevels))
	copy(levels, req.TakeProfitLevels)

	pos := &model.Position{
		ID:               utils.NewPositionID(),
		TokenID:          req.TokenID,
		EntryPrice:       executionPrice,
		EntryTime:        now,
		Quantity:         quantity,
		InitialQuantity:  quantity,
		SizedAmountUsd:   req.SizedAmountUsd,
		CostBasisUsd:     costBasis,
		ReleasedCostUsd:  decimal.Zero,
		FeeUsd:           fee,
		StopLossPrice:    tp_sl.InitialStop(executionPrice, req.StopLossPct),
		HighWaterMark:    executionPrice,
		TakeProfitLevels: levels,
		Status:           model.PositionStatusOpen,
		EntryTxID:        req.TxID,
		LastPrice:        req.QuotePrice,
		LastPriceAt:      now,
	}

	reason := req.Reason
	if reason == "" {
		reason = model.ReasonSignal
	}

	l.balance = l.balance.Sub(req.SizedAmountUsd)
	l.positions[pos.ID] = pos
	l.byToken[pos.TokenID] = pos.ID
	l.appendLocked(model.TradeRecord{
		RecordID:   utils.NewRecordID(now),
		PositionID: pos.ID,
		TokenID:    pos.TokenID,
		Kind:       model.TradeKindOpen,
		Price:      executionPrice,
		Amount:     quantity,
		ValueUsd:   req.SizedAmountUsd,
		FeeUsd:     fee,
		Timestamp:  now,
		Reason:     reason,
		TxID:       req.TxID,
	})

	l.logger.WithFields(logrus.Fields{
		"token":    pos.TokenID,
		"position": pos.ID,
		"price":    executionPrice.String(),
		"quantity": quantity.String(),
		"sized":    req.SizedAmountUsd.StringFixed(2),
		"stop":     pos.StopLossPrice.String(),
	}).Info("position opened")

	_ = l.persistLocked(ctx, "open")
	return pos.Clone(), nil
}

func (l *Ledger) appendLocked(rec model.TradeRecord) {
	l.history = append(l.history, rec)
	metrics.TradesTotal.WithLabelValues(string(rec.Kind), rec.Reason).Inc()
	metrics.VirtualBalance.Set(l.balance.InexactFloat64())
	metrics.OpenPositions.Set(float64(len(l.positions)))
}
