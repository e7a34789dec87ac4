package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"papertrader/src/model"
	"papertrader/src/tp_sl"
	"papertrader/src/utils"
)

// PartialClose exits the slice of take-profit level levelIndex. The slice is
// fraction * initial quantity; the last untriggered level sells whatever
// remains, in which case the record is the terminal full exit and the
// position is closed.
func (l *Ledger) PartialClose(ctx context.Context, positionID string, levelIndex int, exitQuotePrice decimal.Decimal, reason string) (model.TradeRecord, error) {
	if !exitQuotePrice.IsPositive() {
		return model.TradeRecord{}, opError("partial_close", "", fmt.Errorf("%w: exit price %s", ErrInvalidParameter, exitQuotePrice))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	pos, ok := l.positions[positionID]
	if !ok {
		return model.TradeRecord{}, opError("partial_close", "", fmt.Errorf("%w: %s", ErrPositionNotFound, positionID))
	}
	if levelIndex < 0 || levelIndex >= len(pos.TakeProfitLevels) {
		return model.TradeRecord{}, opError("partial_close", pos.TokenID, fmt.Errorf("%w: level %d", ErrInvalidParameter, levelIndex))
	}
	level := pos.TakeProfitLevels[levelIndex]
	if level.Triggered {
		return model.TradeRecord{}, opError("partial_close", pos.TokenID, fmt.Errorf("%w: level %s", ErrLevelAlreadyTriggered, level.Pct))
	}
	if reason == "" {
		reason = tp_sl.ReasonFor(level)
	}

	amount := level.Fraction.Mul(pos.InitialQuantity)
	final := pos.UntriggeredLevels() == 1 || amount.GreaterThanOrEqual(pos.Quantity)

	pos.TakeProfitLevels[levelIndex].Triggered = true
	if final {
		return l.exitLocked(ctx, pos, pos.Quantity, pos.RemainingCostUsd(), exitQuotePrice, reason, model.TradeKindFullExit), nil
	}
	released := pos.CostBasisUsd.Mul(amount).Div(pos.InitialQuantity)
	return l.exitLocked(ctx, pos, amount, released, exitQuotePrice, reason, model.TradeKindPartialExit), nil
}

// FullClose exits the remaining quantity and removes the position.
func (l *Ledger) FullClose(ctx context.Context, positionID string, exitQuotePrice decimal.Decimal, reason string) (model.TradeRecord, error) {
	if !exitQuotePrice.IsPositive() {
		return model.TradeRecord{}, opError("full_close", "", fmt.Errorf("%w: exit price %s", ErrInvalidParameter, exitQuotePrice))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	pos, ok := l.positions[positionID]
	if !ok {
		return model.TradeRecord{}, opError("full_close", "", fmt.Errorf("%w: %s", ErrPositionNotFound, positionID))
	}
	if reason == "" {
		reason = model.ReasonManualClose
	}
	return l.exitLocked(ctx, pos, pos.Quantity, pos.RemainingCostUsd(), exitQuotePrice, reason, model.TradeKindFullExit), nil
}

// exitLocked sells amount at the quote less slippage, credits net proceeds
// and appends the exit record. Caller holds l.mu.
func (l *Ledger) exitLocked(
	ctx context.Context,
	pos *model.Position,
	amount decimal.Decimal,
	releasedCost decimal.Decimal,
	exitQuotePrice decimal.Decimal,
	reason string,
	kind model.TradeKind,
) model.TradeRecord {
	now := l.now().UTC()
	slippage := l.slippage.Sample(l.params.MaxSlippagePct)
	exitPrice := exitQuotePrice.Mul(hundred.Sub(slippage)).Div(hundred)
	gross := amount.Mul(exitPrice)
	fee := gross.Mul(l.params.FeePct).Div(hundred)
	net := gross.Sub(fee)
	pnl := net.Sub(releasedCost)
	pnlPct := decimal.Zero
	if releasedCost.IsPositive() {
		pnlPct = pnl.Div(releasedCost).Mul(hundred)
	}

	l.balance = l.balance.Add(net)
	pos.Quantity = pos.Quantity.Sub(amount)
	pos.ReleasedCostUsd = pos.ReleasedCostUsd.Add(releasedCost)
	pos.LastPrice = exitQuotePrice
	pos.LastPriceAt = now

	if kind == model.TradeKindPartialExit {
		pos.Status = model.PositionStatusClosing
	}
	if kind == model.TradeKindFullExit {
		pos.Quantity = decimal.Zero
		pos.Status = model.PositionStatusClosed
		delete(l.positions, pos.ID)
		delete(l.byToken, pos.TokenID)
	}

	rec := model.TradeRecord{
		RecordID:      utils.NewRecordID(now),
		PositionID:    pos.ID,
		TokenID:       pos.TokenID,
		Kind:          kind,
		Price:         exitPrice,
		Amount:        amount,
		ValueUsd:      net,
		FeeUsd:        fee,
		RealizedPnl:   &pnl,
		PnlPercentage: &pnlPct,
		Timestamp:     now,
		Reason:        reason,
	}
	l.appendLocked(rec)

	l.logger.WithFields(logrus.Fields{
		"token":    pos.TokenID,
		"position": pos.ID,
		"kind":     kind,
		"reason":   reason,
		"price":    exitPrice.String(),
		"amount":   amount.String(),
		"pnl":      pnl.StringFixed(2),
	}).Info("position exit")

	_ = l.persistLocked(ctx, string(kind))
	return rec
}
