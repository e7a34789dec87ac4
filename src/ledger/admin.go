package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"papertrader/src/model"
)

// Reset replaces the account with a fresh one holding initialBalance. Open
// positions and the trade log of the old account are discarded; callers stop
// the position monitors first.
func (l *Ledger) Reset(ctx context.Context, initialBalance decimal.Decimal) error {
	if !initialBalance.IsPositive() {
		return opError("reset", "", fmt.Errorf("%w: initial balance %s", ErrInvalidParameter, initialBalance))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	dropped := len(l.positions)
	l.balance = initialBalance
	l.initialBalance = initialBalance
	l.positions = make(map[string]*model.Position)
	l.byToken = make(map[string]string)
	l.history = nil
	l.createdAt = l.now().UTC()

	l.logger.WithFields(logrus.Fields{
		"balance":          initialBalance.StringFixed(2),
		"droppedPositions": dropped,
	}).Warn("account reset")

	_ = l.persistLocked(ctx, "reset")
	return nil
}

func (l *Ledger) UpdateTradingParameters(ctx context.Context, params model.TradingParameters) error {
	if err := params.Validate(); err != nil {
		return opError("update_parameters", "", fmt.Errorf("%w: %v", ErrInvalidParameter, err))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.params = params.Clone()
	l.logger.WithFields(logrus.Fields{
		"positionSizePct": params.PositionSizePct.String(),
		"stopLossPct":     params.InitialStopLossPct.String(),
		"trailingStopPct": params.TrailingStopPct.String(),
	}).Info("trading parameters updated")

	_ = l.persistLocked(ctx, "update_parameters")
	return nil
}

// SetTradingMode updates the flags that are not nil.
func (l *Ledger) SetTradingMode(ctx context.Context, paused, autoExecution *bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if paused != nil {
		l.paused = *paused
	}
	if autoExecution != nil {
		l.autoExecution = *autoExecution
	}
	l.logger.WithFields(logrus.Fields{
		"paused":        l.paused,
		"autoExecution": l.autoExecution,
	}).Info("trading mode updated")

	_ = l.persistLocked(ctx, "set_trading_mode")
	return nil
}
