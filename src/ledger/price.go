package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"papertrader/src/model"
	"papertrader/src/tp_sl"
)

// PriceUpdate is what RecordPrice changed.
type PriceUpdate struct {
	Position     model.Position
	StopRaised   bool
	StaleCleared bool
}

// RecordPrice stores an observed price and ratchets the high-water mark and
// trailing stop. Monitors never touch positions directly; this is their only
// write path besides the closes. A good price also clears the stale flag.
func (l *Ledger) RecordPrice(ctx context.Context, positionID string, price, trailPct decimal.Decimal) (PriceUpdate, error) {
	if !price.IsPositive() {
		return PriceUpdate{}, opError("record_price", "", fmt.Errorf("%w: price %s", ErrInvalidParameter, price))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	pos, ok := l.positions[positionID]
	if !ok {
		return PriceUpdate{}, opError("record_price", "", fmt.Errorf("%w: %s", ErrPositionNotFound, positionID))
	}

	prevHWM := pos.HighWaterMark
	hwm, sl, raised := tp_sl.ComputeNextTrailingStop(price, pos.HighWaterMark, pos.StopLossPrice, trailPct)
	pos.HighWaterMark = hwm
	pos.StopLossPrice = sl
	pos.LastPrice = price
	pos.LastPriceAt = l.now().UTC()

	update := PriceUpdate{StopRaised: raised, StaleCleared: pos.Stale}
	pos.Stale = false

	// only the ratchet is durable state; last price is observability
	if raised || !hwm.Equal(prevHWM) {
		_ = l.persistLocked(ctx, "record_price")
	}
	update.Position = pos.Clone()
	return update, nil
}

// MarkStale sets the observability flag only. It reports whether the flag
// changed.
func (l *Ledger) MarkStale(positionID string, stale bool) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos, ok := l.positions[positionID]
	if !ok {
		return false, opError("mark_stale", "", fmt.Errorf("%w: %s", ErrPositionNotFound, positionID))
	}
	if pos.Stale == stale {
		return false, nil
	}
	pos.Stale = stale
	return true, nil
}
