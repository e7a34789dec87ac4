package tp_sl

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// InitialStop places the first stop stopLossPct below the execution price.
func InitialStop(executionPrice, stopLossPct decimal.Decimal) decimal.Decimal {
	return executionPrice.Mul(hundred.Sub(stopLossPct)).Div(hundred)
}

// TrailCandidate is the stop implied by a high-water mark.
func TrailCandidate(highWaterMark, trailPct decimal.Decimal) decimal.Decimal {
	return highWaterMark.Mul(hundred.Sub(trailPct)).Div(hundred)
}

// ComputeNextTrailingStop applies the long-only trailing stop for one price.
//
// - gate: price strictly above the current high-water mark
// - hwm: raised to price
// - candidate: hwm * (1 - trailPct/100)
// - update: SL = max(SL, candidate)
//
// The stop is never lowered and the high-water mark never decreases.
func ComputeNextTrailingStop(
	price decimal.Decimal,
	highWaterMark decimal.Decimal,
	currentSL decimal.Decimal,
	trailPct decimal.Decimal,
) (newHWM decimal.Decimal, newSL decimal.Decimal, moved bool) {
	if !price.GreaterThan(highWaterMark) {
		return highWaterMark, currentSL, false
	}

	candidate := TrailCandidate(price, trailPct)
	if candidate.GreaterThan(currentSL) {
		return price, candidate, true
	}
	return price, currentSL, false
}

// StopHit reports whether price has reached the stop.
func StopHit(price, stopLossPrice decimal.Decimal) bool {
	return price.LessThanOrEqual(stopLossPrice)
}
