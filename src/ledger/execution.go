package ledger

import (
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// SlippageModel yields the slippage, in percent, applied to one fill.
// maxPct is the configured ceiling.
type SlippageModel interface {
	Sample(maxPct decimal.Decimal) decimal.Decimal
}

// FixedSlippage always returns the same percentage, capped at maxPct.
type FixedSlippage decimal.Decimal

func (f FixedSlippage) Sample(maxPct decimal.Decimal) decimal.Decimal {
	v := decimal.Decimal(f)
	if v.GreaterThan(maxPct) {
		return maxPct
	}
	return v
}

// UniformSlippage draws uniformly from [Min, maxPct].
type UniformSlippage struct {
	Min decimal.Decimal

	mu  sync.Mutex
	rng *rand.Rand
}

func NewUniformSlippage(minPct decimal.Decimal, seed int64) *UniformSlippage {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &UniformSlippage{Min: minPct, rng: rand.New(rand.NewSource(seed))}
}

func (u *UniformSlippage) Sample(maxPct decimal.Decimal) decimal.Decimal {
	if !maxPct.GreaterThan(u.Min) {
		return decimal.Max(maxPct, decimal.Zero)
	}
	u.mu.Lock()
	f := u.rng.Float64()
	u.mu.Unlock()

	span := maxPct.Sub(u.Min)
	return u.Min.Add(span.Mul(decimal.NewFromFloat(f))).Round(4)
}
