package tp_sl

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"papertrader/src/model"
)

// TargetPrice is entry * (1 + pct/100).
func TargetPrice(entryPrice, pct decimal.Decimal) decimal.Decimal {
	return entryPrice.Mul(hundred.Add(pct)).Div(hundred)
}

// BuildLevels splits the position evenly across the given percentages. The
// last level absorbs the rounding so that fractions sum to exactly one.
func BuildLevels(pcts []decimal.Decimal) []model.TakeProfitLevel {
	if len(pcts) == 0 {
		return nil
	}
	sorted := append([]decimal.Decimal(nil), pcts...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	share := decimal.NewFromInt(1).Div(decimal.NewFromInt(int64(len(sorted))))
	levels := make([]model.TakeProfitLevel, 0, len(sorted))
	allocated := decimal.Zero
	for i, pct := range sorted {
		fraction := share
		if i == len(sorted)-1 {
			fraction = decimal.NewFromInt(1).Sub(allocated)
		}
		allocated = allocated.Add(fraction)
		levels = append(levels, model.TakeProfitLevel{Pct: pct, Fraction: fraction})
	}
	return levels
}

// DueLevels returns, in ascending order, the indexes of untriggered levels
// whose target is reached at price.
func DueLevels(levels []model.TakeProfitLevel, entryPrice, price decimal.Decimal) []int {
	var due []int
	for i, l := range levels {
		if l.Triggered {
			continue
		}
		if price.GreaterThanOrEqual(TargetPrice(entryPrice, l.Pct)) {
			due = append(due, i)
		}
	}
	return due
}

// ParseLevels reads a comma separated list such as "20,40,100" or
// "20%, 40%". Values must be positive; the result is sorted and unique.
func ParseLevels(raw string) ([]decimal.Decimal, error) {
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' || r == ';' })
	if len(parts) == 0 {
		return nil, fmt.Errorf("no take profit levels in %q", raw)
	}
	seen := make(map[string]bool, len(parts))
	out := make([]decimal.Decimal, 0, len(parts))
	for _, p := range parts {
		v, err := decimal.NewFromString(strings.TrimSuffix(strings.TrimSpace(p), "%"))
		if err != nil {
			return nil, fmt.Errorf("invalid take profit level %q: %w", p, err)
		}
		if !v.IsPositive() {
			return nil, fmt.Errorf("take profit level %q must be positive", p)
		}
		if seen[v.String()] {
			continue
		}
		seen[v.String()] = true
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LessThan(out[j]) })
	return out, nil
}

// ReasonFor renders the close reason of a take-profit level, e.g. take_profit_20.
func ReasonFor(level model.TakeProfitLevel) string {
	return model.ReasonTakeProfit + level.Pct.String()
}
