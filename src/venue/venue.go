package venue

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"papertrader/src/model"
)

// ErrPriceUnavailable is transient: callers retry, they never close on it.
var ErrPriceUnavailable = errors.New("price unavailable")

type PriceOracle interface {
	GetPrice(ctx context.Context, tokenID string) (decimal.Decimal, error)
}

type SafetyChecker interface {
	CheckSafety(ctx context.Context, tokenID string) (model.SafetyReport, error)
}

type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, req model.OrderRequest) (model.OrderReceipt, error)
}

// Venue is everything the executor needs from the market side.
type Venue interface {
	PriceOracle
	SafetyChecker
	OrderSubmitter
}
