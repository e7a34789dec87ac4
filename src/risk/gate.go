package risk

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"papertrader/src/model"
	"papertrader/src/tp_sl"
	"papertrader/src/venue"
)

var hundred = decimal.NewFromInt(100)

// AccountView is the read side of the ledger the gate sizes against.
type AccountView interface {
	Balance() decimal.Decimal
	Parameters() model.TradingParameters
}

// Decision is the outcome of one evaluation. When Accept is false Err wraps
// one of the package sentinels and Reasons itemizes what failed.
type Decision struct {
	Accept           bool
	TokenID          string
	PositionPct      decimal.Decimal
	SizedAmountUsd   decimal.Decimal
	StopLossPct      decimal.Decimal
	TakeProfitLevels []model.TakeProfitLevel
	Reasons          []string
	Safety           *model.SafetyReport
	Err              error
}

func reject(d Decision, sentinel error, reasons ...string) Decision {
	d.Accept = false
	d.Reasons = append(d.Reasons, reasons...)
	d.Err = fmt.Errorf("%w: %s", sentinel, strings.Join(d.Reasons, "; "))
	return d
}

// Gate performs pre-trade validation. It never mutates the account.
type Gate struct {
	account AccountView
	safety  venue.SafetyChecker
	logger  *logrus.Entry
}

func NewGate(logger *logrus.Entry, account AccountView, safety venue.SafetyChecker) *Gate {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Gate{account: account, safety: safety, logger: logger.WithField("component", "RiskGate")}
}

// CheckSignal validates the requested overrides of a signal. It needs no
// account state, so callers can run it before spending a dedup key.
func CheckSignal(sig model.Signal) error {
	if reason := signalProblem(sig); reason != "" {
		return fmt.Errorf("%w: %s", ErrInvalidParameter, reason)
	}
	return nil
}

func signalProblem(sig model.Signal) string {
	if strings.TrimSpace(sig.TokenID) == "" {
		return "token id is empty"
	}
	if p := sig.RequestedPositionPct; p != nil && (!p.IsPositive() || p.GreaterThan(hundred)) {
		return fmt.Sprintf("position size %s%% must be in (0, 100]", p)
	}
	if p := sig.RequestedStopLossPct; p != nil && (!p.IsPositive() || p.GreaterThanOrEqual(hundred)) {
		return fmt.Sprintf("stop loss %s%% must be in (0, 100)", p)
	}
	for i, pct := range sig.RequestedTakeProfitLevels {
		if !pct.IsPositive() {
			return fmt.Sprintf("take profit level %s%% must be positive", pct)
		}
		for _, prev := range sig.RequestedTakeProfitLevels[:i] {
			if prev.Equal(pct) {
				return fmt.Sprintf("take profit level %s%% is repeated", pct)
			}
		}
	}
	return ""
}

func (g *Gate) Evaluate(ctx context.Context, sig model.Signal) Decision {
	params := g.account.Parameters()
	balance := g.account.Balance()
	d := Decision{TokenID: sig.TokenID}

	if reason := signalProblem(sig); reason != "" {
		return reject(d, ErrInvalidParameter, reason)
	}

	d.PositionPct = params.PositionSizePct
	if sig.RequestedPositionPct != nil {
		d.PositionPct = *sig.RequestedPositionPct
	}
	d.StopLossPct = params.InitialStopLossPct
	if sig.RequestedStopLossPct != nil {
		d.StopLossPct = *sig.RequestedStopLossPct
	}
	pcts := params.TakeProfitPcts
	if len(sig.RequestedTakeProfitLevels) > 0 {
		pcts = sig.RequestedTakeProfitLevels
	}
	d.TakeProfitLevels = tp_sl.BuildLevels(pcts)

	d.SizedAmountUsd = balance.Mul(d.PositionPct).Div(hundred)
	if !balance.IsPositive() || !d.SizedAmountUsd.IsPositive() || d.SizedAmountUsd.GreaterThan(balance) {
		return reject(d, ErrInsufficientBalance, fmt.Sprintf("sized %s exceeds balance %s", d.SizedAmountUsd.StringFixed(2), balance.StringFixed(2)))
	}

	report, err := g.safety.CheckSafety(ctx, sig.TokenID)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return reject(d, err, "safety check interrupted")
		}
		g.logger.WithError(err).WithField("token", sig.TokenID).Warn("safety check unavailable")
		return reject(d, ErrSafetyCheckFailed, "safety check unavailable: "+err.Error())
	}
	d.Safety = &report

	if violations := CheckThresholds(report, params); len(violations) > 0 {
		g.logger.WithFields(logrus.Fields{
			"token":      sig.TokenID,
			"violations": violations,
		}).Info("token failed safety check")
		return reject(d, ErrSafetyCheckFailed, violations...)
	}

	d.Accept = true
	return d
}

// CheckThresholds itemizes every violated safety threshold.
func CheckThresholds(r model.SafetyReport, p model.TradingParameters) []string {
	var out []string
	if r.LiquidityUsd.LessThan(p.MinLiquidityUsd) {
		out = append(out, fmt.Sprintf("liquidity %s below minimum %s", r.LiquidityUsd, p.MinLiquidityUsd))
	}
	if r.BuyTaxPct.GreaterThan(p.MaxBuyTaxPct) {
		out = append(out, fmt.Sprintf("buy tax %s%% above maximum %s%%", r.BuyTaxPct, p.MaxBuyTaxPct))
	}
	if r.SellTaxPct.GreaterThan(p.MaxSellTaxPct) {
		out = append(out, fmt.Sprintf("sell tax %s%% above maximum %s%%", r.SellTaxPct, p.MaxSellTaxPct))
	}
	if r.HolderCount <= p.MinHolderCount {
		out = append(out, fmt.Sprintf("holder count %d not above %d", r.HolderCount, p.MinHolderCount))
	}
	if r.TopHolderPct.GreaterThanOrEqual(p.MaxTopHolderPct) {
		out = append(out, fmt.Sprintf("top holder %s%% not below %s%%", r.TopHolderPct, p.MaxTopHolderPct))
	}
	if p.HoneypotCheck && r.IsHoneypot {
		out = append(out, "token is a honeypot")
	}
	return out
}
