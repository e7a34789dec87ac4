package parser

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"papertrader/src/model"
)

var (
	ErrNoToken   = errors.New("no token address in message")
	ErrNotSignal = errors.New("message is not a trading signal")
)

var (
	tokenRe    = regexp.MustCompile(`[a-zA-Z0-9]{40,}`)
	positionRe = regexp.MustCompile(`(?i)(ape|position|allocate|buy)\s*(\d+(?:\.\d+)?)\s*%`)
	stopLossRe = regexp.MustCompile(`(?i)(sl|stop\s*loss|stoploss)[:\s]*-?\s*(\d+(?:\.\d+)?)\s*%`)
	tpBlockRe  = regexp.MustCompile(`(?i)(tp|take\s*profit)[:\s]*((?:\d+(?:\.\d+)?%[\s,]*)+)`)
	tpValueRe  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
)

var keywords = []string{
	"buy", "sell", "pump", "ape", "degen", "hunt", "sl", "stop loss",
	"target", "entry", "exit", "take profit", "tp", "contract",
}

// TokenAddress returns the first run of 40 or more alphanumerics.
func TokenAddress(text string) (string, bool) {
	m := tokenRe.FindString(text)
	return m, m != ""
}

// IsSignal reports whether text carries a token address and at least one
// trading keyword.
func IsSignal(text string) bool {
	if _, ok := TokenAddress(text); !ok {
		return false
	}
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// Parse turns a free-text message into a Signal. Values that are not present
// stay unset so that configured defaults apply.
func Parse(text string, receivedAt time.Time) (model.Signal, error) {
	token, ok := TokenAddress(text)
	if !ok {
		return model.Signal{}, ErrNoToken
	}
	if !IsSignal(text) {
		return model.Signal{}, ErrNotSignal
	}

	sig := model.Signal{TokenID: token, ReceivedAt: receivedAt.UTC()}
	if m := positionRe.FindStringSubmatch(text); m != nil {
		if v, err := decimal.NewFromString(m[2]); err == nil {
			sig.RequestedPositionPct = &v
		}
	}
	if m := stopLossRe.FindStringSubmatch(text); m != nil {
		if v, err := decimal.NewFromString(m[2]); err == nil {
			sig.RequestedStopLossPct = &v
		}
	}
	if m := tpBlockRe.FindStringSubmatch(text); m != nil {
		for _, v := range tpValueRe.FindAllStringSubmatch(m[2], -1) {
			if pct, err := decimal.NewFromString(v[1]); err == nil {
				sig.RequestedTakeProfitLevels = append(sig.RequestedTakeProfitLevels, pct)
			}
		}
	}
	return sig, nil
}
