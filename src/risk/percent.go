package risk

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"papertrader/src/tp_sl"
)

// ParsePercent reads values such as "3", "3%" or " 2.5 % ". Malformed or
// negative input falls back to def with a warning.
func ParsePercent(log *logrus.Entry, name, raw string, def decimal.Decimal) decimal.Decimal {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	v, err := decimal.NewFromString(s)
	if err != nil || v.IsNegative() {
		if log == nil {
			log = logrus.NewEntry(logrus.StandardLogger())
		}
		log.WithFields(logrus.Fields{
			"param":    name,
			"value":    raw,
			"fallback": def.String(),
		}).Warn("invalid percentage, using default")
		return def
	}
	return v
}

// ParseLevelsOrDefault parses a take-profit list, falling back to def.
func ParseLevelsOrDefault(log *logrus.Entry, raw string, def []decimal.Decimal) []decimal.Decimal {
	levels, err := tp_sl.ParseLevels(raw)
	if err != nil {
		if log == nil {
			log = logrus.NewEntry(logrus.StandardLogger())
		}
		log.WithError(err).WithField("value", raw).Warn("invalid take profit levels, using default")
		return append([]decimal.Decimal(nil), def...)
	}
	return levels
}
