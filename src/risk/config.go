package risk

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"

	"papertrader/src/model"
)

// Config holds the trading parameters as raw strings so that a typo in one
// value degrades to its default instead of aborting startup.
type Config struct {
	PositionSize     string `envconfig:"POSITION_SIZE" default:"3"`
	InitialStopLoss  string `envconfig:"INITIAL_STOP_LOSS" default:"30"`
	TrailingStopLoss string `envconfig:"TRAILING_STOP_LOSS" default:"5"`
	TakeProfitLevels string `envconfig:"TAKE_PROFIT_LEVELS" default:"20,40,100"`
	FeePct           string `envconfig:"FEE_PCT" default:"0.25"`
	MaxSlippage      string `envconfig:"MAX_SLIPPAGE" default:"15"`
	MinLiquidityUsd  string `envconfig:"MIN_LIQUIDITY_USD" default:"50000"`
	MaxBuyTax        string `envconfig:"MAX_BUY_TAX" default:"10"`
	MaxSellTax       string `envconfig:"MAX_SELL_TAX" default:"15"`
	MaxTopHolderPct  string `envconfig:"MAX_TOP_HOLDER_PCT" default:"50"`
	MinHolderCount   int    `envconfig:"MIN_HOLDER_COUNT" default:"50"`
	HoneypotCheck    bool   `envconfig:"HONEYPOT_CHECK" default:"true"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

// TradingParameters converts the raw config into validated parameters.
// If the combination is still invalid the named defaults are used.
func (c Config) TradingParameters(log *logrus.Entry) model.TradingParameters {
	def := model.DefaultTradingParameters()
	p := model.TradingParameters{
		PositionSizePct:    ParsePercent(log, "POSITION_SIZE", c.PositionSize, def.PositionSizePct),
		InitialStopLossPct: ParsePercent(log, "INITIAL_STOP_LOSS", c.InitialStopLoss, def.InitialStopLossPct),
		TrailingStopPct:    ParsePercent(log, "TRAILING_STOP_LOSS", c.TrailingStopLoss, def.TrailingStopPct),
		TakeProfitPcts:     ParseLevelsOrDefault(log, c.TakeProfitLevels, def.TakeProfitPcts),
		FeePct:             ParsePercent(log, "FEE_PCT", c.FeePct, def.FeePct),
		MaxSlippagePct:     ParsePercent(log, "MAX_SLIPPAGE", c.MaxSlippage, def.MaxSlippagePct),
		MinLiquidityUsd:    ParsePercent(log, "MIN_LIQUIDITY_USD", c.MinLiquidityUsd, def.MinLiquidityUsd),
		MaxBuyTaxPct:       ParsePercent(log, "MAX_BUY_TAX", c.MaxBuyTax, def.MaxBuyTaxPct),
		MaxSellTaxPct:      ParsePercent(log, "MAX_SELL_TAX", c.MaxSellTax, def.MaxSellTaxPct),
		MaxTopHolderPct:    ParsePercent(log, "MAX_TOP_HOLDER_PCT", c.MaxTopHolderPct, def.MaxTopHolderPct),
		MinHolderCount:     c.MinHolderCount,
		HoneypotCheck:      c.HoneypotCheck,
	}
	if err := p.Validate(); err != nil {
		if log == nil {
			log = logrus.NewEntry(logrus.StandardLogger())
		}
		log.WithError(err).Warn("trading parameters out of range, using defaults")
		return def
	}
	return p
}
