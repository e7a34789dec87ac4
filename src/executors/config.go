package executors

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	SlippageUniform = "uniform"
	SlippageFixed   = "fixed"
)

type Config struct {
	InitialBalance string        `envconfig:"INITIAL_BALANCE" default:"10000"`
	AutoExecution  bool          `envconfig:"AUTO_EXECUTION" default:"true"`
	SlippageMode   string        `envconfig:"SLIPPAGE_MODE" default:"uniform"`
	MinSlippage    string        `envconfig:"MIN_SLIPPAGE" default:"0.5"`
	SlippageSeed   int64         `envconfig:"SLIPPAGE_SEED" default:"0"`
	LoopPeriod     time.Duration `envconfig:"LOOP_PERIOD" default:"30s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
