package venue

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	ModeSimulated = "simulated"
	ModeHTTP      = "http"
)

type Config struct {
	Mode           string        `envconfig:"VENUE_MODE" default:"simulated"` // simulated | http
	BaseURL        string        `envconfig:"VENUE_BASE_URL" default:"http://localhost:8545"`
	APIKey         string        `envconfig:"VENUE_API_KEY"`
	Timeout        time.Duration `envconfig:"VENUE_TIMEOUT" default:"10s"`
	RetryCount     int           `envconfig:"VENUE_RETRY_COUNT" default:"2"`
	SafetyCacheTTL time.Duration `envconfig:"SAFETY_CACHE_TTL" default:"1h"`
	SimSeed        int64         `envconfig:"SIM_SEED" default:"0"` // 0 seeds from the clock
	SimUpProb      float64       `envconfig:"SIM_UP_PROBABILITY" default:"0.7"`
	SimHoneypotPct float64       `envconfig:"SIM_HONEYPOT_PROBABILITY" default:"0.15"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
