package monitor

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"15s"`
	MaxBackoff   time.Duration `envconfig:"MAX_BACKOFF" default:"60s"`
	// StaleAfter consecutive price failures mark the position stale.
	StaleAfter int `envconfig:"STALE_AFTER" default:"3"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = 15 * time.Second
	}
	if c.MaxBackoff < c.PollInterval {
		c.MaxBackoff = c.PollInterval
	}
	if c.StaleAfter <= 0 {
		c.StaleAfter = 3
	}
	return c
}
