package dedup

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type Config struct {
	Backend   string        `envconfig:"DEDUP_BACKEND" default:"memory"`
	Capacity  int           `envconfig:"DEDUP_CAPACITY" default:"1000"`
	Window    time.Duration `envconfig:"DEDUP_WINDOW" default:"10m"`
	KeyPolicy string        `envconfig:"DEDUP_KEY_POLICY" default:"window"`
	Bucket    time.Duration `envconfig:"DEDUP_BUCKET" default:"1s"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisPrefix   string `envconfig:"REDIS_DEDUP_PREFIX" default:"papertrader:dedup:"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

// Policy returns the keying policy described by the config.
func (c Config) Policy() (KeyPolicy, error) {
	switch c.KeyPolicy {
	case string(KeyWindow), "":
		return KeyPolicy{Mode: KeyWindow}, nil
	case string(KeyBucket):
		if c.Bucket <= 0 {
			return KeyPolicy{}, fmt.Errorf("DEDUP_BUCKET must be positive, got %s", c.Bucket)
		}
		return KeyPolicy{Mode: KeyBucket, Bucket: c.Bucket}, nil
	default:
		return KeyPolicy{}, fmt.Errorf("unsupported DEDUP_KEY_POLICY %q", c.KeyPolicy)
	}
}
