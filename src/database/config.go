package database

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	BackendFile = "file"
	BackendDB   = "db"
)

type Config struct {
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`  // Expected to hold values like "debug", "info", "warn", "error"
	LogFormat       string `envconfig:"LOG_FORMAT" default:"text"` // Expected to hold values like "json" or "text"
	SnapshotBackend string `envconfig:"SNAPSHOT_BACKEND" default:"file"`
	SnapshotFile    string `envconfig:"SNAPSHOT_FILE" default:"data/paper_trading_account.json"`
	Driver          string `envconfig:"DB_DRIVER" default:"sqlite"`
	DatabaseURLMain string `envconfig:"DATABASE_URL_MAIN" default:"file:data/papertrader.db?_busy_timeout=5000"`
	GormLogLevel    int    `envconfig:"GORM_LOG_LEVEL" default:"2"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
