package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"papertrader/src/model"
)

// MainDB is the read/write connection holding the account snapshot.
var MainDB *gorm.DB

// Dialector picks the gorm driver for cfg.Driver.
func Dialector(cfg Config) (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverSQLite:
		return sqlite.Open(cfg.DatabaseURLMain), nil
	case DriverPostgres:
		return postgres.Open(cfg.DatabaseURLMain), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
}

// InitMainDB opens the main database and migrates the snapshot table.
// This should be called once at application startup, and only when the
// snapshot backend is the database.
func InitMainDB() error {
	config := GetConfig()
	dialector, err := Dialector(config)
	if err != nil {
		return err
	}

	db, err := gorm.Open(dialector,
		&gorm.Config{
			TranslateError: true,
			Logger:         logger.Default.LogMode(logger.LogLevel(config.GormLogLevel)),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB from GORM: %w", err)
	}
	if config.Driver == DriverSQLite {
		// one writer; sqlite serializes anyway
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(10)
	}
	sqlDB.SetConnMaxLifetime(1 * time.Hour)

	// Assign to the global variable only after a successful connection.
	MainDB = db

	logrus.WithField("driver", config.Driver).Info("[database] MainDB connection established")

	if err := MainDB.AutoMigrate(
		&model.AccountSnapshotRow{},
	); err != nil {
		return fmt.Errorf("failed to run migrations on MainDB: %w", err)
	}

	logrus.Info("[database] MainDB migrations completed")

	return nil
}

// Close releases the main connection if it was opened.
func Close() error {
	if MainDB == nil {
		return nil
	}
	sqlDB, err := MainDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
