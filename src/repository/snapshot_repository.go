package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"papertrader/src/database"
	"papertrader/src/ledger"
	"papertrader/src/model"
)

// snapshotRowID is the single row the account document lives in.
const snapshotRowID uint = 1

// SnapshotRepository stores the account snapshot as one upserted row.
type SnapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository creates a new repository instance using the main database.
func NewSnapshotRepository() *SnapshotRepository {
	logger.WithField("component", "SnapshotRepository").
		Info("Creating new SnapshotRepository with MainDB")

	return &SnapshotRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *SnapshotRepository) WithDB(db *gorm.DB) *SnapshotRepository {
	logger.WithField("component", "SnapshotRepository").
		Debug("Creating SnapshotRepository with custom DB instance")

	return &SnapshotRepository{db: db}
}

// Save replaces the stored document with snap.
func (r *SnapshotRepository) Save(ctx context.Context, snap *model.AccountSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	row := model.AccountSnapshotRow{
		ID:        snapshotRowID,
		Payload:   string(payload),
		Positions: len(snap.Positions),
		Trades:    len(snap.TradeHistory),
	}

	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "SnapshotRepository",
			"op":   "Save",
		}).WithError(err).Error("Failed to save snapshot")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":      "SnapshotRepository",
		"op":        "Save",
		"positions": row.Positions,
		"trades":    row.Trades,
	}).Debug("Snapshot saved")

	return nil
}

// Load returns ledger.ErrSnapshotNotFound when no row exists and
// ledger.ErrCorruptSnapshot when the payload does not decode.
func (r *SnapshotRepository) Load(ctx context.Context) (*model.AccountSnapshot, error) {
	var row model.AccountSnapshotRow
	err := r.db.WithContext(ctx).First(&row, snapshotRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ledger.ErrSnapshotNotFound
	}
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "SnapshotRepository",
			"op":   "Load",
		}).WithError(err).Error("Failed to load snapshot")

		return nil, err
	}

	var snap model.AccountSnapshot
	if err := json.Unmarshal([]byte(row.Payload), &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrCorruptSnapshot, err)
	}
	return &snap, nil
}
