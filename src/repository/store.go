package repository

import (
	"fmt"

	"papertrader/src/database"
	"papertrader/src/ledger"
)

// NewStore returns the snapshot store selected by SNAPSHOT_BACKEND. The db
// backend opens and migrates database.MainDB first.
func NewStore(cfg database.Config) (ledger.Store, error) {
	switch cfg.SnapshotBackend {
	case database.BackendFile, "":
		return NewFileStore(cfg.SnapshotFile), nil
	case database.BackendDB:
		if database.MainDB == nil {
			if err := database.InitMainDB(); err != nil {
				return nil, err
			}
		}
		return NewSnapshotRepository(), nil
	default:
		return nil, fmt.Errorf("unsupported SNAPSHOT_BACKEND %q", cfg.SnapshotBackend)
	}
}
