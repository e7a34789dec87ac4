package ledger

import (
	"errors"
	"fmt"

	"papertrader/src/risk"
)

var (
	ErrDuplicatePosition      = errors.New("position already open for token")
	ErrPositionNotFound       = errors.New("position not found")
	ErrPersistenceWriteFailed = errors.New("persistence write failed")
	ErrLevelAlreadyTriggered  = errors.New("take profit level already triggered")
	ErrSnapshotNotFound       = errors.New("snapshot not found")
	ErrCorruptSnapshot        = errors.New("corrupt snapshot")
	ErrTradingPaused          = errors.New("trading is paused")
	ErrAutoExecutionDisabled  = errors.New("auto execution is disabled")

	// shared with the risk gate so callers match one sentinel
	ErrInsufficientBalance = risk.ErrInsufficientBalance
	ErrInvalidParameter    = risk.ErrInvalidParameter
)

// LedgerError adds the operation and token to a ledger failure.
type LedgerError struct {
	Op      string
	TokenID string
	Err     error
}

func (e *LedgerError) Error() string {
	if e.TokenID == "" {
		return fmt.Sprintf("ledger %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("ledger %s %s: %v", e.Op, e.TokenID, e.Err)
}

func (e *LedgerError) Unwrap() error { return e.Err }

func opError(op, tokenID string, err error) error {
	return &LedgerError{Op: op, TokenID: tokenID, Err: err}
}
