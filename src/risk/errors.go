package risk

import "errors"

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrSafetyCheckFailed   = errors.New("safety check failed")
	ErrInvalidParameter    = errors.New("invalid parameter")
)
