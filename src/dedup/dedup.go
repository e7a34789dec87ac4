package dedup

import (
	"context"
	"errors"
)

var ErrDuplicateSignal = errors.New("duplicate signal")

// Deduplicator remembers signal keys for a window.
type Deduplicator interface {
	Seen(ctx context.Context, key string) (bool, error)
	Remember(ctx context.Context, key string) error
	// Claim remembers key and reports true when it was not already present.
	// The check and the insert are atomic.
	Claim(ctx context.Context, key string) (bool, error)
}
