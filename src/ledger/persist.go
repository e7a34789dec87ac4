package ledger

import (
	"context"
	"fmt"
	"time"

	"papertrader/src/metrics"
)

// persistLocked writes the current state. A failure is logged, counted and
// remembered as dirty; the in-memory change stands. Caller holds l.mu.
func (l *Ledger) persistLocked(ctx context.Context, op string) error {
	if l.store == nil {
		return nil
	}

	start := time.Now()
	err := l.store.Save(context.WithoutCancel(ctx), l.snapshotLocked())
	metrics.PersistenceLatency.Observe(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		l.dirty = true
		metrics.PersistenceFailures.Inc()
		l.logger.WithError(err).WithField("op", op).Error("snapshot save failed, will retry on next mutation")
		return fmt.Errorf("%w: %v", ErrPersistenceWriteFailed, err)
	}
	l.dirty = false
	return nil
}

// Flush saves the account unconditionally. It is the final step of shutdown
// and the retry path of the housekeeping loop.
func (l *Ledger) Flush(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.persistLocked(ctx, "flush")
}

// Dirty reports whether the last save failed.
func (l *Ledger) Dirty() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.dirty
}
