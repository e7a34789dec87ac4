package executors

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"

	"papertrader/src/metrics"
)

type cleaner interface {
	Cleanup() int
}

// StartLoop runs housekeeping every period until ctx is done: it retries a
// failed snapshot save, drops expired dedup keys, restarts missing
// monitors and refreshes the account gauges.
func StartLoop(ctx context.Context, e *SignalExecutor, period time.Duration) error {
	if period <= 0 {
		period = GetConfig().LoopPeriod
	}
	ticker := time.NewTicker(period) // Set up a ticker that fires periodically
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("housekeeping loop stopped")
			return nil

		case <-ticker.C:
			e.Housekeep(ctx)
		}
	}
}

// Housekeep runs one housekeeping pass.
func (e *SignalExecutor) Housekeep(ctx context.Context) {
	log := e.logger.WithField("op", "housekeeping")

	if e.ledger.Dirty() {
		if err := e.ledger.Flush(ctx); err != nil {
			log.WithError(err).Warn("snapshot retry failed")
		} else {
			log.Info("snapshot retry succeeded")
		}
	}

	if c, ok := e.dedup.(cleaner); ok {
		if n := c.Cleanup(); n > 0 {
			log.WithField("expired", n).Debug("dedup keys expired")
		}
	}

	if n := e.ResumeMonitors(); n > 0 {
		log.WithField("started", n).Warn("restarted missing position monitors")
	}

	summary := e.ledger.GetAccountSummary()
	metrics.VirtualBalance.Set(summary.VirtualBalance.InexactFloat64())
	metrics.OpenPositions.Set(float64(summary.OpenPositions))
}
