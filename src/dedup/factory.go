package dedup

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// New builds the Deduplicator selected by cfg.Backend.
func New(ctx context.Context, cfg Config, logger *logrus.Entry) (Deduplicator, error) {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	log := logger.WithFields(logrus.Fields{
		"component": "SignalDeduplicator",
		"backend":   cfg.Backend,
		"window":    cfg.Window.String(),
		"keyPolicy": cfg.KeyPolicy,
	})

	switch cfg.Backend {
	case BackendMemory, "":
		log.WithField("capacity", cfg.Capacity).Info("using in-memory dedup set")
		return NewBoundedSet(cfg.Capacity, cfg.Window), nil
	case BackendRedis:
		set, err := NewRedisSet(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.WithField("addr", cfg.RedisAddr).Info("using redis dedup set")
		return set, nil
	default:
		return nil, fmt.Errorf("unsupported DEDUP_BACKEND %q", cfg.Backend)
	}
}
