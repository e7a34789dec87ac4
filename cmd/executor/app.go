package executor

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"papertrader/src/database"
	"papertrader/src/dedup"
	"papertrader/src/events"
	"papertrader/src/executors"
	"papertrader/src/ledger"
	"papertrader/src/monitor"
	"papertrader/src/notify"
	"papertrader/src/repository"
	"papertrader/src/risk"
	"papertrader/src/venue"
)

// App is the assembled paper trader.
type App struct {
	Exec     *executors.SignalExecutor
	Ledger   *ledger.Ledger
	Hub      *events.Hub
	Notifier *notify.Notifier
	Dedup    dedup.Deduplicator
	Restored bool

	log *logrus.Entry
}

// OpenLedger restores the account from the configured snapshot store.
func OpenLedger(ctx context.Context, log *logrus.Entry) (*ledger.Ledger, bool, error) {
	store, err := repository.NewStore(database.GetConfig())
	if err != nil {
		return nil, false, fmt.Errorf("snapshot store: %w", err)
	}

	cfg := executors.GetConfig()
	return ledger.Restore(ctx, log, ledger.Options{
		Store:          store,
		Slippage:       SlippageModel(cfg, log),
		InitialBalance: risk.ParsePercent(log, "INITIAL_BALANCE", cfg.InitialBalance, decimal.NewFromInt(10000)),
		Parameters:     risk.GetConfig().TradingParameters(log),
		AutoExecution:  cfg.AutoExecution,
	})
}

// SlippageModel picks the execution slippage from SLIPPAGE_MODE.
func SlippageModel(cfg executors.Config, log *logrus.Entry) ledger.SlippageModel {
	minPct := risk.ParsePercent(log, "MIN_SLIPPAGE", cfg.MinSlippage, decimal.RequireFromString("0.5"))
	switch strings.ToLower(cfg.SlippageMode) {
	case executors.SlippageFixed:
		return ledger.FixedSlippage(minPct)
	case executors.SlippageUniform, "":
		return ledger.NewUniformSlippage(minPct, cfg.SlippageSeed)
	default:
		log.WithField("mode", cfg.SlippageMode).Warn("unknown slippage mode, using uniform")
		return ledger.NewUniformSlippage(minPct, cfg.SlippageSeed)
	}
}

// Build wires every component from the environment. Monitors live as long
// as ctx.
func Build(ctx context.Context, log *logrus.Entry) (*App, error) {
	l, restored, err := OpenLedger(ctx, log)
	if err != nil {
		return nil, err
	}

	v, err := venue.New(venue.GetConfig(), log)
	if err != nil {
		return nil, err
	}

	dedupCfg := dedup.GetConfig()
	policy, err := dedupCfg.Policy()
	if err != nil {
		return nil, err
	}
	d, err := dedup.New(ctx, dedupCfg, log)
	if err != nil {
		return nil, err
	}

	hub := events.NewHub(log)
	sinks := events.Multi{hub}
	var notifier *notify.Notifier
	if notifyCfg := notify.GetConfig(); notifyCfg.Enabled() {
		notifier = notify.NewNotifier(log, notify.NewTelegramSender(notifyCfg), notifyCfg.Events, notifyCfg.QueueSize)
		sinks = append(sinks, notifier)
	}

	sup := monitor.NewSupervisor(ctx, log, monitor.Options{
		Ledger: l,
		Oracle: v,
		Orders: v,
		Sink:   sinks,
		Config: monitor.GetConfig(),
	})

	exec := executors.NewSignalExecutor(log, executors.Options{
		Ledger:     l,
		Venue:      v,
		Dedup:      d,
		KeyPolicy:  policy,
		Supervisor: sup,
		Sink:       sinks,
		Slippage:   SlippageModel(executors.GetConfig(), log),
	})

	return &App{
		Exec:     exec,
		Ledger:   l,
		Hub:      hub,
		Notifier: notifier,
		Dedup:    d,
		Restored: restored,
		log:      log,
	}, nil
}

// Close releases what Build opened. The executor must be shut down first.
func (a *App) Close() {
	a.Hub.Close()
	if c, ok := a.Dedup.(io.Closer); ok {
		if err := c.Close(); err != nil {
			a.log.WithError(err).Warn("failed to close dedup backend")
		}
	}
	if err := database.Close(); err != nil {
		a.log.WithError(err).Warn("failed to close database")
	}
}
