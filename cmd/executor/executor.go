package executor

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"papertrader/src/executors"
	"papertrader/src/server"
)

type Executor struct {
	Log *logrus.Entry
}

// Start runs the paper trader until SIGINT or SIGTERM: HTTP API,
// housekeeping loop, notifier and one monitor per open position.
func (t *Executor) Start() error {
	log := t.Log
	if log == nil {
		log = logrus.WithField("cmd", "executor")
	}
	config := GetConfig()
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	app, err := Build(ctx, log)
	if err != nil {
		log.WithError(err).Error("Failed to build executor")
		return err
	}
	defer app.Close()

	summary := app.Ledger.GetAccountSummary()
	log.WithFields(logrus.Fields{
		"restored":  app.Restored,
		"balance":   summary.VirtualBalance.StringFixed(2),
		"positions": summary.OpenPositions,
	}).Info("Starting paper trader")

	if config.ResumeOnBoot {
		log.WithField("monitors", app.Exec.ResumeMonitors()).Info("Resumed position monitors")
	}

	g, gctx := errgroup.WithContext(ctx)
	if config.HTTPEnabled {
		router := server.NewRouter(app.Exec, app.Hub.HandleWS)
		g.Go(func() error {
			return server.Run(gctx, server.GetConfig(), router)
		})
	}
	g.Go(func() error {
		return executors.StartLoop(gctx, app.Exec, executors.GetConfig().LoopPeriod)
	})
	if app.Notifier != nil {
		g.Go(func() error {
			return app.Notifier.Run(gctx)
		})
	}

	runErr := g.Wait()
	if runErr != nil {
		log.WithError(runErr).Error("Executor stopped with error")
	}

	if err := app.Exec.Shutdown(context.Background()); err != nil {
		return err
	}
	return runErr
}
