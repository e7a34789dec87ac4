package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"papertrader/cmd/executor"
	"papertrader/src/database"
	"papertrader/src/ledger"
)

var Version string

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()
	dbConfig := database.GetConfig()
	executor.SetupLogger(dbConfig.LogLevel, dbConfig.LogFormat)

	app := cli.NewApp()
	app.Name = "papertrader"
	app.Usage = "Paper-trading position risk manager"
	app.Version = Version

	app.Commands = []cli.Command{
		runCMD,
		summaryCMD,
		historyCMD,
		resetCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	runCMD = cli.Command{
		Name:        "run",
		Usage:       "run the paper trader",
		Action:      runAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Restore the account, resume monitors and serve the HTTP API`,
	}
	summaryCMD = cli.Command{
		Name:        "summary",
		Usage:       "print the account summary",
		Action:      summaryAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Print the summary of the persisted account as JSON`,
	}
	historyCMD = cli.Command{
		Name:      "history",
		Usage:     "print the trade history",
		Action:    historyAction,
		ArgsUsage: "",
		Flags: []cli.Flag{
			cli.IntFlag{Name: "limit", Value: 50, Usage: "page size"},
			cli.IntFlag{Name: "offset", Value: 0, Usage: "records to skip, newest first"},
		},
		Description: `Print a page of the persisted trade history as JSON`,
	}
	resetCMD = cli.Command{
		Name:      "reset",
		Usage:     "reset the account",
		Action:    resetAction,
		ArgsUsage: "",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "balance", Usage: "new initial balance in USD (default: current initial balance)"},
		},
		Description: `Drop all positions and history and start over. Do not run while the trader is running.`,
	}
)

func runAction(_ *cli.Context) error {
	logrus.Info("Starting executor CMD")

	executorStrategy := &executor.Executor{Log: logrus.WithField("cmd", "run")}
	if err := executorStrategy.Start(); err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}
	return nil
}

func summaryAction(_ *cli.Context) error {
	l, _, err := executor.OpenLedger(context.Background(), logrus.WithField("cmd", "summary"))
	if err != nil {
		return err
	}
	defer database.Close()
	return printJSON(l.GetAccountSummary())
}

func historyAction(c *cli.Context) error {
	l, _, err := executor.OpenLedger(context.Background(), logrus.WithField("cmd", "history"))
	if err != nil {
		return err
	}
	defer database.Close()
	return printJSON(l.GetHistory(c.Int("limit"), c.Int("offset")))
}

func resetAction(c *cli.Context) error {
	ctx := context.Background()
	log := logrus.WithField("cmd", "reset")
	l, _, err := executor.OpenLedger(ctx, log)
	if err != nil {
		return err
	}
	defer database.Close()

	balance := l.GetAccountSummary().InitialBalance
	if raw := c.String("balance"); raw != "" {
		if balance, err = decimal.NewFromString(raw); err != nil {
			return fmt.Errorf("invalid balance %q: %w", raw, err)
		}
	}
	if err := l.Reset(ctx, balance); err != nil {
		return err
	}
	if l.Dirty() {
		return ledger.ErrPersistenceWriteFailed
	}
	log.WithField("balance", balance.StringFixed(2)).Info("Account reset")
	return printJSON(l.GetAccountSummary())
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
