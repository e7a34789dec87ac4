package executors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"papertrader/src/dedup"
	"papertrader/src/events"
	"papertrader/src/ledger"
	"papertrader/src/metrics"
	"papertrader/src/model"
	"papertrader/src/monitor"
	"papertrader/src/parser"
	"papertrader/src/risk"
	"papertrader/src/venue"
)

type Options struct {
	Ledger     *ledger.Ledger
	Venue      venue.Venue
	Dedup      dedup.Deduplicator
	KeyPolicy  dedup.KeyPolicy
	Supervisor *monitor.Supervisor
	Sink       events.Sink
	// Slippage samples the entry slippage; exits use the ledger's own model.
	Slippage ledger.SlippageModel
	Now      func() time.Time
}

// SignalExecutor turns accepted signals into monitored positions and
// serves the account operations around them.
type SignalExecutor struct {
	ledger     *ledger.Ledger
	venue      venue.Venue
	dedup      dedup.Deduplicator
	keyPolicy  dedup.KeyPolicy
	supervisor *monitor.Supervisor
	sink       events.Sink
	slippage   ledger.SlippageModel
	gate       *risk.Gate
	now        func() time.Time
	logger     *logrus.Entry
}

func NewSignalExecutor(logger *logrus.Entry, opts Options) *SignalExecutor {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Slippage == nil {
		opts.Slippage = ledger.FixedSlippage(decimal.Zero)
	}
	if opts.Dedup == nil {
		opts.Dedup = dedup.NewBoundedSet(1000, 10*time.Minute)
	}
	return &SignalExecutor{
		ledger:     opts.Ledger,
		venue:      opts.Venue,
		dedup:      opts.Dedup,
		keyPolicy:  opts.KeyPolicy,
		supervisor: opts.Supervisor,
		sink:       opts.Sink,
		slippage:   opts.Slippage,
		gate:       risk.NewGate(logger, opts.Ledger, opts.Venue),
		now:        opts.Now,
		logger:     logger.WithField("component", "SignalExecutor"),
	}
}

// HandleSignal runs one signal through dedup, the risk gate and the venue,
// opens the position and starts its monitor.
func (e *SignalExecutor) HandleSignal(ctx context.Context, sig model.Signal) (model.Position, error) {
	if sig.ReceivedAt.IsZero() {
		sig.ReceivedAt = e.now().UTC()
	}
	log := e.logger.WithFields(logrus.Fields{"token": sig.TokenID, "source": sig.Source})

	paused, auto := e.ledger.TradingMode()
	switch {
	case paused:
		metrics.SignalsTotal.WithLabelValues("paused").Inc()
		log.Info("signal ignored, trading paused")
		return model.Position{}, ledger.ErrTradingPaused
	case !auto:
		metrics.SignalsTotal.WithLabelValues("paused").Inc()
		log.Info("signal ignored, auto execution disabled")
		return model.Position{}, ledger.ErrAutoExecutionDisabled
	}

	// a malformed signal or one for a token still held never consumes its dedup key
	if err := risk.CheckSignal(sig); err != nil {
		return model.Position{}, e.rejected(sig, err)
	}
	if _, open := e.ledger.PositionByToken(sig.TokenID); open {
		return model.Position{}, e.rejected(sig, fmt.Errorf("%w: %s", ledger.ErrDuplicatePosition, sig.TokenID))
	}

	key := e.keyPolicy.Key(sig, sig.ReceivedAt)
	fresh, err := e.dedup.Claim(ctx, key)
	if err != nil {
		// the ledger still refuses a second open for the token
		log.WithError(err).Warn("dedup backend failed, continuing")
		fresh = true
	}
	if !fresh {
		metrics.SignalsTotal.WithLabelValues("duplicate").Inc()
		log.WithField("key", key).Info("duplicate signal skipped")
		return model.Position{}, fmt.Errorf("%w: %s", dedup.ErrDuplicateSignal, key)
	}

	decision := e.gate.Evaluate(ctx, sig)
	if !decision.Accept {
		log.WithField("reasons", decision.Reasons).Warn("signal rejected by risk gate")
		return model.Position{}, e.rejected(sig, decision.Err)
	}

	quote, err := e.venue.GetPrice(ctx, sig.TokenID)
	if err != nil {
		return model.Position{}, e.rejected(sig, fmt.Errorf("quote %s: %w", sig.TokenID, err))
	}

	params := e.ledger.Parameters()
	req := ledger.OpenRequest{
		TokenID:          sig.TokenID,
		SizedAmountUsd:   decision.SizedAmountUsd,
		QuotePrice:       quote,
		FeePct:           params.FeePct,
		SlippagePct:      e.slippage.Sample(params.MaxSlippagePct),
		StopLossPct:      decision.StopLossPct,
		TakeProfitLevels: decision.TakeProfitLevels,
	}
	// nothing reaches the venue that the ledger would refuse to record
	if err := req.Validate(); err != nil {
		return model.Position{}, e.rejected(sig, err)
	}

	receipt, err := e.venue.SubmitOrder(ctx, model.OrderRequest{
		TokenID:   sig.TokenID,
		Side:      model.OrderSideBuy,
		AmountUsd: decision.SizedAmountUsd,
		Price:     quote,
	})
	if err != nil {
		return model.Position{}, e.rejected(sig, fmt.Errorf("submit order %s: %w", sig.TokenID, err))
	}

	req.TxID = receipt.TxID
	pos, err := e.ledger.Open(ctx, req)
	if err != nil {
		return model.Position{}, e.rejected(sig, err)
	}

	if e.supervisor != nil {
		if err := e.supervisor.Spawn(pos); err != nil {
			log.WithError(err).Error("failed to start position monitor")
		}
	}

	metrics.SignalsTotal.WithLabelValues("accepted").Inc()
	price := pos.EntryPrice
	sl := pos.StopLossPrice
	e.publish(model.Event{
		Type:          model.EventPositionOpened,
		PositionID:    pos.ID,
		TokenID:       pos.TokenID,
		Price:         &price,
		StopLossPrice: &sl,
		Message:       fmt.Sprintf("opened %s USD", decision.SizedAmountUsd.StringFixed(2)),
	})
	return pos, nil
}

// HandleText parses a free-text message and handles the resulting signal.
func (e *SignalExecutor) HandleText(ctx context.Context, text, source, dedupKey string) (model.Position, error) {
	sig, err := parser.Parse(text, e.now())
	if err != nil {
		return model.Position{}, fmt.Errorf("%w: %v", risk.ErrInvalidParameter, err)
	}
	sig.Source = source
	sig.DedupKey = dedupKey
	return e.HandleSignal(ctx, sig)
}

func (e *SignalExecutor) rejected(sig model.Signal, err error) error {
	metrics.SignalsTotal.WithLabelValues("rejected").Inc()
	e.publish(model.Event{Type: model.EventSignalRejected, TokenID: sig.TokenID, Message: err.Error()})
	return err
}

// ClosePosition closes the open position for tokenID at the current quote.
func (e *SignalExecutor) ClosePosition(ctx context.Context, tokenID, reason string) (*model.TradeRecord, error) {
	pos, ok := e.ledger.PositionByToken(tokenID)
	if !ok {
		return nil, fmt.Errorf("%w: token %s", ledger.ErrPositionNotFound, tokenID)
	}
	price, err := e.venue.GetPrice(ctx, tokenID)
	if err != nil {
		return nil, fmt.Errorf("quote %s: %w", tokenID, err)
	}
	if reason == "" {
		reason = model.ReasonManualClose
	}

	if e.supervisor != nil {
		return e.supervisor.Cancel(ctx, pos.ID, &price, reason)
	}
	rec, err := e.ledger.FullClose(ctx, pos.ID, price, reason)
	if err != nil {
		return nil, err
	}
	e.publish(model.Event{Type: model.EventPositionClosed, PositionID: pos.ID, TokenID: tokenID, Price: &rec.Price, Record: &rec, Message: reason})
	return &rec, nil
}

// ResetAccount stops every monitor and replaces the account.
func (e *SignalExecutor) ResetAccount(ctx context.Context, initialBalance decimal.Decimal) error {
	if !initialBalance.IsPositive() {
		return fmt.Errorf("%w: initial balance %s", ledger.ErrInvalidParameter, initialBalance)
	}
	if e.supervisor != nil {
		e.supervisor.CancelAll(ctx)
	}
	if err := e.ledger.Reset(ctx, initialBalance); err != nil {
		return err
	}
	e.publish(model.Event{Type: model.EventAccountReset, Message: initialBalance.StringFixed(2)})
	return nil
}

func (e *SignalExecutor) UpdateTradingParameters(ctx context.Context, params model.TradingParameters) error {
	return e.ledger.UpdateTradingParameters(ctx, params)
}

func (e *SignalExecutor) SetTradingMode(ctx context.Context, paused, autoExecution *bool) error {
	return e.ledger.SetTradingMode(ctx, paused, autoExecution)
}

func (e *SignalExecutor) TradingMode() (paused bool, autoExecution bool) {
	return e.ledger.TradingMode()
}

func (e *SignalExecutor) Parameters() model.TradingParameters {
	return e.ledger.Parameters()
}

func (e *SignalExecutor) GetAccountSummary() model.AccountSummary {
	return e.ledger.GetAccountSummary()
}

func (e *SignalExecutor) GetOpenPositions() []model.OpenPositionView {
	return e.ledger.GetOpenPositions()
}

func (e *SignalExecutor) GetHistory(limit, offset int) model.HistoryPage {
	return e.ledger.GetHistory(limit, offset)
}

// ResumeMonitors starts a monitor for every open position that has none.
// It returns how many were started.
func (e *SignalExecutor) ResumeMonitors() int {
	if e.supervisor == nil {
		return 0
	}
	started := 0
	for _, pos := range e.ledger.OpenPositions() {
		if e.supervisor.Running(pos.ID) {
			continue
		}
		if err := e.supervisor.Spawn(pos); err != nil {
			if !errors.Is(err, monitor.ErrSupervisorStopped) {
				e.logger.WithError(err).WithField("position", pos.ID).Warn("failed to resume monitor")
			}
			continue
		}
		started++
	}
	return started
}

// Shutdown stops the monitors, waits for them and saves the final state.
func (e *SignalExecutor) Shutdown(ctx context.Context) error {
	if e.supervisor != nil {
		e.supervisor.StopAll()
		e.supervisor.Wait()
	}
	if err := e.ledger.Flush(ctx); err != nil {
		e.logger.WithError(err).Error("final snapshot save failed")
		return err
	}
	e.logger.Info("executor stopped, snapshot saved")
	return nil
}

func (e *SignalExecutor) publish(ev model.Event) {
	if e.sink == nil {
		return
	}
	ev.Timestamp = e.now().UTC()
	e.sink.Publish(ev)
}
