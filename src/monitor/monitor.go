package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"papertrader/src/events"
	"papertrader/src/ledger"
	"papertrader/src/metrics"
	"papertrader/src/model"
	"papertrader/src/tp_sl"
	"papertrader/src/venue"
)

// Ledger is the part of the position ledger a monitor writes through.
type Ledger interface {
	Position(positionID string) (model.Position, bool)
	Parameters() model.TradingParameters
	RecordPrice(ctx context.Context, positionID string, price, trailPct decimal.Decimal) (ledger.PriceUpdate, error)
	MarkStale(positionID string, stale bool) (bool, error)
	PartialClose(ctx context.Context, positionID string, levelIndex int, exitQuotePrice decimal.Decimal, reason string) (model.TradeRecord, error)
	FullClose(ctx context.Context, positionID string, exitQuotePrice decimal.Decimal, reason string) (model.TradeRecord, error)
}

type State string

const (
	StateActive    State = "active"
	StateClosed    State = "closed"
	StateCancelled State = "cancelled"
)

type Options struct {
	Ledger Ledger
	Oracle venue.PriceOracle
	// Orders, when set, receives a sell order for every exit.
	Orders venue.OrderSubmitter
	Sink   events.Sink
	Config Config
	Now    func() time.Time
}

// Monitor watches one open position. All state changes go through the
// ledger; the monitor itself only keeps its failure counter.
type Monitor struct {
	positionID string
	tokenID    string
	opts       Options
	logger     *logrus.Entry

	failures int
	state    State
}

func New(logger *logrus.Entry, pos model.Position, opts Options) *Monitor {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.Config = opts.Config.withDefaults()
	return &Monitor{
		positionID: pos.ID,
		tokenID:    pos.TokenID,
		opts:       opts,
		logger: logger.WithFields(logrus.Fields{
			"component": "PositionMonitor",
			"position":  pos.ID,
			"token":     pos.TokenID,
		}),
		state: StateActive,
	}
}

func (m *Monitor) PositionID() string { return m.positionID }
func (m *Monitor) State() State       { return m.state }
func (m *Monitor) Failures() int      { return m.failures }

// Step runs one tick and reports whether the monitor is finished.
func (m *Monitor) Step(ctx context.Context) bool {
	if _, ok := m.opts.Ledger.Position(m.positionID); !ok {
		m.state = StateClosed
		return true
	}

	price, err := m.opts.Oracle.GetPrice(ctx, m.tokenID)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		m.priceFailed(err)
		return false
	}
	if !price.IsPositive() {
		m.priceFailed(fmt.Errorf("%w: non-positive quote %s", venue.ErrPriceUnavailable, price))
		return false
	}

	update, err := m.opts.Ledger.RecordPrice(ctx, m.positionID, price, m.opts.Ledger.Parameters().TrailingStopPct)
	if err != nil {
		return m.handleLedgerError("record price", err)
	}
	m.failures = 0
	if update.StaleCleared {
		m.logger.WithField("price", price.String()).Info("price feed recovered")
		m.emit(model.Event{Type: model.EventPriceRecovered, Price: &price})
	}
	pos := update.Position
	if update.StopRaised {
		metrics.StopRaises.Inc()
		sl := pos.StopLossPrice
		m.logger.WithFields(logrus.Fields{
			"price": price.String(),
			"hwm":   pos.HighWaterMark.String(),
			"stop":  sl.String(),
		}).Info("trailing stop raised")
		m.emit(model.Event{Type: model.EventStopRaised, Price: &price, StopLossPrice: &sl})
	}

	if tp_sl.StopHit(price, pos.StopLossPrice) {
		rec, err := m.opts.Ledger.FullClose(ctx, m.positionID, price, model.ReasonStopLoss)
		if err != nil {
			return m.handleLedgerError("stop loss close", err)
		}
		m.exited(ctx, rec)
		m.state = StateClosed
		return true
	}

	for _, idx := range tp_sl.DueLevels(pos.TakeProfitLevels, pos.EntryPrice, price) {
		rec, err := m.opts.Ledger.PartialClose(ctx, m.positionID, idx, price, "")
		if errors.Is(err, ledger.ErrLevelAlreadyTriggered) {
			continue
		}
		if err != nil {
			return m.handleLedgerError("take profit", err)
		}
		m.exited(ctx, rec)
		if rec.Kind == model.TradeKindFullExit {
			m.state = StateClosed
			return true
		}
	}
	return false
}

func (m *Monitor) priceFailed(err error) {
	m.failures++
	metrics.PriceFailures.Inc()
	m.logger.WithError(err).WithField("failures", m.failures).Warn("price unavailable")

	if m.failures < m.opts.Config.StaleAfter {
		return
	}
	changed, serr := m.opts.Ledger.MarkStale(m.positionID, true)
	if serr == nil && changed {
		m.logger.WithField("failures", m.failures).Warn("position price is stale")
		m.emit(model.Event{Type: model.EventPriceStale, Message: err.Error()})
	}
}

// handleLedgerError ends the monitor when the position is gone.
func (m *Monitor) handleLedgerError(op string, err error) bool {
	if errors.Is(err, ledger.ErrPositionNotFound) {
		m.state = StateClosed
		return true
	}
	m.logger.WithError(err).WithField("op", op).Error("ledger update failed")
	return false
}

func (m *Monitor) exited(ctx context.Context, rec model.TradeRecord) {
	r := rec
	evType := model.EventTakeProfit
	if rec.Kind == model.TradeKindFullExit {
		evType = model.EventPositionClosed
	}
	m.emit(model.Event{Type: evType, Price: &r.Price, Record: &r, Message: rec.Reason})
	m.submitExit(ctx, rec)
}

func (m *Monitor) submitExit(ctx context.Context, rec model.TradeRecord) {
	if m.opts.Orders == nil {
		return
	}
	receipt, err := m.opts.Orders.SubmitOrder(ctx, model.OrderRequest{
		TokenID:   rec.TokenID,
		Side:      model.OrderSideSell,
		AmountUsd: rec.ValueUsd,
		Quantity:  rec.Amount,
		Price:     rec.Price,
	})
	if err != nil {
		m.logger.WithError(err).Warn("exit order submission failed")
		return
	}
	m.logger.WithField("tx", receipt.TxID).Debug("exit order submitted")
}

func (m *Monitor) emit(ev model.Event) {
	if m.opts.Sink == nil {
		return
	}
	ev.PositionID = m.positionID
	ev.TokenID = m.tokenID
	ev.Timestamp = m.opts.Now().UTC()
	m.opts.Sink.Publish(ev)
}

// NextDelay is the poll interval, doubled per consecutive price failure up
// to MaxBackoff.
func (m *Monitor) NextDelay() time.Duration {
	cfg := m.opts.Config
	if m.failures == 0 {
		return cfg.PollInterval
	}
	delay := cfg.PollInterval
	for i := 0; i < m.failures && delay < cfg.MaxBackoff; i++ {
		delay *= 2
	}
	if delay > cfg.MaxBackoff {
		delay = cfg.MaxBackoff
	}
	return delay
}

// Run ticks until the position closes or ctx is done.
func (m *Monitor) Run(ctx context.Context) State {
	return m.run(ctx, nil)
}

func (m *Monitor) run(ctx context.Context, requests <-chan cancelRequest) State {
	m.logger.Info("monitor started")
	defer func() {
		m.logger.WithField("state", m.state).Info("monitor stopped")
	}()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			m.state = StateCancelled
			return m.state
		case req := <-requests:
			m.state = StateCancelled
			req.reply <- m.cancel(ctx, req)
			return m.state
		case <-timer.C:
		}

		if m.Step(ctx) {
			return m.state
		}
		timer.Reset(m.NextDelay())
	}
}

// cancel closes the position at the manual price when one is given.
func (m *Monitor) cancel(ctx context.Context, req cancelRequest) cancelReply {
	if req.price == nil {
		return cancelReply{}
	}
	reason := req.reason
	if reason == "" {
		reason = model.ReasonManualClose
	}
	rec, err := m.opts.Ledger.FullClose(ctx, m.positionID, *req.price, reason)
	if err != nil {
		return cancelReply{err: err}
	}
	m.exited(ctx, rec)
	return cancelReply{record: &rec}
}
