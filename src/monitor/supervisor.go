package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"papertrader/src/ledger"
	"papertrader/src/metrics"
	"papertrader/src/model"
)

var ErrSupervisorStopped = errors.New("monitor supervisor stopped")

type cancelRequest struct {
	price  *decimal.Decimal
	reason string
	reply  chan cancelReply
}

type cancelReply struct {
	record *model.TradeRecord
	err    error
}

type handle struct {
	monitor  *Monitor
	requests chan cancelRequest
	done     chan struct{}
}

// Supervisor owns one monitor goroutine per open position.
type Supervisor struct {
	opts   Options
	logger *logrus.Entry

	ctx  context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	mu       sync.Mutex
	monitors map[string]*handle
	stopped  bool
}

func NewSupervisor(parent context.Context, logger *logrus.Entry, opts Options) *Supervisor {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	ctx, stop := context.WithCancel(parent)
	return &Supervisor{
		opts:     opts,
		logger:   logger,
		ctx:      ctx,
		stop:     stop,
		monitors: make(map[string]*handle),
	}
}

// Spawn starts a monitor for pos. It returns an error when one is already
// running for the position or the supervisor is stopped.
func (s *Supervisor) Spawn(pos model.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrSupervisorStopped
	}
	if _, running := s.monitors[pos.ID]; running {
		return fmt.Errorf("monitor already running for position %s", pos.ID)
	}

	h := &handle{
		monitor:  New(s.logger, pos, s.opts),
		requests: make(chan cancelRequest, 1),
		done:     make(chan struct{}),
	}
	s.monitors[pos.ID] = h
	metrics.ActiveMonitors.Inc()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(h.done)
		defer func() {
			s.mu.Lock()
			delete(s.monitors, pos.ID)
			s.mu.Unlock()
			metrics.ActiveMonitors.Dec()
		}()
		h.monitor.run(s.ctx, h.requests)
	}()
	return nil
}

// Cancel stops the monitor of positionID. With a manual price the position
// is fully closed at that price first and the exit record is returned.
// Without one the position stays open and unmonitored.
func (s *Supervisor) Cancel(ctx context.Context, positionID string, manualPrice *decimal.Decimal, reason string) (*model.TradeRecord, error) {
	s.mu.Lock()
	h := s.monitors[positionID]
	s.mu.Unlock()

	if h == nil {
		return s.closeUnmonitored(ctx, positionID, manualPrice, reason)
	}

	req := cancelRequest{price: manualPrice, reason: reason, reply: make(chan cancelReply, 1)}
	select {
	case h.requests <- req:
	case <-h.done:
		return s.closeUnmonitored(ctx, positionID, manualPrice, reason)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case r := <-req.reply:
		return r.record, r.err
	case <-h.done:
		select {
		case r := <-req.reply:
			return r.record, r.err
		default:
		}
		// the monitor finished on its own before reading the request
		return s.closeUnmonitored(ctx, positionID, manualPrice, reason)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Supervisor) closeUnmonitored(ctx context.Context, positionID string, manualPrice *decimal.Decimal, reason string) (*model.TradeRecord, error) {
	if manualPrice == nil {
		if _, ok := s.opts.Ledger.Position(positionID); !ok {
			return nil, fmt.Errorf("%w: %s", ledger.ErrPositionNotFound, positionID)
		}
		return nil, nil
	}
	if reason == "" {
		reason = model.ReasonManualClose
	}
	rec, err := s.opts.Ledger.FullClose(ctx, positionID, *manualPrice, reason)
	if err != nil {
		return nil, err
	}
	if s.opts.Sink != nil {
		now := time.Now
		if s.opts.Now != nil {
			now = s.opts.Now
		}
		s.opts.Sink.Publish(model.Event{
			Type:       model.EventPositionClosed,
			PositionID: rec.PositionID,
			TokenID:    rec.TokenID,
			Price:      &rec.Price,
			Record:     &rec,
			Message:    reason,
			Timestamp:  now().UTC(),
		})
	}
	return &rec, nil
}

// Running reports whether a monitor is active for positionID.
func (s *Supervisor) Running(positionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.monitors[positionID]
	return ok
}

// Done returns a channel closed when the monitor of positionID exits, or nil
// when none is running.
func (s *Supervisor) Done(positionID string) <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.monitors[positionID]; ok {
		return h.done
	}
	return nil
}

func (s *Supervisor) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.monitors)
}

// StopAll cancels every monitor without touching positions. Spawn fails
// afterwards.
func (s *Supervisor) StopAll() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.stop()
}

// CancelAll stops every running monitor but keeps the supervisor usable.
func (s *Supervisor) CancelAll(ctx context.Context) {
	s.mu.Lock()
	ids := make([]string, 0, len(s.monitors))
	for id := range s.monitors {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		if _, err := s.Cancel(ctx, id, nil, ""); err != nil && !errors.Is(err, ledger.ErrPositionNotFound) {
			s.logger.WithError(err).WithField("position", id).Warn("cancel monitor failed")
		}
		if done := s.Done(id); done != nil {
			select {
			case <-done:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Wait blocks until every monitor goroutine has returned.
func (s *Supervisor) Wait() {
	s.wg.Wait()
}
