package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"papertrader/src/model"
)

var hundred = decimal.NewFromInt(100)

// Store persists the whole account as one snapshot document.
// Load returns ErrSnapshotNotFound when nothing was saved yet.
type Store interface {
	Save(ctx context.Context, snap *model.AccountSnapshot) error
	Load(ctx context.Context) (*model.AccountSnapshot, error)
}

type Options struct {
	Store          Store
	Slippage       SlippageModel
	InitialBalance decimal.Decimal
	Parameters     model.TradingParameters
	AutoExecution  bool
	Now            func() time.Time
}

// Ledger owns the account. Every mutation takes the write lock, applies the
// change, and saves a snapshot before releasing it. Reads return copies.
type Ledger struct {
	mu       sync.RWMutex
	store    Store
	slippage SlippageModel
	logger   *logrus.Entry
	now      func() time.Time

	balance        decimal.Decimal
	initialBalance decimal.Decimal
	positions      map[string]*model.Position // by position id
	byToken        map[string]string
	history        []model.TradeRecord
	params         model.TradingParameters
	createdAt      time.Time
	paused         bool
	autoExecution  bool
	dirty          bool
}

// New creates a fresh account from opts. Nothing is saved until the first
// mutation or Flush.
func New(logger *logrus.Entry, opts Options) *Ledger {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Slippage == nil {
		opts.Slippage = FixedSlippage(decimal.Zero)
	}
	if opts.Parameters.Validate() != nil {
		opts.Parameters = model.DefaultTradingParameters()
	}
	if !opts.InitialBalance.IsPositive() {
		opts.InitialBalance = decimal.NewFromInt(10000)
	}

	return &Ledger{
		store:          opts.Store,
		slippage:       opts.Slippage,
		logger:         logger.WithField("component", "PositionLedger"),
		now:            opts.Now,
		balance:        opts.InitialBalance,
		initialBalance: opts.InitialBalance,
		positions:      make(map[string]*model.Position),
		byToken:        make(map[string]string),
		params:         opts.Parameters.Clone(),
		createdAt:      opts.Now().UTC(),
		autoExecution:  opts.AutoExecution,
	}
}

// Restore loads the last snapshot from opts.Store. A missing snapshot yields
// a fresh account (restored=false); a corrupt one is returned as an error and
// must block startup.
func Restore(ctx context.Context, logger *logrus.Entry, opts Options) (l *Ledger, restored bool, err error) {
	l = New(logger, opts)
	if opts.Store == nil {
		return l, false, nil
	}

	snap, err := opts.Store.Load(ctx)
	if errors.Is(err, ErrSnapshotNotFound) {
		l.logger.WithField("balance", l.balance.String()).Info("no snapshot found, starting fresh account")
		return l, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load snapshot: %w", err)
	}
	if err := l.apply(snap); err != nil {
		return nil, false, err
	}

	l.logger.WithFields(logrus.Fields{
		"balance":   l.balance.String(),
		"positions": len(l.positions),
		"trades":    len(l.history),
	}).Info("ledger restored from snapshot")
	return l, true, nil
}

func (l *Ledger) apply(snap *model.AccountSnapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: empty document", ErrCorruptSnapshot)
	}
	if snap.VirtualBalance.IsNegative() || !snap.InitialBalance.IsPositive() {
		return fmt.Errorf("%w: balance %s initial %s", ErrCorruptSnapshot, snap.VirtualBalance, snap.InitialBalance)
	}

	positions := make(map[string]*model.Position, len(snap.Positions))
	byToken := make(map[string]string, len(snap.Positions))
	for i := range snap.Positions {
		p := snap.Positions[i].Clone()
		if err := checkPosition(p); err != nil {
			return fmt.Errorf("%w: position %d: %v", ErrCorruptSnapshot, i, err)
		}
		if _, dup := byToken[p.TokenID]; dup {
			return fmt.Errorf("%w: token %s open twice", ErrCorruptSnapshot, p.TokenID)
		}
		positions[p.ID] = &p
		byToken[p.TokenID] = p.ID
	}

	params := snap.TradingParameters
	if err := params.Validate(); err != nil {
		l.logger.WithError(err).Warn("snapshot trading parameters invalid, keeping configured parameters")
		params = l.params
	}

	l.balance = snap.VirtualBalance
	l.initialBalance = snap.InitialBalance
	l.positions = positions
	l.byToken = byToken
	l.history = append([]model.TradeRecord(nil), snap.TradeHistory...)
	l.params = params.Clone()
	l.createdAt = snap.StartedAt
	l.paused = snap.Paused
	l.autoExecution = snap.AutoExecution
	return nil
}

func checkPosition(p model.Position) error {
	switch {
	case p.ID == "" || p.TokenID == "":
		return errors.New("missing id")
	case p.Status != model.PositionStatusOpen && p.Status != model.PositionStatusClosing:
		return fmt.Errorf("status %q", p.Status)
	case !p.EntryPrice.IsPositive():
		return fmt.Errorf("entry price %s", p.EntryPrice)
	case !p.Quantity.IsPositive() || p.Quantity.GreaterThan(p.InitialQuantity):
		return fmt.Errorf("quantity %s of %s", p.Quantity, p.InitialQuantity)
	case p.HighWaterMark.LessThan(p.EntryPrice):
		return fmt.Errorf("high water mark %s below entry %s", p.HighWaterMark, p.EntryPrice)
	case p.TriggeredFraction().GreaterThan(decimal.NewFromInt(1)):
		return errors.New("triggered fractions exceed one")
	}
	return nil
}

// snapshotLocked builds a deep copy of the account. Caller holds l.mu.
func (l *Ledger) snapshotLocked() *model.AccountSnapshot {
	positions := make([]model.Position, 0, len(l.positions))
	for _, p := range l.positions {
		positions = append(positions, p.Clone())
	}
	sort.Slice(positions, func(i, j int) bool {
		if positions[i].EntryTime.Equal(positions[j].EntryTime) {
			return positions[i].ID < positions[j].ID
		}
		return positions[i].EntryTime.Before(positions[j].EntryTime)
	})

	return &model.AccountSnapshot{
		VirtualBalance:    l.balance,
		InitialBalance:    l.initialBalance,
		Positions:         positions,
		TradeHistory:      append([]model.TradeRecord(nil), l.history...),
		StartedAt:         l.createdAt,
		TradingParameters: l.params.Clone(),
		Paused:            l.paused,
		AutoExecution:     l.autoExecution,
		SavedAt:           l.now().UTC(),
	}
}

func (l *Ledger) Snapshot() *model.AccountSnapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshotLocked()
}
