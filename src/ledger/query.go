package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"papertrader/src/model"
	"papertrader/src/utils"
)

const DefaultHistoryLimit = 50

func (l *Ledger) Balance() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balance
}

func (l *Ledger) Parameters() model.TradingParameters {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.params.Clone()
}

// TradingMode returns the paused and auto-execution flags.
func (l *Ledger) TradingMode() (paused bool, autoExecution bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.paused, l.autoExecution
}

func (l *Ledger) Position(positionID string) (model.Position, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.positions[positionID]
	if !ok {
		return model.Position{}, false
	}
	return p.Clone(), true
}

func (l *Ledger) PositionByToken(tokenID string) (model.Position, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	id, ok := l.byToken[tokenID]
	if !ok {
		return model.Position{}, false
	}
	return l.positions[id].Clone(), true
}

// OpenPositions returns copies ordered by entry time.
func (l *Ledger) OpenPositions() []model.Position {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.Position, 0, len(l.positions))
	for _, p := range l.positions {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EntryTime.Equal(out[j].EntryTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].EntryTime.Before(out[j].EntryTime)
	})
	return out
}

// GetOpenPositions values each position at its last observed price.
func (l *Ledger) GetOpenPositions() []model.OpenPositionView {
	positions := l.OpenPositions()
	out := make([]model.OpenPositionView, 0, len(positions))
	for _, p := range positions {
		mark := p.MarkPrice()
		out = append(out, model.OpenPositionView{
			PositionID:    p.ID,
			TokenID:       p.TokenID,
			EntryPrice:    p.EntryPrice,
			CurrentPrice:  mark,
			Quantity:      p.Quantity,
			ValueUsd:      p.Quantity.Mul(mark),
			PnlPercentage: mark.Sub(p.EntryPrice).Div(p.EntryPrice).Mul(hundred),
			StopLossPrice: p.StopLossPrice,
			HighWaterMark: p.HighWaterMark,
			EntryTime:     p.EntryTime,
			Stale:         p.Stale,
		})
	}
	return out
}

// GetAccountSummary counts exit records as trades; a positive realized pnl
// is a win, a negative one a loss.
func (l *Ledger) GetAccountSummary() model.AccountSummary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	openValue := decimal.Zero
	for _, p := range l.positions {
		openValue = openValue.Add(p.Quantity.Mul(p.MarkPrice()))
	}

	s := model.AccountSummary{
		VirtualBalance:     l.balance,
		InitialBalance:     l.initialBalance,
		OpenPositionsValue: openValue,
		TotalValue:         l.balance.Add(openValue),
		TotalProfitLoss:    decimal.Zero,
		TotalProfitLossPct: decimal.Zero,
		WinRate:            decimal.Zero,
		OpenPositions:      len(l.positions),
		DaysRunning:        utils.DaysSince(l.createdAt, l.now()),
		Paused:             l.paused,
		AutoExecution:      l.autoExecution,
		Dirty:              l.dirty,
	}
	for _, r := range l.history {
		if !r.IsExit() || r.RealizedPnl == nil {
			continue
		}
		s.TotalTrades++
		s.TotalProfitLoss = s.TotalProfitLoss.Add(*r.RealizedPnl)
		switch r.RealizedPnl.Sign() {
		case 1:
			s.WinTrades++
		case -1:
			s.LossTrades++
		}
	}
	if s.TotalTrades > 0 {
		s.WinRate = decimal.NewFromInt(int64(s.WinTrades)).Div(decimal.NewFromInt(int64(s.TotalTrades))).Mul(hundred)
	}
	if l.initialBalance.IsPositive() {
		s.TotalProfitLossPct = s.TotalValue.Sub(l.initialBalance).Div(l.initialBalance).Mul(hundred)
	}
	return s
}

// GetHistory pages the trade log newest first. Records with the same
// timestamp keep reverse append order.
func (l *Ledger) GetHistory(limit, offset int) model.HistoryPage {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	l.mu.RLock()
	total := len(l.history)
	idx := make([]int, total)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ta, tb := l.history[idx[a]].Timestamp, l.history[idx[b]].Timestamp
		if ta.Equal(tb) {
			return idx[a] > idx[b]
		}
		return ta.After(tb)
	})

	page := model.HistoryPage{Trades: []model.TradeRecord{}, Total: total}
	for i := offset; i < total && i < offset+limit; i++ {
		page.Trades = append(page.Trades, l.history[idx[i]])
	}
	l.mu.RUnlock()
	return page
}
