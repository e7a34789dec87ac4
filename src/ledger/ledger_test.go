package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"papertrader/src/model"
	"papertrader/src/tp_sl"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// memStore keeps the snapshot as JSON so that tests exercise the same
// encoding as the real stores.
type memStore struct {
	mu       sync.Mutex
	data     []byte
	saves    int
	failNext int
}

func (m *memStore) Save(_ context.Context, snap *model.AccountSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext > 0 {
		m.failNext--
		return errors.New("disk full")
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	m.data = b
	m.saves++
	return nil
}

func (m *memStore) Load(_ context.Context) (*model.AccountSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, ErrSnapshotNotFound
	}
	var snap model.AccountSnapshot
	if err := json.Unmarshal(m.data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return &snap, nil
}

// stepClock advances one second per call.
func stepClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	t := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

var testStart = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestLedger(t *testing.T, store Store) *Ledger {
	t.Helper()
	log, _ := test.NewNullLogger()
	return New(logrus.NewEntry(log), Options{
		Store:          store,
		Slippage:       FixedSlippage(decimal.Zero),
		InitialBalance: d("10000"),
		Parameters:     model.DefaultTradingParameters(),
		AutoExecution:  true,
		Now:            stepClock(testStart),
	})
}

func openReq(token string) OpenRequest {
	return OpenRequest{
		TokenID:          token,
		SizedAmountUsd:   d("300"),
		QuotePrice:       d("0.0001"),
		FeePct:           d("0.25"),
		SlippagePct:      decimal.Zero,
		StopLossPct:      d("30"),
		TakeProfitLevels: tp_sl.BuildLevels([]decimal.Decimal{d("20"), d("40"), d("100")}),
	}
}

// conserved checks balance + remaining cost + entry fees - realized pnl == initial.
func conserved(t *testing.T, l *Ledger) {
	t.Helper()
	snap := l.Snapshot()
	total := snap.VirtualBalance
	for _, p := range snap.Positions {
		total = total.Add(p.RemainingCostUsd())
	}
	for _, r := range snap.TradeHistory {
		if r.Kind == model.TradeKindOpen {
			total = total.Add(r.FeeUsd)
		}
		if r.RealizedPnl != nil {
			total = total.Sub(*r.RealizedPnl)
		}
	}
	require.True(t, total.Equal(snap.InitialBalance), "conservation broken: %s != %s", total, snap.InitialBalance)
}

func TestOpen_DebitsSizedAmount(t *testing.T) {
	store := &memStore{}
	l := newTestLedger(t, store)

	before := l.Balance()
	pos, err := l.Open(context.Background(), openReq("tokA"))
	require.NoError(t, err)

	assert.True(t, before.Sub(l.Balance()).Equal(d("300")))
	assert.True(t, pos.CostBasisUsd.Equal(d("299.25")))
	assert.True(t, pos.FeeUsd.Equal(d("0.75")))
	assert.True(t, pos.CostBasisUsd.LessThan(pos.SizedAmountUsd))
	assert.True(t, pos.Quantity.Equal(pos.CostBasisUsd.Div(pos.EntryPrice)))
	assert.True(t, pos.StopLossPrice.Equal(d("0.00007")))
	assert.True(t, pos.HighWaterMark.Equal(pos.EntryPrice))
	assert.Equal(t, model.PositionStatusOpen, pos.Status)
	assert.Equal(t, 1, store.saves, "open persists synchronously")

	hist := l.GetHistory(10, 0)
	require.Equal(t, 1, hist.Total)
	assert.Equal(t, model.TradeKindOpen, hist.Trades[0].Kind)
	assert.Equal(t, model.ReasonSignal, hist.Trades[0].Reason)
	conserved(t, l)
}

func TestOpen_AppliesSlippageToExecutionPrice(t *testing.T) {
	l := newTestLedger(t, nil)
	req := openReq("tokA")
	req.SlippagePct = d("10")

	pos, err := l.Open(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, pos.EntryPrice.Equal(d("0.00011")))
	assert.True(t, pos.StopLossPrice.Equal(d("0.000077")))
}

func TestOpen_DuplicateToken(t *testing.T) {
	l := newTestLedger(t, nil)
	_, err := l.Open(context.Background(), openReq("tokA"))
	require.NoError(t, err)

	balance := l.Balance()
	_, err = l.Open(context.Background(), openReq("tokA"))
	require.ErrorIs(t, err, ErrDuplicatePosition)

	var lerr *LedgerError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, "open", lerr.Op)
	assert.Equal(t, "tokA", lerr.TokenID)
	assert.True(t, balance.Equal(l.Balance()), "rejected open must not debit")
	assert.Equal(t, 1, l.GetHistory(10, 0).Total)
}

func TestOpen_InsufficientBalance(t *testing.T) {
	l := newTestLedger(t, nil)
	req := openReq("tokA")
	req.SizedAmountUsd = d("10000.01")

	_, err := l.Open(context.Background(), req)
	require.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Empty(t, l.OpenPositions())
}

func TestOpen_InvalidRequest(t *testing.T) {
	cases := map[string]func(r *OpenRequest){
		"empty token":     func(r *OpenRequest) { r.TokenID = "" },
		"zero amount":     func(r *OpenRequest) { r.SizedAmountUsd = decimal.Zero },
		"zero quote":      func(r *OpenRequest) { r.QuotePrice = decimal.Zero },
		"stop loss 100":   func(r *OpenRequest) { r.StopLossPct = d("100") },
		"negative fee":    func(r *OpenRequest) { r.FeePct = d("-1") },
		"fractions < 1":   func(r *OpenRequest) { r.TakeProfitLevels = r.TakeProfitLevels[:2] },
		"levels unsorted": func(r *OpenRequest) { r.TakeProfitLevels[0], r.TakeProfitLevels[1] = r.TakeProfitLevels[1], r.TakeProfitLevels[0] },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			l := newTestLedger(t, nil)
			req := openReq("tokA")
			mutate(&req)
			_, err := l.Open(context.Background(), req)
			require.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
}

func TestPartialClose_FirstLevel(t *testing.T) {
	l := newTestLedger(t, nil)
	pos, err := l.Open(context.Background(), openReq("tokA"))
	require.NoError(t, err)

	target := tp_sl.TargetPrice(pos.EntryPrice, d("20"))
	rec, err := l.PartialClose(context.Background(), pos.ID, 0, target, "")
	require.NoError(t, err)

	assert.Equal(t, model.TradeKindPartialExit, rec.Kind)
	assert.Equal(t, "take_profit_20", rec.Reason)
	slice := pos.InitialQuantity.Mul(pos.TakeProfitLevels[0].Fraction)
	assert.True(t, rec.Amount.Equal(slice))

	after, ok := l.Position(pos.ID)
	require.True(t, ok)
	assert.True(t, after.Quantity.Equal(pos.InitialQuantity.Sub(slice)))
	assert.InDelta(t, pos.InitialQuantity.InexactFloat64()*2/3, after.Quantity.InexactFloat64(), 1e-6)
	assert.True(t, after.TakeProfitLevels[0].Triggered)
	assert.False(t, after.TakeProfitLevels[1].Triggered)
	assert.Equal(t, model.PositionStatusOpen, pos.Status)
	assert.Equal(t, model.PositionStatusClosing, after.Status)
	require.NotNil(t, rec.RealizedPnl)
	assert.True(t, rec.RealizedPnl.IsPositive())

	exits := 0
	for _, r := range l.GetHistory(10, 0).Trades {
		if r.IsExit() {
			exits++
		}
	}
	assert.Equal(t, 1, exits)

	_, err = l.PartialClose(context.Background(), pos.ID, 0, target, "")
	require.ErrorIs(t, err, ErrLevelAlreadyTriggered)
	conserved(t, l)
}

func TestPartialClose_LastLevelClosesPosition(t *testing.T) {
	l := newTestLedger(t, nil)
	pos, err := l.Open(context.Background(), openReq("tokA"))
	require.NoError(t, err)

	price := d("0.0003")
	for i := 0; i < 2; i++ {
		rec, err := l.PartialClose(context.Background(), pos.ID, i, price, "")
		require.NoError(t, err)
		assert.Equal(t, model.TradeKindPartialExit, rec.Kind)
	}
	last, err := l.PartialClose(context.Background(), pos.ID, 2, price, "")
	require.NoError(t, err)
	assert.Equal(t, model.TradeKindFullExit, last.Kind)
	assert.Equal(t, "take_profit_100", last.Reason)

	_, ok := l.Position(pos.ID)
	assert.False(t, ok)
	assert.Empty(t, l.GetOpenPositions())

	sold := decimal.Zero
	for _, r := range l.GetHistory(10, 0).Trades {
		if r.IsExit() {
			sold = sold.Add(r.Amount)
		}
	}
	assert.True(t, sold.Equal(pos.InitialQuantity), "sold %s of %s", sold, pos.InitialQuantity)
	conserved(t, l)
}

func TestPartialClose_NotFound(t *testing.T) {
	l := newTestLedger(t, nil)
	_, err := l.PartialClose(context.Background(), "missing", 0, d("1"), "")
	require.ErrorIs(t, err, ErrPositionNotFound)
}

func TestFullClose_StopLoss(t *testing.T) {
	l := newTestLedger(t, nil)
	pos, err := l.Open(context.Background(), openReq("tokA"))
	require.NoError(t, err)

	rec, err := l.FullClose(context.Background(), pos.ID, pos.StopLossPrice, model.ReasonStopLoss)
	require.NoError(t, err)

	assert.Equal(t, model.TradeKindFullExit, rec.Kind)
	assert.Equal(t, model.ReasonStopLoss, rec.Reason)
	require.NotNil(t, rec.RealizedPnl)
	assert.True(t, rec.RealizedPnl.IsNegative())
	assert.True(t, rec.Amount.Equal(pos.Quantity))
	assert.Empty(t, l.GetOpenPositions())

	_, err = l.FullClose(context.Background(), pos.ID, pos.StopLossPrice, model.ReasonStopLoss)
	require.ErrorIs(t, err, ErrPositionNotFound)

	// the token can be traded again once closed
	_, err = l.Open(context.Background(), openReq("tokA"))
	require.NoError(t, err)
	conserved(t, l)
}

func TestFullClose_PnlSignMatchesExitVsEntry(t *testing.T) {
	cases := []struct {
		exit     string
		positive bool
	}{
		{exit: "0.00015", positive: true},
		{exit: "0.00005", positive: false},
		{exit: "0.0001", positive: false}, // flat exit loses the exit fee
	}
	for _, tc := range cases {
		t.Run(tc.exit, func(t *testing.T) {
			l := newTestLedger(t, nil)
			pos, err := l.Open(context.Background(), openReq("tokA"))
			require.NoError(t, err)
			rec, err := l.FullClose(context.Background(), pos.ID, d(tc.exit), "")
			require.NoError(t, err)
			assert.Equal(t, model.ReasonManualClose, rec.Reason)
			assert.Equal(t, tc.positive, rec.RealizedPnl.IsPositive())
		})
	}
}

func TestExitSlippageReducesProceeds(t *testing.T) {
	log, _ := test.NewNullLogger()
	l := New(logrus.NewEntry(log), Options{
		Slippage:       FixedSlippage(d("2")),
		InitialBalance: d("10000"),
		Parameters:     model.DefaultTradingParameters(),
	})
	pos, err := l.Open(context.Background(), openReq("tokA"))
	require.NoError(t, err)

	rec, err := l.FullClose(context.Background(), pos.ID, d("0.0002"), "")
	require.NoError(t, err)
	assert.True(t, rec.Price.Equal(d("0.000196")))
	conserved(t, l)
}

func TestRecordPrice_TrailingSequence(t *testing.T) {
	l := newTestLedger(t, nil)
	pos, err := l.Open(context.Background(), openReq("tokA"))
	require.NoError(t, err)

	prices := []string{"0.00010", "0.00012", "0.00011", "0.00013"}
	wantHWM := []string{"0.00010", "0.00012", "0.00012", "0.00013"}
	wantSL := []string{"0.00007", "0.000114", "0.000114", "0.0001235"}

	for i, p := range prices {
		up, err := l.RecordPrice(context.Background(), pos.ID, d(p), d("5"))
		require.NoError(t, err)
		assert.True(t, up.Position.HighWaterMark.Equal(d(wantHWM[i])), "tick %d hwm %s", i, up.Position.HighWaterMark)
		assert.True(t, up.Position.StopLossPrice.Equal(d(wantSL[i])), "tick %d sl %s", i, up.Position.StopLossPrice)
		assert.True(t, up.Position.LastPrice.Equal(d(p)))
	}
}

func TestRecordPrice_ClearsStale(t *testing.T) {
	l := newTestLedger(t, nil)
	pos, err := l.Open(context.Background(), openReq("tokA"))
	require.NoError(t, err)

	changed, err := l.MarkStale(pos.ID, true)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, _ = l.MarkStale(pos.ID, true)
	assert.False(t, changed)

	p, _ := l.Position(pos.ID)
	assert.True(t, p.Stale)

	up, err := l.RecordPrice(context.Background(), pos.ID, d("0.0001"), d("5"))
	require.NoError(t, err)
	assert.True(t, up.StaleCleared)
	assert.False(t, up.Position.Stale)
}

func TestPersistenceFailureDoesNotFailMutation(t *testing.T) {
	store := &memStore{failNext: 1}
	l := newTestLedger(t, store)

	_, err := l.Open(context.Background(), openReq("tokA"))
	require.NoError(t, err)
	assert.True(t, l.Dirty())
	assert.Equal(t, 0, store.saves)

	_, err = l.Open(context.Background(), openReq("tokB"))
	require.NoError(t, err)
	assert.False(t, l.Dirty(), "next mutation retries the save")

	restored, ok, err := Restore(context.Background(), nil, Options{Store: store})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, restored.OpenPositions(), 2)
}

func TestFlush(t *testing.T) {
	store := &memStore{failNext: 1}
	l := newTestLedger(t, store)

	err := l.Flush(context.Background())
	require.ErrorIs(t, err, ErrPersistenceWriteFailed)
	assert.True(t, l.Dirty())

	require.NoError(t, l.Flush(context.Background()))
	assert.False(t, l.Dirty())
}

func TestRestore_RoundTrip(t *testing.T) {
	store := &memStore{}
	l := newTestLedger(t, store)
	ctx := context.Background()

	a, err := l.Open(ctx, openReq("tokA"))
	require.NoError(t, err)
	_, err = l.Open(ctx, openReq("tokB"))
	require.NoError(t, err)
	_, err = l.RecordPrice(ctx, a.ID, d("0.00013"), d("5"))
	require.NoError(t, err)
	_, err = l.PartialClose(ctx, a.ID, 0, d("0.00013"), "")
	require.NoError(t, err)
	paused := true
	require.NoError(t, l.SetTradingMode(ctx, &paused, nil))

	partial, _ := l.Position(a.ID)
	require.Equal(t, model.PositionStatusClosing, partial.Status)

	want := l.Snapshot()
	restored, ok, err := Restore(ctx, nil, Options{Store: store})
	require.NoError(t, err)
	require.True(t, ok)
	got := restored.Snapshot()

	assert.True(t, want.VirtualBalance.Equal(got.VirtualBalance))
	assert.True(t, want.InitialBalance.Equal(got.InitialBalance))
	assert.True(t, want.StartedAt.Equal(got.StartedAt))
	assert.Equal(t, want.Paused, got.Paused)
	assert.Equal(t, want.AutoExecution, got.AutoExecution)
	assertParamsEqual(t, want.TradingParameters, got.TradingParameters)

	require.Len(t, got.Positions, len(want.Positions))
	for i := range want.Positions {
		assertPositionEqual(t, want.Positions[i], got.Positions[i])
	}
	require.Len(t, got.TradeHistory, len(want.TradeHistory))
	for i := range want.TradeHistory {
		assertRecordEqual(t, want.TradeHistory[i], got.TradeHistory[i])
	}
	conserved(t, restored)
}

func TestRestore_NotFoundStartsFresh(t *testing.T) {
	l, ok, err := Restore(context.Background(), nil, Options{Store: &memStore{}, InitialBalance: d("500")})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, l.Balance().Equal(d("500")))
}

func TestRestore_CorruptSnapshotBlocks(t *testing.T) {
	_, _, err := Restore(context.Background(), nil, Options{Store: &memStore{data: []byte("{not json")}})
	require.ErrorIs(t, err, ErrCorruptSnapshot)

	bad, _ := json.Marshal(model.AccountSnapshot{
		VirtualBalance: d("100"),
		InitialBalance: d("100"),
		Positions:      []model.Position{{ID: "p1", TokenID: "t", Status: model.PositionStatusOpen}},
	})
	_, _, err = Restore(context.Background(), nil, Options{Store: &memStore{data: bad}})
	require.ErrorIs(t, err, ErrCorruptSnapshot)
}

func TestGetHistory_NewestFirstWithPaging(t *testing.T) {
	l := newTestLedger(t, nil)
	ctx := context.Background()
	for _, tok := range []string{"t1", "t2", "t3"} {
		pos, err := l.Open(ctx, openReq(tok))
		require.NoError(t, err)
		_, err = l.FullClose(ctx, pos.ID, d("0.0001"), "")
		require.NoError(t, err)
	}

	page := l.GetHistory(2, 0)
	assert.Equal(t, 6, page.Total)
	require.Len(t, page.Trades, 2)
	assert.Equal(t, "t3", page.Trades[0].TokenID)
	assert.Equal(t, model.TradeKindFullExit, page.Trades[0].Kind)
	assert.Equal(t, model.TradeKindOpen, page.Trades[1].Kind)
	assert.True(t, page.Trades[0].Timestamp.After(page.Trades[1].Timestamp))

	last := l.GetHistory(2, 4)
	require.Len(t, last.Trades, 2)
	assert.Equal(t, "t1", last.Trades[1].TokenID)
	assert.Equal(t, model.TradeKindOpen, last.Trades[1].Kind)

	assert.Empty(t, l.GetHistory(10, 6).Trades)
	assert.Len(t, l.GetHistory(0, 0).Trades, 6)
}

func TestGetAccountSummary(t *testing.T) {
	l := newTestLedger(t, nil)
	ctx := context.Background()

	win, _ := l.Open(ctx, openReq("win"))
	loss, _ := l.Open(ctx, openReq("loss"))
	open, _ := l.Open(ctx, openReq("open"))
	_, err := l.FullClose(ctx, win.ID, d("0.0002"), "")
	require.NoError(t, err)
	_, err = l.FullClose(ctx, loss.ID, d("0.00005"), model.ReasonStopLoss)
	require.NoError(t, err)
	_, err = l.RecordPrice(ctx, open.ID, d("0.0002"), d("5"))
	require.NoError(t, err)

	s := l.GetAccountSummary()
	assert.Equal(t, 2, s.TotalTrades)
	assert.Equal(t, 1, s.WinTrades)
	assert.Equal(t, 1, s.LossTrades)
	assert.True(t, s.WinRate.Equal(d("50")))
	assert.Equal(t, 1, s.OpenPositions)
	assert.True(t, s.OpenPositionsValue.Equal(open.Quantity.Mul(d("0.0002"))))
	assert.True(t, s.TotalValue.Equal(s.VirtualBalance.Add(s.OpenPositionsValue)))
	assert.True(t, s.AutoExecution)

	views := l.GetOpenPositions()
	require.Len(t, views, 1)
	assert.True(t, views[0].PnlPercentage.Equal(d("100")))
}

func TestReadsReturnCopies(t *testing.T) {
	l := newTestLedger(t, nil)
	pos, err := l.Open(context.Background(), openReq("tokA"))
	require.NoError(t, err)

	pos.TakeProfitLevels[0].Triggered = true
	pos.Quantity = decimal.Zero

	again, _ := l.Position(pos.ID)
	assert.False(t, again.TakeProfitLevels[0].Triggered)
	assert.True(t, again.Quantity.IsPositive())
}

func TestReset(t *testing.T) {
	store := &memStore{}
	l := newTestLedger(t, store)
	_, err := l.Open(context.Background(), openReq("tokA"))
	require.NoError(t, err)

	require.ErrorIs(t, l.Reset(context.Background(), decimal.Zero), ErrInvalidParameter)
	require.NoError(t, l.Reset(context.Background(), d("2500")))

	assert.True(t, l.Balance().Equal(d("2500")))
	assert.Empty(t, l.OpenPositions())
	assert.Equal(t, 0, l.GetHistory(10, 0).Total)
	conserved(t, l)
}

func TestUpdateTradingParameters(t *testing.T) {
	l := newTestLedger(t, &memStore{})
	p := model.DefaultTradingParameters()
	p.PositionSizePct = d("7")
	require.NoError(t, l.UpdateTradingParameters(context.Background(), p))
	assert.True(t, l.Parameters().PositionSizePct.Equal(d("7")))

	p.TakeProfitPcts = nil
	require.ErrorIs(t, l.UpdateTradingParameters(context.Background(), p), ErrInvalidParameter)
	assert.Len(t, l.Parameters().TakeProfitPcts, 3)
}

func TestSetTradingMode(t *testing.T) {
	l := newTestLedger(t, nil)
	off := false
	require.NoError(t, l.SetTradingMode(context.Background(), nil, &off))
	paused, auto := l.TradingMode()
	assert.False(t, paused)
	assert.False(t, auto)
}

func TestConcurrentOpensAndClosesStayConsistent(t *testing.T) {
	l := newTestLedger(t, &memStore{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := openReq(fmt.Sprintf("tok%d", i))
			req.SizedAmountUsd = d("100")
			pos, err := l.Open(ctx, req)
			if err != nil {
				t.Errorf("open %d: %v", i, err)
				return
			}
			_, _ = l.RecordPrice(ctx, pos.ID, d("0.00013"), d("5"))
			_ = l.GetAccountSummary()
			if _, err := l.PartialClose(ctx, pos.ID, 0, d("0.00013"), ""); err != nil {
				t.Errorf("partial %d: %v", i, err)
			}
			if i%2 == 0 {
				if _, err := l.FullClose(ctx, pos.ID, d("0.00009"), model.ReasonStopLoss); err != nil {
					t.Errorf("close %d: %v", i, err)
				}
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, l.OpenPositions(), 10)
	conserved(t, l)
}

func assertParamsEqual(t *testing.T, want, got model.TradingParameters) {
	t.Helper()
	assert.True(t, want.PositionSizePct.Equal(got.PositionSizePct))
	assert.True(t, want.InitialStopLossPct.Equal(got.InitialStopLossPct))
	assert.True(t, want.TrailingStopPct.Equal(got.TrailingStopPct))
	assert.True(t, want.FeePct.Equal(got.FeePct))
	require.Len(t, got.TakeProfitPcts, len(want.TakeProfitPcts))
	for i := range want.TakeProfitPcts {
		assert.True(t, want.TakeProfitPcts[i].Equal(got.TakeProfitPcts[i]))
	}
	assert.Equal(t, want.HoneypotCheck, got.HoneypotCheck)
	assert.Equal(t, want.MinHolderCount, got.MinHolderCount)
}

func assertPositionEqual(t *testing.T, want, got model.Position) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.TokenID, got.TokenID)
	assert.Equal(t, want.Status, got.Status)
	assert.Equal(t, want.EntryTxID, got.EntryTxID)
	assert.Equal(t, want.Stale, got.Stale)
	assert.True(t, want.EntryTime.Equal(got.EntryTime))
	assert.True(t, want.LastPriceAt.Equal(got.LastPriceAt))
	for name, pair := range map[string][2]decimal.Decimal{
		"entry":    {want.EntryPrice, got.EntryPrice},
		"qty":      {want.Quantity, got.Quantity},
		"initial":  {want.InitialQuantity, got.InitialQuantity},
		"sized":    {want.SizedAmountUsd, got.SizedAmountUsd},
		"cost":     {want.CostBasisUsd, got.CostBasisUsd},
		"released": {want.ReleasedCostUsd, got.ReleasedCostUsd},
		"fee":      {want.FeeUsd, got.FeeUsd},
		"stop":     {want.StopLossPrice, got.StopLossPrice},
		"hwm":      {want.HighWaterMark, got.HighWaterMark},
		"last":     {want.LastPrice, got.LastPrice},
	} {
		assert.True(t, pair[0].Equal(pair[1]), "%s: %s != %s", name, pair[0], pair[1])
	}
	require.Len(t, got.TakeProfitLevels, len(want.TakeProfitLevels))
	for i := range want.TakeProfitLevels {
		assert.True(t, want.TakeProfitLevels[i].Pct.Equal(got.TakeProfitLevels[i].Pct))
		assert.True(t, want.TakeProfitLevels[i].Fraction.Equal(got.TakeProfitLevels[i].Fraction))
		assert.Equal(t, want.TakeProfitLevels[i].Triggered, got.TakeProfitLevels[i].Triggered)
	}
}

func assertRecordEqual(t *testing.T, want, got model.TradeRecord) {
	t.Helper()
	assert.Equal(t, want.RecordID, got.RecordID)
	assert.Equal(t, want.PositionID, got.PositionID)
	assert.Equal(t, want.TokenID, got.TokenID)
	assert.Equal(t, want.Kind, got.Kind)
	assert.Equal(t, want.Reason, got.Reason)
	assert.Equal(t, want.TxID, got.TxID)
	assert.True(t, want.Timestamp.Equal(got.Timestamp))
	assert.True(t, want.Price.Equal(got.Price))
	assert.True(t, want.Amount.Equal(got.Amount))
	assert.True(t, want.ValueUsd.Equal(got.ValueUsd))
	assert.True(t, want.FeeUsd.Equal(got.FeeUsd))
	if want.RealizedPnl == nil {
		assert.Nil(t, got.RealizedPnl)
	} else {
		require.NotNil(t, got.RealizedPnl)
		assert.True(t, want.RealizedPnl.Equal(*got.RealizedPnl))
		assert.True(t, want.PnlPercentage.Equal(*got.PnlPercentage))
	}
}
