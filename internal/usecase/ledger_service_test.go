package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tradedesk/internal/domain"
	"tradedesk/internal/usecase"
)

// ---- in-memory repositories ----

type memOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]domain.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[uuid.UUID]domain.Order)}
}

func (r *memOrderRepo) Save(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = *order
	return nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &order, nil
}

func (r *memOrderRepo) GetByUserID(_ context.Context, userID uuid.UUID, limit int) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			o := order
			out = append(out, &o)
		}
	}
	return out, nil
}

func (r *memOrderRepo) Update(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.ID]; !ok {
		return domain.ErrNotFound
	}
	r.orders[order.ID] = *order
	return nil
}

type memTradeRepo struct {
	mu     sync.Mutex
	trades map[uuid.UUID]domain.Trade
}

func newMemTradeRepo() *memTradeRepo {
	return &memTradeRepo{trades: make(map[uuid.UUID]domain.Trade)}
}

func (r *memTradeRepo) Save(_ context.Context, trade *domain.Trade) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trades[trade.ID] = *trade
	return nil
}

func (r *memTradeRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Trade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	trade, ok := r.trades[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &trade, nil
}

func (r *memTradeRepo) GetByOrderID(_ context.Context, orderID uuid.UUID) (*domain.Trade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, trade := range r.trades {
		if trade.OrderID == orderID {
			t := trade
			return &t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memTradeRepo) GetByUserID(_ context.Context, userID uuid.UUID, limit int) ([]*domain.Trade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Trade
	for _, trade := range r.trades {
		if trade.UserID == userID {
			t := trade
			out = append(out, &t)
		}
	}
	return out, nil
}

func (r *memTradeRepo) GetOpenTrades(_ context.Context) ([]*domain.Trade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Trade
	for _, trade := range r.trades {
		if trade.Status == domain.TradeStatusOpen {
			t := trade
			out = append(out, &t)
		}
	}
	return out, nil
}

func (r *memTradeRepo) Update(_ context.Context, trade *domain.Trade) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.trades[trade.ID]; !ok {
		return domain.ErrNotFound
	}
	r.trades[trade.ID] = *trade
	return nil
}

func (r *memTradeRepo) SumNetPnLSince(_ context.Context, userID uuid.UUID, walletType string, since time.Time) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum float64
	for _, trade := range r.trades {
		if trade.UserID != userID || trade.WalletType != walletType || trade.Status == domain.TradeStatusOpen {
			continue
		}
		if trade.ExitTime != nil && !trade.ExitTime.Before(since) {
			sum += trade.NetPnL
		}
	}
	return sum, nil
}

type memWalletRepo struct {
	mu      sync.Mutex
	wallets map[string]domain.Wallet
}

func newMemWalletRepo() *memWalletRepo {
	return &memWalletRepo{wallets: make(map[string]domain.Wallet)}
}

func walletKey(userID uuid.UUID, walletType string) string {
	return userID.String() + "/" + walletType
}

func (r *memWalletRepo) Create(_ context.Context, wallet *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wallets[walletKey(wallet.UserID, wallet.WalletType)] = *wallet
	return nil
}

func (r *memWalletRepo) GetByUserAndType(_ context.Context, userID uuid.UUID, walletType string) (*domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wallet, ok := r.wallets[walletKey(userID, walletType)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &wallet, nil
}

func (r *memWalletRepo) GetByUserID(_ context.Context, userID uuid.UUID) ([]*domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Wallet
	for _, wallet := range r.wallets {
		if wallet.UserID == userID {
			w := wallet
			out = append(out, &w)
		}
	}
	return out, nil
}

func (r *memWalletRepo) Update(_ context.Context, wallet *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wallets[walletKey(wallet.UserID, wallet.WalletType)] = *wallet
	return nil
}

// recordingPublisher counts published state events by type
type recordingPublisher struct {
	mu     sync.Mutex
	counts map[string]int
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{counts: make(map[string]int)}
}

func (p *recordingPublisher) PublishUser(_ uuid.UUID, event *domain.StateEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counts[event.Type]++
}

func (p *recordingPublisher) PublishBroadcast(_ string, event *domain.StateEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counts[event.Type]++
}

func (p *recordingPublisher) count(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[eventType]
}

// ---- fixtures ----

type fixture struct {
	orders    *memOrderRepo
	trades    *memTradeRepo
	wallets   *memWalletRepo
	publisher *recordingPublisher
	svc       *usecase.LedgerService
	userID    uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		orders:    newMemOrderRepo(),
		trades:    newMemTradeRepo(),
		wallets:   newMemWalletRepo(),
		publisher: newRecordingPublisher(),
		userID:    uuid.New(),
	}
	f.svc = usecase.NewLedgerService(zap.NewNop(), f.orders, f.trades, f.wallets, f.publisher)
	require.NoError(t, f.wallets.Create(context.Background(), &domain.Wallet{
		ID:             uuid.New(),
		UserID:         f.userID,
		WalletType:     domain.WalletTypePaper,
		InitialCapital: 100000,
		CurrentCapital: 100000,
	}))
	return f
}

func (f *fixture) placeOrder(t *testing.T, input usecase.PlaceOrderInput) *domain.Order {
	t.Helper()
	order, err := f.svc.PlaceOrder(context.Background(), input)
	require.NoError(t, err)
	return order
}

func marketBuy(userID uuid.UUID, qty float64) usecase.PlaceOrderInput {
	return usecase.PlaceOrderInput{
		UserID:     userID,
		WalletType: domain.WalletTypePaper,
		ScripCode:  "RELIANCE",
		Side:       domain.OrderSideBuy,
		Kind:       domain.OrderKindMarket,
		Quantity:   qty,
	}
}

// openTrade seeds an OPEN trade directly, bypassing the order flow
func (f *fixture) openTrade(t *testing.T, entry, qty, stopLoss, fees float64, side string) *domain.Trade {
	t.Helper()
	trade := &domain.Trade{
		ID:         uuid.New(),
		UserID:     f.userID,
		OrderID:    uuid.New(),
		TradeID:    "01J0TESTTESTTESTTESTTESTTE",
		ScripCode:  "RELIANCE",
		Side:       side,
		WalletType: domain.WalletTypePaper,
		EntryPrice: entry,
		Quantity:   qty,
		StopLoss:   stopLoss,
		Fees:       fees,
		EntryTime:  time.Now().Add(-30 * time.Minute),
		Status:     domain.TradeStatusOpen,
	}
	require.NoError(t, f.trades.Save(context.Background(), trade))
	return trade
}

// ---- order lifecycle ----

func TestPlaceOrderValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input usecase.PlaceOrderInput
	}{
		{"missing scrip", usecase.PlaceOrderInput{UserID: f.userID, WalletType: domain.WalletTypePaper, Side: domain.OrderSideBuy, Kind: domain.OrderKindMarket, Quantity: 1}},
		{"zero quantity", usecase.PlaceOrderInput{UserID: f.userID, WalletType: domain.WalletTypePaper, ScripCode: "TCS", Side: domain.OrderSideBuy, Kind: domain.OrderKindMarket}},
		{"negative quantity", usecase.PlaceOrderInput{UserID: f.userID, WalletType: domain.WalletTypePaper, ScripCode: "TCS", Side: domain.OrderSideBuy, Kind: domain.OrderKindMarket, Quantity: -1}},
		{"bad side", usecase.PlaceOrderInput{UserID: f.userID, WalletType: domain.WalletTypePaper, ScripCode: "TCS", Side: "HOLD", Kind: domain.OrderKindMarket, Quantity: 1}},
		{"bad kind", usecase.PlaceOrderInput{UserID: f.userID, WalletType: domain.WalletTypePaper, ScripCode: "TCS", Side: domain.OrderSideBuy, Kind: "STOP", Quantity: 1}},
		{"limit without price", usecase.PlaceOrderInput{UserID: f.userID, WalletType: domain.WalletTypePaper, ScripCode: "TCS", Side: domain.OrderSideBuy, Kind: domain.OrderKindLimit, Quantity: 1}},
		{"bad wallet type", usecase.PlaceOrderInput{UserID: f.userID, WalletType: "DEMO", ScripCode: "TCS", Side: domain.OrderSideBuy, Kind: domain.OrderKindMarket, Quantity: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.PlaceOrder(ctx, tc.input)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	order := f.placeOrder(t, marketBuy(f.userID, 10))
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.False(t, order.CreatedAt.IsZero())
}

func TestFillOrderOpensTrade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order := f.placeOrder(t, marketBuy(f.userID, 10))
	at := time.Now()

	trade, err := f.svc.FillOrder(ctx, order.ID, 100, at)
	require.NoError(t, err)
	assert.Equal(t, domain.TradeStatusOpen, trade.Status)
	assert.Equal(t, domain.SideLong, trade.Side)
	assert.Equal(t, 100.0, trade.EntryPrice)
	assert.Equal(t, 10.0, trade.Quantity)
	assert.NotEmpty(t, trade.TradeID)
	// market order, taker fee both legs: 100 * 10 * 0.0004 * 2
	assert.InDelta(t, 0.8, trade.Fees, 1e-9)

	stored, err := f.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusFilled, stored.Status)
	require.NotNil(t, stored.FilledPrice)
	assert.Equal(t, 100.0, *stored.FilledPrice)
	require.NotNil(t, stored.FilledAt)
}

func TestFillOrderSellOpensShort(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	input := marketBuy(f.userID, 5)
	input.Side = domain.OrderSideSell
	order := f.placeOrder(t, input)

	trade, err := f.svc.FillOrder(ctx, order.ID, 200, time.Now())
	require.NoError(t, err)
	assert.Equal(t, domain.SideShort, trade.Side)
}

func TestFillOrderIdempotentOnRedelivery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order := f.placeOrder(t, marketBuy(f.userID, 10))
	at := time.Now()

	first, err := f.svc.FillOrder(ctx, order.ID, 100, at)
	require.NoError(t, err)

	tradeEvents := f.publisher.count(domain.EventTypeTradeUpdate)
	orderEvents := f.publisher.count(domain.EventTypeOrderUpdate)

	// Redelivery with identical fill data succeeds without a new trade
	// or a second emission
	second, err := f.svc.FillOrder(ctx, order.ID, 100, at)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, tradeEvents, f.publisher.count(domain.EventTypeTradeUpdate))
	assert.Equal(t, orderEvents, f.publisher.count(domain.EventTypeOrderUpdate))

	// A conflicting price is not a redelivery
	_, err = f.svc.FillOrder(ctx, order.ID, 101, at)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestFillOrderTerminalStates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order := f.placeOrder(t, marketBuy(f.userID, 10))
	_, err := f.svc.CancelOrder(ctx, f.userID, order.ID)
	require.NoError(t, err)

	_, err = f.svc.FillOrder(ctx, order.ID, 100, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	rejected := f.placeOrder(t, marketBuy(f.userID, 10))
	_, err = f.svc.RejectOrder(ctx, rejected.ID)
	require.NoError(t, err)

	_, err = f.svc.FillOrder(ctx, rejected.ID, 100, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCancelOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order := f.placeOrder(t, marketBuy(f.userID, 10))

	cancelled, err := f.svc.CancelOrder(ctx, f.userID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)

	// terminal, cannot cancel twice
	_, err = f.svc.CancelOrder(ctx, f.userID, order.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCancelOrderOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order := f.placeOrder(t, marketBuy(f.userID, 10))

	_, err := f.svc.CancelOrder(ctx, uuid.New(), order.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	stored, err := f.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, stored.Status)
}

// ---- trade close ----

func TestCloseTradeLongWin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	trade := f.openTrade(t, 100, 10, 95, 5, domain.SideLong)
	at := time.Now()

	closed, err := f.svc.CloseTrade(ctx, trade.ID, 110, at, domain.ExitReasonTarget1)
	require.NoError(t, err)

	assert.Equal(t, domain.TradeStatusClosedWin, closed.Status)
	assert.InDelta(t, 100.0, closed.PnL, 1e-9)
	assert.InDelta(t, 10.0, closed.PnLPercent, 1e-9)
	assert.InDelta(t, 2.0, closed.RMultiple, 1e-9) // risk = |100-95|*10 = 50
	assert.InDelta(t, 95.0, closed.NetPnL, 1e-9)
	assert.Equal(t, domain.ExitReasonTarget1, closed.ExitReason)
	require.NotNil(t, closed.ExitPrice)
	assert.Equal(t, 110.0, *closed.ExitPrice)
	require.NotNil(t, closed.ExitTime)
	assert.Equal(t, 30, closed.DurationMinutes)

	wallet, err := f.wallets.GetByUserAndType(ctx, f.userID, domain.WalletTypePaper)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, wallet.RealizedPnL, 1e-9)
	assert.InDelta(t, 5.0, wallet.TotalFees, 1e-9)
	assert.InDelta(t, 100095.0, wallet.CurrentCapital, 1e-9)
	assert.Equal(t, 1, wallet.TotalTradesCount)
	assert.Equal(t, 1, wallet.WinCount)
	assert.Equal(t, 0, wallet.LossCount)
	assert.InDelta(t, 1.0, wallet.WinRate, 1e-9)
}

func TestCloseTradeShortLoss(t *testing.T) {
	f := newFixture(t)

	trade := f.openTrade(t, 100, 10, 0, 0, domain.SideShort)

	closed, err := f.svc.CloseTrade(context.Background(), trade.ID, 105, time.Now(), domain.ExitReasonStopLoss)
	require.NoError(t, err)

	assert.Equal(t, domain.TradeStatusClosedLoss, closed.Status)
	assert.InDelta(t, -50.0, closed.PnL, 1e-9)
	assert.InDelta(t, -50.0, closed.NetPnL, 1e-9)
	// no stop loss on record, r-multiple stays zero
	assert.Zero(t, closed.RMultiple)
}

func TestCloseTradeBreakeven(t *testing.T) {
	f := newFixture(t)

	// gross pnl exactly covers fees
	trade := f.openTrade(t, 100, 10, 95, 5, domain.SideLong)

	closed, err := f.svc.CloseTrade(context.Background(), trade.ID, 100.5, time.Now(), domain.ExitReasonManual)
	require.NoError(t, err)

	assert.Equal(t, domain.TradeStatusClosedBreakeven, closed.Status)
	assert.InDelta(t, 5.0, closed.PnL, 1e-9)
	assert.InDelta(t, 0.0, closed.NetPnL, 1e-9)

	wallet, err := f.wallets.GetByUserAndType(context.Background(), f.userID, domain.WalletTypePaper)
	require.NoError(t, err)
	assert.Equal(t, 1, wallet.TotalTradesCount)
	assert.Equal(t, 0, wallet.WinCount)
	assert.Equal(t, 0, wallet.LossCount)
}

func TestCloseTradeAlreadyClosed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	trade := f.openTrade(t, 100, 10, 95, 0, domain.SideLong)

	_, err := f.svc.CloseTrade(ctx, trade.ID, 110, time.Now(), domain.ExitReasonManual)
	require.NoError(t, err)

	_, err = f.svc.CloseTrade(ctx, trade.ID, 120, time.Now(), domain.ExitReasonManual)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// wallet applied exactly once
	wallet, err := f.wallets.GetByUserAndType(ctx, f.userID, domain.WalletTypePaper)
	require.NoError(t, err)
	assert.Equal(t, 1, wallet.TotalTradesCount)
	assert.InDelta(t, 100.0, wallet.RealizedPnL, 1e-9)
}

func TestCloseTradeConcurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	trade := f.openTrade(t, 100, 10, 95, 0, domain.SideLong)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CloseTrade(ctx, trade.ID, 110, time.Now(), domain.ExitReasonManual)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var okCount, conflictCount int
	for err := range errs {
		switch {
		case err == nil:
			okCount++
		default:
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
			conflictCount++
		}
	}
	assert.Equal(t, 1, okCount)
	assert.Equal(t, 1, conflictCount)

	wallet, err := f.wallets.GetByUserAndType(ctx, f.userID, domain.WalletTypePaper)
	require.NoError(t, err)
	assert.Equal(t, 1, wallet.TotalTradesCount)
	assert.InDelta(t, 100.0, wallet.RealizedPnL, 1e-9)
	assert.InDelta(t, 100100.0, wallet.CurrentCapital, 1e-9)
}

func TestWalletAggregatesAcrossCloses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	closes := []struct {
		exit float64
		fees float64
	}{
		{110, 2}, // net +98
		{90, 2},  // net -102
		{105, 1}, // net +49
	}
	var wantRealized, wantFees float64
	for _, c := range closes {
		trade := f.openTrade(t, 100, 10, 95, c.fees, domain.SideLong)
		_, err := f.svc.CloseTrade(ctx, trade.ID, c.exit, time.Now(), domain.ExitReasonManual)
		require.NoError(t, err)
		wantRealized += (c.exit - 100) * 10
		wantFees += c.fees
	}

	wallet, err := f.wallets.GetByUserAndType(ctx, f.userID, domain.WalletTypePaper)
	require.NoError(t, err)
	assert.InDelta(t, wantRealized, wallet.RealizedPnL, 1e-9)
	assert.InDelta(t, wantFees, wallet.TotalFees, 1e-9)
	assert.InDelta(t, wallet.InitialCapital+wantRealized-wantFees, wallet.CurrentCapital, 1e-9)
	assert.Equal(t, 3, wallet.TotalTradesCount)
	assert.Equal(t, 2, wallet.WinCount)
	assert.Equal(t, 1, wallet.LossCount)
	assert.InDelta(t, 2.0/3.0, wallet.WinRate, 1e-9)
}

func TestWalletSnapshotRollingWindows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// one close inside every rolling window, one far outside all of them
	recent := f.openTrade(t, 100, 10, 0, 0, domain.SideLong)
	_, err := f.svc.CloseTrade(ctx, recent.ID, 110, time.Now(), domain.ExitReasonManual)
	require.NoError(t, err)

	old := f.openTrade(t, 100, 10, 0, 0, domain.SideLong)
	oldExit := time.Now().AddDate(0, -2, 0)
	stored, err := f.trades.GetByID(ctx, old.ID)
	require.NoError(t, err)
	stored.Status = domain.TradeStatusClosedWin
	stored.NetPnL = 500
	stored.ExitTime = &oldExit
	require.NoError(t, f.trades.Update(ctx, stored))

	wallet, err := f.svc.WalletSnapshot(ctx, f.userID, domain.WalletTypePaper)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, wallet.DayPnL, 1e-9)
	assert.InDelta(t, 100.0, wallet.WeekPnL, 1e-9)
	assert.InDelta(t, 100.0, wallet.MonthPnL, 1e-9)
}

func TestMarkToMarket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.openTrade(t, 100, 10, 0, 0, domain.SideLong)
	short := f.openTrade(t, 200, 5, 0, 0, domain.SideShort)
	short.ScripCode = "TCS"
	require.NoError(t, f.trades.Update(ctx, short))

	err := f.svc.MarkToMarket(ctx, map[string]float64{
		"RELIANCE": 105, // long: +50
		"TCS":      190, // short: +50
	})
	require.NoError(t, err)

	wallet, err := f.wallets.GetByUserAndType(ctx, f.userID, domain.WalletTypePaper)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, wallet.UnrealizedPnL, 1e-9)
	// realized aggregates untouched
	assert.Zero(t, wallet.RealizedPnL)
	assert.Equal(t, 0, wallet.TotalTradesCount)
}

func TestMarkToMarketSkipsUnknownScrips(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.openTrade(t, 100, 10, 0, 0, domain.SideLong)

	err := f.svc.MarkToMarket(ctx, map[string]float64{"UNRELATED": 1})
	require.NoError(t, err)

	wallet, err := f.wallets.GetByUserAndType(ctx, f.userID, domain.WalletTypePaper)
	require.NoError(t, err)
	assert.Zero(t, wallet.UnrealizedPnL)
}
