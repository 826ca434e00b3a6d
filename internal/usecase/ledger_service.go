package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"tradedesk/internal/domain"
	"tradedesk/internal/utils"
)

const (
	// Round-trip execution fees, charged when the position is opened.
	// Market orders pay the taker rate, limit orders the maker rate.
	TradingFeeTakerPercent = 0.04 // 0.04% per leg
	TradingFeeMakerPercent = 0.02 // 0.02% per leg
)

// TradeNotifier receives closed-trade notifications
type TradeNotifier interface {
	NotifyTradeClosed(trade *domain.Trade) error
}

// LedgerService owns all order, trade and wallet transition logic.
// Mutations for a given user are serialized through a keyed mutex so
// request-serving workers and ingest workers never race on the same
// wallet aggregates.
type LedgerService struct {
	orderRepo  domain.OrderRepository
	tradeRepo  domain.TradeRepository
	walletRepo domain.WalletRepository
	publisher  domain.EventPublisher
	notifier   TradeNotifier
	locks      *KeyedMutex
	logger     *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	logger *zap.Logger,
	orderRepo domain.OrderRepository,
	tradeRepo domain.TradeRepository,
	walletRepo domain.WalletRepository,
	publisher domain.EventPublisher,
) *LedgerService {
	return &LedgerService{
		orderRepo:  orderRepo,
		tradeRepo:  tradeRepo,
		walletRepo: walletRepo,
		publisher:  publisher,
		locks:      NewKeyedMutex(),
		logger:     logger,
	}
}

// SetNotifier attaches an optional closed-trade notifier
func (s *LedgerService) SetNotifier(n TradeNotifier) {
	s.notifier = n
}

// PlaceOrderInput holds the user-supplied order parameters
type PlaceOrderInput struct {
	UserID        uuid.UUID
	WalletType    string
	ScripCode     string
	Side          string
	Kind          string
	Quantity      float64
	LimitPrice    float64
	CurrentPrice  float64
	StopLoss      float64
	Target1       float64
	Target2       float64
	TrailingType  string
	TrailingValue float64
}

// PlaceOrder validates the input and creates a PENDING order
func (s *LedgerService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error) {
	if input.ScripCode == "" {
		return nil, fmt.Errorf("scrip code is required: %w", domain.ErrValidation)
	}
	if input.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", domain.ErrValidation)
	}
	if input.Side != domain.OrderSideBuy && input.Side != domain.OrderSideSell {
		return nil, fmt.Errorf("unknown order side %q: %w", input.Side, domain.ErrValidation)
	}
	if input.Kind != domain.OrderKindMarket && input.Kind != domain.OrderKindLimit {
		return nil, fmt.Errorf("unknown order kind %q: %w", input.Kind, domain.ErrValidation)
	}
	if input.Kind == domain.OrderKindLimit && input.LimitPrice <= 0 {
		return nil, fmt.Errorf("limit orders require a positive limit price: %w", domain.ErrValidation)
	}
	if input.WalletType != domain.WalletTypePaper && input.WalletType != domain.WalletTypeReal {
		return nil, fmt.Errorf("unknown wallet type %q: %w", input.WalletType, domain.ErrValidation)
	}

	order := &domain.Order{
		ID:            uuid.New(),
		UserID:        input.UserID,
		WalletType:    input.WalletType,
		ScripCode:     input.ScripCode,
		Side:          input.Side,
		Kind:          input.Kind,
		Quantity:      input.Quantity,
		LimitPrice:    input.LimitPrice,
		CurrentPrice:  input.CurrentPrice,
		StopLoss:      input.StopLoss,
		Target1:       input.Target1,
		Target2:       input.Target2,
		TrailingType:  input.TrailingType,
		TrailingValue: input.TrailingValue,
		Status:        domain.OrderStatusPending,
		CreatedAt:     time.Now(),
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	s.logger.Info("order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", order.UserID.String()),
		zap.String("scrip_code", order.ScripCode),
		zap.String("side", order.Side))

	s.publishUser(order.UserID, domain.EventTypeOrderUpdate, order)
	return order, nil
}

// FillOrder transitions a PENDING order to FILLED and opens the
// corresponding trade. Redelivery of the same fill is a no-op that
// succeeds without re-emitting a state change; a conflicting fill or a
// fill on a cancelled/rejected order fails with ErrInvalidTransition.
func (s *LedgerService) FillOrder(ctx context.Context, orderID uuid.UUID, filledPrice float64, at time.Time) (*domain.Trade, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	key := order.UserID.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	// Reload under the lock; the first read only resolved the lock key
	order, err = s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch order.Status {
	case domain.OrderStatusPending:
		// proceed
	case domain.OrderStatusFilled:
		if order.FilledPrice != nil && *order.FilledPrice == filledPrice {
			return s.tradeRepo.GetByOrderID(ctx, orderID)
		}
		return nil, fmt.Errorf("order %s already filled at a different price: %w", orderID, domain.ErrInvalidTransition)
	default:
		return nil, fmt.Errorf("order %s is %s: %w", orderID, order.Status, domain.ErrInvalidTransition)
	}

	order.Status = domain.OrderStatusFilled
	order.FilledPrice = &filledPrice
	order.FilledAt = &at
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	side := domain.SideLong
	if order.Side == domain.OrderSideSell {
		side = domain.SideShort
	}

	feeRate := TradingFeeTakerPercent
	if order.Kind == domain.OrderKindLimit {
		feeRate = TradingFeeMakerPercent
	}

	trade := &domain.Trade{
		ID:         uuid.New(),
		UserID:     order.UserID,
		OrderID:    order.ID,
		TradeID:    ulid.Make().String(),
		ScripCode:  order.ScripCode,
		Side:       side,
		WalletType: order.WalletType,
		EntryPrice: filledPrice,
		Quantity:   order.Quantity,
		StopLoss:   order.StopLoss,
		Target1:    order.Target1,
		Target2:    order.Target2,
		Fees:       filledPrice * order.Quantity * (feeRate / 100) * 2,
		EntryTime:  at,
		Status:     domain.TradeStatusOpen,
	}

	if err := s.tradeRepo.Save(ctx, trade); err != nil {
		return nil, fmt.Errorf("failed to save trade: %w", err)
	}

	s.logger.Info("order filled",
		zap.String("order_id", order.ID.String()),
		zap.String("trade_id", trade.ID.String()),
		zap.Float64("filled_price", filledPrice))

	s.publishUser(order.UserID, domain.EventTypeOrderUpdate, order)
	s.publishUser(order.UserID, domain.EventTypeTradeUpdate, trade)
	return trade, nil
}

// CancelOrder transitions a PENDING order to CANCELLED on behalf of its owner
func (s *LedgerService) CancelOrder(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error) {
	key := userID.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("order %s does not belong to user: %w", orderID, domain.ErrForbidden)
	}
	if order.Status != domain.OrderStatusPending {
		return nil, fmt.Errorf("order %s is %s: %w", orderID, order.Status, domain.ErrInvalidTransition)
	}

	order.Status = domain.OrderStatusCancelled
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.logger.Info("order cancelled",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()))

	s.publishUser(userID, domain.EventTypeOrderUpdate, order)
	return order, nil
}

// RejectOrder transitions a PENDING order to REJECTED
func (s *LedgerService) RejectOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	key := order.UserID.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	order, err = s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.OrderStatusPending {
		return nil, fmt.Errorf("order %s is %s: %w", orderID, order.Status, domain.ErrInvalidTransition)
	}

	order.Status = domain.OrderStatusRejected
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.logger.Info("order rejected", zap.String("order_id", order.ID.String()))

	s.publishUser(order.UserID, domain.EventTypeOrderUpdate, order)
	return order, nil
}

// CloseTrade transitions an OPEN trade to its terminal status, sets all
// exit fields and applies the result to the owning wallet atomically
// within the same per-user critical section. The exit reason is
// recorded as supplied by the caller.
func (s *LedgerService) CloseTrade(ctx context.Context, tradeID uuid.UUID, exitPrice float64, at time.Time, exitReason string) (*domain.Trade, error) {
	trade, err := s.tradeRepo.GetByID(ctx, tradeID)
	if err != nil {
		return nil, err
	}

	key := trade.UserID.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	trade, err = s.tradeRepo.GetByID(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if !trade.IsOpen() {
		return nil, fmt.Errorf("trade %s is %s: %w", tradeID, trade.Status, domain.ErrInvalidTransition)
	}

	pnl := (exitPrice - trade.EntryPrice) * trade.Quantity * trade.DirectionSign()
	pnlPercent := pnl / (trade.EntryPrice * trade.Quantity) * 100

	rMultiple := 0.0
	riskPerUnit := math.Abs(trade.EntryPrice-trade.StopLoss) * trade.Quantity
	if trade.StopLoss == 0 || riskPerUnit == 0 {
		s.logger.Warn("recording r-multiple as zero",
			zap.String("trade_id", tradeID.String()),
			zap.Float64("stop_loss", trade.StopLoss),
			zap.Error(domain.ErrDivisionUndefined))
	} else {
		rMultiple = pnl / riskPerUnit
	}

	netPnL := pnl - trade.Fees

	status := domain.TradeStatusClosedBreakeven
	switch {
	case netPnL > 0:
		status = domain.TradeStatusClosedWin
	case netPnL < 0:
		status = domain.TradeStatusClosedLoss
	}

	trade.ExitPrice = &exitPrice
	trade.ExitTime = &at
	trade.ExitReason = exitReason
	trade.PnL = pnl
	trade.PnLPercent = pnlPercent
	trade.RMultiple = rMultiple
	trade.NetPnL = netPnL
	trade.DurationMinutes = int(at.Sub(trade.EntryTime).Minutes())
	trade.Status = status

	if err := s.tradeRepo.Update(ctx, trade); err != nil {
		return nil, fmt.Errorf("failed to update trade: %w", err)
	}

	if err := s.applyToWallet(ctx, trade); err != nil {
		return nil, err
	}

	s.logger.Info("trade closed",
		zap.String("trade_id", tradeID.String()),
		zap.String("status", status),
		zap.String("exit_reason", exitReason),
		zap.Float64("net_pnl", netPnL))

	s.publishUser(trade.UserID, domain.EventTypeTradeUpdate, trade)

	if s.notifier != nil {
		if err := s.notifier.NotifyTradeClosed(trade); err != nil {
			s.logger.Warn("trade close notification failed", zap.Error(err))
		}
	}

	return trade, nil
}

// applyToWallet recomputes the wallet aggregates for a freshly closed
// trade. Called exactly once per close, inside the owner's critical
// section, so the monotonic counters never double-apply.
func (s *LedgerService) applyToWallet(ctx context.Context, trade *domain.Trade) error {
	wallet, err := s.walletRepo.GetByUserAndType(ctx, trade.UserID, trade.WalletType)
	if err != nil {
		return fmt.Errorf("failed to load wallet: %w", err)
	}

	wallet.RealizedPnL += trade.PnL
	wallet.TotalFees += trade.Fees
	wallet.CurrentCapital = wallet.InitialCapital + wallet.RealizedPnL - wallet.TotalFees
	wallet.TotalTradesCount++
	switch trade.Status {
	case domain.TradeStatusClosedWin:
		wallet.WinCount++
	case domain.TradeStatusClosedLoss:
		wallet.LossCount++
	}
	wallet.WinRate = float64(wallet.WinCount) / float64(wallet.TotalTradesCount)
	wallet.LastUpdated = time.Now()

	if err := s.walletRepo.Update(ctx, wallet); err != nil {
		return fmt.Errorf("failed to update wallet: %w", err)
	}

	s.publishUser(wallet.UserID, domain.EventTypeWalletUpdate, wallet)
	return nil
}

// WalletSnapshot returns the wallet with the rolling day/week/month P&L
// recomputed lazily from the trade stream. The rolling fields are never
// persisted, which keeps boundary crossings drift-free.
func (s *LedgerService) WalletSnapshot(ctx context.Context, userID uuid.UUID, walletType string) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByUserAndType(ctx, userID, walletType)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	windows := []struct {
		since time.Time
		dst   *float64
	}{
		{utils.StartOfDay(now), &wallet.DayPnL},
		{utils.StartOfWeek(now), &wallet.WeekPnL},
		{utils.StartOfMonth(now), &wallet.MonthPnL},
	}
	for _, w := range windows {
		sum, err := s.tradeRepo.SumNetPnLSince(ctx, userID, walletType, w.since)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate rolling pnl: %w", err)
		}
		*w.dst = sum
	}

	return wallet, nil
}

// MarkToMarket recomputes unrealized P&L of all open trades against the
// supplied last-known prices and pushes wallet deltas to the owners.
// Trades whose scrip has no cached price yet are skipped.
func (s *LedgerService) MarkToMarket(ctx context.Context, prices map[string]float64) error {
	trades, err := s.tradeRepo.GetOpenTrades(ctx)
	if err != nil {
		return fmt.Errorf("failed to load open trades: %w", err)
	}
	if len(trades) == 0 {
		return nil
	}

	type walletKey struct {
		userID     uuid.UUID
		walletType string
	}
	unrealized := make(map[walletKey]float64)
	for _, trade := range trades {
		price, ok := prices[trade.ScripCode]
		if !ok {
			continue
		}
		k := walletKey{trade.UserID, trade.WalletType}
		unrealized[k] += (price - trade.EntryPrice) * trade.Quantity * trade.DirectionSign()
	}

	for k, value := range unrealized {
		lockKey := k.userID.String()
		s.locks.Lock(lockKey)

		wallet, err := s.walletRepo.GetByUserAndType(ctx, k.userID, k.walletType)
		if err != nil {
			s.locks.Unlock(lockKey)
			s.logger.Error("mark-to-market wallet load failed",
				zap.String("user_id", k.userID.String()),
				zap.Error(err))
			continue
		}

		wallet.UnrealizedPnL = value
		wallet.LastUpdated = time.Now()
		if err := s.walletRepo.Update(ctx, wallet); err != nil {
			s.locks.Unlock(lockKey)
			s.logger.Error("mark-to-market wallet update failed",
				zap.String("user_id", k.userID.String()),
				zap.Error(err))
			continue
		}
		s.locks.Unlock(lockKey)

		s.publishUser(wallet.UserID, domain.EventTypeWalletUpdate, wallet)
	}

	return nil
}

func (s *LedgerService) publishUser(userID uuid.UUID, eventType string, data interface{}) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishUser(userID, &domain.StateEvent{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	})
}
