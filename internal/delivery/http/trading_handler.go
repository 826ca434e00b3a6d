package http

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"tradedesk/internal/delivery/http/dto"
	"tradedesk/internal/domain"
	"tradedesk/internal/middleware"
	"tradedesk/internal/realtime"
	"tradedesk/internal/usecase"
)

const historyLimit = 100

// TradingHandler handles order, trade and wallet requests
type TradingHandler struct {
	ledger    *usecase.LedgerService
	orderRepo domain.OrderRepository
	tradeRepo domain.TradeRepository
	prices    *realtime.PriceCache
}

// NewTradingHandler creates a new TradingHandler
func NewTradingHandler(ledger *usecase.LedgerService, orderRepo domain.OrderRepository, tradeRepo domain.TradeRepository, prices *realtime.PriceCache) *TradingHandler {
	return &TradingHandler{
		ledger:    ledger,
		orderRepo: orderRepo,
		tradeRepo: tradeRepo,
		prices:    prices,
	}
}

// PlaceOrder creates a new PENDING order for the authenticated user
// POST /api/user/orders
func (h *TradingHandler) PlaceOrder(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	var req dto.PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	order, err := h.ledger.PlaceOrder(ctx, usecase.PlaceOrderInput{
		UserID:        userID,
		WalletType:    req.WalletType,
		ScripCode:     req.ScripCode,
		Side:          req.Side,
		Kind:          req.Kind,
		Quantity:      req.Quantity,
		LimitPrice:    req.LimitPrice,
		CurrentPrice:  req.CurrentPrice,
		StopLoss:      req.StopLoss,
		Target1:       req.Target1,
		Target2:       req.Target2,
		TrailingType:  req.TrailingType,
		TrailingValue: req.TrailingValue,
	})
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return CreatedResponse(c, order)
}

// GetOrders lists the most recent orders of the authenticated user
// GET /api/user/orders
func (h *TradingHandler) GetOrders(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	orders, err := h.orderRepo.GetByUserID(ctx, userID, historyLimit)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, orders)
}

// CancelOrder cancels a PENDING order of the authenticated user
// POST /api/user/orders/:id/cancel
func (h *TradingHandler) CancelOrder(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid order ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	order, err := h.ledger.CancelOrder(ctx, userID, orderID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, order)
}

// GetTrades lists the most recent trades of the authenticated user
// GET /api/user/trades
func (h *TradingHandler) GetTrades(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	trades, err := h.tradeRepo.GetByUserID(ctx, userID, historyLimit)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, trades)
}

// CloseTrade manually closes an OPEN trade of the authenticated user
// POST /api/user/trades/:id/close
func (h *TradingHandler) CloseTrade(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	tradeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid trade ID")
	}

	var req dto.CloseTradeRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	trade, err := h.tradeRepo.GetByID(ctx, tradeID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	if trade.UserID != userID {
		return ForbiddenResponse(c, "Trade does not belong to user")
	}

	exitPrice := req.ExitPrice
	if exitPrice <= 0 {
		cached, ok := h.prices.Get(trade.ScripCode)
		if !ok {
			return BadRequestResponse(c, "No market price available, supply exit_price")
		}
		exitPrice = cached
	}

	closed, err := h.ledger.CloseTrade(ctx, tradeID, exitPrice, time.Now(), domain.ExitReasonManual)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, closed)
}

// GetWallet returns the wallet snapshot with rolling P&L for a wallet type
// GET /api/user/wallets/:type
func (h *TradingHandler) GetWallet(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	walletType := c.Param("type")
	if walletType != domain.WalletTypePaper && walletType != domain.WalletTypeReal {
		return BadRequestResponse(c, "Wallet type must be PAPER or REAL")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	wallet, err := h.ledger.WalletSnapshot(ctx, userID, walletType)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, wallet)
}
