package domain

import (
	"time"

	"github.com/google/uuid"
)

// Trade represents an executed position opened by an order fill.
// A trade is created OPEN and is mutated only by the close operation,
// which sets all exit fields and the terminal status atomically.
type Trade struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	OrderID         uuid.UUID  `json:"order_id"`
	TradeID         string     `json:"trade_id"` // external execution identifier
	SignalID        *uuid.UUID `json:"signal_id,omitempty"`
	ScripCode       string     `json:"scrip_code"`
	Side            string     `json:"side"`
	WalletType      string     `json:"wallet_type"`
	EntryPrice      float64    `json:"entry_price"`
	ExitPrice       *float64   `json:"exit_price,omitempty"`
	Quantity        float64    `json:"quantity"`
	StopLoss        float64    `json:"stop_loss,omitempty"`
	Target1         float64    `json:"target_1,omitempty"`
	Target2         float64    `json:"target_2,omitempty"`
	PnL             float64    `json:"pnl"`
	PnLPercent      float64    `json:"pnl_percent"`
	RMultiple       float64    `json:"r_multiple"`
	Fees            float64    `json:"fees"`
	NetPnL          float64    `json:"net_pnl"`
	EntryTime       time.Time  `json:"entry_time"`
	ExitTime        *time.Time `json:"exit_time,omitempty"`
	ExitReason      string     `json:"exit_reason,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
	Status          string     `json:"status"`
}

// TradeSide constants
const (
	SideLong  = "LONG"
	SideShort = "SHORT"
)

// TradeStatus constants
const (
	TradeStatusOpen            = "OPEN"
	TradeStatusClosedWin       = "CLOSED_WIN"
	TradeStatusClosedLoss      = "CLOSED_LOSS"
	TradeStatusClosedBreakeven = "CLOSED_BREAKEVEN"
)

// ExitReason constants. The reason is supplied by the caller; the
// ledger records it opaquely and does not infer which trigger fired.
const (
	ExitReasonTarget1    = "TARGET_1"
	ExitReasonTarget2    = "TARGET_2"
	ExitReasonStopLoss   = "STOP_LOSS"
	ExitReasonTrailingSL = "TRAILING_SL"
	ExitReasonManual     = "MANUAL"
)

// IsOpen reports whether the trade has not yet been closed
func (t *Trade) IsOpen() bool {
	return t.Status == TradeStatusOpen
}

// DirectionSign returns +1 for LONG and -1 for SHORT
func (t *Trade) DirectionSign() float64 {
	if t.Side == SideShort {
		return -1
	}
	return 1
}
