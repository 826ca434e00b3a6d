package domain

import (
	"time"

	"github.com/google/uuid"
)

// Wallet tracks a capital pool for one (user, wallet type) pair.
// Every field except InitialCapital is derived from the trade stream
// for that pair. Invariant after any successful close:
// CurrentCapital = InitialCapital + RealizedPnL - TotalFees.
type Wallet struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	WalletType       string    `json:"wallet_type"`
	InitialCapital   float64   `json:"initial_capital"`
	CurrentCapital   float64   `json:"current_capital"`
	RealizedPnL      float64   `json:"realized_pnl"`
	UnrealizedPnL    float64   `json:"unrealized_pnl"`
	TotalFees        float64   `json:"total_fees"`
	DayPnL           float64   `json:"day_pnl"`
	WeekPnL          float64   `json:"week_pnl"`
	MonthPnL         float64   `json:"month_pnl"`
	TotalTradesCount int       `json:"total_trades_count"`
	WinCount         int       `json:"win_count"`
	LossCount        int       `json:"loss_count"`
	WinRate          float64   `json:"win_rate"`
	LastUpdated      time.Time `json:"last_updated"`
}

// WalletType constants
const (
	WalletTypePaper = "PAPER"
	WalletTypeReal  = "REAL"
)
