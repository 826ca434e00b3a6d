package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order represents a user-submitted order
type Order struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	WalletType    string     `json:"wallet_type"`
	ScripCode     string     `json:"scrip_code"`
	Side          string     `json:"side"`
	Kind          string     `json:"kind"`
	Quantity      float64    `json:"quantity"`
	LimitPrice    float64    `json:"limit_price,omitempty"`
	CurrentPrice  float64    `json:"current_price,omitempty"`
	StopLoss      float64    `json:"stop_loss,omitempty"`
	Target1       float64    `json:"target_1,omitempty"`
	Target2       float64    `json:"target_2,omitempty"`
	TrailingType  string     `json:"trailing_type,omitempty"`
	TrailingValue float64    `json:"trailing_value,omitempty"`
	Status        string     `json:"status"`
	FilledPrice   *float64   `json:"filled_price,omitempty"`
	FilledAt      *time.Time `json:"filled_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// OrderSide constants
const (
	OrderSideBuy  = "BUY"
	OrderSideSell = "SELL"
)

// OrderKind constants
const (
	OrderKindMarket = "MARKET"
	OrderKindLimit  = "LIMIT"
)

// OrderStatus constants. An order is created PENDING and moves exactly
// once into one of the terminal states, after which it is immutable.
const (
	OrderStatusPending   = "PENDING"
	OrderStatusFilled    = "FILLED"
	OrderStatusCancelled = "CANCELLED"
	OrderStatusRejected  = "REJECTED"
)

// IsTerminal reports whether the order has reached a terminal state
func (o *Order) IsTerminal() bool {
	return o.Status != OrderStatusPending
}
