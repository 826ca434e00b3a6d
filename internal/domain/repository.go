package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// GetByUsername retrieves a user by username
	GetByUsername(ctx context.Context, username string) (*User, error)
}

// OrderRepository defines the interface for order data operations
type OrderRepository interface {
	// Save creates a new order
	Save(ctx context.Context, order *Order) error

	// GetByID retrieves an order by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// GetByUserID retrieves the most recent orders for a user
	GetByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*Order, error)

	// Update updates order status and fill fields
	Update(ctx context.Context, order *Order) error
}

// TradeRepository defines the interface for trade data operations
type TradeRepository interface {
	// Save creates a new trade
	Save(ctx context.Context, trade *Trade) error

	// GetByID retrieves a trade by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Trade, error)

	// GetByOrderID retrieves the trade opened by a given order
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*Trade, error)

	// GetByUserID retrieves the most recent trades for a user
	GetByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*Trade, error)

	// GetOpenTrades retrieves all open trades across all users
	GetOpenTrades(ctx context.Context) ([]*Trade, error)

	// Update updates trade exit fields and status
	Update(ctx context.Context, trade *Trade) error

	// SumNetPnLSince sums net PnL of trades for a (user, wallet type)
	// pair whose exit time falls on or after the given instant
	SumNetPnLSince(ctx context.Context, userID uuid.UUID, walletType string, since time.Time) (float64, error)
}

// WalletRepository defines the interface for wallet data operations
type WalletRepository interface {
	// Create creates a new wallet; fails if one already exists for the
	// same (user, wallet type) pair
	Create(ctx context.Context, wallet *Wallet) error

	// GetByUserAndType retrieves the wallet for a (user, wallet type) pair
	GetByUserAndType(ctx context.Context, userID uuid.UUID, walletType string) (*Wallet, error)

	// GetByUserID retrieves all wallets for a user
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*Wallet, error)

	// Update updates wallet aggregates
	Update(ctx context.Context, wallet *Wallet) error
}
