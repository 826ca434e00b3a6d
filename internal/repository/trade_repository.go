package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tradedesk/internal/domain"
)

// TradeRepositoryImpl implements the TradeRepository interface
type TradeRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewTradeRepository creates a new TradeRepository
func NewTradeRepository(db *pgxpool.Pool) domain.TradeRepository {
	return &TradeRepositoryImpl{db: db}
}

// Save creates a new trade
func (r *TradeRepositoryImpl) Save(ctx context.Context, trade *domain.Trade) error {
	query := `
		INSERT INTO trades (
			id, user_id, order_id, trade_id, signal_id, scrip_code, side,
			wallet_type, entry_price, quantity, stop_loss, target_1, target_2,
			fees, entry_time, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		)
	`

	_, err := r.db.Exec(ctx, query,
		trade.ID,
		trade.UserID,
		trade.OrderID,
		trade.TradeID,
		trade.SignalID,
		trade.ScripCode,
		trade.Side,
		trade.WalletType,
		trade.EntryPrice,
		trade.Quantity,
		trade.StopLoss,
		trade.Target1,
		trade.Target2,
		trade.Fees,
		trade.EntryTime,
		trade.Status,
	)

	if err != nil {
		return fmt.Errorf("failed to save trade: %w", err)
	}

	return nil
}

const tradeColumns = `
	id, user_id, order_id, trade_id, signal_id, scrip_code, side,
	wallet_type, entry_price, exit_price, quantity, stop_loss, target_1,
	target_2, pnl, pnl_percent, r_multiple, fees, net_pnl, entry_time,
	exit_time, exit_reason, duration_minutes, status
`

func scanTrade(row pgx.Row) (*domain.Trade, error) {
	trade := &domain.Trade{}
	err := row.Scan(
		&trade.ID,
		&trade.UserID,
		&trade.OrderID,
		&trade.TradeID,
		&trade.SignalID,
		&trade.ScripCode,
		&trade.Side,
		&trade.WalletType,
		&trade.EntryPrice,
		&trade.ExitPrice,
		&trade.Quantity,
		&trade.StopLoss,
		&trade.Target1,
		&trade.Target2,
		&trade.PnL,
		&trade.PnLPercent,
		&trade.RMultiple,
		&trade.Fees,
		&trade.NetPnL,
		&trade.EntryTime,
		&trade.ExitTime,
		&trade.ExitReason,
		&trade.DurationMinutes,
		&trade.Status,
	)
	if err != nil {
		return nil, err
	}
	return trade, nil
}

// GetByID retrieves a trade by ID
func (r *TradeRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE id = $1`

	trade, err := scanTrade(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("trade %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get trade by ID: %w", err)
	}

	return trade, nil
}

// GetByOrderID retrieves the trade opened by a given order
func (r *TradeRepositoryImpl) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE order_id = $1`

	trade, err := scanTrade(r.db.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("trade for order %s: %w", orderID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get trade by order ID: %w", err)
	}

	return trade, nil
}

// GetByUserID retrieves the most recent trades for a user
func (r *TradeRepositoryImpl) GetByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Trade, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM trades
		WHERE user_id = $1
		ORDER BY entry_time DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades by user ID: %w", err)
	}
	defer rows.Close()

	return collectTrades(rows)
}

// GetOpenTrades retrieves all open trades across all users
func (r *TradeRepositoryImpl) GetOpenTrades(ctx context.Context) ([]*domain.Trade, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM trades
		WHERE status = 'OPEN'
		ORDER BY entry_time ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query open trades: %w", err)
	}
	defer rows.Close()

	return collectTrades(rows)
}

func collectTrades(rows pgx.Rows) ([]*domain.Trade, error) {
	var trades []*domain.Trade
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, trade)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trades: %w", err)
	}

	return trades, nil
}

// Update updates trade exit fields and status
func (r *TradeRepositoryImpl) Update(ctx context.Context, trade *domain.Trade) error {
	query := `
		UPDATE trades
		SET exit_price = $1,
		    exit_time = $2,
		    exit_reason = $3,
		    pnl = $4,
		    pnl_percent = $5,
		    r_multiple = $6,
		    net_pnl = $7,
		    duration_minutes = $8,
		    status = $9
		WHERE id = $10
	`

	_, err := r.db.Exec(ctx, query,
		trade.ExitPrice,
		trade.ExitTime,
		trade.ExitReason,
		trade.PnL,
		trade.PnLPercent,
		trade.RMultiple,
		trade.NetPnL,
		trade.DurationMinutes,
		trade.Status,
		trade.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update trade: %w", err)
	}

	return nil
}

// SumNetPnLSince sums net PnL of closed trades for a (user, wallet type)
// pair whose exit time falls on or after the given instant
func (r *TradeRepositoryImpl) SumNetPnLSince(ctx context.Context, userID uuid.UUID, walletType string, since time.Time) (float64, error) {
	query := `
		SELECT COALESCE(SUM(net_pnl), 0)
		FROM trades
		WHERE user_id = $1
		AND wallet_type = $2
		AND exit_time >= $3
		AND status IN ('CLOSED_WIN', 'CLOSED_LOSS', 'CLOSED_BREAKEVEN')
	`

	var sum float64
	err := r.db.QueryRow(ctx, query, userID, walletType, since).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum net pnl: %w", err)
	}

	return sum, nil
}
