package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tradedesk/internal/domain"
)

// OrderRepositoryImpl implements the OrderRepository interface
type OrderRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewOrderRepository creates a new OrderRepository
func NewOrderRepository(db *pgxpool.Pool) domain.OrderRepository {
	return &OrderRepositoryImpl{db: db}
}

// Save creates a new order
func (r *OrderRepositoryImpl) Save(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (
			id, user_id, wallet_type, scrip_code, side, kind, quantity,
			limit_price, current_price, stop_loss, target_1, target_2,
			trailing_type, trailing_value, status, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		)
	`

	_, err := r.db.Exec(ctx, query,
		order.ID,
		order.UserID,
		order.WalletType,
		order.ScripCode,
		order.Side,
		order.Kind,
		order.Quantity,
		order.LimitPrice,
		order.CurrentPrice,
		order.StopLoss,
		order.Target1,
		order.Target2,
		order.TrailingType,
		order.TrailingValue,
		order.Status,
		order.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}

	return nil
}

const orderColumns = `
	id, user_id, wallet_type, scrip_code, side, kind, quantity,
	limit_price, current_price, stop_loss, target_1, target_2,
	trailing_type, trailing_value, status, filled_price, filled_at, created_at
`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	order := &domain.Order{}
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.WalletType,
		&order.ScripCode,
		&order.Side,
		&order.Kind,
		&order.Quantity,
		&order.LimitPrice,
		&order.CurrentPrice,
		&order.StopLoss,
		&order.Target1,
		&order.Target2,
		&order.TrailingType,
		&order.TrailingValue,
		&order.Status,
		&order.FilledPrice,
		&order.FilledAt,
		&order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// GetByID retrieves an order by ID
func (r *OrderRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID: %w", err)
	}

	return order, nil
}

// GetByUserID retrieves the most recent orders for a user
func (r *OrderRepositoryImpl) GetByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders by user ID: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// Update updates order status and fill fields
func (r *OrderRepositoryImpl) Update(ctx context.Context, order *domain.Order) error {
	query := `
		UPDATE orders
		SET status = $1,
		    filled_price = $2,
		    filled_at = $3
		WHERE id = $4
	`

	_, err := r.db.Exec(ctx, query,
		order.Status,
		order.FilledPrice,
		order.FilledAt,
		order.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}

	return nil
}
