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

// WalletRepositoryImpl implements the WalletRepository interface
type WalletRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewWalletRepository creates a new WalletRepository
func NewWalletRepository(db *pgxpool.Pool) domain.WalletRepository {
	return &WalletRepositoryImpl{db: db}
}

// Create creates a new wallet. The unique index on (user_id,
// wallet_type) enforces the one-wallet-per-pair invariant.
func (r *WalletRepositoryImpl) Create(ctx context.Context, wallet *domain.Wallet) error {
	query := `
		INSERT INTO wallets (
			id, user_id, wallet_type, initial_capital, current_capital,
			realized_pnl, unrealized_pnl, total_fees, total_trades_count,
			win_count, loss_count, win_rate, last_updated
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
	`

	_, err := r.db.Exec(ctx, query,
		wallet.ID,
		wallet.UserID,
		wallet.WalletType,
		wallet.InitialCapital,
		wallet.CurrentCapital,
		wallet.RealizedPnL,
		wallet.UnrealizedPnL,
		wallet.TotalFees,
		wallet.TotalTradesCount,
		wallet.WinCount,
		wallet.LossCount,
		wallet.WinRate,
		wallet.LastUpdated,
	)

	if err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}

	return nil
}

const walletColumns = `
	id, user_id, wallet_type, initial_capital, current_capital,
	realized_pnl, unrealized_pnl, total_fees, total_trades_count,
	win_count, loss_count, win_rate, last_updated
`

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	wallet := &domain.Wallet{}
	err := row.Scan(
		&wallet.ID,
		&wallet.UserID,
		&wallet.WalletType,
		&wallet.InitialCapital,
		&wallet.CurrentCapital,
		&wallet.RealizedPnL,
		&wallet.UnrealizedPnL,
		&wallet.TotalFees,
		&wallet.TotalTradesCount,
		&wallet.WinCount,
		&wallet.LossCount,
		&wallet.WinRate,
		&wallet.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	return wallet, nil
}

// GetByUserAndType retrieves the wallet for a (user, wallet type) pair
func (r *WalletRepositoryImpl) GetByUserAndType(ctx context.Context, userID uuid.UUID, walletType string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 AND wallet_type = $2`

	wallet, err := scanWallet(r.db.QueryRow(ctx, query, userID, walletType))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("wallet %s/%s: %w", userID, walletType, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return wallet, nil
}

// GetByUserID retrieves all wallets for a user
func (r *WalletRepositoryImpl) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 ORDER BY wallet_type`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallets: %w", err)
	}
	defer rows.Close()

	var wallets []*domain.Wallet
	for rows.Next() {
		wallet, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wallet: %w", err)
		}
		wallets = append(wallets, wallet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wallets: %w", err)
	}

	return wallets, nil
}

// Update updates wallet aggregates
func (r *WalletRepositoryImpl) Update(ctx context.Context, wallet *domain.Wallet) error {
	query := `
		UPDATE wallets
		SET current_capital = $1,
		    realized_pnl = $2,
		    unrealized_pnl = $3,
		    total_fees = $4,
		    total_trades_count = $5,
		    win_count = $6,
		    loss_count = $7,
		    win_rate = $8,
		    last_updated = $9
		WHERE id = $10
	`

	_, err := r.db.Exec(ctx, query,
		wallet.CurrentCapital,
		wallet.RealizedPnL,
		wallet.UnrealizedPnL,
		wallet.TotalFees,
		wallet.TotalTradesCount,
		wallet.WinCount,
		wallet.LossCount,
		wallet.WinRate,
		wallet.LastUpdated,
		wallet.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update wallet: %w", err)
	}

	return nil
}
