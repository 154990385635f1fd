package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tradex/tradex-wallet/internal/logger"
	"github.com/tradex/tradex-wallet/internal/models"
)

// WalletReadRepository handles wallet read operations.
type WalletReadRepository struct {
	db *sqlx.DB
}

func NewWalletReadRepository(db *sqlx.DB) *WalletReadRepository {
	return &WalletReadRepository{db: db}
}

// GetByUserAndNetwork returns the single wallet row for (user, network),
// or nil if the user has not created one yet.
func (r *WalletReadRepository) GetByUserAndNetwork(ctx context.Context, userID uuid.UUID, network string) (*models.WalletDB, error) {
	const query = `
		SELECT wallet_id, user_id, wallet_address, private_key_encrypted,
		       network, balance, created_at, updated_at
		FROM wallets
		WHERE user_id = $1 AND network = $2
		LIMIT 1
	`

	var wallet models.WalletDB
	err := r.db.GetContext(ctx, &wallet, query, userID, network)

	logger.Log.Infow("wallet select",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{userID, network},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// WalletWriteRepository handles wallet write operations.
type WalletWriteRepository struct {
	db *sqlx.DB
}

func NewWalletWriteRepository(db *sqlx.DB) *WalletWriteRepository {
	return &WalletWriteRepository{db: db}
}

// Save inserts a new wallet row. The unique (user_id, network) constraint
// rejects a second wallet on the same network.
func (r *WalletWriteRepository) Save(ctx context.Context, wallet models.WalletDB) error {
	query := `
		INSERT INTO wallets (wallet_id, user_id, wallet_address, private_key_encrypted,
		                     network, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	args := []any{
		wallet.WalletID, wallet.UserID, wallet.WalletAddress,
		wallet.PrivateKeyEncrypted, wallet.Network, wallet.Balance,
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow("wallet insert",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{wallet.WalletID, wallet.UserID, wallet.Network},
		"result", rowsAffected,
		"error", err,
	)

	return err
}
