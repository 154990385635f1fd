package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tradex/tradex-wallet/internal/logger"
	"github.com/tradex/tradex-wallet/internal/models"
)

// TransactionReadRepository handles ledger read operations.
type TransactionReadRepository struct {
	db *sqlx.DB
}

func NewTransactionReadRepository(db *sqlx.DB) *TransactionReadRepository {
	return &TransactionReadRepository{db: db}
}

// ListRecentByUser returns up to limit transactions for the user, newest
// first.
func (r *TransactionReadRepository) ListRecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.TransactionDB, error) {
	const query = `
		SELECT transaction_id, wallet_id, user_id, transaction_type, amount,
		       currency, network, to_address, status, transaction_hash, created_at
		FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	var txns []models.TransactionDB
	err := r.db.SelectContext(ctx, &txns, query, userID, limit)

	logger.Log.Infow("transaction select",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{userID, limit},
		"result", len(txns),
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return txns, nil
}

// TransactionWriteRepository handles ledger write operations.
type TransactionWriteRepository struct {
	db *sqlx.DB
}

func NewTransactionWriteRepository(db *sqlx.DB) *TransactionWriteRepository {
	return &TransactionWriteRepository{db: db}
}

// Save inserts a new ledger row. Rows are never updated here: pending rows
// are settled by the external consumer, confirmed and failed rows are final.
func (r *TransactionWriteRepository) Save(ctx context.Context, txn models.TransactionDB) error {
	query := `
		INSERT INTO wallet_transactions (transaction_id, wallet_id, user_id,
		                                 transaction_type, amount, currency, network,
		                                 to_address, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	`
	args := []any{
		txn.TransactionID, txn.WalletID, txn.UserID, txn.TransactionType,
		txn.Amount, txn.Currency, txn.Network, txn.ToAddress, txn.Status,
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow("transaction insert",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{txn.TransactionID, txn.TransactionType, txn.Status},
		"result", rowsAffected,
		"error", err,
	)

	return err
}
