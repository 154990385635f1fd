package repositories

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/tradex/tradex-wallet/internal/logger"
	"github.com/tradex/tradex-wallet/internal/models"
)

// SpotTransferWriteRepository records transfers from the spot balance into
// the demo wallet.
type SpotTransferWriteRepository struct {
	db *sqlx.DB
}

func NewSpotTransferWriteRepository(db *sqlx.DB) *SpotTransferWriteRepository {
	return &SpotTransferWriteRepository{db: db}
}

// Save inserts a new spot-to-wallet transfer row.
func (r *SpotTransferWriteRepository) Save(ctx context.Context, transfer models.SpotTransferDB) error {
	query := `
		INSERT INTO spot_to_wallet_transfers (transfer_id, user_id, amount,
		                                      currency, transfer_type, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	args := []any{
		transfer.TransferID, transfer.UserID, transfer.Amount,
		transfer.Currency, transfer.TransferType, transfer.Status,
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow("spot transfer insert",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{transfer.TransferID, transfer.UserID, transfer.Status},
		"result", rowsAffected,
		"error", err,
	)

	return err
}
