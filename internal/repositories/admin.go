package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tradex/tradex-wallet/internal/logger"
)

// AdminReadRepository answers admin-membership lookups. Membership only
// widens UI visibility; there is no server-side authorization behind it.
type AdminReadRepository struct {
	db *sqlx.DB
}

func NewAdminReadRepository(db *sqlx.DB) *AdminReadRepository {
	return &AdminReadRepository{db: db}
}

// Exists reports whether the given user id is in the admin set.
func (r *AdminReadRepository) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	const query = `
		SELECT EXISTS (SELECT 1 FROM admin_users WHERE user_id = $1)
	`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, userID)

	logger.Log.Infow("admin lookup",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{userID},
		"result", exists,
		"error", err,
	)

	if err != nil {
		return false, err
	}
	return exists, nil
}
