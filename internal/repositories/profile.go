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

type ProfileReadRepository struct {
	db *sqlx.DB
}

func NewProfileReadRepository(db *sqlx.DB) *ProfileReadRepository {
	return &ProfileReadRepository{db: db}
}

// GetByUserID returns the profile row for the given user. A missing row is
// a valid empty state, not an error.
func (r *ProfileReadRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.ProfileDB, error) {
	const query = `
		SELECT profile_id, username, avatar_url, created_at, updated_at
		FROM profiles
		WHERE profile_id = $1
		LIMIT 1
	`

	var profile models.ProfileDB
	err := r.db.GetContext(ctx, &profile, query, userID)

	logger.Log.Infow("profile select",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{userID},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

type ProfileWriteRepository struct {
	db *sqlx.DB
}

func NewProfileWriteRepository(db *sqlx.DB) *ProfileWriteRepository {
	return &ProfileWriteRepository{db: db}
}

// Save upserts the profile row for the given user. Registration calls it
// with nil fields to create the implicit empty profile; profile updates
// set the username.
func (r *ProfileWriteRepository) Save(ctx context.Context, userID uuid.UUID, username, avatarURL *string) error {
	query := `
		INSERT INTO profiles (profile_id, username, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (profile_id) DO UPDATE
		SET username = COALESCE(EXCLUDED.username, profiles.username),
		    avatar_url = COALESCE(EXCLUDED.avatar_url, profiles.avatar_url),
		    updated_at = NOW()
	`
	args := []any{userID, username, avatarURL}

	res, err := r.db.ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow("profile upsert",
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", rowsAffected,
		"error", err,
	)

	return err
}
