package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tradex/tradex-wallet/internal/logger"
)

// RevokedTokenRepository backs the "global sign-out" semantics: revoking a
// user stores a cut-off timestamp, and any session token issued strictly
// before that second is rejected. Cutoff and issued-at compare at
// whole-second precision, matching the token clock, so a token issued in the
// same second as the revocation stays valid and a revoke-then-login sequence
// never invalidates its own fresh token. The key expires with the token
// lifetime, after which every token issued before the revocation has expired
// on its own.
type RevokedTokenRepository struct {
	client *redis.Client
	exp    time.Duration
}

func NewRevokedTokenRepository(client *redis.Client, expiration time.Duration) *RevokedTokenRepository {
	return &RevokedTokenRepository{
		client: client,
		exp:    expiration,
	}
}

func revokedKey(userID uuid.UUID) string {
	return fmt.Sprintf("revoked:%s", userID)
}

// Revoke marks every token of the user issued in a second before at as
// invalid.
func (r *RevokedTokenRepository) Revoke(ctx context.Context, userID uuid.UUID, at time.Time) error {
	key := revokedKey(userID)
	err := r.client.Set(ctx, key, strconv.FormatInt(at.Unix(), 10), r.exp).Err()

	logger.Log.Infow("token revoke", "key", key, "at", at.Unix(), "error", err)
	return err
}

// IsRevoked reports whether a token issued at issuedAt has been revoked.
func (r *RevokedTokenRepository) IsRevoked(ctx context.Context, userID uuid.UUID, issuedAt time.Time) (bool, error) {
	key := revokedKey(userID)

	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		logger.Log.Errorw("token revocation lookup failed", "key", key, "error", err)
		return false, err
	}

	revokedAt, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return false, err
	}

	return issuedAt.Unix() < revokedAt, nil
}
