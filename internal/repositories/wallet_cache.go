package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tradex/tradex-wallet/internal/logger"
	"github.com/tradex/tradex-wallet/internal/models"
)

// WalletCacheRepository is the read-through cache in front of wallet and
// transaction reads. Keys are (resource, user) pairs; every successful
// mutation invalidates the affected keys.
type WalletCacheRepository struct {
	client *redis.Client
	exp    time.Duration
}

// NewWalletCacheRepository creates a cache repository with the given TTL.
func NewWalletCacheRepository(client *redis.Client, expiration time.Duration) *WalletCacheRepository {
	return &WalletCacheRepository{
		client: client,
		exp:    expiration,
	}
}

func walletKey(userID uuid.UUID) string {
	return fmt.Sprintf("wallet:%s", userID)
}

func transactionsKey(userID uuid.UUID) string {
	return fmt.Sprintf("wallet_txns:%s", userID)
}

// GetWallet returns the cached wallet for the user. The bool result reports
// whether the key was present; a cached "no wallet" state is (nil, true, nil).
func (r *WalletCacheRepository) GetWallet(ctx context.Context, userID uuid.UUID) (*models.WalletDB, bool, error) {
	key := walletKey(userID)

	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		logger.Log.Errorw("wallet cache get failed", "key", key, "error", err)
		return nil, false, err
	}

	var wallet *models.WalletDB
	if err := json.Unmarshal([]byte(val), &wallet); err != nil {
		logger.Log.Errorw("wallet cache decode failed", "key", key, "error", err)
		return nil, false, err
	}

	logger.Log.Infow("wallet cache hit", "key", key)
	return wallet, true, nil
}

// SetWallet caches the wallet (or the absence of one) for the user.
func (r *WalletCacheRepository) SetWallet(ctx context.Context, userID uuid.UUID, wallet *models.WalletDB) error {
	key := walletKey(userID)

	data, err := json.Marshal(wallet)
	if err != nil {
		return err
	}

	err = r.client.Set(ctx, key, data, r.exp).Err()
	logger.Log.Infow("wallet cache set", "key", key, "error", err)
	return err
}

// InvalidateWallet drops the cached wallet for the user.
func (r *WalletCacheRepository) InvalidateWallet(ctx context.Context, userID uuid.UUID) error {
	key := walletKey(userID)
	err := r.client.Del(ctx, key).Err()
	logger.Log.Infow("wallet cache invalidate", "key", key, "error", err)
	return err
}

// GetTransactions returns the cached transaction list for the user.
func (r *WalletCacheRepository) GetTransactions(ctx context.Context, userID uuid.UUID) ([]models.TransactionDB, bool, error) {
	key := transactionsKey(userID)

	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		logger.Log.Errorw("transactions cache get failed", "key", key, "error", err)
		return nil, false, err
	}

	var txns []models.TransactionDB
	if err := json.Unmarshal([]byte(val), &txns); err != nil {
		logger.Log.Errorw("transactions cache decode failed", "key", key, "error", err)
		return nil, false, err
	}

	logger.Log.Infow("transactions cache hit", "key", key)
	return txns, true, nil
}

// SetTransactions caches the transaction list for the user.
func (r *WalletCacheRepository) SetTransactions(ctx context.Context, userID uuid.UUID, txns []models.TransactionDB) error {
	key := transactionsKey(userID)

	data, err := json.Marshal(txns)
	if err != nil {
		return err
	}

	err = r.client.Set(ctx, key, data, r.exp).Err()
	logger.Log.Infow("transactions cache set", "key", key, "error", err)
	return err
}

// InvalidateTransactions drops the cached transaction list for the user.
func (r *WalletCacheRepository) InvalidateTransactions(ctx context.Context, userID uuid.UUID) error {
	key := transactionsKey(userID)
	err := r.client.Del(ctx, key).Err()
	logger.Log.Infow("transactions cache invalidate", "key", key, "error", err)
	return err
}
