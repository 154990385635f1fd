package services

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/tradex/tradex-wallet/internal/logger"
	"github.com/tradex/tradex-wallet/internal/models"
)

var (
	// ErrUnauthenticated is returned for wallet operations without a user.
	ErrUnauthenticated = errors.New("user not authenticated")
	// ErrNoWallet is returned when a transaction is created before a wallet exists.
	ErrNoWallet = errors.New("wallet not found")
)

// transactionHistoryLimit caps GetTransactions at the most recent rows.
const transactionHistoryLimit = 20

// WalletReader defines wallet read operations.
type WalletReader interface {
	GetByUserAndNetwork(ctx context.Context, userID uuid.UUID, network string) (*models.WalletDB, error)
}

// WalletWriter defines wallet write operations.
type WalletWriter interface {
	Save(ctx context.Context, wallet models.WalletDB) error
}

// TransactionReader defines ledger read operations.
type TransactionReader interface {
	ListRecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.TransactionDB, error)
}

// TransactionWriter defines ledger write operations.
type TransactionWriter interface {
	Save(ctx context.Context, txn models.TransactionDB) error
}

// SpotTransferWriter records spot-to-wallet transfers.
type SpotTransferWriter interface {
	Save(ctx context.Context, transfer models.SpotTransferDB) error
}

// WalletCache is the read-through cache for wallet and transaction reads.
type WalletCache interface {
	GetWallet(ctx context.Context, userID uuid.UUID) (*models.WalletDB, bool, error)
	SetWallet(ctx context.Context, userID uuid.UUID, wallet *models.WalletDB) error
	InvalidateWallet(ctx context.Context, userID uuid.UUID) error
	GetTransactions(ctx context.Context, userID uuid.UUID) ([]models.TransactionDB, bool, error)
	SetTransactions(ctx context.Context, userID uuid.UUID, txns []models.TransactionDB) error
	InvalidateTransactions(ctx context.Context, userID uuid.UUID) error
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// CreateTransactionParams carries the caller's input for CreateTransaction.
// Amount > 0 is the caller's responsibility; the accessor does not re-check.
type CreateTransactionParams struct {
	Type      string
	Amount    decimal.Decimal
	ToAddress *string
}

// WalletService is the wallet data accessor: cached reads, insert-and-
// invalidate writes, and transaction-event publishing.
type WalletService struct {
	walletReader WalletReader
	walletWriter WalletWriter
	txnReader    TransactionReader
	txnWriter    TransactionWriter
	spotWriter   SpotTransferWriter
	cache        WalletCache
	kafkaWriter  KafkaWriter
}

// NewWalletService creates a new WalletService.
func NewWalletService(
	walletReader WalletReader,
	walletWriter WalletWriter,
	txnReader TransactionReader,
	txnWriter TransactionWriter,
	spotWriter SpotTransferWriter,
	cache WalletCache,
	kafkaWriter KafkaWriter,
) *WalletService {
	return &WalletService{
		walletReader: walletReader,
		walletWriter: walletWriter,
		txnReader:    txnReader,
		txnWriter:    txnWriter,
		spotWriter:   spotWriter,
		cache:        cache,
		kafkaWriter:  kafkaWriter,
	}
}

// GetWallet returns the user's tron wallet, or nil when none exists yet.
// A missing wallet is a valid empty state, not an error.
func (s *WalletService) GetWallet(ctx context.Context, userID uuid.UUID) (*models.WalletDB, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	if s.cache != nil {
		wallet, hit, err := s.cache.GetWallet(ctx, userID)
		if err == nil && hit {
			return wallet, nil
		}
	}

	wallet, err := s.walletReader.GetByUserAndNetwork(ctx, userID, models.NetworkTron)
	if err != nil {
		logger.Log.Errorw("failed to get wallet", "userID", userID, "error", err)
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetWallet(ctx, userID, wallet); err != nil {
			logger.Log.Warnw("failed to cache wallet", "userID", userID, "error", err)
		}
	}
	return wallet, nil
}

// GetTransactions returns up to the 20 most recent transactions for the
// user, newest first.
func (s *WalletService) GetTransactions(ctx context.Context, userID uuid.UUID) ([]models.TransactionDB, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	if s.cache != nil {
		txns, hit, err := s.cache.GetTransactions(ctx, userID)
		if err == nil && hit {
			return txns, nil
		}
	}

	txns, err := s.txnReader.ListRecentByUser(ctx, userID, transactionHistoryLimit)
	if err != nil {
		logger.Log.Errorw("failed to list transactions", "userID", userID, "error", err)
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetTransactions(ctx, userID, txns); err != nil {
			logger.Log.Warnw("failed to cache transactions", "userID", userID, "error", err)
		}
	}
	return txns, nil
}

// CreateWallet generates a placeholder address and key material and inserts
// a zero-balance wallet. This is a simulation: no real key generation or
// custody happens here.
func (s *WalletService) CreateWallet(ctx context.Context, userID uuid.UUID) (*models.WalletDB, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	wallet := models.WalletDB{
		WalletID:            uuid.New(),
		UserID:              userID,
		WalletAddress:       generateWalletAddress(),
		PrivateKeyEncrypted: "encrypted_private_key_placeholder",
		Network:             models.NetworkTron,
		Balance:             decimal.Zero,
	}

	if err := s.walletWriter.Save(ctx, wallet); err != nil {
		logger.Log.Errorw("failed to create wallet", "userID", userID, "error", err)
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateWallet(ctx, userID); err != nil {
			logger.Log.Warnw("failed to invalidate wallet cache", "userID", userID, "error", err)
		}
	}
	return &wallet, nil
}

// CreateTransaction inserts a ledger row for the user's wallet. Transfers
// start confirmed, deposits and withdrawals start pending and are settled by
// the external consumer. Balance arithmetic is not performed here; the row
// is the whole effect.
func (s *WalletService) CreateTransaction(ctx context.Context, userID uuid.UUID, params CreateTransactionParams) (*models.TransactionDB, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	wallet, err := s.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, ErrNoWallet
	}

	status := models.TransactionStatusPending
	if params.Type == models.TransactionTypeTransferFromSpot || params.Type == models.TransactionTypeTransferToSpot {
		status = models.TransactionStatusConfirmed
	}

	txn := models.TransactionDB{
		TransactionID:   uuid.New(),
		WalletID:        wallet.WalletID,
		UserID:          userID,
		TransactionType: params.Type,
		Amount:          params.Amount,
		Currency:        models.CurrencyUSDT,
		Network:         models.NetworkTron,
		ToAddress:       params.ToAddress,
		Status:          status,
		CreatedAt:       time.Now(),
	}

	if err := s.txnWriter.Save(ctx, txn); err != nil {
		logger.Log.Errorw("failed to save transaction", "userID", userID, "type", params.Type, "error", err)
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateTransactions(ctx, userID); err != nil {
			logger.Log.Warnw("failed to invalidate transactions cache", "userID", userID, "error", err)
		}
		if err := s.cache.InvalidateWallet(ctx, userID); err != nil {
			logger.Log.Warnw("failed to invalidate wallet cache", "userID", userID, "error", err)
		}
	}

	s.publishTransaction(ctx, txn)
	return &txn, nil
}

// TransferFromSpot records a completed spot-to-wallet transfer and the
// matching wallet-side ledger row. The two inserts are separate calls: a
// failure after the first leaves a transfer row without a ledger row, a
// known gap carried over from the original flow.
func (s *WalletService) TransferFromSpot(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*models.SpotTransferDB, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	transfer := models.SpotTransferDB{
		TransferID:   uuid.New(),
		UserID:       userID,
		Amount:       amount,
		Currency:     models.CurrencyUSDT,
		TransferType: models.TransferTypeSpotToWallet,
		Status:       models.TransferStatusCompleted,
		CreatedAt:    time.Now(),
	}

	if err := s.spotWriter.Save(ctx, transfer); err != nil {
		logger.Log.Errorw("failed to save spot transfer", "userID", userID, "error", err)
		return nil, err
	}

	if _, err := s.CreateTransaction(ctx, userID, CreateTransactionParams{
		Type:   models.TransactionTypeTransferFromSpot,
		Amount: amount,
	}); err != nil {
		logger.Log.Errorw("spot transfer recorded without matching wallet transaction",
			"userID", userID, "transferID", transfer.TransferID, "error", err)
		return nil, err
	}

	return &transfer, nil
}

// publishTransaction publishes a transaction event to Kafka.
func (s *WalletService) publishTransaction(ctx context.Context, txn models.TransactionDB) {
	if s.kafkaWriter == nil {
		logger.Log.Warnw("Kafka writer not configured, skipping publishing", "transaction_id", txn.TransactionID)
		return
	}

	event := models.TransactionEvent{
		TransactionID: txn.TransactionID.String(),
		WalletID:      txn.WalletID.String(),
		UserID:        txn.UserID.String(),
		Type:          txn.TransactionType,
		Amount:        txn.Amount.String(),
		Currency:      txn.Currency,
		Status:        txn.Status,
		Timestamp:     time.Now().Unix(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("Failed to marshal transaction event", "transaction_id", event.TransactionID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(event.TransactionID),
		Value: data,
	}

	if err := s.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("Failed to publish transaction event", "transaction_id", event.TransactionID, "error", err)
	} else {
		logger.Log.Infow("Transaction event published", "transaction_id", event.TransactionID, "type", event.Type)
	}
}

const addressCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

// generateWalletAddress builds a placeholder tron-style address. Demo only.
func generateWalletAddress() string {
	var b strings.Builder
	b.WriteString("TR")
	for i := 0; i < 32; i++ {
		b.WriteByte(addressCharset[rand.Intn(len(addressCharset))])
	}
	return strings.ToUpper(b.String())
}
