package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction types.
const (
	TransactionTypeDeposit          = "deposit"
	TransactionTypeWithdrawal       = "withdrawal"
	TransactionTypeTransferFromSpot = "transfer_from_spot"
	TransactionTypeTransferToSpot   = "transfer_to_spot"
)

// Transaction statuses. Pending rows are settled by an external
// consumer; confirmed and failed rows are immutable.
const (
	TransactionStatusPending   = "pending"
	TransactionStatusConfirmed = "confirmed"
	TransactionStatusFailed    = "failed"
)

// TransactionDB represents a wallet ledger entry in the database.
type TransactionDB struct {
	TransactionID   uuid.UUID       `json:"transaction_id" db:"transaction_id"`     // Unique transaction identifier
	WalletID        uuid.UUID       `json:"wallet_id" db:"wallet_id"`               // Wallet the entry belongs to
	UserID          uuid.UUID       `json:"user_id" db:"user_id"`                   // Owner of the wallet
	TransactionType string          `json:"transaction_type" db:"transaction_type"` // One of the TransactionType constants
	Amount          decimal.Decimal `json:"amount" db:"amount"`                     // Always positive
	Currency        string          `json:"currency" db:"currency"`                 // Always "USDT"
	Network         string          `json:"network" db:"network"`                   // Always "tron"
	ToAddress       *string         `json:"to_address" db:"to_address"`             // Destination, required for withdrawals
	Status          string          `json:"status" db:"status"`                     // One of the TransactionStatus constants
	TransactionHash *string         `json:"transaction_hash" db:"transaction_hash"` // Set by the settlement process, if ever
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// TransactionEvent is the message published to Kafka after every wallet
// mutation, consumed by the out-of-process settlement worker.
type TransactionEvent struct {
	TransactionID string `json:"transaction_id"` // Identifier of the inserted ledger row
	WalletID      string `json:"wallet_id"`      // Wallet the row belongs to
	UserID        string `json:"user_id"`        // Owner of the wallet
	Type          string `json:"type"`           // Transaction type
	Amount        string `json:"amount"`         // Decimal amount as string
	Currency      string `json:"currency"`       // Currency code
	Status        string `json:"status"`         // Initial status of the row
	Timestamp     int64  `json:"timestamp"`      // Unix timestamp of the insert
}
