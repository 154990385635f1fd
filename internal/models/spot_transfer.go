package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Spot transfer constants.
const (
	TransferTypeSpotToWallet = "spot_to_wallet"
	TransferStatusCompleted  = "completed"
)

// SpotTransferDB represents a transfer from the (unmodeled) spot trading
// balance into the on-chain demo wallet. Created alongside a matching
// transfer_from_spot transaction row; the pair is not written atomically.
type SpotTransferDB struct {
	TransferID   uuid.UUID       `json:"transfer_id" db:"transfer_id"`     // Unique transfer identifier
	UserID       uuid.UUID       `json:"user_id" db:"user_id"`             // Owner of the funds
	Amount       decimal.Decimal `json:"amount" db:"amount"`               // Always positive
	Currency     string          `json:"currency" db:"currency"`           // Always "USDT"
	TransferType string          `json:"transfer_type" db:"transfer_type"` // Always "spot_to_wallet"
	Status       string          `json:"status" db:"status"`               // Always "completed"
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}
