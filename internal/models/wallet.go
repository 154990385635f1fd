package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NetworkTron is the only network the demo wallet supports.
const NetworkTron = "tron"

// CurrencyUSDT is the only currency wallet transactions are denominated in.
const CurrencyUSDT = "USDT"

// WalletDB represents a demo on-chain wallet row in the database.
// At most one wallet exists per (user_id, network) pair.
type WalletDB struct {
	WalletID            uuid.UUID       `json:"wallet_id" db:"wallet_id"`             // Unique wallet identifier
	UserID              uuid.UUID       `json:"user_id" db:"user_id"`                 // Identifier of the wallet's owner
	WalletAddress       string          `json:"wallet_address" db:"wallet_address"`   // Generated placeholder address
	PrivateKeyEncrypted string          `json:"-" db:"private_key_encrypted"`         // Opaque placeholder key material
	Network             string          `json:"network" db:"network"`                 // Always "tron"
	Balance             decimal.Decimal `json:"balance" db:"balance"`                 // Current balance, never negative
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
}
