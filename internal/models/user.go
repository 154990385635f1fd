package models

import (
	"time"

	"github.com/google/uuid"
)

// UserDB represents a user record in the database
type UserDB struct {
	UserID       uuid.UUID `json:"user_id" db:"user_id"`             // Primary key
	Email        string    `json:"email" db:"email"`                 // Unique email address
	PasswordHash string    `json:"-" db:"password_hash"`             // Hashed password
	Confirmed    bool      `json:"confirmed" db:"confirmed"`         // Whether the email address has been confirmed
	CreatedAt    time.Time `json:"created_at" db:"created_at"`       // Creation timestamp
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`       // Last update timestamp
}
