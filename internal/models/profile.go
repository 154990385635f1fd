package models

import (
	"time"

	"github.com/google/uuid"
)

// ProfileDB represents a user profile row, one-to-one with a user.
// Created implicitly on registration; username and avatar are optional.
type ProfileDB struct {
	ProfileID uuid.UUID `json:"id" db:"profile_id"`         // Equal to the owning user's id
	Username  *string   `json:"username" db:"username"`     // Optional display name
	AvatarURL *string   `json:"avatar_url" db:"avatar_url"` // Optional avatar location
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
