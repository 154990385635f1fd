package models

import "time"

// Session is an authenticated client's active login context: an opaque
// token plus its expiry, owned by the auth layer and mirrored read-only
// by the session store.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
