package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/tradex/tradex-wallet/internal/services"
)

// SessionGetter defines the interface that the session store must implement.
type SessionGetter interface {
	Current() services.SessionSnapshot
}

// NewSessionHandler returns an HTTP handler exposing the current auth state.
// @Summary Current session
// @Description Returns the session, user, profile, admin flag and loading state. All fields except loading are null or false when nobody is signed in.
// @Tags auth
// @Produce json
// @Success 200 {object} services.SessionSnapshot "Current auth state"
// @Router /auth/session [get]
func NewSessionHandler(svc SessionGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(svc.Current())
	}
}
