package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tradex/tradex-wallet/internal/logger"
)

// SignOuter defines the interface that the session store must implement.
type SignOuter interface {
	SignOut(ctx context.Context) error
}

// LogoutResponse represents a successful logout response
// swagger:model LogoutResponse
type LogoutResponse struct {
	// Success message
	// default: Signed out
	Message string `json:"message"`
}

// NewLogoutHandler returns an HTTP handler for signing out.
// @Summary Sign out
// @Description Revokes every session of the current user and clears local state. Local state is cleared even when revocation fails, so the response is always a success.
// @Tags auth
// @Produce json
// @Success 200 {object} handlers.LogoutResponse "Signed out"
// @Router /auth/logout [post]
func NewLogoutHandler(svc SignOuter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Revocation failures are logged but not surfaced: the local
		// session is gone either way.
		if err := svc.SignOut(r.Context()); err != nil {
			logger.Log.Errorw("sign-out revocation failed", "err", err)
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(LogoutResponse{
			Message: "Signed out",
		})
	}
}
