package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/tradex/tradex-wallet/internal/logger"
	"github.com/tradex/tradex-wallet/internal/middlewares"
	"github.com/tradex/tradex-wallet/internal/models"
	"github.com/tradex/tradex-wallet/internal/services"
)

// WalletGetter defines wallet read access.
type WalletGetter interface {
	GetWallet(ctx context.Context, userID uuid.UUID) (*models.WalletDB, error)
}

// WalletCreator defines wallet creation.
type WalletCreator interface {
	CreateWallet(ctx context.Context, userID uuid.UUID) (*models.WalletDB, error)
}

// WalletResponse represents a wallet response
// swagger:model WalletResponse
type WalletResponse struct {
	// Wallet; null when the user has not created one yet
	Wallet *models.WalletDB `json:"wallet"`
}

// WalletErrorResponse represents an error response for wallet endpoints
// swagger:model WalletErrorResponse
type WalletErrorResponse struct {
	// Error message
	// default: Internal server error
	Error string `json:"error"`
}

// NewGetWalletHandler returns an HTTP handler for reading the caller's wallet.
// @Summary Get wallet
// @Description Returns the caller's tron wallet. A missing wallet is a valid empty state, not an error.
// @Tags wallet
// @Produce json
// @Success 200 {object} handlers.WalletResponse "Wallet, possibly null"
// @Failure 401 {object} handlers.WalletErrorResponse "Unauthorized"
// @Failure 500 {object} handlers.WalletErrorResponse "Internal server error"
// @Router /wallet [get]
// @Security BearerAuth
func NewGetWalletHandler(svc WalletGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middlewares.GetUserIDFromContext(r.Context())

		wallet, err := svc.GetWallet(r.Context(), userID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUnauthenticated):
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(WalletErrorResponse{
					Error: "Unauthorized",
				})
			default:
				logger.Log.Errorw("failed to get wallet", "userID", userID, "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(WalletErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(WalletResponse{
			Wallet: wallet,
		})
	}
}

// NewCreateWalletHandler returns an HTTP handler for creating the caller's wallet.
// @Summary Create wallet
// @Description Creates a zero-balance demo wallet with a placeholder tron address.
// @Tags wallet
// @Produce json
// @Success 201 {object} handlers.WalletResponse "Wallet created"
// @Failure 401 {object} handlers.WalletErrorResponse "Unauthorized"
// @Failure 500 {object} handlers.WalletErrorResponse "Internal server error"
// @Router /wallet [post]
// @Security BearerAuth
func NewCreateWalletHandler(svc WalletCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middlewares.GetUserIDFromContext(r.Context())

		wallet, err := svc.CreateWallet(r.Context(), userID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUnauthenticated):
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(WalletErrorResponse{
					Error: "Unauthorized",
				})
			default:
				logger.Log.Errorw("failed to create wallet", "userID", userID, "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(WalletErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(WalletResponse{
			Wallet: wallet,
		})
	}
}
