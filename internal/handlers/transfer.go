package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradex/tradex-wallet/internal/logger"
	"github.com/tradex/tradex-wallet/internal/middlewares"
	"github.com/tradex/tradex-wallet/internal/models"
	"github.com/tradex/tradex-wallet/internal/services"
)

// SpotTransferrer defines spot-to-wallet transfers.
type SpotTransferrer interface {
	TransferFromSpot(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*models.SpotTransferDB, error)
}

// TransferRequest represents the JSON body for a spot-to-wallet transfer
// swagger:model TransferRequest
type TransferRequest struct {
	// Amount in USDT, must be positive
	// required: true
	// default: 250.0
	Amount decimal.Decimal `json:"amount"`
}

// TransferResponse represents a completed transfer
// swagger:model TransferResponse
type TransferResponse struct {
	// The recorded transfer
	Transfer *models.SpotTransferDB `json:"transfer"`
}

// TransferErrorResponse represents an error response for transfers
// swagger:model TransferErrorResponse
type TransferErrorResponse struct {
	// Error message
	// default: Amount must be positive
	Error string `json:"error"`
}

// NewTransferFromSpotHandler returns an HTTP handler for spot-to-wallet transfers.
// @Summary Transfer from spot
// @Description Records a completed spot-to-wallet transfer and its matching wallet transaction.
// @Tags wallet
// @Accept json
// @Produce json
// @Param transferRequest body handlers.TransferRequest true "Transfer request"
// @Success 201 {object} handlers.TransferResponse "Transfer recorded"
// @Failure 400 {object} handlers.TransferErrorResponse "Validation failed / no wallet"
// @Failure 401 {object} handlers.TransferErrorResponse "Unauthorized"
// @Failure 500 {object} handlers.TransferErrorResponse "Internal server error"
// @Router /wallet/transfer-from-spot [post]
// @Security BearerAuth
func NewTransferFromSpotHandler(svc SpotTransferrer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middlewares.GetUserIDFromContext(r.Context())

		var req TransferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(TransferErrorResponse{
				Error: "Invalid request body",
			})
			return
		}

		if !req.Amount.IsPositive() {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(TransferErrorResponse{
				Error: "Amount must be positive",
			})
			return
		}

		transfer, err := svc.TransferFromSpot(r.Context(), userID, req.Amount)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrNoWallet):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(TransferErrorResponse{
					Error: "Create a wallet first",
				})
			case errors.Is(err, services.ErrUnauthenticated):
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(TransferErrorResponse{
					Error: "Unauthorized",
				})
			default:
				logger.Log.Errorw("failed to transfer from spot", "userID", userID, "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(TransferErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(TransferResponse{
			Transfer: transfer,
		})
	}
}
