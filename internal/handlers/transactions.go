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

// TransactionLister defines transaction read access.
type TransactionLister interface {
	GetTransactions(ctx context.Context, userID uuid.UUID) ([]models.TransactionDB, error)
}

// TransactionCreator defines transaction creation.
type TransactionCreator interface {
	CreateTransaction(ctx context.Context, userID uuid.UUID, params services.CreateTransactionParams) (*models.TransactionDB, error)
}

// TransactionsResponse represents a transaction history response
// swagger:model TransactionsResponse
type TransactionsResponse struct {
	// Up to the 20 most recent transactions, newest first
	Transactions []models.TransactionDB `json:"transactions"`
}

// CreateTransactionRequest represents the JSON body for a new transaction
// swagger:model CreateTransactionRequest
type CreateTransactionRequest struct {
	// Transaction type: deposit, withdrawal, transfer_from_spot or transfer_to_spot
	// required: true
	// default: deposit
	Type string `json:"type"`

	// Amount in USDT, must be positive
	// required: true
	// default: 100.5
	Amount decimal.Decimal `json:"amount"`

	// Destination address, required for withdrawals
	ToAddress *string `json:"to_address,omitempty"`
}

// TransactionResponse represents a created transaction
// swagger:model TransactionResponse
type TransactionResponse struct {
	// The inserted ledger row
	Transaction *models.TransactionDB `json:"transaction"`
}

// TransactionErrorResponse represents an error response for transaction endpoints
// swagger:model TransactionErrorResponse
type TransactionErrorResponse struct {
	// Error message
	// default: Amount must be positive
	Error string `json:"error"`
}

func validTransactionType(t string) bool {
	switch t {
	case models.TransactionTypeDeposit,
		models.TransactionTypeWithdrawal,
		models.TransactionTypeTransferFromSpot,
		models.TransactionTypeTransferToSpot:
		return true
	}
	return false
}

// NewGetTransactionsHandler returns an HTTP handler for the caller's transaction history.
// @Summary List transactions
// @Description Returns up to the 20 most recent transactions for the caller, newest first.
// @Tags wallet
// @Produce json
// @Success 200 {object} handlers.TransactionsResponse "Transaction history"
// @Failure 401 {object} handlers.TransactionErrorResponse "Unauthorized"
// @Failure 500 {object} handlers.TransactionErrorResponse "Internal server error"
// @Router /wallet/transactions [get]
// @Security BearerAuth
func NewGetTransactionsHandler(svc TransactionLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middlewares.GetUserIDFromContext(r.Context())

		txns, err := svc.GetTransactions(r.Context(), userID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUnauthenticated):
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(TransactionErrorResponse{
					Error: "Unauthorized",
				})
			default:
				logger.Log.Errorw("failed to list transactions", "userID", userID, "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(TransactionErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		if txns == nil {
			txns = []models.TransactionDB{}
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(TransactionsResponse{
			Transactions: txns,
		})
	}
}

// NewCreateTransactionHandler returns an HTTP handler for inserting a ledger row.
// @Summary Create transaction
// @Description Inserts a transaction for the caller's wallet. Transfers start confirmed; deposits and withdrawals start pending. No balance arithmetic happens here.
// @Tags wallet
// @Accept json
// @Produce json
// @Param createTransactionRequest body handlers.CreateTransactionRequest true "Transaction request"
// @Success 201 {object} handlers.TransactionResponse "Transaction created"
// @Failure 400 {object} handlers.TransactionErrorResponse "Validation failed / no wallet"
// @Failure 401 {object} handlers.TransactionErrorResponse "Unauthorized"
// @Failure 500 {object} handlers.TransactionErrorResponse "Internal server error"
// @Router /wallet/transactions [post]
// @Security BearerAuth
func NewCreateTransactionHandler(svc TransactionCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middlewares.GetUserIDFromContext(r.Context())

		var req CreateTransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(TransactionErrorResponse{
				Error: "Invalid request body",
			})
			return
		}

		if !validTransactionType(req.Type) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(TransactionErrorResponse{
				Error: "Unknown transaction type",
			})
			return
		}

		if !req.Amount.IsPositive() {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(TransactionErrorResponse{
				Error: "Amount must be positive",
			})
			return
		}

		if req.Type == models.TransactionTypeWithdrawal && (req.ToAddress == nil || *req.ToAddress == "") {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(TransactionErrorResponse{
				Error: "Destination address is required for withdrawals",
			})
			return
		}

		txn, err := svc.CreateTransaction(r.Context(), userID, services.CreateTransactionParams{
			Type:      req.Type,
			Amount:    req.Amount,
			ToAddress: req.ToAddress,
		})
		if err != nil {
			switch {
			case errors.Is(err, services.ErrNoWallet):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(TransactionErrorResponse{
					Error: "Create a wallet first",
				})
			case errors.Is(err, services.ErrUnauthenticated):
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(TransactionErrorResponse{
					Error: "Unauthorized",
				})
			default:
				logger.Log.Errorw("failed to create transaction", "userID", userID, "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(TransactionErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(TransactionResponse{
			Transaction: txn,
		})
	}
}
