package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/tradex/tradex-wallet/internal/logger"
	"github.com/tradex/tradex-wallet/internal/models"
	"github.com/tradex/tradex-wallet/internal/services"
)

// minPasswordLength mirrors the account-service rule so obviously bad input
// never leaves the handler.
const minPasswordLength = 6

// Registerer defines the interface that the session store must implement.
type Registerer interface {
	SignUp(ctx context.Context, email, password string) (*services.SignUpResult, error)
}

// RegisterRequest represents the JSON body for user registration
// swagger:model RegisterRequest
type RegisterRequest struct {
	// Email
	// required: true
	// default: john@example.com
	Email string `json:"email"`

	// Password, at least 6 characters
	// required: true
	// default: secret1
	Password string `json:"password"`
}

// RegisterResponse represents a successful registration response
// swagger:model RegisterResponse
type RegisterResponse struct {
	// Active session; null when email confirmation is pending
	Session *models.Session `json:"session"`

	// True when the account awaits email confirmation
	ConfirmationPending bool `json:"confirmation_pending"`

	// Success message
	// default: Account created
	Message string `json:"message"`
}

// RegisterErrorResponse represents an error response for registration
// swagger:model RegisterErrorResponse
type RegisterErrorResponse struct {
	// Error message
	// default: Email already registered
	Error string `json:"error"`
}

// NewRegisterHandler returns an HTTP handler for user registration.
// @Summary Register a new account
// @Description Creates a new account with an implicit empty profile. Returns either an active session or a pending email confirmation.
// @Tags auth
// @Accept json
// @Produce json
// @Param registerRequest body handlers.RegisterRequest true "Registration request"
// @Success 201 {object} handlers.RegisterResponse "Account created"
// @Failure 400 {object} handlers.RegisterErrorResponse "Validation failed / email already registered"
// @Router /auth/register [post]
func NewRegisterHandler(svc Registerer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(RegisterErrorResponse{
				Error: "Invalid request body",
			})
			return
		}

		// Cheap checks first: bad input never reaches the account service.
		if !strings.Contains(req.Email, "@") || len(req.Password) < minPasswordLength {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(RegisterErrorResponse{
				Error: "Email must be valid and password at least 6 characters",
			})
			return
		}

		result, err := svc.SignUp(r.Context(), req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrEmailExists):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(RegisterErrorResponse{
					Error: "Email already registered",
				})
			case errors.Is(err, services.ErrValidation):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(RegisterErrorResponse{
					Error: err.Error(),
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(RegisterErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		message := "Account created"
		if result.ConfirmationPending {
			message = "Check your email to confirm your account"
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(RegisterResponse{
			Session:             result.Session,
			ConfirmationPending: result.ConfirmationPending,
			Message:             message,
		})
	}
}
