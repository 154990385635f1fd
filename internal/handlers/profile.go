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

// ProfileGetter defines profile read access.
type ProfileGetter interface {
	ProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.ProfileDB, error)
}

// ProfileUpdater defines profile write access.
type ProfileUpdater interface {
	UpdateProfile(ctx context.Context, userID uuid.UUID, username string) error
}

// AdminChecker answers admin-membership lookups.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

// ProfileResponse represents a profile response
// swagger:model ProfileResponse
type ProfileResponse struct {
	// Profile; null when the user has not set one up yet
	Profile *models.ProfileDB `json:"profile"`
}

// UpdateProfileRequest represents the JSON body for a profile update
// swagger:model UpdateProfileRequest
type UpdateProfileRequest struct {
	// Display name
	// required: true
	// default: satoshi
	Username string `json:"username"`
}

// UpdateProfileResponse represents a successful profile update
// swagger:model UpdateProfileResponse
type UpdateProfileResponse struct {
	// Success message
	// default: Profile updated
	Message string `json:"message"`
}

// AdminResponse represents an admin-membership response
// swagger:model AdminResponse
type AdminResponse struct {
	// Whether the user is an admin
	IsAdmin bool `json:"is_admin"`
}

// ProfileErrorResponse represents an error response for profile endpoints
// swagger:model ProfileErrorResponse
type ProfileErrorResponse struct {
	// Error message
	// default: Internal server error
	Error string `json:"error"`
}

// NewGetProfileHandler returns an HTTP handler for reading the caller's profile.
// @Summary Get profile
// @Description Returns the caller's profile. A missing profile is a valid empty state, not an error.
// @Tags profile
// @Produce json
// @Success 200 {object} handlers.ProfileResponse "Profile, possibly null"
// @Failure 401 {object} handlers.ProfileErrorResponse "Unauthorized"
// @Failure 500 {object} handlers.ProfileErrorResponse "Internal server error"
// @Router /profile [get]
// @Security BearerAuth
func NewGetProfileHandler(svc ProfileGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middlewares.GetUserIDFromContext(r.Context())

		profile, err := svc.ProfileByUserID(r.Context(), userID)
		if err != nil {
			logger.Log.Errorw("failed to get profile", "userID", userID, "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(ProfileErrorResponse{
				Error: "Internal server error",
			})
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(ProfileResponse{
			Profile: profile,
		})
	}
}

// NewUpdateProfileHandler returns an HTTP handler for updating the caller's profile.
// @Summary Update profile
// @Description Sets the caller's display name.
// @Tags profile
// @Accept json
// @Produce json
// @Param updateProfileRequest body handlers.UpdateProfileRequest true "Profile update request"
// @Success 200 {object} handlers.UpdateProfileResponse "Profile updated"
// @Failure 400 {object} handlers.ProfileErrorResponse "Validation failed"
// @Failure 401 {object} handlers.ProfileErrorResponse "Unauthorized"
// @Failure 500 {object} handlers.ProfileErrorResponse "Internal server error"
// @Router /profile [put]
// @Security BearerAuth
func NewUpdateProfileHandler(svc ProfileUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middlewares.GetUserIDFromContext(r.Context())

		var req UpdateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ProfileErrorResponse{
				Error: "Invalid request body",
			})
			return
		}

		if err := svc.UpdateProfile(r.Context(), userID, req.Username); err != nil {
			switch {
			case errors.Is(err, services.ErrValidation):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(ProfileErrorResponse{
					Error: "Username must not be empty",
				})
			default:
				logger.Log.Errorw("failed to update profile", "userID", userID, "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(ProfileErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(UpdateProfileResponse{
			Message: "Profile updated",
		})
	}
}

// NewAdminCheckHandler returns an HTTP handler for the admin-membership flag.
// @Summary Check admin membership
// @Description Reports whether the caller is in the admin set.
// @Tags profile
// @Produce json
// @Success 200 {object} handlers.AdminResponse "Admin flag"
// @Failure 401 {object} handlers.ProfileErrorResponse "Unauthorized"
// @Failure 500 {object} handlers.ProfileErrorResponse "Internal server error"
// @Router /profile/admin [get]
// @Security BearerAuth
func NewAdminCheckHandler(svc AdminChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middlewares.GetUserIDFromContext(r.Context())

		isAdmin, err := svc.IsAdmin(r.Context(), userID)
		if err != nil {
			logger.Log.Errorw("failed to check admin membership", "userID", userID, "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(ProfileErrorResponse{
				Error: "Internal server error",
			})
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(AdminResponse{
			IsAdmin: isAdmin,
		})
	}
}
