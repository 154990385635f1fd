package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tradex/tradex-wallet/internal/jwt"
	"github.com/tradex/tradex-wallet/internal/logger"
	"github.com/tradex/tradex-wallet/internal/models"
)

// Error variables
var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotConfirmed  = errors.New("email address not confirmed")
	ErrValidation         = errors.New("validation failed")
)

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByEmail(ctx context.Context, email string) (*models.UserDB, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*models.UserDB, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Save(ctx context.Context, userID uuid.UUID, email, passwordHash string, confirmed bool) error
}

// ProfileReader defines read-only operations for profiles.
type ProfileReader interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.ProfileDB, error)
}

// ProfileWriter defines write operations for profiles.
type ProfileWriter interface {
	Save(ctx context.Context, userID uuid.UUID, username, avatarURL *string) error
}

// AdminReader answers admin-membership lookups.
type AdminReader interface {
	Exists(ctx context.Context, userID uuid.UUID) (bool, error)
}

// TokenRevoker tracks globally signed-out users.
type TokenRevoker interface {
	Revoke(ctx context.Context, userID uuid.UUID, at time.Time) error
	IsRevoked(ctx context.Context, userID uuid.UUID, issuedAt time.Time) (bool, error)
}

// SessionIssuer issues and parses session tokens.
type SessionIssuer interface {
	Generate(ctx context.Context, userID uuid.UUID) (string, time.Time, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// AuthService is the account half of the data service: registration, login,
// global sign-out, session resolution, profiles and admin membership.
type AuthService struct {
	userReader           UserReader
	userWriter           UserWriter
	profileReader        ProfileReader
	profileWriter        ProfileWriter
	adminReader          AdminReader
	revoker              TokenRevoker
	issuer               SessionIssuer
	confirmationRequired bool
}

// NewAuthService creates a new AuthService instance. When
// confirmationRequired is set, registration does not issue a session until
// the email address is confirmed out of band.
func NewAuthService(
	userReader UserReader,
	userWriter UserWriter,
	profileReader ProfileReader,
	profileWriter ProfileWriter,
	adminReader AdminReader,
	revoker TokenRevoker,
	issuer SessionIssuer,
	confirmationRequired bool,
) *AuthService {
	return &AuthService{
		userReader:           userReader,
		userWriter:           userWriter,
		profileReader:        profileReader,
		profileWriter:        profileWriter,
		adminReader:          adminReader,
		revoker:              revoker,
		issuer:               issuer,
		confirmationRequired: confirmationRequired,
	}
}

// validateCredentials runs the format and range checks that must pass
// before any storage call is made.
func validateCredentials(email, password string) error {
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}
	return nil
}

// Register creates a new account and its implicit empty profile. It returns
// either an active session or confirmationPending=true, never both absent.
// redirectTo is the origin the confirmation link should send the user back
// to; it is recorded for the out-of-band confirmation mail.
func (svc *AuthService) Register(ctx context.Context, email, password, redirectTo string) (*models.Session, *models.UserDB, bool, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, nil, false, err
	}

	existing, err := svc.userReader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to check user exists", "err", err)
		return nil, nil, false, err
	}
	if existing != nil {
		logger.Log.Warnw("email already registered", "email", email)
		return nil, nil, false, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return nil, nil, false, err
	}

	userID := uuid.New()
	confirmed := !svc.confirmationRequired
	if err := svc.userWriter.Save(ctx, userID, email, string(hashedPassword), confirmed); err != nil {
		logger.Log.Errorw("failed to save user", "err", err)
		return nil, nil, false, err
	}

	// Empty profile row, created implicitly with the account.
	if err := svc.profileWriter.Save(ctx, userID, nil, nil); err != nil {
		logger.Log.Errorw("failed to save profile", "userID", userID, "err", err)
		return nil, nil, false, err
	}

	user := &models.UserDB{UserID: userID, Email: email, Confirmed: confirmed}

	if svc.confirmationRequired {
		logger.Log.Infow("registration pending confirmation", "userID", userID, "redirect_to", redirectTo)
		return nil, user, true, nil
	}

	token, expiresAt, err := svc.issuer.Generate(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to generate session token", "err", err)
		return nil, nil, false, err
	}

	return &models.Session{Token: token, ExpiresAt: expiresAt}, user, false, nil
}

// Login authenticates a user with email and password and issues a session.
// An account awaiting email confirmation cannot sign in. Previous sessions
// of the account are revoked best-effort before the new token is issued;
// the revocation cutoff never covers the token issued below.
func (svc *AuthService) Login(ctx context.Context, email, password string) (*models.Session, *models.UserDB, error) {
	user, err := svc.userReader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return nil, nil, err
	}
	if user == nil {
		logger.Log.Warnw("user does not exist", "email", email)
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Log.Warnw("invalid credentials", "email", email)
		return nil, nil, ErrInvalidCredentials
	}

	if !user.Confirmed {
		logger.Log.Warnw("login attempt on unconfirmed account", "email", email)
		return nil, nil, ErrEmailNotConfirmed
	}

	if err := svc.revoker.Revoke(ctx, user.UserID, time.Now()); err != nil {
		logger.Log.Warnw("failed to revoke previous sessions", "userID", user.UserID, "err", err)
	}

	token, expiresAt, err := svc.issuer.Generate(ctx, user.UserID)
	if err != nil {
		logger.Log.Errorw("failed to generate session token", "err", err)
		return nil, nil, err
	}

	return &models.Session{Token: token, ExpiresAt: expiresAt}, user, nil
}

// SignOutGlobal invalidates every session token the user currently holds.
func (svc *AuthService) SignOutGlobal(ctx context.Context, userID uuid.UUID) error {
	if err := svc.revoker.Revoke(ctx, userID, time.Now()); err != nil {
		logger.Log.Errorw("failed to revoke tokens", "userID", userID, "err", err)
		return err
	}
	return nil
}

// SessionFromToken resolves a token into a live session and its user.
// An invalid, expired or revoked token is not an error: there simply is
// no session.
func (svc *AuthService) SessionFromToken(ctx context.Context, token string) (*models.Session, *models.UserDB, error) {
	if token == "" {
		return nil, nil, nil
	}

	claims, err := svc.issuer.GetClaims(ctx, token)
	if err != nil {
		logger.Log.Infow("session token rejected", "err", err)
		return nil, nil, nil
	}

	revoked, err := svc.revoker.IsRevoked(ctx, claims.UserID, claims.IssuedAt)
	if err != nil {
		logger.Log.Errorw("failed to check token revocation", "err", err)
		return nil, nil, err
	}
	if revoked {
		return nil, nil, nil
	}

	user, err := svc.userReader.GetByID(ctx, claims.UserID)
	if err != nil {
		logger.Log.Errorw("failed to get user for session", "err", err)
		return nil, nil, err
	}
	if user == nil || !user.Confirmed {
		return nil, nil, nil
	}

	return &models.Session{Token: token, ExpiresAt: claims.ExpiresAt}, user, nil
}

// ProfileByUserID returns the user's profile, or nil when none exists yet.
func (svc *AuthService) ProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.ProfileDB, error) {
	return svc.profileReader.GetByUserID(ctx, userID)
}

// UpdateProfile sets the user's display name.
func (svc *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, username string) error {
	if username == "" {
		return fmt.Errorf("%w: username must not be empty", ErrValidation)
	}
	if err := svc.profileWriter.Save(ctx, userID, &username, nil); err != nil {
		logger.Log.Errorw("failed to update profile", "userID", userID, "err", err)
		return err
	}
	return nil
}

// IsAdmin reports whether the user is in the admin set.
func (svc *AuthService) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	return svc.adminReader.Exists(ctx, userID)
}
