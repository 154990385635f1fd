package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/tradex/tradex-wallet/internal/logger"
	"github.com/tradex/tradex-wallet/internal/models"
)

// AuthEventType classifies auth-state changes pushed to subscribers.
type AuthEventType string

const (
	EventSignedIn       AuthEventType = "signed_in"
	EventSignedOut      AuthEventType = "signed_out"
	EventTokenRefreshed AuthEventType = "token_refreshed"
)

// AuthEvent is delivered to session subscribers on every auth-state change.
type AuthEvent struct {
	Type    AuthEventType
	Session *models.Session
}

// Authenticator is the remote-auth surface the session store drives.
type Authenticator interface {
	Register(ctx context.Context, email, password, redirectTo string) (*models.Session, *models.UserDB, bool, error)
	Login(ctx context.Context, email, password string) (*models.Session, *models.UserDB, error)
	SignOutGlobal(ctx context.Context, userID uuid.UUID) error
	SessionFromToken(ctx context.Context, token string) (*models.Session, *models.UserDB, error)
	ProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.ProfileDB, error)
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

// SessionSnapshot is a point-in-time copy of the store's state.
type SessionSnapshot struct {
	Session *models.Session   `json:"session"`
	User    *models.UserDB    `json:"user"`
	Profile *models.ProfileDB `json:"profile"`
	IsAdmin bool              `json:"is_admin"`
	Loading bool              `json:"loading"`
}

// SignUpResult reports how a registration ended: an active session or a
// pending email confirmation, never both absent.
type SignUpResult struct {
	Session             *models.Session `json:"session"`
	ConfirmationPending bool            `json:"confirmation_pending"`
}

// Subscription is a cancellable handle on the auth-event feed.
type Subscription struct {
	C      <-chan AuthEvent
	cancel func()
}

// Unsubscribe detaches the subscription. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.cancel()
}

// SessionStore holds the process-wide session, user, profile and admin-flag
// state with an explicit lifecycle. Profile and admin loads triggered by an
// auth-state change run on the store's own run queue, never inside the
// notification path, so the auth layer is never re-entered from its own
// callback.
type SessionStore struct {
	auth   Authenticator
	origin string

	mu      sync.RWMutex
	session *models.Session
	user    *models.UserDB
	profile *models.ProfileDB
	isAdmin bool
	loading bool

	subMu  sync.Mutex
	subs   map[int]chan AuthEvent
	nextID int

	tasks chan func()
	done  chan struct{}
	once  sync.Once
}

// NewSessionStore creates a session store. origin is the redirect target
// handed to registration for confirmation mails.
func NewSessionStore(auth Authenticator, origin string) *SessionStore {
	s := &SessionStore{
		auth:    auth,
		origin:  origin,
		loading: true,
		subs:    make(map[int]chan AuthEvent),
		tasks:   make(chan func(), 16),
		done:    make(chan struct{}),
	}
	go s.runLoop()
	return s
}

func (s *SessionStore) runLoop() {
	for {
		select {
		case fn := <-s.tasks:
			fn()
		case <-s.done:
			return
		}
	}
}

// post schedules fn on the run queue. After Teardown it becomes a no-op.
func (s *SessionStore) post(fn func()) {
	select {
	case s.tasks <- fn:
	case <-s.done:
	}
}

// Initialize resolves an existing session token, if any, and populates the
// store. The loading flag clears only after this initial check completes;
// profile and admin membership load asynchronously afterwards.
func (s *SessionStore) Initialize(ctx context.Context, token string) error {
	session, user, err := s.auth.SessionFromToken(ctx, token)

	s.mu.Lock()
	s.session = session
	s.user = user
	s.loading = false
	s.mu.Unlock()

	if err != nil {
		logger.Log.Errorw("session initialization failed", "err", err)
		return err
	}

	if user != nil {
		userID := user.UserID
		s.post(func() { s.loadUserDetails(userID) })
	}
	return nil
}

// Subscribe returns a handle delivering auth events until unsubscribed.
// Slow subscribers miss events rather than blocking the store.
func (s *SessionStore) Subscribe() *Subscription {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan AuthEvent, 8)
	s.subs[id] = ch

	var once sync.Once
	return &Subscription{
		C: ch,
		cancel: func() {
			once.Do(func() {
				s.subMu.Lock()
				if sub, ok := s.subs[id]; ok {
					delete(s.subs, id)
					close(sub)
				}
				s.subMu.Unlock()
			})
		},
	}
}

func (s *SessionStore) notify(event AuthEvent) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for id, ch := range s.subs {
		select {
		case ch <- event:
		default:
			logger.Log.Warnw("auth event dropped for slow subscriber", "subscriber", id, "event", event.Type)
		}
	}
}

// applyAuthChange updates session/user synchronously, notifies subscribers,
// and defers the profile and admin loads to the run queue.
func (s *SessionStore) applyAuthChange(eventType AuthEventType, session *models.Session, user *models.UserDB) {
	s.mu.Lock()
	s.session = session
	s.user = user
	if user == nil {
		s.profile = nil
		s.isAdmin = false
	}
	s.mu.Unlock()

	s.notify(AuthEvent{Type: eventType, Session: session})

	if user != nil {
		userID := user.UserID
		s.post(func() { s.loadUserDetails(userID) })
	}
}

// loadUserDetails fetches profile and admin membership. A missing profile
// row is a valid empty state; any other failure is logged and the field
// keeps its default.
func (s *SessionStore) loadUserDetails(userID uuid.UUID) {
	ctx := context.Background()

	profile, err := s.auth.ProfileByUserID(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to load profile", "userID", userID, "err", err)
	}

	isAdmin, err := s.auth.IsAdmin(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to check admin membership", "userID", userID, "err", err)
		isAdmin = false
	}

	s.mu.Lock()
	// The user may have signed out while the load was in flight.
	if s.user != nil && s.user.UserID == userID {
		if profile != nil {
			s.profile = profile
		}
		s.isAdmin = isAdmin
	}
	s.mu.Unlock()
}

// clearLocalSession drops the locally mirrored token state.
func (s *SessionStore) clearLocalSession() {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()
}

// currentUserID returns the signed-in user's id, or uuid.Nil.
func (s *SessionStore) currentUserID() uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return uuid.Nil
	}
	return s.user.UserID
}

// SignIn clears any cached token, then signs in with credentials. The auth
// layer revokes the account's previous sessions itself, scoped to the
// account actually signing in. On failure no session is set and the service
// error is surfaced to the caller.
func (s *SessionStore) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	s.clearLocalSession()

	session, user, err := s.auth.Login(ctx, email, password)
	if err != nil {
		logger.Log.Errorw("sign-in failed", "email", email, "err", err)
		return nil, err
	}

	s.applyAuthChange(EventSignedIn, session, user)
	return session, nil
}

// SignUp clears any cached token, then creates the account with the
// configured origin as redirect target. A brand-new account has no previous
// sessions to revoke.
func (s *SessionStore) SignUp(ctx context.Context, email, password string) (*SignUpResult, error) {
	s.clearLocalSession()

	session, user, pending, err := s.auth.Register(ctx, email, password, s.origin)
	if err != nil {
		logger.Log.Errorw("sign-up failed", "email", email, "err", err)
		return nil, err
	}

	if session != nil {
		s.applyAuthChange(EventSignedIn, session, user)
	}
	return &SignUpResult{Session: session, ConfirmationPending: pending}, nil
}

// SignOut clears the cached token, revokes every session of the user, and
// resets all in-memory state. State is cleared even when revocation fails:
// the clean-slate policy is deliberate.
func (s *SessionStore) SignOut(ctx context.Context) error {
	userID := s.currentUserID()
	s.clearLocalSession()

	var revokeErr error
	if userID != uuid.Nil {
		revokeErr = s.auth.SignOutGlobal(ctx, userID)
		if revokeErr != nil {
			logger.Log.Errorw("global sign-out failed", "userID", userID, "err", revokeErr)
		}
	}

	s.applyAuthChange(EventSignedOut, nil, nil)
	return revokeErr
}

// Current returns a snapshot of the store's state.
func (s *SessionStore) Current() SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SessionSnapshot{
		Session: s.session,
		User:    s.user,
		Profile: s.profile,
		IsAdmin: s.isAdmin,
		Loading: s.loading,
	}
}

// Teardown stops the run queue and closes all subscriptions.
func (s *SessionStore) Teardown() {
	s.once.Do(func() {
		close(s.done)

		s.subMu.Lock()
		for id, ch := range s.subs {
			delete(s.subs, id)
			close(ch)
		}
		s.subMu.Unlock()
	})
}
