package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradex/tradex-wallet/internal/models"
	"github.com/tradex/tradex-wallet/internal/services"
)

const detailsTimeout = 2 * time.Second

func waitForProfile(t *testing.T, store *services.SessionStore) services.SessionSnapshot {
	t.Helper()
	require.Eventually(t, func() bool {
		return store.Current().Profile != nil
	}, detailsTimeout, 10*time.Millisecond)
	return store.Current()
}

func TestSessionStore_Initialize_NoToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	auth := services.NewMockAuthenticator(ctrl)
	auth.EXPECT().SessionFromToken(gomock.Any(), "").Return(nil, nil, nil)

	store := services.NewSessionStore(auth, "http://localhost:3000")
	defer store.Teardown()

	assert.True(t, store.Current().Loading)
	require.NoError(t, store.Initialize(context.Background(), ""))

	snap := store.Current()
	assert.False(t, snap.Loading)
	assert.Nil(t, snap.Session)
	assert.Nil(t, snap.User)
}

func TestSessionStore_Initialize_WithToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	username := "alice"
	session := &models.Session{Token: "token123", ExpiresAt: time.Now().Add(time.Hour)}
	user := &models.UserDB{UserID: userID, Email: "alice@example.com"}

	auth := services.NewMockAuthenticator(ctrl)
	auth.EXPECT().SessionFromToken(gomock.Any(), "token123").Return(session, user, nil)
	auth.EXPECT().ProfileByUserID(gomock.Any(), userID).
		Return(&models.ProfileDB{ProfileID: userID, Username: &username}, nil)
	auth.EXPECT().IsAdmin(gomock.Any(), userID).Return(true, nil)

	store := services.NewSessionStore(auth, "http://localhost:3000")
	defer store.Teardown()

	require.NoError(t, store.Initialize(context.Background(), "token123"))

	snap := waitForProfile(t, store)
	assert.False(t, snap.Loading)
	assert.Equal(t, "token123", snap.Session.Token)
	assert.Equal(t, userID, snap.User.UserID)
	assert.Equal(t, "alice", *snap.Profile.Username)
	assert.True(t, snap.IsAdmin)
}

func TestSessionStore_SignIn(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	session := &models.Session{Token: "token123", ExpiresAt: time.Now().Add(time.Hour)}
	user := &models.UserDB{UserID: userID, Email: "alice@example.com"}

	auth := services.NewMockAuthenticator(ctrl)
	auth.EXPECT().Login(gomock.Any(), "alice@example.com", "secret1").Return(session, user, nil)
	auth.EXPECT().ProfileByUserID(gomock.Any(), userID).Return(&models.ProfileDB{ProfileID: userID}, nil)
	auth.EXPECT().IsAdmin(gomock.Any(), userID).Return(false, nil)

	store := services.NewSessionStore(auth, "http://localhost:3000")
	defer store.Teardown()

	sub := store.Subscribe()
	defer sub.Unsubscribe()

	got, err := store.SignIn(context.Background(), "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "token123", got.Token)

	select {
	case event := <-sub.C:
		assert.Equal(t, services.EventSignedIn, event.Type)
		assert.Equal(t, "token123", event.Session.Token)
	case <-time.After(detailsTimeout):
		t.Fatal("no auth event delivered")
	}

	snap := waitForProfile(t, store)
	assert.Equal(t, userID, snap.User.UserID)
	assert.False(t, snap.IsAdmin)
}

func TestSessionStore_SignIn_DoesNotRevokeOtherUsers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	aliceID := uuid.New()
	bobID := uuid.New()
	aliceSession := &models.Session{Token: "alice-token", ExpiresAt: time.Now().Add(time.Hour)}
	bobSession := &models.Session{Token: "bob-token", ExpiresAt: time.Now().Add(time.Hour)}

	// No SignOutGlobal expectation: signing in as bob while alice's state is
	// still in the store must not revoke alice's sessions.
	auth := services.NewMockAuthenticator(ctrl)
	auth.EXPECT().Login(gomock.Any(), "alice@example.com", "secret1").
		Return(aliceSession, &models.UserDB{UserID: aliceID, Email: "alice@example.com"}, nil)
	auth.EXPECT().Login(gomock.Any(), "bob@example.com", "secret2").
		Return(bobSession, &models.UserDB{UserID: bobID, Email: "bob@example.com"}, nil)
	auth.EXPECT().ProfileByUserID(gomock.Any(), gomock.Any()).Return(&models.ProfileDB{}, nil).AnyTimes()
	auth.EXPECT().IsAdmin(gomock.Any(), gomock.Any()).Return(false, nil).AnyTimes()

	store := services.NewSessionStore(auth, "http://localhost:3000")
	defer store.Teardown()

	_, err := store.SignIn(context.Background(), "alice@example.com", "secret1")
	require.NoError(t, err)

	got, err := store.SignIn(context.Background(), "bob@example.com", "secret2")
	require.NoError(t, err)
	assert.Equal(t, "bob-token", got.Token)
	assert.Equal(t, bobID, store.Current().User.UserID)
}

func TestSessionStore_SignIn_Failure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	auth := services.NewMockAuthenticator(ctrl)
	auth.EXPECT().Login(gomock.Any(), "alice@example.com", "wrong").
		Return(nil, nil, services.ErrInvalidCredentials)

	store := services.NewSessionStore(auth, "http://localhost:3000")
	defer store.Teardown()

	got, err := store.SignIn(context.Background(), "alice@example.com", "wrong")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	assert.Nil(t, got)
	assert.Nil(t, store.Current().Session)
}

func TestSessionStore_SignUp_ConfirmationPending(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	user := &models.UserDB{UserID: uuid.New(), Email: "bob@example.com"}

	auth := services.NewMockAuthenticator(ctrl)
	auth.EXPECT().
		Register(gomock.Any(), "bob@example.com", "secret1", "http://localhost:3000").
		Return(nil, user, true, nil)

	store := services.NewSessionStore(auth, "http://localhost:3000")
	defer store.Teardown()

	result, err := store.SignUp(context.Background(), "bob@example.com", "secret1")
	require.NoError(t, err)
	assert.Nil(t, result.Session)
	assert.True(t, result.ConfirmationPending)
	assert.Nil(t, store.Current().Session)
}

func TestSessionStore_SignOut(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	session := &models.Session{Token: "token123", ExpiresAt: time.Now().Add(time.Hour)}
	user := &models.UserDB{UserID: userID, Email: "alice@example.com"}

	auth := services.NewMockAuthenticator(ctrl)
	auth.EXPECT().Login(gomock.Any(), "alice@example.com", "secret1").Return(session, user, nil)
	auth.EXPECT().ProfileByUserID(gomock.Any(), userID).Return(&models.ProfileDB{ProfileID: userID}, nil).AnyTimes()
	auth.EXPECT().IsAdmin(gomock.Any(), userID).Return(false, nil).AnyTimes()
	auth.EXPECT().SignOutGlobal(gomock.Any(), userID).Return(nil)

	store := services.NewSessionStore(auth, "http://localhost:3000")
	defer store.Teardown()

	_, err := store.SignIn(context.Background(), "alice@example.com", "secret1")
	require.NoError(t, err)
	waitForProfile(t, store)

	sub := store.Subscribe()
	defer sub.Unsubscribe()

	require.NoError(t, store.SignOut(context.Background()))

	snap := store.Current()
	assert.Nil(t, snap.Session)
	assert.Nil(t, snap.User)
	assert.Nil(t, snap.Profile)
	assert.False(t, snap.IsAdmin)

	select {
	case event := <-sub.C:
		assert.Equal(t, services.EventSignedOut, event.Type)
		assert.Nil(t, event.Session)
	case <-time.After(detailsTimeout):
		t.Fatal("no auth event delivered")
	}
}

func TestSessionStore_SignOut_RevocationFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	session := &models.Session{Token: "token123", ExpiresAt: time.Now().Add(time.Hour)}
	user := &models.UserDB{UserID: userID, Email: "alice@example.com"}
	revokeErr := errors.New("redis down")

	auth := services.NewMockAuthenticator(ctrl)
	auth.EXPECT().Login(gomock.Any(), "alice@example.com", "secret1").Return(session, user, nil)
	auth.EXPECT().ProfileByUserID(gomock.Any(), userID).Return(nil, nil).AnyTimes()
	auth.EXPECT().IsAdmin(gomock.Any(), userID).Return(false, nil).AnyTimes()
	auth.EXPECT().SignOutGlobal(gomock.Any(), userID).Return(revokeErr)

	store := services.NewSessionStore(auth, "http://localhost:3000")
	defer store.Teardown()

	_, err := store.SignIn(context.Background(), "alice@example.com", "secret1")
	require.NoError(t, err)

	// Local state is cleared even when remote revocation fails.
	err = store.SignOut(context.Background())
	assert.ErrorIs(t, err, revokeErr)
	assert.Nil(t, store.Current().Session)
	assert.Nil(t, store.Current().User)
}

func TestSessionStore_MissingProfileIsEmptyState(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	session := &models.Session{Token: "token123", ExpiresAt: time.Now().Add(time.Hour)}
	user := &models.UserDB{UserID: userID, Email: "alice@example.com"}

	loaded := make(chan struct{})

	auth := services.NewMockAuthenticator(ctrl)
	auth.EXPECT().SessionFromToken(gomock.Any(), "token123").Return(session, user, nil)
	auth.EXPECT().ProfileByUserID(gomock.Any(), userID).Return(nil, nil)
	auth.EXPECT().IsAdmin(gomock.Any(), userID).
		DoAndReturn(func(context.Context, uuid.UUID) (bool, error) {
			close(loaded)
			return false, nil
		})

	store := services.NewSessionStore(auth, "http://localhost:3000")
	defer store.Teardown()

	require.NoError(t, store.Initialize(context.Background(), "token123"))

	select {
	case <-loaded:
	case <-time.After(detailsTimeout):
		t.Fatal("user details never loaded")
	}

	snap := store.Current()
	assert.False(t, snap.Loading)
	assert.Equal(t, userID, snap.User.UserID)
	assert.Nil(t, snap.Profile)
}

func TestSessionStore_Teardown(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	auth := services.NewMockAuthenticator(ctrl)
	store := services.NewSessionStore(auth, "http://localhost:3000")

	sub := store.Subscribe()
	store.Teardown()
	store.Teardown()

	_, open := <-sub.C
	assert.False(t, open)
	sub.Unsubscribe()
}
