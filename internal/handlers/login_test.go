package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/tradex/tradex-wallet/internal/models"
	"github.com/tradex/tradex-wallet/internal/services"
)

func TestLoginHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name         string
		email        string
		password     string
		mockSetup    func(m *MockLoginer)
		expectedCode int
		rawBody      bool
	}{
		{
			name:     "success",
			email:    "john@example.com",
			password: "secret1",
			mockSetup: func(m *MockLoginer) {
				m.EXPECT().
					SignIn(gomock.Any(), "john@example.com", "secret1").
					Return(&models.Session{Token: "token123"}, nil)
			},
			expectedCode: 200,
		},
		{
			name:     "invalid credentials",
			email:    "john@example.com",
			password: "wrong",
			mockSetup: func(m *MockLoginer) {
				m.EXPECT().
					SignIn(gomock.Any(), "john@example.com", "wrong").
					Return(nil, services.ErrInvalidCredentials)
			},
			expectedCode: 401,
		},
		{
			name:     "unconfirmed account",
			email:    "john@example.com",
			password: "secret1",
			mockSetup: func(m *MockLoginer) {
				m.EXPECT().
					SignIn(gomock.Any(), "john@example.com", "secret1").
					Return(nil, services.ErrEmailNotConfirmed)
			},
			expectedCode: 401,
		},
		{
			name:     "internal server error",
			email:    "john@example.com",
			password: "secret1",
			mockSetup: func(m *MockLoginer) {
				m.EXPECT().
					SignIn(gomock.Any(), "john@example.com", "secret1").
					Return(nil, errors.New("database failure"))
			},
			expectedCode: 500,
		},
		{
			name:         "invalid json",
			rawBody:      true,
			expectedCode: 400,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := NewMockLoginer(ctrl)
			if tt.mockSetup != nil {
				tt.mockSetup(mockSvc)
			}

			var body *bytes.Buffer
			if tt.rawBody {
				body = bytes.NewBufferString("{invalid json")
			} else {
				b, _ := json.Marshal(LoginRequest{Email: tt.email, Password: tt.password})
				body = bytes.NewBuffer(b)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", body)
			rec := httptest.NewRecorder()

			NewLoginHandler(mockSvc).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)

			if tt.expectedCode == 200 {
				var resp LoginResponse
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, "token123", resp.Session.Token)
			}
		})
	}
}

func TestLogoutHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("success", func(t *testing.T) {
		mockSvc := NewMockSignOuter(ctrl)
		mockSvc.EXPECT().SignOut(gomock.Any()).Return(nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		rec := httptest.NewRecorder()

		NewLogoutHandler(mockSvc).ServeHTTP(rec, req)

		assert.Equal(t, 200, rec.Code)
	})

	t.Run("revocation failure is still a success", func(t *testing.T) {
		mockSvc := NewMockSignOuter(ctrl)
		mockSvc.EXPECT().SignOut(gomock.Any()).Return(errors.New("redis down"))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		rec := httptest.NewRecorder()

		NewLogoutHandler(mockSvc).ServeHTTP(rec, req)

		assert.Equal(t, 200, rec.Code)
	})
}

func TestSessionHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockSessionGetter(ctrl)
	mockSvc.EXPECT().Current().Return(services.SessionSnapshot{
		Session: &models.Session{Token: "token123"},
		User:    &models.UserDB{Email: "john@example.com"},
		IsAdmin: false,
		Loading: false,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/session", nil)
	rec := httptest.NewRecorder()

	NewSessionHandler(mockSvc).ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)

	var snap services.SessionSnapshot
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&snap))
	assert.Equal(t, "token123", snap.Session.Token)
	assert.Equal(t, "john@example.com", snap.User.Email)
}
