package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tradex/tradex-wallet/internal/models"
	"github.com/tradex/tradex-wallet/internal/services"
)

func TestGetTransactionsHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()

	t.Run("history returned", func(t *testing.T) {
		mockSvc := NewMockTransactionLister(ctrl)
		mockSvc.EXPECT().GetTransactions(gomock.Any(), userID).
			Return([]models.TransactionDB{
				{TransactionID: uuid.New(), TransactionType: models.TransactionTypeDeposit},
			}, nil)

		req := authedRequest(http.MethodGet, "/api/v1/wallet/transactions", nil, userID)
		rec := httptest.NewRecorder()

		NewGetTransactionsHandler(mockSvc).ServeHTTP(rec, req)

		assert.Equal(t, 200, rec.Code)

		var resp TransactionsResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Len(t, resp.Transactions, 1)
	})

	t.Run("empty history is an empty list", func(t *testing.T) {
		mockSvc := NewMockTransactionLister(ctrl)
		mockSvc.EXPECT().GetTransactions(gomock.Any(), userID).Return(nil, nil)

		req := authedRequest(http.MethodGet, "/api/v1/wallet/transactions", nil, userID)
		rec := httptest.NewRecorder()

		NewGetTransactionsHandler(mockSvc).ServeHTTP(rec, req)

		assert.Equal(t, 200, rec.Code)
		assert.Contains(t, rec.Body.String(), `"transactions":[]`)
	})

	t.Run("internal server error", func(t *testing.T) {
		mockSvc := NewMockTransactionLister(ctrl)
		mockSvc.EXPECT().GetTransactions(gomock.Any(), userID).
			Return(nil, errors.New("database failure"))

		req := authedRequest(http.MethodGet, "/api/v1/wallet/transactions", nil, userID)
		rec := httptest.NewRecorder()

		NewGetTransactionsHandler(mockSvc).ServeHTTP(rec, req)

		assert.Equal(t, 500, rec.Code)
	})
}

func TestCreateTransactionHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	address := "TRDESTINATION"

	tests := []struct {
		name         string
		req          CreateTransactionRequest
		mockSetup    func(m *MockTransactionCreator)
		expectedCode int
	}{
		{
			name: "deposit created",
			req: CreateTransactionRequest{
				Type:   models.TransactionTypeDeposit,
				Amount: decimal.NewFromFloat(100.5),
			},
			mockSetup: func(m *MockTransactionCreator) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), userID, services.CreateTransactionParams{
						Type:   models.TransactionTypeDeposit,
						Amount: decimal.NewFromFloat(100.5),
					}).
					Return(&models.TransactionDB{TransactionID: uuid.New(), Status: models.TransactionStatusPending}, nil)
			},
			expectedCode: 201,
		},
		{
			name: "withdrawal with address created",
			req: CreateTransactionRequest{
				Type:      models.TransactionTypeWithdrawal,
				Amount:    decimal.NewFromInt(50),
				ToAddress: &address,
			},
			mockSetup: func(m *MockTransactionCreator) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), userID, gomock.Any()).
					Return(&models.TransactionDB{TransactionID: uuid.New(), Status: models.TransactionStatusPending}, nil)
			},
			expectedCode: 201,
		},
		{
			// The accessor is never called: zero is not a valid amount.
			name: "zero amount rejected",
			req: CreateTransactionRequest{
				Type:   models.TransactionTypeDeposit,
				Amount: decimal.Zero,
			},
			expectedCode: 400,
		},
		{
			name: "negative amount rejected",
			req: CreateTransactionRequest{
				Type:   models.TransactionTypeDeposit,
				Amount: decimal.NewFromInt(-5),
			},
			expectedCode: 400,
		},
		{
			name: "unknown type rejected",
			req: CreateTransactionRequest{
				Type:   "exchange",
				Amount: decimal.NewFromInt(5),
			},
			expectedCode: 400,
		},
		{
			name: "withdrawal without address rejected",
			req: CreateTransactionRequest{
				Type:   models.TransactionTypeWithdrawal,
				Amount: decimal.NewFromInt(5),
			},
			expectedCode: 400,
		},
		{
			name: "no wallet",
			req: CreateTransactionRequest{
				Type:   models.TransactionTypeDeposit,
				Amount: decimal.NewFromInt(5),
			},
			mockSetup: func(m *MockTransactionCreator) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), userID, gomock.Any()).
					Return(nil, services.ErrNoWallet)
			},
			expectedCode: 400,
		},
		{
			name: "internal server error",
			req: CreateTransactionRequest{
				Type:   models.TransactionTypeDeposit,
				Amount: decimal.NewFromInt(5),
			},
			mockSetup: func(m *MockTransactionCreator) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), userID, gomock.Any()).
					Return(nil, errors.New("database failure"))
			},
			expectedCode: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := NewMockTransactionCreator(ctrl)
			if tt.mockSetup != nil {
				tt.mockSetup(mockSvc)
			}

			b, _ := json.Marshal(tt.req)
			req := authedRequest(http.MethodPost, "/api/v1/wallet/transactions", bytes.NewBuffer(b), userID)
			rec := httptest.NewRecorder()

			NewCreateTransactionHandler(mockSvc).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)
		})
	}
}
