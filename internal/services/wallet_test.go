package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradex/tradex-wallet/internal/models"
	"github.com/tradex/tradex-wallet/internal/services"
)

type walletMocks struct {
	walletReader *services.MockWalletReader
	walletWriter *services.MockWalletWriter
	txnReader    *services.MockTransactionReader
	txnWriter    *services.MockTransactionWriter
	spotWriter   *services.MockSpotTransferWriter
	cache        *services.MockWalletCache
	kafka        *services.MockKafkaWriter
}

func newWalletService(ctrl *gomock.Controller) (*services.WalletService, walletMocks) {
	m := walletMocks{
		walletReader: services.NewMockWalletReader(ctrl),
		walletWriter: services.NewMockWalletWriter(ctrl),
		txnReader:    services.NewMockTransactionReader(ctrl),
		txnWriter:    services.NewMockTransactionWriter(ctrl),
		spotWriter:   services.NewMockSpotTransferWriter(ctrl),
		cache:        services.NewMockWalletCache(ctrl),
		kafka:        services.NewMockKafkaWriter(ctrl),
	}
	svc := services.NewWalletService(
		m.walletReader, m.walletWriter, m.txnReader, m.txnWriter,
		m.spotWriter, m.cache, m.kafka,
	)
	return svc, m
}

func TestWalletService_GetWallet(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newWalletService(ctrl)
	ctx := context.Background()
	userID := uuid.New()
	wallet := &models.WalletDB{
		WalletID: uuid.New(),
		UserID:   userID,
		Network:  models.NetworkTron,
		Balance:  decimal.NewFromInt(100),
	}

	t.Run("unauthenticated", func(t *testing.T) {
		got, err := svc.GetWallet(ctx, uuid.Nil)
		assert.ErrorIs(t, err, services.ErrUnauthenticated)
		assert.Nil(t, got)
	})

	t.Run("cache hit skips database", func(t *testing.T) {
		m.cache.EXPECT().GetWallet(gomock.Any(), userID).Return(wallet, true, nil)

		got, err := svc.GetWallet(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, wallet.WalletID, got.WalletID)
	})

	t.Run("cache miss reads database and fills cache", func(t *testing.T) {
		m.cache.EXPECT().GetWallet(gomock.Any(), userID).Return(nil, false, nil)
		m.walletReader.EXPECT().GetByUserAndNetwork(gomock.Any(), userID, models.NetworkTron).Return(wallet, nil)
		m.cache.EXPECT().SetWallet(gomock.Any(), userID, wallet).Return(nil)

		got, err := svc.GetWallet(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, wallet.WalletID, got.WalletID)
	})

	t.Run("no wallet is a valid empty state", func(t *testing.T) {
		m.cache.EXPECT().GetWallet(gomock.Any(), userID).Return(nil, false, nil)
		m.walletReader.EXPECT().GetByUserAndNetwork(gomock.Any(), userID, models.NetworkTron).Return(nil, nil)
		m.cache.EXPECT().SetWallet(gomock.Any(), userID, gomock.Nil()).Return(nil)

		got, err := svc.GetWallet(ctx, userID)
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("cache error falls through to database", func(t *testing.T) {
		m.cache.EXPECT().GetWallet(gomock.Any(), userID).Return(nil, false, errors.New("redis down"))
		m.walletReader.EXPECT().GetByUserAndNetwork(gomock.Any(), userID, models.NetworkTron).Return(wallet, nil)
		m.cache.EXPECT().SetWallet(gomock.Any(), userID, wallet).Return(errors.New("redis down"))

		got, err := svc.GetWallet(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, wallet.WalletID, got.WalletID)
	})
}

func TestWalletService_GetTransactions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newWalletService(ctrl)
	ctx := context.Background()
	userID := uuid.New()
	txns := []models.TransactionDB{
		{TransactionID: uuid.New(), UserID: userID, TransactionType: models.TransactionTypeDeposit},
	}

	t.Run("unauthenticated", func(t *testing.T) {
		got, err := svc.GetTransactions(ctx, uuid.Nil)
		assert.ErrorIs(t, err, services.ErrUnauthenticated)
		assert.Nil(t, got)
	})

	t.Run("cache miss queries the recent twenty", func(t *testing.T) {
		m.cache.EXPECT().GetTransactions(gomock.Any(), userID).Return(nil, false, nil)
		m.txnReader.EXPECT().ListRecentByUser(gomock.Any(), userID, 20).Return(txns, nil)
		m.cache.EXPECT().SetTransactions(gomock.Any(), userID, txns).Return(nil)

		got, err := svc.GetTransactions(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("empty history caches the empty list", func(t *testing.T) {
		m.cache.EXPECT().GetTransactions(gomock.Any(), userID).Return(nil, false, nil)
		m.txnReader.EXPECT().ListRecentByUser(gomock.Any(), userID, 20).Return([]models.TransactionDB{}, nil)
		m.cache.EXPECT().SetTransactions(gomock.Any(), userID, []models.TransactionDB{}).Return(nil)

		got, err := svc.GetTransactions(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("cache hit skips database", func(t *testing.T) {
		m.cache.EXPECT().GetTransactions(gomock.Any(), userID).Return(txns, true, nil)

		got, err := svc.GetTransactions(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("repeated reads without writes return the same history", func(t *testing.T) {
		m.cache.EXPECT().GetTransactions(gomock.Any(), userID).Return(nil, false, nil)
		m.txnReader.EXPECT().ListRecentByUser(gomock.Any(), userID, 20).Return(txns, nil)
		m.cache.EXPECT().SetTransactions(gomock.Any(), userID, txns).Return(nil)
		m.cache.EXPECT().GetTransactions(gomock.Any(), userID).Return(txns, true, nil)

		first, err := svc.GetTransactions(ctx, userID)
		require.NoError(t, err)
		second, err := svc.GetTransactions(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestWalletService_CreateWallet(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newWalletService(ctrl)
	ctx := context.Background()
	userID := uuid.New()

	var saved models.WalletDB
	m.walletWriter.EXPECT().Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, w models.WalletDB) error {
			saved = w
			return nil
		})
	m.cache.EXPECT().InvalidateWallet(gomock.Any(), userID).Return(nil)

	got, err := svc.CreateWallet(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, userID, saved.UserID)
	assert.Equal(t, models.NetworkTron, saved.Network)
	assert.True(t, saved.Balance.IsZero())
	assert.Len(t, saved.WalletAddress, 34)
	assert.True(t, strings.HasPrefix(saved.WalletAddress, "TR"))
	assert.Equal(t, saved.WalletAddress, got.WalletAddress)
}

func TestWalletService_CreateTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newWalletService(ctrl)
	ctx := context.Background()
	userID := uuid.New()
	wallet := &models.WalletDB{WalletID: uuid.New(), UserID: userID, Network: models.NetworkTron}

	t.Run("no wallet yields ErrNoWallet and no insert", func(t *testing.T) {
		m.cache.EXPECT().GetWallet(gomock.Any(), userID).Return(nil, true, nil)

		got, err := svc.CreateTransaction(ctx, userID, services.CreateTransactionParams{
			Type:   models.TransactionTypeDeposit,
			Amount: decimal.NewFromInt(10),
		})
		assert.ErrorIs(t, err, services.ErrNoWallet)
		assert.Nil(t, got)
	})

	statusCases := []struct {
		txnType    string
		wantStatus string
	}{
		{models.TransactionTypeDeposit, models.TransactionStatusPending},
		{models.TransactionTypeWithdrawal, models.TransactionStatusPending},
		{models.TransactionTypeTransferFromSpot, models.TransactionStatusConfirmed},
		{models.TransactionTypeTransferToSpot, models.TransactionStatusConfirmed},
	}

	for _, tc := range statusCases {
		t.Run("status for "+tc.txnType, func(t *testing.T) {
			m.cache.EXPECT().GetWallet(gomock.Any(), userID).Return(wallet, true, nil)

			var saved models.TransactionDB
			m.txnWriter.EXPECT().Save(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, txn models.TransactionDB) error {
					saved = txn
					return nil
				})
			m.cache.EXPECT().InvalidateTransactions(gomock.Any(), userID).Return(nil)
			m.cache.EXPECT().InvalidateWallet(gomock.Any(), userID).Return(nil)
			m.kafka.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).Return(nil)

			got, err := svc.CreateTransaction(ctx, userID, services.CreateTransactionParams{
				Type:   tc.txnType,
				Amount: decimal.NewFromFloat(25.5),
			})
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, got.Status)
			assert.Equal(t, tc.wantStatus, saved.Status)
			assert.Equal(t, wallet.WalletID, saved.WalletID)
			assert.Equal(t, models.CurrencyUSDT, saved.Currency)
			assert.Equal(t, models.NetworkTron, saved.Network)
			assert.True(t, saved.Amount.Equal(decimal.NewFromFloat(25.5)))
		})
	}

	t.Run("insert failure surfaces the error", func(t *testing.T) {
		m.cache.EXPECT().GetWallet(gomock.Any(), userID).Return(wallet, true, nil)
		m.txnWriter.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("insert failed"))

		got, err := svc.CreateTransaction(ctx, userID, services.CreateTransactionParams{
			Type:   models.TransactionTypeDeposit,
			Amount: decimal.NewFromInt(10),
		})
		assert.EqualError(t, err, "insert failed")
		assert.Nil(t, got)
	})
}

func TestWalletService_TransferFromSpot(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newWalletService(ctrl)
	ctx := context.Background()
	userID := uuid.New()
	wallet := &models.WalletDB{WalletID: uuid.New(), UserID: userID, Network: models.NetworkTron}
	amount := decimal.NewFromFloat(150.75)

	t.Run("records transfer and ledger row", func(t *testing.T) {
		var savedTransfer models.SpotTransferDB
		m.spotWriter.EXPECT().Save(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, tr models.SpotTransferDB) error {
				savedTransfer = tr
				return nil
			})
		m.cache.EXPECT().GetWallet(gomock.Any(), userID).Return(wallet, true, nil)

		var savedTxn models.TransactionDB
		m.txnWriter.EXPECT().Save(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, txn models.TransactionDB) error {
				savedTxn = txn
				return nil
			})
		m.cache.EXPECT().InvalidateTransactions(gomock.Any(), userID).Return(nil)
		m.cache.EXPECT().InvalidateWallet(gomock.Any(), userID).Return(nil)
		m.kafka.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).Return(nil)

		got, err := svc.TransferFromSpot(ctx, userID, amount)
		require.NoError(t, err)

		assert.Equal(t, models.TransferTypeSpotToWallet, savedTransfer.TransferType)
		assert.Equal(t, models.TransferStatusCompleted, savedTransfer.Status)
		assert.True(t, savedTransfer.Amount.Equal(amount))
		assert.Equal(t, savedTransfer.TransferID, got.TransferID)

		assert.Equal(t, models.TransactionTypeTransferFromSpot, savedTxn.TransactionType)
		assert.Equal(t, models.TransactionStatusConfirmed, savedTxn.Status)
		assert.True(t, savedTxn.Amount.Equal(amount))
	})

	t.Run("ledger failure still leaves the transfer row", func(t *testing.T) {
		m.spotWriter.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
		m.cache.EXPECT().GetWallet(gomock.Any(), userID).Return(wallet, true, nil)
		m.txnWriter.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("insert failed"))

		got, err := svc.TransferFromSpot(ctx, userID, amount)
		assert.EqualError(t, err, "insert failed")
		assert.Nil(t, got)
	})

	t.Run("transfer insert failure stops before the ledger", func(t *testing.T) {
		m.spotWriter.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("insert failed"))

		got, err := svc.TransferFromSpot(ctx, userID, amount)
		assert.EqualError(t, err, "insert failed")
		assert.Nil(t, got)
	})
}
