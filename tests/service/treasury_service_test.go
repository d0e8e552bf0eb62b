package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/grupo-sgp/erp-api/internal/domain"
	"github.com/grupo-sgp/erp-api/internal/repository"
	"github.com/grupo-sgp/erp-api/internal/service"
	"github.com/grupo-sgp/erp-api/tests/testutil"
)

func createTreasuryService(db *gorm.DB) *service.TreasuryService {
	return service.NewTreasuryService(repository.NewBankRepository(db), zap.NewNop())
}

func TestTreasuryService_Accounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createTreasuryService(db)
	ctx := context.Background()

	t.Run("create sets both balances from the opening balance", func(t *testing.T) {
		account, err := svc.CreateAccount(ctx, domain.BankAccountRequest{
			Name:           "  Operativa MXN  ",
			BankName:       "Banorte",
			InitialBalance: 125000.505,
		})
		require.NoError(t, err)
		assert.Equal(t, "Operativa MXN", account.Name)
		assert.InDelta(t, 125000.51, account.InitialBalance, 0.001)
		assert.InDelta(t, 125000.51, account.CurrentBalance, 0.001)
		assert.True(t, account.IsActive)
	})

	t.Run("update never touches balances", func(t *testing.T) {
		account := testutil.CreateTestAccount(t, db, 5000)

		updated, err := svc.UpdateAccount(ctx, account.ID, domain.BankAccountRequest{
			Name:           "Nómina",
			BankName:       "Santander",
			InitialBalance: 999999,
		})
		require.NoError(t, err)
		assert.Equal(t, "Nómina", updated.Name)
		assert.InDelta(t, 5000, updated.CurrentBalance, 0.001)
		assert.InDelta(t, 5000, updated.InitialBalance, 0.001)
	})

	t.Run("deactivated accounts drop out of the default listing", func(t *testing.T) {
		account := testutil.CreateTestAccount(t, db, 100)
		require.NoError(t, svc.DeactivateAccount(ctx, account.ID))

		active, err := svc.ListAccounts(ctx, false)
		require.NoError(t, err)
		for _, a := range active {
			assert.NotEqual(t, account.ID, a.ID)
		}

		all, err := svc.ListAccounts(ctx, true)
		require.NoError(t, err)
		found := false
		for _, a := range all {
			if a.ID == account.ID {
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := svc.GetAccount(ctx, uuid.New())
		assert.ErrorIs(t, err, service.ErrAccountNotFound)
	})
}

func TestTreasuryService_RecordTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createTreasuryService(db)
	ctx := context.Background()

	t.Run("deposits raise the balance", func(t *testing.T) {
		account := testutil.CreateTestAccount(t, db, 1000)

		movement, err := svc.RecordTransaction(ctx, domain.BankTransactionRequest{
			AccountID: account.ID,
			Type:      "IN",
			Amount:    250.50,
			Concept:   "Anticipo cliente",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.BankTxIn, movement.TransactionType)

		reloaded, err := svc.GetAccount(ctx, account.ID)
		require.NoError(t, err)
		assert.InDelta(t, 1250.50, reloaded.CurrentBalance, 0.001)
	})

	t.Run("withdrawals need funds", func(t *testing.T) {
		account := testutil.CreateTestAccount(t, db, 100)

		_, err := svc.RecordTransaction(ctx, domain.BankTransactionRequest{
			AccountID: account.ID,
			Type:      "OUT",
			Amount:    100.02,
			Concept:   "Comisión bancaria",
		})
		assert.ErrorIs(t, err, service.ErrInsufficientFunds)

		// Within the cent tolerance the withdrawal still clears.
		_, err = svc.RecordTransaction(ctx, domain.BankTransactionRequest{
			AccountID: account.ID,
			Type:      "OUT",
			Amount:    100.01,
			Concept:   "Comisión bancaria",
		})
		require.NoError(t, err)

		reloaded, err := svc.GetAccount(ctx, account.ID)
		require.NoError(t, err)
		assert.InDelta(t, -0.01, reloaded.CurrentBalance, 0.001)
	})

	t.Run("unknown movement type", func(t *testing.T) {
		account := testutil.CreateTestAccount(t, db, 100)
		_, err := svc.RecordTransaction(ctx, domain.BankTransactionRequest{
			AccountID: account.ID,
			Type:      "TRANSFER",
			Amount:    10,
			Concept:   "no válido a mano",
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := svc.RecordTransaction(ctx, domain.BankTransactionRequest{
			AccountID: uuid.New(),
			Type:      "IN",
			Amount:    10,
			Concept:   "nadie",
		})
		assert.ErrorIs(t, err, service.ErrAccountNotFound)
	})
}

func TestTreasuryService_Transfer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createTreasuryService(db)
	ctx := context.Background()

	t.Run("both legs land and balances move together", func(t *testing.T) {
		from := testutil.CreateTestAccount(t, db, 10000)
		to := testutil.CreateTestAccount(t, db, 500)

		legs, err := svc.Transfer(ctx, domain.TransferRequest{
			FromAccountID: from.ID,
			ToAccountID:   to.ID,
			Amount:        2500,
		})
		require.NoError(t, err)
		require.Len(t, legs, 2)

		out, in := legs[0], legs[1]
		assert.Equal(t, domain.BankTxTransfer, out.TransactionType)
		assert.InDelta(t, -2500, out.Amount, 0.001)
		assert.Equal(t, from.ID, out.AccountID)
		require.NotNil(t, out.RelatedEntityID)
		assert.Equal(t, to.ID, *out.RelatedEntityID)

		assert.Equal(t, domain.BankTxTransfer, in.TransactionType)
		assert.InDelta(t, 2500, in.Amount, 0.001)
		assert.Equal(t, to.ID, in.AccountID)
		require.NotNil(t, in.RelatedEntityID)
		assert.Equal(t, from.ID, *in.RelatedEntityID)

		assert.Equal(t, "Traspaso entre cuentas", out.Concept)

		fromAfter, err := svc.GetAccount(ctx, from.ID)
		require.NoError(t, err)
		assert.InDelta(t, 7500, fromAfter.CurrentBalance, 0.001)

		toAfter, err := svc.GetAccount(ctx, to.ID)
		require.NoError(t, err)
		assert.InDelta(t, 3000, toAfter.CurrentBalance, 0.001)
	})

	t.Run("insufficient funds abort both legs", func(t *testing.T) {
		from := testutil.CreateTestAccount(t, db, 100)
		to := testutil.CreateTestAccount(t, db, 0)

		_, err := svc.Transfer(ctx, domain.TransferRequest{
			FromAccountID: from.ID,
			ToAccountID:   to.ID,
			Amount:        500,
		})
		assert.ErrorIs(t, err, service.ErrInsufficientFunds)

		var count int64
		require.NoError(t, db.Model(&domain.BankTransaction{}).
			Where("account_id IN ?", []uuid.UUID{from.ID, to.ID}).
			Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("same account transfer is rejected", func(t *testing.T) {
		account := testutil.CreateTestAccount(t, db, 1000)
		_, err := svc.Transfer(ctx, domain.TransferRequest{
			FromAccountID: account.ID,
			ToAccountID:   account.ID,
			Amount:        100,
		})
		assert.ErrorIs(t, err, service.ErrSameAccountTransfer)
	})
}

func TestTreasuryService_History(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createTreasuryService(db)
	ctx := context.Background()

	account := testutil.CreateTestAccount(t, db, 10000)
	for i := 0; i < 3; i++ {
		_, err := svc.RecordTransaction(ctx, domain.BankTransactionRequest{
			AccountID: account.ID,
			Type:      "OUT",
			Amount:    100,
			Concept:   "Gasto menor",
		})
		require.NoError(t, err)
	}

	movements, total, err := svc.History(ctx, account.ID, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, movements, 2)

	_, _, err = svc.History(ctx, uuid.New(), 1, 10)
	assert.ErrorIs(t, err, service.ErrAccountNotFound)
}
