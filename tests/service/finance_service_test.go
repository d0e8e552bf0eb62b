package service_test

import (
	"context"
	"testing"
	"time"

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

func createFinanceService(db *gorm.DB) *service.FinanceService {
	return service.NewFinanceService(
		repository.NewPurchaseInvoiceRepository(db),
		repository.NewSupplierPaymentRepository(db),
		zap.NewNop(),
	)
}

func createOpenInvoice(t *testing.T, db *gorm.DB, provider *domain.Provider, amount float64, dueDate time.Time) *domain.PurchaseInvoice {
	invoice := &domain.PurchaseInvoice{
		Folio:              "INV-" + uuid.New().String()[:8],
		ProviderID:         provider.ID,
		TotalAmount:        amount,
		OutstandingBalance: amount,
		InvoiceDate:        dueDate.AddDate(0, 0, -30),
		DueDate:            dueDate,
		Status:             domain.InvoicePending,
	}
	require.NoError(t, db.Create(invoice).Error)
	return invoice
}

func TestFinanceService_RequestPayment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createFinanceService(db)
	ctx := context.Background()

	provider := testutil.CreateTestProvider(t, db, 30)
	buyer := salesUserContext(testutil.CreateTestUser(t, db, domain.RoleWarehouse))

	t.Run("request defaults to transfer", func(t *testing.T) {
		invoice := createOpenInvoice(t, db, provider, 10000, testutil.Date(2026, 9, 30))

		payment, err := svc.RequestPayment(ctx, buyer, domain.SupplierPaymentRequest{
			InvoiceID: invoice.ID,
			Amount:    4000,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.SupplierPaymentPending, payment.Status)
		assert.Equal(t, domain.MethodTransferencia, payment.PaymentMethod)
		require.NotNil(t, payment.RequestedBy)
		assert.Equal(t, buyer.UserID, *payment.RequestedBy)
	})

	t.Run("live requests cannot exceed the remaining debt", func(t *testing.T) {
		invoice := createOpenInvoice(t, db, provider, 1000, testutil.Date(2026, 9, 30))

		_, err := svc.RequestPayment(ctx, buyer, domain.SupplierPaymentRequest{InvoiceID: invoice.ID, Amount: 600})
		require.NoError(t, err)

		_, err = svc.RequestPayment(ctx, buyer, domain.SupplierPaymentRequest{InvoiceID: invoice.ID, Amount: 600})
		assert.ErrorIs(t, err, service.ErrOverCommitted)

		// Exactly the remaining debt still fits.
		_, err = svc.RequestPayment(ctx, buyer, domain.SupplierPaymentRequest{InvoiceID: invoice.ID, Amount: 400})
		assert.NoError(t, err)
	})

	t.Run("a rejected request frees its committed amount", func(t *testing.T) {
		invoice := createOpenInvoice(t, db, provider, 500, testutil.Date(2026, 9, 30))
		director := salesUserContext(testutil.CreateTestUser(t, db, domain.RoleDirector))

		first, err := svc.RequestPayment(ctx, buyer, domain.SupplierPaymentRequest{InvoiceID: invoice.ID, Amount: 500})
		require.NoError(t, err)

		_, err = svc.RequestPayment(ctx, buyer, domain.SupplierPaymentRequest{InvoiceID: invoice.ID, Amount: 100})
		assert.ErrorIs(t, err, service.ErrOverCommitted)

		_, err = svc.RejectPayment(ctx, director, first.ID)
		require.NoError(t, err)

		_, err = svc.RequestPayment(ctx, buyer, domain.SupplierPaymentRequest{InvoiceID: invoice.ID, Amount: 100})
		assert.NoError(t, err)
	})

	t.Run("unknown invoice", func(t *testing.T) {
		_, err := svc.RequestPayment(ctx, buyer, domain.SupplierPaymentRequest{InvoiceID: uuid.New(), Amount: 100})
		assert.ErrorIs(t, err, service.ErrInvoiceNotFound)
	})
}

func TestFinanceService_ApprovalFlow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createFinanceService(db)
	ctx := context.Background()

	provider := testutil.CreateTestProvider(t, db, 30)
	account := testutil.CreateTestAccount(t, db, 50000)
	buyer := salesUserContext(testutil.CreateTestUser(t, db, domain.RoleWarehouse))
	director := salesUserContext(testutil.CreateTestUser(t, db, domain.RoleDirector))

	newPending := func(t *testing.T, amount float64) *domain.SupplierPayment {
		invoice := createOpenInvoice(t, db, provider, amount, testutil.Date(2026, 9, 30))
		payment, err := svc.RequestPayment(ctx, buyer, domain.SupplierPaymentRequest{
			InvoiceID: invoice.ID, Amount: amount,
		})
		require.NoError(t, err)
		return payment
	}

	t.Run("only a director or admin can approve", func(t *testing.T) {
		payment := newPending(t, 1000)

		_, err := svc.ApprovePayment(ctx, buyer, payment.ID, domain.PaymentApprovalRequest{AccountID: account.ID})
		assert.ErrorIs(t, err, service.ErrPermissionDenied)

		approved, err := svc.ApprovePayment(ctx, director, payment.ID, domain.PaymentApprovalRequest{AccountID: account.ID})
		require.NoError(t, err)
		assert.Equal(t, domain.SupplierPaymentApproved, approved.Status)
		require.NotNil(t, approved.ApprovedAccountID)
		assert.Equal(t, account.ID, *approved.ApprovedAccountID)
		require.NotNil(t, approved.ApprovedBy)
		assert.Equal(t, director.UserID, *approved.ApprovedBy)
	})

	t.Run("revoking sends the request back to pending", func(t *testing.T) {
		payment := newPending(t, 1000)
		_, err := svc.ApprovePayment(ctx, director, payment.ID, domain.PaymentApprovalRequest{AccountID: account.ID})
		require.NoError(t, err)

		revoked, err := svc.RevokeApproval(ctx, director, payment.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.SupplierPaymentPending, revoked.Status)
		assert.Nil(t, revoked.ApprovedAccountID)
		assert.Nil(t, revoked.ApprovedBy)
	})

	t.Run("approved requests cannot be edited or deleted", func(t *testing.T) {
		payment := newPending(t, 1000)
		_, err := svc.ApprovePayment(ctx, director, payment.ID, domain.PaymentApprovalRequest{AccountID: account.ID})
		require.NoError(t, err)

		amount := 500.0
		_, err = svc.UpdatePayment(ctx, payment.ID, domain.SupplierPaymentUpdateRequest{Amount: &amount})
		assert.ErrorIs(t, err, service.ErrPaymentNotPending)

		assert.ErrorIs(t, svc.DeletePayment(ctx, payment.ID), service.ErrPaymentNotPending)
	})

	t.Run("rejected requests can be deleted", func(t *testing.T) {
		payment := newPending(t, 300)
		_, err := svc.RejectPayment(ctx, director, payment.ID)
		require.NoError(t, err)

		assert.NoError(t, svc.DeletePayment(ctx, payment.ID))
	})
}

func TestFinanceService_ExecutePayment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createFinanceService(db)
	ctx := context.Background()

	provider := testutil.CreateTestProvider(t, db, 30)
	buyer := salesUserContext(testutil.CreateTestUser(t, db, domain.RoleWarehouse))
	director := salesUserContext(testutil.CreateTestUser(t, db, domain.RoleDirector))

	approve := func(t *testing.T, invoice *domain.PurchaseInvoice, account *domain.BankAccount, amount float64) *domain.SupplierPayment {
		payment, err := svc.RequestPayment(ctx, buyer, domain.SupplierPaymentRequest{
			InvoiceID: invoice.ID, Amount: amount,
		})
		require.NoError(t, err)
		payment, err = svc.ApprovePayment(ctx, director, payment.ID, domain.PaymentApprovalRequest{AccountID: account.ID})
		require.NoError(t, err)
		return payment
	}

	t.Run("full payment settles the invoice and debits the account", func(t *testing.T) {
		account := testutil.CreateTestAccount(t, db, 20000)
		invoice := createOpenInvoice(t, db, provider, 8120.50, testutil.Date(2026, 9, 30))
		payment := approve(t, invoice, account, 8120.50)

		executed, err := svc.ExecutePayment(ctx, director, payment.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.SupplierPaymentPaid, executed.Status)
		require.NotNil(t, executed.ExecutedAt)
		require.NotNil(t, executed.TreasuryTransactionID)

		var acc domain.BankAccount
		require.NoError(t, db.First(&acc, "id = ?", account.ID).Error)
		assert.InDelta(t, 11879.50, acc.CurrentBalance, 0.001)

		var inv domain.PurchaseInvoice
		require.NoError(t, db.First(&inv, "id = ?", invoice.ID).Error)
		assert.Equal(t, domain.InvoicePaid, inv.Status)
		assert.Zero(t, inv.OutstandingBalance)

		var movement domain.BankTransaction
		require.NoError(t, db.First(&movement, "id = ?", *executed.TreasuryTransactionID).Error)
		assert.Equal(t, domain.BankTxOut, movement.TransactionType)
		assert.InDelta(t, 8120.50, movement.Amount, 0.001)
		assert.Equal(t, "supplier_payment", movement.RelatedEntityType)
		require.NotNil(t, movement.RelatedEntityID)
		assert.Equal(t, executed.ID, *movement.RelatedEntityID)
	})

	t.Run("partial payment leaves the invoice partial", func(t *testing.T) {
		account := testutil.CreateTestAccount(t, db, 20000)
		invoice := createOpenInvoice(t, db, provider, 10000, testutil.Date(2026, 9, 30))
		payment := approve(t, invoice, account, 3000)

		_, err := svc.ExecutePayment(ctx, director, payment.ID)
		require.NoError(t, err)

		var inv domain.PurchaseInvoice
		require.NoError(t, db.First(&inv, "id = ?", invoice.ID).Error)
		assert.Equal(t, domain.InvoicePartial, inv.Status)
		assert.InDelta(t, 7000, inv.OutstandingBalance, 0.001)

		// The executed amount no longer commits; the rest is requestable.
		_, err = svc.RequestPayment(ctx, buyer, domain.SupplierPaymentRequest{
			InvoiceID: invoice.ID, Amount: 7000,
		})
		assert.NoError(t, err)
	})

	t.Run("insufficient funds abort without side effects", func(t *testing.T) {
		account := testutil.CreateTestAccount(t, db, 100)
		invoice := createOpenInvoice(t, db, provider, 5000, testutil.Date(2026, 9, 30))
		payment := approve(t, invoice, account, 5000)

		_, err := svc.ExecutePayment(ctx, director, payment.ID)
		assert.ErrorIs(t, err, service.ErrInsufficientFunds)

		var acc domain.BankAccount
		require.NoError(t, db.First(&acc, "id = ?", account.ID).Error)
		assert.InDelta(t, 100, acc.CurrentBalance, 0.001)

		var inv domain.PurchaseInvoice
		require.NoError(t, db.First(&inv, "id = ?", invoice.ID).Error)
		assert.Equal(t, domain.InvoicePending, inv.Status)

		reloaded, err := svc.GetPayment(ctx, payment.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.SupplierPaymentApproved, reloaded.Status)
	})

	t.Run("unapproved requests cannot execute", func(t *testing.T) {
		invoice := createOpenInvoice(t, db, provider, 1000, testutil.Date(2026, 9, 30))
		payment, err := svc.RequestPayment(ctx, buyer, domain.SupplierPaymentRequest{
			InvoiceID: invoice.ID, Amount: 1000,
		})
		require.NoError(t, err)

		_, err = svc.ExecutePayment(ctx, director, payment.ID)
		assert.ErrorIs(t, err, service.ErrPaymentNotApproved)
	})
}

func TestFinanceService_AgingReport(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createFinanceService(db)
	ctx := context.Background()

	provider := testutil.CreateTestProvider(t, db, 30)
	asOf := testutil.Date(2026, 8, 31)

	createOpenInvoice(t, db, provider, 100, testutil.Date(2026, 9, 15)) // not due yet
	createOpenInvoice(t, db, provider, 200, testutil.Date(2026, 8, 31)) // due today, still current
	createOpenInvoice(t, db, provider, 300, testutil.Date(2026, 8, 20)) // 11 days past
	createOpenInvoice(t, db, provider, 400, testutil.Date(2026, 7, 15)) // 47 days past
	createOpenInvoice(t, db, provider, 500, testutil.Date(2026, 6, 10)) // 82 days past
	createOpenInvoice(t, db, provider, 600, testutil.Date(2026, 1, 10)) // far past

	// Paid and cancelled invoices never age.
	paid := createOpenInvoice(t, db, provider, 9999, testutil.Date(2026, 1, 1))
	require.NoError(t, db.Model(paid).Updates(map[string]any{"status": domain.InvoicePaid, "outstanding_balance": 0}).Error)

	report, err := svc.AgingReport(ctx, asOf)
	require.NoError(t, err)

	assert.Equal(t, "2026-08-31", report.AsOf)
	assert.Equal(t, 6, report.TotalCount)
	assert.InDelta(t, 2100, report.TotalDebt, 0.001)

	assert.Equal(t, 2, report.Current.Count)
	assert.InDelta(t, 300, report.Current.Total, 0.001)

	require.Len(t, report.Buckets, 4)
	assert.Equal(t, "1-30", report.Buckets[0].Label)
	assert.InDelta(t, 300, report.Buckets[0].Total, 0.001)
	assert.Equal(t, "31-60", report.Buckets[1].Label)
	assert.InDelta(t, 400, report.Buckets[1].Total, 0.001)
	assert.Equal(t, "61-90", report.Buckets[2].Label)
	assert.InDelta(t, 500, report.Buckets[2].Total, 0.001)
	assert.Equal(t, ">90", report.Buckets[3].Label)
	assert.InDelta(t, 600, report.Buckets[3].Total, 0.001)
}

func TestFinanceService_PayableStats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createFinanceService(db)
	ctx := context.Background()

	provider := testutil.CreateTestProvider(t, db, 30)

	// Monday August 31st 2026; the payment run cuts off Friday the 4th.
	today := testutil.Date(2026, 8, 31)

	createOpenInvoice(t, db, provider, 1000, testutil.Date(2026, 8, 28)) // overdue
	createOpenInvoice(t, db, provider, 2000, testutil.Date(2026, 9, 4))  // this week's run
	createOpenInvoice(t, db, provider, 3000, testutil.Date(2026, 9, 10)) // next period
	createOpenInvoice(t, db, provider, 4000, testutil.Date(2026, 9, 19)) // next period edge
	createOpenInvoice(t, db, provider, 5000, testutil.Date(2026, 10, 15)) // future

	stats, err := svc.PayableStats(ctx, today)
	require.NoError(t, err)

	assert.Equal(t, "2026-09-04", stats.CutoffDate)
	assert.Equal(t, "2026-09-19", stats.NextPeriodEnd)

	assert.InDelta(t, 1000, stats.OverdueTotal, 0.001)
	assert.Equal(t, 1, stats.OverdueCount)
	assert.InDelta(t, 2000, stats.DueThisWeek, 0.001)
	assert.Equal(t, 1, stats.DueCount)
	assert.InDelta(t, 7000, stats.NextPeriod, 0.001)
	assert.Equal(t, 2, stats.NextCount)
	assert.InDelta(t, 5000, stats.Future, 0.001)
	assert.Equal(t, 1, stats.FutureCount)
	assert.InDelta(t, 15000, stats.TotalOpenDebt, 0.001)
	assert.Equal(t, 5, stats.TotalOpenCount)
}

func TestFinanceService_PayableStats_FridayCutoff(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createFinanceService(db)
	ctx := context.Background()

	// Running on a Friday keeps the cutoff on that same Friday.
	friday := testutil.Date(2026, 9, 4)
	stats, err := svc.PayableStats(ctx, friday)
	require.NoError(t, err)
	assert.Equal(t, "2026-09-04", stats.CutoffDate)

	// Saturday rolls over to the following Friday.
	saturday := testutil.Date(2026, 9, 5)
	stats, err = svc.PayableStats(ctx, saturday)
	require.NoError(t, err)
	assert.Equal(t, "2026-09-11", stats.CutoffDate)
}
