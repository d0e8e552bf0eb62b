package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/grupo-sgp/erp-api/internal/auth"
	"github.com/grupo-sgp/erp-api/internal/domain"
	"github.com/grupo-sgp/erp-api/internal/mapper"
	"github.com/grupo-sgp/erp-api/internal/money"
	"github.com/grupo-sgp/erp-api/internal/repository"
)

// FinanceService runs the accounts-payable workflow: payment requests,
// approval, execution against treasury, and the payable reports.
type FinanceService struct {
	invoices *repository.PurchaseInvoiceRepository
	payments *repository.SupplierPaymentRepository
	logger   *zap.Logger
}

func NewFinanceService(
	invoices *repository.PurchaseInvoiceRepository,
	payments *repository.SupplierPaymentRepository,
	logger *zap.Logger,
) *FinanceService {
	return &FinanceService{invoices: invoices, payments: payments, logger: logger}
}

func (s *FinanceService) GetInvoice(ctx context.Context, id uuid.UUID) (*domain.PurchaseInvoice, error) {
	invoice, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	return invoice, nil
}

func (s *FinanceService) ListInvoices(ctx context.Context, page, pageSize int, filters repository.PurchaseInvoiceFilters) ([]domain.PurchaseInvoice, int64, error) {
	return s.invoices.List(ctx, page, pageSize, filters)
}

// RequestPayment opens a payment request against an invoice. The request is
// refused when the sum of live requests would exceed the remaining debt by
// more than a cent.
func (s *FinanceService) RequestPayment(ctx context.Context, user auth.UserContext, req domain.SupplierPaymentRequest) (*domain.SupplierPayment, error) {
	invoice, err := s.GetInvoice(ctx, req.InvoiceID)
	if err != nil {
		return nil, err
	}
	if !invoice.Status.IsLive() {
		return nil, ErrInvoicePaid
	}

	if err := s.checkCommitment(ctx, invoice, req.Amount, nil); err != nil {
		return nil, err
	}

	method := domain.PaymentMethod(req.PaymentMethod)
	if method == "" {
		method = domain.MethodTransferencia
	}

	requestedBy := user.UserID
	payment := &domain.SupplierPayment{
		InvoiceID:          invoice.ID,
		RequestedBy:        &requestedBy,
		Amount:             money.RoundCents(req.Amount),
		Status:             domain.SupplierPaymentPending,
		PaymentMethod:      method,
		SuggestedAccountID: req.SuggestedAccountID,
		ScheduledDate:      req.ScheduledDate,
		Notes:              req.Notes,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	s.logger.Info("payment requested",
		zap.String("paymentId", payment.ID.String()),
		zap.String("invoiceId", invoice.ID.String()),
		zap.Float64("amount", payment.Amount))
	return s.GetPayment(ctx, payment.ID)
}

func (s *FinanceService) GetPayment(ctx context.Context, id uuid.UUID) (*domain.SupplierPayment, error) {
	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

func (s *FinanceService) ListPayments(ctx context.Context, status domain.SupplierPaymentStatus) ([]domain.SupplierPayment, error) {
	return s.payments.ListByStatus(ctx, status)
}

func (s *FinanceService) ListPaymentsByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.SupplierPayment, error) {
	return s.payments.ListByInvoice(ctx, invoiceID)
}

// UpdatePayment edits a request that has not yet been reviewed. The
// over-commitment check frees the request's own current amount first.
func (s *FinanceService) UpdatePayment(ctx context.Context, id uuid.UUID, req domain.SupplierPaymentUpdateRequest) (*domain.SupplierPayment, error) {
	payment, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.Status != domain.SupplierPaymentPending {
		return nil, ErrPaymentNotPending
	}

	if req.Amount != nil {
		invoice, err := s.GetInvoice(ctx, payment.InvoiceID)
		if err != nil {
			return nil, err
		}
		if err := s.checkCommitment(ctx, invoice, *req.Amount, &payment.ID); err != nil {
			return nil, err
		}
		payment.Amount = money.RoundCents(*req.Amount)
	}
	if req.PaymentMethod != nil {
		payment.PaymentMethod = domain.PaymentMethod(*req.PaymentMethod)
	}
	if req.SuggestedAccountID != nil {
		payment.SuggestedAccountID = req.SuggestedAccountID
	}
	if req.ScheduledDate != nil {
		payment.ScheduledDate = req.ScheduledDate
	}
	if req.Notes != nil {
		payment.Notes = *req.Notes
	}

	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// DeletePayment removes a request that never moved money.
func (s *FinanceService) DeletePayment(ctx context.Context, id uuid.UUID) error {
	payment, err := s.GetPayment(ctx, id)
	if err != nil {
		return err
	}
	if payment.Status != domain.SupplierPaymentPending && payment.Status != domain.SupplierPaymentRejected {
		return ErrPaymentNotPending
	}
	return s.payments.Delete(ctx, id)
}

// ApprovePayment authorizes a pending request and fixes the paying account.
func (s *FinanceService) ApprovePayment(ctx context.Context, user auth.UserContext, id uuid.UUID, req domain.PaymentApprovalRequest) (*domain.SupplierPayment, error) {
	if !user.IsPrivileged() {
		return nil, ErrPermissionDenied
	}
	payment, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.Status != domain.SupplierPaymentPending {
		return nil, ErrPaymentNotPending
	}

	approvedBy := user.UserID
	payment.Status = domain.SupplierPaymentApproved
	payment.ApprovedAccountID = &req.AccountID
	payment.ApprovedBy = &approvedBy

	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// RejectPayment declines a pending request. Its amount stops counting
// against the invoice's remaining debt.
func (s *FinanceService) RejectPayment(ctx context.Context, user auth.UserContext, id uuid.UUID) (*domain.SupplierPayment, error) {
	if !user.IsPrivileged() {
		return nil, ErrPermissionDenied
	}
	payment, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.Status != domain.SupplierPaymentPending {
		return nil, ErrPaymentNotPending
	}

	payment.Status = domain.SupplierPaymentRejected
	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// RevokeApproval sends an approved but unexecuted payment back to PENDING.
func (s *FinanceService) RevokeApproval(ctx context.Context, user auth.UserContext, id uuid.UUID) (*domain.SupplierPayment, error) {
	if !user.IsPrivileged() {
		return nil, ErrPermissionDenied
	}
	payment, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.Status != domain.SupplierPaymentApproved {
		return nil, ErrPaymentNotApproved
	}

	payment.Status = domain.SupplierPaymentPending
	payment.ApprovedAccountID = nil
	payment.ApprovedBy = nil
	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// ExecutePayment moves the money: it debits the approved account, records
// the treasury movement, pays down the invoice and closes the request, all
// in one transaction.
func (s *FinanceService) ExecutePayment(ctx context.Context, user auth.UserContext, id uuid.UUID) (*domain.SupplierPayment, error) {
	payment, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.Status != domain.SupplierPaymentApproved {
		return nil, ErrPaymentNotApproved
	}
	if payment.ApprovedAccountID == nil {
		return nil, ErrAccountNotFound
	}

	err = s.payments.Transaction(ctx, func(tx *gorm.DB) error {
		var account domain.BankAccount
		if err := tx.Where("id = ?", *payment.ApprovedAccountID).First(&account).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAccountNotFound
			}
			return err
		}
		if account.CurrentBalance+money.Epsilon < payment.Amount {
			return ErrInsufficientFunds
		}

		var invoice domain.PurchaseInvoice
		if err := tx.Where("id = ?", payment.InvoiceID).First(&invoice).Error; err != nil {
			return err
		}

		concept := fmt.Sprintf("Pago factura %s", invoice.Folio)
		if payment.Invoice != nil && payment.Invoice.Provider != nil {
			concept = fmt.Sprintf("Pago factura %s - %s", invoice.Folio, payment.Invoice.Provider.BusinessName)
		}
		movement := domain.BankTransaction{
			AccountID:         account.ID,
			TransactionType:   domain.BankTxOut,
			Amount:            payment.Amount,
			Concept:           concept,
			TransactionDate:   time.Now().UTC(),
			RelatedEntityType: "supplier_payment",
			RelatedEntityID:   &payment.ID,
		}
		if err := tx.Create(&movement).Error; err != nil {
			return err
		}

		account.CurrentBalance = money.RoundCents(account.CurrentBalance - payment.Amount)
		if err := tx.Save(&account).Error; err != nil {
			return err
		}

		balance := money.RoundCents(invoice.OutstandingBalance - payment.Amount)
		if balance < 0 {
			balance = 0
		}
		invoice.OutstandingBalance = balance
		if money.IsSettled(balance) {
			invoice.OutstandingBalance = 0
			invoice.Status = domain.InvoicePaid
		} else {
			invoice.Status = domain.InvoicePartial
		}
		if err := tx.Save(&invoice).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		payment.Status = domain.SupplierPaymentPaid
		payment.ExecutedAt = &now
		payment.TreasuryTransactionID = &movement.ID
		return tx.Save(payment).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment executed",
		zap.String("paymentId", payment.ID.String()),
		zap.Float64("amount", payment.Amount))
	return s.GetPayment(ctx, payment.ID)
}

// checkCommitment enforces that live requests never promise more than the
// invoice still owes, within a one-cent tolerance.
func (s *FinanceService) checkCommitment(ctx context.Context, invoice *domain.PurchaseInvoice, amount float64, excludeID *uuid.UUID) error {
	committed, err := s.payments.CommittedAmount(ctx, invoice.ID, excludeID)
	if err != nil {
		return err
	}
	if committed+amount > invoice.OutstandingBalance+money.Epsilon {
		return ErrOverCommitted
	}
	return nil
}

// AgingReport classifies open invoices by how many days past due they are.
// Running it twice on the same day yields identical buckets.
func (s *FinanceService) AgingReport(ctx context.Context, asOf time.Time) (*domain.AgingReportDTO, error) {
	invoices, err := s.invoices.ListLive(ctx)
	if err != nil {
		return nil, err
	}

	day := asOf.UTC().Truncate(24 * time.Hour)
	report := &domain.AgingReportDTO{
		AsOf:    day.Format("2006-01-02"),
		Current: domain.AgingBucketDTO{Label: "current"},
		Buckets: []domain.AgingBucketDTO{
			{Label: "1-30"},
			{Label: "31-60"},
			{Label: "61-90"},
			{Label: ">90"},
		},
	}

	for i := range invoices {
		inv := &invoices[i]
		due := inv.DueDate.UTC().Truncate(24 * time.Hour)
		daysPast := int(day.Sub(due).Hours() / 24)

		var bucket *domain.AgingBucketDTO
		switch {
		case daysPast <= 0:
			bucket = &report.Current
		case daysPast <= 30:
			bucket = &report.Buckets[0]
		case daysPast <= 60:
			bucket = &report.Buckets[1]
		case daysPast <= 90:
			bucket = &report.Buckets[2]
		default:
			bucket = &report.Buckets[3]
		}

		bucket.Count++
		bucket.Total = money.RoundCents(bucket.Total + inv.OutstandingBalance)
		bucket.Items = append(bucket.Items, mapper.ToPurchaseInvoiceDTO(inv))

		report.TotalCount++
		report.TotalDebt = money.RoundCents(report.TotalDebt + inv.OutstandingBalance)
	}
	return report, nil
}

// PayableStats buckets open debt around the weekly payment run. Payments go
// out on Fridays; the next period closes fifteen days after the cutoff.
func (s *FinanceService) PayableStats(ctx context.Context, today time.Time) (*domain.PayableStatsDTO, error) {
	invoices, err := s.invoices.ListLive(ctx)
	if err != nil {
		return nil, err
	}

	day := today.UTC().Truncate(24 * time.Hour)
	daysToFriday := 4 - ((int(day.Weekday()) + 6) % 7)
	if daysToFriday < 0 {
		daysToFriday += 7
	}
	cutoff := day.AddDate(0, 0, daysToFriday)
	nextPeriodEnd := cutoff.AddDate(0, 0, 15)

	stats := &domain.PayableStatsDTO{
		CutoffDate:    cutoff.Format("2006-01-02"),
		NextPeriodEnd: nextPeriodEnd.Format("2006-01-02"),
	}

	for i := range invoices {
		inv := &invoices[i]
		due := inv.DueDate.UTC().Truncate(24 * time.Hour)

		switch {
		case due.Before(day):
			stats.OverdueTotal = money.RoundCents(stats.OverdueTotal + inv.OutstandingBalance)
			stats.OverdueCount++
		case !due.After(cutoff):
			stats.DueThisWeek = money.RoundCents(stats.DueThisWeek + inv.OutstandingBalance)
			stats.DueCount++
		case !due.After(nextPeriodEnd):
			stats.NextPeriod = money.RoundCents(stats.NextPeriod + inv.OutstandingBalance)
			stats.NextCount++
		default:
			stats.Future = money.RoundCents(stats.Future + inv.OutstandingBalance)
			stats.FutureCount++
		}

		stats.TotalOpenDebt = money.RoundCents(stats.TotalOpenDebt + inv.OutstandingBalance)
		stats.TotalOpenCount++
	}
	return stats, nil
}
