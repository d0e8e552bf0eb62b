package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/grupo-sgp/erp-api/internal/domain"
)

type SupplierPaymentRepository struct {
	db *gorm.DB
}

func NewSupplierPaymentRepository(db *gorm.DB) *SupplierPaymentRepository {
	return &SupplierPaymentRepository{db: db}
}

func (r *SupplierPaymentRepository) Create(ctx context.Context, payment *domain.SupplierPayment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *SupplierPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SupplierPayment, error) {
	var payment domain.SupplierPayment
	err := r.db.WithContext(ctx).
		Preload("Invoice").
		Preload("Invoice.Provider").
		Where("id = ?", id).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *SupplierPaymentRepository) Update(ctx context.Context, payment *domain.SupplierPayment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

func (r *SupplierPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.SupplierPayment{}, "id = ?", id).Error
}

// CommittedAmount sums the PENDING, APPROVED and PAID payments of an
// invoice, optionally excluding one payment (its own amount is freed when
// a pending request is edited).
func (r *SupplierPaymentRepository) CommittedAmount(ctx context.Context, invoiceID uuid.UUID, excludeID *uuid.UUID) (float64, error) {
	var total float64
	query := r.db.WithContext(ctx).Model(&domain.SupplierPayment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("invoice_id = ?", invoiceID).
		// Paid requests are already reflected in the invoice balance, so
		// only pending and approved ones still commit future money.
		Where("status IN ?", []domain.SupplierPaymentStatus{
			domain.SupplierPaymentPending,
			domain.SupplierPaymentApproved,
		})
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	err := query.Scan(&total).Error
	return total, err
}

// ListByStatus returns payments in a given status with invoice and provider
// preloaded, oldest first so approvals are worked in request order.
func (r *SupplierPaymentRepository) ListByStatus(ctx context.Context, status domain.SupplierPaymentStatus) ([]domain.SupplierPayment, error) {
	var payments []domain.SupplierPayment
	err := r.db.WithContext(ctx).
		Preload("Invoice").
		Preload("Invoice.Provider").
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&payments).Error
	return payments, err
}

func (r *SupplierPaymentRepository) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.SupplierPayment, error) {
	var payments []domain.SupplierPayment
	err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}

// Transaction runs fn inside a database transaction.
func (r *SupplierPaymentRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}
