package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/grupo-sgp/erp-api/internal/domain"
)

// PurchaseInvoiceFilters represents filter options for listing invoices
type PurchaseInvoiceFilters struct {
	Status     *domain.InvoiceStatus
	ProviderID *uuid.UUID
}

type PurchaseInvoiceRepository struct {
	db *gorm.DB
}

func NewPurchaseInvoiceRepository(db *gorm.DB) *PurchaseInvoiceRepository {
	return &PurchaseInvoiceRepository{db: db}
}

func (r *PurchaseInvoiceRepository) Create(ctx context.Context, invoice *domain.PurchaseInvoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *PurchaseInvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PurchaseInvoice, error) {
	var invoice domain.PurchaseInvoice
	err := r.db.WithContext(ctx).Preload("Provider").Where("id = ?", id).First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *PurchaseInvoiceRepository) GetByReceptionID(ctx context.Context, receptionID uuid.UUID) (*domain.PurchaseInvoice, error) {
	var invoice domain.PurchaseInvoice
	err := r.db.WithContext(ctx).Where("reception_id = ?", receptionID).First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *PurchaseInvoiceRepository) Update(ctx context.Context, invoice *domain.PurchaseInvoice) error {
	return r.db.WithContext(ctx).Save(invoice).Error
}

func (r *PurchaseInvoiceRepository) List(ctx context.Context, page, pageSize int, filters PurchaseInvoiceFilters) ([]domain.PurchaseInvoice, int64, error) {
	var invoices []domain.PurchaseInvoice
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.PurchaseInvoice{}).Preload("Provider")

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.ProviderID != nil {
		query = query.Where("provider_id = ?", *filters.ProviderID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("due_date ASC").Find(&invoices).Error

	return invoices, total, err
}

// ListLive returns invoices still representing open debt with a positive
// balance, ordered by due date. Input for aging and payable reports.
func (r *PurchaseInvoiceRepository) ListLive(ctx context.Context) ([]domain.PurchaseInvoice, error) {
	var invoices []domain.PurchaseInvoice
	err := r.db.WithContext(ctx).
		Preload("Provider").
		Where("status NOT IN ?", []domain.InvoiceStatus{domain.InvoicePaid, domain.InvoiceCancelled}).
		Where("outstanding_balance > 0").
		Order("due_date ASC").
		Find(&invoices).Error
	return invoices, err
}
