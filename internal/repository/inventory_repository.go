package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/grupo-sgp/erp-api/internal/domain"
)

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) GetReceptionByID(ctx context.Context, id uuid.UUID) (*domain.InventoryReception, error) {
	var reception domain.InventoryReception
	err := r.db.WithContext(ctx).
		Preload("Provider").
		Preload("Transactions").
		Preload("Transactions.Material").
		Where("id = ?", id).
		First(&reception).Error
	if err != nil {
		return nil, err
	}
	return &reception, nil
}

func (r *InventoryRepository) GetReceptionByFolio(ctx context.Context, folio string) (*domain.InventoryReception, error) {
	var reception domain.InventoryReception
	err := r.db.WithContext(ctx).Where("folio = ?", folio).First(&reception).Error
	if err != nil {
		return nil, err
	}
	return &reception, nil
}

func (r *InventoryRepository) ListReceptions(ctx context.Context, page, pageSize int, providerID *uuid.UUID) ([]domain.InventoryReception, int64, error) {
	var receptions []domain.InventoryReception
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.InventoryReception{}).
		Preload("Provider").
		Preload("Transactions")

	if providerID != nil {
		query = query.Where("provider_id = ?", *providerID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&receptions).Error

	return receptions, total, err
}

// LatestEntryForMaterial returns the most recent remaining ENTRY transaction
// for a material, excluding a given reception. Used to restore the running
// cost after a cancellation.
func (r *InventoryRepository) LatestEntryForMaterial(ctx context.Context, materialID, excludeReceptionID uuid.UUID) (*domain.InventoryTransaction, error) {
	var txn domain.InventoryTransaction
	err := r.db.WithContext(ctx).
		Where("material_id = ? AND transaction_type = ? AND reception_id <> ?",
			materialID, domain.TransactionEntry, excludeReceptionID).
		Order("created_at DESC").
		First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// Transaction runs fn inside a database transaction.
func (r *InventoryRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}
