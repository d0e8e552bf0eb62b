package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/grupo-sgp/erp-api/internal/domain"
)

type TaxRateRepository struct {
	db *gorm.DB
}

func NewTaxRateRepository(db *gorm.DB) *TaxRateRepository {
	return &TaxRateRepository{db: db}
}

func (r *TaxRateRepository) Create(ctx context.Context, rate *domain.TaxRate) error {
	return r.db.WithContext(ctx).Create(rate).Error
}

func (r *TaxRateRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.TaxRate, error) {
	var rate domain.TaxRate
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rate).Error
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *TaxRateRepository) Update(ctx context.Context, rate *domain.TaxRate) error {
	return r.db.WithContext(ctx).Save(rate).Error
}

func (r *TaxRateRepository) List(ctx context.Context, includeInactive bool) ([]domain.TaxRate, error) {
	var rates []domain.TaxRate
	query := r.db.WithContext(ctx).Model(&domain.TaxRate{})
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("name ASC").Find(&rates).Error
	return rates, err
}
