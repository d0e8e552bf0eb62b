package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/grupo-sgp/erp-api/internal/domain"
)

type ProviderRepository struct {
	db *gorm.DB
}

func NewProviderRepository(db *gorm.DB) *ProviderRepository {
	return &ProviderRepository{db: db}
}

func (r *ProviderRepository) Create(ctx context.Context, provider *domain.Provider) error {
	return r.db.WithContext(ctx).Create(provider).Error
}

func (r *ProviderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Provider, error) {
	var provider domain.Provider
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&provider).Error
	if err != nil {
		return nil, err
	}
	return &provider, nil
}

// GetByBusinessName does a case-insensitive exact match, used by the CSV
// importer to resolve provider references by name.
func (r *ProviderRepository) GetByBusinessName(ctx context.Context, name string) (*domain.Provider, error) {
	var provider domain.Provider
	err := r.db.WithContext(ctx).
		Where("LOWER(business_name) = ?", strings.ToLower(strings.TrimSpace(name))).
		First(&provider).Error
	if err != nil {
		return nil, err
	}
	return &provider, nil
}

func (r *ProviderRepository) Update(ctx context.Context, provider *domain.Provider) error {
	return r.db.WithContext(ctx).Save(provider).Error
}

func (r *ProviderRepository) List(ctx context.Context, includeInactive bool) ([]domain.Provider, error) {
	var providers []domain.Provider
	query := r.db.WithContext(ctx).Model(&domain.Provider{})
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("business_name ASC").Find(&providers).Error
	return providers, err
}
