package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/grupo-sgp/erp-api/internal/domain"
)

// MaterialFilters represents the filter options for listing materials
type MaterialFilters struct {
	Category        string
	ProductionRoute *domain.ProductionRoute
	ProviderID      *uuid.UUID
	Search          string
	IncludeInactive bool
}

type MaterialRepository struct {
	db *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

func (r *MaterialRepository) Create(ctx context.Context, material *domain.Material) error {
	return r.db.WithContext(ctx).Create(material).Error
}

func (r *MaterialRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Material, error) {
	var material domain.Material
	err := r.db.WithContext(ctx).Preload("Provider").Where("id = ?", id).First(&material).Error
	if err != nil {
		return nil, err
	}
	return &material, nil
}

// GetBySKU matches case-insensitively; SKUs are normalized to upper case on
// create but rows imported or seeded elsewhere may not be.
func (r *MaterialRepository) GetBySKU(ctx context.Context, sku string) (*domain.Material, error) {
	var material domain.Material
	err := r.db.WithContext(ctx).Where("UPPER(sku) = UPPER(?)", strings.TrimSpace(sku)).First(&material).Error
	if err != nil {
		return nil, err
	}
	return &material, nil
}

func (r *MaterialRepository) Update(ctx context.Context, material *domain.Material) error {
	return r.db.WithContext(ctx).Save(material).Error
}

func (r *MaterialRepository) List(ctx context.Context, page, pageSize int, filters MaterialFilters) ([]domain.Material, int64, error) {
	var materials []domain.Material
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Material{}).Preload("Provider")

	if !filters.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.ProductionRoute != nil {
		query = query.Where("production_route = ?", *filters.ProductionRoute)
	}
	if filters.ProviderID != nil {
		query = query.Where("provider_id = ?", *filters.ProviderID)
	}
	if filters.Search != "" {
		pattern := "%" + strings.ToLower(filters.Search) + "%"
		query = query.Where("LOWER(sku) LIKE ? OR LOWER(name) LIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("sku ASC").Find(&materials).Error

	return materials, total, err
}

// Categories returns the distinct material categories in use
func (r *MaterialRepository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).Model(&domain.Material{}).
		Where("category <> ''").
		Distinct().
		Order("category ASC").
		Pluck("category", &categories).Error
	return categories, err
}
