package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/grupo-sgp/erp-api/internal/domain"
)

type GlobalConfigRepository struct {
	db *gorm.DB
}

func NewGlobalConfigRepository(db *gorm.DB) *GlobalConfigRepository {
	return &GlobalConfigRepository{db: db}
}

// GetOrCreate returns the singleton configuration row, creating it with
// defaults on first access.
func (r *GlobalConfigRepository) GetOrCreate(ctx context.Context) (*domain.GlobalConfig, error) {
	var cfg domain.GlobalConfig
	err := r.db.WithContext(ctx).Order("created_at ASC").First(&cfg).Error
	if err == nil {
		return &cfg, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cfg = domain.GlobalConfig{
		TargetProfitMargin:       0.30,
		CostTolerancePercent:     0.05,
		QuoteValidityDays:        15,
		DefaultEdgebandingFactor: 1.0,
	}
	if err := r.db.WithContext(ctx).Create(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *GlobalConfigRepository) Update(ctx context.Context, cfg *domain.GlobalConfig) error {
	return r.db.WithContext(ctx).Save(cfg).Error
}
