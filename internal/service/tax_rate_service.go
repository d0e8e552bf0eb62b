package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/grupo-sgp/erp-api/internal/domain"
	"github.com/grupo-sgp/erp-api/internal/money"
	"github.com/grupo-sgp/erp-api/internal/repository"
)

// TaxRateService manages the configurable tax rate catalog
type TaxRateService struct {
	rates  *repository.TaxRateRepository
	logger *zap.Logger
}

func NewTaxRateService(rates *repository.TaxRateRepository, logger *zap.Logger) *TaxRateService {
	return &TaxRateService{rates: rates, logger: logger}
}

func (s *TaxRateService) Create(ctx context.Context, req domain.TaxRateRequest) (*domain.TaxRate, error) {
	rate := &domain.TaxRate{
		Name:     strings.TrimSpace(req.Name),
		Rate:     money.NormalizeRate(req.Rate),
		IsActive: true,
	}
	if err := s.rates.Create(ctx, rate); err != nil {
		return nil, err
	}
	return rate, nil
}

func (s *TaxRateService) GetByID(ctx context.Context, id uuid.UUID) (*domain.TaxRate, error) {
	rate, err := s.rates.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaxRateNotFound
		}
		return nil, err
	}
	return rate, nil
}

func (s *TaxRateService) List(ctx context.Context, includeInactive bool) ([]domain.TaxRate, error) {
	return s.rates.List(ctx, includeInactive)
}

func (s *TaxRateService) Update(ctx context.Context, id uuid.UUID, req domain.TaxRateRequest) (*domain.TaxRate, error) {
	rate, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rate.Name = strings.TrimSpace(req.Name)
	rate.Rate = money.NormalizeRate(req.Rate)
	if err := s.rates.Update(ctx, rate); err != nil {
		return nil, err
	}
	return rate, nil
}

// Toggle flips the active flag; existing orders keep their frozen tax amounts.
func (s *TaxRateService) Toggle(ctx context.Context, id uuid.UUID) (*domain.TaxRate, error) {
	rate, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rate.IsActive = !rate.IsActive
	if err := s.rates.Update(ctx, rate); err != nil {
		return nil, err
	}
	return rate, nil
}
