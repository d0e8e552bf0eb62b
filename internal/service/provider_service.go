package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/grupo-sgp/erp-api/internal/domain"
	"github.com/grupo-sgp/erp-api/internal/repository"
)

// ProviderService manages the supplier catalog
type ProviderService struct {
	providers *repository.ProviderRepository
	logger    *zap.Logger
}

func NewProviderService(providers *repository.ProviderRepository, logger *zap.Logger) *ProviderService {
	return &ProviderService{providers: providers, logger: logger}
}

func (s *ProviderService) Create(ctx context.Context, req domain.ProviderRequest) (*domain.Provider, error) {
	provider := &domain.Provider{
		BusinessName: strings.TrimSpace(req.BusinessName),
		ContactName:  req.ContactName,
		Email:        req.Email,
		Phone:        req.Phone,
		CreditDays:   req.CreditDays,
		IsActive:     true,
	}
	if err := s.providers.Create(ctx, provider); err != nil {
		return nil, err
	}
	return provider, nil
}

func (s *ProviderService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Provider, error) {
	provider, err := s.providers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProviderNotFound
		}
		return nil, err
	}
	return provider, nil
}

func (s *ProviderService) List(ctx context.Context, includeInactive bool) ([]domain.Provider, error) {
	return s.providers.List(ctx, includeInactive)
}

func (s *ProviderService) Update(ctx context.Context, id uuid.UUID, req domain.ProviderRequest) (*domain.Provider, error) {
	provider, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	provider.BusinessName = strings.TrimSpace(req.BusinessName)
	provider.ContactName = req.ContactName
	provider.Email = req.Email
	provider.Phone = req.Phone
	provider.CreditDays = req.CreditDays
	if err := s.providers.Update(ctx, provider); err != nil {
		return nil, err
	}
	return provider, nil
}

// Delete deactivates a provider. Historical receptions and invoices keep
// pointing at it, so rows are never physically removed.
func (s *ProviderService) Delete(ctx context.Context, id uuid.UUID) error {
	provider, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	provider.IsActive = false
	return s.providers.Update(ctx, provider)
}
