package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/grupo-sgp/erp-api/internal/domain"
	"github.com/grupo-sgp/erp-api/internal/repository"
	"github.com/grupo-sgp/erp-api/internal/storage"
)

// ConfigService manages the single row of business-wide settings
type ConfigService struct {
	configs *repository.GlobalConfigRepository
	files   storage.Storage
	logger  *zap.Logger
}

func NewConfigService(configs *repository.GlobalConfigRepository, files storage.Storage, logger *zap.Logger) *ConfigService {
	return &ConfigService{configs: configs, files: files, logger: logger}
}

func (s *ConfigService) Get(ctx context.Context) (*domain.GlobalConfig, error) {
	return s.configs.GetOrCreate(ctx)
}

func (s *ConfigService) Update(ctx context.Context, req domain.GlobalConfigUpdateRequest) (*domain.GlobalConfig, error) {
	cfg, err := s.configs.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	if req.TargetProfitMargin != nil {
		cfg.TargetProfitMargin = *req.TargetProfitMargin
	}
	if req.CostTolerancePercent != nil {
		cfg.CostTolerancePercent = *req.CostTolerancePercent
	}
	if req.QuoteValidityDays != nil {
		cfg.QuoteValidityDays = *req.QuoteValidityDays
	}
	if req.DefaultEdgebandingFactor != nil {
		cfg.DefaultEdgebandingFactor = *req.DefaultEdgebandingFactor
	}
	if req.AnnualSalesTarget != nil {
		cfg.AnnualSalesTarget = *req.AnnualSalesTarget
	}
	// A nil (or empty) logoPath in a settings update must not wipe a logo
	// that was uploaded through its own endpoint.
	if req.LogoPath != nil && *req.LogoPath != "" {
		cfg.LogoPath = *req.LogoPath
	}

	if err := s.configs.Update(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UploadLogo stores the company logo and records its path.
func (s *ConfigService) UploadLogo(ctx context.Context, filename string, content io.Reader) (*domain.GlobalConfig, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".svg", ".webp":
	default:
		return nil, fmt.Errorf("%w: unsupported logo format %q", ErrInvalidInput, ext)
	}

	cfg, err := s.configs.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("branding/logo-%s%s", uuid.New().String()[:8], ext)
	path, err := s.files.Save(ctx, key, content)
	if err != nil {
		return nil, err
	}

	if cfg.LogoPath != "" && cfg.LogoPath != path {
		if err := s.files.Delete(ctx, cfg.LogoPath); err != nil {
			s.logger.Warn("could not remove previous logo", zap.String("path", cfg.LogoPath), zap.Error(err))
		}
	}

	cfg.LogoPath = path
	if err := s.configs.Update(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
