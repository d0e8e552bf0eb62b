package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/grupo-sgp/erp-api/internal/auth"
	"github.com/grupo-sgp/erp-api/internal/domain"
	"github.com/grupo-sgp/erp-api/internal/money"
	"github.com/grupo-sgp/erp-api/internal/repository"
	"github.com/grupo-sgp/erp-api/internal/storage"
)

// DesignService manages product masters and their costed recipe versions
type DesignService struct {
	products  *repository.ProductRepository
	materials *repository.MaterialRepository
	files     storage.Storage
	logger    *zap.Logger
}

func NewDesignService(products *repository.ProductRepository, materials *repository.MaterialRepository, files storage.Storage, logger *zap.Logger) *DesignService {
	return &DesignService{products: products, materials: materials, files: files, logger: logger}
}

func (s *DesignService) CreateMaster(ctx context.Context, req domain.ProductMasterRequest) (*domain.ProductMaster, error) {
	master := &domain.ProductMaster{
		Name:        strings.TrimSpace(req.Name),
		Category:    strings.TrimSpace(req.Category),
		Description: req.Description,
		ClientID:    req.ClientID,
		IsActive:    true,
	}
	if err := s.products.CreateMaster(ctx, master); err != nil {
		return nil, err
	}
	return master, nil
}

func (s *DesignService) GetMaster(ctx context.Context, id uuid.UUID) (*domain.ProductMaster, error) {
	master, err := s.products.GetMasterByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMasterNotFound
		}
		return nil, err
	}
	return master, nil
}

// ListMasters filters the catalog by the caller's role: the sales area only
// sees families that have at least one READY version to quote from.
func (s *DesignService) ListMasters(ctx context.Context, user auth.UserContext, filters repository.ProductMasterFilters) ([]domain.ProductMaster, error) {
	if user.Role == domain.RoleSales {
		filters.OnlyReady = true
	}
	return s.products.ListMasters(ctx, filters)
}

func (s *DesignService) UpdateMaster(ctx context.Context, id uuid.UUID, req domain.ProductMasterRequest) (*domain.ProductMaster, error) {
	master, err := s.GetMaster(ctx, id)
	if err != nil {
		return nil, err
	}
	master.Name = strings.TrimSpace(req.Name)
	master.Category = strings.TrimSpace(req.Category)
	master.Description = req.Description
	master.ClientID = req.ClientID
	if err := s.products.UpdateMaster(ctx, master); err != nil {
		return nil, err
	}
	return master, nil
}

// DeleteMaster removes the family with all versions and components, plus the
// stored blueprint file if one exists.
func (s *DesignService) DeleteMaster(ctx context.Context, id uuid.UUID) error {
	master, err := s.GetMaster(ctx, id)
	if err != nil {
		return err
	}
	if err := s.products.DeleteMasterCascade(ctx, id); err != nil {
		return err
	}
	if master.BlueprintPath != "" {
		if err := s.files.Delete(ctx, master.BlueprintPath); err != nil {
			s.logger.Warn("could not remove blueprint file",
				zap.String("path", master.BlueprintPath), zap.Error(err))
		}
	}
	return nil
}

// UploadBlueprint stores a drawing for the family, replacing any previous one.
func (s *DesignService) UploadBlueprint(ctx context.Context, id uuid.UUID, filename string, content io.Reader) (*domain.ProductMaster, error) {
	master, err := s.GetMaster(ctx, id)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	key := fmt.Sprintf("blueprints/%s/%s%s", master.ID, uuid.New().String()[:8], ext)
	path, err := s.files.Save(ctx, key, content)
	if err != nil {
		return nil, err
	}

	if master.BlueprintPath != "" && master.BlueprintPath != path {
		if err := s.files.Delete(ctx, master.BlueprintPath); err != nil {
			s.logger.Warn("could not remove previous blueprint",
				zap.String("path", master.BlueprintPath), zap.Error(err))
		}
	}

	master.BlueprintPath = path
	if err := s.products.UpdateMaster(ctx, master); err != nil {
		return nil, err
	}
	return master, nil
}

// OpenBlueprint returns the stored drawing of a family.
func (s *DesignService) OpenBlueprint(ctx context.Context, id uuid.UUID) (io.ReadCloser, string, error) {
	master, err := s.GetMaster(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if master.BlueprintPath == "" {
		return nil, "", ErrMasterNotFound
	}
	rc, err := s.files.Open(ctx, master.BlueprintPath)
	if err != nil {
		return nil, "", err
	}
	return rc, filepath.Base(master.BlueprintPath), nil
}

// RenameCategory renames a category across every family that uses it and
// returns how many were touched.
func (s *DesignService) RenameCategory(ctx context.Context, req domain.CategoryRenameRequest) (int64, error) {
	return s.products.RenameCategory(ctx, strings.TrimSpace(req.OldName), strings.TrimSpace(req.NewName))
}

func (s *DesignService) CreateVersion(ctx context.Context, req domain.ProductVersionRequest) (*domain.ProductVersion, error) {
	if _, err := s.GetMaster(ctx, req.MasterID); err != nil {
		return nil, err
	}

	status := domain.VersionStatus(req.Status)
	if status == "" {
		status = domain.VersionDraft
	}

	components, estimated, err := s.buildComponents(ctx, req.Components)
	if err != nil {
		return nil, err
	}

	version := &domain.ProductVersion{
		MasterID:      req.MasterID,
		VersionName:   strings.TrimSpace(req.VersionName),
		Status:        status,
		EstimatedCost: estimated,
		IsActive:      true,
	}
	if err := s.products.CreateVersion(ctx, version); err != nil {
		return nil, err
	}
	if len(components) > 0 {
		if err := s.products.ReplaceComponents(ctx, version.ID, components); err != nil {
			return nil, err
		}
	}
	return s.GetVersion(ctx, version.ID)
}

func (s *DesignService) GetVersion(ctx context.Context, id uuid.UUID) (*domain.ProductVersion, error) {
	version, err := s.products.GetVersionByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVersionNotFound
		}
		return nil, err
	}
	return version, nil
}

// UpdateVersion replaces the recipe and reprices it against current material
// costs. Frozen snapshots on existing orders are unaffected.
func (s *DesignService) UpdateVersion(ctx context.Context, id uuid.UUID, req domain.ProductVersionRequest) (*domain.ProductVersion, error) {
	version, err := s.GetVersion(ctx, id)
	if err != nil {
		return nil, err
	}

	components, estimated, err := s.buildComponents(ctx, req.Components)
	if err != nil {
		return nil, err
	}

	if req.VersionName != "" {
		version.VersionName = strings.TrimSpace(req.VersionName)
	}
	if req.Status != "" {
		version.Status = domain.VersionStatus(req.Status)
	}
	version.EstimatedCost = estimated

	if err := s.products.ReplaceComponents(ctx, version.ID, components); err != nil {
		return nil, err
	}
	if err := s.products.UpdateVersion(ctx, version); err != nil {
		return nil, err
	}
	return s.GetVersion(ctx, version.ID)
}

// SetVersionStatus moves a recipe through DRAFT → READY → OBSOLETE.
func (s *DesignService) SetVersionStatus(ctx context.Context, id uuid.UUID, req domain.VersionStatusRequest) (*domain.ProductVersion, error) {
	version, err := s.GetVersion(ctx, id)
	if err != nil {
		return nil, err
	}
	version.Status = domain.VersionStatus(req.Status)
	if err := s.products.UpdateVersion(ctx, version); err != nil {
		return nil, err
	}
	return version, nil
}

// buildComponents validates recipe lines and prices them at current material
// costs. Lines with zero or negative quantities are dropped rather than
// rejected so spreadsheet-style editing stays forgiving.
func (s *DesignService) buildComponents(ctx context.Context, inputs []domain.ComponentInput) ([]domain.VersionComponent, float64, error) {
	components := make([]domain.VersionComponent, 0, len(inputs))
	total := 0.0
	for _, in := range inputs {
		if in.Quantity <= 0 {
			continue
		}
		material, err := s.materials.GetByID(ctx, in.MaterialID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, 0, fmt.Errorf("%w: %s", ErrMaterialNotFound, in.MaterialID)
			}
			return nil, 0, err
		}
		components = append(components, domain.VersionComponent{
			MaterialID: material.ID,
			Quantity:   in.Quantity,
		})
		total += money.LineCost(in.Quantity, material.CurrentCost)
	}
	return components, money.RoundCents(total), nil
}
