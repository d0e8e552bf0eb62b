package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/grupo-sgp/erp-api/internal/domain"
)

// ProductMasterFilters represents filter options for listing product masters
type ProductMasterFilters struct {
	ClientID *uuid.UUID
	Category string
	// OnlyReady restricts the listing to masters that have at least one
	// READY version. Applied automatically for sales-role users.
	OnlyReady bool
}

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) CreateMaster(ctx context.Context, master *domain.ProductMaster) error {
	return r.db.WithContext(ctx).Create(master).Error
}

func (r *ProductRepository) GetMasterByID(ctx context.Context, id uuid.UUID) (*domain.ProductMaster, error) {
	var master domain.ProductMaster
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Versions").
		Preload("Versions.Components").
		Preload("Versions.Components.Material").
		Where("id = ?", id).
		First(&master).Error
	if err != nil {
		return nil, err
	}
	return &master, nil
}

func (r *ProductRepository) UpdateMaster(ctx context.Context, master *domain.ProductMaster) error {
	return r.db.WithContext(ctx).Save(master).Error
}

// DeleteMasterCascade removes a master along with its versions and components.
func (r *ProductRepository) DeleteMasterCascade(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var versionIDs []uuid.UUID
		if err := tx.Model(&domain.ProductVersion{}).
			Where("master_id = ?", id).
			Pluck("id", &versionIDs).Error; err != nil {
			return err
		}
		if len(versionIDs) > 0 {
			if err := tx.Delete(&domain.VersionComponent{}, "version_id IN ?", versionIDs).Error; err != nil {
				return err
			}
			if err := tx.Delete(&domain.ProductVersion{}, "id IN ?", versionIDs).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&domain.ProductMaster{}, "id = ?", id).Error
	})
}

func (r *ProductRepository) ListMasters(ctx context.Context, filters ProductMasterFilters) ([]domain.ProductMaster, error) {
	var masters []domain.ProductMaster

	query := r.db.WithContext(ctx).Model(&domain.ProductMaster{}).
		Preload("Versions").
		Where("product_masters.is_active = ?", true)

	if filters.ClientID != nil {
		query = query.Where("product_masters.client_id = ?", *filters.ClientID)
	}
	if filters.Category != "" {
		query = query.Where("product_masters.category = ?", filters.Category)
	}
	if filters.OnlyReady {
		query = query.
			Joins("JOIN product_versions ON product_versions.master_id = product_masters.id").
			Where("product_versions.status = ?", domain.VersionReady).
			Distinct("product_masters.*")
	}

	err := query.Order("product_masters.name ASC").Find(&masters).Error
	return masters, err
}

// RenameCategory updates every master in a category, returning the count.
func (r *ProductRepository) RenameCategory(ctx context.Context, oldName, newName string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.ProductMaster{}).
		Where("category = ?", oldName).
		Update("category", newName)
	return result.RowsAffected, result.Error
}

func (r *ProductRepository) CreateVersion(ctx context.Context, version *domain.ProductVersion) error {
	return r.db.WithContext(ctx).Create(version).Error
}

func (r *ProductRepository) GetVersionByID(ctx context.Context, id uuid.UUID) (*domain.ProductVersion, error) {
	var version domain.ProductVersion
	err := r.db.WithContext(ctx).
		Preload("Components").
		Preload("Components.Material").
		Where("id = ?", id).
		First(&version).Error
	if err != nil {
		return nil, err
	}
	return &version, nil
}

// UpdateVersion persists the version row itself. Associations are skipped
// so a stale preloaded Components slice cannot resurrect rows that
// ReplaceComponents has already swapped out.
func (r *ProductRepository) UpdateVersion(ctx context.Context, version *domain.ProductVersion) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(version).Error
}

// ReplaceComponents swaps the full component list of a version in one
// transaction. Recipe updates always send the complete list.
func (r *ProductRepository) ReplaceComponents(ctx context.Context, versionID uuid.UUID, components []domain.VersionComponent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.VersionComponent{}, "version_id = ?", versionID).Error; err != nil {
			return err
		}
		if len(components) == 0 {
			return nil
		}
		for i := range components {
			components[i].VersionID = versionID
		}
		return tx.Create(&components).Error
	})
}
