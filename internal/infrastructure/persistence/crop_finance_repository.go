package persistence

import (
	"context"
	"strings"

	"github.com/farmledger/backend/internal/domain/ledger"
	"github.com/farmledger/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCropFinanceRepository implements ledger.CropFinanceRepository using GORM
type GormCropFinanceRepository struct {
	db *gorm.DB
}

// NewGormCropFinanceRepository creates a new GormCropFinanceRepository
func NewGormCropFinanceRepository(db *gorm.DB) *GormCropFinanceRepository {
	return &GormCropFinanceRepository{db: db}
}

// FindByIDForOwner finds a crop record of the owner
func (r *GormCropFinanceRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*ledger.CropFinance, error) {
	var model models.CropFinanceModel
	if err := r.db.WithContext(ctx).
		Scopes(OwnerScope(ownerID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFound(err, "crop finance", id)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a crop record of the owner and locks its row
func (r *GormCropFinanceRepository) FindByIDForUpdate(ctx context.Context, ownerID, id uuid.UUID) (*ledger.CropFinance, error) {
	var model models.CropFinanceModel
	if err := r.db.WithContext(ctx).
		Scopes(ForUpdate, OwnerScope(ownerID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFound(err, "crop finance", id)
	}
	return model.ToDomain(), nil
}

// FindAllForOwner lists the owner's crop records.
// Season and crop filters match case-insensitively as substrings.
func (r *GormCropFinanceRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter ledger.CropFilter) ([]ledger.CropFinance, error) {
	query := r.db.WithContext(ctx).Model(&models.CropFinanceModel{}).Scopes(OwnerScope(ownerID))
	if filter.Year != nil {
		query = query.Where("year = ?", *filter.Year)
	}
	if season := strings.TrimSpace(filter.Season); season != "" {
		query = query.Where(`LOWER(season) LIKE ? ESCAPE '\'`, containsPattern(season))
	}
	if crop := strings.TrimSpace(filter.Crop); crop != "" {
		query = query.Where(`LOWER(crop_name) LIKE ? ESCAPE '\'`, containsPattern(crop))
	}
	query = applyListFilter(query, filter.Filter, CropSortFields, "year")

	var cropModels []models.CropFinanceModel
	if err := query.Find(&cropModels).Error; err != nil {
		return nil, err
	}
	crops := make([]ledger.CropFinance, len(cropModels))
	for i := range cropModels {
		crops[i] = *cropModels[i].ToDomain()
	}
	return crops, nil
}

// containsPattern builds a lower-cased LIKE pattern with % and _ escaped
func containsPattern(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}

// ExistsByKey checks the (owner, crop, season, year) key, ignoring excludeID
func (r *GormCropFinanceRepository) ExistsByKey(ctx context.Context, ownerID uuid.UUID, cropName, season string, year int, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.CropFinanceModel{}).
		Scopes(OwnerScope(ownerID)).
		Where("crop_name = ? AND season = ? AND year = ?", cropName, season, year)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save inserts a new crop record
func (r *GormCropFinanceRepository) Save(ctx context.Context, crop *ledger.CropFinance) error {
	return r.db.WithContext(ctx).Create(models.CropFinanceModelFromDomain(crop)).Error
}

// SaveWithLock updates the crop record with an optimistic version check
func (r *GormCropFinanceRepository) SaveWithLock(ctx context.Context, crop *ledger.CropFinance) error {
	return updateWithVersion(ctx, r.db, &models.CropFinanceModel{}, crop.ID, crop.Version, map[string]any{
		"crop_name":       crop.CropName,
		"season":          crop.Season,
		"year":            crop.Year,
		"seed_cost":       crop.Costs.Seed,
		"fertilizer_cost": crop.Costs.Fertilizer,
		"pesticide_cost":  crop.Costs.Pesticide,
		"labor_cost":      crop.Costs.Labor,
		"irrigation_cost": crop.Costs.Irrigation,
		"equipment_cost":  crop.Costs.Equipment,
		"other_costs":     crop.Costs.Other,
		"total_revenue":   crop.TotalRevenue,
		"area_acres":      crop.AreaAcres,
		"expected_yield":  crop.ExpectedYield,
		"actual_yield":    crop.ActualYield,
		"updated_at":      crop.UpdatedAt,
	})
}

// Delete removes the owner's crop record
func (r *GormCropFinanceRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Scopes(OwnerScope(ownerID)).
		Where("id = ?", id).
		Delete(&models.CropFinanceModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "crop finance", id)
	}
	return nil
}

var _ ledger.CropFinanceRepository = (*GormCropFinanceRepository)(nil)
