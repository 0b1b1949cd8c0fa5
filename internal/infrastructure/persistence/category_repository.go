package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/farmledger/backend/internal/domain/ledger"
	"github.com/farmledger/backend/internal/domain/shared"
	"github.com/farmledger/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCategoryRepository implements ledger.CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByID finds a category by its ID
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Category, error) {
	var model models.CategoryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "category", id)
	}
	return model.ToDomain(), nil
}

// FindByName finds a category by kind and exact name
func (r *GormCategoryRepository) FindByName(ctx context.Context, kind ledger.CategoryKind, name string) (*ledger.Category, error) {
	var model models.CategoryModel
	if err := r.db.WithContext(ctx).
		Where("kind = ? AND name = ?", kind, name).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError(shared.KindNotFound, shared.ErrNotFound.Code,
				fmt.Sprintf("%s category %q not found", kind, name))
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists active categories, optionally of one kind, ordered by name
func (r *GormCategoryRepository) FindAll(ctx context.Context, kind *ledger.CategoryKind) ([]ledger.Category, error) {
	query := r.db.WithContext(ctx).Model(&models.CategoryModel{}).Where("is_active = ?", true)
	if kind != nil {
		query = query.Where("kind = ?", *kind)
	}

	var categoryModels []models.CategoryModel
	if err := query.Order("kind ASC, name ASC").Find(&categoryModels).Error; err != nil {
		return nil, err
	}
	categories := make([]ledger.Category, len(categoryModels))
	for i := range categoryModels {
		categories[i] = *categoryModels[i].ToDomain()
	}
	return categories, nil
}

// Save inserts a category into the registry
func (r *GormCategoryRepository) Save(ctx context.Context, category *ledger.Category) error {
	return r.db.WithContext(ctx).Create(models.CategoryModelFromDomain(category)).Error
}

var _ ledger.CategoryRepository = (*GormCategoryRepository)(nil)
