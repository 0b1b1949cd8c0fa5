package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/farmledger/backend/internal/domain/identity"
	"github.com/farmledger/backend/internal/domain/shared"
	"github.com/farmledger/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormFarmerRepository implements identity.FarmerRepository using GORM
type GormFarmerRepository struct {
	db *gorm.DB
}

// NewGormFarmerRepository creates a new GormFarmerRepository
func NewGormFarmerRepository(db *gorm.DB) *GormFarmerRepository {
	return &GormFarmerRepository{db: db}
}

// Create persists a newly registered farmer
func (r *GormFarmerRepository) Create(ctx context.Context, farmer *identity.Farmer) error {
	if err := r.db.WithContext(ctx).Create(models.FarmerModelFromDomain(farmer)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update saves login bookkeeping with an optimistic version check
func (r *GormFarmerRepository) Update(ctx context.Context, farmer *identity.Farmer) error {
	return updateWithVersion(ctx, r.db, &models.FarmerModel{}, farmer.ID, farmer.Version, map[string]any{
		"display_name":    farmer.DisplayName,
		"password_hash":   farmer.PasswordHash,
		"is_active":       farmer.IsActive,
		"last_login_at":   farmer.LastLoginAt,
		"failed_attempts": farmer.FailedAttempts,
		"locked_until":    farmer.LockedUntil,
		"updated_at":      farmer.UpdatedAt,
	})
}

// FindByID finds a farmer by ID
func (r *GormFarmerRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Farmer, error) {
	var model models.FarmerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "farmer", id)
	}
	return model.ToDomain(), nil
}

// FindByUsername finds a farmer by lower-cased username
func (r *GormFarmerRepository) FindByUsername(ctx context.Context, username string) (*identity.Farmer, error) {
	var model models.FarmerModel
	if err := r.db.WithContext(ctx).
		Where("username = ?", strings.ToLower(strings.TrimSpace(username))).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByUsername checks if a username is already taken
func (r *GormFarmerRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.FarmerModel{}).
		Where("username = ?", strings.ToLower(strings.TrimSpace(username))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var _ identity.FarmerRepository = (*GormFarmerRepository)(nil)
