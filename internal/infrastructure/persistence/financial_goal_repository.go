package persistence

import (
	"context"

	"github.com/farmledger/backend/internal/domain/ledger"
	"github.com/farmledger/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormFinancialGoalRepository implements ledger.FinancialGoalRepository using GORM
type GormFinancialGoalRepository struct {
	db *gorm.DB
}

// NewGormFinancialGoalRepository creates a new GormFinancialGoalRepository
func NewGormFinancialGoalRepository(db *gorm.DB) *GormFinancialGoalRepository {
	return &GormFinancialGoalRepository{db: db}
}

// FindByIDForOwner finds a goal of the owner
func (r *GormFinancialGoalRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*ledger.FinancialGoal, error) {
	var model models.FinancialGoalModel
	if err := r.db.WithContext(ctx).
		Scopes(OwnerScope(ownerID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFound(err, "financial goal", id)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a goal of the owner and locks its row
func (r *GormFinancialGoalRepository) FindByIDForUpdate(ctx context.Context, ownerID, id uuid.UUID) (*ledger.FinancialGoal, error) {
	var model models.FinancialGoalModel
	if err := r.db.WithContext(ctx).
		Scopes(ForUpdate, OwnerScope(ownerID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFound(err, "financial goal", id)
	}
	return model.ToDomain(), nil
}

// FindAllForOwner lists the owner's goals
func (r *GormFinancialGoalRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter ledger.GoalFilter) ([]ledger.FinancialGoal, error) {
	query := r.db.WithContext(ctx).Model(&models.FinancialGoalModel{}).Scopes(OwnerScope(ownerID))
	if filter.Achieved != nil {
		query = query.Where("is_achieved = ?", *filter.Achieved)
	}
	if filter.Type != nil {
		query = query.Where("goal_type = ?", *filter.Type)
	}
	query = applyListFilter(query, filter.Filter, GoalSortFields, "target_date")

	var goalModels []models.FinancialGoalModel
	if err := query.Find(&goalModels).Error; err != nil {
		return nil, err
	}
	goals := make([]ledger.FinancialGoal, len(goalModels))
	for i := range goalModels {
		goals[i] = *goalModels[i].ToDomain()
	}
	return goals, nil
}

// CountByAchieved counts the owner's goals with the given achieved flag
func (r *GormFinancialGoalRepository) CountByAchieved(ctx context.Context, ownerID uuid.UUID, achieved bool) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.FinancialGoalModel{}).
		Scopes(OwnerScope(ownerID)).
		Where("is_achieved = ?", achieved).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save inserts a new goal
func (r *GormFinancialGoalRepository) Save(ctx context.Context, goal *ledger.FinancialGoal) error {
	return r.db.WithContext(ctx).Create(models.FinancialGoalModelFromDomain(goal)).Error
}

// SaveWithLock updates the goal with an optimistic version check
func (r *GormFinancialGoalRepository) SaveWithLock(ctx context.Context, goal *ledger.FinancialGoal) error {
	return updateWithVersion(ctx, r.db, &models.FinancialGoalModel{}, goal.ID, goal.Version, map[string]any{
		"goal_name":      goal.Name,
		"goal_type":      goal.Type,
		"target_amount":  goal.TargetAmount,
		"current_amount": goal.CurrentAmount,
		"target_date":    goal.TargetDate.UTC(),
		"description":    goal.Description,
		"is_achieved":    goal.IsAchieved,
		"updated_at":     goal.UpdatedAt,
	})
}

// Delete removes the owner's goal
func (r *GormFinancialGoalRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Scopes(OwnerScope(ownerID)).
		Where("id = ?", id).
		Delete(&models.FinancialGoalModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "financial goal", id)
	}
	return nil
}

var _ ledger.FinancialGoalRepository = (*GormFinancialGoalRepository)(nil)
