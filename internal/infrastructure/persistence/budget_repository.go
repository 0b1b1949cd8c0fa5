package persistence

import (
	"context"
	"time"

	"github.com/farmledger/backend/internal/domain/ledger"
	"github.com/farmledger/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBudgetRepository implements ledger.BudgetRepository using GORM
type GormBudgetRepository struct {
	db *gorm.DB
}

// NewGormBudgetRepository creates a new GormBudgetRepository
func NewGormBudgetRepository(db *gorm.DB) *GormBudgetRepository {
	return &GormBudgetRepository{db: db}
}

// FindByIDForOwner finds a budget of the owner
func (r *GormBudgetRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*ledger.Budget, error) {
	var model models.BudgetModel
	if err := r.db.WithContext(ctx).
		Scopes(OwnerScope(ownerID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFound(err, "budget", id)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a budget of the owner and locks its row
func (r *GormBudgetRepository) FindByIDForUpdate(ctx context.Context, ownerID, id uuid.UUID) (*ledger.Budget, error) {
	var model models.BudgetModel
	if err := r.db.WithContext(ctx).
		Scopes(ForUpdate, OwnerScope(ownerID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFound(err, "budget", id)
	}
	return model.ToDomain(), nil
}

// FindAllForOwner lists the owner's budgets
func (r *GormBudgetRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter ledger.BudgetFilter) ([]ledger.Budget, error) {
	query := r.db.WithContext(ctx).Model(&models.BudgetModel{}).Scopes(OwnerScope(ownerID))
	if !filter.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	query = applyListFilter(query, filter.Filter, BudgetSortFields, "start_date")
	return r.find(query)
}

// FindActiveContaining returns active budgets of the owner in categoryID
// whose inclusive window contains at least one of dates
func (r *GormBudgetRepository) FindActiveContaining(ctx context.Context, ownerID, categoryID uuid.UUID, dates []time.Time) ([]ledger.Budget, error) {
	if len(dates) == 0 {
		return nil, nil
	}
	const contains = "start_date <= ? AND end_date >= ?"
	first := ledger.DateOf(dates[0])
	windows := r.db.Where(contains, first, first)
	for _, d := range dates[1:] {
		day := ledger.DateOf(d)
		windows = windows.Or(contains, day, day)
	}
	query := r.db.WithContext(ctx).Model(&models.BudgetModel{}).
		Scopes(OwnerScope(ownerID)).
		Where("is_active = ? AND category_id = ?", true, categoryID).
		Where(windows).
		Order("start_date ASC")
	return r.find(query)
}

// FindActiveOn returns active budgets of the owner whose window contains day
func (r *GormBudgetRepository) FindActiveOn(ctx context.Context, ownerID uuid.UUID, day time.Time) ([]ledger.Budget, error) {
	d := ledger.DateOf(day)
	query := r.db.WithContext(ctx).Model(&models.BudgetModel{}).
		Scopes(OwnerScope(ownerID)).
		Where("is_active = ?", true).
		Where("start_date <= ? AND end_date >= ?", d, d).
		Order("end_date ASC")
	return r.find(query)
}

// FindAllActive returns the active budgets of every owner, oldest window first
func (r *GormBudgetRepository) FindAllActive(ctx context.Context) ([]ledger.Budget, error) {
	query := r.db.WithContext(ctx).Model(&models.BudgetModel{}).
		Where("is_active = ?", true).
		Order("start_date ASC")
	return r.find(query)
}

func (r *GormBudgetRepository) find(query *gorm.DB) ([]ledger.Budget, error) {
	var budgetModels []models.BudgetModel
	if err := query.Find(&budgetModels).Error; err != nil {
		return nil, err
	}
	budgets := make([]ledger.Budget, len(budgetModels))
	for i := range budgetModels {
		budgets[i] = *budgetModels[i].ToDomain()
	}
	return budgets, nil
}

// Save inserts a new budget
func (r *GormBudgetRepository) Save(ctx context.Context, budget *ledger.Budget) error {
	return r.db.WithContext(ctx).Create(models.BudgetModelFromDomain(budget)).Error
}

// SaveWithLock updates the budget with an optimistic version check
func (r *GormBudgetRepository) SaveWithLock(ctx context.Context, budget *ledger.Budget) error {
	return updateWithVersion(ctx, r.db, &models.BudgetModel{}, budget.ID, budget.Version, map[string]any{
		"budget_name":     budget.Name,
		"category_id":     budget.CategoryID,
		"budgeted_amount": budget.BudgetedAmount,
		"spent_amount":    budget.SpentAmount,
		"start_date":      budget.StartDate.UTC(),
		"end_date":        budget.EndDate.UTC(),
		"is_active":       budget.IsActive,
		"updated_at":      budget.UpdatedAt,
	})
}

var _ ledger.BudgetRepository = (*GormBudgetRepository)(nil)
