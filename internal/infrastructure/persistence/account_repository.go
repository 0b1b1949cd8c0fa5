package persistence

import (
	"context"

	"github.com/farmledger/backend/internal/domain/ledger"
	"github.com/farmledger/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormAccountRepository implements ledger.AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByIDForOwner finds an account of the owner
func (r *GormAccountRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*ledger.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).
		Scopes(OwnerScope(ownerID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFound(err, "account", id)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds an account of the owner and locks its row (SELECT ... FOR UPDATE)
func (r *GormAccountRepository) FindByIDForUpdate(ctx context.Context, ownerID, id uuid.UUID) (*ledger.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).
		Scopes(ForUpdate, OwnerScope(ownerID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFound(err, "account", id)
	}
	return model.ToDomain(), nil
}

// FindAllForOwner lists the owner's accounts
func (r *GormAccountRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter ledger.AccountFilter) ([]ledger.Account, error) {
	query := r.db.WithContext(ctx).Model(&models.AccountModel{}).Scopes(OwnerScope(ownerID))
	if !filter.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if filter.Type != nil {
		query = query.Where("account_type = ?", *filter.Type)
	}
	query = applyListFilter(query, filter.Filter, AccountSortFields, "account_name")

	var accountModels []models.AccountModel
	if err := query.Find(&accountModels).Error; err != nil {
		return nil, err
	}
	accounts := make([]ledger.Account, len(accountModels))
	for i := range accountModels {
		accounts[i] = *accountModels[i].ToDomain()
	}
	return accounts, nil
}

// Save inserts a new account
func (r *GormAccountRepository) Save(ctx context.Context, account *ledger.Account) error {
	return r.db.WithContext(ctx).Create(models.AccountModelFromDomain(account)).Error
}

// SaveWithLock updates the account with an optimistic version check
func (r *GormAccountRepository) SaveWithLock(ctx context.Context, account *ledger.Account) error {
	return updateWithVersion(ctx, r.db, &models.AccountModel{}, account.ID, account.Version, map[string]any{
		"account_name":    account.Name,
		"account_number":  account.AccountNumber,
		"bank_name":       account.BankName,
		"current_balance": account.CurrentBalance,
		"is_active":       account.IsActive,
		"updated_at":      account.UpdatedAt,
	})
}

// SumActiveBalances totals current balances over the owner's active accounts
func (r *GormAccountRepository) SumActiveBalances(ctx context.Context, ownerID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&models.AccountModel{}).
		Select("COALESCE(SUM(current_balance), 0) as total").
		Scopes(OwnerScope(ownerID)).
		Where("is_active = ?", true).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

var _ ledger.AccountRepository = (*GormAccountRepository)(nil)
