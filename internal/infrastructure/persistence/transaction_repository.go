package persistence

import (
	"context"
	"time"

	"github.com/farmledger/backend/internal/domain/ledger"
	"github.com/farmledger/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormTransactionRepository implements ledger.TransactionRepository using GORM.
// Rows with deleted_at set are skipped by every finder.
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

func live(db *gorm.DB) *gorm.DB {
	return db.Where("deleted_at IS NULL")
}

// FindByIDForOwner finds a live transaction of the owner
func (r *GormTransactionRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*ledger.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).
		Scopes(OwnerScope(ownerID), live).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFound(err, "transaction", id)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a live transaction of the owner and locks its row
func (r *GormTransactionRepository) FindByIDForUpdate(ctx context.Context, ownerID, id uuid.UUID) (*ledger.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).
		Scopes(ForUpdate, OwnerScope(ownerID), live).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFound(err, "transaction", id)
	}
	return model.ToDomain(), nil
}

// FindAllForOwner lists the owner's live transactions
func (r *GormTransactionRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter ledger.TransactionFilter) ([]ledger.Transaction, error) {
	query := r.filtered(ctx, ownerID, filter)
	query = applyListFilter(query, filter.Filter, TransactionSortFields, "transaction_date")

	var txnModels []models.TransactionModel
	if err := query.Find(&txnModels).Error; err != nil {
		return nil, err
	}
	txns := make([]ledger.Transaction, len(txnModels))
	for i := range txnModels {
		txns[i] = *txnModels[i].ToDomain()
	}
	return txns, nil
}

// CountForOwner counts the owner's live transactions matching filter, ignoring paging
func (r *GormTransactionRepository) CountForOwner(ctx context.Context, ownerID uuid.UUID, filter ledger.TransactionFilter) (int64, error) {
	var count int64
	if err := r.filtered(ctx, ownerID, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormTransactionRepository) filtered(ctx context.Context, ownerID uuid.UUID, filter ledger.TransactionFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.TransactionModel{}).Scopes(OwnerScope(ownerID), live)
	if filter.Type != nil {
		query = query.Where("transaction_type = ?", *filter.Type)
	}
	if filter.AccountID != nil {
		query = query.Where("(account_id = ? OR to_account_id = ?)", *filter.AccountID, *filter.AccountID)
	}
	if filter.CategoryID != nil {
		query = query.Where("(expense_category_id = ? OR income_category_id = ?)", *filter.CategoryID, *filter.CategoryID)
	}
	if filter.From != nil {
		query = query.Where("transaction_date >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("transaction_date < ?", filter.To.UTC())
	}
	return query
}

// Save inserts a new transaction
func (r *GormTransactionRepository) Save(ctx context.Context, txn *ledger.Transaction) error {
	return r.db.WithContext(ctx).Create(models.TransactionModelFromDomain(txn)).Error
}

// SaveWithLock rewrites every editable column with an optimistic version check
func (r *GormTransactionRepository) SaveWithLock(ctx context.Context, txn *ledger.Transaction) error {
	return updateWithVersion(ctx, r.db, &models.TransactionModel{}, txn.ID, txn.Version, map[string]any{
		"account_id":          txn.AccountID,
		"transaction_type":    txn.Type,
		"amount":              txn.Amount,
		"description":         txn.Description,
		"expense_category_id": txn.ExpenseCategoryID,
		"income_category_id":  txn.IncomeCategoryID,
		"to_account_id":       txn.ToAccountID,
		"transaction_date":    txn.TransactionDate.UTC(),
		"reference_number":    txn.ReferenceNumber,
		"notes":               txn.Notes,
		"receipt_key":         txn.ReceiptKey,
		"updated_at":          txn.UpdatedAt,
	})
}

// SoftDelete stamps deleted_at with an optimistic version check
func (r *GormTransactionRepository) SoftDelete(ctx context.Context, txn *ledger.Transaction) error {
	return updateWithVersion(ctx, r.db, &models.TransactionModel{}, txn.ID, txn.Version, map[string]any{
		"deleted_at": txn.DeletedAt,
		"updated_at": txn.UpdatedAt,
	})
}

// SumExpenses totals live expense transactions of the owner in categoryID
// with transaction date in [from, to)
func (r *GormTransactionRepository) SumExpenses(ctx context.Context, ownerID, categoryID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&models.TransactionModel{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Scopes(OwnerScope(ownerID), live).
		Where("transaction_type = ?", ledger.TransactionTypeExpense).
		Where("expense_category_id = ?", categoryID).
		Where("transaction_date >= ? AND transaction_date < ?", from.UTC(), to.UTC()).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// SnapshotsForAccount returns every live transaction that moves money on accountID,
// as primary account or as transfer destination
func (r *GormTransactionRepository) SnapshotsForAccount(ctx context.Context, accountID uuid.UUID) ([]ledger.TransactionSnapshot, error) {
	var txnModels []models.TransactionModel
	if err := r.db.WithContext(ctx).
		Scopes(live).
		Where("account_id = ? OR to_account_id = ?", accountID, accountID).
		Order("transaction_date ASC").
		Find(&txnModels).Error; err != nil {
		return nil, err
	}
	snapshots := make([]ledger.TransactionSnapshot, len(txnModels))
	for i := range txnModels {
		snapshots[i] = txnModels[i].ToSnapshot()
	}
	return snapshots, nil
}

var _ ledger.TransactionRepository = (*GormTransactionRepository)(nil)
