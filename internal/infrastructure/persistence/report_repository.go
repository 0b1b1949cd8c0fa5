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

// GormReportRepository implements ledger.ReportRepository with aggregate queries
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

// TotalsBetween sums income and expense of live transactions dated in [from, to)
func (r *GormReportRepository) TotalsBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (ledger.PeriodTotals, error) {
	var result struct {
		Income           decimal.Decimal
		Expense          decimal.Decimal
		TransactionCount int64
	}
	err := r.db.WithContext(ctx).Model(&models.TransactionModel{}).
		Select(`COALESCE(SUM(CASE WHEN transaction_type = ? THEN amount ELSE 0 END), 0) as income,
			COALESCE(SUM(CASE WHEN transaction_type = ? THEN amount ELSE 0 END), 0) as expense,
			COUNT(*) as transaction_count`,
			ledger.TransactionTypeIncome, ledger.TransactionTypeExpense).
		Scopes(OwnerScope(ownerID), live).
		Where("transaction_date >= ? AND transaction_date < ?", from.UTC(), to.UTC()).
		Scan(&result).Error
	if err != nil {
		return ledger.PeriodTotals{}, err
	}
	return ledger.PeriodTotals{
		Income:           result.Income,
		Expense:          result.Expense,
		TransactionCount: result.TransactionCount,
	}, nil
}

// CategoryTotalsBetween groups live transactions of txType dated in [from, to)
// by category, largest total first. Transfers carry no category and yield nothing.
func (r *GormReportRepository) CategoryTotalsBetween(ctx context.Context, ownerID uuid.UUID, txType ledger.TransactionType, from, to time.Time) ([]ledger.CategoryTotal, error) {
	var column string
	switch txType {
	case ledger.TransactionTypeExpense:
		column = "t.expense_category_id"
	case ledger.TransactionTypeIncome:
		column = "t.income_category_id"
	default:
		return []ledger.CategoryTotal{}, nil
	}

	var rows []struct {
		CategoryID       uuid.UUID
		CategoryName     string
		Total            decimal.Decimal
		TransactionCount int64
	}
	err := r.db.WithContext(ctx).
		Table("ledger_transactions AS t").
		Select("c.id as category_id, c.name as category_name, COALESCE(SUM(t.amount), 0) as total, COUNT(*) as transaction_count").
		Joins("JOIN ledger_categories c ON c.id = "+column).
		Where("t.owner_id = ? AND t.deleted_at IS NULL AND t.transaction_type = ?", ownerID, txType).
		Where("t.transaction_date >= ? AND t.transaction_date < ?", from.UTC(), to.UTC()).
		Group("c.id, c.name").
		Order("total DESC, c.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	totals := make([]ledger.CategoryTotal, len(rows))
	for i, row := range rows {
		totals[i] = ledger.CategoryTotal{
			CategoryID:       row.CategoryID,
			CategoryName:     row.CategoryName,
			Total:            row.Total,
			TransactionCount: row.TransactionCount,
		}
	}
	return totals, nil
}

var _ ledger.ReportRepository = (*GormReportRepository)(nil)
