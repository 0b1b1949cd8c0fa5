package ledger

import (
	"context"
	"time"

	"github.com/farmledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRepository persists accounts. Every lookup is scoped to the owner;
// an account of another farmer is reported as not found.
type AccountRepository interface {
	FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*Account, error)
	// FindByIDForUpdate loads the account and holds a row lock until the
	// surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, ownerID, id uuid.UUID) (*Account, error)
	FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter AccountFilter) ([]Account, error)
	Save(ctx context.Context, account *Account) error
	// SaveWithLock updates the account if its stored version is one behind
	SaveWithLock(ctx context.Context, account *Account) error
	SumActiveBalances(ctx context.Context, ownerID uuid.UUID) (decimal.Decimal, error)
}

// AccountFilter narrows account listings
type AccountFilter struct {
	shared.Filter
	IncludeInactive bool
	Type            *AccountType
}

// CategoryRepository reads the category registry
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindByName(ctx context.Context, kind CategoryKind, name string) (*Category, error)
	FindAll(ctx context.Context, kind *CategoryKind) ([]Category, error)
	Save(ctx context.Context, category *Category) error
}

// TransactionRepository persists ledger transactions.
// Deleted transactions are invisible to every finder.
type TransactionRepository interface {
	FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*Transaction, error)
	FindByIDForUpdate(ctx context.Context, ownerID, id uuid.UUID) (*Transaction, error)
	FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter TransactionFilter) ([]Transaction, error)
	CountForOwner(ctx context.Context, ownerID uuid.UUID, filter TransactionFilter) (int64, error)
	Save(ctx context.Context, txn *Transaction) error
	SaveWithLock(ctx context.Context, txn *Transaction) error
	// SoftDelete marks the row deleted with a version check
	SoftDelete(ctx context.Context, txn *Transaction) error
	// SumExpenses totals expense transactions of the owner in a category
	// with transaction date in [from, to)
	SumExpenses(ctx context.Context, ownerID, categoryID uuid.UUID, from, to time.Time) (decimal.Decimal, error)
	// SnapshotsForAccount returns every live transaction that moves money on accountID
	SnapshotsForAccount(ctx context.Context, accountID uuid.UUID) ([]TransactionSnapshot, error)
}

// TransactionFilter narrows transaction listings
type TransactionFilter struct {
	shared.Filter
	Type       *TransactionType
	AccountID  *uuid.UUID
	CategoryID *uuid.UUID
	// From and To bound the transaction date: From inclusive, To exclusive
	From *time.Time
	To   *time.Time
}

// BudgetRepository persists budgets
type BudgetRepository interface {
	FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*Budget, error)
	FindByIDForUpdate(ctx context.Context, ownerID, id uuid.UUID) (*Budget, error)
	FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter BudgetFilter) ([]Budget, error)
	// FindActiveContaining returns active budgets of the owner in categoryID
	// whose window contains at least one of dates
	FindActiveContaining(ctx context.Context, ownerID, categoryID uuid.UUID, dates []time.Time) ([]Budget, error)
	// FindActiveOn returns active budgets of the owner whose window contains day
	FindActiveOn(ctx context.Context, ownerID uuid.UUID, day time.Time) ([]Budget, error)
	// FindAllActive returns the active budgets of every owner
	FindAllActive(ctx context.Context) ([]Budget, error)
	Save(ctx context.Context, budget *Budget) error
	SaveWithLock(ctx context.Context, budget *Budget) error
}

// BudgetFilter narrows budget listings
type BudgetFilter struct {
	shared.Filter
	IncludeInactive bool
	CategoryID      *uuid.UUID
}

// CropFinanceRepository persists crop records
type CropFinanceRepository interface {
	FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*CropFinance, error)
	FindByIDForUpdate(ctx context.Context, ownerID, id uuid.UUID) (*CropFinance, error)
	FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter CropFilter) ([]CropFinance, error)
	// ExistsByKey checks the (owner, crop, season, year) uniqueness key, ignoring excludeID
	ExistsByKey(ctx context.Context, ownerID uuid.UUID, cropName, season string, year int, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, crop *CropFinance) error
	SaveWithLock(ctx context.Context, crop *CropFinance) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

// CropFilter narrows crop listings. Season and Crop match case-insensitively as substrings.
type CropFilter struct {
	shared.Filter
	Year   *int
	Season string
	Crop   string
}

// FinancialGoalRepository persists goals
type FinancialGoalRepository interface {
	FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*FinancialGoal, error)
	FindByIDForUpdate(ctx context.Context, ownerID, id uuid.UUID) (*FinancialGoal, error)
	FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter GoalFilter) ([]FinancialGoal, error)
	CountByAchieved(ctx context.Context, ownerID uuid.UUID, achieved bool) (int64, error)
	Save(ctx context.Context, goal *FinancialGoal) error
	SaveWithLock(ctx context.Context, goal *FinancialGoal) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

// GoalFilter narrows goal listings
type GoalFilter struct {
	shared.Filter
	Achieved *bool
	Type     *GoalType
}

// CategoryTotal is an aggregate of transactions in one category
type CategoryTotal struct {
	CategoryID       uuid.UUID
	CategoryName     string
	Total            decimal.Decimal
	TransactionCount int64
}

// PeriodTotals is income and expense over a date range
type PeriodTotals struct {
	Income           decimal.Decimal
	Expense          decimal.Decimal
	TransactionCount int64
}

// ReportRepository runs read-only aggregations over the ledger
type ReportRepository interface {
	// TotalsBetween sums income and expense with transaction date in [from, to)
	TotalsBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (PeriodTotals, error)
	// CategoryTotalsBetween groups transactions of txType by category, largest first
	CategoryTotalsBetween(ctx context.Context, ownerID uuid.UUID, txType TransactionType, from, to time.Time) ([]CategoryTotal, error)
}
