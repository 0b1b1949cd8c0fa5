package persistence

import (
	"context"

	appledger "github.com/farmledger/backend/internal/application/ledger"
	"github.com/farmledger/backend/internal/domain/ledger"
	"gorm.io/gorm"
)

// GormUnitOfWork implements appledger.UnitOfWork using GORM transactions.
// Every repository handed to Execute's callback shares one transaction.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (u *GormUnitOfWork) Execute(ctx context.Context, fn func(repos appledger.Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepositories{db: tx})
	})
}

// Read returns repositories bound to the connection pool, outside any transaction
func (u *GormUnitOfWork) Read() appledger.Repositories {
	return &gormRepositories{db: u.db}
}

// gormRepositories provides every ledger repository over one *gorm.DB
type gormRepositories struct {
	db *gorm.DB
}

func (r *gormRepositories) Accounts() ledger.AccountRepository {
	return NewGormAccountRepository(r.db)
}

func (r *gormRepositories) Categories() ledger.CategoryRepository {
	return NewGormCategoryRepository(r.db)
}

func (r *gormRepositories) Transactions() ledger.TransactionRepository {
	return NewGormTransactionRepository(r.db)
}

func (r *gormRepositories) Budgets() ledger.BudgetRepository {
	return NewGormBudgetRepository(r.db)
}

func (r *gormRepositories) Crops() ledger.CropFinanceRepository {
	return NewGormCropFinanceRepository(r.db)
}

func (r *gormRepositories) Goals() ledger.FinancialGoalRepository {
	return NewGormFinancialGoalRepository(r.db)
}

func (r *gormRepositories) Reports() ledger.ReportRepository {
	return NewGormReportRepository(r.db)
}

// Ensure GormUnitOfWork implements UnitOfWork
var _ appledger.UnitOfWork = (*GormUnitOfWork)(nil)

// Ensure gormRepositories implements Repositories
var _ appledger.Repositories = (*gormRepositories)(nil)
