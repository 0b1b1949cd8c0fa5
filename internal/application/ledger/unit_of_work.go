package ledger

import (
	"context"

	"github.com/farmledger/backend/internal/domain/ledger"
)

// Repositories gives access to every ledger repository.
// Inside UnitOfWork.Execute all of them share one database transaction.
type Repositories interface {
	Accounts() ledger.AccountRepository
	Categories() ledger.CategoryRepository
	Transactions() ledger.TransactionRepository
	Budgets() ledger.BudgetRepository
	Crops() ledger.CropFinanceRepository
	Goals() ledger.FinancialGoalRepository
	Reports() ledger.ReportRepository
}

// UnitOfWork provides transactional access to the ledger repositories.
// Every mutation runs inside Execute; row locks taken by FindByIDForUpdate
// are held until fn returns.
type UnitOfWork interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos Repositories) error) error

	// Read returns repositories that are not bound to a transaction, for queries
	Read() Repositories
}
