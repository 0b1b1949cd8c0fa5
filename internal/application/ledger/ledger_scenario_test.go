package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	appledger "github.com/farmledger/backend/internal/application/ledger"
	"github.com/farmledger/backend/internal/domain/ledger"
	"github.com/farmledger/backend/internal/domain/shared"
	"github.com/farmledger/backend/internal/infrastructure/config"
	"github.com/farmledger/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var pinnedNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

type countingMetrics struct {
	appledger.NoopMetrics
	mu                sync.Mutex
	recorded          int
	reversed          int
	transfers         int
	insufficientFunds int
	inconsistent      int
}

func (m *countingMetrics) TransactionRecorded(context.Context, ledger.TransactionType, decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorded++
}

func (m *countingMetrics) TransactionReversed(context.Context, ledger.TransactionType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reversed++
}

func (m *countingMetrics) TransferCompleted(context.Context, decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transfers++
}

func (m *countingMetrics) InsufficientFunds(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insufficientFunds++
}

func (m *countingMetrics) ConsistencyFailure(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inconsistent++
}

type failingHook struct{ calls int }

func (h *failingHook) Name() string { return "failing" }

func (h *failingHook) AfterCommit(context.Context, []shared.DomainEvent) error {
	h.calls++
	return errors.New("broker unavailable")
}

type farm struct {
	ctx     context.Context
	ownerID uuid.UUID
	metrics *countingMetrics
	deps    appledger.Deps

	accounts     *appledger.AccountService
	transactions *appledger.TransactionService
	transfers    *appledger.TransferService
	budgets      *appledger.BudgetService
	crops        *appledger.CropService
	goals        *appledger.GoalService
	dashboard    *appledger.DashboardService
	categories   *appledger.CategoryService
	reconciler   *appledger.BudgetReconciler

	categoryIDs map[string]uuid.UUID
}

type farmSetup struct {
	now     time.Time
	leading []appledger.PostCommitHook
	extra   []appledger.PostCommitHook
	wrapUoW func(appledger.UnitOfWork) appledger.UnitOfWork
}

type farmOption func(*farmSetup)

// withClock pins the farm clock
func withClock(now time.Time) farmOption {
	return func(s *farmSetup) { s.now = now }
}

// withHooks runs hooks after the budget reconciler
func withHooks(hooks ...appledger.PostCommitHook) farmOption {
	return func(s *farmSetup) { s.extra = append(s.extra, hooks...) }
}

// withLeadingHooks runs hooks before the budget reconciler
func withLeadingHooks(hooks ...appledger.PostCommitHook) farmOption {
	return func(s *farmSetup) { s.leading = append(s.leading, hooks...) }
}

// withUnitOfWork wraps the unit of work the services use
func withUnitOfWork(wrap func(appledger.UnitOfWork) appledger.UnitOfWork) farmOption {
	return func(s *farmSetup) { s.wrapUoW = wrap }
}

func newFarm(t *testing.T, opts ...farmOption) *farm {
	t.Helper()
	setup := farmSetup{now: pinnedNow}
	for _, opt := range opts {
		opt(&setup)
	}

	db, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })

	var uow appledger.UnitOfWork = persistence.NewGormUnitOfWork(db.DB)
	if setup.wrapUoW != nil {
		uow = setup.wrapUoW(uow)
	}

	f := &farm{
		ctx:         context.Background(),
		ownerID:     uuid.New(),
		metrics:     &countingMetrics{},
		categoryIDs: make(map[string]uuid.UUID),
	}
	f.deps = appledger.Deps{
		UoW:     uow,
		Metrics: f.metrics,
		Logger:  zaptest.NewLogger(t),
		Now:     func() time.Time { return setup.now },
	}
	reconciler := appledger.NewBudgetReconciler(f.deps)
	f.reconciler = reconciler
	f.deps.Hooks = append(f.deps.Hooks, setup.leading...)
	f.deps.Hooks = append(f.deps.Hooks, reconciler)
	f.deps.Hooks = append(f.deps.Hooks, setup.extra...)

	f.accounts = appledger.NewAccountService(f.deps)
	f.transactions = appledger.NewTransactionService(f.deps)
	f.transfers = appledger.NewTransferService(f.deps)
	f.budgets = appledger.NewBudgetService(f.deps, reconciler)
	f.crops = appledger.NewCropService(f.deps)
	f.goals = appledger.NewGoalService(f.deps)
	f.dashboard = appledger.NewDashboardService(f.deps)
	f.categories = appledger.NewCategoryService(f.deps)

	require.NoError(t, f.categories.SeedDefaults(f.ctx))
	all, err := f.categories.ListCategories(f.ctx, "")
	require.NoError(t, err)
	for _, c := range all {
		f.categoryIDs[c.Kind+"/"+c.Name] = c.ID
	}
	return f
}

func (f *farm) expenseCategory(name string) *uuid.UUID {
	id := f.categoryIDs["EXPENSE/"+name]
	return &id
}

func (f *farm) incomeCategory(name string) *uuid.UUID {
	id := f.categoryIDs["INCOME/"+name]
	return &id
}

func (f *farm) openAccount(t *testing.T, name string, opening int64) uuid.UUID {
	t.Helper()
	balance := decimal.NewFromInt(opening)
	acc, err := f.accounts.CreateAccount(f.ctx, f.ownerID, appledger.CreateAccountRequest{
		AccountName:    name,
		AccountType:    string(ledger.AccountTypeSavings),
		OpeningBalance: &balance,
	})
	require.NoError(t, err)
	return acc.ID
}

func (f *farm) balance(t *testing.T, accountID uuid.UUID) decimal.Decimal {
	t.Helper()
	acc, err := f.accounts.GetAccount(f.ctx, f.ownerID, accountID)
	require.NoError(t, err)
	return acc.CurrentBalance
}

func (f *farm) expense(t *testing.T, accountID uuid.UUID, amount int64, category string, date time.Time) *appledger.TransactionResponse {
	t.Helper()
	resp, err := f.transactions.CreateTransaction(f.ctx, f.ownerID, appledger.TransactionRequest{
		AccountID:       accountID,
		TransactionType: "EXPENSE",
		Amount:          decimal.NewFromInt(amount),
		Description:     category + " purchase",
		CategoryID:      f.expenseCategory(category),
		TransactionDate: &date,
	})
	require.NoError(t, err)
	return resp
}

func assertAmount(t *testing.T, want int64, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, decimal.NewFromInt(want).Equal(got), "want %d, got %s %v", want, got, msgAndArgs)
}

func june(d int) time.Time {
	return time.Date(2024, time.June, d, 0, 0, 0, 0, time.UTC)
}

func TestTransfer_MovesMoneyBetweenAccounts(t *testing.T) {
	f := newFarm(t)
	from := f.openAccount(t, "Savings", 500)
	to := f.openAccount(t, "Cash", 100)

	resp, err := f.transfers.Transfer(f.ctx, f.ownerID, appledger.TransferRequest{
		FromAccountID: from,
		ToAccountID:   to,
		Amount:        decimal.NewFromInt(200),
	})
	require.NoError(t, err)

	assertAmount(t, 300, resp.FromAccount.Balance)
	assertAmount(t, 300, resp.ToAccount.Balance)
	assertAmount(t, 300, f.balance(t, from))
	assertAmount(t, 300, f.balance(t, to))

	txn, err := f.transactions.GetTransaction(f.ctx, f.ownerID, resp.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, "TRANSFER", txn.TransactionType)
	assert.Equal(t, appledger.DefaultTransferDescription, txn.Description)
	assert.Nil(t, txn.CategoryID)

	for _, id := range []uuid.UUID{from, to} {
		check, err := f.accounts.VerifyBalance(f.ctx, f.ownerID, id)
		require.NoError(t, err)
		assert.True(t, check.Consistent)
	}

	total, err := f.accounts.TotalBalance(f.ctx, f.ownerID)
	require.NoError(t, err)
	assertAmount(t, 600, total.TotalBalance)
	assert.Equal(t, 1, f.metrics.transfers)
}

func TestTransfer_InsufficientFundsChangesNothing(t *testing.T) {
	f := newFarm(t)
	from := f.openAccount(t, "Savings", 500)
	to := f.openAccount(t, "Cash", 100)

	_, err := f.transfers.Transfer(f.ctx, f.ownerID, appledger.TransferRequest{
		FromAccountID: from,
		ToAccountID:   to,
		Amount:        decimal.NewFromInt(600),
	})
	require.Error(t, err)
	assert.True(t, shared.IsInsufficientFunds(err))

	assertAmount(t, 500, f.balance(t, from))
	assertAmount(t, 100, f.balance(t, to))
	page, err := f.transactions.ListTransactions(f.ctx, f.ownerID, appledger.TransactionListFilter{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.Equal(t, 1, f.metrics.insufficientFunds)
}

func TestTransfer_InactiveOrForeignAccount(t *testing.T) {
	f := newFarm(t)
	from := f.openAccount(t, "Savings", 500)
	to := f.openAccount(t, "Cash", 100)
	require.NoError(t, f.accounts.DeactivateAccount(f.ctx, f.ownerID, to))

	_, err := f.transfers.Transfer(f.ctx, f.ownerID, appledger.TransferRequest{
		FromAccountID: from, ToAccountID: to, Amount: decimal.NewFromInt(50),
	})
	assert.True(t, shared.IsValidation(err))

	_, err = f.transfers.Transfer(f.ctx, uuid.New(), appledger.TransferRequest{
		FromAccountID: from, ToAccountID: to, Amount: decimal.NewFromInt(50),
	})
	assert.True(t, shared.IsNotFound(err))
	assertAmount(t, 500, f.balance(t, from))
}

func TestEditTransaction_ReversesThenApplies(t *testing.T) {
	f := newFarm(t)
	savings := f.openAccount(t, "Savings", 500)
	cash := f.openAccount(t, "Cash", 0)

	income, err := f.transactions.CreateTransaction(f.ctx, f.ownerID, appledger.TransactionRequest{
		AccountID:       savings,
		TransactionType: "INCOME",
		Amount:          decimal.NewFromInt(200),
		Description:     "Milk",
		CategoryID:      f.incomeCategory("Dairy Products"),
	})
	require.NoError(t, err)
	assertAmount(t, 700, f.balance(t, savings))

	date := june(10)
	edited, err := f.transactions.EditTransaction(f.ctx, f.ownerID, income.ID, appledger.TransactionRequest{
		AccountID:       cash,
		TransactionType: "EXPENSE",
		Amount:          decimal.NewFromInt(50),
		Description:     "Diesel",
		CategoryID:      f.expenseCategory("Fuel"),
		TransactionDate: &date,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, edited.Version)
	assert.Equal(t, "Fuel", edited.CategoryName)

	assertAmount(t, 500, f.balance(t, savings))
	assertAmount(t, -50, f.balance(t, cash))

	require.NoError(t, f.transactions.DeleteTransaction(f.ctx, f.ownerID, income.ID))
	assertAmount(t, 0, f.balance(t, cash))
	_, err = f.transactions.GetTransaction(f.ctx, f.ownerID, income.ID)
	assert.True(t, shared.IsNotFound(err))
	assert.Equal(t, 1, f.metrics.reversed)
}

func TestEditTransaction_OverdraftRollsBack(t *testing.T) {
	f := newFarm(t)
	savings := f.openAccount(t, "Savings", 100)
	cash := f.openAccount(t, "Cash", 0)

	tr, err := f.transfers.Transfer(f.ctx, f.ownerID, appledger.TransferRequest{
		FromAccountID: savings, ToAccountID: cash, Amount: decimal.NewFromInt(80),
	})
	require.NoError(t, err)

	_, err = f.transactions.EditTransaction(f.ctx, f.ownerID, tr.TransactionID, appledger.TransactionRequest{
		AccountID:       savings,
		TransactionType: "TRANSFER",
		Amount:          decimal.NewFromInt(150),
		Description:     "Too much",
		ToAccountID:     &cash,
	})
	require.Error(t, err)
	assert.True(t, shared.IsInsufficientFunds(err))
	assertAmount(t, 20, f.balance(t, savings))
	assertAmount(t, 80, f.balance(t, cash))

	// the source may spend what the reversed transfer gives back
	_, err = f.transactions.EditTransaction(f.ctx, f.ownerID, tr.TransactionID, appledger.TransactionRequest{
		AccountID:       savings,
		TransactionType: "TRANSFER",
		Amount:          decimal.NewFromInt(100),
		Description:     "All of it",
		ToAccountID:     &cash,
	})
	require.NoError(t, err)
	assertAmount(t, 0, f.balance(t, savings))
	assertAmount(t, 100, f.balance(t, cash))
}

func TestCreateTransaction_CategoryRules(t *testing.T) {
	f := newFarm(t)
	savings := f.openAccount(t, "Savings", 100)

	_, err := f.transactions.CreateTransaction(f.ctx, f.ownerID, appledger.TransactionRequest{
		AccountID:       savings,
		TransactionType: "EXPENSE",
		Amount:          decimal.NewFromInt(10),
		Description:     "Wrong registry",
		CategoryID:      f.incomeCategory("Crop Sales"),
	})
	assert.True(t, shared.IsValidation(err))

	missing := uuid.New()
	_, err = f.transactions.CreateTransaction(f.ctx, f.ownerID, appledger.TransactionRequest{
		AccountID:       savings,
		TransactionType: "EXPENSE",
		Amount:          decimal.NewFromInt(10),
		Description:     "Unknown category",
		CategoryID:      &missing,
	})
	assert.True(t, shared.IsValidation(err))
	assertAmount(t, 100, f.balance(t, savings))
}

func TestBudget_FollowsLedger(t *testing.T) {
	f := newFarm(t)
	savings := f.openAccount(t, "Savings", 1000)

	budget, err := f.budgets.CreateBudget(f.ctx, f.ownerID, appledger.BudgetRequest{
		BudgetName:     "June seeds",
		CategoryID:     *f.expenseCategory("Seeds"),
		BudgetedAmount: decimal.NewFromInt(500),
		StartDate:      june(1),
		EndDate:        june(30),
	})
	require.NoError(t, err)
	assertAmount(t, 0, budget.SpentAmount)

	first := f.expense(t, savings, 300, "Seeds", june(3))
	second := f.expense(t, savings, 250, "Seeds", june(10))
	f.expense(t, savings, 40, "Fuel", june(11))

	got, err := f.budgets.GetBudget(f.ctx, f.ownerID, budget.ID)
	require.NoError(t, err)
	assertAmount(t, 550, got.SpentAmount)
	assert.True(t, got.IsOverBudget)

	require.NoError(t, f.transactions.DeleteTransaction(f.ctx, f.ownerID, second.ID))
	got, err = f.budgets.GetBudget(f.ctx, f.ownerID, budget.ID)
	require.NoError(t, err)
	assertAmount(t, 300, got.SpentAmount)
	assert.False(t, got.IsOverBudget)

	// moving the expense to another category empties the budget
	date := june(3)
	_, err = f.transactions.EditTransaction(f.ctx, f.ownerID, first.ID, appledger.TransactionRequest{
		AccountID:       savings,
		TransactionType: "EXPENSE",
		Amount:          decimal.NewFromInt(300),
		Description:     "Actually fuel",
		CategoryID:      f.expenseCategory("Fuel"),
		TransactionDate: &date,
	})
	require.NoError(t, err)
	got, err = f.budgets.GetBudget(f.ctx, f.ownerID, budget.ID)
	require.NoError(t, err)
	assertAmount(t, 0, got.SpentAmount)

	current, err := f.budgets.BudgetCurrent(f.ctx, f.ownerID)
	require.NoError(t, err)
	require.Len(t, current, 1)
	assert.Equal(t, "Seeds", current[0].CategoryName)
}

func TestBudget_CreatedAfterExpensesCountsThem(t *testing.T) {
	f := newFarm(t)
	savings := f.openAccount(t, "Savings", 1000)
	f.expense(t, savings, 120, "Labor", june(2))
	f.expense(t, savings, 80, "Labor", june(14))
	f.expense(t, savings, 500, "Labor", time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC))

	budget, err := f.budgets.CreateBudget(f.ctx, f.ownerID, appledger.BudgetRequest{
		BudgetName:     "June labor",
		CategoryID:     *f.expenseCategory("Labor"),
		BudgetedAmount: decimal.NewFromInt(400),
		StartDate:      june(1),
		EndDate:        june(30),
	})
	require.NoError(t, err)
	assertAmount(t, 200, budget.SpentAmount)
	assertAmount(t, 200, budget.RemainingAmount)

	analysis, err := f.budgets.SpendingAnalysis(f.ctx, f.ownerID, budget.ID)
	require.NoError(t, err)
	assert.Len(t, analysis.Transactions, 2)

	_, err = f.budgets.CreateBudget(f.ctx, f.ownerID, appledger.BudgetRequest{
		BudgetName:     "Income budget",
		CategoryID:     *f.incomeCategory("Crop Sales"),
		BudgetedAmount: decimal.NewFromInt(400),
		StartDate:      june(1),
		EndDate:        june(30),
	})
	assert.True(t, shared.IsValidation(err))
}

func TestHookFailureDoesNotFailMutation(t *testing.T) {
	hook := &failingHook{}
	f := newFarm(t, withHooks(hook))
	savings := f.openAccount(t, "Savings", 100)

	f.expense(t, savings, 30, "Fuel", june(5))

	assert.Equal(t, 1, hook.calls)
	assertAmount(t, 70, f.balance(t, savings))
}

func TestCropSale_BooksIncome(t *testing.T) {
	f := newFarm(t)
	savings := f.openAccount(t, "Savings", 500)

	crop, err := f.crops.CreateCrop(f.ctx, f.ownerID, appledger.CropRequest{
		CropName:     "wheat",
		Season:       "rabi",
		Year:         2024,
		CropCostsDTO: appledger.CropCostsDTO{SeedCost: decimal.NewFromInt(200), LaborCost: decimal.NewFromInt(300)},
		AreaAcres:    decimal.NewFromInt(2),
	})
	require.NoError(t, err)
	assert.Equal(t, "Wheat", crop.CropName)

	_, err = f.crops.CreateCrop(f.ctx, f.ownerID, appledger.CropRequest{
		CropName:  "Wheat",
		Season:    "Rabi",
		Year:      2024,
		AreaAcres: decimal.NewFromInt(1),
	})
	assert.True(t, shared.IsConflict(err))

	sale, err := f.crops.RecordSale(f.ctx, f.ownerID, crop.ID, appledger.SaleRequest{
		Amount:    decimal.NewFromInt(800),
		AccountID: &savings,
	})
	require.NoError(t, err)
	assertAmount(t, 800, sale.Crop.TotalRevenue)
	assertAmount(t, 300, sale.Crop.ProfitLoss)
	require.NotNil(t, sale.Transaction)
	assert.Equal(t, ledger.CropSalesCategory, sale.Transaction.CategoryName)
	assertAmount(t, 1300, f.balance(t, savings))

	// without an account only the crop record moves
	sale, err = f.crops.RecordSale(f.ctx, f.ownerID, crop.ID, appledger.SaleRequest{Amount: decimal.NewFromInt(100)})
	require.NoError(t, err)
	assert.Nil(t, sale.Transaction)
	assertAmount(t, 1300, f.balance(t, savings))

	report, err := f.crops.ProfitabilityAnalysis(f.ctx, f.ownerID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalCrops)
	assertAmount(t, 400, report.OverallProfit)
	require.Len(t, report.CropWiseBreakdown, 1)
	assertAmount(t, 200, report.CropWiseBreakdown[0].ProfitPerAcre)
}

func TestGoal_ContributionReachesTarget(t *testing.T) {
	f := newFarm(t)
	goal, err := f.goals.CreateGoal(f.ctx, f.ownerID, appledger.GoalRequest{
		GoalName:     "New tractor",
		GoalType:     "EQUIPMENT",
		TargetAmount: decimal.NewFromInt(1000),
		TargetDate:   june(30),
	})
	require.NoError(t, err)

	res, err := f.goals.AddContribution(f.ctx, f.ownerID, goal.ID, appledger.ContributionRequest{Amount: decimal.NewFromInt(600)})
	require.NoError(t, err)
	assert.False(t, res.JustAchieved)

	res, err = f.goals.AddContribution(f.ctx, f.ownerID, goal.ID, appledger.ContributionRequest{Amount: decimal.NewFromInt(400)})
	require.NoError(t, err)
	assert.True(t, res.JustAchieved)
	assert.True(t, res.Goal.IsAchieved)

	_, err = f.goals.AddContribution(f.ctx, f.ownerID, goal.ID, appledger.ContributionRequest{Amount: decimal.Zero})
	assert.True(t, shared.IsValidation(err))

	summary, err := f.goals.ProgressSummary(f.ctx, f.ownerID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.AchievedGoals)
	assert.Empty(t, summary.UpcomingDeadlines)
}

func TestDashboard_Summary(t *testing.T) {
	f := newFarm(t)
	savings := f.openAccount(t, "Savings", 1000)

	_, err := f.transactions.CreateTransaction(f.ctx, f.ownerID, appledger.TransactionRequest{
		AccountID:       savings,
		TransactionType: "INCOME",
		Amount:          decimal.NewFromInt(400),
		Description:     "Eggs",
		CategoryID:      f.incomeCategory("Poultry Products"),
	})
	require.NoError(t, err)
	f.expense(t, savings, 150, "Fuel", june(4))
	f.expense(t, savings, 50, "Seeds", june(5))
	f.expense(t, savings, 70, "Seeds", time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC))

	summary, err := f.dashboard.Summary(f.ctx, f.ownerID)
	require.NoError(t, err)
	assertAmount(t, 1130, summary.TotalBalance)
	assertAmount(t, 400, summary.MonthlyIncome)
	assertAmount(t, 200, summary.MonthlyExpense)
	assertAmount(t, 200, summary.NetCashFlow)
	assert.Len(t, summary.RecentTransactions, 4)

	breakdown, err := f.dashboard.ExpenseBreakdown(f.ctx, f.ownerID, "month")
	require.NoError(t, err)
	assertAmount(t, 200, breakdown.TotalExpense)
	require.Len(t, breakdown.Categories, 2)
	assert.Equal(t, "Fuel", breakdown.Categories[0].CategoryName)

	trends, err := f.dashboard.MonthlyTrends(f.ctx, f.ownerID, 3)
	require.NoError(t, err)
	require.Len(t, trends, 3)
	assert.Equal(t, "Apr 2024", trends[0].Month)
	assertAmount(t, 70, trends[0].Expense)
	assert.Equal(t, "Jun 2024", trends[2].Month)

	_, err = f.dashboard.ExpenseBreakdown(f.ctx, f.ownerID, "fortnight")
	assert.True(t, shared.IsValidation(err))
}

func TestSeedDefaults_IsIdempotent(t *testing.T) {
	f := newFarm(t)
	require.NoError(t, f.categories.SeedDefaults(f.ctx))

	expense, err := f.categories.ListCategories(f.ctx, "expense")
	require.NoError(t, err)
	assert.Len(t, expense, len(ledger.DefaultExpenseCategories))
	income, err := f.categories.ListCategories(f.ctx, "INCOME")
	require.NoError(t, err)
	assert.Len(t, income, len(ledger.DefaultIncomeCategories))
}
