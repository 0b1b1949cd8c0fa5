package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/farmledger/backend/internal/domain/ledger"
	"github.com/farmledger/backend/internal/domain/shared"
	"github.com/farmledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ledgerFixture struct {
	ctx       context.Context
	repos     *gormRepositories
	ownerID   uuid.UUID
	accountID uuid.UUID
	seeds     *ledger.Category
	fuel      *ledger.Category
	sales     *ledger.Category
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	db := newSQLiteDatabase(t)
	f := &ledgerFixture{
		ctx:     context.Background(),
		repos:   &gormRepositories{db: db.DB},
		ownerID: uuid.New(),
	}

	newCategory := func(kind ledger.CategoryKind, name string) *ledger.Category {
		c := &ledger.Category{ID: uuid.New(), Name: name, Kind: kind, IsActive: true, CreatedAt: time.Now().UTC()}
		require.NoError(t, f.repos.Categories().Save(f.ctx, c))
		return c
	}
	f.seeds = newCategory(ledger.CategoryKindExpense, "Seeds")
	f.fuel = newCategory(ledger.CategoryKindExpense, "Fuel")
	f.sales = newCategory(ledger.CategoryKindIncome, ledger.CropSalesCategory)

	account, err := ledger.NewAccount(f.ownerID, "Savings", ledger.AccountTypeSavings, valueobject.NewMoneyFromInt(1000))
	require.NoError(t, err)
	require.NoError(t, f.repos.Accounts().Save(f.ctx, account))
	f.accountID = account.ID
	return f
}

func (f *ledgerFixture) record(t *testing.T, txType ledger.TransactionType, amount int64, category *ledger.Category, date time.Time) *ledger.Transaction {
	t.Helper()
	txn, err := ledger.NewTransaction(f.ownerID, ledger.TransactionInput{
		AccountID:       f.accountID,
		Type:            txType,
		Amount:          valueobject.NewMoneyFromInt(amount),
		Description:     "entry",
		CategoryID:      &category.ID,
		TransactionDate: date,
	})
	require.NoError(t, err)
	require.NoError(t, f.repos.Transactions().Save(f.ctx, txn))
	return txn
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGormTransactionRepository_SumExpenses(t *testing.T) {
	f := newLedgerFixture(t)
	repo := f.repos.Transactions()

	f.record(t, ledger.TransactionTypeExpense, 300, f.seeds, day(2024, 6, 3))
	second := f.record(t, ledger.TransactionTypeExpense, 250, f.seeds, day(2024, 6, 20))
	f.record(t, ledger.TransactionTypeExpense, 40, f.fuel, day(2024, 6, 5))
	f.record(t, ledger.TransactionTypeExpense, 999, f.seeds, day(2024, 7, 1))
	f.record(t, ledger.TransactionTypeIncome, 700, f.sales, day(2024, 6, 10))

	total, err := repo.SumExpenses(f.ctx, f.ownerID, f.seeds.ID, day(2024, 6, 1), day(2024, 7, 1))
	require.NoError(t, err)
	assert.Equal(t, "550.00", total.StringFixed(2))

	second.MarkDeleted(time.Now())
	require.NoError(t, repo.SoftDelete(f.ctx, second))

	total, err = repo.SumExpenses(f.ctx, f.ownerID, f.seeds.ID, day(2024, 6, 1), day(2024, 7, 1))
	require.NoError(t, err)
	assert.Equal(t, "300.00", total.StringFixed(2))

	_, err = repo.FindByIDForOwner(f.ctx, f.ownerID, second.ID)
	assert.True(t, shared.IsNotFound(err), "deleted transactions are invisible")

	total, err = repo.SumExpenses(f.ctx, uuid.New(), f.seeds.ID, day(2024, 6, 1), day(2024, 7, 1))
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestGormTransactionRepository_FilterAndCount(t *testing.T) {
	f := newLedgerFixture(t)
	repo := f.repos.Transactions()

	f.record(t, ledger.TransactionTypeExpense, 10, f.seeds, day(2024, 1, 5))
	f.record(t, ledger.TransactionTypeExpense, 20, f.fuel, day(2024, 2, 5))
	f.record(t, ledger.TransactionTypeIncome, 30, f.sales, day(2024, 3, 5))

	expense := ledger.TransactionTypeExpense
	from, to := day(2024, 1, 1), day(2024, 3, 1)
	filter := ledger.TransactionFilter{
		Filter: shared.Filter{Page: 1, PageSize: 1, OrderBy: "transaction_date", OrderDir: "desc"},
		Type:   &expense,
		From:   &from,
		To:     &to,
	}

	page, err := repo.FindAllForOwner(f.ctx, f.ownerID, filter)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, f.fuel.ID, *page[0].ExpenseCategoryID)

	count, err := repo.CountForOwner(f.ctx, f.ownerID, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	filter.CategoryID = &f.seeds.ID
	count, err = repo.CountForOwner(f.ctx, f.ownerID, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGormTransactionRepository_EditAndSnapshots(t *testing.T) {
	f := newLedgerFixture(t)
	repo := f.repos.Transactions()

	other, err := ledger.NewAccount(f.ownerID, "Cash", ledger.AccountTypeCash, valueobject.NewMoneyFromInt(0))
	require.NoError(t, err)
	require.NoError(t, f.repos.Accounts().Save(f.ctx, other))

	txn := f.record(t, ledger.TransactionTypeExpense, 75, f.seeds, day(2024, 4, 1))

	loaded, err := repo.FindByIDForUpdate(f.ctx, f.ownerID, txn.ID)
	require.NoError(t, err)
	require.NoError(t, loaded.Edit(ledger.TransactionInput{
		AccountID:       f.accountID,
		Type:            ledger.TransactionTypeTransfer,
		Amount:          valueobject.NewMoneyFromInt(80),
		Description:     "move to cash",
		ToAccountID:     &other.ID,
		TransactionDate: day(2024, 4, 2),
	}))
	require.NoError(t, repo.SaveWithLock(f.ctx, loaded))

	reloaded, err := repo.FindByIDForOwner(f.ctx, f.ownerID, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.TransactionTypeTransfer, reloaded.Type)
	assert.Nil(t, reloaded.ExpenseCategoryID)
	require.NotNil(t, reloaded.ToAccountID)
	assert.Equal(t, other.ID, *reloaded.ToAccountID)
	assert.Equal(t, 2, reloaded.Version)

	snapshots, err := repo.SnapshotsForAccount(f.ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, "80.00", ledger.NetEffectOn(other.ID, snapshots).StringFixed(2))
}

func TestGormBudgetRepository_Windows(t *testing.T) {
	f := newLedgerFixture(t)
	repo := f.repos.Budgets()

	newBudget := func(name string, start, end time.Time) *ledger.Budget {
		b, err := ledger.NewBudget(f.ownerID, ledger.BudgetInput{
			Name:           name,
			CategoryID:     f.seeds.ID,
			BudgetedAmount: valueobject.NewMoneyFromInt(1000),
			StartDate:      start,
			EndDate:        end,
		})
		require.NoError(t, err)
		require.NoError(t, repo.Save(f.ctx, b))
		return b
	}
	june := newBudget("June seeds", day(2024, 6, 1), day(2024, 6, 30))
	newBudget("Kharif seeds", day(2024, 6, 15), day(2024, 9, 30))
	newBudget("Rabi seeds", day(2024, 10, 1), day(2025, 3, 31))

	found, err := repo.FindActiveContaining(f.ctx, f.ownerID, f.seeds.ID, []time.Time{day(2024, 6, 30)})
	require.NoError(t, err)
	assert.Len(t, found, 2, "end date is inclusive")

	found, err = repo.FindActiveContaining(f.ctx, f.ownerID, f.seeds.ID, []time.Time{day(2024, 6, 2), day(2024, 11, 1)})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = repo.FindActiveContaining(f.ctx, f.ownerID, f.fuel.ID, []time.Time{day(2024, 6, 2)})
	require.NoError(t, err)
	assert.Empty(t, found)

	june.Deactivate()
	require.NoError(t, repo.SaveWithLock(f.ctx, june))

	current, err := repo.FindActiveOn(f.ctx, f.ownerID, time.Date(2024, 6, 20, 15, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, current, 1)
	assert.Equal(t, "Kharif seeds", current[0].Name)

	loaded, err := repo.FindByIDForUpdate(f.ctx, f.ownerID, current[0].ID)
	require.NoError(t, err)
	assert.True(t, loaded.ApplyRecomputedSpent(decimal.NewFromInt(420)))
	require.NoError(t, repo.SaveWithLock(f.ctx, loaded))

	reloaded, err := repo.FindByIDForOwner(f.ctx, f.ownerID, loaded.ID)
	require.NoError(t, err)
	assert.Equal(t, "420.00", reloaded.SpentAmount.StringFixed(2))
}

func TestGormReportRepository(t *testing.T) {
	f := newLedgerFixture(t)
	reports := f.repos.Reports()

	f.record(t, ledger.TransactionTypeExpense, 300, f.seeds, day(2024, 6, 3))
	f.record(t, ledger.TransactionTypeExpense, 100, f.seeds, day(2024, 6, 4))
	f.record(t, ledger.TransactionTypeExpense, 500, f.fuel, day(2024, 6, 5))
	f.record(t, ledger.TransactionTypeIncome, 2000, f.sales, day(2024, 6, 10))
	f.record(t, ledger.TransactionTypeIncome, 50, f.sales, day(2024, 5, 31))

	totals, err := reports.TotalsBetween(f.ctx, f.ownerID, day(2024, 6, 1), day(2024, 7, 1))
	require.NoError(t, err)
	assert.Equal(t, "2000.00", totals.Income.StringFixed(2))
	assert.Equal(t, "900.00", totals.Expense.StringFixed(2))
	assert.Equal(t, int64(4), totals.TransactionCount)

	byCategory, err := reports.CategoryTotalsBetween(f.ctx, f.ownerID, ledger.TransactionTypeExpense, day(2024, 6, 1), day(2024, 7, 1))
	require.NoError(t, err)
	require.Len(t, byCategory, 2)
	assert.Equal(t, "Fuel", byCategory[0].CategoryName)
	assert.Equal(t, "500.00", byCategory[0].Total.StringFixed(2))
	assert.Equal(t, f.seeds.ID, byCategory[1].CategoryID)
	assert.Equal(t, int64(2), byCategory[1].TransactionCount)

	transfers, err := reports.CategoryTotalsBetween(f.ctx, f.ownerID, ledger.TransactionTypeTransfer, day(2024, 6, 1), day(2024, 7, 1))
	require.NoError(t, err)
	assert.Empty(t, transfers)
}

func TestGormCategoryRepository(t *testing.T) {
	f := newLedgerFixture(t)
	repo := f.repos.Categories()

	found, err := repo.FindByName(f.ctx, ledger.CategoryKindIncome, ledger.CropSalesCategory)
	require.NoError(t, err)
	assert.Equal(t, f.sales.ID, found.ID)

	_, err = repo.FindByName(f.ctx, ledger.CategoryKindExpense, ledger.CropSalesCategory)
	assert.True(t, shared.IsNotFound(err))

	kind := ledger.CategoryKindExpense
	expenses, err := repo.FindAll(f.ctx, &kind)
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Equal(t, "Fuel", expenses[0].Name)

	duplicate := &ledger.Category{ID: uuid.New(), Name: "Seeds", Kind: ledger.CategoryKindExpense, IsActive: true, CreatedAt: time.Now().UTC()}
	assert.Error(t, repo.Save(f.ctx, duplicate))
}

func TestGormCropFinanceRepository(t *testing.T) {
	f := newLedgerFixture(t)
	repo := f.repos.Crops()

	newCrop := func(name, season string, year int) *ledger.CropFinance {
		c, err := ledger.NewCropFinance(f.ownerID, ledger.CropFinanceInput{
			CropName:  name,
			Season:    season,
			Year:      year,
			Costs:     ledger.CropCosts{Seed: decimal.NewFromInt(1000)},
			AreaAcres: decimal.NewFromInt(2),
		})
		require.NoError(t, err)
		require.NoError(t, repo.Save(f.ctx, c))
		return c
	}
	paddy := newCrop("paddy", "kharif", 2024)
	newCrop("wheat", "rabi", 2024)
	newCrop("Paddy", "Rabi", 2023)

	exists, err := repo.ExistsByKey(f.ctx, f.ownerID, "Paddy", "Kharif", 2024, nil)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByKey(f.ctx, f.ownerID, "Paddy", "Kharif", 2024, &paddy.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	crops, err := repo.FindAllForOwner(f.ctx, f.ownerID, ledger.CropFilter{
		Filter: shared.Filter{All: true, OrderBy: "year", OrderDir: "desc"},
		Crop:   "PAD",
	})
	require.NoError(t, err)
	require.Len(t, crops, 2)
	assert.Equal(t, 2024, crops[0].Year)

	crops, err = repo.FindAllForOwner(f.ctx, f.ownerID, ledger.CropFilter{
		Filter: shared.Filter{All: true},
		Season: "ab",
	})
	require.NoError(t, err)
	assert.Len(t, crops, 2)

	crops, err = repo.FindAllForOwner(f.ctx, f.ownerID, ledger.CropFilter{
		Filter: shared.Filter{All: true},
		Crop:   "%",
	})
	require.NoError(t, err)
	assert.Empty(t, crops, "LIKE wildcards in the filter are literal")

	loaded, err := repo.FindByIDForUpdate(f.ctx, f.ownerID, paddy.ID)
	require.NoError(t, err)
	qty := decimal.NewFromInt(40)
	require.NoError(t, loaded.RecordSale(valueobject.NewMoneyFromInt(1500), &qty))
	require.NoError(t, repo.SaveWithLock(f.ctx, loaded))

	reloaded, err := repo.FindByIDForOwner(f.ctx, f.ownerID, paddy.ID)
	require.NoError(t, err)
	assert.Equal(t, "1500.00", reloaded.TotalRevenue.StringFixed(2))
	assert.Equal(t, "500.00", reloaded.ProfitLoss().StringFixed(2))

	require.NoError(t, repo.Delete(f.ctx, f.ownerID, paddy.ID))
	assert.True(t, shared.IsNotFound(repo.Delete(f.ctx, f.ownerID, paddy.ID)))
}

func TestGormFinancialGoalRepository(t *testing.T) {
	f := newLedgerFixture(t)
	repo := f.repos.Goals()

	newGoal := func(name string, target int64, due time.Time) *ledger.FinancialGoal {
		g, err := ledger.NewFinancialGoal(f.ownerID, ledger.GoalInput{
			Name:         name,
			Type:         ledger.GoalTypeEquipment,
			TargetAmount: valueobject.NewMoneyFromInt(target),
			TargetDate:   due,
		})
		require.NoError(t, err)
		require.NoError(t, repo.Save(f.ctx, g))
		return g
	}
	tractor := newGoal("Tractor", 500000, day(2026, 3, 1))
	newGoal("Pump", 20000, day(2025, 1, 1))

	loaded, err := repo.FindByIDForUpdate(f.ctx, f.ownerID, tractor.ID)
	require.NoError(t, err)
	require.NoError(t, loaded.Contribute(valueobject.NewMoneyFromInt(500000)))
	require.NoError(t, repo.SaveWithLock(f.ctx, loaded))

	achieved, err := repo.CountByAchieved(f.ctx, f.ownerID, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), achieved)

	pending := false
	goals, err := repo.FindAllForOwner(f.ctx, f.ownerID, ledger.GoalFilter{
		Filter:   shared.Filter{All: true, OrderBy: "target_date", OrderDir: "asc"},
		Achieved: &pending,
	})
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "Pump", goals[0].Name)

	require.NoError(t, repo.Delete(f.ctx, f.ownerID, tractor.ID))
	_, err = repo.FindByIDForOwner(f.ctx, f.ownerID, tractor.ID)
	assert.True(t, shared.IsNotFound(err))
}
