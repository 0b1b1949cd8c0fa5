package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/farmledger/backend/internal/domain/ledger"
	"github.com/farmledger/backend/internal/domain/shared"
	"github.com/farmledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormAccountRepository_FindByIDForUpdate_LocksRow(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	ownerID := uuid.New()
	accountID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT \* FROM "finance_accounts" WHERE .*owner_id = .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "created_at", "updated_at", "version", "owner_id",
			"account_name", "account_type", "opening_balance", "current_balance", "is_active",
		}).AddRow(accountID.String(), now, now, 3, ownerID.String(), "Village Bank", "SAVINGS", "100.00", "450.50", true))

	repo := NewGormAccountRepository(db.DB)
	account, err := repo.FindByIDForUpdate(context.Background(), ownerID, accountID)
	require.NoError(t, err)

	assert.Equal(t, accountID, account.ID)
	assert.Equal(t, 3, account.Version)
	assert.Equal(t, "Village Bank", account.Name)
	assert.True(t, account.CurrentBalance.Equal(decimal.RequireFromString("450.50")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormAccountRepository_FindByIDForOwner_NotFound(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT \* FROM "finance_accounts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := NewGormAccountRepository(db.DB)
	_, err := repo.FindByIDForOwner(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	assert.True(t, shared.IsNotFound(err))
}

func TestGormAccountRepository_SaveWithLock(t *testing.T) {
	newAccount := func(t *testing.T) *ledger.Account {
		a, err := ledger.NewAccount(uuid.New(), "Cash Box", ledger.AccountTypeCash, valueobject.NewMoneyFromInt(100))
		require.NoError(t, err)
		a.Apply(decimal.NewFromInt(50))
		a.IncrementVersion()
		return a
	}

	t.Run("updates when stored version is one behind", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "finance_accounts" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := NewGormAccountRepository(db.DB).SaveWithLock(context.Background(), newAccount(t))
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no matching row is a concurrency conflict", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "finance_accounts" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewGormAccountRepository(db.DB).SaveWithLock(context.Background(), newAccount(t))
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.True(t, shared.IsConflict(err))
	})
}

func TestGormAccountRepository_SQLite(t *testing.T) {
	db := newSQLiteDatabase(t)
	repo := NewGormAccountRepository(db.DB)
	ctx := context.Background()
	ownerID := uuid.New()

	savings, err := ledger.NewAccount(ownerID, "Savings", ledger.AccountTypeSavings, valueobject.NewMoneyFromInt(500))
	require.NoError(t, err)
	cash, err := ledger.NewAccount(ownerID, "Cash", ledger.AccountTypeCash, valueobject.NewMoneyFromInt(100))
	require.NoError(t, err)
	other, err := ledger.NewAccount(uuid.New(), "Neighbour", ledger.AccountTypeCash, valueobject.NewMoneyFromInt(900))
	require.NoError(t, err)
	for _, a := range []*ledger.Account{savings, cash, other} {
		require.NoError(t, repo.Save(ctx, a))
	}

	t.Run("owner scoping hides other farmers' accounts", func(t *testing.T) {
		_, err := repo.FindByIDForOwner(ctx, ownerID, other.ID)
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("lists active accounts by name", func(t *testing.T) {
		accounts, err := repo.FindAllForOwner(ctx, ownerID, ledger.AccountFilter{
			Filter: shared.Filter{All: true, OrderBy: "account_name", OrderDir: "asc"},
		})
		require.NoError(t, err)
		require.Len(t, accounts, 2)
		assert.Equal(t, "Cash", accounts[0].Name)
		assert.Equal(t, "Savings", accounts[1].Name)
	})

	t.Run("sums active balances", func(t *testing.T) {
		total, err := repo.SumActiveBalances(ctx, ownerID)
		require.NoError(t, err)
		assert.Equal(t, "600.00", total.StringFixed(2))
	})

	t.Run("version check rejects stale writes", func(t *testing.T) {
		loaded, err := repo.FindByIDForUpdate(ctx, ownerID, cash.ID)
		require.NoError(t, err)
		stale := *loaded

		loaded.Apply(decimal.NewFromInt(25))
		loaded.IncrementVersion()
		require.NoError(t, repo.SaveWithLock(ctx, loaded))

		stale.Apply(decimal.NewFromInt(10))
		stale.IncrementVersion()
		assert.ErrorIs(t, repo.SaveWithLock(ctx, &stale), shared.ErrConcurrencyConflict)

		reloaded, err := repo.FindByIDForOwner(ctx, ownerID, cash.ID)
		require.NoError(t, err)
		assert.Equal(t, "125.00", reloaded.CurrentBalance.StringFixed(2))
		assert.Equal(t, 2, reloaded.Version)
	})

	t.Run("deactivated accounts drop out of totals", func(t *testing.T) {
		loaded, err := repo.FindByIDForOwner(ctx, ownerID, savings.ID)
		require.NoError(t, err)
		loaded.Deactivate()
		require.NoError(t, repo.SaveWithLock(ctx, loaded))

		total, err := repo.SumActiveBalances(ctx, ownerID)
		require.NoError(t, err)
		assert.Equal(t, "125.00", total.StringFixed(2))

		all, err := repo.FindAllForOwner(ctx, ownerID, ledger.AccountFilter{
			Filter:          shared.Filter{All: true},
			IncludeInactive: true,
		})
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}
