// Package testutil provides helpers shared by the integration suite: a
// pinned clock, deterministic ids, ledger fixtures and polling assertions.
package testutil

import (
	"context"
	"testing"
	"time"

	appledger "github.com/farmledger/backend/internal/application/ledger"
	"github.com/farmledger/backend/internal/domain/identity"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Password is the password every fixture farmer is created with
const Password = "harvest-2024"

// NewTestUUID generates a deterministic UUID for testing.
// Uses the provided seed string to create a reproducible UUID.
func NewTestUUID(seed string) uuid.UUID {
	namespace := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	return uuid.NewSHA1(namespace, []byte(seed))
}

// FixedClock returns a clock pinned to t
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// Date is midnight UTC of the given day
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FarmerStore is the part of the farmer repository fixtures need
type FarmerStore interface {
	Create(ctx context.Context, farmer *identity.Farmer) error
}

// CreateFarmer stores a farmer named username and returns its id
func CreateFarmer(t *testing.T, farmers FarmerStore, username string) uuid.UUID {
	t.Helper()
	farmer, err := identity.NewFarmer(username, Password, username)
	require.NoError(t, err)
	require.NoError(t, farmers.Create(context.Background(), farmer))
	return farmer.ID
}

// CreateAccount opens a cash account with the given opening balance
func CreateAccount(t *testing.T, accounts *appledger.AccountService, ownerID uuid.UUID, name string, opening int64) *appledger.AccountResponse {
	t.Helper()
	balance := decimal.NewFromInt(opening)
	account, err := accounts.CreateAccount(context.Background(), ownerID, appledger.CreateAccountRequest{
		AccountName:    name,
		AccountType:    "CASH",
		OpeningBalance: &balance,
	})
	require.NoError(t, err)
	return account
}

// ContextWithTimeout creates a context with a timeout for tests.
func ContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// RequireEventually retries condition until it passes or timeout elapses
func RequireEventually(t *testing.T, condition func() bool, timeout, interval time.Duration, msgAndArgs ...any) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(interval)
	}

	require.Fail(t, "Condition not met within timeout", msgAndArgs...)
}
