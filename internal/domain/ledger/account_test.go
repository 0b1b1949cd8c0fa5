package ledger

import (
	"testing"

	"github.com/farmledger/backend/internal/domain/shared"
	"github.com/farmledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountType_IsValid(t *testing.T) {
	for _, at := range []AccountType{AccountTypeSavings, AccountTypeCurrent, AccountTypeLoan, AccountTypeCredit, AccountTypeCash} {
		assert.True(t, at.IsValid(), at)
	}
	assert.False(t, AccountType("WALLET").IsValid())
	assert.Equal(t, "Savings Account", AccountTypeSavings.DisplayName())
}

func TestNewAccount(t *testing.T) {
	owner := uuid.New()

	acc, err := NewAccount(owner, "  SBI Savings ", AccountTypeSavings, valueobject.NewMoneyFromInt(500))
	require.NoError(t, err)
	assert.Equal(t, "SBI Savings", acc.Name)
	assert.True(t, acc.IsActive)
	assert.True(t, acc.CurrentBalance.Equal(decimal.NewFromInt(500)))
	assert.True(t, acc.OpeningBalance.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, 1, acc.Version)

	_, err = NewAccount(owner, "", AccountTypeCash, valueobject.Zero())
	assert.True(t, shared.IsValidation(err))

	_, err = NewAccount(owner, "Wallet", AccountType("WALLET"), valueobject.Zero())
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "account_type", de.Field)
}

func TestAccount_ApplyReverse(t *testing.T) {
	acc, err := NewAccount(uuid.New(), "Cash box", AccountTypeCash, valueobject.NewMoneyFromInt(100))
	require.NoError(t, err)

	acc.Apply(decimal.NewFromInt(-40))
	assert.True(t, acc.CurrentBalance.Equal(decimal.NewFromInt(60)))

	acc.Reverse(decimal.NewFromInt(-40))
	assert.True(t, acc.CurrentBalance.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 1, acc.Version)

	assert.True(t, acc.CanCover(decimal.NewFromInt(100)))
	assert.False(t, acc.CanCover(decimal.RequireFromString("100.01")))
}

func TestAccount_VerifyBalance(t *testing.T) {
	acc, err := NewAccount(uuid.New(), "Cash box", AccountTypeCash, valueobject.NewMoneyFromInt(100))
	require.NoError(t, err)
	acc.Apply(decimal.NewFromInt(50))

	assert.NoError(t, acc.VerifyBalance(decimal.NewFromInt(50)))
	assert.NoError(t, acc.VerifyBalance(decimal.RequireFromString("50.004")), "sub-tolerance drift is rounding")

	err = acc.VerifyBalance(decimal.NewFromInt(40))
	assert.True(t, shared.IsConsistency(err))
}

func TestAccount_UpdateAndDeactivate(t *testing.T) {
	acc, err := NewAccount(uuid.New(), "Cash box", AccountTypeCash, valueobject.Zero())
	require.NoError(t, err)

	require.NoError(t, acc.Update("Kisan Credit", "1234", "Canara Bank"))
	assert.Equal(t, "Kisan Credit", acc.Name)
	assert.Equal(t, "Canara Bank", acc.BankName)

	acc.Deactivate()
	assert.False(t, acc.IsActive)
	v := acc.Version
	acc.Deactivate()
	assert.Equal(t, v, acc.Version)
}
