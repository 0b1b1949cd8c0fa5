package ledger

import (
	"fmt"
	"strings"

	"github.com/farmledger/backend/internal/domain/shared"
	"github.com/farmledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType is the kind of money store an account represents
type AccountType string

const (
	AccountTypeSavings AccountType = "SAVINGS"
	AccountTypeCurrent AccountType = "CURRENT"
	AccountTypeLoan    AccountType = "LOAN"
	AccountTypeCredit  AccountType = "CREDIT"
	AccountTypeCash    AccountType = "CASH"
)

// IsValid checks if the account type is known
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeSavings, AccountTypeCurrent, AccountTypeLoan, AccountTypeCredit, AccountTypeCash:
		return true
	}
	return false
}

// DisplayName returns a human-readable name for the account type
func (t AccountType) DisplayName() string {
	switch t {
	case AccountTypeSavings:
		return "Savings Account"
	case AccountTypeCurrent:
		return "Current Account"
	case AccountTypeLoan:
		return "Loan Account"
	case AccountTypeCredit:
		return "Credit Account"
	case AccountTypeCash:
		return "Cash"
	default:
		return string(t)
	}
}

// Account is a named store of money owned by one farmer.
// CurrentBalance only moves through balance effects of ledger transactions.
type Account struct {
	shared.OwnedAggregateRoot
	Name           string
	Type           AccountType
	AccountNumber  string
	BankName       string
	OpeningBalance decimal.Decimal
	CurrentBalance decimal.Decimal
	IsActive       bool
}

// NewAccount creates an active account whose balance starts at openingBalance
func NewAccount(ownerID uuid.UUID, name string, accountType AccountType, openingBalance valueobject.Money) (*Account, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewValidationError("owner_id", "owner is required")
	}
	name = strings.TrimSpace(name)
	if err := validateAccountName(name); err != nil {
		return nil, err
	}
	if !accountType.IsValid() {
		return nil, shared.NewValidationError("account_type", "account type is not valid")
	}

	opening := openingBalance.Amount().Round(valueobject.Scale)
	return &Account{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		Name:               name,
		Type:               accountType,
		OpeningBalance:     opening,
		CurrentBalance:     opening,
		IsActive:           true,
	}, nil
}

func validateAccountName(name string) error {
	if name == "" {
		return shared.NewValidationError("account_name", "account name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewValidationError("account_name", "account name cannot exceed 100 characters")
	}
	return nil
}

// SetBankDetails sets the optional bank metadata
func (a *Account) SetBankDetails(accountNumber, bankName string) error {
	accountNumber = strings.TrimSpace(accountNumber)
	bankName = strings.TrimSpace(bankName)
	if len(accountNumber) > 50 {
		return shared.NewValidationError("account_number", "account number cannot exceed 50 characters")
	}
	if len(bankName) > 100 {
		return shared.NewValidationError("bank_name", "bank name cannot exceed 100 characters")
	}
	a.AccountNumber = accountNumber
	a.BankName = bankName
	return nil
}

// Update changes descriptive fields. Type and balances are not editable.
func (a *Account) Update(name, accountNumber, bankName string) error {
	name = strings.TrimSpace(name)
	if err := validateAccountName(name); err != nil {
		return err
	}
	if err := a.SetBankDetails(accountNumber, bankName); err != nil {
		return err
	}
	a.Name = name
	a.IncrementVersion()
	return nil
}

// Deactivate soft-deletes the account. Its history stays in the ledger.
func (a *Account) Deactivate() {
	if !a.IsActive {
		return
	}
	a.IsActive = false
	a.IncrementVersion()
}

// Apply adds a signed delta to the balance. The version is bumped once per
// save by the caller, not once per effect.
func (a *Account) Apply(delta decimal.Decimal) {
	a.CurrentBalance = a.CurrentBalance.Add(delta)
}

// Reverse undoes a previously applied delta
func (a *Account) Reverse(delta decimal.Decimal) {
	a.Apply(delta.Neg())
}

// CanCover reports whether the balance is at least amount
func (a *Account) CanCover(amount decimal.Decimal) bool {
	return a.CurrentBalance.GreaterThanOrEqual(amount)
}

// BalanceTolerance is the largest drift between a stored balance and its
// recomputation that is attributed to rounding
var BalanceTolerance = decimal.RequireFromString("0.005")

// VerifyBalance compares the stored balance with opening + netEffect
func (a *Account) VerifyBalance(netEffect decimal.Decimal) error {
	expected := a.OpeningBalance.Add(netEffect)
	if a.CurrentBalance.Sub(expected).Abs().GreaterThan(BalanceTolerance) {
		return shared.NewConsistencyError(fmt.Sprintf(
			"account %s balance %s disagrees with ledger total %s",
			a.ID, a.CurrentBalance.StringFixed(2), expected.StringFixed(2)))
	}
	return nil
}
