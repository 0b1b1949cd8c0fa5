package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/farmledger/backend/internal/domain/shared"
	"github.com/farmledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType determines the sign a transaction's amount carries on its accounts
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "INCOME"
	TransactionTypeExpense  TransactionType = "EXPENSE"
	TransactionTypeTransfer TransactionType = "TRANSFER"
)

// IsValid checks if the transaction type is known
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeTransfer:
		return true
	}
	return false
}

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// ParseTransactionType accepts any letter case
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", shared.NewValidationError("transaction_type", "transaction type must be INCOME, EXPENSE or TRANSFER")
	}
	return t, nil
}

// Transaction is one entry of the ledger. Amount is always positive; the
// sign on each account follows from Type.
type Transaction struct {
	shared.OwnedAggregateRoot
	AccountID         uuid.UUID
	Type              TransactionType
	Amount            decimal.Decimal
	Description       string
	ExpenseCategoryID *uuid.UUID
	IncomeCategoryID  *uuid.UUID
	ToAccountID       *uuid.UUID
	TransactionDate   time.Time
	ReferenceNumber   string
	Notes             string
	ReceiptKey        string
	DeletedAt         *time.Time
}

// TransactionInput carries every editable field of a transaction
type TransactionInput struct {
	AccountID       uuid.UUID
	Type            TransactionType
	Amount          valueobject.Money
	Description     string
	CategoryID      *uuid.UUID
	ToAccountID     *uuid.UUID
	TransactionDate time.Time
	ReferenceNumber string
	Notes           string
}

// Validate checks the shape rules that do not need the store
func (in TransactionInput) Validate() error {
	if in.AccountID == uuid.Nil {
		return shared.NewValidationError("account_id", "account is required")
	}
	if !in.Type.IsValid() {
		return shared.NewValidationError("transaction_type", "transaction type must be INCOME, EXPENSE or TRANSFER")
	}
	amount := in.Amount.Amount()
	if !amount.IsPositive() {
		return shared.NewValidationError("amount", "amount must be positive")
	}
	if err := checkScale("amount", amount); err != nil {
		return err
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return shared.NewValidationError("description", "description cannot be empty")
	}
	if len(desc) > 500 {
		return shared.NewValidationError("description", "description cannot exceed 500 characters")
	}
	if in.TransactionDate.IsZero() {
		return shared.NewValidationError("transaction_date", "transaction date is required")
	}
	if len(in.ReferenceNumber) > 100 {
		return shared.NewValidationError("reference_number", "reference number cannot exceed 100 characters")
	}

	switch in.Type {
	case TransactionTypeTransfer:
		if in.CategoryID != nil {
			return shared.NewValidationError("category_id", "category is not allowed for transfer transactions")
		}
		if in.ToAccountID == nil || *in.ToAccountID == uuid.Nil {
			return shared.NewValidationError("to_account_id", "destination account is required for transfer transactions")
		}
		if *in.ToAccountID == in.AccountID {
			return shared.NewValidationError("to_account_id", "source and destination accounts cannot be the same")
		}
	default:
		if in.CategoryID == nil || *in.CategoryID == uuid.Nil {
			return shared.NewValidationError("category_id",
				"category is required for "+strings.ToLower(string(in.Type))+" transactions")
		}
		if in.ToAccountID != nil {
			return shared.NewValidationError("to_account_id", "destination account is only allowed for transfer transactions")
		}
	}
	return nil
}

// NewTransaction validates input and creates a transaction
func NewTransaction(ownerID uuid.UUID, in TransactionInput) (*Transaction, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewValidationError("owner_id", "owner is required")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	t := &Transaction{OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID)}
	t.assign(in)
	t.AddDomainEvent(NewTransactionRecordedEvent(t))
	return t, nil
}

func (t *Transaction) assign(in TransactionInput) {
	t.AccountID = in.AccountID
	t.Type = in.Type
	t.Amount = in.Amount.Amount()
	t.Description = strings.TrimSpace(in.Description)
	t.TransactionDate = WallTime(in.TransactionDate)
	t.ReferenceNumber = strings.TrimSpace(in.ReferenceNumber)
	t.Notes = in.Notes
	t.ExpenseCategoryID = nil
	t.IncomeCategoryID = nil
	t.ToAccountID = nil

	switch in.Type {
	case TransactionTypeExpense:
		id := *in.CategoryID
		t.ExpenseCategoryID = &id
	case TransactionTypeIncome:
		id := *in.CategoryID
		t.IncomeCategoryID = &id
	case TransactionTypeTransfer:
		id := *in.ToAccountID
		t.ToAccountID = &id
	}
}

// CategoryID returns whichever category field the type uses
func (t *Transaction) CategoryID() *uuid.UUID {
	if t.ExpenseCategoryID != nil {
		return t.ExpenseCategoryID
	}
	return t.IncomeCategoryID
}

// IsDeleted reports whether the transaction was removed from the ledger
func (t *Transaction) IsDeleted() bool {
	return t.DeletedAt != nil
}

// Edit replaces every editable field. The owner never changes.
func (t *Transaction) Edit(in TransactionInput) error {
	if t.IsDeleted() {
		return shared.NewValidationError("id", "deleted transactions cannot be edited")
	}
	if err := in.Validate(); err != nil {
		return err
	}
	before := t.Snapshot()
	t.assign(in)
	t.IncrementVersion()
	t.AddDomainEvent(NewTransactionEditedEvent(t, before))
	return nil
}

// MarkDeleted soft-deletes the transaction
func (t *Transaction) MarkDeleted(at time.Time) {
	if t.IsDeleted() {
		return
	}
	deletedAt := at.UTC()
	t.DeletedAt = &deletedAt
	t.IncrementVersion()
	t.AddDomainEvent(NewTransactionDeletedEvent(t))
}

// AttachReceipt records the object key of an uploaded receipt image
func (t *Transaction) AttachReceipt(key string) {
	t.ReceiptKey = key
	t.IncrementVersion()
}

// Effects returns the balance effects the transaction has on its accounts
func (t *Transaction) Effects() []BalanceEffect {
	return t.Snapshot().Effects()
}

// TransactionSnapshot is the balance- and budget-relevant state of a transaction at one point in time
type TransactionSnapshot struct {
	ID              uuid.UUID       `json:"id"`
	OwnerID         uuid.UUID       `json:"owner_id"`
	AccountID       uuid.UUID       `json:"account_id"`
	ToAccountID     *uuid.UUID      `json:"to_account_id,omitempty"`
	Type            TransactionType `json:"transaction_type"`
	Amount          decimal.Decimal `json:"amount"`
	CategoryID      *uuid.UUID      `json:"category_id,omitempty"`
	TransactionDate time.Time       `json:"transaction_date"`
}

// Snapshot captures the current state
func (t *Transaction) Snapshot() TransactionSnapshot {
	s := TransactionSnapshot{
		ID:              t.ID,
		OwnerID:         t.OwnerID,
		AccountID:       t.AccountID,
		Type:            t.Type,
		Amount:          t.Amount,
		TransactionDate: t.TransactionDate,
	}
	if t.ToAccountID != nil {
		id := *t.ToAccountID
		s.ToAccountID = &id
	}
	if c := t.CategoryID(); c != nil {
		id := *c
		s.CategoryID = &id
	}
	return s
}

// IsExpense reports whether the snapshot counts toward budgets
func (s TransactionSnapshot) IsExpense() bool {
	return s.Type == TransactionTypeExpense && s.CategoryID != nil
}

// checkScale rejects amounts the ledger columns would round
func checkScale(field string, amount decimal.Decimal) error {
	if !valueobject.FitsScale(amount) {
		return shared.NewValidationError(field, fmt.Sprintf("%s cannot have more than %d decimal places", field, valueobject.Scale))
	}
	return nil
}
