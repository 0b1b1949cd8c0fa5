package ledger

import (
	"github.com/farmledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type names used on events
const (
	AggregateTypeTransaction = "Transaction"
	AggregateTypeCropFinance = "CropFinance"
	AggregateTypeGoal        = "FinancialGoal"
)

// Event type names
const (
	EventTypeTransactionRecorded   = "ledger.transaction.recorded"
	EventTypeTransactionEdited     = "ledger.transaction.edited"
	EventTypeTransactionDeleted    = "ledger.transaction.deleted"
	EventTypeCropSaleRecorded      = "ledger.crop.sale_recorded"
	EventTypeGoalContributionAdded = "ledger.goal.contribution_added"
)

// TransactionEvent is implemented by every event that changes the ledger.
// Snapshots returns each state (prior and new) the event touched.
type TransactionEvent interface {
	shared.DomainEvent
	Snapshots() []TransactionSnapshot
}

// TransactionRecordedEvent is raised when a transaction is created
type TransactionRecordedEvent struct {
	shared.BaseDomainEvent
	Transaction TransactionSnapshot `json:"transaction"`
}

// NewTransactionRecordedEvent creates a TransactionRecordedEvent
func NewTransactionRecordedEvent(t *Transaction) *TransactionRecordedEvent {
	return &TransactionRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionRecorded, AggregateTypeTransaction, t.ID, t.OwnerID),
		Transaction:     t.Snapshot(),
	}
}

// Snapshots implements TransactionEvent
func (e *TransactionRecordedEvent) Snapshots() []TransactionSnapshot {
	return []TransactionSnapshot{e.Transaction}
}

// TransactionEditedEvent is raised when a transaction is edited
type TransactionEditedEvent struct {
	shared.BaseDomainEvent
	Before TransactionSnapshot `json:"before"`
	After  TransactionSnapshot `json:"after"`
}

// NewTransactionEditedEvent creates a TransactionEditedEvent
func NewTransactionEditedEvent(t *Transaction, before TransactionSnapshot) *TransactionEditedEvent {
	return &TransactionEditedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionEdited, AggregateTypeTransaction, t.ID, t.OwnerID),
		Before:          before,
		After:           t.Snapshot(),
	}
}

// Snapshots implements TransactionEvent
func (e *TransactionEditedEvent) Snapshots() []TransactionSnapshot {
	return []TransactionSnapshot{e.Before, e.After}
}

// TransactionDeletedEvent is raised when a transaction is removed
type TransactionDeletedEvent struct {
	shared.BaseDomainEvent
	Transaction TransactionSnapshot `json:"transaction"`
}

// NewTransactionDeletedEvent creates a TransactionDeletedEvent
func NewTransactionDeletedEvent(t *Transaction) *TransactionDeletedEvent {
	return &TransactionDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionDeleted, AggregateTypeTransaction, t.ID, t.OwnerID),
		Transaction:     t.Snapshot(),
	}
}

// Snapshots implements TransactionEvent
func (e *TransactionDeletedEvent) Snapshots() []TransactionSnapshot {
	return []TransactionSnapshot{e.Transaction}
}

// CropSaleRecordedEvent is raised when revenue is booked against a crop
type CropSaleRecordedEvent struct {
	shared.BaseDomainEvent
	CropName     string           `json:"crop_name"`
	Season       string           `json:"season"`
	Year         int              `json:"year"`
	Amount       decimal.Decimal  `json:"amount"`
	Quantity     *decimal.Decimal `json:"quantity,omitempty"`
	TotalRevenue decimal.Decimal  `json:"total_revenue"`
}

// NewCropSaleRecordedEvent creates a CropSaleRecordedEvent
func NewCropSaleRecordedEvent(c *CropFinance, amount decimal.Decimal, quantity *decimal.Decimal) *CropSaleRecordedEvent {
	return &CropSaleRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCropSaleRecorded, AggregateTypeCropFinance, c.ID, c.OwnerID),
		CropName:        c.CropName,
		Season:          c.Season,
		Year:            c.Year,
		Amount:          amount,
		Quantity:        quantity,
		TotalRevenue:    c.TotalRevenue,
	}
}

// GoalContributionAddedEvent is raised for each contribution to a goal
type GoalContributionAddedEvent struct {
	shared.BaseDomainEvent
	Amount        decimal.Decimal `json:"amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	IsAchieved    bool            `json:"is_achieved"`
	// JustAchieved is true only for the contribution that first reached the target
	JustAchieved bool `json:"just_achieved"`
}

// NewGoalContributionAddedEvent creates a GoalContributionAddedEvent
func NewGoalContributionAddedEvent(g *FinancialGoal, amount decimal.Decimal, justAchieved bool) *GoalContributionAddedEvent {
	return &GoalContributionAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGoalContributionAdded, AggregateTypeGoal, g.ID, g.OwnerID),
		Amount:          amount,
		CurrentAmount:   g.CurrentAmount,
		IsAchieved:      g.IsAchieved,
		JustAchieved:    justAchieved,
	}
}

var (
	_ TransactionEvent   = (*TransactionRecordedEvent)(nil)
	_ TransactionEvent   = (*TransactionEditedEvent)(nil)
	_ TransactionEvent   = (*TransactionDeletedEvent)(nil)
	_ shared.DomainEvent = (*CropSaleRecordedEvent)(nil)
	_ shared.DomainEvent = (*GoalContributionAddedEvent)(nil)
)
