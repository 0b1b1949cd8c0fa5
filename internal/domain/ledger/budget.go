package ledger

import (
	"strings"
	"time"

	"github.com/farmledger/backend/internal/domain/shared"
	"github.com/farmledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Budget caps spending in one expense category over an inclusive date window.
// SpentAmount is a derived aggregate that only the reconciler writes.
type Budget struct {
	shared.OwnedAggregateRoot
	Name           string
	CategoryID     uuid.UUID
	BudgetedAmount decimal.Decimal
	SpentAmount    decimal.Decimal
	StartDate      time.Time
	EndDate        time.Time
	IsActive       bool
}

// BudgetInput carries the editable fields of a budget
type BudgetInput struct {
	Name           string
	CategoryID     uuid.UUID
	BudgetedAmount valueobject.Money
	StartDate      time.Time
	EndDate        time.Time
}

// Validate checks the budget's shape
func (in BudgetInput) Validate() error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return shared.NewValidationError("name", "budget name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewValidationError("name", "budget name cannot exceed 100 characters")
	}
	if in.CategoryID == uuid.Nil {
		return shared.NewValidationError("category_id", "expense category is required")
	}
	if !in.BudgetedAmount.IsPositive() {
		return shared.NewValidationError("budgeted_amount", "budget amount must be positive")
	}
	if err := checkScale("budgeted_amount", in.BudgetedAmount.Amount()); err != nil {
		return err
	}
	if in.StartDate.IsZero() {
		return shared.NewValidationError("start_date", "start date is required")
	}
	if in.EndDate.IsZero() {
		return shared.NewValidationError("end_date", "end date is required")
	}
	if DateOf(in.EndDate).Before(DateOf(in.StartDate)) {
		return shared.NewValidationError("end_date", "end date must not be before start date")
	}
	return nil
}

// NewBudget creates an active budget with nothing spent yet
func NewBudget(ownerID uuid.UUID, in BudgetInput) (*Budget, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewValidationError("owner_id", "owner is required")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	b := &Budget{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		SpentAmount:        decimal.Zero,
		IsActive:           true,
	}
	b.assign(in)
	return b, nil
}

func (b *Budget) assign(in BudgetInput) {
	b.Name = strings.TrimSpace(in.Name)
	b.CategoryID = in.CategoryID
	b.BudgetedAmount = in.BudgetedAmount.Amount()
	b.StartDate = DateOf(in.StartDate)
	b.EndDate = DateOf(in.EndDate)
}

// Update replaces the editable fields. The caller recomputes spent afterwards
// because the window or category may have moved.
func (b *Budget) Update(in BudgetInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	b.assign(in)
	b.IncrementVersion()
	return nil
}

// Deactivate stops the budget from being reconciled or reported as current
func (b *Budget) Deactivate() {
	if !b.IsActive {
		return
	}
	b.IsActive = false
	b.IncrementVersion()
}

// Contains reports whether t falls on a day inside the inclusive window
func (b *Budget) Contains(t time.Time) bool {
	d := DateOf(t)
	return !d.Before(b.StartDate) && !d.After(b.EndDate)
}

// WindowEnd is the exclusive upper bound of the window: midnight after EndDate
func (b *Budget) WindowEnd() time.Time {
	return b.EndDate.AddDate(0, 0, 1)
}

// ApplyRecomputedSpent stores a freshly aggregated spent total and reports
// whether it changed
func (b *Budget) ApplyRecomputedSpent(total decimal.Decimal) bool {
	if b.SpentAmount.Equal(total) {
		return false
	}
	b.SpentAmount = total
	b.IncrementVersion()
	return true
}

// RemainingAmount is budgeted minus spent; negative when over budget
func (b *Budget) RemainingAmount() decimal.Decimal {
	return b.BudgetedAmount.Sub(b.SpentAmount)
}

// PercentageUsed is spent as a percentage of budgeted, 0 when nothing is budgeted
func (b *Budget) PercentageUsed() decimal.Decimal {
	return valueobject.Percentage(b.SpentAmount, b.BudgetedAmount)
}

// IsOverBudget reports whether spending exceeded the budgeted amount
func (b *Budget) IsOverBudget() bool {
	return b.SpentAmount.GreaterThan(b.BudgetedAmount)
}

// SpendingAnalysis projects spending to the end of the window
type SpendingAnalysis struct {
	DailyAverage      decimal.Decimal
	RemainingDays     int
	ProjectedSpending decimal.Decimal
}

// Analyze computes the spending pace as of today
func (b *Budget) Analyze(today time.Time) SpendingAnalysis {
	elapsed := max(DaysBetween(b.StartDate, today), 1)
	remaining := max(DaysBetween(today, b.EndDate), 0)

	daily := b.SpentAmount.Div(decimal.NewFromInt(int64(elapsed)))
	projected := b.SpentAmount.Add(daily.Mul(decimal.NewFromInt(int64(remaining))))
	return SpendingAnalysis{
		DailyAverage:      daily.Round(valueobject.Scale),
		RemainingDays:     remaining,
		ProjectedSpending: projected.Round(valueobject.Scale),
	}
}
