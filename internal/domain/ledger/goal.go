package ledger

import (
	"strings"
	"time"

	"github.com/farmledger/backend/internal/domain/shared"
	"github.com/farmledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GoalType classifies what a farmer is saving for
type GoalType string

const (
	GoalTypeSavings   GoalType = "SAVINGS"
	GoalTypeEquipment GoalType = "EQUIPMENT"
	GoalTypeLand      GoalType = "LAND"
	GoalTypeEducation GoalType = "EDUCATION"
	GoalTypeEmergency GoalType = "EMERGENCY"
	GoalTypeOther     GoalType = "OTHER"
)

// IsValid checks if the goal type is known
func (t GoalType) IsValid() bool {
	switch t {
	case GoalTypeSavings, GoalTypeEquipment, GoalTypeLand, GoalTypeEducation, GoalTypeEmergency, GoalTypeOther:
		return true
	}
	return false
}

// DisplayName returns a human-readable name for the goal type
func (t GoalType) DisplayName() string {
	switch t {
	case GoalTypeSavings:
		return "Savings Goal"
	case GoalTypeEquipment:
		return "Equipment Purchase"
	case GoalTypeLand:
		return "Land Purchase"
	case GoalTypeEducation:
		return "Education"
	case GoalTypeEmergency:
		return "Emergency Fund"
	case GoalTypeOther:
		return "Other"
	default:
		return string(t)
	}
}

// FinancialGoal accumulates contributions toward a target amount
type FinancialGoal struct {
	shared.OwnedAggregateRoot
	Name          string
	Type          GoalType
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	TargetDate    time.Time
	Description   string
	IsAchieved    bool
}

// GoalInput carries the editable fields of a goal
type GoalInput struct {
	Name         string
	Type         GoalType
	TargetAmount valueobject.Money
	TargetDate   time.Time
	Description  string
}

// Validate checks the goal's shape
func (in GoalInput) Validate() error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return shared.NewValidationError("goal_name", "goal name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewValidationError("goal_name", "goal name cannot exceed 100 characters")
	}
	if !in.Type.IsValid() {
		return shared.NewValidationError("goal_type", "goal type is not valid")
	}
	if !in.TargetAmount.IsPositive() {
		return shared.NewValidationError("target_amount", "target amount must be positive")
	}
	if err := checkScale("target_amount", in.TargetAmount.Amount()); err != nil {
		return err
	}
	if in.TargetDate.IsZero() {
		return shared.NewValidationError("target_date", "target date is required")
	}
	return nil
}

// NewFinancialGoal creates a goal with nothing saved yet
func NewFinancialGoal(ownerID uuid.UUID, in GoalInput) (*FinancialGoal, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewValidationError("owner_id", "owner is required")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	g := &FinancialGoal{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		CurrentAmount:      decimal.Zero,
	}
	g.assign(in)
	g.evaluate()
	return g, nil
}

func (g *FinancialGoal) assign(in GoalInput) {
	g.Name = strings.TrimSpace(in.Name)
	g.Type = in.Type
	g.TargetAmount = in.TargetAmount.Amount()
	g.TargetDate = DateOf(in.TargetDate)
	g.Description = in.Description
}

// evaluate keeps the achieved flag equal to current >= target
func (g *FinancialGoal) evaluate() bool {
	was := g.IsAchieved
	g.IsAchieved = g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount)
	return !was && g.IsAchieved
}

// Update replaces the editable fields and re-evaluates the achieved flag
func (g *FinancialGoal) Update(in GoalInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	g.assign(in)
	g.evaluate()
	g.IncrementVersion()
	return nil
}

// Contribute adds a positive amount toward the target
func (g *FinancialGoal) Contribute(amount valueobject.Money) error {
	if !amount.IsPositive() {
		return shared.NewValidationError("amount", "contribution amount must be positive")
	}
	if err := checkScale("amount", amount.Amount()); err != nil {
		return err
	}
	g.CurrentAmount = g.CurrentAmount.Add(amount.Amount())
	justAchieved := g.evaluate()
	g.IncrementVersion()
	g.AddDomainEvent(NewGoalContributionAddedEvent(g, amount.Amount(), justAchieved))
	return nil
}

// RemainingAmount is what is still needed, never negative
func (g *FinancialGoal) RemainingAmount() decimal.Decimal {
	remaining := g.TargetAmount.Sub(g.CurrentAmount)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// PercentageAchieved is current as a percentage of target, 0 for a zero target
func (g *FinancialGoal) PercentageAchieved() decimal.Decimal {
	return valueobject.Percentage(g.CurrentAmount, g.TargetAmount)
}
