package ledger

import (
	"context"
	"fmt"

	"github.com/farmledger/backend/internal/domain/ledger"
	"github.com/farmledger/backend/internal/domain/shared"
	"github.com/farmledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// BudgetService manages category budgets
type BudgetService struct {
	deps       Deps
	reconciler *BudgetReconciler
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(deps Deps, reconciler *BudgetReconciler) *BudgetService {
	return &BudgetService{deps: deps.withDefaults(), reconciler: reconciler}
}

func toBudgetInput(req BudgetRequest) ledger.BudgetInput {
	return ledger.BudgetInput{
		Name:           req.BudgetName,
		CategoryID:     req.CategoryID,
		BudgetedAmount: valueobject.NewMoney(req.BudgetedAmount),
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
	}
}

func checkExpenseCategory(ctx context.Context, categories ledger.CategoryRepository, id uuid.UUID) error {
	category, err := categories.FindByID(ctx, id)
	if err != nil {
		if shared.IsNotFound(err) {
			return shared.NewValidationError("category_id", "category does not exist")
		}
		return err
	}
	if category.Kind != ledger.CategoryKindExpense {
		return shared.NewValidationError("category_id", "budgets can only track expense categories")
	}
	return nil
}

// CreateBudget creates a budget and computes its spent amount from the
// expenses already recorded in its window
func (s *BudgetService) CreateBudget(ctx context.Context, ownerID uuid.UUID, req BudgetRequest) (*BudgetResponse, error) {
	budget, err := ledger.NewBudget(ownerID, toBudgetInput(req))
	if err != nil {
		return nil, err
	}

	err = s.deps.mutate(ctx, func(repos Repositories) ([]shared.DomainEvent, error) {
		if err := checkExpenseCategory(ctx, repos.Categories(), budget.CategoryID); err != nil {
			return nil, err
		}
		if err := repos.Budgets().Save(ctx, budget); err != nil {
			return nil, fmt.Errorf("save budget: %w", err)
		}
		_, err := recomputeSpent(ctx, repos, budget)
		return nil, err
	})
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, budget)
}

// UpdateBudget edits a budget. Spent is recomputed in the same unit of work
// because the window or category may have moved.
func (s *BudgetService) UpdateBudget(ctx context.Context, ownerID, id uuid.UUID, req BudgetRequest) (*BudgetResponse, error) {
	in := toBudgetInput(req)
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var budget *ledger.Budget
	err := s.deps.mutate(ctx, func(repos Repositories) ([]shared.DomainEvent, error) {
		var err error
		budget, err = repos.Budgets().FindByIDForUpdate(ctx, ownerID, id)
		if err != nil {
			return nil, err
		}
		if err := checkExpenseCategory(ctx, repos.Categories(), in.CategoryID); err != nil {
			return nil, err
		}
		if err := budget.Update(in); err != nil {
			return nil, err
		}
		if err := repos.Budgets().SaveWithLock(ctx, budget); err != nil {
			return nil, fmt.Errorf("save budget: %w", err)
		}
		_, err = recomputeSpent(ctx, repos, budget)
		return nil, err
	})
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, budget)
}

// DeactivateBudget stops a budget from being tracked
func (s *BudgetService) DeactivateBudget(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.deps.mutate(ctx, func(repos Repositories) ([]shared.DomainEvent, error) {
		budget, err := repos.Budgets().FindByIDForUpdate(ctx, ownerID, id)
		if err != nil {
			return nil, err
		}
		if !budget.IsActive {
			return nil, nil
		}
		budget.Deactivate()
		return nil, repos.Budgets().SaveWithLock(ctx, budget)
	})
}

// GetBudget returns one budget of the farmer. An active budget is
// recomputed before it is returned.
func (s *BudgetService) GetBudget(ctx context.Context, ownerID, id uuid.UUID) (*BudgetResponse, error) {
	budget, err := s.load(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, budget)
}

func (s *BudgetService) load(ctx context.Context, ownerID, id uuid.UUID) (*ledger.Budget, error) {
	budget, err := s.deps.UoW.Read().Budgets().FindByIDForOwner(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if !budget.IsActive {
		return budget, nil
	}
	return s.reconciler.RecomputeBudget(ctx, ownerID, id)
}

// ListBudgets returns the farmer's budgets, newest window first, with the
// active ones recomputed
func (s *BudgetService) ListBudgets(ctx context.Context, ownerID uuid.UUID, filter BudgetListFilter) ([]BudgetResponse, error) {
	repos := s.deps.UoW.Read()
	budgets, err := repos.Budgets().FindAllForOwner(ctx, ownerID, ledger.BudgetFilter{
		Filter:          shared.Filter{All: true, OrderBy: "start_date", OrderDir: "desc"},
		IncludeInactive: filter.IncludeInactive,
		CategoryID:      filter.CategoryID,
	})
	if err != nil {
		return nil, err
	}
	budgets, err = s.reconciler.Refresh(ctx, budgets)
	if err != nil {
		return nil, err
	}
	names, err := categoryNames(ctx, repos.Categories())
	if err != nil {
		return nil, err
	}
	out := make([]BudgetResponse, len(budgets))
	for i := range budgets {
		out[i] = toBudgetResponse(&budgets[i], names)
	}
	return out, nil
}

// BudgetCurrent returns the active budgets whose window contains today,
// each recomputed before it is returned
func (s *BudgetService) BudgetCurrent(ctx context.Context, ownerID uuid.UUID) ([]BudgetResponse, error) {
	repos := s.deps.UoW.Read()
	budgets, err := repos.Budgets().FindActiveOn(ctx, ownerID, s.deps.today())
	if err != nil {
		return nil, err
	}
	names, err := categoryNames(ctx, repos.Categories())
	if err != nil {
		return nil, err
	}

	out := make([]BudgetResponse, 0, len(budgets))
	for _, b := range budgets {
		fresh, err := s.reconciler.RecomputeBudget(ctx, ownerID, b.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, toBudgetResponse(fresh, names))
	}
	return out, nil
}

// SpendingAnalysis returns a budget with its matching transactions and the
// projected spending at the current daily pace
func (s *BudgetService) SpendingAnalysis(ctx context.Context, ownerID, id uuid.UUID) (*SpendingAnalysisResponse, error) {
	repos := s.deps.UoW.Read()
	budget, err := s.load(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	expense := ledger.TransactionTypeExpense
	from := budget.StartDate
	to := budget.WindowEnd()
	txns, err := repos.Transactions().FindAllForOwner(ctx, ownerID, ledger.TransactionFilter{
		Filter:     shared.Filter{All: true, OrderBy: "transaction_date", OrderDir: "desc"},
		Type:       &expense,
		CategoryID: &budget.CategoryID,
		From:       &from,
		To:         &to,
	})
	if err != nil {
		return nil, err
	}
	names, err := categoryNames(ctx, repos.Categories())
	if err != nil {
		return nil, err
	}

	items := make([]TransactionResponse, len(txns))
	for i := range txns {
		items[i] = toTransactionResponse(&txns[i], names)
	}
	analysis := budget.Analyze(s.deps.today())
	return &SpendingAnalysisResponse{
		Budget:            toBudgetResponse(budget, names),
		Transactions:      items,
		DailyAverage:      analysis.DailyAverage,
		RemainingDays:     analysis.RemainingDays,
		ProjectedSpending: analysis.ProjectedSpending,
	}, nil
}

func (s *BudgetService) respond(ctx context.Context, budget *ledger.Budget) (*BudgetResponse, error) {
	names, err := categoryNames(ctx, s.deps.UoW.Read().Categories())
	if err != nil {
		return nil, err
	}
	resp := toBudgetResponse(budget, names)
	return &resp, nil
}
