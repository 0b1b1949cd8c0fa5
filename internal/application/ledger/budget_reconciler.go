package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/farmledger/backend/internal/domain/ledger"
	"github.com/farmledger/backend/internal/domain/shared"
	"github.com/farmledger/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BudgetReconciler keeps budget spent amounts equal to the sum of expense
// transactions in each budget's category and window. It runs as a
// post-commit hook and recomputes by full aggregation, so running it twice
// is harmless.
type BudgetReconciler struct {
	deps Deps
}

// NewBudgetReconciler creates a new BudgetReconciler. deps.Hooks is ignored.
func NewBudgetReconciler(deps Deps) *BudgetReconciler {
	deps.Hooks = nil
	return &BudgetReconciler{deps: deps.withDefaults()}
}

// Name implements PostCommitHook
func (r *BudgetReconciler) Name() string {
	return "budget_reconciler"
}

type budgetKey struct {
	ownerID    uuid.UUID
	categoryID uuid.UUID
}

// AfterCommit recomputes every active budget that a committed change may
// have affected: budgets in the category of an old or new expense state
// whose window contains today or that state's transaction date.
func (r *BudgetReconciler) AfterCommit(ctx context.Context, events []shared.DomainEvent) error {
	dates := make(map[budgetKey][]time.Time)
	var keys []budgetKey
	for _, event := range events {
		te, ok := event.(ledger.TransactionEvent)
		if !ok {
			continue
		}
		for _, snap := range te.Snapshots() {
			if !snap.IsExpense() {
				continue
			}
			key := budgetKey{ownerID: snap.OwnerID, categoryID: *snap.CategoryID}
			if _, seen := dates[key]; !seen {
				keys = append(keys, key)
			}
			dates[key] = append(dates[key], snap.TransactionDate)
		}
	}
	if len(keys) == 0 {
		return nil
	}

	today := r.deps.today()
	var errs []error
	for _, key := range keys {
		budgets, err := r.deps.UoW.Read().Budgets().FindActiveContaining(ctx, key.ownerID, key.categoryID, append(dates[key], today))
		if err != nil {
			errs = append(errs, fmt.Errorf("find budgets for category %s: %w", key.categoryID, err))
			continue
		}
		for _, b := range budgets {
			if _, err := r.RecomputeBudget(ctx, key.ownerID, b.ID); err != nil {
				errs = append(errs, fmt.Errorf("recompute budget %s: %w", b.ID, err))
			}
		}
	}
	return errors.Join(errs...)
}

// RecomputeBudget sets a budget's spent amount to the sum of its window in
// its own unit of work, holding the budget row lock while it aggregates
func (r *BudgetReconciler) RecomputeBudget(ctx context.Context, ownerID, budgetID uuid.UUID) (*ledger.Budget, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "budget", "recompute")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrBudgetID, budgetID.String())

	var budget *ledger.Budget
	var changed bool
	err := r.deps.UoW.Execute(ctx, func(repos Repositories) error {
		var err error
		budget, err = repos.Budgets().FindByIDForUpdate(ctx, ownerID, budgetID)
		if err != nil {
			return err
		}
		changed, err = recomputeSpent(ctx, repos, budget)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	r.deps.Metrics.BudgetRecomputed(ctx, changed)
	if changed {
		r.deps.Logger.Debug("budget spent recomputed",
			zap.String("budget_id", budgetID.String()),
			zap.String("spent", budget.SpentAmount.StringFixed(2)),
		)
	}
	return budget, nil
}

// Refresh recomputes the active budgets among budgets and returns the list
// with fresh spent amounts. Inactive budgets are returned as stored.
func (r *BudgetReconciler) Refresh(ctx context.Context, budgets []ledger.Budget) ([]ledger.Budget, error) {
	out := make([]ledger.Budget, len(budgets))
	for i := range budgets {
		if !budgets[i].IsActive {
			out[i] = budgets[i]
			continue
		}
		fresh, err := r.RecomputeBudget(ctx, budgets[i].OwnerID, budgets[i].ID)
		if err != nil {
			return nil, err
		}
		out[i] = *fresh
	}
	return out, nil
}

// ReconcileAll recomputes every active budget of every farmer and reports
// how many it visited. A failing budget does not stop the sweep.
func (r *BudgetReconciler) ReconcileAll(ctx context.Context) (int, error) {
	budgets, err := r.deps.UoW.Read().Budgets().FindAllActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("find active budgets: %w", err)
	}
	var errs []error
	for _, b := range budgets {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if _, err := r.RecomputeBudget(ctx, b.OwnerID, b.ID); err != nil {
			errs = append(errs, fmt.Errorf("recompute budget %s: %w", b.ID, err))
		}
	}
	return len(budgets), errors.Join(errs...)
}

// recomputeSpent aggregates the budget's window and saves the budget when
// the total moved. The caller holds the budget row.
func recomputeSpent(ctx context.Context, repos Repositories, budget *ledger.Budget) (bool, error) {
	total, err := repos.Transactions().SumExpenses(ctx, budget.OwnerID, budget.CategoryID, budget.StartDate, budget.WindowEnd())
	if err != nil {
		return false, fmt.Errorf("sum expenses: %w", err)
	}
	if !budget.ApplyRecomputedSpent(total) {
		return false, nil
	}
	if err := repos.Budgets().SaveWithLock(ctx, budget); err != nil {
		return false, fmt.Errorf("save budget: %w", err)
	}
	return true, nil
}

var _ PostCommitHook = (*BudgetReconciler)(nil)
