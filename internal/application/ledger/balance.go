package ledger

import (
	"context"
	"fmt"

	"github.com/farmledger/backend/internal/domain/ledger"
	"github.com/farmledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// lockedAccounts are the account rows a mutation holds locks on
type lockedAccounts map[uuid.UUID]*ledger.Account

// applyBalancePlan is the balance maintainer. It locks every account the
// plan touches in ascending id order, reverses the prior effects, checks the
// transfer source of the new state against the post-reversal balance,
// applies the new effects and saves each account whose balance moved.
// newState is nil when the mutation only reverses (delete).
func applyBalancePlan(
	ctx context.Context,
	accounts ledger.AccountRepository,
	ownerID uuid.UUID,
	plan ledger.BalancePlan,
	newState *ledger.TransactionSnapshot,
) (lockedAccounts, error) {
	locked := make(lockedAccounts)
	for _, id := range plan.AccountIDs() {
		acc, err := accounts.FindByIDForUpdate(ctx, ownerID, id)
		if err != nil {
			return nil, err
		}
		if plan.AppliedTo(id) && !acc.IsActive {
			return nil, shared.NewValidationError("account_id",
				fmt.Sprintf("account %s is inactive", acc.Name))
		}
		locked[id] = acc
	}

	for _, e := range plan.Reversals {
		locked[e.AccountID].Reverse(e.Delta)
	}

	if newState != nil && newState.Type == ledger.TransactionTypeTransfer {
		source := locked[newState.AccountID]
		if !source.CanCover(newState.Amount) {
			return nil, shared.NewInsufficientFundsError(source.Name, source.CurrentBalance, newState.Amount)
		}
	}

	for _, e := range plan.Applications {
		locked[e.AccountID].Apply(e.Delta)
	}

	for _, id := range plan.AccountIDs() {
		if plan.NetDelta(id).IsZero() {
			continue
		}
		acc := locked[id]
		acc.IncrementVersion()
		if err := accounts.SaveWithLock(ctx, acc); err != nil {
			return nil, fmt.Errorf("save account %s: %w", id, err)
		}
	}
	return locked, nil
}

// checkCategory verifies the category of an income or expense input exists,
// is active and belongs to the matching registry
func checkCategory(ctx context.Context, categories ledger.CategoryRepository, in ledger.TransactionInput) error {
	if in.Type == ledger.TransactionTypeTransfer || in.CategoryID == nil {
		return nil
	}
	category, err := categories.FindByID(ctx, *in.CategoryID)
	if err != nil {
		if shared.IsNotFound(err) {
			return shared.NewValidationError("category_id", "category does not exist")
		}
		return err
	}
	if !category.IsActive {
		return shared.NewValidationError("category_id", "category is inactive")
	}
	if !category.Matches(in.Type) {
		return shared.NewValidationError("category_id",
			fmt.Sprintf("%s is not a %s category", category.Name, in.Type))
	}
	return nil
}

// recordTransaction is the single create path for ledger transactions.
// It must run inside a unit of work.
func recordTransaction(
	ctx context.Context,
	repos Repositories,
	ownerID uuid.UUID,
	in ledger.TransactionInput,
) (*ledger.Transaction, lockedAccounts, error) {
	txn, err := ledger.NewTransaction(ownerID, in)
	if err != nil {
		return nil, nil, err
	}
	if err := checkCategory(ctx, repos.Categories(), in); err != nil {
		return nil, nil, err
	}

	after := txn.Snapshot()
	locked, err := applyBalancePlan(ctx, repos.Accounts(), ownerID, ledger.PlanCreate(after), &after)
	if err != nil {
		return nil, nil, err
	}
	if err := repos.Transactions().Save(ctx, txn); err != nil {
		return nil, nil, fmt.Errorf("save transaction: %w", err)
	}
	return txn, locked, nil
}
