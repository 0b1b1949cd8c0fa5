package ledger

import (
	"bytes"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceEffect is a signed change to one account's balance
type BalanceEffect struct {
	AccountID uuid.UUID
	Delta     decimal.Decimal
}

// Effects derives the balance effects of a transaction state:
// income credits the primary account, expense debits it, and a transfer
// debits the primary (source) and credits the counterparty (destination).
func (s TransactionSnapshot) Effects() []BalanceEffect {
	switch s.Type {
	case TransactionTypeIncome:
		return []BalanceEffect{{AccountID: s.AccountID, Delta: s.Amount}}
	case TransactionTypeExpense:
		return []BalanceEffect{{AccountID: s.AccountID, Delta: s.Amount.Neg()}}
	case TransactionTypeTransfer:
		effects := []BalanceEffect{{AccountID: s.AccountID, Delta: s.Amount.Neg()}}
		if s.ToAccountID != nil {
			effects = append(effects, BalanceEffect{AccountID: *s.ToAccountID, Delta: s.Amount})
		}
		return effects
	}
	return nil
}

// CompareAccountIDs orders ids by their byte representation, which matches
// the ordering of the uuid column in the store
func CompareAccountIDs(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}

// BalancePlan is the full set of balance changes one ledger mutation makes:
// effects of the prior state to reverse, then effects of the new state to apply
type BalancePlan struct {
	Reversals    []BalanceEffect
	Applications []BalanceEffect
}

// PlanCreate applies the effects of a new transaction
func PlanCreate(after TransactionSnapshot) BalancePlan {
	return BalancePlan{Applications: after.Effects()}
}

// PlanEdit reverses the effects of before and applies those of after
func PlanEdit(before, after TransactionSnapshot) BalancePlan {
	return BalancePlan{Reversals: before.Effects(), Applications: after.Effects()}
}

// PlanDelete reverses the effects of a removed transaction
func PlanDelete(before TransactionSnapshot) BalancePlan {
	return BalancePlan{Reversals: before.Effects()}
}

// AccountIDs returns every account the plan touches in ascending lock order
func (p BalancePlan) AccountIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for _, e := range append(append([]BalanceEffect{}, p.Reversals...), p.Applications...) {
		if _, ok := seen[e.AccountID]; ok {
			continue
		}
		seen[e.AccountID] = struct{}{}
		ids = append(ids, e.AccountID)
	}
	slices.SortFunc(ids, CompareAccountIDs)
	return ids
}

// AppliedTo reports whether the new state moves money on accountID
func (p BalancePlan) AppliedTo(accountID uuid.UUID) bool {
	for _, e := range p.Applications {
		if e.AccountID == accountID {
			return true
		}
	}
	return false
}

// NetDelta is the combined change the plan makes to accountID
func (p BalancePlan) NetDelta(accountID uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for _, e := range p.Reversals {
		if e.AccountID == accountID {
			total = total.Sub(e.Delta)
		}
	}
	for _, e := range p.Applications {
		if e.AccountID == accountID {
			total = total.Add(e.Delta)
		}
	}
	return total
}

// NetEffectOn sums the signed effects of snapshots on one account
func NetEffectOn(accountID uuid.UUID, snapshots []TransactionSnapshot) decimal.Decimal {
	total := decimal.Zero
	for _, s := range snapshots {
		for _, e := range s.Effects() {
			if e.AccountID == accountID {
				total = total.Add(e.Delta)
			}
		}
	}
	return total
}
