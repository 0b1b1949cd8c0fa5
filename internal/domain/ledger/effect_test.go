package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotEffects(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	amount := decimal.NewFromInt(200)

	t.Run("income credits the primary account", func(t *testing.T) {
		effects := TransactionSnapshot{AccountID: a, Type: TransactionTypeIncome, Amount: amount}.Effects()
		require.Len(t, effects, 1)
		assert.Equal(t, a, effects[0].AccountID)
		assert.True(t, effects[0].Delta.Equal(amount))
	})

	t.Run("expense debits the primary account", func(t *testing.T) {
		effects := TransactionSnapshot{AccountID: a, Type: TransactionTypeExpense, Amount: amount}.Effects()
		require.Len(t, effects, 1)
		assert.True(t, effects[0].Delta.Equal(amount.Neg()))
	})

	t.Run("transfer debits source and credits destination", func(t *testing.T) {
		effects := TransactionSnapshot{AccountID: a, ToAccountID: &b, Type: TransactionTypeTransfer, Amount: amount}.Effects()
		require.Len(t, effects, 2)
		assert.Equal(t, a, effects[0].AccountID)
		assert.True(t, effects[0].Delta.Equal(amount.Neg()))
		assert.Equal(t, b, effects[1].AccountID)
		assert.True(t, effects[1].Delta.Equal(amount))

		sum := effects[0].Delta.Add(effects[1].Delta)
		assert.True(t, sum.IsZero(), "a transfer neither creates nor destroys money")
	})
}

func TestBalancePlan(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	b := uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	c := uuid.MustParse("00000000-0000-0000-0000-00000000000c")

	before := TransactionSnapshot{AccountID: b, ToAccountID: &a, Type: TransactionTypeTransfer, Amount: decimal.NewFromInt(100)}
	after := TransactionSnapshot{AccountID: c, Type: TransactionTypeExpense, Amount: decimal.NewFromInt(40)}

	plan := PlanEdit(before, after)

	assert.Equal(t, []uuid.UUID{a, b, c}, plan.AccountIDs(), "accounts are locked in ascending id order")
	assert.True(t, plan.NetDelta(a).Equal(decimal.NewFromInt(-100)), "destination loses the reversed credit")
	assert.True(t, plan.NetDelta(b).Equal(decimal.NewFromInt(100)), "source gets the reversed debit back")
	assert.True(t, plan.NetDelta(c).Equal(decimal.NewFromInt(-40)))
	assert.False(t, plan.AppliedTo(a))
	assert.True(t, plan.AppliedTo(c))

	same := PlanEdit(after, after)
	assert.True(t, same.NetDelta(c).IsZero(), "editing nothing moves nothing")

	del := PlanDelete(after)
	assert.True(t, del.NetDelta(c).Equal(decimal.NewFromInt(40)))
}

func TestNetEffectOn(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	snapshots := []TransactionSnapshot{
		{AccountID: a, Type: TransactionTypeIncome, Amount: decimal.NewFromInt(1000)},
		{AccountID: a, Type: TransactionTypeExpense, Amount: decimal.NewFromInt(300)},
		{AccountID: a, ToAccountID: &b, Type: TransactionTypeTransfer, Amount: decimal.NewFromInt(200)},
		{AccountID: b, ToAccountID: &a, Type: TransactionTypeTransfer, Amount: decimal.NewFromInt(50)},
	}
	assert.True(t, NetEffectOn(a, snapshots).Equal(decimal.NewFromInt(550)))
	assert.True(t, NetEffectOn(b, snapshots).Equal(decimal.NewFromInt(150)))
}
