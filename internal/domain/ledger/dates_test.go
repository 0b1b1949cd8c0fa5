package ledger

import (
	"testing"
	"time"

	"github.com/farmledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func TestDateOf_UsesTheValuesOwnZone(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"IST midnight", time.Date(2024, 6, 1, 0, 0, 0, 0, ist), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"IST early morning", time.Date(2024, 7, 1, 2, 0, 0, 0, ist), time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)},
		{"UTC late evening", time.Date(2024, 6, 30, 23, 0, 0, 0, time.UTC), time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)},
		{"west of UTC", time.Date(2024, 6, 30, 22, 0, 0, 0, time.FixedZone("CST", -6*3600)), time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DateOf(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestWallTime(t *testing.T) {
	got := WallTime(time.Date(2024, 6, 30, 9, 15, 30, 0, ist))
	assert.Equal(t, time.Date(2024, 6, 30, 9, 15, 30, 0, time.UTC), got)
	assert.Equal(t, got, WallTime(got), "already normalized values are unchanged")
	assert.Equal(t, DateOf(got), DateOf(WallTime(got)))
}

func TestBudget_OffsetDatesKeepTheirCalendarDays(t *testing.T) {
	b, err := NewBudget(uuid.New(), BudgetInput{
		Name:           "June seeds",
		CategoryID:     uuid.New(),
		BudgetedAmount: valueobject.NewMoney(decimal.NewFromInt(1000)),
		StartDate:      time.Date(2024, 6, 1, 0, 0, 0, 0, ist),
		EndDate:        time.Date(2024, 6, 30, 0, 0, 0, 0, ist),
	})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), b.StartDate)
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), b.EndDate)
	assert.True(t, b.Contains(WallTime(time.Date(2024, 6, 30, 9, 0, 0, 0, ist))))
	assert.False(t, b.Contains(WallTime(time.Date(2024, 7, 1, 2, 0, 0, 0, ist))))
}
