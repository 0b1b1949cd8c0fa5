package ledger

import (
	"context"

	"github.com/farmledger/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// MetricsRecorder receives business measurements from the ledger services
type MetricsRecorder interface {
	TransactionRecorded(ctx context.Context, txType ledger.TransactionType, amount decimal.Decimal)
	TransactionReversed(ctx context.Context, txType ledger.TransactionType)
	TransferCompleted(ctx context.Context, amount decimal.Decimal)
	InsufficientFunds(ctx context.Context)
	BudgetRecomputed(ctx context.Context, changed bool)
	ConsistencyFailure(ctx context.Context)
}

// NoopMetrics discards every measurement
type NoopMetrics struct{}

func (NoopMetrics) TransactionRecorded(context.Context, ledger.TransactionType, decimal.Decimal) {}
func (NoopMetrics) TransactionReversed(context.Context, ledger.TransactionType) {}
func (NoopMetrics) TransferCompleted(context.Context, decimal.Decimal) {}
func (NoopMetrics) InsufficientFunds(context.Context) {}
func (NoopMetrics) BudgetRecomputed(context.Context, bool) {}
func (NoopMetrics) ConsistencyFailure(context.Context) {}

var _ MetricsRecorder = NoopMetrics{}
