package telemetry

import (
	"context"

	"github.com/farmledger/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
)

// LedgerMeterName names the meter the ledger instruments belong to
const LedgerMeterName = "farmledger.ledger"

// LedgerMetrics records ledger business measurements as OpenTelemetry instruments
type LedgerMetrics struct {
	transactions       *Counter
	reversals          *Counter
	amounts            *Histogram
	transfers          *Counter
	insufficientFunds  *Counter
	budgetRecomputes   *Counter
	consistencyFailure *Counter
}

// NewLedgerMetrics creates the ledger instruments on meter
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	m := &LedgerMetrics{}
	var err error

	if m.transactions, err = NewCounter(meter,
		"ledger_transactions_recorded_total", "Transactions recorded by type", "{transaction}"); err != nil {
		return nil, err
	}
	if m.reversals, err = NewCounter(meter,
		"ledger_transactions_reversed_total", "Transactions deleted and reversed by type", "{transaction}"); err != nil {
		return nil, err
	}
	if m.amounts, err = NewHistogram(meter, HistogramOpts{
		Name:        "ledger_transaction_amount",
		Description: "Amounts of recorded transactions",
		Unit:        "{INR}",
		Boundaries:  AmountBuckets,
	}); err != nil {
		return nil, err
	}
	if m.transfers, err = NewCounter(meter,
		"ledger_transfers_completed_total", "Completed account transfers", "{transfer}"); err != nil {
		return nil, err
	}
	if m.insufficientFunds, err = NewCounter(meter,
		"ledger_insufficient_funds_total", "Transfers rejected for insufficient funds", "{rejection}"); err != nil {
		return nil, err
	}
	if m.budgetRecomputes, err = NewCounter(meter,
		"ledger_budget_recomputes_total", "Budget spent recomputations by outcome", "{recompute}"); err != nil {
		return nil, err
	}
	if m.consistencyFailure, err = NewCounter(meter,
		"ledger_consistency_failures_total", "Account balances found disagreeing with the ledger", "{failure}"); err != nil {
		return nil, err
	}
	return m, nil
}

// TransactionRecorded counts a new transaction and records its amount
func (m *LedgerMetrics) TransactionRecorded(ctx context.Context, txType ledger.TransactionType, amount decimal.Decimal) {
	attr := AttrTransactionType.String(string(txType))
	m.transactions.Inc(ctx, attr)
	m.amounts.Record(ctx, amount.InexactFloat64(), attr)
}

// TransactionReversed counts a deleted transaction
func (m *LedgerMetrics) TransactionReversed(ctx context.Context, txType ledger.TransactionType) {
	m.reversals.Inc(ctx, AttrTransactionType.String(string(txType)))
}

// TransferCompleted counts a transfer
func (m *LedgerMetrics) TransferCompleted(ctx context.Context, _ decimal.Decimal) {
	m.transfers.Inc(ctx)
}

// InsufficientFunds counts a rejected transfer
func (m *LedgerMetrics) InsufficientFunds(ctx context.Context) {
	m.insufficientFunds.Inc(ctx)
}

// BudgetRecomputed counts a recomputation, split by whether spent moved
func (m *LedgerMetrics) BudgetRecomputed(ctx context.Context, changed bool) {
	outcome := "unchanged"
	if changed {
		outcome = "changed"
	}
	m.budgetRecomputes.Inc(ctx, AttrOutcome.String(outcome))
}

// ConsistencyFailure counts a failed balance verification
func (m *LedgerMetrics) ConsistencyFailure(ctx context.Context) {
	m.consistencyFailure.Inc(ctx)
}
