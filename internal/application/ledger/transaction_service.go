package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/farmledger/backend/internal/domain/ledger"
	"github.com/farmledger/backend/internal/domain/shared"
	"github.com/farmledger/backend/internal/domain/shared/valueobject"
	"github.com/farmledger/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionService records, edits and removes ledger transactions.
// Every mutation keeps account balances equal to opening balance plus the
// signed effects of the live transactions.
type TransactionService struct {
	deps Deps
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(deps Deps) *TransactionService {
	return &TransactionService{deps: deps.withDefaults()}
}

func (s *TransactionService) toInput(req TransactionRequest) (ledger.TransactionInput, error) {
	txType, err := ledger.ParseTransactionType(req.TransactionType)
	if err != nil {
		return ledger.TransactionInput{}, err
	}
	date := s.deps.today()
	if req.TransactionDate != nil {
		date = ledger.WallTime(*req.TransactionDate)
	}
	return ledger.TransactionInput{
		AccountID:       req.AccountID,
		Type:            txType,
		Amount:          valueobject.NewMoney(req.Amount),
		Description:     req.Description,
		CategoryID:      req.CategoryID,
		ToAccountID:     req.ToAccountID,
		TransactionDate: date,
		ReferenceNumber: req.ReferenceNumber,
		Notes:           req.Notes,
	}, nil
}

// CreateTransaction records a transaction and applies its balance effects
func (s *TransactionService) CreateTransaction(ctx context.Context, ownerID uuid.UUID, req TransactionRequest) (*TransactionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "transaction", "create")
	defer span.End()

	in, err := s.toInput(req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTransactionType, in.Type.String(),
		telemetry.SpanAttrAccountID, in.AccountID.String(),
		telemetry.SpanAttrAmount, in.Amount.String(),
	)

	var txn *ledger.Transaction
	err = s.deps.mutate(ctx, func(repos Repositories) ([]shared.DomainEvent, error) {
		var err error
		txn, _, err = recordTransaction(ctx, repos, ownerID, in)
		if err != nil {
			return nil, err
		}
		return txn.GetDomainEvents(), nil
	})
	if err != nil {
		if shared.IsInsufficientFunds(err) {
			s.deps.Metrics.InsufficientFunds(ctx)
		}
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.deps.Metrics.TransactionRecorded(ctx, txn.Type, txn.Amount)
	telemetry.SetAttributes(span, telemetry.SpanAttrTransactionID, txn.ID.String())
	return s.respond(ctx, txn)
}

// EditTransaction replaces every editable field of a transaction. The prior
// effects are reversed and the new ones applied in one unit of work.
func (s *TransactionService) EditTransaction(ctx context.Context, ownerID, id uuid.UUID, req TransactionRequest) (*TransactionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "transaction", "edit")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrTransactionID, id.String())

	in, err := s.toInput(req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var txn *ledger.Transaction
	err = s.deps.mutate(ctx, func(repos Repositories) ([]shared.DomainEvent, error) {
		var err error
		txn, err = repos.Transactions().FindByIDForUpdate(ctx, ownerID, id)
		if err != nil {
			return nil, err
		}
		before := txn.Snapshot()
		if err := txn.Edit(in); err != nil {
			return nil, err
		}
		if err := checkCategory(ctx, repos.Categories(), in); err != nil {
			return nil, err
		}

		after := txn.Snapshot()
		if _, err := applyBalancePlan(ctx, repos.Accounts(), ownerID, ledger.PlanEdit(before, after), &after); err != nil {
			return nil, err
		}
		if err := repos.Transactions().SaveWithLock(ctx, txn); err != nil {
			return nil, fmt.Errorf("save transaction: %w", err)
		}
		return txn.GetDomainEvents(), nil
	})
	if err != nil {
		if shared.IsInsufficientFunds(err) {
			s.deps.Metrics.InsufficientFunds(ctx)
		}
		telemetry.RecordError(span, err)
		return nil, err
	}
	return s.respond(ctx, txn)
}

// DeleteTransaction removes a transaction from the ledger and reverses its effects
func (s *TransactionService) DeleteTransaction(ctx context.Context, ownerID, id uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "transaction", "delete")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrTransactionID, id.String())

	var txType ledger.TransactionType
	err := s.deps.mutate(ctx, func(repos Repositories) ([]shared.DomainEvent, error) {
		txn, err := repos.Transactions().FindByIDForUpdate(ctx, ownerID, id)
		if err != nil {
			return nil, err
		}
		before := txn.Snapshot()
		txn.MarkDeleted(s.deps.today())
		if _, err := applyBalancePlan(ctx, repos.Accounts(), ownerID, ledger.PlanDelete(before), nil); err != nil {
			return nil, err
		}
		if err := repos.Transactions().SoftDelete(ctx, txn); err != nil {
			return nil, fmt.Errorf("delete transaction: %w", err)
		}
		txType = txn.Type
		return txn.GetDomainEvents(), nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	s.deps.Metrics.TransactionReversed(ctx, txType)
	return nil
}

// GetTransaction returns one live transaction of the farmer
func (s *TransactionService) GetTransaction(ctx context.Context, ownerID, id uuid.UUID) (*TransactionResponse, error) {
	txn, err := s.deps.UoW.Read().Transactions().FindByIDForOwner(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, txn)
}

// ListTransactions returns a page of the farmer's transactions, newest first
func (s *TransactionService) ListTransactions(ctx context.Context, ownerID uuid.UUID, filter TransactionListFilter) (*shared.Paginated[TransactionResponse], error) {
	f := ledger.TransactionFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "transaction_date",
			OrderDir: "desc",
		}.Normalize(),
		AccountID:  filter.AccountID,
		CategoryID: filter.CategoryID,
	}
	if filter.TransactionType != "" {
		t, err := ledger.ParseTransactionType(filter.TransactionType)
		if err != nil {
			return nil, err
		}
		f.Type = &t
	}
	if filter.StartDate != nil {
		from := ledger.DateOf(*filter.StartDate)
		f.From = &from
	}
	if filter.EndDate != nil {
		to := ledger.DateOf(*filter.EndDate).AddDate(0, 0, 1)
		f.To = &to
	}

	repos := s.deps.UoW.Read()
	txns, err := repos.Transactions().FindAllForOwner(ctx, ownerID, f)
	if err != nil {
		return nil, err
	}
	total, err := repos.Transactions().CountForOwner(ctx, ownerID, f)
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
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// TransactionSummary totals the ledger over [start, end], both inclusive calendar days.
// Without a start the range begins on the first of the current month; without
// an end it runs through today.
func (s *TransactionService) TransactionSummary(ctx context.Context, ownerID uuid.UUID, start, end *time.Time) (*TransactionSummaryResponse, error) {
	today := ledger.DateOf(s.deps.today())
	from := ledger.MonthStart(today)
	if start != nil {
		from = ledger.DateOf(*start)
	}
	through := today
	if end != nil {
		through = ledger.DateOf(*end)
	}
	if through.Before(from) {
		return nil, shared.NewValidationError("end_date", "end date must not be before start date")
	}
	to := through.AddDate(0, 0, 1)

	reports := s.deps.UoW.Read().Reports()
	totals, err := reports.TotalsBetween(ctx, ownerID, from, to)
	if err != nil {
		return nil, err
	}
	expenses, err := reports.CategoryTotalsBetween(ctx, ownerID, ledger.TransactionTypeExpense, from, to)
	if err != nil {
		return nil, err
	}
	incomes, err := reports.CategoryTotalsBetween(ctx, ownerID, ledger.TransactionTypeIncome, from, to)
	if err != nil {
		return nil, err
	}

	return &TransactionSummaryResponse{
		StartDate:         from,
		EndDate:           through,
		TotalIncome:       totals.Income,
		TotalExpense:      totals.Expense,
		NetCashFlow:       totals.Income.Sub(totals.Expense),
		TransactionCount:  totals.TransactionCount,
		ExpenseByCategory: toCategoryAmounts(expenses, totals.Expense),
		IncomeByCategory:  toCategoryAmounts(incomes, totals.Income),
	}, nil
}

func (s *TransactionService) respond(ctx context.Context, txn *ledger.Transaction) (*TransactionResponse, error) {
	names, err := categoryNames(ctx, s.deps.UoW.Read().Categories())
	if err != nil {
		return nil, err
	}
	resp := toTransactionResponse(txn, names)
	return &resp, nil
}

// categoryNames maps every registry category id to its name
func categoryNames(ctx context.Context, categories ledger.CategoryRepository) (map[uuid.UUID]string, error) {
	all, err := categories.FindAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	names := make(map[uuid.UUID]string, len(all))
	for _, c := range all {
		names[c.ID] = c.Name
	}
	return names, nil
}

func toCategoryAmounts(totals []ledger.CategoryTotal, whole decimal.Decimal) []CategoryAmount {
	out := make([]CategoryAmount, len(totals))
	for i, t := range totals {
		out[i] = CategoryAmount{
			CategoryID:       t.CategoryID,
			CategoryName:     t.CategoryName,
			Amount:           t.Total,
			Percentage:       valueobject.Percentage(t.Total, whole),
			TransactionCount: t.TransactionCount,
		}
	}
	return out
}
