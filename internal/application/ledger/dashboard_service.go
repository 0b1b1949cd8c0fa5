package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/farmledger/backend/internal/domain/ledger"
	"github.com/farmledger/backend/internal/domain/shared"
	"github.com/farmledger/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	recentTransactionsLimit = 5
	defaultTrendMonths      = 12
	maxTrendMonths          = 24
)

// Expense breakdown periods
const (
	PeriodWeek    = "week"
	PeriodMonth   = "month"
	PeriodQuarter = "quarter"
	PeriodYear    = "year"
)

// DashboardService builds read-only overviews of the ledger
type DashboardService struct {
	deps       Deps
	reconciler *BudgetReconciler
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(deps Deps) *DashboardService {
	return &DashboardService{deps: deps.withDefaults(), reconciler: NewBudgetReconciler(deps)}
}

// Summary returns balances, this month's cash flow, budget and goal counts
// and the most recent transactions. The independent reads run concurrently.
func (s *DashboardService) Summary(ctx context.Context, ownerID uuid.UUID) (*DashboardSummaryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "dashboard", "summary")
	defer span.End()

	repos := s.deps.UoW.Read()
	today := ledger.DateOf(s.deps.today())
	tomorrow := today.AddDate(0, 0, 1)

	resp := &DashboardSummaryResponse{RecentTransactions: []TransactionResponse{}}
	var (
		totals  ledger.PeriodTotals
		budgets []ledger.Budget
		recent  []ledger.Transaction
		names   map[uuid.UUID]string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		resp.TotalBalance, err = repos.Accounts().SumActiveBalances(gctx, ownerID)
		return err
	})
	g.Go(func() error {
		var err error
		totals, err = repos.Reports().TotalsBetween(gctx, ownerID, ledger.MonthStart(today), tomorrow)
		return err
	})
	g.Go(func() error {
		var err error
		budgets, err = repos.Budgets().FindActiveOn(gctx, ownerID, today)
		return err
	})
	g.Go(func() error {
		var err error
		resp.ActiveGoalsCount, err = repos.Goals().CountByAchieved(gctx, ownerID, false)
		return err
	})
	g.Go(func() error {
		var err error
		resp.AchievedGoalsCount, err = repos.Goals().CountByAchieved(gctx, ownerID, true)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = repos.Transactions().FindAllForOwner(gctx, ownerID, ledger.TransactionFilter{
			Filter: shared.Filter{Page: 1, PageSize: recentTransactionsLimit, OrderBy: "transaction_date", OrderDir: "desc"},
		})
		return err
	})
	g.Go(func() error {
		var err error
		names, err = categoryNames(gctx, repos.Categories())
		return err
	})
	if err := g.Wait(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	budgets, err := s.reconciler.Refresh(ctx, budgets)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resp.MonthlyIncome = totals.Income
	resp.MonthlyExpense = totals.Expense
	resp.NetCashFlow = totals.Income.Sub(totals.Expense)
	resp.ActiveBudgetsCount = len(budgets)
	for i := range budgets {
		if budgets[i].IsOverBudget() {
			resp.OverBudgetCount++
		}
	}
	for i := range recent {
		resp.RecentTransactions = append(resp.RecentTransactions, toTransactionResponse(&recent[i], names))
	}
	return resp, nil
}

// MonthlyTrends returns income and expense for each of the last months
// calendar months, oldest first, the current month included
func (s *DashboardService) MonthlyTrends(ctx context.Context, ownerID uuid.UUID, months int) ([]MonthlyTrend, error) {
	if months <= 0 {
		months = defaultTrendMonths
	}
	if months > maxTrendMonths {
		return nil, shared.NewValidationError("months", "at most 24 months can be requested")
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "dashboard", "monthly_trends")
	defer span.End()

	reports := s.deps.UoW.Read().Reports()
	current := ledger.MonthStart(s.deps.today())
	trends := make([]MonthlyTrend, months)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < months; i++ {
		start := current.AddDate(0, i-months+1, 0)
		g.Go(func() error {
			totals, err := reports.TotalsBetween(gctx, ownerID, start, start.AddDate(0, 1, 0))
			if err != nil {
				return err
			}
			trends[i] = MonthlyTrend{
				Month:   start.Format("Jan 2006"),
				Income:  totals.Income,
				Expense: totals.Expense,
				NetFlow: totals.Income.Sub(totals.Expense),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return trends, nil
}

// PeriodStart returns the first day of period relative to today
func PeriodStart(period string, today time.Time) (time.Time, error) {
	today = ledger.DateOf(today)
	switch period {
	case PeriodWeek:
		return today.AddDate(0, 0, -6), nil
	case PeriodMonth:
		return ledger.MonthStart(today), nil
	case PeriodQuarter:
		q := (int(today.Month()) - 1) / 3
		return time.Date(today.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, time.UTC), nil
	case PeriodYear:
		return time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), nil
	default:
		return time.Time{}, shared.NewValidationError("period", "period must be one of week, month, quarter, year")
	}
}

// ExpenseBreakdown groups expense by category from the start of period up to today
func (s *DashboardService) ExpenseBreakdown(ctx context.Context, ownerID uuid.UUID, period string) (*ExpenseBreakdownResponse, error) {
	period = strings.ToLower(strings.TrimSpace(period))
	if period == "" {
		period = PeriodMonth
	}
	today := ledger.DateOf(s.deps.today())
	start, err := PeriodStart(period, today)
	if err != nil {
		return nil, err
	}

	totals, err := s.deps.UoW.Read().Reports().CategoryTotalsBetween(ctx, ownerID, ledger.TransactionTypeExpense, start, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	whole := decimal.Zero
	for _, t := range totals {
		whole = whole.Add(t.Total)
	}
	return &ExpenseBreakdownResponse{
		Period:       period,
		StartDate:    start,
		EndDate:      today,
		TotalExpense: whole,
		Categories:   toCategoryAmounts(totals, whole),
	}, nil
}
