package ledger

import (
	"time"

	"github.com/farmledger/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ===================== Accounts =====================

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID              uuid.UUID       `json:"id"`
	AccountName     string          `json:"account_name"`
	AccountType     string          `json:"account_type"`
	AccountTypeName string          `json:"account_type_display"`
	AccountNumber   string          `json:"account_number,omitempty"`
	BankName        string          `json:"bank_name,omitempty"`
	OpeningBalance  decimal.Decimal `json:"opening_balance"`
	CurrentBalance  decimal.Decimal `json:"current_balance"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

// CreateAccountRequest represents a request to open an account
type CreateAccountRequest struct {
	AccountName    string           `json:"account_name" binding:"required,max=100"`
	AccountType    string           `json:"account_type" binding:"required,oneof=SAVINGS CURRENT LOAN CREDIT CASH"`
	AccountNumber  string           `json:"account_number" binding:"max=50"`
	BankName       string           `json:"bank_name" binding:"max=100"`
	OpeningBalance *decimal.Decimal `json:"opening_balance"`
}

// UpdateAccountRequest represents a request to rename an account or change its bank details
type UpdateAccountRequest struct {
	AccountName   string `json:"account_name" binding:"required,max=100"`
	AccountNumber string `json:"account_number" binding:"max=50"`
	BankName      string `json:"bank_name" binding:"max=100"`
}

// AccountListFilter defines filtering options for account listings
type AccountListFilter struct {
	IncludeInactive bool   `form:"include_inactive"`
	AccountType     string `form:"account_type"`
}

// TotalBalanceResponse is the sum of balances over active accounts
type TotalBalanceResponse struct {
	TotalBalance decimal.Decimal `json:"total_balance"`
	Currency     string          `json:"currency"`
}

// BalanceVerificationResponse compares a stored balance with its recomputation from the ledger
type BalanceVerificationResponse struct {
	AccountID       uuid.UUID       `json:"account_id"`
	StoredBalance   decimal.Decimal `json:"stored_balance"`
	ComputedBalance decimal.Decimal `json:"computed_balance"`
	Difference      decimal.Decimal `json:"difference"`
	Consistent      bool            `json:"consistent"`
}

// ===================== Transactions =====================

// TransactionResponse represents a ledger transaction in API responses
type TransactionResponse struct {
	ID              uuid.UUID       `json:"id"`
	AccountID       uuid.UUID       `json:"account_id"`
	TransactionType string          `json:"transaction_type"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	CategoryID      *uuid.UUID      `json:"category_id,omitempty"`
	CategoryName    string          `json:"category_name,omitempty"`
	ToAccountID     *uuid.UUID      `json:"to_account_id,omitempty"`
	TransactionDate time.Time       `json:"transaction_date"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	HasReceipt      bool            `json:"has_receipt"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

// TransactionRequest represents a request to create or edit a transaction.
// An edit replaces every field.
type TransactionRequest struct {
	AccountID       uuid.UUID       `json:"account_id" binding:"required"`
	TransactionType string          `json:"transaction_type" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Description     string          `json:"description" binding:"required,max=500"`
	CategoryID      *uuid.UUID      `json:"category_id"`
	ToAccountID     *uuid.UUID      `json:"to_account_id"`
	TransactionDate *time.Time      `json:"transaction_date"`
	ReferenceNumber string          `json:"reference_number" binding:"max=100"`
	Notes           string          `json:"notes"`
}

// TransactionListFilter defines filtering options for transaction listings
type TransactionListFilter struct {
	TransactionType string     `form:"transaction_type"`
	AccountID       *uuid.UUID `form:"account_id"`
	CategoryID      *uuid.UUID `form:"category_id"`
	StartDate       *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate         *time.Time `form:"end_date" time_format:"2006-01-02"`
	Page            int        `form:"page"`
	PageSize        int        `form:"page_size"`
}

// CategoryAmount is a total for one category
type CategoryAmount struct {
	CategoryID       uuid.UUID       `json:"category_id"`
	CategoryName     string          `json:"category_name"`
	Amount           decimal.Decimal `json:"amount"`
	Percentage       decimal.Decimal `json:"percentage"`
	TransactionCount int64           `json:"transaction_count"`
}

// TransactionSummaryResponse summarizes the ledger over a date range
type TransactionSummaryResponse struct {
	StartDate         time.Time        `json:"start_date"`
	EndDate           time.Time        `json:"end_date"`
	TotalIncome       decimal.Decimal  `json:"total_income"`
	TotalExpense      decimal.Decimal  `json:"total_expense"`
	NetCashFlow       decimal.Decimal  `json:"net_cash_flow"`
	TransactionCount  int64            `json:"transaction_count"`
	ExpenseByCategory []CategoryAmount `json:"expense_by_category"`
	IncomeByCategory  []CategoryAmount `json:"income_by_category"`
}

// ===================== Transfers =====================

// TransferRequest represents a request to move money between two accounts
type TransferRequest struct {
	FromAccountID   uuid.UUID       `json:"from_account_id" binding:"required"`
	ToAccountID     uuid.UUID       `json:"to_account_id" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Description     string          `json:"description" binding:"max=500"`
	TransactionDate *time.Time      `json:"transaction_date"`
}

// AccountBalance is an account id with its balance after a mutation
type AccountBalance struct {
	AccountID uuid.UUID       `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

// TransferResponse is the outcome of a transfer
type TransferResponse struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	FromAccount   AccountBalance  `json:"from_account"`
	ToAccount     AccountBalance  `json:"to_account"`
}

// ===================== Categories =====================

// CategoryResponse represents a registry category
type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Kind        string    `json:"kind"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
}

// ===================== Budgets =====================

// BudgetResponse represents a budget with its derived figures
type BudgetResponse struct {
	ID              uuid.UUID       `json:"id"`
	BudgetName      string          `json:"budget_name"`
	CategoryID      uuid.UUID       `json:"category_id"`
	CategoryName    string          `json:"category_name,omitempty"`
	BudgetedAmount  decimal.Decimal `json:"budgeted_amount"`
	SpentAmount     decimal.Decimal `json:"spent_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	PercentageUsed  decimal.Decimal `json:"percentage_used"`
	IsOverBudget    bool            `json:"is_over_budget"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

// BudgetRequest represents a request to create or edit a budget
type BudgetRequest struct {
	BudgetName     string          `json:"budget_name" binding:"required,max=100"`
	CategoryID     uuid.UUID       `json:"category_id" binding:"required"`
	BudgetedAmount decimal.Decimal `json:"budgeted_amount" binding:"required"`
	StartDate      time.Time       `json:"start_date" binding:"required"`
	EndDate        time.Time       `json:"end_date" binding:"required"`
}

// BudgetListFilter defines filtering options for budget listings
type BudgetListFilter struct {
	IncludeInactive bool       `form:"include_inactive"`
	CategoryID      *uuid.UUID `form:"category_id"`
}

// SpendingAnalysisResponse projects a budget's spending to the end of its window
type SpendingAnalysisResponse struct {
	Budget            BudgetResponse        `json:"budget"`
	Transactions      []TransactionResponse `json:"transactions"`
	DailyAverage      decimal.Decimal       `json:"daily_average"`
	RemainingDays     int                   `json:"remaining_days"`
	ProjectedSpending decimal.Decimal       `json:"projected_spending"`
}

// ===================== Crops =====================

// CropCostsDTO carries the seven cost inputs of a crop
type CropCostsDTO struct {
	SeedCost       decimal.Decimal `json:"seed_cost"`
	FertilizerCost decimal.Decimal `json:"fertilizer_cost"`
	PesticideCost  decimal.Decimal `json:"pesticide_cost"`
	LaborCost      decimal.Decimal `json:"labor_cost"`
	IrrigationCost decimal.Decimal `json:"irrigation_cost"`
	EquipmentCost  decimal.Decimal `json:"equipment_cost"`
	OtherCosts     decimal.Decimal `json:"other_costs"`
}

// CropResponse represents a crop record with derived profitability
type CropResponse struct {
	ID       uuid.UUID `json:"id"`
	CropName string    `json:"crop_name"`
	Season   string    `json:"season"`
	Year     int       `json:"year"`
	CropCostsDTO
	TotalRevenue    decimal.Decimal  `json:"total_revenue"`
	AreaAcres       decimal.Decimal  `json:"area_acres"`
	ExpectedYield   *decimal.Decimal `json:"expected_yield,omitempty"`
	ActualYield     *decimal.Decimal `json:"actual_yield,omitempty"`
	TotalInvestment decimal.Decimal  `json:"total_investment"`
	ProfitLoss      decimal.Decimal  `json:"profit_loss"`
	ROIPercentage   decimal.Decimal  `json:"roi_percentage"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	Version         int              `json:"version"`
}

// CropRequest represents a request to create or edit a crop record
type CropRequest struct {
	CropName string `json:"crop_name" binding:"required,max=100"`
	Season   string `json:"season" binding:"required,max=50"`
	Year     int    `json:"year" binding:"required,min=1900,max=2100"`
	CropCostsDTO
	TotalRevenue  decimal.Decimal  `json:"total_revenue"`
	AreaAcres     decimal.Decimal  `json:"area_acres" binding:"required"`
	ExpectedYield *decimal.Decimal `json:"expected_yield"`
	ActualYield   *decimal.Decimal `json:"actual_yield"`
}

// CropListFilter defines filtering options for crop listings
type CropListFilter struct {
	Year   *int   `form:"year"`
	Season string `form:"season"`
	Crop   string `form:"crop"`
}

// SaleRequest represents revenue from selling a crop's harvest
type SaleRequest struct {
	Amount          decimal.Decimal  `json:"amount" binding:"required"`
	Quantity        *decimal.Decimal `json:"quantity"`
	AccountID       *uuid.UUID       `json:"account_id"`
	Description     string           `json:"description" binding:"max=500"`
	TransactionDate *time.Time       `json:"transaction_date"`
}

// SaleResponse is the crop after a sale and the income transaction booked for it, if any
type SaleResponse struct {
	Crop        CropResponse         `json:"crop"`
	Transaction *TransactionResponse `json:"transaction,omitempty"`
}

// CropPerformance is one entry of the best performing ranking
type CropPerformance struct {
	ID            uuid.UUID       `json:"id"`
	CropName      string          `json:"crop_name"`
	Season        string          `json:"season"`
	Year          int             `json:"year"`
	ProfitLoss    decimal.Decimal `json:"profit_loss"`
	ROIPercentage decimal.Decimal `json:"roi_percentage"`
}

// CropSummary aggregates every season of one crop
type CropSummary struct {
	CropName        string          `json:"crop_name"`
	Seasons         int             `json:"seasons"`
	TotalInvestment decimal.Decimal `json:"total_investment"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	TotalProfit     decimal.Decimal `json:"total_profit"`
	TotalArea       decimal.Decimal `json:"total_area"`
	AverageROI      decimal.Decimal `json:"avg_roi"`
	ProfitPerAcre   decimal.Decimal `json:"profit_per_acre"`
}

// ProfitabilityResponse is the farm-wide crop profitability analysis
type ProfitabilityResponse struct {
	TotalCrops        int               `json:"total_crops"`
	CropsWithRevenue  int               `json:"crops_with_revenue"`
	TotalInvestment   decimal.Decimal   `json:"total_investment"`
	TotalRevenue      decimal.Decimal   `json:"total_revenue"`
	OverallProfit     decimal.Decimal   `json:"overall_profit"`
	OverallROI        decimal.Decimal   `json:"overall_roi"`
	BestPerforming    []CropPerformance `json:"best_performing"`
	CropWiseBreakdown []CropSummary     `json:"crop_wise_summary"`
}

// ===================== Goals =====================

// GoalResponse represents a financial goal with derived progress
type GoalResponse struct {
	ID                 uuid.UUID       `json:"id"`
	GoalName           string          `json:"goal_name"`
	GoalType           string          `json:"goal_type"`
	GoalTypeName       string          `json:"goal_type_display"`
	TargetAmount       decimal.Decimal `json:"target_amount"`
	CurrentAmount      decimal.Decimal `json:"current_amount"`
	RemainingAmount    decimal.Decimal `json:"remaining_amount"`
	PercentageAchieved decimal.Decimal `json:"percentage_achieved"`
	TargetDate         time.Time       `json:"target_date"`
	Description        string          `json:"description,omitempty"`
	IsAchieved         bool            `json:"is_achieved"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	Version            int             `json:"version"`
}

// GoalRequest represents a request to create or edit a goal
type GoalRequest struct {
	GoalName     string          `json:"goal_name" binding:"required,max=100"`
	GoalType     string          `json:"goal_type" binding:"required,oneof=SAVINGS EQUIPMENT LAND EDUCATION EMERGENCY OTHER"`
	TargetAmount decimal.Decimal `json:"target_amount" binding:"required"`
	TargetDate   time.Time       `json:"target_date" binding:"required"`
	Description  string          `json:"description"`
}

// GoalListFilter defines filtering options for goal listings
type GoalListFilter struct {
	IsAchieved *bool  `form:"is_achieved"`
	GoalType   string `form:"goal_type"`
}

// ContributionRequest adds money toward a goal
type ContributionRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// ContributionResponse is the goal after a contribution
type ContributionResponse struct {
	Goal         GoalResponse `json:"goal"`
	JustAchieved bool         `json:"just_achieved"`
}

// GoalTypeProgress aggregates goals of one type
type GoalTypeProgress struct {
	GoalType      string          `json:"goal_type"`
	DisplayName   string          `json:"display_name"`
	Count         int             `json:"count"`
	Achieved      int             `json:"achieved"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
}

// GoalProgressResponse summarizes progress over every goal of the farmer
type GoalProgressResponse struct {
	TotalGoals         int                `json:"total_goals"`
	AchievedGoals      int                `json:"achieved_goals"`
	ActiveGoals        int                `json:"active_goals"`
	AchievementRate    decimal.Decimal    `json:"achievement_rate"`
	TotalTargetAmount  decimal.Decimal    `json:"total_target_amount"`
	TotalCurrentAmount decimal.Decimal    `json:"total_current_amount"`
	OverallProgress    decimal.Decimal    `json:"overall_progress"`
	ByType             []GoalTypeProgress `json:"by_type"`
	UpcomingDeadlines  []GoalResponse     `json:"upcoming_deadlines"`
}

// ===================== Dashboard =====================

// DashboardSummaryResponse is the farmer's financial overview
type DashboardSummaryResponse struct {
	TotalBalance       decimal.Decimal       `json:"total_balance"`
	MonthlyIncome      decimal.Decimal       `json:"monthly_income"`
	MonthlyExpense     decimal.Decimal       `json:"monthly_expense"`
	NetCashFlow        decimal.Decimal       `json:"net_cash_flow"`
	ActiveBudgetsCount int                   `json:"active_budgets_count"`
	OverBudgetCount    int                   `json:"overbudget_count"`
	ActiveGoalsCount   int64                 `json:"active_goals_count"`
	AchievedGoalsCount int64                 `json:"achieved_goals_count"`
	RecentTransactions []TransactionResponse `json:"recent_transactions"`
}

// MonthlyTrend is income and expense of one calendar month
type MonthlyTrend struct {
	Month   string          `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	NetFlow decimal.Decimal `json:"net_flow"`
}

// ExpenseBreakdownResponse is expense per category over a period
type ExpenseBreakdownResponse struct {
	Period       string           `json:"period"`
	StartDate    time.Time        `json:"start_date"`
	EndDate      time.Time        `json:"end_date"`
	TotalExpense decimal.Decimal  `json:"total_expense"`
	Categories   []CategoryAmount `json:"categories"`
}

// ===================== Receipts =====================

// ReceiptUploadRequest asks for an upload URL for a receipt image
type ReceiptUploadRequest struct {
	ContentType string `json:"content_type" binding:"required,oneof=image/jpeg image/png image/webp application/pdf"`
}

// ReceiptURLResponse is a presigned URL for a receipt object
type ReceiptURLResponse struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	Key           string    `json:"key"`
	URL           string    `json:"url"`
	Method        string    `json:"method"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// ===================== Mapping =====================

func toAccountResponse(a *ledger.Account) AccountResponse {
	return AccountResponse{
		ID:              a.ID,
		AccountName:     a.Name,
		AccountType:     string(a.Type),
		AccountTypeName: a.Type.DisplayName(),
		AccountNumber:   a.AccountNumber,
		BankName:        a.BankName,
		OpeningBalance:  a.OpeningBalance,
		CurrentBalance:  a.CurrentBalance,
		IsActive:        a.IsActive,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
		Version:         a.Version,
	}
}

func toTransactionResponse(t *ledger.Transaction, categoryNames map[uuid.UUID]string) TransactionResponse {
	resp := TransactionResponse{
		ID:              t.ID,
		AccountID:       t.AccountID,
		TransactionType: string(t.Type),
		Amount:          t.Amount,
		Description:     t.Description,
		CategoryID:      t.CategoryID(),
		ToAccountID:     t.ToAccountID,
		TransactionDate: t.TransactionDate,
		ReferenceNumber: t.ReferenceNumber,
		Notes:           t.Notes,
		HasReceipt:      t.ReceiptKey != "",
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
		Version:         t.Version,
	}
	if resp.CategoryID != nil {
		resp.CategoryName = categoryNames[*resp.CategoryID]
	}
	return resp
}

func toBudgetResponse(b *ledger.Budget, categoryNames map[uuid.UUID]string) BudgetResponse {
	return BudgetResponse{
		ID:              b.ID,
		BudgetName:      b.Name,
		CategoryID:      b.CategoryID,
		CategoryName:    categoryNames[b.CategoryID],
		BudgetedAmount:  b.BudgetedAmount,
		SpentAmount:     b.SpentAmount,
		RemainingAmount: b.RemainingAmount(),
		PercentageUsed:  b.PercentageUsed(),
		IsOverBudget:    b.IsOverBudget(),
		StartDate:       b.StartDate,
		EndDate:         b.EndDate,
		IsActive:        b.IsActive,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
		Version:         b.Version,
	}
}

func toCropResponse(c *ledger.CropFinance) CropResponse {
	return CropResponse{
		ID:       c.ID,
		CropName: c.CropName,
		Season:   c.Season,
		Year:     c.Year,
		CropCostsDTO: CropCostsDTO{
			SeedCost:       c.Costs.Seed,
			FertilizerCost: c.Costs.Fertilizer,
			PesticideCost:  c.Costs.Pesticide,
			LaborCost:      c.Costs.Labor,
			IrrigationCost: c.Costs.Irrigation,
			EquipmentCost:  c.Costs.Equipment,
			OtherCosts:     c.Costs.Other,
		},
		TotalRevenue:    c.TotalRevenue,
		AreaAcres:       c.AreaAcres,
		ExpectedYield:   c.ExpectedYield,
		ActualYield:     c.ActualYield,
		TotalInvestment: c.TotalInvestment(),
		ProfitLoss:      c.ProfitLoss(),
		ROIPercentage:   c.ROIPercentage(),
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
		Version:         c.Version,
	}
}

func toGoalResponse(g *ledger.FinancialGoal) GoalResponse {
	return GoalResponse{
		ID:                 g.ID,
		GoalName:           g.Name,
		GoalType:           string(g.Type),
		GoalTypeName:       g.Type.DisplayName(),
		TargetAmount:       g.TargetAmount,
		CurrentAmount:      g.CurrentAmount,
		RemainingAmount:    g.RemainingAmount(),
		PercentageAchieved: g.PercentageAchieved(),
		TargetDate:         g.TargetDate,
		Description:        g.Description,
		IsAchieved:         g.IsAchieved,
		CreatedAt:          g.CreatedAt,
		UpdatedAt:          g.UpdatedAt,
		Version:            g.Version,
	}
}
