package models

import (
	"time"

	"github.com/farmledger/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountModel is the persistence model for the Account aggregate root
type AccountModel struct {
	OwnedAggregateModel
	AccountName    string             `gorm:"type:varchar(100);not null"`
	AccountType    ledger.AccountType `gorm:"type:varchar(20);not null"`
	AccountNumber  string             `gorm:"type:varchar(50)"`
	BankName       string             `gorm:"type:varchar(100)"`
	OpeningBalance decimal.Decimal    `gorm:"type:numeric(14,2);not null;default:0"`
	CurrentBalance decimal.Decimal    `gorm:"type:numeric(14,2);not null;default:0"`
	IsActive       bool               `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "finance_accounts"
}

// ToDomain converts the persistence model to a domain Account
func (m *AccountModel) ToDomain() *ledger.Account {
	return &ledger.Account{
		OwnedAggregateRoot: m.ToDomainOwnedAggregateRoot(),
		Name:               m.AccountName,
		Type:               m.AccountType,
		AccountNumber:      m.AccountNumber,
		BankName:           m.BankName,
		OpeningBalance:     m.OpeningBalance,
		CurrentBalance:     m.CurrentBalance,
		IsActive:           m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Account
func (m *AccountModel) FromDomain(a *ledger.Account) {
	m.FromDomainOwnedAggregateRoot(a.OwnedAggregateRoot)
	m.AccountName = a.Name
	m.AccountType = a.Type
	m.AccountNumber = a.AccountNumber
	m.BankName = a.BankName
	m.OpeningBalance = a.OpeningBalance
	m.CurrentBalance = a.CurrentBalance
	m.IsActive = a.IsActive
}

// AccountModelFromDomain creates a new persistence model from a domain Account
func AccountModelFromDomain(a *ledger.Account) *AccountModel {
	m := &AccountModel{}
	m.FromDomain(a)
	return m
}

// CategoryModel is the persistence model for the category registry
type CategoryModel struct {
	ID          uuid.UUID           `gorm:"type:uuid;primaryKey"`
	Name        string              `gorm:"type:varchar(100);not null;uniqueIndex:idx_ledger_category_kind_name,priority:2"`
	Kind        ledger.CategoryKind `gorm:"type:varchar(20);not null;uniqueIndex:idx_ledger_category_kind_name,priority:1"`
	Description string              `gorm:"type:text"`
	IsActive    bool                `gorm:"not null;default:true"`
	CreatedAt   time.Time           `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "ledger_categories"
}

// ToDomain converts the persistence model to a domain Category
func (m *CategoryModel) ToDomain() *ledger.Category {
	return &ledger.Category{
		ID:          m.ID,
		Name:        m.Name,
		Kind:        m.Kind,
		Description: m.Description,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
	}
}

// CategoryModelFromDomain creates a new persistence model from a domain Category
func CategoryModelFromDomain(c *ledger.Category) *CategoryModel {
	return &CategoryModel{
		ID:          c.ID,
		Name:        c.Name,
		Kind:        c.Kind,
		Description: c.Description,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
	}
}

// TransactionModel is the persistence model for ledger transactions
type TransactionModel struct {
	OwnedAggregateModel
	AccountID         uuid.UUID              `gorm:"type:uuid;not null;index"`
	TransactionType   ledger.TransactionType `gorm:"type:varchar(20);not null;index"`
	Amount            decimal.Decimal        `gorm:"type:numeric(14,2);not null"`
	Description       string                 `gorm:"type:varchar(500);not null"`
	ExpenseCategoryID *uuid.UUID             `gorm:"type:uuid;index"`
	IncomeCategoryID  *uuid.UUID             `gorm:"type:uuid;index"`
	ToAccountID       *uuid.UUID             `gorm:"type:uuid;index"`
	TransactionDate   time.Time              `gorm:"not null;index"`
	ReferenceNumber   string                 `gorm:"type:varchar(100)"`
	Notes             string                 `gorm:"type:text"`
	ReceiptKey        string                 `gorm:"type:varchar(500)"`
	DeletedAt         *time.Time             `gorm:"index"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "ledger_transactions"
}

// ToDomain converts the persistence model to a domain Transaction
func (m *TransactionModel) ToDomain() *ledger.Transaction {
	return &ledger.Transaction{
		OwnedAggregateRoot: m.ToDomainOwnedAggregateRoot(),
		AccountID:          m.AccountID,
		Type:               m.TransactionType,
		Amount:             m.Amount,
		Description:        m.Description,
		ExpenseCategoryID:  m.ExpenseCategoryID,
		IncomeCategoryID:   m.IncomeCategoryID,
		ToAccountID:        m.ToAccountID,
		TransactionDate:    m.TransactionDate.UTC(),
		ReferenceNumber:    m.ReferenceNumber,
		Notes:              m.Notes,
		ReceiptKey:         m.ReceiptKey,
		DeletedAt:          m.DeletedAt,
	}
}

// ToSnapshot converts the row straight to the balance-relevant snapshot
func (m *TransactionModel) ToSnapshot() ledger.TransactionSnapshot {
	return m.ToDomain().Snapshot()
}

// FromDomain populates the persistence model from a domain Transaction
func (m *TransactionModel) FromDomain(t *ledger.Transaction) {
	m.FromDomainOwnedAggregateRoot(t.OwnedAggregateRoot)
	m.AccountID = t.AccountID
	m.TransactionType = t.Type
	m.Amount = t.Amount
	m.Description = t.Description
	m.ExpenseCategoryID = t.ExpenseCategoryID
	m.IncomeCategoryID = t.IncomeCategoryID
	m.ToAccountID = t.ToAccountID
	m.TransactionDate = t.TransactionDate.UTC()
	m.ReferenceNumber = t.ReferenceNumber
	m.Notes = t.Notes
	m.ReceiptKey = t.ReceiptKey
	m.DeletedAt = t.DeletedAt
}

// TransactionModelFromDomain creates a new persistence model from a domain Transaction
func TransactionModelFromDomain(t *ledger.Transaction) *TransactionModel {
	m := &TransactionModel{}
	m.FromDomain(t)
	return m
}

// BudgetModel is the persistence model for budgets
type BudgetModel struct {
	OwnedAggregateModel
	BudgetName     string          `gorm:"type:varchar(100);not null"`
	CategoryID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	BudgetedAmount decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	SpentAmount    decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	StartDate      time.Time       `gorm:"not null;index"`
	EndDate        time.Time       `gorm:"not null;index"`
	IsActive       bool            `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (BudgetModel) TableName() string {
	return "budgets"
}

// ToDomain converts the persistence model to a domain Budget
func (m *BudgetModel) ToDomain() *ledger.Budget {
	return &ledger.Budget{
		OwnedAggregateRoot: m.ToDomainOwnedAggregateRoot(),
		Name:               m.BudgetName,
		CategoryID:         m.CategoryID,
		BudgetedAmount:     m.BudgetedAmount,
		SpentAmount:        m.SpentAmount,
		StartDate:          m.StartDate.UTC(),
		EndDate:            m.EndDate.UTC(),
		IsActive:           m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Budget
func (m *BudgetModel) FromDomain(b *ledger.Budget) {
	m.FromDomainOwnedAggregateRoot(b.OwnedAggregateRoot)
	m.BudgetName = b.Name
	m.CategoryID = b.CategoryID
	m.BudgetedAmount = b.BudgetedAmount
	m.SpentAmount = b.SpentAmount
	m.StartDate = b.StartDate.UTC()
	m.EndDate = b.EndDate.UTC()
	m.IsActive = b.IsActive
}

// BudgetModelFromDomain creates a new persistence model from a domain Budget
func BudgetModelFromDomain(b *ledger.Budget) *BudgetModel {
	m := &BudgetModel{}
	m.FromDomain(b)
	return m
}

// CropFinanceModel is the persistence model for crop records.
// (owner_id, crop_name, season, year) is unique; see the migrations.
type CropFinanceModel struct {
	OwnedAggregateModel
	CropName       string           `gorm:"type:varchar(100);not null;index"`
	Season         string           `gorm:"type:varchar(50);not null"`
	Year           int              `gorm:"not null;index"`
	SeedCost       decimal.Decimal  `gorm:"type:numeric(14,2);not null;default:0"`
	FertilizerCost decimal.Decimal  `gorm:"type:numeric(14,2);not null;default:0"`
	PesticideCost  decimal.Decimal  `gorm:"type:numeric(14,2);not null;default:0"`
	LaborCost      decimal.Decimal  `gorm:"type:numeric(14,2);not null;default:0"`
	IrrigationCost decimal.Decimal  `gorm:"type:numeric(14,2);not null;default:0"`
	EquipmentCost  decimal.Decimal  `gorm:"type:numeric(14,2);not null;default:0"`
	OtherCosts     decimal.Decimal  `gorm:"type:numeric(14,2);not null;default:0"`
	TotalRevenue   decimal.Decimal  `gorm:"type:numeric(14,2);not null;default:0"`
	AreaAcres      decimal.Decimal  `gorm:"type:numeric(10,2);not null"`
	ExpectedYield  *decimal.Decimal `gorm:"type:numeric(12,2)"`
	ActualYield    *decimal.Decimal `gorm:"type:numeric(12,2)"`
}

// TableName returns the table name for GORM
func (CropFinanceModel) TableName() string {
	return "crop_finances"
}

// ToDomain converts the persistence model to a domain CropFinance
func (m *CropFinanceModel) ToDomain() *ledger.CropFinance {
	return &ledger.CropFinance{
		OwnedAggregateRoot: m.ToDomainOwnedAggregateRoot(),
		CropName:           m.CropName,
		Season:             m.Season,
		Year:               m.Year,
		Costs: ledger.CropCosts{
			Seed:       m.SeedCost,
			Fertilizer: m.FertilizerCost,
			Pesticide:  m.PesticideCost,
			Labor:      m.LaborCost,
			Irrigation: m.IrrigationCost,
			Equipment:  m.EquipmentCost,
			Other:      m.OtherCosts,
		},
		TotalRevenue:  m.TotalRevenue,
		AreaAcres:     m.AreaAcres,
		ExpectedYield: m.ExpectedYield,
		ActualYield:   m.ActualYield,
	}
}

// FromDomain populates the persistence model from a domain CropFinance
func (m *CropFinanceModel) FromDomain(c *ledger.CropFinance) {
	m.FromDomainOwnedAggregateRoot(c.OwnedAggregateRoot)
	m.CropName = c.CropName
	m.Season = c.Season
	m.Year = c.Year
	m.SeedCost = c.Costs.Seed
	m.FertilizerCost = c.Costs.Fertilizer
	m.PesticideCost = c.Costs.Pesticide
	m.LaborCost = c.Costs.Labor
	m.IrrigationCost = c.Costs.Irrigation
	m.EquipmentCost = c.Costs.Equipment
	m.OtherCosts = c.Costs.Other
	m.TotalRevenue = c.TotalRevenue
	m.AreaAcres = c.AreaAcres
	m.ExpectedYield = c.ExpectedYield
	m.ActualYield = c.ActualYield
}

// CropFinanceModelFromDomain creates a new persistence model from a domain CropFinance
func CropFinanceModelFromDomain(c *ledger.CropFinance) *CropFinanceModel {
	m := &CropFinanceModel{}
	m.FromDomain(c)
	return m
}

// FinancialGoalModel is the persistence model for financial goals
type FinancialGoalModel struct {
	OwnedAggregateModel
	GoalName      string          `gorm:"type:varchar(100);not null"`
	GoalType      ledger.GoalType `gorm:"type:varchar(20);not null;index"`
	TargetAmount  decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	CurrentAmount decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	TargetDate    time.Time       `gorm:"not null;index"`
	Description   string          `gorm:"type:text"`
	IsAchieved    bool            `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (FinancialGoalModel) TableName() string {
	return "financial_goals"
}

// ToDomain converts the persistence model to a domain FinancialGoal
func (m *FinancialGoalModel) ToDomain() *ledger.FinancialGoal {
	return &ledger.FinancialGoal{
		OwnedAggregateRoot: m.ToDomainOwnedAggregateRoot(),
		Name:               m.GoalName,
		Type:               m.GoalType,
		TargetAmount:       m.TargetAmount,
		CurrentAmount:      m.CurrentAmount,
		TargetDate:         m.TargetDate.UTC(),
		Description:        m.Description,
		IsAchieved:         m.IsAchieved,
	}
}

// FromDomain populates the persistence model from a domain FinancialGoal
func (m *FinancialGoalModel) FromDomain(g *ledger.FinancialGoal) {
	m.FromDomainOwnedAggregateRoot(g.OwnedAggregateRoot)
	m.GoalName = g.Name
	m.GoalType = g.Type
	m.TargetAmount = g.TargetAmount
	m.CurrentAmount = g.CurrentAmount
	m.TargetDate = g.TargetDate.UTC()
	m.Description = g.Description
	m.IsAchieved = g.IsAchieved
}

// FinancialGoalModelFromDomain creates a new persistence model from a domain FinancialGoal
func FinancialGoalModelFromDomain(g *ledger.FinancialGoal) *FinancialGoalModel {
	m := &FinancialGoalModel{}
	m.FromDomain(g)
	return m
}

// All lists every model in creation order, for AutoMigrate on sqlite installs
func All() []any {
	return []any{
		&FarmerModel{},
		&CategoryModel{},
		&AccountModel{},
		&TransactionModel{},
		&BudgetModel{},
		&CropFinanceModel{},
		&FinancialGoalModel{},
	}
}
