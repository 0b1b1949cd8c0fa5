package persistence

import (
	"strings"

	"github.com/farmledger/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// AccountSortFields contains allowed sort fields for accounts
var AccountSortFields = map[string]bool{
	"created_at":      true,
	"updated_at":      true,
	"account_name":    true,
	"account_type":    true,
	"current_balance": true,
}

// TransactionSortFields contains allowed sort fields for transactions
var TransactionSortFields = map[string]bool{
	"created_at":       true,
	"transaction_date": true,
	"amount":           true,
	"transaction_type": true,
}

// BudgetSortFields contains allowed sort fields for budgets
var BudgetSortFields = map[string]bool{
	"created_at":      true,
	"budget_name":     true,
	"start_date":      true,
	"end_date":        true,
	"budgeted_amount": true,
	"spent_amount":    true,
}

// CropSortFields contains allowed sort fields for crop records
var CropSortFields = map[string]bool{
	"created_at":    true,
	"crop_name":     true,
	"season":        true,
	"year":          true,
	"total_revenue": true,
}

// GoalSortFields contains allowed sort fields for financial goals
var GoalSortFields = map[string]bool{
	"created_at":     true,
	"goal_name":      true,
	"target_date":    true,
	"target_amount":  true,
	"current_amount": true,
}

// applyListFilter orders by a whitelisted field and pages unless the filter asks for everything.
// created_at breaks ties so pages are stable.
func applyListFilter(db *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	db = db.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	if field != "created_at" {
		db = db.Order("created_at DESC")
	}
	if filter.All {
		return db
	}
	f := filter.Normalize()
	return db.Offset(f.Offset()).Limit(f.PageSize)
}
