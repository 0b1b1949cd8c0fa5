package ledger

import (
	"time"

	"github.com/google/uuid"
)

// CategoryKind separates the expense and income category registries
type CategoryKind string

const (
	CategoryKindExpense CategoryKind = "EXPENSE"
	CategoryKindIncome  CategoryKind = "INCOME"
)

// IsValid checks if the kind is known
func (k CategoryKind) IsValid() bool {
	return k == CategoryKindExpense || k == CategoryKindIncome
}

// CropSalesCategory is the income category sales recorded against a crop are booked under
const CropSalesCategory = "Crop Sales"

// Category is an entry of the pre-seeded category registry.
// Categories are shared reference data, not owned by a farmer.
type Category struct {
	ID          uuid.UUID
	Name        string
	Kind        CategoryKind
	Description string
	IsActive    bool
	CreatedAt   time.Time
}

// Matches reports whether the category may be used for a transaction of type t
func (c *Category) Matches(t TransactionType) bool {
	switch t {
	case TransactionTypeExpense:
		return c.Kind == CategoryKindExpense
	case TransactionTypeIncome:
		return c.Kind == CategoryKindIncome
	}
	return false
}

// CategorySeed is a name and description pair from the default registry
type CategorySeed struct {
	Name        string
	Description string
}

// DefaultExpenseCategories is the expense registry seeded on install
var DefaultExpenseCategories = []CategorySeed{
	{"Seeds", "Cost of seeds and seedlings"},
	{"Fertilizers", "Fertilizer and soil amendments"},
	{"Pesticides", "Pesticides, herbicides, and fungicides"},
	{"Labor", "Farm labor costs"},
	{"Equipment", "Farm equipment and tools"},
	{"Fuel", "Fuel and energy costs"},
	{"Irrigation", "Water and irrigation costs"},
	{"Transportation", "Transportation and logistics"},
	{"Storage", "Storage and warehousing"},
	{"Insurance", "Crop and equipment insurance"},
	{"Utilities", "Electricity, phone, internet"},
	{"Maintenance", "Equipment and facility maintenance"},
	{"Professional Services", "Veterinary, consulting, legal services"},
	{"Taxes", "Property taxes and fees"},
	{"Marketing", "Marketing and advertising expenses"},
	{"Packaging", "Packaging and processing costs"},
	{"Other", "Miscellaneous expenses"},
}

// DefaultIncomeCategories is the income registry seeded on install
var DefaultIncomeCategories = []CategorySeed{
	{CropSalesCategory, "Revenue from crop sales"},
	{"Livestock Sales", "Revenue from livestock sales"},
	{"Dairy Products", "Revenue from milk and dairy products"},
	{"Poultry Products", "Revenue from eggs and poultry"},
	{"Government Subsidies", "Government subsidies and support payments"},
	{"Insurance Claims", "Insurance claim payments"},
	{"Equipment Rental", "Income from renting out equipment"},
	{"Land Rental", "Income from renting out land"},
	{"Consulting", "Income from agricultural consulting services"},
	{"Contract Farming", "Income from contract farming agreements"},
	{"Value-Added Products", "Income from processed farm products"},
	{"Agri-Tourism", "Income from farm tourism activities"},
	{"Other Farm Income", "Other farm-related income sources"},
	{"Off-Farm Income", "Non-farm income sources"},
}
