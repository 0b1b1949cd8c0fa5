package ledger

import (
	"strings"

	"github.com/farmledger/backend/internal/domain/shared"
	"github.com/farmledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CropCosts holds the seven stored cost inputs of a crop season
type CropCosts struct {
	Seed       decimal.Decimal
	Fertilizer decimal.Decimal
	Pesticide  decimal.Decimal
	Labor      decimal.Decimal
	Irrigation decimal.Decimal
	Equipment  decimal.Decimal
	Other      decimal.Decimal
}

// Total sums every cost field
func (c CropCosts) Total() decimal.Decimal {
	return valueobject.SumDecimals(c.Seed, c.Fertilizer, c.Pesticide, c.Labor, c.Irrigation, c.Equipment, c.Other)
}

func (c CropCosts) validate() error {
	fields := []struct {
		name  string
		value decimal.Decimal
	}{
		{"seed_cost", c.Seed},
		{"fertilizer_cost", c.Fertilizer},
		{"pesticide_cost", c.Pesticide},
		{"labor_cost", c.Labor},
		{"irrigation_cost", c.Irrigation},
		{"equipment_cost", c.Equipment},
		{"other_costs", c.Other},
	}
	for _, f := range fields {
		if f.value.IsNegative() {
			return shared.NewValidationError(f.name, f.name+" cannot be negative")
		}
		if err := checkScale(f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

// CropFinance tracks investment and revenue of one crop in one season.
// Investment, profit and ROI are derived on every read from the stored inputs.
type CropFinance struct {
	shared.OwnedAggregateRoot
	CropName      string
	Season        string
	Year          int
	Costs         CropCosts
	TotalRevenue  decimal.Decimal
	AreaAcres     decimal.Decimal
	ExpectedYield *decimal.Decimal
	ActualYield   *decimal.Decimal
}

// CropFinanceInput carries the editable fields of a crop record
type CropFinanceInput struct {
	CropName      string
	Season        string
	Year          int
	Costs         CropCosts
	TotalRevenue  decimal.Decimal
	AreaAcres     decimal.Decimal
	ExpectedYield *decimal.Decimal
	ActualYield   *decimal.Decimal
}

var titleCaser = cases.Title(language.English)

// NormalizeCropLabel trims and title-cases crop and season names so that
// "paddy" and "Paddy " collide on the uniqueness key
func NormalizeCropLabel(s string) string {
	return titleCaser.String(strings.Join(strings.Fields(s), " "))
}

// Validate checks the record's shape
func (in CropFinanceInput) Validate() error {
	if NormalizeCropLabel(in.CropName) == "" {
		return shared.NewValidationError("crop_name", "crop name cannot be empty")
	}
	if len(in.CropName) > 100 {
		return shared.NewValidationError("crop_name", "crop name cannot exceed 100 characters")
	}
	if NormalizeCropLabel(in.Season) == "" {
		return shared.NewValidationError("season", "season cannot be empty")
	}
	if len(in.Season) > 50 {
		return shared.NewValidationError("season", "season cannot exceed 50 characters")
	}
	if in.Year < 1900 || in.Year > 2100 {
		return shared.NewValidationError("year", "year must be between 1900 and 2100")
	}
	if !in.AreaAcres.IsPositive() {
		return shared.NewValidationError("area_acres", "area must be positive")
	}
	if err := in.Costs.validate(); err != nil {
		return err
	}
	if in.TotalRevenue.IsNegative() {
		return shared.NewValidationError("total_revenue", "total_revenue cannot be negative")
	}
	if err := checkScale("total_revenue", in.TotalRevenue); err != nil {
		return err
	}
	if in.ExpectedYield != nil && in.ExpectedYield.IsNegative() {
		return shared.NewValidationError("expected_yield", "expected yield cannot be negative")
	}
	if in.ActualYield != nil && in.ActualYield.IsNegative() {
		return shared.NewValidationError("actual_yield", "actual yield cannot be negative")
	}
	return nil
}

// NewCropFinance creates a crop record
func NewCropFinance(ownerID uuid.UUID, in CropFinanceInput) (*CropFinance, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewValidationError("owner_id", "owner is required")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	c := &CropFinance{OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID)}
	c.assign(in)
	return c, nil
}

func (c *CropFinance) assign(in CropFinanceInput) {
	c.CropName = NormalizeCropLabel(in.CropName)
	c.Season = NormalizeCropLabel(in.Season)
	c.Year = in.Year
	c.Costs = in.Costs
	c.TotalRevenue = in.TotalRevenue
	c.AreaAcres = in.AreaAcres
	c.ExpectedYield = in.ExpectedYield
	c.ActualYield = in.ActualYield
}

// Update replaces the stored inputs
func (c *CropFinance) Update(in CropFinanceInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	c.assign(in)
	c.IncrementVersion()
	return nil
}

// RecordSale adds sale revenue and optionally records the harvested quantity
func (c *CropFinance) RecordSale(amount valueobject.Money, quantity *decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewValidationError("amount", "sale amount must be positive")
	}
	if err := checkScale("amount", amount.Amount()); err != nil {
		return err
	}
	if quantity != nil && quantity.IsNegative() {
		return shared.NewValidationError("quantity", "quantity cannot be negative")
	}
	c.TotalRevenue = c.TotalRevenue.Add(amount.Amount())
	if quantity != nil {
		q := *quantity
		c.ActualYield = &q
	}
	c.IncrementVersion()
	c.AddDomainEvent(NewCropSaleRecordedEvent(c, amount.Amount(), quantity))
	return nil
}

// TotalInvestment is the sum of the cost fields
func (c *CropFinance) TotalInvestment() decimal.Decimal {
	return c.Costs.Total()
}

// ProfitLoss is revenue minus investment
func (c *CropFinance) ProfitLoss() decimal.Decimal {
	return c.TotalRevenue.Sub(c.TotalInvestment())
}

// ROIPercentage is profit over investment as a percentage, 0 when nothing was invested
func (c *CropFinance) ROIPercentage() decimal.Decimal {
	return valueobject.Percentage(c.ProfitLoss(), c.TotalInvestment())
}

// ProfitPerAcre is profit divided by area, 0 for a zero area
func ProfitPerAcre(profit, area decimal.Decimal) decimal.Decimal {
	if !area.IsPositive() {
		return decimal.Zero
	}
	return profit.Div(area).Round(valueobject.Scale)
}
