package ledger

import (
	"testing"

	"github.com/farmledger/backend/internal/domain/shared"
	"github.com/farmledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cropInput() CropFinanceInput {
	return CropFinanceInput{
		CropName: "paddy",
		Season:   "kharif",
		Year:     2024,
		Costs: CropCosts{
			Seed:       decimal.NewFromInt(1000),
			Fertilizer: decimal.NewFromInt(800),
			Pesticide:  decimal.NewFromInt(400),
			Labor:      decimal.NewFromInt(1200),
			Irrigation: decimal.NewFromInt(300),
			Equipment:  decimal.NewFromInt(200),
			Other:      decimal.NewFromInt(100),
		},
		TotalRevenue: decimal.NewFromInt(6000),
		AreaAcres:    decimal.NewFromInt(2),
	}
}

func TestCropFinance_DerivedFigures(t *testing.T) {
	crop, err := NewCropFinance(uuid.New(), cropInput())
	require.NoError(t, err)

	assert.Equal(t, "Paddy", crop.CropName)
	assert.Equal(t, "Kharif", crop.Season)
	assert.True(t, crop.TotalInvestment().Equal(decimal.NewFromInt(4000)))
	assert.True(t, crop.ProfitLoss().Equal(decimal.NewFromInt(2000)))
	assert.True(t, crop.ROIPercentage().Equal(decimal.NewFromInt(50)))
}

func TestCropFinance_ZeroInvestmentROI(t *testing.T) {
	in := cropInput()
	in.Costs = CropCosts{}
	crop, err := NewCropFinance(uuid.New(), in)
	require.NoError(t, err)

	assert.True(t, crop.TotalInvestment().IsZero())
	assert.True(t, crop.ROIPercentage().IsZero())
}

func TestCropFinance_RecordSale(t *testing.T) {
	in := cropInput()
	in.TotalRevenue = decimal.Zero
	crop, err := NewCropFinance(uuid.New(), in)
	require.NoError(t, err)

	qty := decimal.NewFromInt(40)
	require.NoError(t, crop.RecordSale(valueobject.NewMoneyFromInt(6000), &qty))
	assert.True(t, crop.TotalRevenue.Equal(decimal.NewFromInt(6000)))
	require.NotNil(t, crop.ActualYield)
	assert.True(t, crop.ActualYield.Equal(qty))
	assert.True(t, crop.ROIPercentage().Equal(decimal.NewFromInt(50)), "derived figures follow the new revenue")

	events := crop.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeCropSaleRecorded, events[0].EventType())

	err = crop.RecordSale(valueobject.Zero(), nil)
	assert.True(t, shared.IsValidation(err))

	var de *shared.DomainError
	err = crop.RecordSale(valueobject.NewMoney(decimal.RequireFromString("10.125")), nil)
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "amount", de.Field)
	assert.True(t, crop.TotalRevenue.Equal(decimal.NewFromInt(6000)), "a rejected sale leaves revenue untouched")
}

func TestCropFinanceInput_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *CropFinanceInput)
		field  string
	}{
		{"negative cost", func(in *CropFinanceInput) { in.Costs.Labor = decimal.NewFromInt(-1) }, "labor_cost"},
		{"zero area", func(in *CropFinanceInput) { in.AreaAcres = decimal.Zero }, "area_acres"},
		{"year too early", func(in *CropFinanceInput) { in.Year = 1899 }, "year"},
		{"blank crop", func(in *CropFinanceInput) { in.CropName = " " }, "crop_name"},
		{"negative revenue", func(in *CropFinanceInput) { in.TotalRevenue = decimal.NewFromInt(-1) }, "total_revenue"},
		{"sub-paise revenue", func(in *CropFinanceInput) { in.TotalRevenue = decimal.RequireFromString("1.001") }, "total_revenue"},
		{"sub-paise cost", func(in *CropFinanceInput) { in.Costs.Seed = decimal.RequireFromString("0.333") }, "seed_cost"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := cropInput()
			tc.mutate(&in)
			var de *shared.DomainError
			require.ErrorAs(t, in.Validate(), &de)
			assert.Equal(t, tc.field, de.Field)
		})
	}
}

func TestProfitPerAcre(t *testing.T) {
	assert.True(t, ProfitPerAcre(decimal.NewFromInt(2000), decimal.NewFromInt(4)).Equal(decimal.NewFromInt(500)))
	assert.True(t, ProfitPerAcre(decimal.NewFromInt(2000), decimal.Zero).IsZero())
}
