package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/farmledger/backend/internal/domain/ledger"
	"github.com/farmledger/backend/internal/domain/shared"
	"github.com/farmledger/backend/internal/domain/shared/valueobject"
	"github.com/farmledger/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// bestPerformingLimit caps the ROI ranking of the profitability analysis
const bestPerformingLimit = 5

// CropService tracks investment and revenue per crop season
type CropService struct {
	deps Deps
}

// NewCropService creates a new CropService
func NewCropService(deps Deps) *CropService {
	return &CropService{deps: deps.withDefaults()}
}

func toCropInput(req CropRequest) ledger.CropFinanceInput {
	return ledger.CropFinanceInput{
		CropName: req.CropName,
		Season:   req.Season,
		Year:     req.Year,
		Costs: ledger.CropCosts{
			Seed:       req.SeedCost,
			Fertilizer: req.FertilizerCost,
			Pesticide:  req.PesticideCost,
			Labor:      req.LaborCost,
			Irrigation: req.IrrigationCost,
			Equipment:  req.EquipmentCost,
			Other:      req.OtherCosts,
		},
		TotalRevenue:  req.TotalRevenue,
		AreaAcres:     req.AreaAcres,
		ExpectedYield: req.ExpectedYield,
		ActualYield:   req.ActualYield,
	}
}

func duplicateCrop(c *ledger.CropFinance) error {
	return shared.NewDomainError(shared.KindConflict, shared.ErrAlreadyExists.Code,
		fmt.Sprintf("a record for %s in %s %d already exists", c.CropName, c.Season, c.Year))
}

// CreateCrop records a crop season. (crop, season, year) is unique per farmer.
func (s *CropService) CreateCrop(ctx context.Context, ownerID uuid.UUID, req CropRequest) (*CropResponse, error) {
	crop, err := ledger.NewCropFinance(ownerID, toCropInput(req))
	if err != nil {
		return nil, err
	}

	err = s.deps.mutate(ctx, func(repos Repositories) ([]shared.DomainEvent, error) {
		exists, err := repos.Crops().ExistsByKey(ctx, ownerID, crop.CropName, crop.Season, crop.Year, nil)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, duplicateCrop(crop)
		}
		return nil, repos.Crops().Save(ctx, crop)
	})
	if err != nil {
		return nil, err
	}
	resp := toCropResponse(crop)
	return &resp, nil
}

// UpdateCrop replaces the stored inputs of a crop record
func (s *CropService) UpdateCrop(ctx context.Context, ownerID, id uuid.UUID, req CropRequest) (*CropResponse, error) {
	in := toCropInput(req)
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var crop *ledger.CropFinance
	err := s.deps.mutate(ctx, func(repos Repositories) ([]shared.DomainEvent, error) {
		var err error
		crop, err = repos.Crops().FindByIDForUpdate(ctx, ownerID, id)
		if err != nil {
			return nil, err
		}
		if err := crop.Update(in); err != nil {
			return nil, err
		}
		exists, err := repos.Crops().ExistsByKey(ctx, ownerID, crop.CropName, crop.Season, crop.Year, &crop.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, duplicateCrop(crop)
		}
		return nil, repos.Crops().SaveWithLock(ctx, crop)
	})
	if err != nil {
		return nil, err
	}
	resp := toCropResponse(crop)
	return &resp, nil
}

// DeleteCrop removes a crop record. Income transactions booked for its sales stay in the ledger.
func (s *CropService) DeleteCrop(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.deps.mutate(ctx, func(repos Repositories) ([]shared.DomainEvent, error) {
		return nil, repos.Crops().Delete(ctx, ownerID, id)
	})
}

// GetCrop returns one crop record of the farmer
func (s *CropService) GetCrop(ctx context.Context, ownerID, id uuid.UUID) (*CropResponse, error) {
	crop, err := s.deps.UoW.Read().Crops().FindByIDForOwner(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	resp := toCropResponse(crop)
	return &resp, nil
}

// ListCrops returns crop records, newest year first
func (s *CropService) ListCrops(ctx context.Context, ownerID uuid.UUID, filter CropListFilter) ([]CropResponse, error) {
	crops, err := s.deps.UoW.Read().Crops().FindAllForOwner(ctx, ownerID, ledger.CropFilter{
		Filter: shared.Filter{All: true, OrderBy: "year", OrderDir: "desc"},
		Year:   filter.Year,
		Season: strings.TrimSpace(filter.Season),
		Crop:   strings.TrimSpace(filter.Crop),
	})
	if err != nil {
		return nil, err
	}
	out := make([]CropResponse, len(crops))
	for i := range crops {
		out[i] = toCropResponse(&crops[i])
	}
	return out, nil
}

// RecordSale adds sale revenue to a crop. When an account is given, an
// INCOME transaction in the Crop Sales category is booked through the same
// create path as any other transaction, in the same unit of work.
func (s *CropService) RecordSale(ctx context.Context, ownerID, cropID uuid.UUID, req SaleRequest) (*SaleResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "crop", "record_sale")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrCropID, cropID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	amount := valueobject.NewMoney(req.Amount)
	var crop *ledger.CropFinance
	var txn *ledger.Transaction
	err := s.deps.mutate(ctx, func(repos Repositories) ([]shared.DomainEvent, error) {
		var err error
		crop, err = repos.Crops().FindByIDForUpdate(ctx, ownerID, cropID)
		if err != nil {
			return nil, err
		}
		if err := crop.RecordSale(amount, req.Quantity); err != nil {
			return nil, err
		}
		if err := repos.Crops().SaveWithLock(ctx, crop); err != nil {
			return nil, fmt.Errorf("save crop: %w", err)
		}
		events := crop.GetDomainEvents()

		if req.AccountID == nil {
			return events, nil
		}
		category, err := repos.Categories().FindByName(ctx, ledger.CategoryKindIncome, ledger.CropSalesCategory)
		if err != nil {
			return nil, fmt.Errorf("find %s category: %w", ledger.CropSalesCategory, err)
		}
		description := strings.TrimSpace(req.Description)
		if description == "" {
			description = crop.CropName + " sale"
		}
		date := s.deps.today()
		if req.TransactionDate != nil {
			date = ledger.WallTime(*req.TransactionDate)
		}
		txn, _, err = recordTransaction(ctx, repos, ownerID, ledger.TransactionInput{
			AccountID:       *req.AccountID,
			Type:            ledger.TransactionTypeIncome,
			Amount:          amount,
			Description:     description,
			CategoryID:      &category.ID,
			TransactionDate: date,
		})
		if err != nil {
			return nil, err
		}
		return append(events, txn.GetDomainEvents()...), nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resp := &SaleResponse{Crop: toCropResponse(crop)}
	if txn != nil {
		s.deps.Metrics.TransactionRecorded(ctx, txn.Type, txn.Amount)
		names, err := categoryNames(ctx, s.deps.UoW.Read().Categories())
		if err != nil {
			return nil, err
		}
		t := toTransactionResponse(txn, names)
		resp.Transaction = &t
	}
	return resp, nil
}

// ProfitabilityAnalysis summarizes investment, revenue and ROI over every crop record
func (s *CropService) ProfitabilityAnalysis(ctx context.Context, ownerID uuid.UUID) (*ProfitabilityResponse, error) {
	crops, err := s.deps.UoW.Read().Crops().FindAllForOwner(ctx, ownerID, ledger.CropFilter{
		Filter: shared.Filter{All: true, OrderBy: "year", OrderDir: "desc"},
	})
	if err != nil {
		return nil, err
	}
	return analyzeProfitability(crops), nil
}

func analyzeProfitability(crops []ledger.CropFinance) *ProfitabilityResponse {
	resp := &ProfitabilityResponse{
		TotalCrops:        len(crops),
		TotalInvestment:   decimal.Zero,
		TotalRevenue:      decimal.Zero,
		BestPerforming:    []CropPerformance{},
		CropWiseBreakdown: []CropSummary{},
	}

	type cropAgg struct {
		summary CropSummary
		roiSum  decimal.Decimal
	}
	byName := make(map[string]*cropAgg)
	var names []string

	for i := range crops {
		c := &crops[i]
		investment := c.TotalInvestment()
		resp.TotalInvestment = resp.TotalInvestment.Add(investment)
		resp.TotalRevenue = resp.TotalRevenue.Add(c.TotalRevenue)
		if c.TotalRevenue.IsPositive() {
			resp.CropsWithRevenue++
		}
		if investment.IsPositive() {
			resp.BestPerforming = append(resp.BestPerforming, CropPerformance{
				ID:            c.ID,
				CropName:      c.CropName,
				Season:        c.Season,
				Year:          c.Year,
				ProfitLoss:    c.ProfitLoss(),
				ROIPercentage: c.ROIPercentage(),
			})
		}

		agg, ok := byName[c.CropName]
		if !ok {
			agg = &cropAgg{summary: CropSummary{
				CropName:        c.CropName,
				TotalInvestment: decimal.Zero,
				TotalRevenue:    decimal.Zero,
				TotalProfit:     decimal.Zero,
				TotalArea:       decimal.Zero,
			}, roiSum: decimal.Zero}
			byName[c.CropName] = agg
			names = append(names, c.CropName)
		}
		agg.summary.Seasons++
		agg.summary.TotalInvestment = agg.summary.TotalInvestment.Add(investment)
		agg.summary.TotalRevenue = agg.summary.TotalRevenue.Add(c.TotalRevenue)
		agg.summary.TotalProfit = agg.summary.TotalProfit.Add(c.ProfitLoss())
		agg.summary.TotalArea = agg.summary.TotalArea.Add(c.AreaAcres)
		agg.roiSum = agg.roiSum.Add(c.ROIPercentage())
	}

	resp.OverallProfit = resp.TotalRevenue.Sub(resp.TotalInvestment)
	resp.OverallROI = valueobject.Percentage(resp.OverallProfit, resp.TotalInvestment)

	sort.SliceStable(resp.BestPerforming, func(i, j int) bool {
		return resp.BestPerforming[i].ROIPercentage.GreaterThan(resp.BestPerforming[j].ROIPercentage)
	})
	if len(resp.BestPerforming) > bestPerformingLimit {
		resp.BestPerforming = resp.BestPerforming[:bestPerformingLimit]
	}

	sort.Strings(names)
	for _, name := range names {
		agg := byName[name]
		agg.summary.AverageROI = agg.roiSum.Div(decimal.NewFromInt(int64(agg.summary.Seasons))).Round(valueobject.Scale)
		agg.summary.ProfitPerAcre = ledger.ProfitPerAcre(agg.summary.TotalProfit, agg.summary.TotalArea)
		resp.CropWiseBreakdown = append(resp.CropWiseBreakdown, agg.summary)
	}
	return resp
}
