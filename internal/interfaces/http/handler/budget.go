package handler

import (
	"github.com/farmledger/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
)

// BudgetHandler handles budget HTTP requests
type BudgetHandler struct {
	BaseHandler
	budgetService *ledger.BudgetService
}

// NewBudgetHandler creates a new budget handler
func NewBudgetHandler(budgetService *ledger.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// Create godoc
// @Summary      Create a budget
// @Description  A spending cap for one expense category over a date window. Spent is derived from the ledger.
// @Tags         budgets
// @Accept       json
// @Produce      json
// @Param        request body ledger.BudgetRequest true "Budget"
// @Success      201 {object} dto.Response{data=ledger.BudgetResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/budgets [post]
func (h *BudgetHandler) Create(c *gin.Context) {
	owner, ok := h.farmerID(c)
	if !ok {
		return
	}
	var req ledger.BudgetRequest
	if !h.bindJSON(c, &req) {
		return
	}

	budget, err := h.budgetService.CreateBudget(c.Request.Context(), owner, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, budget)
}

// List returns the farmer's budgets
func (h *BudgetHandler) List(c *gin.Context) {
	owner, ok := h.farmerID(c)
	if !ok {
		return
	}
	filter := ledger.BudgetListFilter{IncludeInactive: c.Query("include_inactive") == "true"}
	if filter.CategoryID, ok = h.queryUUID(c, "category_id"); !ok {
		return
	}

	budgets, err := h.budgetService.ListBudgets(c.Request.Context(), owner, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, budgets)
}

// Current godoc
// @Summary      Current budgets
// @Description  Active budgets whose window contains today, recomputed from the ledger before returning
// @Tags         budgets
// @Produce      json
// @Success      200 {object} dto.Response{data=[]ledger.BudgetResponse}
// @Security     BearerAuth
// @Router       /finance/budgets/current [get]
func (h *BudgetHandler) Current(c *gin.Context) {
	owner, ok := h.farmerID(c)
	if !ok {
		return
	}

	budgets, err := h.budgetService.BudgetCurrent(c.Request.Context(), owner)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, budgets)
}

// GetByID returns one budget
func (h *BudgetHandler) GetByID(c *gin.Context) {
	owner, id, ok := h.ownerAndID(c)
	if !ok {
		return
	}

	budget, err := h.budgetService.GetBudget(c.Request.Context(), owner, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, budget)
}

// Update replaces a budget's name, category, amount and window
func (h *BudgetHandler) Update(c *gin.Context) {
	owner, id, ok := h.ownerAndID(c)
	if !ok {
		return
	}
	var req ledger.BudgetRequest
	if !h.bindJSON(c, &req) {
		return
	}

	budget, err := h.budgetService.UpdateBudget(c.Request.Context(), owner, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, budget)
}

// Deactivate soft-deletes a budget
func (h *BudgetHandler) Deactivate(c *gin.Context) {
	owner, id, ok := h.ownerAndID(c)
	if !ok {
		return
	}

	if err := h.budgetService.DeactivateBudget(c.Request.Context(), owner, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SpendingAnalysis godoc
// @Summary      Budget spending analysis
// @Description  Matching transactions, daily average and projected spending to the end of the window
// @Tags         budgets
// @Produce      json
// @Param        id path string true "Budget ID"
// @Success      200 {object} dto.Response{data=ledger.SpendingAnalysisResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/budgets/{id}/spending-analysis [get]
func (h *BudgetHandler) SpendingAnalysis(c *gin.Context) {
	owner, id, ok := h.ownerAndID(c)
	if !ok {
		return
	}

	analysis, err := h.budgetService.SpendingAnalysis(c.Request.Context(), owner, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, analysis)
}
