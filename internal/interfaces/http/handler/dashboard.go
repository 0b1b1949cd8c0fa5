package handler

import (
	"github.com/farmledger/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the farmer's financial overview
type DashboardHandler struct {
	BaseHandler
	dashboardService *ledger.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *ledger.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Summary godoc
// @Summary      Dashboard summary
// @Description  Total balance, month-to-date income and expense, budget and goal counts, recent transactions
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} dto.Response{data=ledger.DashboardSummaryResponse}
// @Security     BearerAuth
// @Router       /finance/dashboard/summary [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	owner, ok := h.farmerID(c)
	if !ok {
		return
	}

	summary, err := h.dashboardService.Summary(c.Request.Context(), owner)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Trends godoc
// @Summary      Monthly trends
// @Tags         dashboard
// @Produce      json
// @Param        months query int false "Number of months, oldest first" default(6)
// @Success      200 {object} dto.Response{data=[]ledger.MonthlyTrend}
// @Security     BearerAuth
// @Router       /finance/dashboard/trends [get]
func (h *DashboardHandler) Trends(c *gin.Context) {
	owner, ok := h.farmerID(c)
	if !ok {
		return
	}
	months, ok := h.queryInt(c, "months", 0)
	if !ok {
		return
	}

	trends, err := h.dashboardService.MonthlyTrends(c.Request.Context(), owner, months)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, trends)
}

// ExpenseBreakdown godoc
// @Summary      Expense breakdown
// @Tags         dashboard
// @Produce      json
// @Param        period query string false "week, month, quarter or year" default(month)
// @Success      200 {object} dto.Response{data=ledger.ExpenseBreakdownResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/dashboard/expense-breakdown [get]
func (h *DashboardHandler) ExpenseBreakdown(c *gin.Context) {
	owner, ok := h.farmerID(c)
	if !ok {
		return
	}

	breakdown, err := h.dashboardService.ExpenseBreakdown(c.Request.Context(), owner, c.DefaultQuery("period", "month"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, breakdown)
}
