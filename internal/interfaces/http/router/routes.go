package router

import (
	"github.com/farmledger/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// FinanceHandlers are the handlers served under /finance
type FinanceHandlers struct {
	Categories   *handler.CategoryHandler
	Accounts     *handler.AccountHandler
	Transactions *handler.TransactionHandler
	Transfers    *handler.TransferHandler
	Budgets      *handler.BudgetHandler
	Crops        *handler.CropHandler
	Goals        *handler.GoalHandler
	Dashboard    *handler.DashboardHandler
}

// FinanceRoutes builds the authenticated ledger API. middleware runs in the
// given order before every finance handler; the first entry is expected to
// authenticate the farmer.
func FinanceRoutes(h FinanceHandlers, middleware ...gin.HandlerFunc) *DomainGroup {
	finance := NewDomainGroup("finance", "/finance").Use(middleware...)

	finance.GET("/categories", h.Categories.List)

	finance.POST("/accounts", h.Accounts.Create)
	finance.GET("/accounts", h.Accounts.List)
	finance.GET("/accounts/total-balance", h.Accounts.TotalBalance)
	finance.GET("/accounts/:id", h.Accounts.GetByID)
	finance.PUT("/accounts/:id", h.Accounts.Update)
	finance.DELETE("/accounts/:id", h.Accounts.Deactivate)
	finance.GET("/accounts/:id/verify", h.Accounts.Verify)

	finance.POST("/transactions", h.Transactions.Create)
	finance.GET("/transactions", h.Transactions.List)
	finance.GET("/transactions/summary", h.Transactions.Summary)
	finance.GET("/transactions/:id", h.Transactions.GetByID)
	finance.PUT("/transactions/:id", h.Transactions.Update)
	finance.DELETE("/transactions/:id", h.Transactions.Delete)
	if h.Transactions.ReceiptsEnabled() {
		finance.POST("/transactions/:id/receipt", h.Transactions.AttachReceipt)
		finance.GET("/transactions/:id/receipt", h.Transactions.ReceiptURL)
	}

	finance.POST("/transfers", h.Transfers.Create)

	finance.POST("/budgets", h.Budgets.Create)
	finance.GET("/budgets", h.Budgets.List)
	finance.GET("/budgets/current", h.Budgets.Current)
	finance.GET("/budgets/:id", h.Budgets.GetByID)
	finance.PUT("/budgets/:id", h.Budgets.Update)
	finance.DELETE("/budgets/:id", h.Budgets.Deactivate)
	finance.GET("/budgets/:id/spending-analysis", h.Budgets.SpendingAnalysis)

	finance.POST("/crops", h.Crops.Create)
	finance.GET("/crops", h.Crops.List)
	finance.GET("/crops/profitability", h.Crops.Profitability)
	finance.GET("/crops/:id", h.Crops.GetByID)
	finance.PUT("/crops/:id", h.Crops.Update)
	finance.DELETE("/crops/:id", h.Crops.Delete)
	finance.POST("/crops/:id/sales", h.Crops.RecordSale)

	finance.POST("/goals", h.Goals.Create)
	finance.GET("/goals", h.Goals.List)
	finance.GET("/goals/progress", h.Goals.Progress)
	finance.GET("/goals/:id", h.Goals.GetByID)
	finance.PUT("/goals/:id", h.Goals.Update)
	finance.DELETE("/goals/:id", h.Goals.Delete)
	finance.POST("/goals/:id/contributions", h.Goals.AddContribution)

	dashboard := finance.Group("dashboard", "/dashboard")
	dashboard.GET("/summary", h.Dashboard.Summary)
	dashboard.GET("/trends", h.Dashboard.Trends)
	dashboard.GET("/expense-breakdown", h.Dashboard.ExpenseBreakdown)

	return finance
}

// AuthRoutes builds the public auth endpoints plus logout and me, which run
// behind requireAuth
func AuthRoutes(h *handler.AuthHandler, requireAuth gin.HandlerFunc) *DomainGroup {
	authRoutes := NewDomainGroup("auth", "/auth")
	authRoutes.POST("/register", h.Register)
	authRoutes.POST("/login", h.Login)
	authRoutes.POST("/refresh", h.Refresh)
	authRoutes.POST("/logout", requireAuth, h.Logout)
	authRoutes.GET("/me", requireAuth, h.Me)
	return authRoutes
}

// SystemRoutes builds the unauthenticated health and info endpoints
func SystemRoutes(h *handler.SystemHandler) *DomainGroup {
	system := NewDomainGroup("system", "")
	system.GET("/health", h.Health)
	system.GET("/system/info", h.Info)
	return system
}
