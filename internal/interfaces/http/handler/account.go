package handler

import (
	"github.com/farmledger/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
)

// AccountHandler handles finance account HTTP requests
type AccountHandler struct {
	BaseHandler
	accountService *ledger.AccountService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accountService *ledger.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// Create godoc
// @Summary      Open an account
// @Description  Create a finance account; its balance starts at the opening balance
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        request body ledger.CreateAccountRequest true "Account"
// @Success      201 {object} dto.Response{data=ledger.AccountResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/accounts [post]
func (h *AccountHandler) Create(c *gin.Context) {
	owner, ok := h.farmerID(c)
	if !ok {
		return
	}
	var req ledger.CreateAccountRequest
	if !h.bindJSON(c, &req) {
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), owner, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, account)
}

// List godoc
// @Summary      List accounts
// @Tags         accounts
// @Produce      json
// @Param        include_inactive query bool false "Include deactivated accounts"
// @Param        account_type query string false "Account type"
// @Success      200 {object} dto.Response{data=[]ledger.AccountResponse}
// @Security     BearerAuth
// @Router       /finance/accounts [get]
func (h *AccountHandler) List(c *gin.Context) {
	owner, ok := h.farmerID(c)
	if !ok {
		return
	}
	var filter ledger.AccountListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), owner, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, accounts)
}

// GetByID godoc
// @Summary      Get an account
// @Tags         accounts
// @Produce      json
// @Param        id path string true "Account ID"
// @Success      200 {object} dto.Response{data=ledger.AccountResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/accounts/{id} [get]
func (h *AccountHandler) GetByID(c *gin.Context) {
	owner, id, ok := h.ownerAndID(c)
	if !ok {
		return
	}

	account, err := h.accountService.GetAccount(c.Request.Context(), owner, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// Update godoc
// @Summary      Update an account
// @Description  Rename an account or change its bank details. Balances are not editable.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        id path string true "Account ID"
// @Param        request body ledger.UpdateAccountRequest true "Account details"
// @Success      200 {object} dto.Response{data=ledger.AccountResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/accounts/{id} [put]
func (h *AccountHandler) Update(c *gin.Context) {
	owner, id, ok := h.ownerAndID(c)
	if !ok {
		return
	}
	var req ledger.UpdateAccountRequest
	if !h.bindJSON(c, &req) {
		return
	}

	account, err := h.accountService.UpdateAccount(c.Request.Context(), owner, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// Deactivate godoc
// @Summary      Deactivate an account
// @Description  Accounts are never removed; deactivation hides them from totals
// @Tags         accounts
// @Param        id path string true "Account ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/accounts/{id} [delete]
func (h *AccountHandler) Deactivate(c *gin.Context) {
	owner, id, ok := h.ownerAndID(c)
	if !ok {
		return
	}

	if err := h.accountService.DeactivateAccount(c.Request.Context(), owner, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// TotalBalance returns the sum of balances over active accounts
func (h *AccountHandler) TotalBalance(c *gin.Context) {
	owner, ok := h.farmerID(c)
	if !ok {
		return
	}

	total, err := h.accountService.TotalBalance(c.Request.Context(), owner)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, total)
}

// Verify recomputes the balance from the transaction log
func (h *AccountHandler) Verify(c *gin.Context) {
	owner, id, ok := h.ownerAndID(c)
	if !ok {
		return
	}

	result, err := h.accountService.VerifyBalance(c.Request.Context(), owner, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
