package handler

import (
	"github.com/farmledger/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
)

// TransactionHandler handles ledger transaction HTTP requests
type TransactionHandler struct {
	BaseHandler
	transactionService *ledger.TransactionService
	receiptService     *ledger.ReceiptService
}

// NewTransactionHandler creates a new transaction handler. receiptService may
// be nil when receipt storage is disabled.
func NewTransactionHandler(transactionService *ledger.TransactionService, receiptService *ledger.ReceiptService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		receiptService:     receiptService,
	}
}

// ReceiptsEnabled reports whether the receipt routes should be registered
func (h *TransactionHandler) ReceiptsEnabled() bool {
	return h.receiptService != nil
}

// Create godoc
// @Summary      Record a transaction
// @Description  Record income, expense or a transfer and apply it to account balances atomically
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Replay protection key"
// @Param        request body ledger.TransactionRequest true "Transaction"
// @Success      201 {object} dto.Response{data=ledger.TransactionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	owner, ok := h.farmerID(c)
	if !ok {
		return
	}
	var req ledger.TransactionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	txn, err := h.transactionService.CreateTransaction(c.Request.Context(), owner, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, txn)
}

// List godoc
// @Summary      List transactions
// @Description  Newest first, paginated
// @Tags         transactions
// @Produce      json
// @Param        transaction_type query string false "INCOME, EXPENSE or TRANSFER"
// @Param        account_id query string false "Account involved as source or destination"
// @Param        category_id query string false "Category ID"
// @Param        start_date query string false "YYYY-MM-DD, inclusive"
// @Param        end_date query string false "YYYY-MM-DD, inclusive"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]ledger.TransactionResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /finance/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	owner, ok := h.farmerID(c)
	if !ok {
		return
	}

	filter := ledger.TransactionListFilter{TransactionType: c.Query("transaction_type")}
	if filter.AccountID, ok = h.queryUUID(c, "account_id"); !ok {
		return
	}
	if filter.CategoryID, ok = h.queryUUID(c, "category_id"); !ok {
		return
	}
	if filter.StartDate, ok = h.queryDate(c, "start_date"); !ok {
		return
	}
	if filter.EndDate, ok = h.queryDate(c, "end_date"); !ok {
		return
	}
	if filter.Page, ok = h.queryInt(c, "page", 1); !ok {
		return
	}
	if filter.PageSize, ok = h.queryInt(c, "page_size", 0); !ok {
		return
	}

	page, err := h.transactionService.ListTransactions(c.Request.Context(), owner, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}

// Summary godoc
// @Summary      Transaction summary
// @Description  Income, expense and per-category totals over a date range. Defaults to the current month to date.
// @Tags         transactions
// @Produce      json
// @Param        start_date query string false "YYYY-MM-DD"
// @Param        end_date query string false "YYYY-MM-DD"
// @Success      200 {object} dto.Response{data=ledger.TransactionSummaryResponse}
// @Security     BearerAuth
// @Router       /finance/transactions/summary [get]
func (h *TransactionHandler) Summary(c *gin.Context) {
	owner, ok := h.farmerID(c)
	if !ok {
		return
	}
	start, ok := h.queryDate(c, "start_date")
	if !ok {
		return
	}
	end, ok := h.queryDate(c, "end_date")
	if !ok {
		return
	}

	summary, err := h.transactionService.TransactionSummary(c.Request.Context(), owner, start, end)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// GetByID returns one transaction
func (h *TransactionHandler) GetByID(c *gin.Context) {
	owner, id, ok := h.ownerAndID(c)
	if !ok {
		return
	}

	txn, err := h.transactionService.GetTransaction(c.Request.Context(), owner, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, txn)
}

// Update godoc
// @Summary      Edit a transaction
// @Description  Replaces every field. The old effect is reversed and the new one applied in one unit.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id path string true "Transaction ID"
// @Param        request body ledger.TransactionRequest true "Transaction"
// @Success      200 {object} dto.Response{data=ledger.TransactionResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/transactions/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	owner, id, ok := h.ownerAndID(c)
	if !ok {
		return
	}
	var req ledger.TransactionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	txn, err := h.transactionService.EditTransaction(c.Request.Context(), owner, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, txn)
}

// Delete reverses a transaction's effect and removes it
func (h *TransactionHandler) Delete(c *gin.Context) {
	owner, id, ok := h.ownerAndID(c)
	if !ok {
		return
	}

	if err := h.transactionService.DeleteTransaction(c.Request.Context(), owner, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AttachReceipt godoc
// @Summary      Receipt upload URL
// @Description  Returns a presigned PUT URL and records the receipt key on the transaction
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id path string true "Transaction ID"
// @Param        request body ledger.ReceiptUploadRequest true "Receipt content type"
// @Success      201 {object} dto.Response{data=ledger.ReceiptURLResponse}
// @Security     BearerAuth
// @Router       /finance/transactions/{id}/receipt [post]
func (h *TransactionHandler) AttachReceipt(c *gin.Context) {
	owner, id, ok := h.ownerAndID(c)
	if !ok {
		return
	}
	var req ledger.ReceiptUploadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	url, err := h.receiptService.AttachReceipt(c.Request.Context(), owner, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, url)
}

// ReceiptURL returns a presigned download URL for the transaction's receipt
func (h *TransactionHandler) ReceiptURL(c *gin.Context) {
	owner, id, ok := h.ownerAndID(c)
	if !ok {
		return
	}

	url, err := h.receiptService.ReceiptDownloadURL(c.Request.Context(), owner, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, url)
}
