package handler

import (
	"github.com/farmledger/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
)

// TransferHandler handles account-to-account transfers
type TransferHandler struct {
	BaseHandler
	transferService *ledger.TransferService
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(transferService *ledger.TransferService) *TransferHandler {
	return &TransferHandler{transferService: transferService}
}

// Create godoc
// @Summary      Transfer between accounts
// @Description  Debits the source and credits the destination in one atomic unit
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Replay protection key"
// @Param        request body ledger.TransferRequest true "Transfer"
// @Success      201 {object} dto.Response{data=ledger.TransferResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/transfers [post]
func (h *TransferHandler) Create(c *gin.Context) {
	owner, ok := h.farmerID(c)
	if !ok {
		return
	}
	var req ledger.TransferRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.transferService.Transfer(c.Request.Context(), owner, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}
