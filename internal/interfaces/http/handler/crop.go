package handler

import (
	"github.com/farmledger/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
)

// CropHandler handles crop finance HTTP requests
type CropHandler struct {
	BaseHandler
	cropService *ledger.CropService
}

// NewCropHandler creates a new crop handler
func NewCropHandler(cropService *ledger.CropService) *CropHandler {
	return &CropHandler{cropService: cropService}
}

// Create godoc
// @Summary      Create a crop record
// @Description  Costs and revenue of one crop for one season and year
// @Tags         crops
// @Accept       json
// @Produce      json
// @Param        request body ledger.CropRequest true "Crop"
// @Success      201 {object} dto.Response{data=ledger.CropResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/crops [post]
func (h *CropHandler) Create(c *gin.Context) {
	owner, ok := h.farmerID(c)
	if !ok {
		return
	}
	var req ledger.CropRequest
	if !h.bindJSON(c, &req) {
		return
	}

	crop, err := h.cropService.CreateCrop(c.Request.Context(), owner, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, crop)
}

// List godoc
// @Summary      List crop records
// @Tags         crops
// @Produce      json
// @Param        year query int false "Year"
// @Param        season query string false "Season, case-insensitive substring"
// @Param        crop query string false "Crop name, case-insensitive substring"
// @Success      200 {object} dto.Response{data=[]ledger.CropResponse}
// @Security     BearerAuth
// @Router       /finance/crops [get]
func (h *CropHandler) List(c *gin.Context) {
	owner, ok := h.farmerID(c)
	if !ok {
		return
	}
	var filter ledger.CropListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	crops, err := h.cropService.ListCrops(c.Request.Context(), owner, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, crops)
}

func (h *CropHandler) Profitability(c *gin.Context) {
	owner, ok := h.farmerID(c)
	if !ok {
		return
	}

	analysis, err := h.cropService.ProfitabilityAnalysis(c.Request.Context(), owner)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, analysis)
}

func (h *CropHandler) GetByID(c *gin.Context) {
	owner, id, ok := h.ownerAndID(c)
	if !ok {
		return
	}

	crop, err := h.cropService.GetCrop(c.Request.Context(), owner, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, crop)
}

func (h *CropHandler) Update(c *gin.Context) {
	owner, id, ok := h.ownerAndID(c)
	if !ok {
		return
	}
	var req ledger.CropRequest
	if !h.bindJSON(c, &req) {
		return
	}

	crop, err := h.cropService.UpdateCrop(c.Request.Context(), owner, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, crop)
}

func (h *CropHandler) Delete(c *gin.Context) {
	owner, id, ok := h.ownerAndID(c)
	if !ok {
		return
	}

	if err := h.cropService.DeleteCrop(c.Request.Context(), owner, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RecordSale godoc
// @Summary      Record a harvest sale
// @Description  Adds the amount to the crop's revenue. With an account_id an INCOME transaction is booked in the same unit.
// @Tags         crops
// @Accept       json
// @Produce      json
// @Param        id path string true "Crop ID"
// @Param        Idempotency-Key header string false "Replay protection key"
// @Param        request body ledger.SaleRequest true "Sale"
// @Success      201 {object} dto.Response{data=ledger.SaleResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/crops/{id}/sales [post]
func (h *CropHandler) RecordSale(c *gin.Context) {
	owner, id, ok := h.ownerAndID(c)
	if !ok {
		return
	}
	var req ledger.SaleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	sale, err := h.cropService.RecordSale(c.Request.Context(), owner, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sale)
}
