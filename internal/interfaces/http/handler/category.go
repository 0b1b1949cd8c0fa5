package handler

import (
	"github.com/farmledger/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
)

// CategoryHandler serves the category registry
type CategoryHandler struct {
	BaseHandler
	categoryService *ledger.CategoryService
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService *ledger.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// List godoc
// @Summary      List categories
// @Description  Active categories, optionally restricted to EXPENSE or INCOME
// @Tags         categories
// @Produce      json
// @Param        kind query string false "EXPENSE or INCOME"
// @Success      200 {object} dto.Response{data=[]ledger.CategoryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categoryService.ListCategories(c.Request.Context(), c.Query("kind"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}
