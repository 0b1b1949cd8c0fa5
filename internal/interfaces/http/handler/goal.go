package handler

import (
	"github.com/farmledger/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
)

// GoalHandler handles financial goal HTTP requests
type GoalHandler struct {
	BaseHandler
	goalService *ledger.GoalService
}

// NewGoalHandler creates a new goal handler
func NewGoalHandler(goalService *ledger.GoalService) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

// Create godoc
// @Summary      Create a goal
// @Tags         goals
// @Accept       json
// @Produce      json
// @Param        request body ledger.GoalRequest true "Goal"
// @Success      201 {object} dto.Response{data=ledger.GoalResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/goals [post]
func (h *GoalHandler) Create(c *gin.Context) {
	owner, ok := h.farmerID(c)
	if !ok {
		return
	}
	var req ledger.GoalRequest
	if !h.bindJSON(c, &req) {
		return
	}

	goal, err := h.goalService.CreateGoal(c.Request.Context(), owner, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, goal)
}

// List returns goals, optionally filtered by achievement and type
func (h *GoalHandler) List(c *gin.Context) {
	owner, ok := h.farmerID(c)
	if !ok {
		return
	}
	var filter ledger.GoalListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	goals, err := h.goalService.ListGoals(c.Request.Context(), owner, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, goals)
}

// Progress godoc
// @Summary      Goal progress summary
// @Description  Totals, achievement rate, per-type breakdown and upcoming deadlines within 90 days
// @Tags         goals
// @Produce      json
// @Success      200 {object} dto.Response{data=ledger.GoalProgressResponse}
// @Security     BearerAuth
// @Router       /finance/goals/progress [get]
func (h *GoalHandler) Progress(c *gin.Context) {
	owner, ok := h.farmerID(c)
	if !ok {
		return
	}

	summary, err := h.goalService.ProgressSummary(c.Request.Context(), owner)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

func (h *GoalHandler) GetByID(c *gin.Context) {
	owner, id, ok := h.ownerAndID(c)
	if !ok {
		return
	}

	goal, err := h.goalService.GetGoal(c.Request.Context(), owner, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, goal)
}

func (h *GoalHandler) Update(c *gin.Context) {
	owner, id, ok := h.ownerAndID(c)
	if !ok {
		return
	}
	var req ledger.GoalRequest
	if !h.bindJSON(c, &req) {
		return
	}

	goal, err := h.goalService.UpdateGoal(c.Request.Context(), owner, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, goal)
}

func (h *GoalHandler) Delete(c *gin.Context) {
	owner, id, ok := h.ownerAndID(c)
	if !ok {
		return
	}

	if err := h.goalService.DeleteGoal(c.Request.Context(), owner, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddContribution godoc
// @Summary      Contribute to a goal
// @Description  Adds to the goal's current amount. The response flags the contribution that first reached the target.
// @Tags         goals
// @Accept       json
// @Produce      json
// @Param        id path string true "Goal ID"
// @Param        request body ledger.ContributionRequest true "Contribution"
// @Success      201 {object} dto.Response{data=ledger.ContributionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/goals/{id}/contributions [post]
func (h *GoalHandler) AddContribution(c *gin.Context) {
	owner, id, ok := h.ownerAndID(c)
	if !ok {
		return
	}
	var req ledger.ContributionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.goalService.AddContribution(c.Request.Context(), owner, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}
