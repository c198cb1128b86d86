package handler

import (
	"net/http"

	"glassops/internal/middleware"
	"glassops/internal/service"
	"glassops/pkg/pagination"
	"glassops/pkg/response"

	"github.com/gin-gonic/gin"
)

type ExpenseHandler struct {
	expenseService service.ExpenseService
}

func NewExpenseHandler(expenseService service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

func (h *ExpenseHandler) RegisterRoutes(router *gin.RouterGroup) {
	expenses := router.Group("/api/expenses", middleware.RequireAuth())
	{
		expenses.GET("", h.ListExpenses)
		expenses.POST("", h.CreateExpense)
		expenses.GET("/:id", h.GetExpense)
		expenses.PUT("/:id", h.UpdateExpense)
		expenses.DELETE("/:id", h.DeleteExpense)
	}
}

// CreateExpense records a cost entry
// @Summary      Create expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateExpenseRequest  true  "Expense Payload"
// @Success      201      {object}  response.Response{data=model.Expense}
// @Failure      400      {object}  response.Response
// @Router       /api/expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	var req service.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, expense))
}

// ListExpenses returns expenses filtered by job, category and date range
// @Summary      List expenses
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Param        job_id    query     string  false  "Filter by job"
// @Param        category  query     string  false  "Filter by category"
// @Param        from      query     string  false  "Start date (YYYY-MM-DD)"
// @Param        to        query     string  false  "End date (YYYY-MM-DD)"
// @Param        page      query     int     false  "Page"
// @Param        limit     query     int     false  "Page size"
// @Success      200       {object}  response.Response
// @Router       /api/expenses [get]
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	params := pagination.Parse(c)
	expenses, total, err := h.expenseService.ListExpenses(c.Request.Context(), service.ExpenseFilter{
		JobID:    c.Query("job_id"),
		Category: c.Query("category"),
		From:     c.Query("from"),
		To:       c.Query("to"),
		Page:     params.Page,
		Limit:    params.Limit,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"expenses": expenses,
		"total":    total,
		"page":     params.Page,
		"limit":    params.Limit,
	}))
}

func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	expense, err := h.expenseService.GetExpense(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, expense))
}

// UpdateExpense applies a partial update to an expense
// @Summary      Update expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Expense ID"
// @Param        payload  body      service.UpdateExpenseRequest  true  "Update Payload"
// @Success      200      {object}  response.Response{data=model.Expense}
// @Failure      404      {object}  response.Response
// @Router       /api/expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	var req service.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	expense, err := h.expenseService.UpdateExpense(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, expense))
}

func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	if err := h.expenseService.DeleteExpense(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "expense deleted"}))
}
