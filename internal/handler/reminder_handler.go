package handler

import (
	"net/http"

	"glassops/internal/middleware"
	"glassops/internal/service"
	"glassops/pkg/pagination"
	"glassops/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReminderHandler struct {
	reminderService service.ReminderService
}

func NewReminderHandler(reminderService service.ReminderService) *ReminderHandler {
	return &ReminderHandler{reminderService: reminderService}
}

func (h *ReminderHandler) RegisterRoutes(router *gin.RouterGroup) {
	reminders := router.Group("/api/reminders", middleware.RequireAuth())
	{
		reminders.GET("", h.ListReminders)
		reminders.POST("", h.CreateReminder)
		reminders.PUT("/:id", h.UpdateReminder)
		reminders.DELETE("/:id", h.DeleteReminder)
	}
}

// CreateReminder adds a dated todo, optionally attached to a job
// @Summary      Create reminder
// @Tags         reminders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateReminderRequest  true  "Reminder Payload"
// @Success      201      {object}  response.Response{data=model.Reminder}
// @Failure      400      {object}  response.Response
// @Router       /api/reminders [post]
func (h *ReminderHandler) CreateReminder(c *gin.Context) {
	var req service.CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	reminder, err := h.reminderService.CreateReminder(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, reminder))
}

// ListReminders returns reminders ordered by date
// @Summary      List reminders
// @Tags         reminders
// @Produce      json
// @Security     BearerAuth
// @Param        include_done  query     bool  false  "Include completed reminders"
// @Param        page          query     int   false  "Page"
// @Param        limit         query     int   false  "Page size"
// @Success      200           {object}  response.Response
// @Router       /api/reminders [get]
func (h *ReminderHandler) ListReminders(c *gin.Context) {
	params := pagination.Parse(c)
	includeDone := c.Query("include_done") == "true"

	reminders, total, err := h.reminderService.ListReminders(c.Request.Context(), includeDone, params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch reminders"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"reminders": reminders,
		"total":     total,
		"page":      params.Page,
		"limit":     params.Limit,
	}))
}

// UpdateReminder edits a reminder or marks it done
func (h *ReminderHandler) UpdateReminder(c *gin.Context) {
	var req service.UpdateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	reminder, err := h.reminderService.UpdateReminder(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, reminder))
}

func (h *ReminderHandler) DeleteReminder(c *gin.Context) {
	if err := h.reminderService.DeleteReminder(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "reminder deleted"}))
}
