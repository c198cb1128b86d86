package handler

import (
	"net/http"

	"glassops/internal/middleware"
	"glassops/internal/service"
	"glassops/pkg/response"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
}

func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/dashboard/today", middleware.RequireAuth(), h.GetDashboard)
}

// GetDashboard returns the Today screen payload
// @Summary      Get dashboard
// @Description  Month-to-date money stats, jobs needing attention, installs in the next 7 days and due reminders.
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.DashboardResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/dashboard/today [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.dashboardService.GetDashboard(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, dashboard))
}
