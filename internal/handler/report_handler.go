package handler

import (
	"net/http"
	"strconv"

	"glassops/internal/middleware"
	"glassops/internal/service"
	"glassops/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/api/reports", middleware.RequireAuth())
	{
		reports.GET("", h.ListReports)
		reports.POST("/:month/generate", h.GenerateReport)
		reports.GET("/:month", h.GetReport)
		reports.GET("/:month/export", h.ExportReport)
	}
}

// GenerateReport recomputes the snapshot for a month
// @Summary      Generate monthly report
// @Description  Aggregates the month's payments, expenses and job counts into a snapshot, replacing any previous one for that month.
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        month  path      string  true  "Month (YYYY-MM)"
// @Success      200    {object}  response.Response{data=model.MonthlyReport}
// @Failure      400    {object}  response.Response
// @Router       /api/reports/{month}/generate [post]
func (h *ReportHandler) GenerateReport(c *gin.Context) {
	report, err := h.reportService.GenerateMonthly(c.Request.Context(), c.Param("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}

// GetReport fetches a month's snapshot
// @Summary      Get monthly report
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        month  path      string  true  "Month (YYYY-MM)"
// @Success      200    {object}  response.Response{data=model.MonthlyReport}
// @Failure      404    {object}  response.Response
// @Router       /api/reports/{month} [get]
func (h *ReportHandler) GetReport(c *gin.Context) {
	report, err := h.reportService.GetMonthly(c.Request.Context(), c.Param("month"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}

// ListReports returns recent monthly snapshots
func (h *ReportHandler) ListReports(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))

	reports, err := h.reportService.ListMonthly(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch reports"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, reports))
}

// ExportReport downloads a month's snapshot as a spreadsheet
// @Summary      Export monthly report
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        month  path  string  true  "Month (YYYY-MM)"
// @Success      200    {file}  file
// @Failure      404    {object}  response.Response
// @Router       /api/reports/{month}/export [get]
func (h *ReportHandler) ExportReport(c *gin.Context) {
	data, filename, err := h.reportService.ExportMonthlyXLSX(c.Request.Context(), c.Param("month"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
