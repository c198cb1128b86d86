package handler

import (
	"net/http"

	"glassops/internal/middleware"
	"glassops/internal/service"
	"glassops/pkg/pagination"
	"glassops/pkg/response"

	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	jobService service.JobService
}

func NewJobHandler(jobService service.JobService) *JobHandler {
	return &JobHandler{jobService: jobService}
}

func (h *JobHandler) RegisterRoutes(router *gin.RouterGroup) {
	jobs := router.Group("/api/jobs", middleware.RequireAuth())
	{
		jobs.GET("", h.ListJobs)
		jobs.POST("", h.CreateJob)
		jobs.GET("/:id", h.GetJob)
		jobs.PUT("/:id", h.UpdateJob)
		jobs.PUT("/:id/status", h.UpdateStatus)
		jobs.DELETE("/:id", h.DeleteJob)
	}
}

// CreateJob starts a new job in estimate status
// @Summary      Create job
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateJobRequest  true  "Job Payload"
// @Success      201      {object}  response.Response{data=model.Job}
// @Failure      400      {object}  response.Response
// @Router       /api/jobs [post]
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req service.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	job, err := h.jobService.CreateJob(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, job))
}

// ListJobs returns jobs filtered by status, client or search
// @Summary      List jobs
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Param        status     query     string  false  "Filter by status"
// @Param        client_id  query     string  false  "Filter by client"
// @Param        search     query     string  false  "Search by name or address"
// @Param        page       query     int     false  "Page"
// @Param        limit      query     int     false  "Page size"
// @Success      200        {object}  response.Response
// @Router       /api/jobs [get]
func (h *JobHandler) ListJobs(c *gin.Context) {
	params := pagination.Parse(c)
	jobs, total, err := h.jobService.ListJobs(c.Request.Context(), service.JobFilter{
		Status:   c.Query("status"),
		ClientID: c.Query("client_id"),
		Search:   c.Query("search"),
		Page:     params.Page,
		Limit:    params.Limit,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"jobs":  jobs,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	}))
}

// GetJob fetches a job with its payments, expenses, financials and
// attention flag
// @Summary      Get job detail
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  response.Response{data=service.JobDetailResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/jobs/{id} [get]
func (h *JobHandler) GetJob(c *gin.Context) {
	detail, err := h.jobService.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, detail))
}

// UpdateJob applies a partial update to a job
// @Summary      Update job
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                    true  "Job ID"
// @Param        payload  body      service.UpdateJobRequest  true  "Update Payload"
// @Success      200      {object}  response.Response{data=model.Job}
// @Failure      404      {object}  response.Response
// @Router       /api/jobs/{id} [put]
func (h *JobHandler) UpdateJob(c *gin.Context) {
	var req service.UpdateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	job, err := h.jobService.UpdateJob(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, job))
}

// UpdateStatus moves a job along the install pipeline
// @Summary      Update job status
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                          true  "Job ID"
// @Param        payload  body      service.UpdateJobStatusRequest  true  "Status Payload"
// @Success      200      {object}  response.Response{data=model.Job}
// @Failure      400      {object}  response.Response
// @Router       /api/jobs/{id}/status [put]
func (h *JobHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateJobStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	job, err := h.jobService.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, job))
}

func (h *JobHandler) DeleteJob(c *gin.Context) {
	if err := h.jobService.DeleteJob(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "job deleted"}))
}
