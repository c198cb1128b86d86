package handler

import (
	"errors"
	"net/http"

	"glassops/internal/middleware"
	"glassops/internal/service"
	"glassops/pkg/pagination"
	"glassops/pkg/response"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	invoices := router.Group("/api/invoices", middleware.RequireAuth())
	{
		invoices.GET("", h.ListInvoices)
		invoices.POST("", h.CreateInvoice)
		invoices.GET("/:id", h.GetInvoice)
		invoices.PUT("/:id/status", h.UpdateStatus)
		invoices.DELETE("/:id", h.DeleteInvoice)
		invoices.POST("/:id/generate", h.GeneratePDF)
	}
}

// CreateInvoice issues a new invoice for a job
// @Summary      Create invoice
// @Description  Issues an invoice for a job, freezing line items, totals and a customer snapshot. The invoice number is assigned atomically.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateInvoiceRequest  true  "Invoice Payload"
// @Success      201      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req service.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, invoice))
}

// ListInvoices returns invoices filtered by status and job
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Filter by status"
// @Param        job_id  query     string  false  "Filter by job"
// @Param        page    query     int     false  "Page"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  response.Response
// @Router       /api/invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	params := pagination.Parse(c)
	invoices, total, err := h.invoiceService.ListInvoices(c.Request.Context(), service.InvoiceFilter{
		Status: c.Query("status"),
		JobID:  c.Query("job_id"),
		Page:   params.Page,
		Limit:  params.Limit,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"invoices": invoices,
		"total":    total,
		"page":     params.Page,
		"limit":    params.Limit,
	}))
}

// GetInvoice fetches one invoice by ID
// @Summary      Get invoice
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.InvoiceResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrInvoiceNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// UpdateStatus advances an invoice's payment status
// @Summary      Update invoice status
// @Description  Moves the invoice forward through sent, deposit_paid and paid. Backward transitions are rejected.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                              true  "Invoice ID"
// @Param        payload  body      service.UpdateInvoiceStatusRequest  true  "Status Payload"
// @Success      200      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/invoices/{id}/status [put]
func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateInvoiceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.invoiceService.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrInvoiceNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// DeleteInvoice removes an invoice
// @Summary      Delete invoice
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id} [delete]
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), c.Param("id")); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrInvoiceNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "invoice deleted"}))
}

// GeneratePDF renders the invoice document and stores it
// @Summary      Generate invoice PDF
// @Description  Renders the invoice into a PDF, uploads it and records the URL on the invoice. Re-running replaces the reference with a fresh document.
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.GeneratePDFResult}
// @Failure      404  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /api/invoices/{id}/generate [post]
func (h *InvoiceHandler) GeneratePDF(c *gin.Context) {
	result, err := h.invoiceService.GeneratePDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, service.ErrInvoiceNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
