package handler

import (
	"net/http"

	"glassops/internal/middleware"
	"glassops/internal/service"
	"glassops/pkg/pagination"
	"glassops/pkg/response"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) RegisterRoutes(router *gin.RouterGroup) {
	payments := router.Group("/api/payments", middleware.RequireAuth())
	{
		payments.GET("", h.ListPayments)
		payments.POST("", h.CreatePayment)
		payments.GET("/:id", h.GetPayment)
		payments.PUT("/:id", h.UpdatePayment)
		payments.DELETE("/:id", h.DeletePayment)
	}
}

// CreatePayment records money received against a job
// @Summary      Create payment
// @Description  Records a payment. For Stripe payments send either the gross charged amount or the net received; the processor fee and the counterpart are derived.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreatePaymentRequest  true  "Payment Payload"
// @Success      201      {object}  response.Response{data=model.Payment}
// @Failure      400      {object}  response.Response
// @Router       /api/payments [post]
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req service.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	payment, err := h.paymentService.CreatePayment(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, payment))
}

// ListPayments returns payments filtered by job, invoice, method and dates
// @Summary      List payments
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        job_id      query     string  false  "Filter by job"
// @Param        invoice_id  query     string  false  "Filter by invoice"
// @Param        method      query     string  false  "Filter by method"
// @Param        from        query     string  false  "Start date (YYYY-MM-DD)"
// @Param        to          query     string  false  "End date (YYYY-MM-DD)"
// @Param        page        query     int     false  "Page"
// @Param        limit       query     int     false  "Page size"
// @Success      200         {object}  response.Response
// @Router       /api/payments [get]
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	params := pagination.Parse(c)
	payments, total, err := h.paymentService.ListPayments(c.Request.Context(), service.PaymentFilter{
		JobID:     c.Query("job_id"),
		InvoiceID: c.Query("invoice_id"),
		Method:    c.Query("method"),
		From:      c.Query("from"),
		To:        c.Query("to"),
		Page:      params.Page,
		Limit:     params.Limit,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"payments": payments,
		"total":    total,
		"page":     params.Page,
		"limit":    params.Limit,
	}))
}

func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.paymentService.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, payment))
}

// UpdatePayment applies a partial update to a payment
// @Summary      Update payment
// @Description  Edits a payment. Changing the method or an amount re-derives the Stripe fee fields.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Payment ID"
// @Param        payload  body      service.UpdatePaymentRequest  true  "Update Payload"
// @Success      200      {object}  response.Response{data=model.Payment}
// @Failure      404      {object}  response.Response
// @Router       /api/payments/{id} [put]
func (h *PaymentHandler) UpdatePayment(c *gin.Context) {
	var req service.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	payment, err := h.paymentService.UpdatePayment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, payment))
}

func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	if err := h.paymentService.DeletePayment(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "payment deleted"}))
}
