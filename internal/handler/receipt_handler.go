package handler

import (
	"net/http"

	"glassops/internal/middleware"
	"glassops/internal/service"
	"glassops/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReceiptHandler struct {
	receiptService service.ReceiptService
}

func NewReceiptHandler(receiptService service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

func (h *ReceiptHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/api/ai/extract-receipt", middleware.RequireAuth(), h.ExtractReceipt)
}

type extractReceiptRequest struct {
	ImageURL string `json:"image_url" binding:"required,url"`
}

// ExtractReceipt reads a receipt image and suggests expense fields
// @Summary      Extract receipt fields
// @Description  Sends the receipt image to a vision model and returns suggested amount, vendor, date and category for an expense entry.
// @Tags         ai
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      extractReceiptRequest  true  "Receipt Image URL"
// @Success      200      {object}  response.Response{data=service.ReceiptExtraction}
// @Failure      400      {object}  response.Response
// @Failure      502      {object}  response.Response
// @Router       /api/ai/extract-receipt [post]
func (h *ReceiptHandler) ExtractReceipt(c *gin.Context) {
	var req extractReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	extraction, err := h.receiptService.ExtractFromImage(c.Request.Context(), req.ImageURL)
	if err != nil {
		c.JSON(http.StatusBadGateway, response.Error(http.StatusBadGateway, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, extraction))
}
