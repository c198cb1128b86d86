package handler

import (
	"net/http"

	"glassops/internal/middleware"
	"glassops/internal/service"
	"glassops/pkg/pagination"
	"glassops/pkg/response"

	"github.com/gin-gonic/gin"
)

type ClientHandler struct {
	clientService service.ClientService
}

func NewClientHandler(clientService service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

func (h *ClientHandler) RegisterRoutes(router *gin.RouterGroup) {
	clients := router.Group("/api/clients", middleware.RequireAuth())
	{
		clients.GET("", h.ListClients)
		clients.POST("", h.CreateClient)
		clients.GET("/:id", h.GetClient)
		clients.PUT("/:id", h.UpdateClient)
		clients.DELETE("/:id", h.DeleteClient)
	}
}

// CreateClient adds a new client
// @Summary      Create client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateClientRequest  true  "Client Payload"
// @Success      201      {object}  response.Response{data=model.Client}
// @Failure      400      {object}  response.Response
// @Router       /api/clients [post]
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req service.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	client, err := h.clientService.CreateClient(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, client))
}

// ListClients returns clients, optionally filtered by a name/email search
// @Summary      List clients
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        search  query     string  false  "Search by name, email or phone"
// @Param        page    query     int     false  "Page"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  response.Response
// @Router       /api/clients [get]
func (h *ClientHandler) ListClients(c *gin.Context) {
	params := pagination.Parse(c)
	clients, total, err := h.clientService.ListClients(c.Request.Context(), c.Query("search"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch clients"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"clients": clients,
		"total":   total,
		"page":    params.Page,
		"limit":   params.Limit,
	}))
}

func (h *ClientHandler) GetClient(c *gin.Context) {
	client, err := h.clientService.GetClient(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, client))
}

// UpdateClient applies a partial update to a client
// @Summary      Update client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                       true  "Client ID"
// @Param        payload  body      service.UpdateClientRequest  true  "Update Payload"
// @Success      200      {object}  response.Response{data=model.Client}
// @Failure      404      {object}  response.Response
// @Router       /api/clients/{id} [put]
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	var req service.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	client, err := h.clientService.UpdateClient(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, client))
}

func (h *ClientHandler) DeleteClient(c *gin.Context) {
	if err := h.clientService.DeleteClient(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "client deleted"}))
}
