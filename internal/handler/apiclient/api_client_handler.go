// internal/handler/api_client_handler.go
package handler

import (
	"net/http"

	"github.com/commercelens/pixel-backend/internal/entity"
	"github.com/commercelens/pixel-backend/internal/model/response/wrapper"
	service "github.com/commercelens/pixel-backend/internal/service/apiclient"
	"github.com/gin-gonic/gin"
	uuid2 "github.com/gofrs/uuid"
)

type APIClientHandler struct {
	service service.APIClientService
}

func NewAPIClientHandler(service service.APIClientService) *APIClientHandler {
	return &APIClientHandler{
		service: service,
	}
}

// CreateClient godoc
// @Summary      Create API client
// @Description  Issue a new dashboard API key
// @Tags         /api/v1/admin/clients
// @Accept       json
// @Produce      json
// @Param        client  body      entity.CreateAPIClientRequest  true  "Client data"
// @Success      201     {object}  wrapper.ResponseWrapper{data=entity.APIClient}
// @Failure      400     {object}  wrapper.ErrorWrapper
// @Router       /clients [post]
func (h *APIClientHandler) CreateClient(c *gin.Context) {
	var req entity.CreateAPIClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	client, err := h.service.CreateClient(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, wrapper.ResponseWrapper{
		Data:    client,
		Success: true,
	})
}

// GetClients godoc
// @Summary      List API clients
// @Tags         /api/v1/admin/clients
// @Produce      json
// @Param        isActive  query     bool  false  "Filter by active flag"
// @Param        limit     query     int   false  "Limit (default 50, max 200)"
// @Param        offset    query     int   false  "Offset"
// @Success      200       {object}  wrapper.ResponseWrapper{data=[]entity.APIClientPublic}
// @Failure      500       {object}  wrapper.ErrorWrapper
// @Security     ApiKeyAuth
// @Router       /clients [get]
func (h *APIClientHandler) GetClients(c *gin.Context) {
	var filter entity.APIClientFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{
			Message: "Invalid query parameters: " + err.Error(),
		})
		return
	}

	clients, err := h.service.GetAllClients(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, wrapper.ErrorWrapper{
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{
		Data:    clients,
		Success: true,
	})
}

// DeactivateClient godoc
// @Summary      Deactivate API client
// @Tags         /api/v1/admin/clients
// @Produce      json
// @Param        id   path      string  true  "Client ID"
// @Success      200  {object}  wrapper.ResponseWrapper{data=string}
// @Failure      400  {object}  wrapper.ErrorWrapper
// @Security     ApiKeyAuth
// @Router       /clients/{id} [delete]
func (h *APIClientHandler) DeactivateClient(c *gin.Context) {
	id, err := uuid2.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, wrapper.ErrorWrapper{
			Message: "Invalid UUID format",
		})
		return
	}

	if err := h.service.DeactivateClient(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, wrapper.ErrorWrapper{
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, wrapper.ResponseWrapper{
		Data:    "Client deactivated",
		Success: true,
	})
}
