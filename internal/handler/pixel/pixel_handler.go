// internal/handler/pixel_handler.go
package handler

import (
	"errors"
	"net/http"

	"github.com/commercelens/pixel-backend/internal/entity"
	"github.com/commercelens/pixel-backend/internal/service/ingest"
	"github.com/gin-gonic/gin"
)

type PixelHandler struct {
	service ingest.PixelService
}

func NewPixelHandler(service ingest.PixelService) *PixelHandler {
	return &PixelHandler{
		service: service,
	}
}

// Track godoc
// @Summary      Ingest a tracking event
// @Description  Record one pixel event: resolves the visitor, the session and marketing touchpoints, then stores the event in a single transaction
// @Tags         /api/v1/pixel
// @Accept       json
// @Produce      json
// @Param        payload  body      entity.TrackRequest  true  "Pixel payload"
// @Success      201      {object}  entity.TrackResponse
// @Failure      400      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /pixel/track [post]
func (h *PixelHandler) Track(c *gin.Context) {
	var req entity.TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid request body: " + err.Error(),
		})
		return
	}

	resp, err := h.service.Track(c.Request.Context(), &req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		if errors.Is(err, ingest.ErrMissingEventName) {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": "event.name is required",
			})
			return
		}

		// The browser script may retry on its own; never mask storage errors
		// behind a 2xx.
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "failed to record event",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, resp)
}
