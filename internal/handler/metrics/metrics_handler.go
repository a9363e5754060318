package metrics

import (
	"errors"
	"net/http"
	"time"

	metricsService "github.com/commercelens/pixel-backend/internal/service/metrics"
	"github.com/commercelens/pixel-backend/pkg/utils"
	"github.com/gin-gonic/gin"
)

const defaultMetricsWindow = 7 * 24 * time.Hour

type MetricsHandler struct {
	service metricsService.MetricsService
}

func NewMetricsHandler(service metricsService.MetricsService) *MetricsHandler {
	return &MetricsHandler{
		service: service,
	}
}

// GetMetrics godoc
// @Summary      Time-windowed commerce KPIs
// @Description  Unique visitors, sessions, conversions, revenue and derived rates over [start, end), plus a recent-events preview
// @Tags         /api/v1/pixel
// @Produce      json
// @Param        start  query     string  false  "Window start (RFC3339 or YYYY-MM-DD, default: end minus 7 days)"
// @Param        end    query     string  false  "Window end (RFC3339 or YYYY-MM-DD, default: now)"
// @Success      200    {object}  entity.MetricsResponse
// @Failure      400    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Security     ApiKeyAuth
// @Router       /pixel/metrics [get]
func (h *MetricsHandler) GetMetrics(c *gin.Context) {
	end := time.Now().UTC()
	if endStr := c.Query("end"); endStr != "" {
		parsed, ok := utils.ParseTimestamp(endStr)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid end format, use RFC3339 or YYYY-MM-DD"})
			return
		}
		end = parsed
	}

	start := end.Add(-defaultMetricsWindow)
	if startStr := c.Query("start"); startStr != "" {
		parsed, ok := utils.ParseTimestamp(startStr)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid start format, use RFC3339 or YYYY-MM-DD"})
			return
		}
		start = parsed
	}

	if end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "end must be after start"})
		return
	}

	resp, err := h.service.ComputeMetrics(c.Request.Context(), start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "failed to compute metrics",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetVisitorJourney godoc
// @Summary      Visitor journey
// @Description  All sessions of a visitor with their events nested inside, plus the flat touchpoint list
// @Tags         /api/v1/pixel
// @Produce      json
// @Param        id   path      string  true  "Visitor id or external id"
// @Success      200  {object}  entity.Journey
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Security     ApiKeyAuth
// @Router       /pixel/visitors/{id}/journey [get]
func (h *MetricsHandler) GetVisitorJourney(c *gin.Context) {
	idOrExternalID := c.Param("id")

	journey, err := h.service.VisitorJourney(c.Request.Context(), idOrExternalID)
	if err != nil {
		if errors.Is(err, metricsService.ErrVisitorNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Visitor not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "failed to build visitor journey",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, journey)
}
