// internal/api/handlers/forecast_handler.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/warewolf/demand-engine/internal/service"
)

type ForecastHandler struct {
	service *service.ForecastService
}

func NewForecastHandler(svc *service.ForecastService) *ForecastHandler {
	return &ForecastHandler{service: svc}
}

// GetItemForecast returns the demand forecast and reorder recommendation
// for one item. horizon defaults to the configured value.
func (h *ForecastHandler) GetItemForecast(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || itemID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	horizon := 0
	if raw := c.Query("horizon"); raw != "" {
		horizon, err = strconv.Atoi(raw)
		if err != nil || horizon <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "horizon must be a positive integer"})
			return
		}
	}

	result, err := h.service.ForecastItem(c.Request.Context(), itemID, horizon)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found or forecast failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}
