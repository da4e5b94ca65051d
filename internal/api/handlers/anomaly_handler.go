// internal/api/handlers/anomaly_handler.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/warewolf/demand-engine/internal/detector"
	"github.com/warewolf/demand-engine/internal/service"
)

type AnomalyHandler struct {
	service *service.AnomalyService
	base    detector.Config
}

func NewAnomalyHandler(svc *service.AnomalyService, base detector.Config) *AnomalyHandler {
	return &AnomalyHandler{service: svc, base: base.Normalize()}
}

// GetRecent returns the newest persisted anomalies for dashboards.
func (h *AnomalyHandler) GetRecent(c *gin.Context) {
	limit := 25
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	anomalies, err := h.service.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list anomalies"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"anomalies": anomalies,
		"count":     len(anomalies),
	})
}

// scanRequest allows per-invocation overrides of the scan parameters.
// Omitted fields fall back to the configured defaults.
type scanRequest struct {
	DaysBack   int     `json:"days_back"`
	RecentDays int     `json:"recent_days"`
	MinPoints  int     `json:"min_points"`
	ZLow       float64 `json:"z_low"`
	ZMed       float64 `json:"z_med"`
	ZHigh      float64 `json:"z_high"`
	Notify     *bool   `json:"notify"`
}

// RunScan triggers a full anomaly scan and persists the results.
func (h *AnomalyHandler) RunScan(c *gin.Context) {
	var req scanRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scan request: " + err.Error()})
			return
		}
	}

	cfg := h.base
	if req.DaysBack > 0 {
		cfg.LookbackDays = req.DaysBack
	}
	if req.RecentDays > 0 {
		cfg.RecentDays = req.RecentDays
	}
	if req.MinPoints > 0 {
		cfg.MinPoints = req.MinPoints
	}
	if req.ZLow > 0 {
		cfg.ZLow = req.ZLow
	}
	if req.ZMed > 0 {
		cfg.ZMed = req.ZMed
	}
	if req.ZHigh > 0 {
		cfg.ZHigh = req.ZHigh
	}
	doNotify := true
	if req.Notify != nil {
		doNotify = *req.Notify
	}

	summary, results, err := h.service.RunScan(c.Request.Context(), cfg, doNotify)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "scan failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summary":   summary,
		"anomalies": results,
	})
}
