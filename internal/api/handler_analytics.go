package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetHeatmap handles GET /analytics/heatmap.
func (h *Handler) GetHeatmap(c *gin.Context) {
	heat, err := h.analytics.Heatmap(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute heatmap"})
		return
	}
	c.JSON(http.StatusOK, heat)
}

// GetSummary handles GET /analytics/summary.
func (h *Handler) GetSummary(c *gin.Context) {
	summary, err := h.analytics.Summarize(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute summary"})
		return
	}
	c.JSON(http.StatusOK, summary)
}
