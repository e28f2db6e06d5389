package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studymap-backend/internal/loader"
)

type loadCSVRequest struct {
	RoomsPath     string `json:"rooms_path" binding:"required"`
	TimetablePath string `json:"timetable_path" binding:"required"`
}

// PostLoadCSV handles POST /admin/load_csv: a full reload of rooms and
// timetable from server-local CSV files.
func (h *Handler) PostLoadCSV(c *gin.Context) {
	var req loadCSVRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := loader.Load(c.Request.Context(), h.store, req.RoomsPath, req.TimetablePath); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"loaded": true})
}
