package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetAllRooms handles GET /rooms/all.
func (h *Handler) GetAllRooms(c *gin.Context) {
	views, err := h.rooms.ListAll(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rooms"})
		return
	}
	c.JSON(http.StatusOK, views)
}

// GetFreeRooms handles GET /rooms/free?block=&capacity=.
func (h *Handler) GetFreeRooms(c *gin.Context) {
	block := c.Query("block")

	minCapacity := 0
	if raw := c.Query("capacity"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid capacity"})
			return
		}
		minCapacity = v
	}

	views, err := h.rooms.ListFree(c.Request.Context(), block, minCapacity)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve free rooms"})
		return
	}
	c.JSON(http.StatusOK, views)
}

// GetRoomDetail handles GET /rooms/:room_id.
func (h *Handler) GetRoomDetail(c *gin.Context) {
	detail, err := h.rooms.Detail(c.Request.Context(), c.Param("room_id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		} else {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve room"})
		}
		return
	}
	c.JSON(http.StatusOK, detail)
}

type checkinRequest struct {
	OccupancyLevel *int `json:"occupancy_level" binding:"required"`
}

// PostCheckin handles POST /rooms/:room_id/checkin. The submitted level is
// stored as-is; range validation is deliberately absent.
func (h *Handler) PostCheckin(c *gin.Context) {
	var req checkinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.rooms.CheckIn(c.Request.Context(), c.Param("room_id"), *req.OccupancyLevel)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		} else {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to record check-in"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "occupancy_id": id})
}
