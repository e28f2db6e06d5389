package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"studymap-backend/config"
	"studymap-backend/internal/analytics"
	"studymap-backend/internal/mw"
	"studymap-backend/internal/rooms"
	"studymap-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.ServerConfig, s store.Store) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, rooms.NewService(s), analytics.NewAggregator(s))

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 10*time.Minute)
	caching := mw.Cache(cacheStore, cacheTTL)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	admin := r.Group("/admin")
	admin.Use(rateLimiter)
	{
		admin.POST("/load_csv", handler.PostLoadCSV)
	}

	roomRoutes := r.Group("/rooms")
	roomRoutes.Use(rateLimiter)
	{
		roomRoutes.GET("/all", caching, handler.GetAllRooms)
		roomRoutes.GET("/free", caching, handler.GetFreeRooms)
		roomRoutes.GET("/:room_id", handler.GetRoomDetail)
		roomRoutes.POST("/:room_id/checkin", handler.PostCheckin)
	}

	analyticsRoutes := r.Group("/analytics")
	analyticsRoutes.Use(rateLimiter)
	{
		analyticsRoutes.GET("/heatmap", caching, handler.GetHeatmap)
		analyticsRoutes.GET("/summary", caching, handler.GetSummary)
	}

	return r
}
