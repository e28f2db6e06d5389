package api

import (
	"studymap-backend/internal/analytics"
	"studymap-backend/internal/rooms"
	"studymap-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store     store.Store
	rooms     *rooms.Service
	analytics *analytics.Aggregator
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, roomSvc *rooms.Service, agg *analytics.Aggregator) *Handler {
	return &Handler{
		store:     s,
		rooms:     roomSvc,
		analytics: agg,
	}
}
