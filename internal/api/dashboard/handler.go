// Package dashboard provides REST API handlers for the approver dashboard.
package dashboard

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dexhub/hr-portal/internal/api/response"
	"github.com/dexhub/hr-portal/internal/service/dashboard"
	"github.com/dexhub/hr-portal/internal/service/requests"
	"github.com/dexhub/hr-portal/pkg/logger"
)

// StatsService interface for dashboard statistics.
type StatsService interface {
	GetStats(ctx context.Context, actor requests.Actor) (*dashboard.Stats, error)
}

// Handler handles dashboard API requests.
type Handler struct {
	stats StatsService
	log   *logger.Logger
}

// NewHandler creates a new dashboard handler.
func NewHandler(stats *dashboard.Service, log *logger.Logger) *Handler {
	return NewHandlerWithInterfaces(stats, log)
}

// NewHandlerWithInterfaces creates a new dashboard handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(stats StatsService, log *logger.Logger) *Handler {
	return &Handler{
		stats: stats,
		log:   log.Component("api.dashboard"),
	}
}

// GetStats returns the counts for the calling approver.
// GET /api/v1/dashboard/stats.
func (h *Handler) GetStats(c *gin.Context) {
	_, actor, ok := response.CurrentActor(c)
	if !ok {
		return
	}

	stats, err := h.stats.GetStats(c.Request.Context(), actor)
	if err != nil {
		response.FromError(c, h.log, err, "Failed to retrieve dashboard stats")
		return
	}

	h.log.Debug().
		Uint("user_id", actor.ID).
		Str("role", string(actor.Role)).
		Msg("Retrieved dashboard stats")

	c.JSON(http.StatusOK, stats)
}
