package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodlinkhq/foodlink/internal/middleware"
	"github.com/foodlinkhq/foodlink/internal/services"
	"github.com/foodlinkhq/foodlink/pkg/response"
)

// StatsHandler serves the public impact figures and the per-user dashboard.
type StatsHandler struct {
	stats *services.StatsService
}

func NewStatsHandler(stats *services.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// GET /api/stats
func (h *StatsHandler) Stats(c *gin.Context) {
	response.Success(c, http.StatusOK, h.stats.GetStats(requestContext(c)))
}

// GET /api/leaderboard
func (h *StatsHandler) Leaderboard(c *gin.Context) {
	response.Success(c, http.StatusOK, h.stats.GetLeaderboard(requestContext(c)))
}

// GET /api/dashboard
func (h *StatsHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.stats.GetDashboard(requestContext(c), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, dashboard)
}
