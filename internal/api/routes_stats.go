package api

import (
	"github.com/gin-gonic/gin"

	"github.com/foodlinkhq/foodlink/internal/handlers"
)

func registerStatsRoutes(engine *gin.Engine, api *gin.RouterGroup, handler *handlers.StatsHandler) {
	// Impact figures are public so the landing page can show them.
	engine.GET("/api/stats", handler.Stats)
	engine.GET("/api/leaderboard", handler.Leaderboard)

	api.GET("/dashboard", handler.Dashboard)
}
