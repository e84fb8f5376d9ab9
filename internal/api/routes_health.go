package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/foodlinkhq/foodlink/internal/handlers"
)

func registerHealthRoutes(r *gin.Engine, db *gorm.DB) {
	r.GET("/health", handlers.Health(db))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
