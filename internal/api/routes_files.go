package api

import (
	"github.com/gin-gonic/gin"

	"github.com/foodlinkhq/foodlink/internal/handlers"
)

func registerFileRoutes(engine *gin.Engine, api *gin.RouterGroup, handler *handlers.FileHandler) {
	engine.GET("/files/:bucket/:id", handler.Serve)
	api.POST("/files/:bucket", handler.Upload)
}
