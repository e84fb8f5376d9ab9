package api

import (
	"github.com/gin-gonic/gin"

	"github.com/foodlinkhq/foodlink/internal/handlers"
)

func registerAuthRoutes(engine *gin.Engine, api *gin.RouterGroup, handler *handlers.AuthHandler) {
	auth := engine.Group("/api/auth")
	{
		auth.POST("/signup", handler.Signup)
		auth.POST("/login", handler.Login)
		auth.POST("/refresh", handler.Refresh)
	}

	api.GET("/auth/me", handler.Me)
	api.POST("/auth/logout", handler.Logout)
}
