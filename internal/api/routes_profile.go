package api

import (
	"github.com/gin-gonic/gin"

	"github.com/foodlinkhq/foodlink/internal/handlers"
	"github.com/foodlinkhq/foodlink/internal/middleware"
	"github.com/foodlinkhq/foodlink/internal/models"
)

func registerProfileRoutes(api *gin.RouterGroup, handler *handlers.ProfileHandler) {
	profile := api.Group("/profile")
	{
		profile.GET("", handler.Get)
		profile.PATCH("", handler.Update)

		ngo := profile.Group("/ngo", middleware.RequireRole(string(models.RoleNGO)))
		ngo.GET("", handler.GetNGO)
		ngo.PUT("", handler.SaveNGO)
	}
}
