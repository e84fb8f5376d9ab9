package api

import (
	"github.com/gin-gonic/gin"

	"github.com/foodlinkhq/foodlink/internal/handlers"
	"github.com/foodlinkhq/foodlink/internal/middleware"
	"github.com/foodlinkhq/foodlink/internal/models"
)

type donationRouteDeps struct {
	Donations *handlers.DonationHandler
	Claims    *handlers.ClaimHandler
}

func registerDonationRoutes(api *gin.RouterGroup, deps donationRouteDeps) {
	donorOnly := middleware.RequireRole(string(models.RoleDonor))
	ngoOnly := middleware.RequireRole(string(models.RoleNGO))

	donations := api.Group("/donations")
	{
		donations.GET("", deps.Donations.List)
		donations.POST("", donorOnly, deps.Donations.Create)
		donations.GET("/mine", donorOnly, deps.Donations.Mine)
		donations.GET("/:id", deps.Donations.Get)
		donations.GET("/:id/claims", donorOnly, deps.Donations.ListClaims)
		donations.POST("/:id/claims", ngoOnly, deps.Donations.RequestClaim)
		donations.POST("/:id/claims/:claimID/approve", donorOnly, deps.Donations.Approve)
		donations.POST("/:id/complete", donorOnly, deps.Donations.Complete)
	}

	claims := api.Group("/claims", ngoOnly)
	{
		claims.GET("/mine", deps.Claims.Mine)
		claims.POST("/:id/collect", deps.Claims.Collect)
	}
}
