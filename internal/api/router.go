package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	iauth "github.com/foodlinkhq/foodlink/internal/auth"
	"github.com/foodlinkhq/foodlink/internal/handlers"
	"github.com/foodlinkhq/foodlink/internal/middleware"
	"github.com/foodlinkhq/foodlink/internal/services"
)

// Deps carries the long-lived collaborators the HTTP layer is built from.
type Deps struct {
	DB          *gorm.DB
	JWT         *iauth.JWTService
	Profiles    *services.ProfileService
	Donations   *services.DonationService
	Stats       *services.StatsService
	Files       *services.FileService
	RateLimiter *middleware.RateLimiter
	// TrustedProxies is passed to gin; nil trusts no proxy headers.
	TrustedProxies []string
}

func (d Deps) validate() error {
	switch {
	case d.DB == nil:
		return fmt.Errorf("database handle must be provided")
	case d.JWT == nil:
		return fmt.Errorf("jwt service must be provided")
	case d.Profiles == nil:
		return fmt.Errorf("profile service must be provided")
	case d.Donations == nil:
		return fmt.Errorf("donation service must be provided")
	case d.Stats == nil:
		return fmt.Errorf("stats service must be provided")
	case d.Files == nil:
		return fmt.Errorf("file service must be provided")
	}
	return nil
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}

	r := gin.New()
	if err := r.SetTrustedProxies(deps.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	if deps.RateLimiter != nil {
		r.Use(deps.RateLimiter.Handler())
	}
	r.NoRoute(middleware.NotFoundHandler)

	registerHealthRoutes(r, deps.DB)

	api := r.Group("/api")
	api.Use(middleware.Auth(deps.JWT))

	registerAuthRoutes(r, api, handlers.NewAuthHandler(deps.Profiles))
	registerProfileRoutes(api, handlers.NewProfileHandler(deps.Profiles))
	registerDonationRoutes(api, donationRouteDeps{
		Donations: handlers.NewDonationHandler(deps.Donations, deps.Profiles),
		Claims:    handlers.NewClaimHandler(deps.Donations),
	})
	registerStatsRoutes(r, api, handlers.NewStatsHandler(deps.Stats))
	registerFileRoutes(r, api, handlers.NewFileHandler(deps.Files))

	return r, nil
}
