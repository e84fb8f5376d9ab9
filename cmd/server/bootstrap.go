package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/foodlinkhq/foodlink/internal/api"
	"github.com/foodlinkhq/foodlink/internal/app"
	"github.com/foodlinkhq/foodlink/internal/app/maintenance"
	iauth "github.com/foodlinkhq/foodlink/internal/auth"
	"github.com/foodlinkhq/foodlink/internal/database"
	"github.com/foodlinkhq/foodlink/internal/location"
	"github.com/foodlinkhq/foodlink/internal/middleware"
	"github.com/foodlinkhq/foodlink/internal/repository"
	"github.com/foodlinkhq/foodlink/internal/services"
	"github.com/foodlinkhq/foodlink/internal/storage"
	"github.com/foodlinkhq/foodlink/pkg/logger"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB        *gorm.DB
	Repo      repository.Repository
	Sessions  *iauth.SessionService
	Donations *services.DonationService
	Stats     *services.StatsService
	Cleaner   *maintenance.Cleaner
	Router    *gin.Engine
}

// bootstrapRuntime initialises the database, services, background jobs and the HTTP router.
func bootstrapRuntime(cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			if shutdownErr := stack.Shutdown(context.Background()); shutdownErr != nil {
				log.Warn("partial bootstrap cleanup", zap.Error(shutdownErr))
			}
		}
	}()

	if mode := strings.TrimSpace(cfg.Server.Mode); mode != "" {
		gin.SetMode(mode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	// One repository is shared by every service for the life of the process.
	stack.Repo, err = repository.New(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise repository: %w", err)
	}

	classifier, err := location.New(cfg.Location.Strategy)
	if err != nil {
		return nil, err
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise jwt service: %w", err)
	}

	stack.Sessions, err = iauth.NewSessionService(stack.DB, jwtSvc, cfg.Auth.SessionServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise session service: %w", err)
	}

	profiles, err := services.NewProfileService(stack.Repo, stack.Sessions)
	if err != nil {
		return nil, fmt.Errorf("initialise profile service: %w", err)
	}

	stack.Donations, err = services.NewDonationService(stack.Repo, services.DonationConfig{
		QueryPageLimit: cfg.Donations.QueryPageLimit,
		Classifier:     classifier,
	})
	if err != nil {
		return nil, fmt.Errorf("initialise donation service: %w", err)
	}

	stack.Stats, err = services.NewStatsService(stack.Repo, stack.Donations, services.StatsConfig{
		MealsPerDonation: cfg.Donations.MealsPerDonation,
		PeoplePerClaim:   cfg.Donations.PeoplePerClaim,
		LeaderboardLimit: cfg.Donations.LeaderboardLimit,
		QueryPageLimit:   cfg.Donations.QueryPageLimit,
		Classifier:       classifier,
	})
	if err != nil {
		return nil, fmt.Errorf("initialise stats service: %w", err)
	}

	blobs, err := storage.NewBlobStore(nil, storage.Config{
		Root:          cfg.Storage.Root,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
		MaxUploadSize: cfg.Storage.MaxUploadSize,
		Buckets:       cfg.Storage.Buckets,
	})
	if err != nil {
		return nil, fmt.Errorf("initialise blob storage: %w", err)
	}

	files, err := services.NewFileService(stack.Repo, blobs)
	if err != nil {
		return nil, fmt.Errorf("initialise file service: %w", err)
	}

	if cfg.Maintenance.Enabled {
		stack.Cleaner = maintenance.NewCleaner(stack.Sessions, stack.Repo,
			maintenance.WithSessionSchedule(cfg.Maintenance.SessionSchedule),
			maintenance.WithExpirySchedule(cfg.Maintenance.ExpirySchedule),
		)
		if err := stack.Cleaner.Start(); err != nil {
			return nil, fmt.Errorf("start maintenance jobs: %w", err)
		}
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	stack.Router, err = api.NewRouter(api.Deps{
		DB:             stack.DB,
		JWT:            jwtSvc,
		Profiles:       profiles,
		Donations:      stack.Donations,
		Stats:          stack.Stats,
		Files:          files,
		RateLimiter:    limiter,
		TrustedProxies: cfg.Server.TrustedProxies,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}

	var errs error
	if s.Cleaner != nil {
		stopCtx := s.Cleaner.Stop()
		if stopCtx != nil {
			<-stopCtx.Done()
		}
		errs = multierr.Append(errs, s.Cleaner.RunOnce(ctx))
	}

	if s.DB != nil {
		errs = multierr.Append(errs, closeDatabase(s.DB))
	}
	return errs
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.DatabaseOpenConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		_ = closeDatabase(db)
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	logger.WithModule("database").Info("database connected", zap.String("driver", dbCfg.Driver))
	return db, nil
}

func closeDatabase(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("obtain sql db: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
