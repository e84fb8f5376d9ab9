package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/foodlinkhq/foodlink/internal/app"
	iauth "github.com/foodlinkhq/foodlink/internal/auth"
	"github.com/foodlinkhq/foodlink/internal/database"
	"github.com/foodlinkhq/foodlink/internal/location"
	"github.com/foodlinkhq/foodlink/internal/repository"
	"github.com/foodlinkhq/foodlink/internal/services"
)

type rootOptions struct {
	configPath string
	envFile    string
	// openDB is swapped in tests.
	openDB func(cfg *app.Config) (*gorm.DB, error)
}

func newRootCmd() *cobra.Command {
	return buildRootCmd(&rootOptions{openDB: openDatabase})
}

func buildRootCmd(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           "foodlinkctl",
		Short:         "Operate a FoodLink deployment",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to configuration directory or file")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "Optional .env file loaded before configuration")

	root.AddCommand(
		newMigrateCmd(opts),
		newStatsCmd(opts),
		newLeaderboardCmd(opts),
		newVerifyNGOCmd(opts),
		newExpiredCmd(opts),
	)
	return root
}

// cliEnv is the slice of the runtime the commands need.
type cliEnv struct {
	cfg  *app.Config
	db   *gorm.DB
	repo repository.Repository
}

func (o *rootOptions) load() (*cliEnv, error) {
	if path := strings.TrimSpace(o.envFile); path != "" {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("load env file %q: %w", path, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg, err := app.LoadConfig(o.configPath)
	if err != nil {
		return nil, err
	}
	if err := app.ConfigureLogging(app.LogConfig{Level: "warn", Format: cfg.Log.Format}); err != nil {
		return nil, err
	}

	db, err := o.openDB(cfg)
	if err != nil {
		return nil, err
	}
	repo, err := repository.New(db)
	if err != nil {
		return nil, err
	}
	return &cliEnv{cfg: cfg, db: db, repo: repo}, nil
}

func (e *cliEnv) Close() {
	if sqlDB, err := e.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func (e *cliEnv) statsService() (*services.StatsService, error) {
	classifier, err := location.New(e.cfg.Location.Strategy)
	if err != nil {
		return nil, err
	}
	donations, err := services.NewDonationService(e.repo, services.DonationConfig{
		QueryPageLimit: e.cfg.Donations.QueryPageLimit,
		Classifier:     classifier,
	})
	if err != nil {
		return nil, err
	}
	return services.NewStatsService(e.repo, donations, services.StatsConfig{
		MealsPerDonation: e.cfg.Donations.MealsPerDonation,
		PeoplePerClaim:   e.cfg.Donations.PeoplePerClaim,
		LeaderboardLimit: e.cfg.Donations.LeaderboardLimit,
		QueryPageLimit:   e.cfg.Donations.QueryPageLimit,
		Classifier:       classifier,
	})
}

func (e *cliEnv) profileService() (*services.ProfileService, error) {
	if _, err := app.ApplyRuntimeDefaults(e.cfg); err != nil {
		return nil, err
	}
	jwtSvc, err := iauth.NewJWTService(e.cfg.Auth.JWTServiceConfig())
	if err != nil {
		return nil, err
	}
	sessions, err := iauth.NewSessionService(e.db, jwtSvc, e.cfg.Auth.SessionServiceConfig())
	if err != nil {
		return nil, err
	}
	return services.NewProfileService(e.repo, sessions)
}

func openDatabase(cfg *app.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg.Database.DatabaseOpenConfig())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
