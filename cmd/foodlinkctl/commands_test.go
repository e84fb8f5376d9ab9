package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/foodlinkhq/foodlink/internal/app"
	"github.com/foodlinkhq/foodlink/internal/database"
	"github.com/foodlinkhq/foodlink/internal/models"
	"github.com/foodlinkhq/foodlink/internal/repository"
)

func fileDB(t *testing.T) func(*app.Config) (*gorm.DB, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "foodlink.sqlite")
	return func(*app.Config) (*gorm.DB, error) {
		return database.Open(database.Config{Driver: "sqlite", Path: path})
	}
}

func execute(t *testing.T, open func(*app.Config) (*gorm.DB, error), args ...string) (string, error) {
	t.Helper()
	cmd := buildRootCmd(&rootOptions{openDB: open})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func withRepo(t *testing.T, open func(*app.Config) (*gorm.DB, error), fn func(repository.Repository)) {
	t.Helper()
	db, err := open(nil)
	require.NoError(t, err)
	defer func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	}()
	repo, err := repository.New(db)
	require.NoError(t, err)
	fn(repo)
}

func TestMigrateAndStats(t *testing.T) {
	open := fileDB(t)

	out, err := execute(t, open, "migrate")
	require.NoError(t, err)
	require.Contains(t, out, "schema up to date")

	withRepo(t, open, func(repo repository.Repository) {
		ctx := context.Background()
		donor := &models.User{Name: "Anand", Email: "anand@example.com", Password: "x", Role: models.RoleDonor, Location: "Jaipur"}
		require.NoError(t, repo.CreateUser(ctx, donor))
		require.NoError(t, repo.CreateDonation(ctx, &models.Donation{
			DonorID:       donor.ID,
			FoodType:      "sweets",
			Quantity:      "5 kg",
			ExpiryDate:    time.Now().Add(-time.Hour),
			PickupAddress: "Johari Bazaar, Jaipur",
			PickupTime:    "Now",
			ContactInfo:   "+91 90000 00000",
			Status:        models.DonationAvailable,
		}))
	})

	out, err = execute(t, open, "stats")
	require.NoError(t, err)
	require.Contains(t, out, `"total_donations": 1`)
	require.Contains(t, out, `"estimated_meals": 5`)

	out, err = execute(t, open, "leaderboard")
	require.NoError(t, err)
	require.Contains(t, out, `"name": "jaipur"`)

	out, err = execute(t, open, "expired")
	require.NoError(t, err)
	require.Contains(t, out, "1 expired listings")
}

func TestVerifyNGO(t *testing.T) {
	open := fileDB(t)
	_, err := execute(t, open, "migrate")
	require.NoError(t, err)

	var ngoID string
	withRepo(t, open, func(repo repository.Repository) {
		ctx := context.Background()
		ngo := &models.User{Name: "Akshaya", Email: "akshaya@example.com", Password: "x", Role: models.RoleNGO}
		require.NoError(t, repo.CreateUser(ctx, ngo))
		require.NoError(t, repo.CreateNGOProfile(ctx, &models.NGOProfile{UserID: ngo.ID, NGOName: "Akshaya Patra"}))
		ngoID = ngo.ID
	})

	out, err := execute(t, open, "verify-ngo", ngoID)
	require.NoError(t, err)
	require.Contains(t, out, "verified")

	withRepo(t, open, func(repo repository.Repository) {
		profile, err := repo.GetNGOProfile(context.Background(), ngoID)
		require.NoError(t, err)
		require.True(t, profile.IsVerified)
	})

	_, err = execute(t, open, "verify-ngo", "unknown-user")
	require.Error(t, err)

	_, err = execute(t, open, "verify-ngo")
	require.Error(t, err)
}
