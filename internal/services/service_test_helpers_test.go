package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/foodlinkhq/foodlink/internal/auth"
	"github.com/foodlinkhq/foodlink/internal/database/testutil"
	"github.com/foodlinkhq/foodlink/internal/models"
	"github.com/foodlinkhq/foodlink/internal/repository"
)

type testEnv struct {
	db        *gorm.DB
	repo      *repository.GormRepository
	profiles  *ProfileService
	donations *DonationService
	stats     *StatsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	repo, err := repository.New(db)
	require.NoError(t, err)

	jwtService, err := auth.NewJWTService(auth.JWTConfig{Secret: "test-secret", Issuer: "foodlink"})
	require.NoError(t, err)
	sessions, err := auth.NewSessionService(db, jwtService, auth.SessionConfig{})
	require.NoError(t, err)

	profiles, err := NewProfileService(repo, sessions)
	require.NoError(t, err)
	donations, err := NewDonationService(repo, DonationConfig{})
	require.NoError(t, err)
	stats, err := NewStatsService(repo, donations, StatsConfig{})
	require.NoError(t, err)

	return &testEnv{db: db, repo: repo, profiles: profiles, donations: donations, stats: stats}
}

func (e *testEnv) createUser(t *testing.T, name string, role models.Role, location string) *models.User {
	t.Helper()
	user := &models.User{
		Name:     name,
		Email:    fmt.Sprintf("%s@example.com", name),
		Password: "hash",
		Location: location,
		Role:     role,
	}
	require.NoError(t, e.repo.CreateUser(context.Background(), user))
	return user
}

func (e *testEnv) postDonation(t *testing.T, donorID, address string) *models.Donation {
	t.Helper()
	donation, err := e.donations.PostDonation(context.Background(), donorID, PostDonationInput{
		FoodType:      "cooked_meals",
		Quantity:      "10 servings",
		ExpiryDate:    time.Now().Add(4 * time.Hour),
		PickupAddress: address,
		PickupTime:    "Today 6-8 PM",
		ContactInfo:   "+91 98450 00000",
	})
	require.NoError(t, err)
	return donation
}

// unavailableRepo fails every read the aggregation views depend on.
type unavailableRepo struct {
	repository.Repository
}

func (unavailableRepo) fail(op string) error {
	return fmt.Errorf("repository: %s: %w: connection refused", op, repository.ErrUnavailable)
}

func (r unavailableRepo) CountDonations(context.Context, repository.DonationFilter) (int64, error) {
	return 0, r.fail("count donations")
}

func (r unavailableRepo) CountUsers(context.Context, models.Role) (int64, error) {
	return 0, r.fail("count users")
}

func (r unavailableRepo) CountClaims(context.Context, repository.ClaimFilter) (int64, error) {
	return 0, r.fail("count claims")
}

func (r unavailableRepo) ListDonations(context.Context, repository.DonationFilter) ([]models.Donation, error) {
	return nil, r.fail("list donations")
}
