package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gorm.io/gorm"

	iauth "github.com/foodlinkhq/foodlink/internal/auth"
	"github.com/foodlinkhq/foodlink/internal/database/testutil"
	"github.com/foodlinkhq/foodlink/internal/models"
	"github.com/foodlinkhq/foodlink/internal/repository"
)

func TestReportExpiredListings(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	repo, err := repository.New(db)
	require.NoError(t, err)
	now := time.Date(2024, 2, 10, 15, 0, 0, 0, time.UTC)

	donor := seedUser(t, db, "donor")
	seedDonation(t, repo, donor.ID, now.Add(-time.Hour), models.DonationAvailable)
	seedDonation(t, repo, donor.ID, now.Add(time.Hour), models.DonationAvailable)
	seedDonation(t, repo, donor.ID, now.Add(-time.Hour), models.DonationClaimed)

	expired, err := ReportExpiredListings(context.Background(), repo, now)
	require.NoError(t, err)
	require.Equal(t, 1, expired)

	_, err = ReportExpiredListings(context.Background(), nil, now)
	require.Error(t, err)
}

func TestCleanerRunOnce(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	repo, err := repository.New(db)
	require.NoError(t, err)

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         "cleanup-secret",
		Issuer:         "test-suite",
		AccessTokenTTL: time.Hour,
	})
	require.NoError(t, err)

	clock := fixedClock{current: time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)}

	sessionSvc, err := iauth.NewSessionService(db, jwtSvc, iauth.SessionConfig{
		RefreshTokenTTL: time.Hour,
		RefreshLength:   16,
		Clock:           clock.Now,
	})
	require.NoError(t, err)

	user := seedUser(t, db, "cleanup-user")
	ctx := context.Background()

	_, expiredSession, err := sessionSvc.CreateSession(ctx, user, iauth.SessionMetadata{})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Session{}).Where("id = ?", expiredSession.ID).
		Update("expires_at", clock.Now().Add(-2*time.Hour)).Error)

	_, activeSession, err := sessionSvc.CreateSession(ctx, user, iauth.SessionMetadata{})
	require.NoError(t, err)

	_, revokedSession, err := sessionSvc.CreateSession(ctx, user, iauth.SessionMetadata{})
	require.NoError(t, err)
	require.NoError(t, sessionSvc.RevokeSession(ctx, revokedSession.ID))

	cleaner := NewCleaner(sessionSvc, repo, WithNow(clock.Now))
	require.NoError(t, cleaner.RunOnce(ctx))

	var sessions []models.Session
	require.NoError(t, db.Find(&sessions).Error)
	require.Len(t, sessions, 1)
	require.Equal(t, activeSession.ID, sessions[0].ID)
}

func TestCleanerStartStop(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	repo, err := repository.New(db)
	require.NoError(t, err)

	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	cleaner := NewCleaner(nil, repo,
		WithCron(cron.New(cron.WithLogger(cron.DiscardLogger))),
		WithExpirySchedule("@every 1h"),
	)
	require.NoError(t, cleaner.Start())
	<-cleaner.Stop().Done()
}

func TestCleanerRejectsBadSchedule(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	repo, err := repository.New(db)
	require.NoError(t, err)

	cleaner := NewCleaner(nil, repo, WithExpirySchedule("not a schedule"))
	require.Error(t, cleaner.Start())
}

func TestCleanerWithoutJobsIsNoop(t *testing.T) {
	cleaner := NewCleaner(nil, nil)
	require.NoError(t, cleaner.Start())
	require.NoError(t, cleaner.RunOnce(context.Background()))
	<-cleaner.Stop().Done()
}

func seedUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{
		Name:     name,
		Email:    name + "@example.com",
		Password: "hash",
		Role:     models.RoleDonor,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedDonation(t *testing.T, repo repository.Repository, donorID string, expiry time.Time, status models.DonationStatus) {
	t.Helper()
	require.NoError(t, repo.CreateDonation(context.Background(), &models.Donation{
		DonorID:       donorID,
		FoodType:      "produce",
		Quantity:      "2 crates",
		ExpiryDate:    expiry,
		PickupAddress: "Nashik",
		PickupTime:    "morning",
		ContactInfo:   "gate",
		Status:        status,
	}))
}

type fixedClock struct {
	current time.Time
}

func (c fixedClock) Now() time.Time {
	return c.current
}
