package database

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/foodlinkhq/foodlink/internal/models"
)

func TestOpenSQLiteMemory(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.Exec("SELECT 1").Error)
	require.NoError(t, Ping(db))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported database driver")
}

func TestMemoryDatabasesAreIsolated(t *testing.T) {
	first := openTestDB(t)
	second := openTestDB(t)

	require.NoError(t, AutoMigrate(first))
	require.True(t, first.Migrator().HasTable(&models.Donation{}))
	require.False(t, second.Migrator().HasTable(&models.Donation{}))
}

func TestAutoMigrateCreatesDomainTables(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, AutoMigrate(db))

	migrator := db.Migrator()
	for _, table := range []string{"users", "ngo_data", "food_donations", "donation_claims", "stored_files", "sessions"} {
		require.True(t, migrator.HasTable(table), "expected table %s to exist", table)
	}
	require.True(t, migrator.HasColumn(&models.Claim{}, "ngo_id"))
	require.True(t, migrator.HasColumn(&models.Donation{}, "claimed_by_claim_id"))
}

func TestAutoMigrateNilHandle(t *testing.T) {
	require.Error(t, AutoMigrate(nil))
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(Config{Driver: "sqlite"})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}
