package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/foodlinkhq/foodlink/internal/models"
)

// Models lists every persistent model in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.NGOProfile{},
		&models.Donation{},
		&models.Claim{},
		&models.StoredFile{},
		&models.Session{},
	}
}

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
