package db

import (
	"fmt"

	"github.com/router-for-me/GraphQLTester/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the tables used by the slot store.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	if errMigrate := conn.AutoMigrate(&models.Slot{}); errMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errMigrate)
	}
	return nil
}
