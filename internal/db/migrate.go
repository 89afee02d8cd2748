package db

import (
	"fmt"

	"github.com/crystalgrimoire/grimoire/internal/models"

	"gorm.io/gorm"
)

// Migrate runs database migrations for the current dialect.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}

	if errAutoMigrate := conn.AutoMigrate(
		&models.User{},
		&models.CollectionEntry{},
		&models.JournalEntry{},
		&models.UsageRecord{},
		&models.Listing{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: auto migrate: %w", errAutoMigrate)
	}

	if errIndex := conn.Exec(
		"CREATE INDEX IF NOT EXISTS idx_usage_records_user_day ON usage_records (user_id, feature, requested_at)",
	).Error; errIndex != nil {
		return fmt.Errorf("db: usage index: %w", errIndex)
	}
	return nil
}
