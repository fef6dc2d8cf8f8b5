package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hoadb/memberwall/internal/models"
)

// Connect opens the SQLite database at dbPath. Foreign keys are enforced and a
// busy timeout keeps concurrent requests from failing on a locked database.
func Connect(dbPath string) (*gorm.DB, error) {
	dsn := dbPath
	if dsn != "" && dsn[0] != ':' && !strings.Contains(dsn, "?") {
		dsn += "?_busy_timeout=5000&_foreign_keys=on"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	return db, nil
}

// Migrate creates or updates the application tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.SecurityDecision{},
		&models.SecurityAudit{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
