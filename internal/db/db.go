package db

import (
	"errors"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"sitetime/internal/config"
)

// Connect opens a GORM database connection using APP_DATABASE_URL
// (PostgreSQL URL) and migrates the tables for the configured storage
// shape.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := strings.TrimSpace(cfg.DatabaseURL)
	if dsn == "" {
		return nil, errors.New("APP_DATABASE_URL is required (PostgreSQL URL)")
	}
	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return nil, errors.New("APP_DATABASE_URL must be a postgres:// or postgresql:// URL")
	}

	// PrepareStmt: true prevents the GORM postgres migrator from forcing simple protocol
	// for "SELECT * FROM table LIMIT 1", which would otherwise trigger "insufficient arguments".
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{PrepareStmt: true})
	if err != nil {
		return nil, err
	}

	// Only the configured shape's table is migrated; the other shape is
	// never touched by this process.
	if cfg.StorageShape == config.ShapeGrouped {
		err = db.AutoMigrate(&UserRecord{})
	} else {
		err = db.AutoMigrate(&UsageEvent{})
	}
	if err != nil {
		return nil, err
	}

	return db, nil
}
