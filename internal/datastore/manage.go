package datastore

import (
	"time"

	"gorm.io/gorm"

	"github.com/ankitsingh711/AI-analytics/internal/errors"
)

// performAutoMigration runs GORM auto-migration for the report and
// violation tables, which also creates the composite unique index on
// (drone_id, date) that enforces the natural key.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	migrationStart := time.Now()

	if err := db.AutoMigrate(&Report{}, &Violation{}); err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "auto_migration").
			Context("db_type", dbType).
			Build()
	}

	if debug {
		getLogger().Debug("Database migration completed",
			"db_type", dbType,
			"connection", connectionInfo,
			"duration", time.Since(migrationStart))
	}

	getLogger().Info("Database connection initialized",
		"db_type", dbType,
		"connection", connectionInfo)

	return nil
}
