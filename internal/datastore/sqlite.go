package datastore

import (
	"fmt"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ankitsingh711/AI-analytics/internal/conf"
)

// SQLiteStore implements DataStore for SQLite
type SQLiteStore struct {
	DataStore
	Settings *conf.Settings
}

func validateSQLiteConfig(settings *conf.Settings) error {
	if settings.Output.SQLite.Path == "" {
		return fmt.Errorf("sqlite database path is empty")
	}
	return nil
}

// Open sets up the SQLite database connection
func (store *SQLiteStore) Open() error {
	if err := validateSQLiteConfig(store.Settings); err != nil {
		return err
	}

	absoluteFilePath, err := filepath.Abs(store.Settings.Output.SQLite.Path)
	if err != nil {
		return fmt.Errorf("resolving SQLite database path: %w", err)
	}

	// Create a new GORM logger
	newLogger := createGormLogger(store.Settings.Debug)

	// Open the SQLite database. TranslateError maps driver unique
	// constraint failures to gorm.ErrDuplicatedKey, which the
	// reconciler's conflict retry depends on.
	db, err := gorm.Open(sqlite.Open(absoluteFilePath), &gorm.Config{
		Logger:         newLogger,
		TranslateError: true,
	})
	if err != nil {
		getLogger().Error("Failed to open SQLite database",
			"path", absoluteFilePath,
			"error", err)
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}

	store.DB = db
	return performAutoMigration(db, store.Settings.Debug, "SQLite", absoluteFilePath)
}

// Close closes the SQLite database connection.
func (store *SQLiteStore) Close() error {
	return store.DataStore.Close()
}
