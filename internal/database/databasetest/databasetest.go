// Package databasetest opens migrated sqlite databases for package tests.
package databasetest

import (
	"database/sql"
	"path/filepath"
	"testing"

	"infected-ranked/internal/config"
	"infected-ranked/internal/database"
	"infected-ranked/internal/db"

	"github.com/rs/zerolog"
)

// Open returns a fresh migrated sqlite database in t.TempDir, closed on cleanup.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	cfg := &config.Config{
		DBDriver: config.DriverSQLite,
		DBPath:   filepath.Join(t.TempDir(), "ranked.db"),
	}
	sqlDB, err := database.New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return sqlDB
}

func Queries(sqlDB *sql.DB) *db.Queries {
	return db.New(sqlDB, config.DriverSQLite)
}
