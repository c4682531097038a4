package database

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"infected-ranked/internal/config"

	"github.com/rs/zerolog"
)

func TestNew_SQLiteMigrates(t *testing.T) {
	cfg := &config.Config{
		DBDriver: config.DriverSQLite,
		DBPath:   filepath.Join(t.TempDir(), "ranked.db"),
	}

	sqlDB, err := New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer sqlDB.Close()

	for _, table := range []string{"players", "matches", "match_players"} {
		var name string
		err := sqlDB.QueryRowContext(context.Background(),
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}

	var fk int
	if err := sqlDB.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("PRAGMA foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}
}

func TestNew_ReopenIsIdempotent(t *testing.T) {
	cfg := &config.Config{
		DBDriver: config.DriverSQLite,
		DBPath:   filepath.Join(t.TempDir(), "ranked.db"),
	}

	for i := 0; i < 2; i++ {
		sqlDB, err := New(cfg, zerolog.Nop())
		if err != nil {
			t.Fatalf("open #%d: %v", i+1, err)
		}
		sqlDB.Close()
	}
}

func TestSQLiteDSN(t *testing.T) {
	dsn := sqliteDSN("/tmp/ranked.db")
	for _, want := range []string{"file:/tmp/ranked.db?", "_busy_timeout=5000", "_foreign_keys=on", "_txlock=immediate"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("dsn %q missing %q", dsn, want)
		}
	}
}
