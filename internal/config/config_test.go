package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DB_DRIVER", "DB_PATH", "DATABASE_URL", "SERVER_PORT", "LOG_LEVEL",
		"REDIS_URL", "RANK_WEBHOOK_URL", "TABLES_PATH", "LEADERBOARD_TTL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(zerolog.Nop())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.DBDriver != DriverSQLite {
		t.Errorf("DBDriver = %q, want %q", cfg.DBDriver, DriverSQLite)
	}
	if cfg.DBPath != "infected_ranked.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "infected_ranked.db")
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "8080")
	}
	if cfg.LeaderboardTTL != 2*time.Minute {
		t.Errorf("LeaderboardTTL = %v, want %v", cfg.LeaderboardTTL, 2*time.Minute)
	}
	if cfg.RedisURL != "" || cfg.RankWebhookURL != "" {
		t.Errorf("optional integrations should be off by default: %+v", cfg)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/ranked?sslmode=disable")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("LEADERBOARD_TTL", "30s")
	t.Setenv("TABLES_PATH", "/etc/ranked/tables.yaml")

	cfg, err := Load(zerolog.Nop())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.DBDriver != DriverPostgres {
		t.Errorf("DBDriver = %q, want %q", cfg.DBDriver, DriverPostgres)
	}
	if cfg.ServerPort != "9000" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "9000")
	}
	if cfg.LeaderboardTTL != 30*time.Second {
		t.Errorf("LeaderboardTTL = %v, want 30s", cfg.LeaderboardTTL)
	}
	if cfg.TablesPath != "/etc/ranked/tables.yaml" {
		t.Errorf("TablesPath = %q", cfg.TablesPath)
	}
}

func TestLoad_PostgresRequiresURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "postgres")

	if _, err := Load(zerolog.Nop()); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "mysql")
	if _, err := Load(zerolog.Nop()); err == nil {
		t.Error("expected error for unsupported driver")
	}

	clearEnv(t)
	t.Setenv("LEADERBOARD_TTL", "soon")
	if _, err := Load(zerolog.Nop()); err == nil {
		t.Error("expected error for invalid LEADERBOARD_TTL")
	}
}
