package constants

import "time"

const (
	WebhookTimeout  = 10 * time.Second
	DatabaseTimeout = 5 * time.Second
	RequestTimeout  = 30 * time.Second
	CacheTimeout    = 500 * time.Millisecond
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	SQLiteBusyTimeout = 5000 // ms
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	LeaderboardLimit    = 10
	LeaderboardMaxLimit = 100
	HistoryLimit        = 5
	HistoryMaxLimit     = 50
)

// Damage reported at settlement is clamped to this range.
const (
	MinDamage = 0
	MaxDamage = 1_000_000
)

const (
	RankChangeChannel = "ranked:rank-changes"
)
