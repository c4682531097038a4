package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"infected-ranked/internal/config"
	"infected-ranked/internal/constants"
	"infected-ranked/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	keyPrefix  = "ranked:leaderboard:"
	versionKey = "ranked:leaderboard-version"
)

// LeaderboardCache keeps computed standings in redis. Entries are stored under
// the version current when their read started; Invalidate bumps the version, so
// a write racing an invalidation lands on a key nobody reads. A nil client turns
// every call into a miss or a no-op.
type LeaderboardCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

func NewLeaderboardCache(rdb *redis.Client, cfg *config.Config, logger zerolog.Logger) *LeaderboardCache {
	return &LeaderboardCache{rdb: rdb, ttl: cfg.LeaderboardTTL, logger: logger}
}

func key(version int64, season, limit int) string {
	return keyPrefix + strconv.FormatInt(version, 10) + ":" + strconv.Itoa(season) + ":" + strconv.Itoa(limit)
}

func (c *LeaderboardCache) enabled() bool {
	return c != nil && c.rdb != nil && c.ttl > 0
}

// Get returns the cached standings and the version to pass to Set on a miss.
// A negative version means the cache is unusable.
func (c *LeaderboardCache) Get(ctx context.Context, season, limit int) ([]domain.Standing, int64, bool) {
	if !c.enabled() {
		return nil, -1, false
	}
	ctx, cancel := context.WithTimeout(ctx, constants.CacheTimeout)
	defer cancel()

	version, err := c.rdb.Get(ctx, versionKey).Int64()
	if err != nil && err != redis.Nil {
		c.logger.Warn().Err(err).Msg("leaderboard cache version read failed")
		return nil, -1, false
	}

	raw, err := c.rdb.Get(ctx, key(version, season, limit)).Bytes()
	if err == redis.Nil {
		return nil, version, false
	}
	if err != nil {
		c.logger.Warn().Err(err).Msg("leaderboard cache read failed")
		return nil, -1, false
	}

	var standings []domain.Standing
	if err := json.Unmarshal(raw, &standings); err != nil {
		c.logger.Warn().Err(err).Msg("leaderboard cache entry corrupt")
		return nil, version, false
	}
	return standings, version, true
}

func (c *LeaderboardCache) Set(ctx context.Context, version int64, season, limit int, standings []domain.Standing) {
	if !c.enabled() || version < 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, constants.CacheTimeout)
	defer cancel()

	raw, err := json.Marshal(standings)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to encode leaderboard")
		return
	}
	if err := c.rdb.Set(ctx, key(version, season, limit), raw, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("leaderboard cache write failed")
	}
}

// Invalidate bumps the version and drops every cached leaderboard regardless of
// season and limit.
func (c *LeaderboardCache) Invalidate(ctx context.Context) {
	if !c.enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, constants.CacheTimeout)
	defer cancel()

	if err := c.rdb.Incr(ctx, versionKey).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("leaderboard cache version bump failed")
	}

	var keys []string
	iter := c.rdb.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn().Err(err).Msg("leaderboard cache scan failed")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("leaderboard cache invalidation failed")
		return
	}
	c.logger.Debug().Int("keys", len(keys)).Msg("leaderboard cache invalidated")
}
