package service

import (
	"context"

	"infected-ranked/internal/constants"
	"infected-ranked/internal/domain"
	"infected-ranked/internal/ranking"
	"infected-ranked/internal/repository"

	"github.com/rs/zerolog"
)

type Leaderboard struct {
	Season    int
	Standings []domain.Standing
}

type LeaderboardService struct {
	players *repository.PlayerRepository
	calc    *ranking.Calculator
	cache   LeaderboardCache
	logger  zerolog.Logger
}

func NewLeaderboardService(players *repository.PlayerRepository, calc *ranking.Calculator, cache LeaderboardCache, logger zerolog.Logger) *LeaderboardService {
	return &LeaderboardService{players: players, calc: calc, cache: cache, logger: logger}
}

// Top returns the current season's best players. limit <= 0 means the default.
func (s *LeaderboardService) Top(ctx context.Context, limit int) (*Leaderboard, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	limit = clampLimit(limit, constants.LeaderboardLimit, constants.LeaderboardMaxLimit)

	season, err := s.players.CurrentSeason(ctx)
	if err != nil {
		return nil, err
	}

	standings, version, ok := s.cache.Get(ctx, season, limit)
	if ok {
		s.logger.Debug().Int("season", season).Int("limit", limit).Msg("leaderboard cache hit")
		return &Leaderboard{Season: season, Standings: standings}, nil
	}

	standings, err = s.players.Top(ctx, season, limit)
	if err != nil {
		return nil, err
	}
	for i := range standings {
		standings[i].Rank = s.calc.RankOf(standings[i].MMR)
	}

	s.cache.Set(ctx, version, season, limit, standings)
	return &Leaderboard{Season: season, Standings: standings}, nil
}

func clampLimit(limit, def, maxLimit int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, maxLimit)
}
