package service

import (
	"context"
	"fmt"

	"infected-ranked/internal/constants"
	"infected-ranked/internal/repository"

	"github.com/rs/zerolog"
)

type SeasonService struct {
	tx      *repository.Transactor
	players *repository.PlayerRepository
	cache   LeaderboardCache
	logger  zerolog.Logger
}

func NewSeasonService(tx *repository.Transactor, players *repository.PlayerRepository, cache LeaderboardCache, logger zerolog.Logger) *SeasonService {
	return &SeasonService{tx: tx, players: players, cache: cache, logger: logger}
}

func (s *SeasonService) Current(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.players.CurrentSeason(ctx)
}

// Reset opens the next season: every player returns to the starting MMR with
// zeroed counters. Identity and the ranked flag survive.
func (s *SeasonService) Reset(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	var (
		next  int
		reset int64
	)
	err := s.tx.RunInTx(ctx, func(st repository.Stores) error {
		current, err := st.Players.CurrentSeason(ctx)
		if err != nil {
			return err
		}
		next = current + 1
		reset, err = st.Players.ResetAll(ctx, next)
		return err
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to reset season")
		return 0, fmt.Errorf("failed to reset season: %w", err)
	}

	s.cache.Invalidate(ctx)
	s.logger.Info().Int("season", next).Int64("players", reset).Msg("season reset")
	return next, nil
}
