package service

import (
	"context"

	"infected-ranked/internal/constants"
	"infected-ranked/internal/domain"
	"infected-ranked/internal/repository"

	"github.com/rs/zerolog"
)

type MatchDetail struct {
	Match        domain.Match
	Participants []domain.MatchParticipant
}

type MatchService struct {
	matches *repository.MatchRepository
	logger  zerolog.Logger
}

func NewMatchService(matches *repository.MatchRepository, logger zerolog.Logger) *MatchService {
	return &MatchService{matches: matches, logger: logger}
}

func (s *MatchService) GetMatch(ctx context.Context, matchID int64) (*MatchDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	s.logger.Debug().Int64("match_id", matchID).Msg("getting match")

	match, err := s.matches.Get(ctx, matchID)
	if err != nil {
		return nil, err
	}
	participants, err := s.matches.Participants(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return &MatchDetail{Match: *match, Participants: participants}, nil
}

// History lists recent matches of identity, newest first. Rows of unlinked
// players are still returned.
func (s *MatchService) History(ctx context.Context, identity string, limit int) ([]domain.MatchHistoryEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	limit = clampLimit(limit, constants.HistoryLimit, constants.HistoryMaxLimit)
	return s.matches.Recent(ctx, identity, limit)
}
