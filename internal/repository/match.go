package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"infected-ranked/internal/db"
	"infected-ranked/internal/domain"

	"github.com/rs/zerolog"
)

type MatchRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewMatchRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

func (r *MatchRepository) WithTx(tx *sql.Tx) *MatchRepository {
	return &MatchRepository{
		queries: r.queries.WithTx(tx),
		db:      r.db,
		logger:  r.logger,
	}
}

func (r *MatchRepository) Create(ctx context.Context, playedAt time.Time, winner domain.Side) (*domain.Match, error) {
	playedAt = playedAt.UTC()
	id, err := r.queries.CreateMatch(ctx, db.CreateMatchParams{
		Winner:   string(winner),
		PlayedAt: playedAt,
	})
	if err != nil {
		r.logger.Error().Err(err).Str("winner", string(winner)).Msg("failed to create match")
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	return &domain.Match{MatchID: id, Winner: winner, PlayedAt: playedAt}, nil
}

func (r *MatchRepository) Get(ctx context.Context, matchID int64) (*domain.Match, error) {
	m, err := r.queries.GetMatch(ctx, matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match %d: %w", matchID, err)
	}
	winner, err := domain.ParseSide(m.Winner)
	if err != nil {
		return nil, fmt.Errorf("match %d: %w", matchID, err)
	}
	return &domain.Match{MatchID: m.MatchID, Winner: winner, PlayedAt: m.PlayedAt}, nil
}

// Participants lists a match's rows in settlement order. Name is empty for
// players unlinked since.
func (r *MatchRepository) Participants(ctx context.Context, matchID int64) ([]domain.MatchParticipant, error) {
	rows, err := r.queries.GetMatchPlayers(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants of match %d: %w", matchID, err)
	}

	result := make([]domain.MatchParticipant, len(rows))
	for i, row := range rows {
		role, err := domain.ParseRole(row.Role)
		if err != nil {
			return nil, fmt.Errorf("match %d participant %s: %w", matchID, row.Identity, err)
		}
		result[i] = domain.MatchParticipant{
			MatchParticipation: domain.MatchParticipation{
				ID:        row.ID,
				MatchID:   row.MatchID,
				Position:  int(row.Position),
				Identity:  row.Identity,
				Role:      role,
				Kills:     int(row.Kills),
				Damage:    int(row.Damage),
				MMRChange: int(row.MmrChange),
				Survivor:  row.Survivor,
				CreatedAt: row.CreatedAt,
			},
		}
		if row.Name != nil {
			result[i].Name = *row.Name
		}
	}
	return result, nil
}

// Recent returns the player's latest matches, most recent first.
func (r *MatchRepository) Recent(ctx context.Context, identity string, limit int) ([]domain.MatchHistoryEntry, error) {
	rows, err := r.queries.GetRecentMatches(ctx, db.GetRecentMatchesParams{
		Identity: identity,
		Limit:    int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get recent matches for %s: %w", identity, err)
	}

	if len(rows) == 0 {
		return []domain.MatchHistoryEntry{}, nil
	}

	results := make([]domain.MatchHistoryEntry, len(rows))
	for i, row := range rows {
		winner, err := domain.ParseSide(row.Winner)
		if err != nil {
			return nil, fmt.Errorf("match %d: %w", row.MatchID, err)
		}
		role, err := domain.ParseRole(row.Role)
		if err != nil {
			return nil, fmt.Errorf("match %d participant %s: %w", row.MatchID, identity, err)
		}
		results[i] = domain.MatchHistoryEntry{
			Match: domain.Match{
				MatchID:  row.MatchID,
				Winner:   winner,
				PlayedAt: row.PlayedAt,
			},
			Participation: domain.MatchParticipation{
				ID:        row.ID,
				MatchID:   row.MatchID,
				Position:  int(row.Position),
				Identity:  row.Identity,
				Role:      role,
				Kills:     int(row.Kills),
				Damage:    int(row.Damage),
				MMRChange: int(row.MmrChange),
				Survivor:  row.Survivor,
				CreatedAt: row.MpCreatedAt,
			},
		}
	}
	return results, nil
}
