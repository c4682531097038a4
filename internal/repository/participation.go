package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"infected-ranked/internal/db"
	"infected-ranked/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type ParticipationRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewParticipationRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *ParticipationRepository {
	return &ParticipationRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

func (r *ParticipationRepository) WithTx(tx *sql.Tx) *ParticipationRepository {
	return &ParticipationRepository{
		queries: r.queries.WithTx(tx),
		db:      r.db,
		logger:  r.logger,
	}
}

// Append stores one participation row. ID and CreatedAt are filled in when empty.
func (r *ParticipationRepository) Append(ctx context.Context, p *domain.MatchParticipation) error {
	if p.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
		p.ID = id
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	err := r.queries.InsertMatchPlayer(ctx, db.InsertMatchPlayerParams{
		ID:        p.ID,
		MatchID:   p.MatchID,
		Position:  int64(p.Position),
		Identity:  p.Identity,
		Role:      p.Role.String(),
		Kills:     int64(p.Kills),
		Damage:    int64(p.Damage),
		MmrChange: int64(p.MMRChange),
		Survivor:  p.Survivor,
		CreatedAt: p.CreatedAt,
	})
	if err != nil {
		r.logger.Error().
			Err(err).
			Int64("match_id", p.MatchID).
			Str("identity", p.Identity).
			Msg("failed to append participation")
		return fmt.Errorf("failed to append participation of %s in match %d: %w", p.Identity, p.MatchID, err)
	}
	return nil
}
