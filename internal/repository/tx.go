package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

// Stores groups the repositories bound to one transaction.
type Stores struct {
	Players        *PlayerRepository
	Matches        *MatchRepository
	Participations *ParticipationRepository
}

type Transactor struct {
	db             *sql.DB
	players        *PlayerRepository
	matches        *MatchRepository
	participations *ParticipationRepository
	logger         zerolog.Logger
}

func NewTransactor(sqlDB *sql.DB, players *PlayerRepository, matches *MatchRepository, participations *ParticipationRepository, logger zerolog.Logger) *Transactor {
	return &Transactor{
		db:             sqlDB,
		players:        players,
		matches:        matches,
		participations: participations,
		logger:         logger,
	}
}

// RunInTx commits when fn returns nil and rolls back otherwise.
func (t *Transactor) RunInTx(ctx context.Context, fn func(s Stores) error) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(Stores{
		Players:        t.players.WithTx(tx),
		Matches:        t.matches.WithTx(tx),
		Participations: t.participations.WithTx(tx),
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		t.logger.Error().Err(err).Msg("failed to commit transaction")
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
