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

type PlayerRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewPlayerRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// WithTx returns a copy whose queries run inside tx.
func (r *PlayerRepository) WithTx(tx *sql.Tx) *PlayerRepository {
	return &PlayerRepository{
		queries: r.queries.WithTx(tx),
		db:      r.db,
		logger:  r.logger,
	}
}

// Create inserts a fresh player at the starting MMR. It reports false without
// an error when the identity is already registered.
func (r *PlayerRepository) Create(ctx context.Context, identity, name string, seasonID int) (bool, error) {
	now := time.Now().UTC()
	n, err := r.queries.CreatePlayer(ctx, db.CreatePlayerParams{
		Identity:  identity,
		Name:      name,
		Mmr:       domain.StartingMMR,
		SeasonID:  int64(seasonID),
		Ranked:    true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		r.logger.Error().Err(err).Str("identity", identity).Msg("failed to create player")
		return false, fmt.Errorf("failed to create player %s: %w", identity, err)
	}
	return n > 0, nil
}

func (r *PlayerRepository) Get(ctx context.Context, identity string) (*domain.Player, error) {
	player, err := r.queries.GetPlayer(ctx, identity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player %s: %w", identity, err)
	}
	return toDomainPlayer(player), nil
}

// GetByName resolves a display name to the earliest registered player using it.
func (r *PlayerRepository) GetByName(ctx context.Context, name string) (*domain.Player, error) {
	player, err := r.queries.GetPlayerByName(ctx, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player by name %q: %w", name, err)
	}
	return toDomainPlayer(player), nil
}

// ApplyDelta adds delta to the stored row and returns the resulting MMR.
// last_change is overwritten with delta.MMR.
func (r *PlayerRepository) ApplyDelta(ctx context.Context, identity string, delta domain.PlayerDelta) (int, error) {
	mmr, err := r.queries.ApplyPlayerDelta(ctx, db.ApplyPlayerDeltaParams{
		Mmr:               int64(delta.MMR),
		WinsHuman:         int64(delta.WinsHuman),
		WinsFirstInfected: int64(delta.WinsFirstInfected),
		Losses:            int64(delta.Losses),
		KillsInfected:     int64(delta.KillsInfected),
		KillsHuman:        int64(delta.KillsHuman),
		Assists:           int64(delta.Assists),
		DamageDealt:       int64(delta.Damage),
		UpdatedAt:         time.Now().UTC(),
		Identity:          identity,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrPlayerNotFound
	}
	if err != nil {
		r.logger.Error().Err(err).Str("identity", identity).Msg("failed to apply player delta")
		return 0, fmt.Errorf("failed to apply delta to %s: %w", identity, err)
	}

	r.logger.Debug().
		Str("identity", identity).
		Int("mmr_delta", delta.MMR).
		Int64("mmr", mmr).
		Msg("player delta applied")
	return int(mmr), nil
}

func (r *PlayerRepository) Delete(ctx context.Context, identity string) error {
	n, err := r.queries.DeletePlayer(ctx, identity)
	if err != nil {
		return fmt.Errorf("failed to delete player %s: %w", identity, err)
	}
	if n == 0 {
		return domain.ErrPlayerNotFound
	}
	return nil
}

func (r *PlayerRepository) SetRanked(ctx context.Context, identity string, ranked bool) error {
	n, err := r.queries.SetPlayerRanked(ctx, db.SetPlayerRankedParams{
		Ranked:    ranked,
		UpdatedAt: time.Now().UTC(),
		Identity:  identity,
	})
	if err != nil {
		return fmt.Errorf("failed to set ranked for %s: %w", identity, err)
	}
	if n == 0 {
		return domain.ErrPlayerNotFound
	}
	return nil
}

// Top returns the highest rated players of a season. Rank labels are left
// empty for the caller to fill.
func (r *PlayerRepository) Top(ctx context.Context, seasonID, limit int) ([]domain.Standing, error) {
	rows, err := r.queries.TopPlayers(ctx, db.TopPlayersParams{
		SeasonID: int64(seasonID),
		Limit:    int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get top players: %w", err)
	}

	result := make([]domain.Standing, len(rows))
	for i, p := range rows {
		result[i] = domain.Standing{
			Position: i + 1,
			Identity: p.Identity,
			Name:     p.Name,
			MMR:      int(p.Mmr),
		}
	}
	return result, nil
}

// CurrentSeason is the highest season id across all players, StartingSeason
// when there are none.
func (r *PlayerRepository) CurrentSeason(ctx context.Context) (int, error) {
	season, err := r.queries.CurrentSeason(ctx, domain.StartingSeason)
	if err != nil {
		return 0, fmt.Errorf("failed to get current season: %w", err)
	}
	return int(season), nil
}

// ResetAll moves every player to seasonID with starting MMR and zeroed counters.
func (r *PlayerRepository) ResetAll(ctx context.Context, seasonID int) (int64, error) {
	n, err := r.queries.ResetSeason(ctx, db.ResetSeasonParams{
		Mmr:       domain.StartingMMR,
		SeasonID:  int64(seasonID),
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to reset players to season %d: %w", seasonID, err)
	}
	return n, nil
}

func toDomainPlayer(p db.Player) *domain.Player {
	return &domain.Player{
		Identity:          p.Identity,
		Name:              p.Name,
		MMR:               int(p.Mmr),
		WinsHuman:         int(p.WinsHuman),
		WinsFirstInfected: int(p.WinsFirstInfected),
		Losses:            int(p.Losses),
		KillsInfected:     int(p.KillsInfected),
		KillsHuman:        int(p.KillsHuman),
		Assists:           int(p.Assists),
		DamageDealt:       int(p.DamageDealt),
		LastChange:        int(p.LastChange),
		SeasonID:          int(p.SeasonID),
		Ranked:            p.Ranked,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
