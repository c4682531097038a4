package db

import (
	"context"
	"time"
)

const playerColumns = `identity, name, mmr, wins_human, wins_first_infected, losses, kills_infected, kills_human, assists, damage_dealt, last_change, season_id, ranked, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPlayer(row rowScanner) (Player, error) {
	var i Player
	err := row.Scan(
		&i.Identity,
		&i.Name,
		&i.Mmr,
		&i.WinsHuman,
		&i.WinsFirstInfected,
		&i.Losses,
		&i.KillsInfected,
		&i.KillsHuman,
		&i.Assists,
		&i.DamageDealt,
		&i.LastChange,
		&i.SeasonID,
		&i.Ranked,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createPlayer = `-- name: CreatePlayer :execrows
INSERT INTO players (identity, name, mmr, season_id, ranked, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (identity) DO NOTHING
`

type CreatePlayerParams struct {
	Identity  string
	Name      string
	Mmr       int64
	SeasonID  int64
	Ranked    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (q *Queries) CreatePlayer(ctx context.Context, arg CreatePlayerParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, q.rebind(createPlayer),
		arg.Identity,
		arg.Name,
		arg.Mmr,
		arg.SeasonID,
		arg.Ranked,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getPlayer = `-- name: GetPlayer :one
SELECT ` + playerColumns + `
FROM players
WHERE identity = ?
`

func (q *Queries) GetPlayer(ctx context.Context, identity string) (Player, error) {
	row := q.db.QueryRowContext(ctx, q.rebind(getPlayer), identity)
	return scanPlayer(row)
}

const getPlayerByName = `-- name: GetPlayerByName :one
SELECT ` + playerColumns + `
FROM players
WHERE name = ?
ORDER BY created_at, identity
LIMIT 1
`

func (q *Queries) GetPlayerByName(ctx context.Context, name string) (Player, error) {
	row := q.db.QueryRowContext(ctx, q.rebind(getPlayerByName), name)
	return scanPlayer(row)
}

const applyPlayerDelta = `-- name: ApplyPlayerDelta :one
UPDATE players
SET mmr = mmr + ?,
    wins_human = wins_human + ?,
    wins_first_infected = wins_first_infected + ?,
    losses = losses + ?,
    kills_infected = kills_infected + ?,
    kills_human = kills_human + ?,
    assists = assists + ?,
    damage_dealt = damage_dealt + ?,
    last_change = ?,
    updated_at = ?
WHERE identity = ?
RETURNING mmr
`

type ApplyPlayerDeltaParams struct {
	Mmr               int64
	WinsHuman         int64
	WinsFirstInfected int64
	Losses            int64
	KillsInfected     int64
	KillsHuman        int64
	Assists           int64
	DamageDealt       int64
	UpdatedAt         time.Time
	Identity          string
}

// ApplyPlayerDelta returns the mmr after the update.
func (q *Queries) ApplyPlayerDelta(ctx context.Context, arg ApplyPlayerDeltaParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, q.rebind(applyPlayerDelta),
		arg.Mmr,
		arg.WinsHuman,
		arg.WinsFirstInfected,
		arg.Losses,
		arg.KillsInfected,
		arg.KillsHuman,
		arg.Assists,
		arg.DamageDealt,
		arg.Mmr,
		arg.UpdatedAt,
		arg.Identity,
	)
	var mmr int64
	err := row.Scan(&mmr)
	return mmr, err
}

const deletePlayer = `-- name: DeletePlayer :execrows
DELETE FROM players
WHERE identity = ?
`

func (q *Queries) DeletePlayer(ctx context.Context, identity string) (int64, error) {
	result, err := q.db.ExecContext(ctx, q.rebind(deletePlayer), identity)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const setPlayerRanked = `-- name: SetPlayerRanked :execrows
UPDATE players
SET ranked = ?, updated_at = ?
WHERE identity = ?
`

type SetPlayerRankedParams struct {
	Ranked    bool
	UpdatedAt time.Time
	Identity  string
}

func (q *Queries) SetPlayerRanked(ctx context.Context, arg SetPlayerRankedParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, q.rebind(setPlayerRanked), arg.Ranked, arg.UpdatedAt, arg.Identity)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const currentSeason = `-- name: CurrentSeason :one
SELECT COALESCE(MAX(season_id), ?)
FROM players
`

func (q *Queries) CurrentSeason(ctx context.Context, fallback int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, q.rebind(currentSeason), fallback)
	var season int64
	err := row.Scan(&season)
	return season, err
}

const resetSeason = `-- name: ResetSeason :execrows
UPDATE players
SET mmr = ?,
    wins_human = 0,
    wins_first_infected = 0,
    losses = 0,
    kills_infected = 0,
    kills_human = 0,
    assists = 0,
    damage_dealt = 0,
    last_change = 0,
    season_id = ?,
    updated_at = ?
`

type ResetSeasonParams struct {
	Mmr       int64
	SeasonID  int64
	UpdatedAt time.Time
}

func (q *Queries) ResetSeason(ctx context.Context, arg ResetSeasonParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, q.rebind(resetSeason), arg.Mmr, arg.SeasonID, arg.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const topPlayers = `-- name: TopPlayers :many
SELECT identity, name, mmr
FROM players
WHERE season_id = ?
ORDER BY mmr DESC, name ASC
LIMIT ?
`

type TopPlayersParams struct {
	SeasonID int64
	Limit    int64
}

type TopPlayersRow struct {
	Identity string
	Name     string
	Mmr      int64
}

func (q *Queries) TopPlayers(ctx context.Context, arg TopPlayersParams) ([]TopPlayersRow, error) {
	rows, err := q.db.QueryContext(ctx, q.rebind(topPlayers), arg.SeasonID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TopPlayersRow
	for rows.Next() {
		var i TopPlayersRow
		if err := rows.Scan(&i.Identity, &i.Name, &i.Mmr); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
