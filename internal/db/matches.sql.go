package db

import (
	"context"
	"time"
)

const createMatch = `-- name: CreateMatch :one
INSERT INTO matches (winner, played_at)
VALUES (?, ?)
RETURNING match_id
`

type CreateMatchParams struct {
	Winner   string
	PlayedAt time.Time
}

func (q *Queries) CreateMatch(ctx context.Context, arg CreateMatchParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, q.rebind(createMatch), arg.Winner, arg.PlayedAt)
	var matchID int64
	err := row.Scan(&matchID)
	return matchID, err
}

const insertMatchPlayer = `-- name: InsertMatchPlayer :exec
INSERT INTO match_players (id, match_id, position, identity, role, kills, damage, mmr_change, survivor, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type InsertMatchPlayerParams struct {
	ID        string
	MatchID   int64
	Position  int64
	Identity  string
	Role      string
	Kills     int64
	Damage    int64
	MmrChange int64
	Survivor  bool
	CreatedAt time.Time
}

func (q *Queries) InsertMatchPlayer(ctx context.Context, arg InsertMatchPlayerParams) error {
	_, err := q.db.ExecContext(ctx, q.rebind(insertMatchPlayer),
		arg.ID,
		arg.MatchID,
		arg.Position,
		arg.Identity,
		arg.Role,
		arg.Kills,
		arg.Damage,
		arg.MmrChange,
		arg.Survivor,
		arg.CreatedAt,
	)
	return err
}

const getMatch = `-- name: GetMatch :one
SELECT match_id, winner, played_at
FROM matches
WHERE match_id = ?
`

func (q *Queries) GetMatch(ctx context.Context, matchID int64) (Match, error) {
	row := q.db.QueryRowContext(ctx, q.rebind(getMatch), matchID)
	var i Match
	err := row.Scan(&i.MatchID, &i.Winner, &i.PlayedAt)
	return i, err
}

const getRecentMatches = `-- name: GetRecentMatches :many
SELECT
    m.match_id, m.winner, m.played_at,
    mp.id, mp.position, mp.identity, mp.role, mp.kills, mp.damage, mp.mmr_change, mp.survivor, mp.created_at
FROM match_players mp
JOIN matches m ON m.match_id = mp.match_id
WHERE mp.identity = ?
ORDER BY m.played_at DESC, m.match_id DESC
LIMIT ?
`

type GetRecentMatchesParams struct {
	Identity string
	Limit    int64
}

type GetRecentMatchesRow struct {
	MatchID     int64
	Winner      string
	PlayedAt    time.Time
	ID          string
	Position    int64
	Identity    string
	Role        string
	Kills       int64
	Damage      int64
	MmrChange   int64
	Survivor    bool
	MpCreatedAt time.Time
}

func (q *Queries) GetRecentMatches(ctx context.Context, arg GetRecentMatchesParams) ([]GetRecentMatchesRow, error) {
	rows, err := q.db.QueryContext(ctx, q.rebind(getRecentMatches), arg.Identity, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetRecentMatchesRow
	for rows.Next() {
		var i GetRecentMatchesRow
		if err := rows.Scan(
			&i.MatchID,
			&i.Winner,
			&i.PlayedAt,
			&i.ID,
			&i.Position,
			&i.Identity,
			&i.Role,
			&i.Kills,
			&i.Damage,
			&i.MmrChange,
			&i.Survivor,
			&i.MpCreatedAt,
		); err != nil {
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

const getMatchPlayers = `-- name: GetMatchPlayers :many
SELECT
    mp.id, mp.match_id, mp.position, mp.identity, mp.role, mp.kills, mp.damage, mp.mmr_change, mp.survivor, mp.created_at,
    p.name
FROM match_players mp
LEFT JOIN players p ON p.identity = mp.identity
WHERE mp.match_id = ?
ORDER BY mp.position
`

type GetMatchPlayersRow struct {
	ID        string
	MatchID   int64
	Position  int64
	Identity  string
	Role      string
	Kills     int64
	Damage    int64
	MmrChange int64
	Survivor  bool
	CreatedAt time.Time
	Name      *string
}

func (q *Queries) GetMatchPlayers(ctx context.Context, matchID int64) ([]GetMatchPlayersRow, error) {
	rows, err := q.db.QueryContext(ctx, q.rebind(getMatchPlayers), matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetMatchPlayersRow
	for rows.Next() {
		var i GetMatchPlayersRow
		if err := rows.Scan(
			&i.ID,
			&i.MatchID,
			&i.Position,
			&i.Identity,
			&i.Role,
			&i.Kills,
			&i.Damage,
			&i.MmrChange,
			&i.Survivor,
			&i.CreatedAt,
			&i.Name,
		); err != nil {
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
