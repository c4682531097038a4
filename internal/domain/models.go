package domain

import (
	"time"
)

const (
	StartingMMR    = 1000
	StartingSeason = 1
)

type Player struct {
	Identity string // stable external id (chat account id)
	Name     string // in-game display name
	MMR      int

	WinsHuman         int
	WinsFirstInfected int
	Losses            int
	KillsInfected     int
	KillsHuman        int
	Assists           int
	DamageDealt       int

	LastChange int
	SeasonID   int
	Ranked     bool // false = chill mode, matches recorded without MMR change
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (p Player) Wins() int {
	return p.WinsHuman + p.WinsFirstInfected
}

func (p Player) Games() int {
	return p.Wins() + p.Losses
}

// WinRate is a percentage rounded to one decimal, 0 when no games were played.
func (p Player) WinRate() float64 {
	games := p.Games()
	if games == 0 {
		return 0
	}
	pct := float64(p.Wins()) / float64(games) * 100
	return float64(int(pct*10+0.5)) / 10
}

// PlayerDelta is applied relative to the stored row (mmr = mmr + ?).
type PlayerDelta struct {
	MMR               int
	WinsHuman         int
	WinsFirstInfected int
	Losses            int
	KillsInfected     int
	KillsHuman        int
	Assists           int
	Damage            int
}

type Match struct {
	MatchID  int64
	Winner   Side
	PlayedAt time.Time
}

type MatchParticipation struct {
	ID        string // nanoid
	MatchID   int64
	Position  int // caller-supplied order within the match
	Identity  string
	Role      Role
	Kills     int
	Damage    int
	MMRChange int
	Survivor  bool
	CreatedAt time.Time
}

// enriched
type MatchHistoryEntry struct {
	Match         Match
	Participation MatchParticipation
}

type MatchParticipant struct {
	MatchParticipation
	Name string // empty when the player has been unlinked since
}

type Standing struct {
	Position int
	Identity string
	Name     string
	MMR      int
	Rank     string
}

type RankChange struct {
	ID       string
	MatchID  int64
	Identity string
	Name     string
	OldRank  string
	NewRank  string
	MMR      int
	Promoted bool
	At       time.Time
}
