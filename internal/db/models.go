package db

import (
	"time"
)

type Match struct {
	MatchID  int64
	Winner   string
	PlayedAt time.Time
}

type MatchPlayer struct {
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

type Player struct {
	Identity          string
	Name              string
	Mmr               int64
	WinsHuman         int64
	WinsFirstInfected int64
	Losses            int64
	KillsInfected     int64
	KillsHuman        int64
	Assists           int64
	DamageDealt       int64
	LastChange        int64
	SeasonID          int64
	Ranked            bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
