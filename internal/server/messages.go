package server

import (
	"time"

	"infected-ranked/internal/domain"
	"infected-ranked/internal/ranking"
	"infected-ranked/internal/service"
)

type Player struct {
	Identity          string `json:"identity"`
	Name              string `json:"name"`
	MMR               int    `json:"mmr"`
	Rank              string `json:"rank"`
	WinsHuman         int    `json:"winsHuman"`
	WinsFirstInfected int    `json:"winsFirstInfected"`
	Losses            int    `json:"losses"`
	KillsInfected     int    `json:"killsInfected"`
	KillsHuman        int    `json:"killsHuman"`
	Assists           int    `json:"assists"`
	DamageDealt       int    `json:"damageDealt"`
	LastChange        int    `json:"lastChange"`
	Season            int    `json:"season"`
	Ranked            bool   `json:"ranked"`
}

type IdentityRequest struct {
	Identity string `json:"identity"`
}

type RegisterRequest struct {
	Identity string `json:"identity"`
	Name     string `json:"name"`
}

type RegisterResponse struct {
	Player  Player `json:"player"`
	Created bool   `json:"created"`
}

type SetRankedRequest struct {
	Identity string `json:"identity"`
	Ranked   bool   `json:"ranked"`
}

type PlayerResponse struct {
	Player Player `json:"player"`
}

type Participation struct {
	MatchID   int64     `json:"matchId"`
	Winner    string    `json:"winner"`
	PlayedAt  time.Time `json:"playedAt"`
	Identity  string    `json:"identity"`
	Name      string    `json:"name,omitempty"`
	Role      string    `json:"role"`
	Kills     int       `json:"kills"`
	Damage    int       `json:"damage"`
	MMRChange int       `json:"mmrChange"`
	Survivor  bool      `json:"survivor"`
}

type ProfileResponse struct {
	Player       Player          `json:"player"`
	Wins         int             `json:"wins"`
	Games        int             `json:"games"`
	WinRate      float64         `json:"winRate"`
	Progress     int             `json:"progress"`
	SeasonLeader bool            `json:"seasonLeader"`
	Recent       []Participation `json:"recent"`
}

type HistoryRequest struct {
	Identity string `json:"identity"`
	Limit    int    `json:"limit"`
}

type HistoryResponse struct {
	Matches []Participation `json:"matches"`
}

type LeaderboardRequest struct {
	Limit int `json:"limit"`
}

type Standing struct {
	Position int    `json:"position"`
	Identity string `json:"identity"`
	Name     string `json:"name"`
	MMR      int    `json:"mmr"`
	Rank     string `json:"rank"`
}

type LeaderboardResponse struct {
	Season    int        `json:"season"`
	Standings []Standing `json:"standings"`
}

type MatchRequest struct {
	MatchID int64 `json:"matchId"`
}

type MatchResponse struct {
	MatchID      int64           `json:"matchId"`
	Winner       string          `json:"winner"`
	PlayedAt     time.Time       `json:"playedAt"`
	Participants []Participation `json:"participants"`
}

type FinalizeMatchRequest struct {
	Participants []string          `json:"participants"`
	Roles        map[string]string `json:"roles"`
	Kills        map[string]int    `json:"kills"`
	Damage       map[string]int    `json:"damage"`
	Scenarios    []string          `json:"scenarios"`
	Map          string            `json:"map"`
}

type ParticipantResult struct {
	Name     string `json:"name"`
	Identity string `json:"identity,omitempty"`
	Role     string `json:"role"`
	Survivor bool   `json:"survivor"`
	Kills    int    `json:"kills"`
	Damage   int    `json:"damage"`
	Delta    int    `json:"delta"`
	OldMMR   int    `json:"oldMmr"`
	NewMMR   int    `json:"newMmr"`
	OldRank  string `json:"oldRank,omitempty"`
	NewRank  string `json:"newRank,omitempty"`
	Skipped  bool   `json:"skipped"`
	Reason   string `json:"reason,omitempty"`
}

type RankChange struct {
	Identity string `json:"identity"`
	Name     string `json:"name"`
	OldRank  string `json:"oldRank"`
	NewRank  string `json:"newRank"`
	MMR      int    `json:"mmr"`
	Promoted bool   `json:"promoted"`
}

type FinalizeMatchResponse struct {
	MatchID      int64               `json:"matchId"`
	Winner       string              `json:"winner"`
	PlayedAt     time.Time           `json:"playedAt"`
	Updated      int                 `json:"updated"`
	Participants []ParticipantResult `json:"participants"`
	RankChanges  []RankChange        `json:"rankChanges"`
}

type ResetSeasonResponse struct {
	Season int `json:"season"`
}

type Rank struct {
	Label string `json:"label"`
	Min   *int   `json:"min,omitempty"` // nil for the catch-all tier
}

type Scenario struct {
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Favors string `json:"favors,omitempty"`
}

type CatalogResponse struct {
	Ranks     []Rank              `json:"ranks"`
	Scenarios []Scenario          `json:"scenarios"`
	Maps      map[string][]string `json:"maps"`
}

func toPlayer(p *domain.Player, rank string) Player {
	return Player{
		Identity:          p.Identity,
		Name:              p.Name,
		MMR:               p.MMR,
		Rank:              rank,
		WinsHuman:         p.WinsHuman,
		WinsFirstInfected: p.WinsFirstInfected,
		Losses:            p.Losses,
		KillsInfected:     p.KillsInfected,
		KillsHuman:        p.KillsHuman,
		Assists:           p.Assists,
		DamageDealt:       p.DamageDealt,
		LastChange:        p.LastChange,
		Season:            p.SeasonID,
		Ranked:            p.Ranked,
	}
}

func toHistory(entries []domain.MatchHistoryEntry) []Participation {
	out := make([]Participation, len(entries))
	for i, e := range entries {
		out[i] = Participation{
			MatchID:   e.Match.MatchID,
			Winner:    string(e.Match.Winner),
			PlayedAt:  e.Match.PlayedAt,
			Identity:  e.Participation.Identity,
			Role:      e.Participation.Role.String(),
			Kills:     e.Participation.Kills,
			Damage:    e.Participation.Damage,
			MMRChange: e.Participation.MMRChange,
			Survivor:  e.Participation.Survivor,
		}
	}
	return out
}

func toMatchResponse(d *service.MatchDetail) *MatchResponse {
	resp := &MatchResponse{
		MatchID:      d.Match.MatchID,
		Winner:       string(d.Match.Winner),
		PlayedAt:     d.Match.PlayedAt,
		Participants: make([]Participation, len(d.Participants)),
	}
	for i, p := range d.Participants {
		resp.Participants[i] = Participation{
			MatchID:   p.MatchID,
			Winner:    string(d.Match.Winner),
			PlayedAt:  d.Match.PlayedAt,
			Identity:  p.Identity,
			Name:      p.Name,
			Role:      p.Role.String(),
			Kills:     p.Kills,
			Damage:    p.Damage,
			MMRChange: p.MMRChange,
			Survivor:  p.Survivor,
		}
	}
	return resp
}

func toFinalizeResponse(r *service.SettlementResult) *FinalizeMatchResponse {
	resp := &FinalizeMatchResponse{
		MatchID:      r.Match.MatchID,
		Winner:       string(r.Match.Winner),
		PlayedAt:     r.Match.PlayedAt,
		Updated:      r.Updated,
		Participants: make([]ParticipantResult, len(r.Participants)),
		RankChanges:  make([]RankChange, len(r.RankChanges)),
	}
	for i, p := range r.Participants {
		resp.Participants[i] = ParticipantResult{
			Name:     p.Name,
			Identity: p.Identity,
			Role:     p.Role.String(),
			Survivor: p.Survivor,
			Kills:    p.Kills,
			Damage:   p.Damage,
			Delta:    p.Delta,
			OldMMR:   p.OldMMR,
			NewMMR:   p.NewMMR,
			OldRank:  p.OldRank,
			NewRank:  p.NewRank,
			Skipped:  p.Skipped,
			Reason:   string(p.Reason),
		}
	}
	for i, c := range r.RankChanges {
		resp.RankChanges[i] = RankChange{
			Identity: c.Identity,
			Name:     c.Name,
			OldRank:  c.OldRank,
			NewRank:  c.NewRank,
			MMR:      c.MMR,
			Promoted: c.Promoted,
		}
	}
	return resp
}

func toCatalogResponse(c service.Catalog) *CatalogResponse {
	resp := &CatalogResponse{
		Ranks:     make([]Rank, len(c.Ranks)),
		Scenarios: make([]Scenario, len(c.Scenarios)),
		Maps:      make(map[string][]string, len(c.Maps)),
	}
	for i, t := range c.Ranks {
		resp.Ranks[i] = Rank{Label: t.Label}
		if !t.CatchAll {
			resp.Ranks[i].Min = &t.Min
		}
	}
	for i, s := range c.Scenarios {
		resp.Scenarios[i] = Scenario{Name: s.Name, Score: s.Score, Favors: string(s.Favors())}
	}
	for _, size := range ranking.MapSizes {
		resp.Maps[string(size)] = c.Maps[size]
	}
	return resp
}
