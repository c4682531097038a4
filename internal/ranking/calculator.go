package ranking

import (
	"math"

	"infected-ranked/internal/domain"
)

// Input is everything a single player's delta depends on.
type Input struct {
	Role            domain.Role
	Winner          domain.Side
	Survivor        bool
	Kills           int
	Assists         int
	Damage          int
	SurvivalSeconds int
	Scenarios       []string
	Map             string
}

// Calculator computes MMR deltas. It only reads its tables and is safe for
// concurrent use.
type Calculator struct {
	tables *Tables
}

func NewCalculator(tables *Tables) *Calculator {
	return &Calculator{tables: tables}
}

func (c *Calculator) Tables() *Tables {
	return c.tables
}

// RankOf classifies mmr with the configured rank table.
func (c *Calculator) RankOf(mmr int) string {
	return c.tables.Ranks.RankOf(mmr)
}

// Delta returns the MMR change for one player. The base is integer, the scenario
// and map factors are applied on a float in that order, and the result is
// truncated toward zero.
func (c *Calculator) Delta(in Input) int {
	v := float64(c.base(in))
	v *= c.scenarioFactor(in.Winner, in.Scenarios)
	v *= c.mapFactor(in.Winner, in.Map)
	return int(math.Trunc(v))
}

func (c *Calculator) base(in Input) int {
	w := c.tables.Weights
	switch in.Role {
	case domain.RoleHumanDefender:
		h := w.Human
		base := 0
		if in.Winner == domain.SideDefenders && in.Survivor {
			base += h.WinSurvivor
		} else if in.Survivor {
			base += h.SurviveOnLoss
		}
		base += in.Kills * h.Kill
		base += in.Assists * h.Assist
		base += min(floorDiv(in.SurvivalSeconds, h.SurvivalTimeStep), h.SurvivalTimeCap)
		if in.Winner == domain.SideInfected {
			base += h.TeamLossPenalty
		}
		return base

	case domain.RoleFirstInfected:
		f := w.FirstInfected
		base := f.TeamLossPenalty
		if in.Winner == domain.SideInfected {
			base = f.TeamWinBonus
		}
		return base + in.Kills*f.Kill

	case domain.RoleOtherInfected:
		i := w.Infected
		base := i.BaseLoss
		base += in.Kills * i.Kill
		base += floorDiv(min(in.Damage, i.DamageCap), i.DamageStep)
		return base
	}
	return 0
}

// scenarioFactor rewards the side that won despite a setup favoring the other one.
func (c *Calculator) scenarioFactor(winner domain.Side, scenarios []string) float64 {
	mean, ok := c.tables.Scenarios.Mean(scenarios)
	if !ok {
		return 1
	}
	div := c.tables.Weights.Modifiers.ScenarioDivisor
	switch {
	case mean > 0 && winner == domain.SideInfected:
		return 1 + mean/div
	case mean < 0 && winner == domain.SideDefenders:
		return 1 + math.Abs(mean)/div
	}
	return 1
}

// Small maps favor the infected, large maps favor the defenders.
func (c *Calculator) mapFactor(winner domain.Side, mapName string) float64 {
	if mapName == "" {
		return 1
	}
	size, ok := c.tables.Maps.Size(mapName)
	if !ok {
		return 1
	}
	m := c.tables.Weights.Modifiers
	switch size {
	case MapSmall:
		if winner == domain.SideDefenders {
			return m.MapFavored
		}
		return m.MapUnfavored
	case MapLarge:
		if winner == domain.SideInfected {
			return m.MapFavored
		}
		return m.MapUnfavored
	}
	return 1
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
