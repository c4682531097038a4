// Package ranking holds the pure rating core: rank classification, the scenario
// and map catalogs, and the MMR delta calculator. Nothing in this package touches
// storage or keeps mutable state; every value is built once from Tables.
package ranking

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultFiles embed.FS

type HumanWeights struct {
	WinSurvivor      int `yaml:"win_survivor"`
	SurviveOnLoss    int `yaml:"survive_on_loss"`
	Kill             int `yaml:"kill"`
	Assist           int `yaml:"assist"`
	SurvivalTimeStep int `yaml:"survival_time_step"`
	SurvivalTimeCap  int `yaml:"survival_time_cap"`
	TeamLossPenalty  int `yaml:"team_loss_penalty"`
}

type FirstInfectedWeights struct {
	TeamWinBonus    int `yaml:"team_win_bonus"`
	TeamLossPenalty int `yaml:"team_loss_penalty"`
	Kill            int `yaml:"kill"`
}

type InfectedWeights struct {
	BaseLoss   int `yaml:"base_loss"`
	Kill       int `yaml:"kill"`
	DamageStep int `yaml:"damage_step"`
	DamageCap  int `yaml:"damage_cap"`
}

type Modifiers struct {
	ScenarioDivisor float64 `yaml:"scenario_divisor"`
	MapFavored      float64 `yaml:"map_favored"`
	MapUnfavored    float64 `yaml:"map_unfavored"`
}

type Weights struct {
	Human         HumanWeights         `yaml:"human"`
	FirstInfected FirstInfectedWeights `yaml:"first_infected"`
	Infected      InfectedWeights      `yaml:"infected"`
	Modifiers     Modifiers            `yaml:"modifiers"`
}

// Tables is the full static configuration of the rating core.
type Tables struct {
	Ranks     RankTable
	Weights   Weights
	Scenarios ScenarioCatalog
	Maps      MapCatalog
}

type rawRank struct {
	Min      *int   `yaml:"min"`
	Label    string `yaml:"label"`
	CatchAll bool   `yaml:"catch_all"`
}

type rawTables struct {
	Ranks     []rawRank           `yaml:"ranks"`
	Weights   *Weights            `yaml:"weights"`
	Scenarios []Scenario          `yaml:"scenarios"`
	Maps      map[string][]string `yaml:"maps"`
}

// Default returns the embedded tables.
func Default() (*Tables, error) {
	raw, err := loadEmbedded()
	if err != nil {
		return nil, err
	}
	return raw.build()
}

// Load returns the embedded tables with the sections of overridePath applied on top.
// An empty path yields the defaults.
func Load(overridePath string) (*Tables, error) {
	raw, err := loadEmbedded()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(overridePath) != "" {
		b, err := os.ReadFile(overridePath)
		if err != nil {
			return nil, fmt.Errorf("read tables override: %w", err)
		}
		over, err := decode(b)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", overridePath, err)
		}
		raw.merge(over)
	}
	return raw.build()
}

// Parse builds tables from a complete YAML document, without defaults.
func Parse(b []byte) (*Tables, error) {
	raw, err := decode(b)
	if err != nil {
		return nil, err
	}
	return raw.build()
}

func loadEmbedded() (*rawTables, error) {
	b, err := fs.ReadFile(defaultFiles, "tables.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded tables: %w", err)
	}
	return decode(b)
}

func decode(b []byte) (*rawTables, error) {
	var raw rawTables
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	return &raw, nil
}

func (r *rawTables) merge(over *rawTables) {
	if over.Ranks != nil {
		r.Ranks = over.Ranks
	}
	if over.Weights != nil {
		r.Weights = over.Weights
	}
	if over.Scenarios != nil {
		r.Scenarios = over.Scenarios
	}
	if over.Maps != nil {
		r.Maps = over.Maps
	}
}

func (r *rawTables) build() (*Tables, error) {
	ranks, err := newRankTable(r.Ranks)
	if err != nil {
		return nil, err
	}
	if r.Weights == nil {
		return nil, errors.New("weights section is required")
	}
	if err := r.Weights.validate(); err != nil {
		return nil, err
	}
	scenarios, err := newScenarioCatalog(r.Scenarios)
	if err != nil {
		return nil, err
	}
	maps, err := newMapCatalog(r.Maps)
	if err != nil {
		return nil, err
	}
	return &Tables{
		Ranks:     ranks,
		Weights:   *r.Weights,
		Scenarios: scenarios,
		Maps:      maps,
	}, nil
}

func (w Weights) validate() error {
	if w.Human.SurvivalTimeStep <= 0 {
		return errors.New("weights.human.survival_time_step must be positive")
	}
	if w.Infected.DamageStep <= 0 {
		return errors.New("weights.infected.damage_step must be positive")
	}
	if w.Modifiers.ScenarioDivisor <= 0 || math.IsNaN(w.Modifiers.ScenarioDivisor) {
		return errors.New("weights.modifiers.scenario_divisor must be positive")
	}
	if w.Modifiers.MapFavored <= 0 || w.Modifiers.MapUnfavored <= 0 {
		return errors.New("weights.modifiers map factors must be positive")
	}
	return nil
}
