package ranking

import (
	"fmt"
	"strings"

	"infected-ranked/internal/domain"
)

type Scenario struct {
	Name  string `yaml:"name"`
	Score int    `yaml:"score"`
}

// Favors reports which side the scenario setup advantages; empty when neutral.
func (s Scenario) Favors() domain.Side {
	switch {
	case s.Score > 0:
		return domain.SideDefenders
	case s.Score < 0:
		return domain.SideInfected
	}
	return ""
}

type ScenarioCatalog struct {
	ordered []Scenario
	scores  map[string]int
}

func newScenarioCatalog(list []Scenario) (ScenarioCatalog, error) {
	c := ScenarioCatalog{scores: make(map[string]int, len(list))}
	for _, s := range list {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return ScenarioCatalog{}, fmt.Errorf("scenario with empty name (score %d)", s.Score)
		}
		if _, dup := c.scores[name]; dup {
			return ScenarioCatalog{}, fmt.Errorf("duplicate scenario %q", name)
		}
		c.scores[name] = s.Score
		c.ordered = append(c.ordered, Scenario{Name: name, Score: s.Score})
	}
	return c, nil
}

// Score is 0 for unknown scenarios.
func (c ScenarioCatalog) Score(name string) int {
	return c.scores[strings.TrimSpace(name)]
}

func (c ScenarioCatalog) Known(name string) bool {
	_, ok := c.scores[strings.TrimSpace(name)]
	return ok
}

// Mean is the arithmetic mean of the selected scores, unknown names counting as 0.
// ok is false when nothing was selected.
func (c ScenarioCatalog) Mean(names []string) (mean float64, ok bool) {
	if len(names) == 0 {
		return 0, false
	}
	sum := 0
	for _, n := range names {
		sum += c.Score(n)
	}
	return float64(sum) / float64(len(names)), true
}

func (c ScenarioCatalog) All() []Scenario {
	out := make([]Scenario, len(c.ordered))
	copy(out, c.ordered)
	return out
}

type MapSize string

const (
	MapSmall MapSize = "small"
	MapMid   MapSize = "mid"
	MapLarge MapSize = "large"
)

var MapSizes = []MapSize{MapSmall, MapMid, MapLarge}

type MapCatalog struct {
	sizes  map[string]MapSize
	bySize map[MapSize][]string
}

func newMapCatalog(raw map[string][]string) (MapCatalog, error) {
	c := MapCatalog{
		sizes:  make(map[string]MapSize),
		bySize: make(map[MapSize][]string),
	}
	for size, names := range raw {
		ms := MapSize(strings.ToLower(strings.TrimSpace(size)))
		if ms != MapSmall && ms != MapMid && ms != MapLarge {
			return MapCatalog{}, fmt.Errorf("unknown map size class %q", size)
		}
		for _, n := range names {
			name := strings.TrimSpace(n)
			if name == "" {
				continue
			}
			if prev, dup := c.sizes[name]; dup {
				return MapCatalog{}, fmt.Errorf("map %q listed as both %s and %s", name, prev, ms)
			}
			c.sizes[name] = ms
			c.bySize[ms] = append(c.bySize[ms], name)
		}
	}
	return c, nil
}

// Size reports the size class of a known map.
func (c MapCatalog) Size(name string) (MapSize, bool) {
	s, ok := c.sizes[strings.TrimSpace(name)]
	return s, ok
}

func (c MapCatalog) BySize(size MapSize) []string {
	names := c.bySize[size]
	out := make([]string, len(names))
	copy(out, names)
	return out
}
