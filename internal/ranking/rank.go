package ranking

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type Threshold struct {
	Min      int
	Label    string
	CatchAll bool // matches any MMR below the lowest finite threshold
}

// RankTable classifies MMR into a label. Thresholds are kept highest first with
// the catch-all last, so RankOf is total over int.
type RankTable struct {
	thresholds []Threshold
}

func NewRankTable(thresholds []Threshold) (RankTable, error) {
	var finite []Threshold
	var catchAll *Threshold
	seen := make(map[int]string)
	for i := range thresholds {
		t := thresholds[i]
		if strings.TrimSpace(t.Label) == "" {
			return RankTable{}, errors.New("rank label must not be empty")
		}
		if t.CatchAll {
			if catchAll != nil {
				return RankTable{}, fmt.Errorf("rank table has two catch-all entries: %q and %q", catchAll.Label, t.Label)
			}
			catchAll = &t
			continue
		}
		if prev, ok := seen[t.Min]; ok {
			return RankTable{}, fmt.Errorf("ranks %q and %q share threshold %d", prev, t.Label, t.Min)
		}
		seen[t.Min] = t.Label
		finite = append(finite, t)
	}
	if catchAll == nil {
		return RankTable{}, errors.New("rank table needs a catch-all entry")
	}
	sort.Slice(finite, func(i, j int) bool { return finite[i].Min > finite[j].Min })
	return RankTable{thresholds: append(finite, *catchAll)}, nil
}

func newRankTable(raw []rawRank) (RankTable, error) {
	thresholds := make([]Threshold, 0, len(raw))
	for _, r := range raw {
		t := Threshold{Label: r.Label, CatchAll: r.CatchAll}
		if !r.CatchAll {
			if r.Min == nil {
				return RankTable{}, fmt.Errorf("rank %q needs min or catch_all", r.Label)
			}
			t.Min = *r.Min
		}
		thresholds = append(thresholds, t)
	}
	return NewRankTable(thresholds)
}

// RankOf returns the label of the highest threshold not above mmr.
func (t RankTable) RankOf(mmr int) string {
	return t.thresholds[t.tier(mmr)].Label
}

func (t RankTable) tier(mmr int) int {
	last := len(t.thresholds) - 1
	for i, th := range t.thresholds[:last] {
		if mmr >= th.Min {
			return i
		}
	}
	return last
}

// Thresholds returns a copy, highest first.
func (t RankTable) Thresholds() []Threshold {
	out := make([]Threshold, len(t.thresholds))
	copy(out, t.thresholds)
	return out
}

// Top reports whether mmr sits in the highest tier.
func (t RankTable) Top(mmr int) bool {
	return t.tier(mmr) == 0
}

// Progress is the percentage (0..100) travelled through the current tier toward
// the next one. The top tier always reports 100; the catch-all tier is measured
// from 0 MMR.
func (t RankTable) Progress(mmr int) int {
	i := t.tier(mmr)
	if i == 0 {
		return 100
	}
	upper := t.thresholds[i-1].Min - 1
	lower := 0
	if !t.thresholds[i].CatchAll {
		lower = t.thresholds[i].Min
	}
	if upper <= lower {
		return 0
	}
	p := float64(mmr-lower) / float64(upper-lower)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 100
	}
	return int(p * 100)
}
