package service

import (
	"infected-ranked/internal/ranking"
)

type Catalog struct {
	Ranks     []ranking.Threshold
	Scenarios []ranking.Scenario
	Maps      map[ranking.MapSize][]string
}

type CatalogService struct {
	tables *ranking.Tables
}

func NewCatalogService(tables *ranking.Tables) *CatalogService {
	return &CatalogService{tables: tables}
}

// Catalog lists what callers can offer in their pickers.
func (s *CatalogService) Catalog() Catalog {
	maps := make(map[ranking.MapSize][]string, len(ranking.MapSizes))
	for _, size := range ranking.MapSizes {
		maps[size] = s.tables.Maps.BySize(size)
	}
	return Catalog{
		Ranks:     s.tables.Ranks.Thresholds(),
		Scenarios: s.tables.Scenarios.All(),
		Maps:      maps,
	}
}
