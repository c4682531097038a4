package service

import (
	"context"

	"infected-ranked/internal/domain"
)

// RankChangeNotifier receives the rank transitions of a settled match.
type RankChangeNotifier interface {
	NotifyRankChanges(ctx context.Context, changes []domain.RankChange) error
}

// LeaderboardCache stores computed standings per season. Implementations must
// treat failures as misses. Get returns a version that Set must be given back;
// an Invalidate between the two makes that Set invisible.
type LeaderboardCache interface {
	Get(ctx context.Context, season, limit int) ([]domain.Standing, int64, bool)
	Set(ctx context.Context, version int64, season, limit int, standings []domain.Standing)
	Invalidate(ctx context.Context)
}
