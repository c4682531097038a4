package notify

import (
	"context"

	"infected-ranked/internal/domain"

	"github.com/rs/zerolog"
)

type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyRankChanges(_ context.Context, changes []domain.RankChange) error {
	for _, c := range changes {
		n.logger.Info().
			Int64("match_id", c.MatchID).
			Str("identity", c.Identity).
			Str("old_rank", c.OldRank).
			Str("new_rank", c.NewRank).
			Int("mmr", c.MMR).
			Bool("promoted", c.Promoted).
			Msg("rank changed")
	}
	return nil
}
