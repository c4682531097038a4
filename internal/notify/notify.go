// Package notify delivers rank changes to the outside world: the log, a chat
// webhook and a redis channel.
package notify

import (
	"context"
	"fmt"

	"infected-ranked/internal/config"
	"infected-ranked/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type Notifier interface {
	NotifyRankChanges(ctx context.Context, changes []domain.RankChange) error
}

// Fanout delivers to every sink concurrently. One failing sink does not stop
// the others; the first error is returned.
type Fanout struct {
	sinks []Notifier
}

func NewFanout(sinks ...Notifier) *Fanout {
	return &Fanout{sinks: sinks}
}

// New builds the configured sinks: the log always, the webhook when
// RANK_WEBHOOK_URL is set, redis when a client is available.
func New(cfg *config.Config, rdb *redis.Client, logger zerolog.Logger) *Fanout {
	sinks := []Notifier{NewLogNotifier(logger)}
	if cfg.RankWebhookURL != "" {
		sinks = append(sinks, NewWebhookNotifier(cfg.RankWebhookURL, logger))
	}
	if rdb != nil {
		sinks = append(sinks, NewRedisPublisher(rdb, logger))
	}
	logger.Info().Int("sinks", len(sinks)).Msg("rank change notifiers ready")
	return NewFanout(sinks...)
}

func (f *Fanout) NotifyRankChanges(ctx context.Context, changes []domain.RankChange) error {
	if len(changes) == 0 {
		return nil
	}
	var g errgroup.Group
	for _, s := range f.sinks {
		g.Go(func() error {
			return s.NotifyRankChanges(ctx, changes)
		})
	}
	return g.Wait()
}

// Message renders a change as a single chat line.
func Message(c domain.RankChange) string {
	verb := "demoted"
	if c.Promoted {
		verb = "promoted"
	}
	return fmt.Sprintf("%s %s: %s -> %s (%d MMR)", c.Name, verb, c.OldRank, c.NewRank, c.MMR)
}
