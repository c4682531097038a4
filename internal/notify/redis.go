package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"infected-ranked/internal/constants"
	"infected-ranked/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisPublisher publishes each change as JSON on the rank change channel.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
	logger  zerolog.Logger
}

func NewRedisPublisher(rdb *redis.Client, logger zerolog.Logger) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: constants.RankChangeChannel, logger: logger}
}

func (p *RedisPublisher) NotifyRankChanges(ctx context.Context, changes []domain.RankChange) error {
	for _, c := range changes {
		raw, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to encode rank change: %w", err)
		}
		if err := p.rdb.Publish(ctx, p.channel, raw).Err(); err != nil {
			p.logger.Warn().Err(err).Str("channel", p.channel).Msg("failed to publish rank change")
			return fmt.Errorf("publish rank change %s: %w", c.ID, err)
		}
	}
	return nil
}
