package service

import (
	"context"
	"fmt"
	"strings"

	"infected-ranked/internal/constants"
	"infected-ranked/internal/domain"
	"infected-ranked/internal/ranking"
	"infected-ranked/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Profile is everything a stats card shows for one player.
type Profile struct {
	Player       domain.Player
	Rank         string
	Wins         int
	Games        int
	WinRate      float64
	Progress     int  // percent through the current tier
	SeasonLeader bool // top rated player of their season
	Recent       []domain.MatchHistoryEntry
}

type PlayerService struct {
	tx      *repository.Transactor
	players *repository.PlayerRepository
	matches *repository.MatchRepository
	calc    *ranking.Calculator
	cache   LeaderboardCache
	logger  zerolog.Logger
}

func NewPlayerService(tx *repository.Transactor, players *repository.PlayerRepository, matches *repository.MatchRepository, calc *ranking.Calculator, cache LeaderboardCache, logger zerolog.Logger) *PlayerService {
	return &PlayerService{tx: tx, players: players, matches: matches, calc: calc, cache: cache, logger: logger}
}

// Register links identity to name in the current season. created is false when
// the identity was already registered; the stored player is returned either way.
func (s *PlayerService) Register(ctx context.Context, identity, name string) (player *domain.Player, created bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	identity, name = strings.TrimSpace(identity), strings.TrimSpace(name)
	if identity == "" || name == "" {
		return nil, false, fmt.Errorf("%w: identity and name are required", domain.ErrInvalidInput)
	}

	err = s.tx.RunInTx(ctx, func(st repository.Stores) error {
		season, err := st.Players.CurrentSeason(ctx)
		if err != nil {
			return err
		}
		created, err = st.Players.Create(ctx, identity, name, season)
		if err != nil {
			return err
		}
		player, err = st.Players.Get(ctx, identity)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		s.cache.Invalidate(ctx)
		s.logger.Info().Str("identity", identity).Str("name", name).Int("season", player.SeasonID).Msg("player registered")
	} else {
		s.logger.Debug().Str("identity", identity).Msg("player already registered")
	}
	return player, created, nil
}

func (s *PlayerService) Get(ctx context.Context, identity string) (*domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.players.Get(ctx, identity)
}

// Unlink removes the player for good. Their match rows stay behind.
func (s *PlayerService) Unlink(ctx context.Context, identity string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if err := s.players.Delete(ctx, identity); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	s.logger.Info().Str("identity", identity).Msg("player unlinked")
	return nil
}

// SetRanked toggles chill mode off (true) or on (false).
func (s *PlayerService) SetRanked(ctx context.Context, identity string, ranked bool) (*domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if err := s.players.SetRanked(ctx, identity, ranked); err != nil {
		return nil, err
	}
	s.logger.Info().Str("identity", identity).Bool("ranked", ranked).Msg("ranked mode changed")
	return s.players.Get(ctx, identity)
}

func (s *PlayerService) Profile(ctx context.Context, identity string) (*Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	player, err := s.players.Get(ctx, identity)
	if err != nil {
		return nil, err
	}

	var (
		recent []domain.MatchHistoryEntry
		leader bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		recent, err = s.matches.Recent(gctx, identity, constants.HistoryLimit)
		return err
	})
	g.Go(func() error {
		top, err := s.players.Top(gctx, player.SeasonID, 1)
		if err != nil {
			return err
		}
		leader = len(top) == 1 && top[0].Identity == identity
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("identity", identity).Msg("failed to build profile")
		return nil, err
	}

	ranks := s.calc.Tables().Ranks
	return &Profile{
		Player:       *player,
		Rank:         ranks.RankOf(player.MMR),
		Wins:         player.Wins(),
		Games:        player.Games(),
		WinRate:      player.WinRate(),
		Progress:     ranks.Progress(player.MMR),
		SeasonLeader: leader,
		Recent:       recent,
	}, nil
}
