package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"infected-ranked/internal/constants"
	"infected-ranked/internal/domain"
	"infected-ranked/internal/ranking"
	"infected-ranked/internal/repository"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// FinalizeRequest is the flat input of one settlement, keyed by display name.
type FinalizeRequest struct {
	Participants []string
	Roles        map[string]domain.Role // missing entries play as human defenders
	Kills        map[string]int
	Damage       map[string]int
	Scenarios    []string
	Map          string
}

type SkipReason string

const (
	SkipNone      SkipReason = ""
	SkipNotFound  SkipReason = "not_found"
	SkipChillMode SkipReason = "chill_mode"
	SkipDuplicate SkipReason = "duplicate"
)

type ParticipantResult struct {
	Name     string
	Identity string // empty when not found
	Role     domain.Role
	Survivor bool
	Kills    int
	Damage   int
	Delta    int
	OldMMR   int
	NewMMR   int
	OldRank  string
	NewRank  string
	Skipped  bool
	Reason   SkipReason
}

type SettlementResult struct {
	Match        domain.Match
	Participants []ParticipantResult
	RankChanges  []domain.RankChange
	Updated      int // participants whose rating was applied
}

type SettlementService struct {
	tx       *repository.Transactor
	calc     *ranking.Calculator
	cache    LeaderboardCache
	notifier RankChangeNotifier
	logger   zerolog.Logger
}

func NewSettlementService(tx *repository.Transactor, calc *ranking.Calculator, cache LeaderboardCache, notifier RankChangeNotifier, logger zerolog.Logger) *SettlementService {
	return &SettlementService{tx: tx, calc: calc, cache: cache, notifier: notifier, logger: logger}
}

// Winner is defenders when any reported role is the human defender role.
// Participants without a role entry play as defenders but do not decide the winner.
func Winner(req FinalizeRequest) domain.Side {
	for _, role := range req.Roles {
		if role == domain.RoleHumanDefender {
			return domain.SideDefenders
		}
	}
	return domain.SideInfected
}

func roleOf(req FinalizeRequest, name string) domain.Role {
	if r, ok := req.Roles[name]; ok {
		return r
	}
	return domain.RoleHumanDefender
}

// normalize trims participant names and the keys of the per-name maps so every
// lookup uses the same key. An exact key wins over one that only matches after trimming.
func normalize(req FinalizeRequest) FinalizeRequest {
	out := req
	out.Participants = make([]string, len(req.Participants))
	for i, name := range req.Participants {
		out.Participants[i] = strings.TrimSpace(name)
	}
	out.Roles = trimKeys(req.Roles)
	out.Kills = trimKeys(req.Kills)
	out.Damage = trimKeys(req.Damage)
	return out
}

func trimKeys[V any](m map[string]V) map[string]V {
	if m == nil {
		return nil
	}
	out := make(map[string]V, len(m))
	for k, v := range m {
		key := strings.TrimSpace(k)
		if _, taken := out[key]; taken && k != key {
			continue
		}
		out[key] = v
	}
	return out
}

func clampDamage(role domain.Role, damage int) int {
	if role == domain.RoleHumanDefender {
		return 0
	}
	return max(constants.MinDamage, min(damage, constants.MaxDamage))
}

// Finalize settles one match in a single transaction. Unknown participants are
// skipped; the match row is written even when nobody resolves.
func (s *SettlementService) Finalize(ctx context.Context, req FinalizeRequest) (*SettlementResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	req = normalize(req)
	for name, role := range req.Roles {
		if !role.Valid() {
			return nil, fmt.Errorf("%w: %s for %q", domain.ErrInvalidRole, role, name)
		}
	}
	for _, name := range req.Participants {
		if req.Kills[name] < 0 {
			return nil, fmt.Errorf("%w: negative kills for %q", domain.ErrInvalidInput, name)
		}
	}

	winner := Winner(req)
	s.logger.Info().
		Int("participants", len(req.Participants)).
		Str("winner", string(winner)).
		Str("map", req.Map).
		Strs("scenarios", req.Scenarios).
		Msg("finalizing match")

	var result *SettlementResult
	err := s.tx.RunInTx(ctx, func(st repository.Stores) error {
		result = &SettlementResult{}

		match, err := st.Matches.Create(ctx, time.Now(), winner)
		if err != nil {
			return err
		}
		result.Match = *match

		seen := make(map[string]bool, len(req.Participants))
		for i, name := range req.Participants {
			role := roleOf(req, name)
			pr := ParticipantResult{
				Name:     name,
				Role:     role,
				Survivor: role == domain.RoleHumanDefender,
				Kills:    req.Kills[name],
				Damage:   clampDamage(role, req.Damage[name]),
			}

			player, err := st.Players.GetByName(ctx, name)
			if errors.Is(err, domain.ErrPlayerNotFound) {
				pr.Skipped, pr.Reason = true, SkipNotFound
				result.Participants = append(result.Participants, pr)
				s.logger.Warn().Int64("match_id", match.MatchID).Str("name", name).Msg("participant not registered, skipping")
				continue
			}
			if err != nil {
				return err
			}
			pr.Identity = player.Identity

			if seen[player.Identity] {
				pr.Skipped, pr.Reason = true, SkipDuplicate
				result.Participants = append(result.Participants, pr)
				continue
			}
			seen[player.Identity] = true

			part := &domain.MatchParticipation{
				MatchID:  match.MatchID,
				Position: i,
				Identity: player.Identity,
				Role:     role,
				Kills:    pr.Kills,
				Damage:   pr.Damage,
				Survivor: pr.Survivor,
			}

			if !player.Ranked {
				pr.OldMMR, pr.NewMMR = player.MMR, player.MMR
				pr.OldRank = s.calc.RankOf(player.MMR)
				pr.NewRank = pr.OldRank
				pr.Skipped, pr.Reason = true, SkipChillMode
				if err := st.Participations.Append(ctx, part); err != nil {
					return err
				}
				result.Participants = append(result.Participants, pr)
				continue
			}

			pr.Delta = s.calc.Delta(ranking.Input{
				Role:      role,
				Winner:    winner,
				Survivor:  pr.Survivor,
				Kills:     pr.Kills,
				Damage:    pr.Damage,
				Scenarios: req.Scenarios,
				Map:       req.Map,
			})

			newMMR, err := st.Players.ApplyDelta(ctx, player.Identity, counterDelta(role, winner, pr))
			if err != nil {
				return err
			}
			// derived from the stored value so concurrent settlements report the mmr they built on
			pr.NewMMR = newMMR
			pr.OldMMR = newMMR - pr.Delta
			pr.OldRank = s.calc.RankOf(pr.OldMMR)
			pr.NewRank = s.calc.RankOf(pr.NewMMR)

			part.MMRChange = pr.Delta
			if err := st.Participations.Append(ctx, part); err != nil {
				return err
			}

			if pr.OldRank != pr.NewRank {
				id, err := gonanoid.New()
				if err != nil {
					return fmt.Errorf("failed to generate nanoid: %w", err)
				}
				result.RankChanges = append(result.RankChanges, domain.RankChange{
					ID:       id,
					MatchID:  match.MatchID,
					Identity: player.Identity,
					Name:     player.Name,
					OldRank:  pr.OldRank,
					NewRank:  pr.NewRank,
					MMR:      pr.NewMMR,
					Promoted: pr.Delta > 0,
					At:       match.PlayedAt,
				})
			}

			result.Updated++
			result.Participants = append(result.Participants, pr)
		}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to finalize match")
		return nil, fmt.Errorf("failed to finalize match: %w", err)
	}

	s.logger.Info().
		Int64("match_id", result.Match.MatchID).
		Int("updated", result.Updated).
		Int("rank_changes", len(result.RankChanges)).
		Msg("match finalized")

	s.cache.Invalidate(ctx)
	if len(result.RankChanges) > 0 {
		if err := s.notifier.NotifyRankChanges(ctx, result.RankChanges); err != nil {
			s.logger.Warn().Err(err).Int64("match_id", result.Match.MatchID).Msg("failed to deliver rank changes")
		}
	}

	return result, nil
}

// counterDelta derives the cumulative counter updates of one ranked participant.
func counterDelta(role domain.Role, winner domain.Side, pr ParticipantResult) domain.PlayerDelta {
	d := domain.PlayerDelta{MMR: pr.Delta, Damage: pr.Damage}

	switch role {
	case domain.RoleHumanDefender:
		d.KillsHuman = pr.Kills
		if winner == domain.SideDefenders && pr.Survivor {
			d.WinsHuman = 1
		}
		if winner == domain.SideInfected {
			d.Losses = 1
		}
	case domain.RoleFirstInfected, domain.RoleOtherInfected:
		d.KillsInfected = pr.Kills
		if role == domain.RoleFirstInfected && winner == domain.SideInfected {
			d.WinsFirstInfected = 1
		}
		if winner == domain.SideDefenders {
			d.Losses = 1
		}
	}
	return d
}
