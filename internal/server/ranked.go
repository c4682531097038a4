package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"infected-ranked/internal/domain"
	"infected-ranked/internal/ranking"
	"infected-ranked/internal/service"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
	"google.golang.org/protobuf/types/known/emptypb"
)

const RankedServicePath = "/ranked.v1.RankedService/"

const (
	RegisterProcedure       = RankedServicePath + "Register"
	UnlinkProcedure         = RankedServicePath + "Unlink"
	SetRankedProcedure      = RankedServicePath + "SetRanked"
	GetPlayerProcedure      = RankedServicePath + "GetPlayer"
	GetProfileProcedure     = RankedServicePath + "GetProfile"
	GetHistoryProcedure     = RankedServicePath + "GetHistory"
	GetLeaderboardProcedure = RankedServicePath + "GetLeaderboard"
	GetMatchProcedure       = RankedServicePath + "GetMatch"
	FinalizeMatchProcedure  = RankedServicePath + "FinalizeMatch"
	ResetSeasonProcedure    = RankedServicePath + "ResetSeason"
	ListCatalogProcedure    = RankedServicePath + "ListCatalog"
)

type RankedServer struct {
	playerSvc      *service.PlayerService
	settlementSvc  *service.SettlementService
	seasonSvc      *service.SeasonService
	leaderboardSvc *service.LeaderboardService
	matchSvc       *service.MatchService
	catalogSvc     *service.CatalogService
	calc           *ranking.Calculator
	logger         zerolog.Logger
}

func NewRankedServer(
	playerSvc *service.PlayerService,
	settlementSvc *service.SettlementService,
	seasonSvc *service.SeasonService,
	leaderboardSvc *service.LeaderboardService,
	matchSvc *service.MatchService,
	catalogSvc *service.CatalogService,
	calc *ranking.Calculator,
	logger zerolog.Logger,
) *RankedServer {
	return &RankedServer{
		playerSvc:      playerSvc,
		settlementSvc:  settlementSvc,
		seasonSvc:      seasonSvc,
		leaderboardSvc: leaderboardSvc,
		matchSvc:       matchSvc,
		catalogSvc:     catalogSvc,
		calc:           calc,
		logger:         logger,
	}
}

// Handler mounts every procedure and returns the path prefix to serve it under.
func (s *RankedServer) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{
		connect.WithCodec(jsonCodec{name: "json"}),
		connect.WithCodec(jsonCodec{name: "json; charset=utf-8"}),
	}, opts...)

	mux := http.NewServeMux()
	mux.Handle(RegisterProcedure, connect.NewUnaryHandler(RegisterProcedure, s.Register, opts...))
	mux.Handle(UnlinkProcedure, connect.NewUnaryHandler(UnlinkProcedure, s.Unlink, opts...))
	mux.Handle(SetRankedProcedure, connect.NewUnaryHandler(SetRankedProcedure, s.SetRanked, opts...))
	mux.Handle(GetPlayerProcedure, connect.NewUnaryHandler(GetPlayerProcedure, s.GetPlayer, opts...))
	mux.Handle(GetProfileProcedure, connect.NewUnaryHandler(GetProfileProcedure, s.GetProfile, opts...))
	mux.Handle(GetHistoryProcedure, connect.NewUnaryHandler(GetHistoryProcedure, s.GetHistory, opts...))
	mux.Handle(GetLeaderboardProcedure, connect.NewUnaryHandler(GetLeaderboardProcedure, s.GetLeaderboard, opts...))
	mux.Handle(GetMatchProcedure, connect.NewUnaryHandler(GetMatchProcedure, s.GetMatch, opts...))
	mux.Handle(FinalizeMatchProcedure, connect.NewUnaryHandler(FinalizeMatchProcedure, s.FinalizeMatch, opts...))
	mux.Handle(ResetSeasonProcedure, connect.NewUnaryHandler(ResetSeasonProcedure, s.ResetSeason, opts...))
	mux.Handle(ListCatalogProcedure, connect.NewUnaryHandler(ListCatalogProcedure, s.ListCatalog, opts...))
	return RankedServicePath, mux
}

func (s *RankedServer) Register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error) {
	player, created, err := s.playerSvc.Register(ctx, req.Msg.Identity, req.Msg.Name)
	if err != nil {
		return nil, toConnectError(ctx, RegisterProcedure, err)
	}
	return connect.NewResponse(&RegisterResponse{
		Player:  toPlayer(player, s.calc.RankOf(player.MMR)),
		Created: created,
	}), nil
}

func (s *RankedServer) Unlink(ctx context.Context, req *connect.Request[IdentityRequest]) (*connect.Response[emptypb.Empty], error) {
	if err := s.playerSvc.Unlink(ctx, req.Msg.Identity); err != nil {
		return nil, toConnectError(ctx, UnlinkProcedure, err)
	}
	return connect.NewResponse(&emptypb.Empty{}), nil
}

func (s *RankedServer) SetRanked(ctx context.Context, req *connect.Request[SetRankedRequest]) (*connect.Response[PlayerResponse], error) {
	player, err := s.playerSvc.SetRanked(ctx, req.Msg.Identity, req.Msg.Ranked)
	if err != nil {
		return nil, toConnectError(ctx, SetRankedProcedure, err)
	}
	return connect.NewResponse(&PlayerResponse{Player: toPlayer(player, s.calc.RankOf(player.MMR))}), nil
}

func (s *RankedServer) GetPlayer(ctx context.Context, req *connect.Request[IdentityRequest]) (*connect.Response[PlayerResponse], error) {
	player, err := s.playerSvc.Get(ctx, req.Msg.Identity)
	if err != nil {
		return nil, toConnectError(ctx, GetPlayerProcedure, err)
	}
	return connect.NewResponse(&PlayerResponse{Player: toPlayer(player, s.calc.RankOf(player.MMR))}), nil
}

func (s *RankedServer) GetProfile(ctx context.Context, req *connect.Request[IdentityRequest]) (*connect.Response[ProfileResponse], error) {
	prof, err := s.playerSvc.Profile(ctx, req.Msg.Identity)
	if err != nil {
		return nil, toConnectError(ctx, GetProfileProcedure, err)
	}
	return connect.NewResponse(&ProfileResponse{
		Player:       toPlayer(&prof.Player, prof.Rank),
		Wins:         prof.Wins,
		Games:        prof.Games,
		WinRate:      prof.WinRate,
		Progress:     prof.Progress,
		SeasonLeader: prof.SeasonLeader,
		Recent:       toHistory(prof.Recent),
	}), nil
}

func (s *RankedServer) GetHistory(ctx context.Context, req *connect.Request[HistoryRequest]) (*connect.Response[HistoryResponse], error) {
	entries, err := s.matchSvc.History(ctx, req.Msg.Identity, req.Msg.Limit)
	if err != nil {
		return nil, toConnectError(ctx, GetHistoryProcedure, err)
	}
	return connect.NewResponse(&HistoryResponse{Matches: toHistory(entries)}), nil
}

func (s *RankedServer) GetLeaderboard(ctx context.Context, req *connect.Request[LeaderboardRequest]) (*connect.Response[LeaderboardResponse], error) {
	lb, err := s.leaderboardSvc.Top(ctx, req.Msg.Limit)
	if err != nil {
		return nil, toConnectError(ctx, GetLeaderboardProcedure, err)
	}
	standings := make([]Standing, len(lb.Standings))
	for i, st := range lb.Standings {
		standings[i] = Standing{
			Position: st.Position,
			Identity: st.Identity,
			Name:     st.Name,
			MMR:      st.MMR,
			Rank:     st.Rank,
		}
	}
	return connect.NewResponse(&LeaderboardResponse{Season: lb.Season, Standings: standings}), nil
}

func (s *RankedServer) GetMatch(ctx context.Context, req *connect.Request[MatchRequest]) (*connect.Response[MatchResponse], error) {
	detail, err := s.matchSvc.GetMatch(ctx, req.Msg.MatchID)
	if err != nil {
		return nil, toConnectError(ctx, GetMatchProcedure, err)
	}
	return connect.NewResponse(toMatchResponse(detail)), nil
}

func (s *RankedServer) FinalizeMatch(ctx context.Context, req *connect.Request[FinalizeMatchRequest]) (*connect.Response[FinalizeMatchResponse], error) {
	roles := make(map[string]domain.Role, len(req.Msg.Roles))
	for name, raw := range req.Msg.Roles {
		role, err := domain.ParseRole(raw)
		if err != nil {
			return nil, toConnectError(ctx, FinalizeMatchProcedure, fmt.Errorf("participant %q: %w", name, err))
		}
		roles[name] = role
	}

	result, err := s.settlementSvc.Finalize(ctx, service.FinalizeRequest{
		Participants: req.Msg.Participants,
		Roles:        roles,
		Kills:        req.Msg.Kills,
		Damage:       req.Msg.Damage,
		Scenarios:    req.Msg.Scenarios,
		Map:          strings.TrimSpace(req.Msg.Map),
	})
	if err != nil {
		return nil, toConnectError(ctx, FinalizeMatchProcedure, err)
	}
	return connect.NewResponse(toFinalizeResponse(result)), nil
}

func (s *RankedServer) ResetSeason(ctx context.Context, _ *connect.Request[emptypb.Empty]) (*connect.Response[ResetSeasonResponse], error) {
	season, err := s.seasonSvc.Reset(ctx)
	if err != nil {
		return nil, toConnectError(ctx, ResetSeasonProcedure, err)
	}
	return connect.NewResponse(&ResetSeasonResponse{Season: season}), nil
}

func (s *RankedServer) ListCatalog(_ context.Context, _ *connect.Request[emptypb.Empty]) (*connect.Response[CatalogResponse], error) {
	return connect.NewResponse(toCatalogResponse(s.catalogSvc.Catalog())), nil
}
