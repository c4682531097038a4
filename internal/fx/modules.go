package fx

import (
	"database/sql"

	"infected-ranked/internal/cache"
	"infected-ranked/internal/config"
	"infected-ranked/internal/database"
	"infected-ranked/internal/db"
	"infected-ranked/internal/logger"
	"infected-ranked/internal/notify"
	"infected-ranked/internal/ranking"
	"infected-ranked/internal/repository"
	"infected-ranked/internal/server"
	"infected-ranked/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideQueries(sqlDB *sql.DB, cfg *config.Config) *db.Queries {
	return db.New(sqlDB, cfg.DBDriver)
}

func ProvideTables(cfg *config.Config, logger zerolog.Logger) (*ranking.Tables, error) {
	tables, err := ranking.Load(cfg.TablesPath)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Int("ranks", len(tables.Ranks.Thresholds())).
		Int("scenarios", len(tables.Scenarios.All())).
		Bool("override", cfg.TablesPath != "").
		Msg("ranking tables loaded")
	return tables, nil
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(database.New),
	fx.Provide(ProvideQueries),
	// ranking core
	fx.Provide(ProvideTables),
	fx.Provide(ranking.NewCalculator),
	// repos
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewMatchRepository),
	fx.Provide(repository.NewParticipationRepository),
	fx.Provide(repository.NewTransactor),
	// redis
	fx.Provide(cache.NewRedisClient),
	fx.Provide(fx.Annotate(cache.NewLeaderboardCache, fx.As(new(service.LeaderboardCache)))),
	fx.Provide(fx.Annotate(notify.New, fx.As(new(service.RankChangeNotifier)))),
	// svc
	fx.Provide(service.NewPlayerService),
	fx.Provide(service.NewSettlementService),
	fx.Provide(service.NewSeasonService),
	fx.Provide(service.NewLeaderboardService),
	fx.Provide(service.NewMatchService),
	fx.Provide(service.NewCatalogService),
	// server
	fx.Provide(server.NewRankedServer),
)
