package api

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"infinite-experiment/flightsurety/internal/common"
	"infinite-experiment/flightsurety/internal/config"
	"infinite-experiment/flightsurety/internal/constants"
	"infinite-experiment/flightsurety/internal/db/repositories"
	"infinite-experiment/flightsurety/internal/logging"
	"infinite-experiment/flightsurety/internal/metrics"
	"infinite-experiment/flightsurety/internal/services"
)

type Repositories struct {
	Ledger  *repositories.LedgerRepository
	Queries *repositories.PolicyQueryRepo
}

type Services struct {
	Surety *services.SuretyService
	Tokens *common.CallerTokenService
	Cache  common.CacheInterface
	// Queue is nil when no Redis is configured
	Queue *common.RedisQueueService
}

type Dependencies struct {
	Repo     *Repositories
	Services *Services
	Metrics  *metrics.MetricsRegistry
	QueryDB  *sqlx.DB
}

// InitDependencies restores the ledger and wires the service graph.
// redisClient may be nil.
func InitDependencies(ctx context.Context, cfg *config.Config, orm *gorm.DB, queryDB *sqlx.DB, redisClient *redis.Client, metricsReg *metrics.MetricsRegistry) (*Dependencies, error) {
	repos := &Repositories{
		Ledger:  repositories.NewLedgerRepository(orm),
		Queries: repositories.NewPolicyQueryRepo(queryDB),
	}
	if err := repos.Ledger.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to migrate ledger tables: %w", err)
	}

	store, err := services.OpenLedger(ctx, cfg.Owner, cfg.App, cfg.Params, repos.Ledger)
	if err != nil {
		return nil, err
	}

	var cache common.CacheInterface
	if cfg.CacheBackend == config.CacheBackendRedis && redisClient != nil {
		cache = common.NewRedisCacheService(redisClient)
		logging.Info("Using Redis cache backend")
	} else {
		cache = common.NewCacheService(300, 600)
		logging.Info("Using in-memory cache backend")
	}

	// publisher stays a nil interface without Redis
	var (
		queue     *common.RedisQueueService
		publisher services.OracleRequestPublisher
	)
	if redisClient != nil {
		queue = common.NewRedisQueueService(redisClient, constants.OracleRequestStream)
		publisher = queue
	} else {
		logging.Warn("No Redis configured, oracle requests will not be published")
	}

	svcs := &Services{
		Surety: services.NewSuretyService(store, cfg.App, repos.Ledger, publisher, cache, metricsReg),
		Tokens: common.NewCallerTokenService([]byte(cfg.TokenSecret), redisClient),
		Cache:  cache,
		Queue:  queue,
	}

	return &Dependencies{
		Repo:     repos,
		Services: svcs,
		Metrics:  metricsReg,
		QueryDB:  queryDB,
	}, nil
}
