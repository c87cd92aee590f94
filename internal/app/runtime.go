// Package app assembles the adapters selected by configuration behind the ports.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"air-demand-service/internal/adapters/airports"
	"air-demand-service/internal/adapters/cache"
	"air-demand-service/internal/adapters/geonames"
	"air-demand-service/internal/adapters/indicators"
	"air-demand-service/internal/adapters/repositories"
	"air-demand-service/internal/adapters/worldbank"
	"air-demand-service/internal/config"
	"air-demand-service/internal/domain"
	"air-demand-service/internal/platform/db"
	"air-demand-service/internal/platform/logging"
	"air-demand-service/internal/ports"
	"air-demand-service/internal/services"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Runtime holds the wired dependencies of a process. DB, Redis,
// IndicatorCache, Fleet and RouteDemands are nil when their backing store is
// not configured.
type Runtime struct {
	Config         *config.Config
	DB             *sql.DB
	Redis          *redis.Client
	IndicatorCache *cache.RedisIndicatorCache
	WorldBank    *worldbank.Client
	Airports     ports.AirportLister
	Indicators   ports.IndicatorProvider
	Fleet        ports.FleetRepository
	RouteDemands ports.RouteDemandRepository
	Estimator    *services.Estimator
}

// Open connects the configured stores and builds the estimator.
func Open(ctx context.Context, cfg *config.Config) (_ *Runtime, err error) {
	rt := &Runtime{Config: cfg}
	defer func() {
		if err != nil {
			rt.Close()
		}
	}()

	log := logging.Named("app")

	if cfg.DatabaseURL != "" {
		rt.DB, err = db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		rt.Fleet = repositories.NewPostgresFleetRepository(rt.DB)
		rt.RouteDemands = repositories.NewPostgresRouteDemandRepository(rt.DB)
	}

	rt.Airports, err = openAirports(cfg, rt.DB)
	if err != nil {
		return nil, err
	}

	rt.WorldBank = worldbank.NewClient(worldbank.Options{
		BaseURL:  cfg.WorldBankConfig.BaseURL,
		Year:     cfg.WorldBankConfig.Year,
		Timeout:  cfg.WorldBankConfig.Timeout,
		RetryMax: cfg.WorldBankConfig.RetryMax,
	})

	router := indicators.NewRouter(rt.WorldBank)
	if cfg.GeoNamesConfig.Username != "" {
		gn, err := geonames.NewClient(geonames.Options{
			BaseURL:  cfg.GeoNamesConfig.BaseURL,
			Username: cfg.GeoNamesConfig.Username,
			Timeout:  cfg.WorldBankConfig.Timeout,
			RetryMax: cfg.WorldBankConfig.RetryMax,
		})
		if err != nil {
			return nil, fmt.Errorf("open runtime: %w", err)
		}
		router.Handle(domain.MetricPopulation, gn)
	} else {
		log.Warn("GEONAMES_USERNAME is not set; city populations are unavailable")
	}
	rt.Indicators = router

	if cfg.RedisConfig.Addr != "" {
		rt.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisConfig.Addr,
			Password: cfg.RedisConfig.Password,
			DB:       cfg.RedisConfig.DB,
		})
		if err := rt.Redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("open runtime: ping redis: %w", err)
		}
		prefix := fmt.Sprintf("%s:%d", cfg.RedisConfig.Prefix, cfg.WorldBankConfig.Year)
		rt.IndicatorCache = cache.NewRedisIndicatorCache(rt.Redis, rt.Indicators, prefix, cfg.RedisConfig.TTL)
		rt.Indicators = rt.IndicatorCache
	}

	rt.Estimator = services.NewEstimator(rt.Airports, rt.Indicators,
		services.WithConcurrency(cfg.BatchConfig.Concurrency),
	)

	log.Info("runtime ready",
		zap.String("airports", cfg.AirportConfig.Source),
		zap.Bool("postgres", rt.DB != nil),
		zap.Bool("redis", rt.Redis != nil),
	)
	return rt, nil
}

func openAirports(cfg *config.Config, sqlDB *sql.DB) (ports.AirportLister, error) {
	switch cfg.AirportConfig.Source {
	case "postgres":
		if sqlDB == nil {
			return nil, errors.New("open runtime: AIRPORT_SOURCE=postgres requires DATABASE_URL")
		}
		return repositories.NewPostgresAirportRepository(sqlDB), nil
	default:
		store, err := airports.LoadFiles(cfg.AirportConfig.AirportDBPath, cfg.AirportConfig.DestinationsPath)
		if err != nil {
			return nil, fmt.Errorf("open runtime: %w", err)
		}
		return store, nil
	}
}

// RequireDB returns the database or an error naming the operation that needs it.
func (rt *Runtime) RequireDB(op string) (*sql.DB, error) {
	if rt.DB == nil {
		return nil, fmt.Errorf("%s: DATABASE_URL is required", op)
	}
	return rt.DB, nil
}

func (rt *Runtime) Close() {
	if rt.Redis != nil {
		_ = rt.Redis.Close()
	}
	if rt.DB != nil {
		_ = rt.DB.Close()
	}
}
