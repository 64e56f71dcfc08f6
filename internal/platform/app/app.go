package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/exchange_rates_service/internal/adapters/cache"
	"github.com/SscSPs/exchange_rates_service/internal/adapters/providers"
	"github.com/SscSPs/exchange_rates_service/internal/core/ports/caches"
	portssvc "github.com/SscSPs/exchange_rates_service/internal/core/ports/services"
	"github.com/SscSPs/exchange_rates_service/internal/core/services"
	"github.com/SscSPs/exchange_rates_service/internal/platform/config"
	"github.com/SscSPs/exchange_rates_service/internal/platform/metrics"
	"github.com/SscSPs/exchange_rates_service/internal/repositories/database/pgsql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// Components is the wired service graph shared by the server and the backfill CLI.
type Components struct {
	Services *portssvc.ServiceContainer
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	// Redis is nil when REDIS_URL is unset.
	Redis *redis.Client
}

// Close releases the connections Components owns. The pool belongs to the caller.
func (c *Components) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}

// Build wires repositories, providers (in order) and the fallback service over pool.
func Build(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, order []string, logger *slog.Logger) (*Components, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(cfg.MetricsNamespace, reg)

	comps := &Components{Registry: reg, Metrics: m}

	var responseCache caches.ResponseCache
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		comps.Redis = client
		responseCache = cache.NewRedisCache(client)
		logger.Info("Using Redis for the World Bank response cache")
	} else {
		responseCache = cache.NewLRUCache(cfg.WorldBank.CacheSize, cfg.WorldBank.CacheTTL)
	}

	repos := pgsql.NewRepositoryProvider(pool, pgsql.WithInverseRates(cfg.StoreInverseRates))

	chain, err := providers.BuildChain(cfg, order, providers.Dependencies{
		Repo:      repos.ExchangeRateRepo,
		Cache:     responseCache,
		Extractor: services.NewWorldBankRateExtractor(services.NewCurrencyMapper()),
		HTTP: providers.HTTPOptions{
			Timeout:    cfg.HTTPTimeout,
			MaxRetries: cfg.HTTPMaxRetries,
			Metrics:    m,
		},
	})
	if err != nil {
		comps.Close()
		return nil, fmt.Errorf("failed to build provider chain: %w", err)
	}

	comps.Services = services.NewServiceContainer(repos, chain, services.WithFallbackObserver(m))
	logger.Info("Exchange rate provider chain ready", slog.Any("order", order))
	return comps, nil
}
