package di

import (
	"context"
	"fmt"
	"time"

	"TrendGuard/internal/domain/models"
	"TrendGuard/internal/domain/repository"
	"TrendGuard/internal/handler/api"
	internalrepo "TrendGuard/internal/repository"
	icache "TrendGuard/internal/service/cache"
	"TrendGuard/internal/usecase"
	pkgch "TrendGuard/pkg/clickhouse"
	"TrendGuard/pkg/config"
	pkgkafka "TrendGuard/pkg/kafka"
	"TrendGuard/pkg/logger"
	"TrendGuard/pkg/metrics"
	"TrendGuard/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideOverrides converts the YAML override block into engine overrides.
func ProvideOverrides(cfg *config.Config) models.Overrides {
	if len(cfg.Engine.Overrides) == 0 {
		return nil
	}
	out := make(models.Overrides, len(cfg.Engine.Overrides))
	for regime, o := range cfg.Engine.Overrides {
		out[models.Regime(regime)] = models.ProfileOverrides{
			ChopThreshold:    o.ChopThreshold,
			VolumeMultiplier: o.VolumeMultiplier,
			SlowTrendPeriod:  o.SlowTrendPeriod,
			FastTrendPeriod:  o.FastTrendPeriod,
			RSICeiling:       o.RSICeiling,
			IgnoreWeakening:  o.IgnoreWeakening,
			RequireMA60Break: o.RequireMA60Break,
		}
	}
	return out
}

// ProvideClickHouseClient creates a ClickHouse client and initializes the
// daily bars schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, internalrepo.SchemaStatements()); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideBarStore creates the ClickHouse bar store repository.
func ProvideBarStore(chClient *pkgch.Client, l *logger.Logger) repository.BarStore {
	store := internalrepo.NewCHBarStore(chClient)
	store.SetLogger(l)
	return store
}

// ProvideAlertPublisher creates the Kafka alert publisher, or nil when Kafka
// is disabled; the scanner skips publishing in that case.
func ProvideAlertPublisher(cfg *config.Config, l *logger.Logger) (repository.AlertPublisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	publisher := internalrepo.NewKafkaAlertPublisher(producer, cfg.Kafka.Topic)
	publisher.SetLogger(l)
	return publisher, nil
}

// ProvideCache selects the response cache backend: Redis when enabled, an
// in-process TTL map otherwise.
func ProvideCache(cfg *config.Config) icache.BytesCache {
	if cfg.Redis.Enabled {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideSignalService creates the signals use case.
func ProvideSignalService(store repository.BarStore, m repository.Metrics, overrides models.Overrides, l *logger.Logger) *usecase.SignalService {
	return usecase.NewSignalService(store, m, overrides, l)
}

// ProvideBacktestService creates the backtest use case.
func ProvideBacktestService(signals *usecase.SignalService, store repository.BarStore, m repository.Metrics, l *logger.Logger) *usecase.BacktestService {
	return usecase.NewBacktestService(signals, store, m, l)
}

// ProvideScanner creates the multi-symbol scanner.
func ProvideScanner(
	store repository.BarStore,
	publisher repository.AlertPublisher,
	m repository.Metrics,
	overrides models.Overrides,
	l *logger.Logger,
	cfg *config.Config,
) *usecase.Scanner {
	return usecase.NewScanner(store, publisher, m, overrides, l,
		usecase.WithWorkers(cfg.Scan.Workers),
		usecase.WithLookback(cfg.Scan.LookbackDays),
	)
}

// ProvideHandler creates the Echo handler with caching and health probe.
func ProvideHandler(
	l *logger.Logger,
	signals *usecase.SignalService,
	backtest *usecase.BacktestService,
	scanner *usecase.Scanner,
	cache icache.BytesCache,
	chClient *pkgch.Client,
	cfg *config.Config,
) *api.SignalsEchoHandler {
	h := api.NewSignalsEchoHandler(l, signals, backtest, scanner, cache,
		cfg.Cache.SignalsTTL, cfg.Cache.BacktestTTL)
	h.SetHealthCheck(chClient.Health)
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	handler *api.SignalsEchoHandler,
	scanner *usecase.Scanner,
	chClient *pkgch.Client,
	publisher repository.AlertPublisher,
	cache icache.BytesCache,
) *server.App {
	return server.New(cfg, l, handler, scanner, chClient, publisher, cache)
}
