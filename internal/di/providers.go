package di

import (
	"context"
	"fmt"
	"time"

	drepo "BundleScope/internal/domain/repository"
	domsvc "BundleScope/internal/domain/service"
	"BundleScope/internal/handler/api"
	internalrepo "BundleScope/internal/repository"
	"BundleScope/internal/service/birdeye"
	icache "BundleScope/internal/service/cache"
	"BundleScope/internal/service/holderscan"
	"BundleScope/internal/services/bundle"
	"BundleScope/internal/services/risk"
	"BundleScope/internal/usecase"
	pkgcache "BundleScope/pkg/cache"
	pkgch "BundleScope/pkg/clickhouse"
	"BundleScope/pkg/config"
	xhttp "BundleScope/pkg/http"
	pkgkafka "BundleScope/pkg/kafka"
	applogger "BundleScope/pkg/logger"
	"BundleScope/pkg/metrics"
	"BundleScope/pkg/queue"
	"BundleScope/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() drepo.Metrics {
	return metrics.New()
}

// ProvideCache builds the report cache backend. Memory-only by default,
// layered over Redis when enabled.
func ProvideCache(cfg *config.Config) (pkgcache.Service, error) {
	memory := pkgcache.NewMemoryCache(
		pkgcache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize),
	)
	if !cfg.Cache.Redis.Enabled {
		return memory, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	remote, err := pkgcache.NewRedisCache(ctx,
		pkgcache.WithRedisAddr(cfg.Cache.Redis.Addr),
		pkgcache.WithRedisAuth(cfg.Cache.Redis.Password, cfg.Cache.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return pkgcache.NewLayeredCache(memory, remote), nil
}

// ProvideReportCache wraps the cache backend with report keys and TTL.
func ProvideReportCache(backend pkgcache.Service, logger *applogger.Logger, cfg *config.Config) *icache.ReportCache {
	return icache.NewReportCache(backend, logger, cfg.Cache.ReportTTL)
}

// ProvideBirdeyeClient creates the Birdeye provider client.
func ProvideBirdeyeClient(cfg *config.Config, logger *applogger.Logger) *birdeye.Client {
	httpClient := xhttp.NewClient(
		xhttp.WithTimeout(cfg.Birdeye.Timeout),
		xhttp.WithRateLimit(cfg.Birdeye.RequestsPerSec),
	)
	return birdeye.New(httpClient, logger, cfg.Birdeye.APIKey, cfg.Birdeye.BaseURL,
		birdeye.WithPageSize(cfg.Birdeye.PageSize),
		birdeye.WithMaxInFlight(cfg.Birdeye.MaxInFlight),
	)
}

// ProvideHolderStats creates the HolderScan provider client.
func ProvideHolderStats(cfg *config.Config, logger *applogger.Logger) domsvc.HolderStatsProvider {
	httpClient := xhttp.NewClient(
		xhttp.WithTimeout(cfg.HolderScan.Timeout),
	)
	return holderscan.New(httpClient, logger, cfg.HolderScan.APIKey, cfg.HolderScan.BaseURL, cfg.HolderScan.Chains)
}

// ProvideDetector creates the bundle detector from analyzer config.
func ProvideDetector(cfg *config.Config) (*bundle.Detector, error) {
	return bundle.NewDetector(bundle.Config{
		WindowSeconds:      cfg.Analyzer.WindowSeconds,
		MinTradesInCluster: cfg.Analyzer.MinTradesInCluster,
		MaxWalletDiversity: cfg.Analyzer.MaxWalletDiversity,
	})
}

// ProvideAnalyzer assembles the analysis pipeline.
func ProvideAnalyzer(
	feed *birdeye.Client,
	holders domsvc.HolderStatsProvider,
	detector *bundle.Detector,
	recorder drepo.Metrics,
	logger *applogger.Logger,
	cfg *config.Config,
) *usecase.BundleAnalyzer {
	return usecase.NewBundleAnalyzer(
		feed,
		feed,
		detector,
		risk.NewMetricsEngine(),
		risk.NewPresentImpactAnalyzer(holders, logger),
		risk.NewPriceActionAnalyzer(feed, cfg.Analyzer.PriceWindowDays),
		recorder,
		logger,
		cfg.Analyzer.TxLimit,
		cfg.Analyzer.CallTimeout,
	)
}

// ProvideReportStore creates the ClickHouse report store, or nil when
// persistence is disabled.
func ProvideReportStore(cfg *config.Config) (drepo.ReportStore, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return internalrepo.NewClickHouseReportStore(client, cfg.ClickHouse.Table), nil
}

// ProvidePublisher creates the Kafka report publisher, or nil when
// publishing is disabled. When log aggregation is enabled the producer
// doubles as the sink for batched error logs.
func ProvidePublisher(cfg *config.Config, logger *applogger.Logger) (drepo.Publisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	if cfg.Logging.Aggregation.Enabled {
		logger.AddCollector(&applogger.CollectorConfig{
			FlushInterval:  cfg.Logging.Aggregation.FlushInterval,
			CountThreshold: cfg.Logging.Aggregation.CountThreshold,
			Topic:          cfg.Logging.Aggregation.Topic,
			Publisher:      internalrepo.NewKafkaLogSink(producer),
		})
	}

	return internalrepo.NewKafkaReportPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideReportQueue builds the async report sink when Redis is enabled
// and at least one delivery backend exists. Returns nil otherwise; the
// handler then falls back to fire-and-forget goroutines.
func ProvideReportQueue(
	cfg *config.Config,
	logger *applogger.Logger,
	store drepo.ReportStore,
	publisher drepo.Publisher,
) (*queue.RedisQueue, error) {
	if !cfg.Cache.Redis.Enabled || (store == nil && publisher == nil) {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
	})
	q := queue.NewRedisQueue(logger, &queue.QueueConfig{
		Workers:    2,
		RetryLimit: 3,
		RetryDelay: 15 * time.Second,
	}, client)

	if store != nil {
		q.RegisterJob(usecase.NewStoreReportJob(store))
	}
	if publisher != nil {
		q.RegisterJob(usecase.NewPublishReportJob(publisher))
	}
	if err := q.Start(); err != nil {
		return nil, fmt.Errorf("report queue: %w", err)
	}
	return q, nil
}

// ProvideHandler creates the HTTP handler with optional backends.
func ProvideHandler(
	logger *applogger.Logger,
	analyzer *usecase.BundleAnalyzer,
	reports *icache.ReportCache,
	store drepo.ReportStore,
	publisher drepo.Publisher,
	sink *queue.RedisQueue,
	cfg *config.Config,
) xhttp.Handler {
	opts := make([]api.HandlerOption, 0, 4)
	if store != nil {
		opts = append(opts, api.WithReportStore(store))
	}
	if publisher != nil {
		opts = append(opts, api.WithPublisher(publisher))
	}
	if sink != nil {
		opts = append(opts, api.WithAsyncSink(sink))
	}
	if cfg.RateLimit.Enabled {
		opts = append(opts, api.WithRateLimit(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec))
	}
	return api.NewAnalysisEchoHandler(logger, analyzer, reports, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	handler xhttp.Handler,
	store drepo.ReportStore,
	publisher drepo.Publisher,
	cacheSvc pkgcache.Service,
	sink *queue.RedisQueue,
) *server.App {
	return server.New(cfg, logger, handler, store, publisher, cacheSvc, sink)
}
