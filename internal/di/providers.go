package di

import (
	"context"
	"fmt"
	"time"

	"EarningsPull/internal/domain/repository"
	"EarningsPull/internal/handler/api"
	internalrepo "EarningsPull/internal/repository"
	"EarningsPull/internal/service/ratelimit"
	"EarningsPull/internal/service/sources"
	"EarningsPull/internal/usecase"
	"EarningsPull/pkg/blob"
	pkgch "EarningsPull/pkg/clickhouse"
	"EarningsPull/pkg/config"
	xhttp "EarningsPull/pkg/http"
	pkgkafka "EarningsPull/pkg/kafka"
	"EarningsPull/pkg/logger"
	"EarningsPull/pkg/metrics"
	"EarningsPull/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideLocation resolves the exchange timezone.
func ProvideLocation(cfg *config.Config) (*time.Location, error) {
	loc, err := time.LoadLocation(cfg.Refresh.Timezone)
	if err != nil {
		return nil, fmt.Errorf("exchange timezone: %w", err)
	}
	return loc, nil
}

// ProvideHTTPClient creates the shared outbound HTTP client.
func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(xhttp.WithTimeout(cfg.Sources.RequestTimeout))
}

// ProvideLimiter creates the shared per-host rate limiter.
func ProvideLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideRoster creates the roster provider.
func ProvideRoster(client *xhttp.Client, rl *ratelimit.Limiter, cfg *config.Config) repository.RosterProvider {
	return sources.NewWikipediaRoster(client, rl,
		cfg.Sources.RosterURL, cfg.Sources.UserAgent, cfg.Sources.MaxRPSPerHost)
}

// ProvideAnnouncements creates the announcement source.
func ProvideAnnouncements(client *xhttp.Client, rl *ratelimit.Limiter, cfg *config.Config, loc *time.Location) repository.AnnouncementSource {
	return sources.NewZacksAnnouncements(client, rl,
		cfg.Sources.AnnouncementsURL, cfg.Sources.EstimatesURL,
		cfg.Sources.UserAgent, cfg.Sources.MaxRPSPerHost, loc)
}

// ProvidePrices creates the price source.
func ProvidePrices(client *xhttp.Client, rl *ratelimit.Limiter, cfg *config.Config, loc *time.Location) repository.PriceSource {
	return sources.NewYahooPrices(client, rl,
		cfg.Sources.PriceURL, cfg.Sources.UserAgent, cfg.Sources.MaxRPSPerHost, loc)
}

// ProvideDetails creates the detail source.
func ProvideDetails(client *xhttp.Client, rl *ratelimit.Limiter, cfg *config.Config) repository.DetailSource {
	return sources.NewMarketWatchDetail(client, rl,
		cfg.Sources.DetailURL, cfg.Sources.UserAgent, cfg.Sources.MaxRPSPerHost)
}

// ProvideQuotes creates the live quote source.
func ProvideQuotes(client *xhttp.Client, rl *ratelimit.Limiter, cfg *config.Config) repository.QuoteSource {
	return sources.NewZacksQuotes(client, rl,
		cfg.Sources.QuoteURL, cfg.Sources.UserAgent, cfg.Sources.MaxRPSPerHost)
}

// ProvideSnapshotStore creates the persistent cache store for the configured
// backend.
func ProvideSnapshotStore(cfg *config.Config) (repository.SnapshotStore, error) {
	var backend blob.Store
	switch cfg.Snapshot.Backend {
	case "redis":
		store, err := blob.NewRedisStore(
			blob.WithRedisAddr(cfg.Snapshot.Redis.Addr),
			blob.WithRedisAuth(cfg.Snapshot.Redis.Password, cfg.Snapshot.Redis.DB),
			blob.WithRedisKey(cfg.Snapshot.Redis.Key),
		)
		if err != nil {
			return nil, fmt.Errorf("redis snapshot store: %w", err)
		}
		backend = store
	default:
		backend = blob.NewFileStore(cfg.Snapshot.Path)
	}
	return internalrepo.NewBlobSnapshotStore(backend), nil
}

// ProvideReactionSink creates the configured downstream sink.
func ProvideReactionSink(cfg *config.Config) (repository.ReactionSink, error) {
	switch cfg.Sink.Type {
	case "kafka":
		producer, err := pkgkafka.NewProducer(
			pkgkafka.WithBrokers(cfg.Sink.Kafka.Brokers),
			pkgkafka.WithCompression(cfg.Sink.Kafka.Compression),
			pkgkafka.WithRequiredAcks(cfg.Sink.Kafka.RequiredAcks),
			pkgkafka.WithMaxAttempts(cfg.Sink.Kafka.MaxAttempts),
			pkgkafka.WithTimeouts(cfg.Sink.Kafka.WriteTimeout, cfg.Sink.Kafka.ReadTimeout),
			pkgkafka.WithHashByKey(true),
		)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		return internalrepo.NewKafkaReactionSink(producer, cfg.Sink.Kafka.Topic), nil

	case "clickhouse":
		client, err := pkgch.NewClient(
			pkgch.WithHost(cfg.Sink.ClickHouse.Host),
			pkgch.WithPort(cfg.Sink.ClickHouse.Port),
			pkgch.WithDatabase(cfg.Sink.ClickHouse.Database),
			pkgch.WithCredentials(cfg.Sink.ClickHouse.User, cfg.Sink.ClickHouse.Password),
			pkgch.WithMaxConnections(10, 5),
			pkgch.WithTimeouts(cfg.Sink.ClickHouse.DialTimeout, cfg.Sink.ClickHouse.ReadTimeout),
		)
		if err != nil {
			return nil, fmt.Errorf("clickhouse client: %w", err)
		}
		sink := internalrepo.NewCHReactionSink(client, cfg.Sink.ClickHouse.Table)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := sink.InitSchema(ctx); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("clickhouse schema: %w", err)
		}
		return sink, nil

	default:
		return internalrepo.NoopSink{}, nil
	}
}

// ProvideFetchPool creates the bounded worker pool.
func ProvideFetchPool(cfg *config.Config, l *logger.Logger, m repository.Metrics) *usecase.FetchPool {
	return usecase.NewFetchPool(cfg.Refresh.Workers, cfg.Refresh.BatchTimeout, l, m)
}

// ProvideCompanyInfo loads the persisted snapshot and builds the read facade
// over it.
func ProvideCompanyInfo(
	store repository.SnapshotStore,
	ann repository.AnnouncementSource,
	quotes repository.QuoteSource,
	l *logger.Logger,
) (*usecase.CompanyInfo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	snap, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return usecase.NewCompanyInfo(snap, ann, quotes, store, l), nil
}

// ProvideRefresher creates the refresh pass orchestrator.
func ProvideRefresher(
	roster repository.RosterProvider,
	ann repository.AnnouncementSource,
	prices repository.PriceSource,
	details repository.DetailSource,
	store repository.SnapshotStore,
	sink repository.ReactionSink,
	pool *usecase.FetchPool,
	m repository.Metrics,
	l *logger.Logger,
	cfg *config.Config,
	loc *time.Location,
) *usecase.Refresher {
	return usecase.NewRefresher(roster, ann, prices, details, store, sink, pool, m, l,
		usecase.RefresherConfig{
			StaleDays:     cfg.Refresh.StaleDays,
			HistoryCap:    cfg.Refresh.HistoryCap,
			AverageWindow: cfg.Refresh.AverageWindow,
			PadDays:       cfg.Refresh.PadDays,
			Location:      loc,
		})
}

// ProvideHTTPHandler bundles the REST and websocket handlers.
func ProvideHTTPHandler(l *logger.Logger, info *usecase.CompanyInfo, cfg *config.Config) xhttp.Handler {
	return api.NewRouter(
		api.NewEarningsHandler(l, info),
		api.NewQuoteStreamHandler(l, info, cfg.Quotes.StreamInterval),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	info *usecase.CompanyInfo,
	refresher *usecase.Refresher,
	store repository.SnapshotStore,
	sink repository.ReactionSink,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, l, info, refresher, store, sink, handler)
}
