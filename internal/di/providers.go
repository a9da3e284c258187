package di

import (
	"context"
	"fmt"
	"time"

	"github.com/AnshNarg/bit-coin/internal/domain/repository"
	"github.com/AnshNarg/bit-coin/internal/handler/api"
	internalrepo "github.com/AnshNarg/bit-coin/internal/repository"
	icache "github.com/AnshNarg/bit-coin/internal/service/cache"
	"github.com/AnshNarg/bit-coin/internal/service/marketdata"
	"github.com/AnshNarg/bit-coin/internal/services/forecast"
	"github.com/AnshNarg/bit-coin/internal/services/model"
	"github.com/AnshNarg/bit-coin/internal/usecase"
	pkgch "github.com/AnshNarg/bit-coin/pkg/clickhouse"
	"github.com/AnshNarg/bit-coin/pkg/config"
	xhttp "github.com/AnshNarg/bit-coin/pkg/http"
	pkgkafka "github.com/AnshNarg/bit-coin/pkg/kafka"
	applogger "github.com/AnshNarg/bit-coin/pkg/logger"
	"github.com/AnshNarg/bit-coin/pkg/metrics"
	"github.com/AnshNarg/bit-coin/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS bitcoin",
		"CREATE TABLE IF NOT EXISTS bitcoin.daily_candles (bucket DateTime, symbol String, open Float64, high Float64, low Float64, close Float64, vol Float64) ENGINE=ReplacingMergeTree ORDER BY (symbol, bucket)",
		"CREATE TABLE IF NOT EXISTS bitcoin.rt_ticks (ts DateTime, symbol String, price Float64, volume Float64, event_id String) ENGINE=MergeTree ORDER BY (symbol, ts)",
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
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
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCandleStore creates the daily candle repository.
func ProvideCandleStore(chClient *pkgch.Client, l *applogger.Logger) repository.CandleStore {
	store := internalrepo.NewCHCandleStore(chClient)
	store.SetLogger(l)
	return store
}

// ProvideTickStorage creates ClickHouse tick storage.
func ProvideTickStorage(chClient *pkgch.Client, cfg *config.Config) repository.TickStorage {
	return internalrepo.NewClickHouseTickStorage(chClient.DB(), cfg.ClickHouse.Database+".rt_ticks")
}

// ProvideSignalPublisher creates the Kafka forecast publisher, or nil when disabled.
func ProvideSignalPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.SignalPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.Topic)
}

// ProvideMarketStream creates the live trade WebSocket stream.
func ProvideMarketStream(cfg *config.Config) repository.MarketStream {
	symbols := make([]string, 0, len(cfg.MarketData.Symbols))
	for _, s := range cfg.MarketData.Symbols {
		symbols = append(symbols, s.Symbol)
	}
	return marketdata.New(
		cfg.MarketData.APIKey,
		cfg.MarketData.WebSocketURL,
		symbols,
		cfg.MarketData.ReconnectDelay,
		cfg.MarketData.PingInterval,
	)
}

// ProvideTickProcessor creates the tick persistence use case.
func ProvideTickProcessor(store repository.TickStorage, m repository.Metrics) *usecase.TickProcessor {
	return usecase.NewTickProcessor(store, m, 2000, time.Second)
}

// ProvideTickCollector creates the tick collector use case.
func ProvideTickCollector(
	stream repository.MarketStream,
	processor *usecase.TickProcessor,
	m repository.Metrics,
) *usecase.TickCollector {
	return usecase.NewTickCollector(stream, processor, m)
}

// ProvideModelRegistry loads per-symbol model artifacts and binds the serving
// predictor.
func ProvideModelRegistry(cfg *config.Config, l *applogger.Logger) *model.Registry {
	store := model.NewFileStore(cfg.Forecast.ModelDir)
	predictor := model.NewHTTPPredictor(cfg.Forecast.ModelServiceURL, cfg.Forecast.Timeout)
	return model.BuildRegistry(cfg.SymbolUniverse(), store, predictor, l)
}

// ProvideForecaster creates the rollout engine.
func ProvideForecaster(cfg *config.Config) *forecast.Forecaster {
	if cfg.Forecast.SequenceLength > 0 {
		return forecast.New(forecast.WithSequenceLength(cfg.Forecast.SequenceLength))
	}
	return forecast.New()
}

// ProvideForecastUseCase creates the forecast orchestration use case.
func ProvideForecastUseCase(
	registry *model.Registry,
	store repository.CandleStore,
	forecaster *forecast.Forecaster,
	publisher repository.SignalPublisher,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.ForecastUseCase {
	return usecase.NewForecastUseCase(registry, store, forecaster, publisher, m, l, cfg.Forecast.HistoryDays)
}

// ProvideCandlesUseCase creates the candles use case.
func ProvideCandlesUseCase(store repository.CandleStore) *usecase.CandlesUseCase {
	return usecase.NewCandlesUseCase(store)
}

// ProvideResponseCache creates the forecast response cache (Redis when
// configured, in-process TTL map otherwise).
func ProvideResponseCache(cfg *config.Config) icache.BytesCache {
	if cfg.Forecast.Redis.Enabled {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Forecast.Redis.Addr,
			Password: cfg.Forecast.Redis.Password,
			DB:       cfg.Forecast.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideHTTPHandler creates the forecast API handler.
func ProvideHTTPHandler(
	forecasts *usecase.ForecastUseCase,
	candles *usecase.CandlesUseCase,
	cache icache.BytesCache,
	collector *usecase.TickCollector,
	l *applogger.Logger,
	cfg *config.Config,
) xhttp.Handler {
	h := api.NewForecastHandler(forecasts, candles, l)
	h.SetCache(cache, cfg.Forecast.CacheTTL)
	if collector != nil {
		h.SetStreamStatus(collector.IsConnected)
	}
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	collector *usecase.TickCollector,
	handler xhttp.Handler,
	publisher repository.SignalPublisher,
	chClient *pkgch.Client,
	l *applogger.Logger,
) *server.App {
	app := server.New(cfg, collector, handler, publisher, chClient, l)
	if collector != nil {
		app.TickProc = collector.Processor()
	}
	return app
}
