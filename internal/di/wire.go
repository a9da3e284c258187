//go:build wireinject
// +build wireinject

package di

import (
	"github.com/AnshNarg/bit-coin/pkg/config"
	"github.com/AnshNarg/bit-coin/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Repositories
		ProvideCandleStore,
		ProvideTickStorage,
		ProvideSignalPublisher,
		ProvideMarketStream,

		// Model serving
		ProvideModelRegistry,
		ProvideForecaster,

		// Use cases
		ProvideTickProcessor,
		ProvideTickCollector,
		ProvideForecastUseCase,
		ProvideCandlesUseCase,

		// HTTP
		ProvideResponseCache,
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
