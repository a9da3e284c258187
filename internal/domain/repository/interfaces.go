package repository

import (
	"context"
	"time"

	"github.com/AnshNarg/bit-coin/internal/domain/models"
)

// CandleStore provides read-only access to daily OHLCV history.
type CandleStore interface {
	GetDailyCandles(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error)
	GetLatestNDaily(ctx context.Context, symbol string, n int) ([]models.Candle, error)
}

// SignalPublisher fans finished forecasts out to downstream consumers.
type SignalPublisher interface {
	PublishForecast(ctx context.Context, f *models.Forecast) error
	Close() error
}

// MarketStream streams live trades from an exchange feed.
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Trade, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// TickStorage persists raw ticks from the live stream.
type TickStorage interface {
	Store(ctx context.Context, t *models.Trade) error
	StoreBatch(ctx context.Context, trades []*models.Trade) error
	Health(ctx context.Context) error
	Close() error
}

// Metrics records operational measurements.
type Metrics interface {
	RecordForecast(symbol, trend string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
