package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/AnshNarg/bit-coin/internal/domain/models"
	domrepo "github.com/AnshNarg/bit-coin/internal/domain/repository"
	"github.com/AnshNarg/bit-coin/internal/services/forecast"
	"github.com/AnshNarg/bit-coin/internal/services/model"
	applogger "github.com/AnshNarg/bit-coin/pkg/logger"
)

// ForecastUseCase orchestrates one forecast: history lookup, model rollout,
// optional fan-out to Kafka.
type ForecastUseCase struct {
	registry    *model.Registry
	store       domrepo.CandleStore
	forecaster  *forecast.Forecaster
	publisher   domrepo.SignalPublisher
	metrics     domrepo.Metrics
	l           *applogger.Logger
	historyDays int
}

func NewForecastUseCase(
	registry *model.Registry,
	store domrepo.CandleStore,
	forecaster *forecast.Forecaster,
	publisher domrepo.SignalPublisher,
	metrics domrepo.Metrics,
	l *applogger.Logger,
	historyDays int,
) *ForecastUseCase {
	if historyDays <= 0 {
		historyDays = 365
	}
	return &ForecastUseCase{
		registry:    registry,
		store:       store,
		forecaster:  forecaster,
		publisher:   publisher,
		metrics:     metrics,
		l:           l,
		historyDays: historyDays,
	}
}

// GetForecast produces a forecast for one symbol.
func (uc *ForecastUseCase) GetForecast(ctx context.Context, symbol string, days int) (*models.Forecast, error) {
	start := time.Now()

	binding, ok := uc.registry.Lookup(symbol)
	if !ok {
		return nil, fmt.Errorf("forecast %s: %w", symbol, models.ErrModelUnavailable)
	}

	candles, err := uc.store.GetLatestNDaily(ctx, symbol, uc.historyDays)
	if err != nil {
		uc.metrics.RecordError("candle_fetch")
		return nil, fmt.Errorf("forecast %s: %v: %w", symbol, err, models.ErrDataFetch)
	}

	fc, err := uc.forecaster.Forecast(ctx, symbol, candles, days, binding.Predict, binding.Scaler)
	if err != nil {
		uc.metrics.RecordError("forecast")
		return nil, err
	}
	fc.Name = binding.Name

	uc.metrics.RecordForecast(symbol, fc.Trend)
	uc.metrics.RecordLastPrice(symbol, fc.CurrentPrice)
	uc.metrics.RecordLatency("forecast", time.Since(start).Seconds())

	// fan-out is best-effort: a broker outage never fails the request
	if uc.publisher != nil {
		if err := uc.publisher.PublishForecast(ctx, fc); err != nil {
			uc.metrics.RecordError("publish")
			if uc.l != nil {
				uc.l.Warn("forecast publish failed",
					applogger.String("symbol", symbol),
					applogger.Error(err),
				)
			}
		}
	}

	return fc, nil
}

// BatchResult holds per-symbol outcomes of a batch forecast. A failed symbol
// lands in Errors; the rest still succeed.
type BatchResult struct {
	Forecasts map[string]*models.Forecast `json:"predictions"`
	Errors    map[string]string           `json:"errors,omitempty"`
}

// BatchForecast runs forecasts for all symbols concurrently and never stops on
// individual failures.
func (uc *ForecastUseCase) BatchForecast(ctx context.Context, symbols []string, days int) (*BatchResult, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("batch forecast: empty symbol list: %w", models.ErrInvalidRequest)
	}

	type item struct {
		symbol string
		fc     *models.Forecast
		err    error
	}
	ch := make(chan item, len(symbols))
	var wg sync.WaitGroup

	for _, symbol := range symbols {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			fc, err := uc.GetForecast(ctx, sym, days)
			ch <- item{sym, fc, err}
		}(symbol)
	}

	go func() { wg.Wait(); close(ch) }()

	res := &BatchResult{
		Forecasts: make(map[string]*models.Forecast, len(symbols)),
		Errors:    map[string]string{},
	}
	for it := range ch {
		if it.err != nil {
			res.Errors[it.symbol] = it.err.Error()
			continue
		}
		res.Forecasts[it.symbol] = it.fc
	}
	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	return res, nil
}

// ModelInfo returns trainer metadata for a loaded model.
func (uc *ForecastUseCase) ModelInfo(ctx context.Context, symbol string) (models.ModelMetadata, error) {
	binding, ok := uc.registry.Lookup(symbol)
	if !ok {
		return models.ModelMetadata{}, fmt.Errorf("model info %s: %w", symbol, models.ErrModelUnavailable)
	}
	return binding.Meta, nil
}

// Symbols lists the configured universe with model availability.
func (uc *ForecastUseCase) Symbols() []models.SymbolInfo {
	return uc.registry.Symbols()
}

// LoadedModels lists symbols with a usable model binding.
func (uc *ForecastUseCase) LoadedModels() []string {
	return uc.registry.Loaded()
}
