package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/AnshNarg/bit-coin/internal/domain/models"
	domrepo "github.com/AnshNarg/bit-coin/internal/domain/repository"
	"github.com/AnshNarg/bit-coin/internal/services/features"
	"github.com/AnshNarg/bit-coin/internal/services/forecast"
	"github.com/AnshNarg/bit-coin/internal/services/model"
)

type stubCandleStore struct {
	candles []models.Candle
	err     error
}

func (s *stubCandleStore) GetDailyCandles(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error) {
	return s.candles, s.err
}

func (s *stubCandleStore) GetLatestNDaily(ctx context.Context, symbol string, n int) ([]models.Candle, error) {
	return s.candles, s.err
}

type stubPublisher struct {
	err       error
	published int
}

func (p *stubPublisher) PublishForecast(ctx context.Context, f *models.Forecast) error {
	p.published++
	return p.err
}

func (p *stubPublisher) Close() error { return nil }

type nopMetrics struct{ errs []string }

func (m *nopMetrics) RecordForecast(symbol, trend string)          {}
func (m *nopMetrics) RecordError(kind string)                      { m.errs = append(m.errs, kind) }
func (m *nopMetrics) RecordLastPrice(symbol string, price float64) {}
func (m *nopMetrics) RecordLatency(op string, seconds float64)     {}

func testCandles(n int) []models.Candle {
	out := make([]models.Candle, n)
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range out {
		c := 100 + float64(i)
		out[i] = models.Candle{
			Bucket: day.AddDate(0, 0, i),
			Symbol: "BTC-USD",
			Open:   c,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: 1000,
		}
	}
	return out
}

func testBinding(t *testing.T, candles []models.Candle) *model.Binding {
	t.Helper()
	m, err := features.Compute(candles)
	if err != nil {
		t.Fatalf("compute features: %v", err)
	}
	scaler := forecast.NewMinMaxScaler()
	if err := scaler.Fit(m.Rows); err != nil {
		t.Fatalf("fit scaler: %v", err)
	}
	return &model.Binding{
		Symbol: "BTC-USD",
		Name:   "Bitcoin",
		Predict: func(ctx context.Context, window [][]float64) (float64, error) {
			return 0.5, nil
		},
		Scaler: scaler,
	}
}

func newTestUseCase(t *testing.T, store *stubCandleStore, pub *stubPublisher) *ForecastUseCase {
	t.Helper()
	registry := model.NewStubRegistry(testBinding(t, testCandles(140)))
	var publisher domrepo.SignalPublisher
	if pub != nil {
		publisher = pub
	}
	return NewForecastUseCase(registry, store, forecast.New(), publisher, &nopMetrics{}, nil, 365)
}

func TestGetForecast(t *testing.T) {
	store := &stubCandleStore{candles: testCandles(140)}
	pub := &stubPublisher{}
	uc := newTestUseCase(t, store, pub)

	fc, err := uc.GetForecast(context.Background(), "BTC-USD", 5)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if fc.Name != "Bitcoin" {
		t.Fatalf("name = %s, want Bitcoin", fc.Name)
	}
	if len(fc.Predictions) != 5 {
		t.Fatalf("predictions = %d, want 5", len(fc.Predictions))
	}
	if pub.published != 1 {
		t.Fatalf("published = %d, want 1", pub.published)
	}
}

func TestGetForecastUnknownSymbol(t *testing.T) {
	uc := newTestUseCase(t, &stubCandleStore{candles: testCandles(140)}, nil)
	if _, err := uc.GetForecast(context.Background(), "NOPE-USD", 5); !errors.Is(err, models.ErrModelUnavailable) {
		t.Fatalf("err = %v, want ErrModelUnavailable", err)
	}
}

func TestGetForecastStoreError(t *testing.T) {
	uc := newTestUseCase(t, &stubCandleStore{err: fmt.Errorf("clickhouse down")}, nil)
	if _, err := uc.GetForecast(context.Background(), "BTC-USD", 5); !errors.Is(err, models.ErrDataFetch) {
		t.Fatalf("err = %v, want ErrDataFetch", err)
	}
}

func TestGetForecastPublishFailureIsBestEffort(t *testing.T) {
	pub := &stubPublisher{err: fmt.Errorf("broker down")}
	uc := newTestUseCase(t, &stubCandleStore{candles: testCandles(140)}, pub)

	if _, err := uc.GetForecast(context.Background(), "BTC-USD", 5); err != nil {
		t.Fatalf("publish failure must not fail the forecast: %v", err)
	}
	if pub.published != 1 {
		t.Fatalf("published = %d, want 1", pub.published)
	}
}

func TestBatchForecastContinuesPastFailures(t *testing.T) {
	uc := newTestUseCase(t, &stubCandleStore{candles: testCandles(140)}, nil)

	res, err := uc.BatchForecast(context.Background(), []string{"BTC-USD", "NOPE-USD"}, 5)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(res.Forecasts) != 1 {
		t.Fatalf("forecasts = %d, want 1", len(res.Forecasts))
	}
	if _, ok := res.Forecasts["BTC-USD"]; !ok {
		t.Fatalf("expected BTC-USD forecast")
	}
	if _, ok := res.Errors["NOPE-USD"]; !ok {
		t.Fatalf("expected NOPE-USD error, got %v", res.Errors)
	}
}

func TestBatchForecastEmptySymbols(t *testing.T) {
	uc := newTestUseCase(t, &stubCandleStore{}, nil)
	if _, err := uc.BatchForecast(context.Background(), nil, 5); !errors.Is(err, models.ErrInvalidRequest) {
		t.Fatalf("err = %v, want ErrInvalidRequest", err)
	}
}

func TestModelInfo(t *testing.T) {
	uc := newTestUseCase(t, &stubCandleStore{}, nil)

	if _, err := uc.ModelInfo(context.Background(), "BTC-USD"); err != nil {
		t.Fatalf("model info: %v", err)
	}
	if _, err := uc.ModelInfo(context.Background(), "NOPE-USD"); !errors.Is(err, models.ErrModelUnavailable) {
		t.Fatalf("err = %v, want ErrModelUnavailable", err)
	}
}

func TestSymbols(t *testing.T) {
	uc := newTestUseCase(t, &stubCandleStore{}, nil)
	infos := uc.Symbols()
	if len(infos) != 1 || infos[0].Symbol != "BTC-USD" || !infos[0].HasModel {
		t.Fatalf("unexpected symbols %v", infos)
	}
}
