package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AnshNarg/bit-coin/internal/domain/models"
	icache "github.com/AnshNarg/bit-coin/internal/service/cache"
	"github.com/AnshNarg/bit-coin/internal/services/features"
	"github.com/AnshNarg/bit-coin/internal/services/forecast"
	"github.com/AnshNarg/bit-coin/internal/services/model"
	"github.com/AnshNarg/bit-coin/internal/usecase"
	xhttp "github.com/AnshNarg/bit-coin/pkg/http"

	"github.com/labstack/echo/v4"
)

type fakeCandleStore struct {
	candles []models.Candle
	err     error
}

func (s *fakeCandleStore) GetDailyCandles(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error) {
	return s.candles, s.err
}

func (s *fakeCandleStore) GetLatestNDaily(ctx context.Context, symbol string, n int) ([]models.Candle, error) {
	return s.candles, s.err
}

type fakeMetrics struct{}

func (fakeMetrics) RecordForecast(symbol, trend string)          {}
func (fakeMetrics) RecordError(kind string)                      {}
func (fakeMetrics) RecordLastPrice(symbol string, price float64) {}
func (fakeMetrics) RecordLatency(op string, seconds float64)     {}

func seedCandles(n int) []models.Candle {
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

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	candles := seedCandles(140)

	m, err := features.Compute(candles)
	if err != nil {
		t.Fatalf("compute features: %v", err)
	}
	scaler := forecast.NewMinMaxScaler()
	if err := scaler.Fit(m.Rows); err != nil {
		t.Fatalf("fit scaler: %v", err)
	}
	registry := model.NewStubRegistry(&model.Binding{
		Symbol: "BTC-USD",
		Name:   "Bitcoin",
		Predict: func(ctx context.Context, window [][]float64) (float64, error) {
			return 0.5, nil
		},
		Scaler: scaler,
		Meta:   models.ModelMetadata{Symbol: "BTC-USD", Name: "Bitcoin", SequenceLength: 60},
	})

	store := &fakeCandleStore{candles: candles}
	forecasts := usecase.NewForecastUseCase(registry, store, forecast.New(), nil, fakeMetrics{}, nil, 365)
	candlesUC := usecase.NewCandlesUseCase(store)

	h := NewForecastHandler(forecasts, candlesUC, nil)
	h.SetCache(icache.NewTTLCache(), time.Minute)
	h.SetStreamStatus(func() bool { return false })

	e := echo.New()
	h.RegisterRoutes(e)
	return e
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	e := newTestServer(t)
	rec := do(e, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "healthy") || !strings.Contains(body, "models_loaded") {
		t.Fatalf("unexpected body %s", body)
	}
	if !strings.Contains(body, "stream_connected") {
		t.Fatalf("expected stream status in %s", body)
	}
}

func TestPredict(t *testing.T) {
	e := newTestServer(t)
	rec := do(e, http.MethodGet, "/api/predictions/BTC-USD?days=3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var env struct {
		Status int             `json:"status"`
		Data   models.Forecast `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data.Symbol != "BTC-USD" || env.Data.Name != "Bitcoin" {
		t.Fatalf("unexpected forecast %+v", env.Data)
	}
	if len(env.Data.Predictions) != 3 || len(env.Data.Signals) != 3 {
		t.Fatalf("want 3 predictions and signals, got %d/%d", len(env.Data.Predictions), len(env.Data.Signals))
	}
}

func TestPredictCachedResponseMatches(t *testing.T) {
	e := newTestServer(t)
	first := do(e, http.MethodGet, "/api/predictions/BTC-USD?days=2", "")
	second := do(e, http.MethodGet, "/api/predictions/BTC-USD?days=2", "")
	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("status = %d/%d", first.Code, second.Code)
	}

	var a, b map[string]interface{}
	if err := json.Unmarshal(first.Body.Bytes(), &a); err != nil {
		t.Fatalf("decode first: %v", err)
	}
	if err := json.Unmarshal(second.Body.Bytes(), &b); err != nil {
		t.Fatalf("decode second: %v", err)
	}
	af, _ := json.Marshal(a["data"])
	bf, _ := json.Marshal(b["data"])
	if string(af) != string(bf) {
		t.Fatalf("cached response diverges")
	}
}

func TestPredictUnknownSymbol(t *testing.T) {
	e := newTestServer(t)
	rec := do(e, http.MethodGet, "/api/predictions/NOPE-USD?days=3", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestPredictClampsHorizon(t *testing.T) {
	e := newTestServer(t)

	// Oversized horizons are clamped to 30 days, never rejected.
	rec := do(e, http.MethodGet, "/api/predictions/BTC-USD?days=60", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var env struct {
		Data models.Forecast `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(env.Data.Predictions) != 30 {
		t.Fatalf("want 30 predictions, got %d", len(env.Data.Predictions))
	}

	// Undersized horizons clamp to a single day.
	rec = do(e, http.MethodGet, "/api/predictions/BTC-USD?days=-3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	env.Data = models.Forecast{}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(env.Data.Predictions) != 1 {
		t.Fatalf("want 1 prediction, got %d", len(env.Data.Predictions))
	}
}

func TestPredictBatch(t *testing.T) {
	e := newTestServer(t)
	rec := do(e, http.MethodPost, "/api/predictions/batch", `{"symbols":["BTC-USD","NOPE-USD"],"days":2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var env struct {
		Data usecase.BatchResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := env.Data.Forecasts["BTC-USD"]; !ok {
		t.Fatalf("expected BTC-USD forecast in %s", rec.Body.String())
	}
	if _, ok := env.Data.Errors["NOPE-USD"]; !ok {
		t.Fatalf("expected NOPE-USD error in %s", rec.Body.String())
	}
}

func TestPredictBatchMissingSymbols(t *testing.T) {
	e := newTestServer(t)
	rec := do(e, http.MethodPost, "/api/predictions/batch", `{"days":2}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSymbols(t *testing.T) {
	e := newTestServer(t)
	rec := do(e, http.MethodGet, "/api/symbols", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "has_model") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestModelInfo(t *testing.T) {
	e := newTestServer(t)
	rec := do(e, http.MethodGet, "/api/models/BTC-USD", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "sequence_length") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}

	rec = do(e, http.MethodGet, "/api/models/NOPE-USD", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCandlesEndpoint(t *testing.T) {
	e := newTestServer(t)
	rec := do(e, http.MethodGet, "/api/candles/BTC-USD?n=10", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var env struct {
		Data usecase.GetCandlesResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data.Symbol != "BTC-USD" || env.Data.Count == 0 {
		t.Fatalf("unexpected result %+v", env.Data)
	}
}

func TestMapDomainError(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("x: %w", models.ErrInvalidRequest), http.StatusBadRequest},
		{fmt.Errorf("x: %w", models.ErrModelUnavailable), http.StatusNotFound},
		{fmt.Errorf("x: %w", models.ErrInsufficientHistory), http.StatusUnprocessableEntity},
		{fmt.Errorf("x: %w", models.ErrNumericDegeneracy), http.StatusUnprocessableEntity},
		{fmt.Errorf("x: %w", models.ErrDataFetch), http.StatusBadGateway},
		{fmt.Errorf("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		var appErr *xhttp.AppError
		if !errors.As(mapDomainError(tc.err), &appErr) {
			t.Fatalf("mapDomainError(%v) is not an AppError", tc.err)
		}
		if appErr.Status != tc.code {
			t.Fatalf("mapDomainError(%v) status = %d, want %d", tc.err, appErr.Status, tc.code)
		}
	}
}
