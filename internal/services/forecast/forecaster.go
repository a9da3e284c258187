package forecast

import (
	"context"
	"fmt"
	"time"

	"github.com/AnshNarg/bit-coin/internal/domain/models"
	"github.com/AnshNarg/bit-coin/internal/services/features"
)

// Supported forecast horizon in days.
const (
	MinHorizonDays = 1
	MaxHorizonDays = 30
)

// PredictFunc is the opaque trained model: one normalized window in, one
// normalized close scalar out.
type PredictFunc func(ctx context.Context, window [][]float64) (float64, error)

// Forecaster runs the autoregressive multi-step rollout over an injected
// prediction function.
type Forecaster struct {
	seqLen int
	recon  Reconstructor
}

// Option configures a Forecaster.
type Option func(*Forecaster)

// WithSequenceLength overrides the model window length.
func WithSequenceLength(n int) Option {
	return func(f *Forecaster) { f.seqLen = n }
}

// WithReconstructor swaps the rollout row reconstruction strategy.
func WithReconstructor(r Reconstructor) Option {
	return func(f *Forecaster) { f.recon = r }
}

// New creates a Forecaster with the default sequence length and the
// carry-forward reconstruction strategy.
func New(opts ...Option) *Forecaster {
	f := &Forecaster{seqLen: DefaultSequenceLength, recon: NaiveCarryForward{}}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ClampHorizon bounds the requested horizon to [MinHorizonDays, MaxHorizonDays].
func ClampHorizon(days int) int {
	if days < MinHorizonDays {
		return MinHorizonDays
	}
	if days > MaxHorizonDays {
		return MaxHorizonDays
	}
	return days
}

// Forecast derives features from the OHLCV series, rolls the model forward for
// the requested number of days, and returns the denormalized trajectory with
// trend and per-day signals. The scaler must already be fitted for this
// instrument; collaborator failures are surfaced unchanged, never retried.
func (f *Forecaster) Forecast(ctx context.Context, symbol string, candles []models.Candle, days int, predict PredictFunc, scaler *MinMaxScaler) (*models.Forecast, error) {
	if predict == nil {
		return nil, fmt.Errorf("forecast %s: no predictor bound: %w", symbol, models.ErrModelUnavailable)
	}
	if scaler == nil || !scaler.Fitted() {
		return nil, fmt.Errorf("forecast %s: no fitted scaler: %w", symbol, models.ErrModelUnavailable)
	}
	days = ClampHorizon(days)

	matrix, err := features.Compute(candles)
	if err != nil {
		return nil, fmt.Errorf("forecast %s: %w", symbol, err)
	}
	normalized, err := scaler.Transform(matrix.Rows)
	if err != nil {
		return nil, fmt.Errorf("forecast %s: %w", symbol, err)
	}
	window, err := NewWindow(normalized, f.seqLen, f.recon)
	if err != nil {
		return nil, fmt.Errorf("forecast %s: %w", symbol, err)
	}

	// autoregressive rollout: each prediction feeds the next window
	scaled := make([]float64, 0, days)
	for step := 0; step < days; step++ {
		pred, err := predict(ctx, window.Rows())
		if err != nil {
			return nil, fmt.Errorf("forecast %s step %d: %w", symbol, step+1, err)
		}
		scaled = append(scaled, pred)
		window.Advance(pred)
	}

	// denormalize via zero rows carrying only the close column; the scaler's
	// column independence makes the extracted close exact
	dummy := make([][]float64, len(scaled))
	for i, pred := range scaled {
		row := make([]float64, features.Width)
		row[features.ColClose] = pred
		dummy[i] = row
	}
	raw, err := scaler.InverseTransform(dummy)
	if err != nil {
		return nil, fmt.Errorf("forecast %s: %w", symbol, err)
	}
	prices := make([]float64, len(raw))
	for i, row := range raw {
		prices[i] = row[features.ColClose]
	}

	// naive +1 day increments: continuous crypto trading, no holiday calendar
	lastDate := matrix.LastDate()
	points := make([]models.PricePoint, len(prices))
	for i, price := range prices {
		points[i] = models.PricePoint{
			Date:  lastDate.AddDate(0, 0, i+1).Format("2006-01-02"),
			Price: price,
		}
	}

	currentPrice := matrix.LastClose()
	avg := mean(prices)
	trend := models.TrendBearish
	if avg > currentPrice {
		trend = models.TrendBullish
	}

	return &models.Forecast{
		Symbol:       symbol,
		CurrentPrice: currentPrice,
		Predictions:  points,
		Trend:        trend,
		Signals:      GenerateSignals(prices, currentPrice),
		Metadata: models.ForecastMetadata{
			PredictionDate:    time.Now().UTC(),
			DaysAhead:         days,
			AvgPredictedPrice: avg,
		},
	}, nil
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
