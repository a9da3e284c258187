package models

import "time"

// Trend labels for the mean forecast relative to the current price.
const (
	TrendBullish = "bullish"
	TrendBearish = "bearish"
)

// Trading signal labels derived from day-over-day forecast change.
const (
	SignalStrongBuy  = "strong_buy"
	SignalBuy        = "buy"
	SignalHold       = "hold"
	SignalSell       = "sell"
	SignalStrongSell = "strong_sell"
)

// PricePoint is one step of a forecast trajectory.
type PricePoint struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Price float64 `json:"price"`
}

// TradingSignal is a discrete recommendation for one forecast day.
type TradingSignal struct {
	Day        int     `json:"day"` // 1-based
	Signal     string  `json:"signal"`
	Confidence float64 `json:"confidence"`
	ChangePct  float64 `json:"change_pct"` // rounded to 2 decimals
}

// ForecastMetadata carries request-scoped forecast details.
type ForecastMetadata struct {
	PredictionDate    time.Time `json:"prediction_date"`
	DaysAhead         int       `json:"days_ahead"`
	AvgPredictedPrice float64   `json:"avg_predicted_price"`
}

// Forecast is the result of one forecast request. Immutable once returned.
type Forecast struct {
	Symbol       string           `json:"symbol"`
	Name         string           `json:"crypto_name,omitempty"`
	CurrentPrice float64          `json:"current_price"`
	Predictions  []PricePoint     `json:"predictions"`
	Trend        string           `json:"trend"`
	Signals      []TradingSignal  `json:"signals"`
	Metadata     ForecastMetadata `json:"metadata"`
}

// ModelMetadata describes a trained model as written by the offline trainer.
type ModelMetadata struct {
	Symbol         string  `json:"symbol"`
	Name           string  `json:"crypto_name"`
	SequenceLength int     `json:"sequence_length"`
	TrainRMSE      float64 `json:"train_rmse"`
	TestRMSE       float64 `json:"test_rmse"`
	TrainMAE       float64 `json:"train_mae"`
	TestMAE        float64 `json:"test_mae"`
	TrainingDate   string  `json:"training_date"`
}

// SymbolInfo is one entry of the configured instrument universe.
type SymbolInfo struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	HasModel bool   `json:"has_model"`
}
