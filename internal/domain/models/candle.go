package models

import "time"

// Candle represents a daily OHLCV record for a traded instrument.
type Candle struct {
	Bucket time.Time `json:"date"`
	Symbol string    `json:"symbol"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Trade is a single tick from the live market stream.
type Trade struct {
	Symbol    string
	Timestamp int64 // unix seconds
	Price     float64
	Volume    float64
}
