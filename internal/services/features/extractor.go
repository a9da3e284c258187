package features

import (
	"fmt"
	"math"
	"time"

	"github.com/AnshNarg/bit-coin/internal/domain/models"
)

// Feature column layout. Every component that touches rows by position depends
// on Close sitting at index 3.
const (
	ColOpen = iota
	ColHigh
	ColLow
	ColClose
	ColVolume
	ColMA7
	ColMA21
	ColMA50
	ColRSI
	ColBBPosition
	ColVolatility
	ColVolumeRatio
	ColPriceChange
	ColHighLowRatio

	Width = 14
)

// Rolling window sizes used by the derived indicators.
const (
	maShort     = 7
	maMid       = 21
	maLong      = 50
	rsiWindow   = 14
	bbWindow    = 20
	volWindow   = 10
	volMAWindow = 10
)

// Matrix is an ordered feature matrix, one row per valid trading day. Rows that
// would contain an undefined value from insufficient warm-up history are
// dropped, preserving date order.
type Matrix struct {
	Dates []time.Time
	Rows  [][]float64
}

// Len returns the number of feature rows.
func (m *Matrix) Len() int { return len(m.Rows) }

// LastClose returns the raw close of the final row.
func (m *Matrix) LastClose() float64 {
	return m.Rows[len(m.Rows)-1][ColClose]
}

// LastDate returns the date of the final row.
func (m *Matrix) LastDate() time.Time {
	return m.Dates[len(m.Dates)-1]
}

// Compute derives the 14-column technical feature matrix from a daily OHLCV
// series ordered by date. Degenerate numeric cases are guarded with documented
// values (rsi=100 on zero loss, bb_position=0.5 on zero band width,
// volume_ratio=1 on zero volume average); structurally invalid input is an
// error.
func Compute(candles []models.Candle) (*Matrix, error) {
	if len(candles) == 0 {
		return nil, fmt.Errorf("compute features: empty series: %w", models.ErrDataFetch)
	}

	n := len(candles)
	closes := make([]float64, n)
	volumes := make([]float64, n)
	for i, c := range candles {
		if c.Low <= 0 {
			return nil, fmt.Errorf("compute features: non-positive low %.6f at %s: %w",
				c.Low, c.Bucket.Format("2006-01-02"), models.ErrDataFetch)
		}
		closes[i] = c.Close
		volumes[i] = c.Volume
	}

	ma7 := rollingMean(closes, maShort)
	ma21 := rollingMean(closes, maMid)
	ma50 := rollingMean(closes, maLong)
	rsi := relativeStrength(closes)
	bbPos := bollingerPosition(closes)
	vol := rollingStd(closes, volWindow)
	volMA := rollingMean(volumes, volMAWindow)

	out := &Matrix{
		Dates: make([]time.Time, 0, n),
		Rows:  make([][]float64, 0, n),
	}
	for i, c := range candles {
		row := make([]float64, Width)
		row[ColOpen] = c.Open
		row[ColHigh] = c.High
		row[ColLow] = c.Low
		row[ColClose] = c.Close
		row[ColVolume] = c.Volume
		row[ColMA7] = ma7[i]
		row[ColMA21] = ma21[i]
		row[ColMA50] = ma50[i]
		row[ColRSI] = rsi[i]
		row[ColBBPosition] = bbPos[i]
		row[ColVolatility] = vol[i]
		row[ColVolumeRatio] = volumeRatio(c.Volume, volMA[i])
		row[ColPriceChange] = priceChange(closes, i)
		row[ColHighLowRatio] = c.High / c.Low

		if hasNaN(row) {
			continue
		}
		out.Dates = append(out.Dates, c.Bucket)
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// rollingMean computes the trailing mean over window rows; positions with
// fewer than window trailing values are NaN.
func rollingMean(xs []float64, window int) []float64 {
	out := make([]float64, len(xs))
	sum := 0.0
	for i, x := range xs {
		sum += x
		if i >= window {
			sum -= xs[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// rollingStd computes the trailing sample standard deviation over window rows.
func rollingStd(xs []float64, window int) []float64 {
	out := make([]float64, len(xs))
	for i := range xs {
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		seg := xs[i-window+1 : i+1]
		mean := 0.0
		for _, v := range seg {
			mean += v
		}
		mean /= float64(window)
		ss := 0.0
		for _, v := range seg {
			d := v - mean
			ss += d * d
		}
		variance := ss / float64(window-1)
		if variance < 0 {
			variance = 0
		}
		out[i] = math.Sqrt(variance)
	}
	return out
}

// relativeStrength computes RSI(14) from trailing means of gains and losses.
// A zero mean loss yields rsi=100 (gain dominates) rather than an undefined
// value.
func relativeStrength(closes []float64) []float64 {
	n := len(closes)
	out := make([]float64, n)
	gains := make([]float64, n)
	losses := make([]float64, n)
	gains[0], losses[0] = math.NaN(), math.NaN()
	for i := 1; i < n; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}
	for i := range out {
		// trailing rsiWindow deltas; the first delta exists at index 1
		if i < rsiWindow {
			out[i] = math.NaN()
			continue
		}
		gain, loss := 0.0, 0.0
		for j := i - rsiWindow + 1; j <= i; j++ {
			gain += gains[j]
			loss += losses[j]
		}
		gain /= float64(rsiWindow)
		loss /= float64(rsiWindow)
		if loss == 0 {
			out[i] = 100
			continue
		}
		rs := gain / loss
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// bollingerPosition computes (close-lower)/(upper-lower) over a 20-row window
// with 2-sigma bands. Zero band width yields the midpoint 0.5.
func bollingerPosition(closes []float64) []float64 {
	mid := rollingMean(closes, bbWindow)
	std := rollingStd(closes, bbWindow)
	out := make([]float64, len(closes))
	for i := range closes {
		if math.IsNaN(mid[i]) || math.IsNaN(std[i]) {
			out[i] = math.NaN()
			continue
		}
		upper := mid[i] + 2*std[i]
		lower := mid[i] - 2*std[i]
		if upper == lower {
			out[i] = 0.5
			continue
		}
		out[i] = (closes[i] - lower) / (upper - lower)
	}
	return out
}

func volumeRatio(volume, volMA float64) float64 {
	if math.IsNaN(volMA) {
		return math.NaN()
	}
	if volMA == 0 {
		return 1.0
	}
	return volume / volMA
}

func priceChange(closes []float64, i int) float64 {
	if i == 0 {
		return math.NaN()
	}
	return closes[i]/closes[i-1] - 1
}

func hasNaN(row []float64) bool {
	for _, v := range row {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
