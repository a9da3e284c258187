package forecast

import (
	"math"

	"github.com/AnshNarg/bit-coin/internal/domain/models"
)

// GenerateSignals converts a predicted price trajectory into per-day trading
// signals. Day i is compared against the previous trajectory point, day one
// against the current price. One signal per point, order preserved.
func GenerateSignals(predictions []float64, currentPrice float64) []models.TradingSignal {
	signals := make([]models.TradingSignal, 0, len(predictions))
	for i, price := range predictions {
		ref := currentPrice
		if i > 0 {
			ref = predictions[i-1]
		}
		changePct := (price - ref) / ref * 100
		signals = append(signals, models.TradingSignal{
			Day:        i + 1,
			Signal:     classify(changePct),
			Confidence: confidence(changePct),
			ChangePct:  round2(changePct),
		})
	}
	return signals
}

// classify maps a percent change onto a signal label. Boundaries are
// exclusive: exactly +5 is buy, exactly -5 is sell, exactly +-2 is hold.
func classify(changePct float64) string {
	switch {
	case changePct > 5:
		return models.SignalStrongBuy
	case changePct > 2:
		return models.SignalBuy
	case changePct < -5:
		return models.SignalStrongSell
	case changePct < -2:
		return models.SignalSell
	default:
		return models.SignalHold
	}
}

// confidence scales |change| into [0,1], saturating at 10 percent.
func confidence(changePct float64) float64 {
	c := math.Abs(changePct) / 10
	if c > 1 {
		return 1
	}
	return c
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
