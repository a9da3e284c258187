package forecast

import (
	"testing"

	"github.com/AnshNarg/bit-coin/internal/domain/models"
)

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		changePct float64
		want      string
	}{
		{5.01, models.SignalStrongBuy},
		{5.00, models.SignalBuy},
		{2.01, models.SignalBuy},
		{2.00, models.SignalHold},
		{0, models.SignalHold},
		{-2.00, models.SignalHold},
		{-2.01, models.SignalSell},
		{-5.00, models.SignalSell},
		{-5.01, models.SignalStrongSell},
	}
	for _, tc := range cases {
		if got := classify(tc.changePct); got != tc.want {
			t.Fatalf("classify(%v) = %s, want %s", tc.changePct, got, tc.want)
		}
	}
}

func TestConfidenceSaturates(t *testing.T) {
	if got := confidence(4); got != 0.4 {
		t.Fatalf("confidence(4) = %v, want 0.4", got)
	}
	if got := confidence(-25); got != 1 {
		t.Fatalf("confidence(-25) = %v, want 1", got)
	}
}

func TestGenerateSignals(t *testing.T) {
	signals := GenerateSignals([]float64{104, 104, 110}, 100)
	if len(signals) != 3 {
		t.Fatalf("len = %d, want 3", len(signals))
	}

	// day 1 compared against the current price
	if signals[0].Day != 1 || signals[0].Signal != models.SignalBuy {
		t.Fatalf("day1 = %+v, want day 1 buy", signals[0])
	}
	if signals[0].ChangePct != 4.00 {
		t.Fatalf("day1 change = %v, want 4.00", signals[0].ChangePct)
	}
	if signals[0].Confidence != 0.4 {
		t.Fatalf("day1 confidence = %v, want 0.4", signals[0].Confidence)
	}

	// day 2 compared against day 1: flat
	if signals[1].Day != 2 || signals[1].Signal != models.SignalHold || signals[1].ChangePct != 0 {
		t.Fatalf("day2 = %+v, want day 2 hold 0", signals[1])
	}

	// day 3: (110-104)/104 = 5.769..., rounds to 5.77
	if signals[2].Signal != models.SignalStrongBuy {
		t.Fatalf("day3 = %+v, want strong_buy", signals[2])
	}
	if signals[2].ChangePct != 5.77 {
		t.Fatalf("day3 change = %v, want 5.77", signals[2].ChangePct)
	}
}

func TestGenerateSignalsEmpty(t *testing.T) {
	if got := GenerateSignals(nil, 100); len(got) != 0 {
		t.Fatalf("expected no signals, got %v", got)
	}
}
