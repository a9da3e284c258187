package usecase

import (
	"context"
	"fmt"

	"github.com/AnshNarg/bit-coin/internal/domain/models"
	domrepo "github.com/AnshNarg/bit-coin/internal/domain/repository"
)

// CandlesUseCase provides business logic for retrieving daily candles.
type CandlesUseCase struct {
	store domrepo.CandleStore
}

func NewCandlesUseCase(store domrepo.CandleStore) *CandlesUseCase {
	return &CandlesUseCase{store: store}
}

type GetCandlesResult struct {
	Symbol  string          `json:"symbol"`
	Count   int             `json:"count"`
	Candles []models.Candle `json:"candles"`
}

func (uc *CandlesUseCase) GetLatestDaily(ctx context.Context, symbol string, n int) (*GetCandlesResult, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol required: %w", models.ErrInvalidRequest)
	}
	if n <= 0 {
		n = 365
	}
	if n > 5000 {
		n = 5000
	}

	candles, err := uc.store.GetLatestNDaily(ctx, symbol, n)
	if err != nil {
		return nil, fmt.Errorf("get candles: %v: %w", err, models.ErrDataFetch)
	}

	return &GetCandlesResult{
		Symbol:  symbol,
		Count:   len(candles),
		Candles: candles,
	}, nil
}
