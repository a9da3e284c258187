package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/AnshNarg/bit-coin/internal/domain/models"
	pkgch "github.com/AnshNarg/bit-coin/pkg/clickhouse"
	applogger "github.com/AnshNarg/bit-coin/pkg/logger"
)

const dailyCandleTable = "bitcoin.daily_candles"

// CHCandleStore implements CandleStore backed by ClickHouse.
type CHCandleStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHCandleStore(ch *pkgch.Client) *CHCandleStore {
	return &CHCandleStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHCandleStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHCandleStore) GetDailyCandles(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error) {
	start := time.Now()
	const q = `
        SELECT bucket, symbol, open, high, low, close, vol
        FROM ` + dailyCandleTable + `
        WHERE symbol = ? AND bucket >= ? AND bucket <= ?
        ORDER BY bucket ASC
    `
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse daily_candles query error",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get daily candles: %w", err)
	}
	defer rows.Close()

	out := make([]models.Candle, 0, 1024)
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Bucket, &c.Symbol, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse daily_candles ok",
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHCandleStore) GetLatestNDaily(ctx context.Context, symbol string, n int) ([]models.Candle, error) {
	start := time.Now()
	const q = `
        SELECT bucket, symbol, open, high, low, close, vol
        FROM ` + dailyCandleTable + `
        WHERE symbol = ?
        ORDER BY bucket DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, q, symbol, n)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse latest_daily query error",
				applogger.String("symbol", symbol),
				applogger.Int("limit", n),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get latest daily candles: %w", err)
	}
	defer rows.Close()

	tmp := make([]models.Candle, 0, n)
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Bucket, &c.Symbol, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		tmp = append(tmp, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	// reverse to ASC
	for i, j := 0, len(tmp)-1; i < j; i, j = i+1, j-1 {
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}
	if s.l != nil {
		s.l.Info("clickhouse latest_daily ok",
			applogger.String("symbol", symbol),
			applogger.Int("limit", n),
			applogger.Int("rows", len(tmp)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return tmp, nil
}
