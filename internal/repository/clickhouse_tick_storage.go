package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/AnshNarg/bit-coin/internal/domain/models"
	"github.com/AnshNarg/bit-coin/internal/domain/repository"
)

// ClickHouseTickStorage implements TickStorage for ClickHouse.
type ClickHouseTickStorage struct {
	db    *sql.DB
	table string
}

// NewClickHouseTickStorage creates ClickHouse tick storage.
func NewClickHouseTickStorage(db *sql.DB, table string) repository.TickStorage {
	return &ClickHouseTickStorage{db: db, table: table}
}

func (s *ClickHouseTickStorage) Store(ctx context.Context, t *models.Trade) error {
	q := fmt.Sprintf("INSERT INTO %s (ts, symbol, price, volume, event_id) VALUES (?, ?, ?, ?, ?)", s.table)
	// event_id derived from symbol+timestamp keeps replays idempotent
	eventID := fmt.Sprintf("%s-%d", t.Symbol, t.Timestamp)
	_, err := s.db.ExecContext(ctx, q,
		time.Unix(t.Timestamp, 0),
		t.Symbol,
		t.Price,
		t.Volume,
		eventID,
	)
	return err
}

func (s *ClickHouseTickStorage) StoreBatch(ctx context.Context, trades []*models.Trade) error {
	if len(trades) == 0 {
		return nil
	}
	// Multi-row VALUES insert, chunked to bound statement size.
	const chunkSize = 2000
	for start := 0; start < len(trades); start += chunkSize {
		end := start + chunkSize
		if end > len(trades) {
			end = len(trades)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*5)
		for _, t := range trades[start:end] {
			if t == nil || t.Symbol == "" || t.Timestamp == 0 {
				continue
			}
			eventID := fmt.Sprintf("%s-%d", t.Symbol, t.Timestamp)
			values = append(values, "(?, ?, ?, ?, ?)")
			args = append(args,
				time.Unix(t.Timestamp, 0),
				t.Symbol,
				t.Price,
				t.Volume,
				eventID,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (ts, symbol, price, volume, event_id) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseTickStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseTickStorage) Close() error {
	return nil // pool owned by pkg/clickhouse
}
