package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/AnshNarg/bit-coin/internal/domain/models"
)

type fakeTickStorage struct {
	mu      sync.Mutex
	stored  []*models.Trade
	batches int
	err     error
}

func (s *fakeTickStorage) Store(ctx context.Context, t *models.Trade) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	s.stored = append(s.stored, t)
	s.mu.Unlock()
	return nil
}

func (s *fakeTickStorage) StoreBatch(ctx context.Context, trades []*models.Trade) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	s.stored = append(s.stored, trades...)
	s.batches++
	s.mu.Unlock()
	return nil
}

func (s *fakeTickStorage) Health(ctx context.Context) error { return nil }
func (s *fakeTickStorage) Close() error                     { return nil }

func (s *fakeTickStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stored)
}

func tick(sym string, ts int64, price float64) *models.Trade {
	return &models.Trade{Symbol: sym, Timestamp: ts, Price: price, Volume: 0.5}
}

func TestTickProcessorBuffersUntilBatchFull(t *testing.T) {
	store := &fakeTickStorage{}
	p := NewTickProcessor(store, &nopMetrics{}, 3, time.Hour)

	ctx := context.Background()
	if err := p.Process(ctx, tick("BTC-USD", 1, 42000)); err != nil {
		t.Fatalf("process: %v", err)
	}
	if err := p.Process(ctx, tick("BTC-USD", 2, 42001)); err != nil {
		t.Fatalf("process: %v", err)
	}
	if store.count() != 0 {
		t.Fatalf("ticks persisted before batch filled: %d", store.count())
	}

	if err := p.Process(ctx, tick("BTC-USD", 3, 42002)); err != nil {
		t.Fatalf("process: %v", err)
	}
	if store.count() != 3 || store.batches != 1 {
		t.Fatalf("stored=%d batches=%d, want 3/1", store.count(), store.batches)
	}
}

func TestTickProcessorFlushesOnInterval(t *testing.T) {
	store := &fakeTickStorage{}
	p := NewTickProcessor(store, &nopMetrics{}, 100, 5*time.Millisecond)

	ctx := context.Background()
	time.Sleep(10 * time.Millisecond)
	if err := p.Process(ctx, tick("ETH-USD", 1, 3000)); err != nil {
		t.Fatalf("process: %v", err)
	}
	if store.count() != 1 {
		t.Fatalf("stale buffer not flushed: stored=%d", store.count())
	}
}

func TestTickProcessorFlushDrainsBuffer(t *testing.T) {
	store := &fakeTickStorage{}
	p := NewTickProcessor(store, &nopMetrics{}, 100, time.Hour)

	ctx := context.Background()
	_ = p.Process(ctx, tick("BTC-USD", 1, 42000))
	if store.count() != 0 {
		t.Fatalf("expected buffered tick, stored=%d", store.count())
	}
	if err := p.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if store.count() != 1 {
		t.Fatalf("stored=%d after flush", store.count())
	}

	// empty flush is a no-op
	if err := p.Flush(ctx); err != nil {
		t.Fatalf("empty flush: %v", err)
	}
	if store.batches != 1 {
		t.Fatalf("batches=%d", store.batches)
	}
}

func TestTickProcessorNilTrade(t *testing.T) {
	p := NewTickProcessor(&fakeTickStorage{}, &nopMetrics{}, 100, time.Second)
	if err := p.Process(context.Background(), nil); err == nil {
		t.Fatalf("expected error on nil trade")
	}
}

func TestTickProcessorStoreError(t *testing.T) {
	m := &nopMetrics{}
	p := NewTickProcessor(&fakeTickStorage{err: fmt.Errorf("insert failed")}, m, 1, time.Second)
	if err := p.Process(context.Background(), tick("BTC-USD", 1, 42000)); err == nil {
		t.Fatalf("expected error")
	}
	if len(m.errs) == 0 {
		t.Fatalf("expected recorded error")
	}
}

func TestTickProcessorBatch(t *testing.T) {
	store := &fakeTickStorage{}
	p := NewTickProcessor(store, &nopMetrics{}, 100, time.Second)

	trades := []*models.Trade{
		tick("BTC-USD", 1, 1),
		tick("ETH-USD", 2, 2),
	}
	if err := p.ProcessBatch(context.Background(), trades); err != nil {
		t.Fatalf("batch: %v", err)
	}
	if store.batches != 1 || store.count() != 2 {
		t.Fatalf("batches=%d stored=%d", store.batches, store.count())
	}

	if err := p.ProcessBatch(context.Background(), nil); err != nil {
		t.Fatalf("empty batch should be a no-op: %v", err)
	}
}
