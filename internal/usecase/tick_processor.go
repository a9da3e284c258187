package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/AnshNarg/bit-coin/internal/domain/models"
	drepo "github.com/AnshNarg/bit-coin/internal/domain/repository"
)

// TickProcessor buffers live ticks and persists them in batches. A batch is
// written once it reaches batchSz trades or once batchTO has elapsed since
// the last flush, whichever comes first.
type TickProcessor struct {
	store   drepo.TickStorage
	metrics drepo.Metrics
	batchSz int
	batchTO time.Duration

	mu        sync.Mutex
	buf       []*models.Trade
	lastFlush time.Time
}

// NewTickProcessor creates a new TickProcessor instance.
func NewTickProcessor(store drepo.TickStorage, metrics drepo.Metrics, batchSz int, batchTO time.Duration) *TickProcessor {
	if batchSz <= 0 {
		batchSz = 1
	}
	return &TickProcessor{
		store:     store,
		metrics:   metrics,
		batchSz:   batchSz,
		batchTO:   batchTO,
		lastFlush: time.Now(),
	}
}

// Process buffers a single tick, flushing the batch when full or stale.
func (p *TickProcessor) Process(ctx context.Context, t *models.Trade) error {
	if t == nil {
		return fmt.Errorf("trade is nil")
	}

	p.mu.Lock()
	p.buf = append(p.buf, t)
	var batch []*models.Trade
	if len(p.buf) >= p.batchSz || time.Since(p.lastFlush) >= p.batchTO {
		batch = p.buf
		p.buf = nil
		p.lastFlush = time.Now()
	}
	p.mu.Unlock()

	if batch == nil {
		return nil
	}
	return p.ProcessBatch(ctx, batch)
}

// ProcessBatch persists multiple ticks in a batch.
func (p *TickProcessor) ProcessBatch(ctx context.Context, trades []*models.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	start := time.Now()
	if err := p.store.StoreBatch(ctx, trades); err != nil {
		p.metrics.RecordError("tick_store_batch")
		return fmt.Errorf("process tick batch: %w", err)
	}
	p.metrics.RecordLatency("tick_store_batch", time.Since(start).Seconds())
	return nil
}

// Flush writes out any buffered ticks regardless of batch size.
func (p *TickProcessor) Flush(ctx context.Context) error {
	p.mu.Lock()
	batch := p.buf
	p.buf = nil
	p.lastFlush = time.Now()
	p.mu.Unlock()
	return p.ProcessBatch(ctx, batch)
}

// Close flushes the remaining buffer and releases underlying resources.
func (p *TickProcessor) Close() {
	_ = p.Flush(context.Background())
	if p.store != nil {
		_ = p.store.Close()
	}
}
