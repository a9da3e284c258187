package usecase

import (
	"context"
	"sync"

	"github.com/AnshNarg/bit-coin/internal/domain/models"
	drepo "github.com/AnshNarg/bit-coin/internal/domain/repository"
)

// TickCollector collects trades from the market stream and persists them.
type TickCollector struct {
	stream  drepo.MarketStream
	proc    *TickProcessor
	metrics drepo.Metrics

	stop     chan struct{}
	stopOnce sync.Once
}

// NewTickCollector creates a new TickCollector instance.
func NewTickCollector(stream drepo.MarketStream, proc *TickProcessor, metrics drepo.Metrics) *TickCollector {
	return &TickCollector{stream: stream, proc: proc, metrics: metrics, stop: make(chan struct{})}
}

// IsConnected returns true if the market stream is connected.
func (c *TickCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *TickCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	trCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, trCh, errCh)
	return nil
}

// consume drains the stream channels. The read loop exits on any transport
// error, so after a reconnect the channels must be re-issued; a closed
// channel is replaced with nil so the select stays blocking.
func (c *TickCollector) consume(ctx context.Context, trCh <-chan *models.Trade, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stop:
			return
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				if trCh == nil {
					return
				}
				continue
			}
			if err == nil {
				continue
			}
			c.metrics.RecordError("stream")
			trCh, errCh = c.reopen(ctx)
			if trCh == nil {
				return
			}
		case t, ok := <-trCh:
			if !ok {
				trCh = nil
				if errCh == nil {
					return
				}
				continue
			}
			if t == nil {
				continue
			}
			_ = c.proc.Process(ctx, t)
			c.metrics.RecordLastPrice(t.Symbol, t.Price)
		}
	}
}

// reopen re-establishes the stream and returns fresh channels. Reconnect
// sleeps the configured delay between attempts, so this loop does not spin.
// Returns nil channels once the collector is cancelled or stopped.
func (c *TickCollector) reopen(ctx context.Context) (<-chan *models.Trade, <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return nil, nil
		case <-c.stop:
			return nil, nil
		default:
		}
		if err := c.stream.Reconnect(ctx); err != nil {
			c.metrics.RecordError("stream_reconnect")
			continue
		}
		return c.stream.Read(ctx)
	}
}

// Processor returns the underlying TickProcessor for lifecycle management.
func (c *TickCollector) Processor() *TickProcessor { return c.proc }

// Shutdown stops the consume loop and closes the stream.
func (c *TickCollector) Shutdown(ctx context.Context) error {
	c.stopOnce.Do(func() { close(c.stop) })
	return c.stream.Close()
}
