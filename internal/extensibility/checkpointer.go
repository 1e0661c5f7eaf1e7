package extensibility

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/comalice/statekeep/internal/core"
)

// Capturer is the part of a History a Checkpointer drives.
type Capturer interface {
	Capture(ctx context.Context) (core.Summary, error)
}

// Checkpointer captures a snapshot on every tick until stopped.
// Capture failures are logged and the loop keeps going.
type Checkpointer struct {
	target Capturer
	ticker *time.Ticker
	logger *slog.Logger
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once

	mu       sync.Mutex
	captured int
	failed   int
}

// NewCheckpointer starts a Checkpointer that captures target every d.
// d must be positive.
func NewCheckpointer(ctx context.Context, target Capturer, d time.Duration, logger *slog.Logger) (*Checkpointer, error) {
	if d <= 0 {
		return nil, fmt.Errorf("checkpoint interval must be positive, got %s", d)
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Checkpointer{
		target: target,
		ticker: time.NewTicker(d),
		logger: logger,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go c.run(ctx)
	return c, nil
}

func (c *Checkpointer) run(ctx context.Context) {
	defer close(c.done)
	defer c.ticker.Stop()
	for {
		select {
		case <-c.ticker.C:
			sum, err := c.target.Capture(ctx)
			c.mu.Lock()
			if err != nil {
				c.failed++
			} else {
				c.captured++
			}
			c.mu.Unlock()
			if err != nil {
				c.logger.Warn("checkpoint failed", slog.String("error", err.Error()))
				continue
			}
			c.logger.Debug("checkpoint", slog.String("summary", sum.String()))
		case <-c.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Counts returns how many checkpoints succeeded and failed so far.
func (c *Checkpointer) Counts() (captured, failed int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.captured, c.failed
}

// Stop halts the ticker and waits for the loop to exit. Safe to call twice.
func (c *Checkpointer) Stop() {
	c.once.Do(func() { close(c.stop) })
	<-c.done
}
