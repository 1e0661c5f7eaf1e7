package production

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/comalice/statekeep/internal/core"
)

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("publisher closed")

// ChannelPublisher forwards lifecycle events to a Go channel.
// Non-blocking publish with drop on backpressure.
type ChannelPublisher struct {
	ch      chan<- core.Event
	mu      sync.Mutex
	closed  bool
	dropped int
}

// NewChannelPublisher creates a ChannelPublisher with the given output channel.
func NewChannelPublisher(ch chan<- core.Event) *ChannelPublisher {
	return &ChannelPublisher{ch: ch}
}

// Publish never blocks. mu is held across the send so Close cannot close
// the channel underneath it.
func (p *ChannelPublisher) Publish(ctx context.Context, event core.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPublisherClosed
	}
	select {
	case p.ch <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		p.dropped++
		return nil // Non-blocking drop
	}
}

// Dropped returns how many events were dropped on a full channel.
func (p *ChannelPublisher) Dropped() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}

// Close closes the output channel. It is safe to call more than once.
func (p *ChannelPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.ch)
	}
	return nil
}

// LogPublisher writes each event as a structured log record.
type LogPublisher struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogPublisher creates a LogPublisher; a nil logger uses slog.Default.
func NewLogPublisher(logger *slog.Logger, level slog.Level) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger, level: level}
}

func (p *LogPublisher) Publish(ctx context.Context, event core.Event) error {
	p.logger.LogAttrs(ctx, p.level, "lifecycle event",
		slog.String("kind", string(event.Kind)),
		slog.String("subject", event.Subject),
		slog.String("detail", event.Detail),
		slog.Time("at", event.Timestamp),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// MultiPublisher fans an event out to several publishers. Publish returns
// the first error but always tries every publisher.
type MultiPublisher []core.Publisher

func (m MultiPublisher) Publish(ctx context.Context, event core.Event) error {
	var first error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m MultiPublisher) Close() error {
	var first error
	for _, p := range m {
		if err := p.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
