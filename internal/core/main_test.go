package core

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recordingPublisher collects published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(_ context.Context, e Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) kinds() []EventKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]EventKind, len(p.events))
	for i, e := range p.events {
		out[i] = e.Kind
	}
	return out
}

// countingMetrics tallies metric calls.
type countingMetrics struct {
	mu       sync.Mutex
	outcomes map[Outcome]int
	clones   map[CloneMode]int
	failures int
	captured int
	restores map[RestoreResult]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{
		outcomes: map[Outcome]int{},
		clones:   map[CloneMode]int{},
		restores: map[RestoreResult]int{},
	}
}

func (m *countingMetrics) InternServed(o Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[o]++
}

func (m *countingMetrics) CloneFinished(mode CloneMode, _ int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.failures++
		return
	}
	m.clones[mode]++
}

func (m *countingMetrics) SnapshotCaptured(int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.captured++
}

func (m *countingMetrics) RestoreAttempted(r RestoreResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restores[r]++
}
