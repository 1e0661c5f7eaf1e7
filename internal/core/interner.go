// Package core provides the Interner, which canonicalizes structurally equal
// shared state into a single instance.
package core

import (
	"context"
	"iter"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/comalice/statekeep/internal/primitives"
)

// Outcome reports how an Intern call was served.
type Outcome int

const (
	Created Outcome = iota + 1
	Reused
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Reused:
		return "reused"
	default:
		return "unknown"
	}
}

// InternStats is a point-in-time view of interner activity.
type InternStats struct {
	Size    int   `json:"size" yaml:"size"`
	Created int64 `json:"created" yaml:"created"`
	Reused  int64 `json:"reused" yaml:"reused"`
}

// Interner maps field multisets to one canonical SharedState per
// CanonicalKey.
//
// Thread Safety:
//
//	Safe for concurrent use. Lookups take a read lock; a miss upgrades to
//	the write lock and re-checks before inserting, so racing first-use
//	calls for equal fields always agree on a single instance.
//
// Entries are never evicted; an Interner lives as long as its owner keeps it.
type Interner struct {
	mu     sync.RWMutex
	states map[primitives.CanonicalKey]*primitives.SharedState

	created atomic.Int64
	reused  atomic.Int64

	cfg config
}

// NewInterner creates an Interner and interns any preloaded field sets.
// Preloading counts as creation in Stats.
func NewInterner(opts ...Option) *Interner {
	i := &Interner{
		states: make(map[primitives.CanonicalKey]*primitives.SharedState),
		cfg:    newConfig(opts),
	}
	for _, fields := range i.cfg.preload {
		i.Intern(fields...)
	}
	return i
}

// Intern returns the canonical SharedState for fields, creating it on first
// use. Field order does not matter.
func (i *Interner) Intern(fields ...primitives.Scalar) (*primitives.SharedState, Outcome) {
	key := primitives.ComputeKey(fields)

	i.mu.RLock()
	s, ok := i.states[key]
	i.mu.RUnlock()
	if ok {
		i.served(key, Reused)
		return s, Reused
	}

	i.mu.Lock()
	if s, ok = i.states[key]; ok {
		i.mu.Unlock()
		i.served(key, Reused)
		return s, Reused
	}
	s = primitives.NewSharedState(fields)
	i.states[key] = s
	i.mu.Unlock()

	i.served(key, Created)
	return s, Created
}

// Preload interns each field set. It is the runtime counterpart of
// WithPreload.
func (i *Interner) Preload(sets ...[]primitives.Scalar) {
	for _, fields := range sets {
		i.Intern(fields...)
	}
}

// Lookup returns the canonical instance for fields without creating one.
func (i *Interner) Lookup(fields ...primitives.Scalar) (*primitives.SharedState, bool) {
	key := primitives.ComputeKey(fields)
	i.mu.RLock()
	defer i.mu.RUnlock()
	s, ok := i.states[key]
	return s, ok
}

// Canonical returns the interned instance equal to s, interning s's fields
// if needed. A nil s stays nil.
func (i *Interner) Canonical(s *primitives.SharedState) *primitives.SharedState {
	if s == nil {
		return nil
	}
	c, _ := i.Intern(s.Fields()...)
	return c
}

// Len returns the number of canonical instances.
func (i *Interner) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.states)
}

// Stats returns counters since construction.
func (i *Interner) Stats() InternStats {
	return InternStats{
		Size:    i.Len(),
		Created: i.created.Load(),
		Reused:  i.reused.Load(),
	}
}

// All yields every canonical instance in key order. The set of keys is
// fixed when iteration starts; instances created meanwhile are not visited.
func (i *Interner) All() iter.Seq2[primitives.CanonicalKey, *primitives.SharedState] {
	return func(yield func(primitives.CanonicalKey, *primitives.SharedState) bool) {
		i.mu.RLock()
		keys := slices.SortedFunc(maps.Keys(i.states), func(a, b primitives.CanonicalKey) int {
			return slices.Compare(a[:], b[:])
		})
		states := make([]*primitives.SharedState, len(keys))
		for n, k := range keys {
			states[n] = i.states[k]
		}
		i.mu.RUnlock()

		for n, k := range keys {
			if !yield(k, states[n]) {
				return
			}
		}
	}
}

func (i *Interner) served(key primitives.CanonicalKey, outcome Outcome) {
	kind := EventInternReused
	if outcome == Created {
		i.created.Add(1)
		kind = EventInternCreated
		i.cfg.logger.Debug("interner: created shared state", slog.String("key", key.Short()))
	} else {
		i.reused.Add(1)
		i.cfg.logger.Debug("interner: reusing shared state", slog.String("key", key.Short()))
	}
	i.cfg.metrics.InternServed(outcome)
	_ = i.cfg.publisher.Publish(context.Background(), Event{
		Kind:      kind,
		Subject:   key.String(),
		Timestamp: i.cfg.now(),
	})
}
