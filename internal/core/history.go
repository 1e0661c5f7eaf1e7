// Package core provides History, which keeps an ordered stack of snapshots
// of one originator and restores them on undo.
package core

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Originator is anything whose state can be captured and re-applied.
//
// CaptureState returns the current state; History copies it before
// storing, so the originator may return internal references. ApplyState
// replaces the live state, or returns an error to reject the snapshot
// (for example when it fails validation) and leave the live state as is.
type Originator[S any] interface {
	CaptureState() (S, error)
	ApplyState(S) error
}

// HistoryState is the coarse state of a History.
type HistoryState int

const (
	Empty HistoryState = iota
	HasSnapshots
)

func (s HistoryState) String() string {
	if s == HasSnapshots {
		return "has-snapshots"
	}
	return "empty"
}

// SummaryTimeLayout formats snapshot timestamps in summaries.
const SummaryTimeLayout = "2006-01-02 15:04:05.000000"

// Summary is the read-only, state-free view of one snapshot.
type Summary struct {
	ID         uuid.UUID `json:"id" yaml:"id"`
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
	Descriptor string    `json:"descriptor" yaml:"descriptor"`
}

// String renders "<timestamp> - <descriptor>".
func (s Summary) String() string {
	return s.Timestamp.Format(SummaryTimeLayout) + " - " + s.Descriptor
}

// Snapshot is an opaque, timestamped copy of an originator's state. Only
// the History that took it can hand its state back to the originator.
type Snapshot[S any] struct {
	id         uuid.UUID
	taken      time.Time
	descriptor string
	state      S
}

func (s *Snapshot[S]) ID() uuid.UUID { return s.id }

func (s *Snapshot[S]) Timestamp() time.Time { return s.taken }

func (s *Snapshot[S]) Summary() Summary {
	return Summary{ID: s.id, Timestamp: s.taken, Descriptor: s.descriptor}
}

// UndoResult reports what one Undo call did.
type UndoResult struct {
	// Restored is the snapshot the originator accepted; zero if none was.
	Restored Summary
	// Rejected lists, newest first, every snapshot refused on the way.
	Rejected []*RestoreRejectedError
	// Attempts counts ApplyState calls.
	Attempts int
}

// History is the caretaker of one originator's snapshots, most recent last.
// Snapshots are pushed only by Capture and popped only by Undo.
//
// Thread Safety:
//
//	The snapshot stack is guarded by a mutex, but the originator is called
//	while holding it; callers must not operate on the same originator
//	from other goroutines during Capture or Undo.
type History[S any] struct {
	mu         sync.RWMutex
	originator Originator[S]
	stack      []*Snapshot[S]
	copy       Copier[S]
	describe   func(S) string
	cfg        config
}

// NewHistory creates an empty History for o.
func NewHistory[S any](o Originator[S], opts ...Option) *History[S] {
	h := &History[S]{
		originator: o,
		copy:       DefaultCopier[S](),
		describe:   func(s S) string { return fmt.Sprint(s) },
		cfg:        newConfig(opts),
	}
	if h.cfg.copier != nil {
		if c, ok := h.cfg.copier.(Copier[S]); ok {
			h.copy = c
		} else {
			h.cfg.logger.Warn("history: copier ignored, state type mismatch", slog.String("copier", fmt.Sprintf("%T", h.cfg.copier)))
		}
	}
	if h.cfg.describer != nil {
		if d, ok := h.cfg.describer.(func(S) string); ok {
			h.describe = d
		} else {
			h.cfg.logger.Warn("history: describer ignored, state type mismatch", slog.String("describer", fmt.Sprintf("%T", h.cfg.describer)))
		}
	}
	return h
}

// Capture copies the originator's current state onto the stack.
func (h *History[S]) Capture(ctx context.Context) (Summary, error) {
	state, err := h.originator.CaptureState()
	if err != nil {
		return Summary{}, fmt.Errorf("capture state: %w", err)
	}
	cp, err := h.copy(state)
	if err != nil {
		return Summary{}, fmt.Errorf("copy state: %w", err)
	}

	snap := &Snapshot[S]{
		id:         uuid.New(),
		taken:      h.cfg.now(),
		descriptor: truncate(h.describe(cp), h.cfg.summaryWidth),
		state:      cp,
	}

	h.mu.Lock()
	h.stack = append(h.stack, snap)
	depth := len(h.stack)
	h.mu.Unlock()

	sum := snap.Summary()
	h.cfg.metrics.SnapshotCaptured(depth)
	h.cfg.logger.Debug("history: captured snapshot", slog.String("snapshot", sum.String()), slog.Int("depth", depth))
	h.publish(ctx, EventSnapshotCaptured, snap.id.String(), sum.Descriptor)
	return sum, nil
}

// Undo pops the newest snapshot and applies it. If the originator rejects
// it, the snapshot is discarded and the next older one is tried, until one
// is accepted or none remain.
//
// Errors:
//
//	ErrEmptyHistory - nothing to undo; state unchanged
//	ErrNoValidState - every remaining snapshot was rejected; the history is
//	                  now empty and the error joins each rejection
//	ErrRestoreAttemptsExceeded - the attempt cap was hit; snapshots not yet
//	                  tried stay on the stack
func (h *History[S]) Undo(ctx context.Context) (UndoResult, error) {
	ctx, span := h.cfg.tracer.Start(ctx, "core.History.Undo")
	defer span.End()

	h.mu.Lock()
	defer h.mu.Unlock()

	var res UndoResult
	if len(h.stack) == 0 {
		h.cfg.logger.Info("history: empty history")
		h.publish(ctx, EventHistoryEmpty, "", "")
		return res, ErrEmptyHistory
	}

	limit := h.cfg.maxRestoreAttempts
	for len(h.stack) > 0 {
		if limit > 0 && res.Attempts >= limit {
			err := h.failure(ErrRestoreAttemptsExceeded, res)
			span.SetStatus(codes.Error, err.Error())
			return res, err
		}

		snap := h.stack[len(h.stack)-1]
		h.stack[len(h.stack)-1] = nil
		h.stack = h.stack[:len(h.stack)-1]
		res.Attempts++

		sum := snap.Summary()
		h.cfg.logger.Debug("history: restoring", slog.String("snapshot", sum.String()))
		if err := h.originator.ApplyState(snap.state); err != nil {
			rej := &RestoreRejectedError{SnapshotID: snap.id, Err: err}
			res.Rejected = append(res.Rejected, rej)
			h.cfg.metrics.RestoreAttempted(RestoreRejected)
			h.cfg.logger.Warn("history: restore rejected, trying previous snapshot",
				slog.String("snapshot", sum.String()),
				slog.Any("error", err))
			h.publish(ctx, EventRestoreRejected, snap.id.String(), err.Error())
			continue
		}

		res.Restored = sum
		h.cfg.metrics.RestoreAttempted(RestoreAccepted)
		h.cfg.logger.Info("history: restored", slog.String("snapshot", sum.String()), slog.Int("attempts", res.Attempts))
		h.publish(ctx, EventRestored, snap.id.String(), sum.Descriptor)
		span.SetAttributes(attribute.Int("history.attempts", res.Attempts))
		return res, nil
	}

	err := h.failure(ErrNoValidState, res)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return res, err
}

func (h *History[S]) failure(sentinel error, res UndoResult) error {
	errs := make([]error, len(res.Rejected))
	for i, r := range res.Rejected {
		errs[i] = r
	}
	h.cfg.logger.Error("history: undo failed", slog.Any("error", sentinel), slog.Int("attempts", res.Attempts))
	return fmt.Errorf("%w after %d attempts: %w", sentinel, res.Attempts, errors.Join(errs...))
}

// Summaries yields snapshot summaries from oldest to newest. Each call to
// the returned sequence reads the stack afresh; the stack is not mutated.
func (h *History[S]) Summaries() iter.Seq[Summary] {
	return func(yield func(Summary) bool) {
		h.mu.RLock()
		snaps := make([]*Snapshot[S], len(h.stack))
		copy(snaps, h.stack)
		h.mu.RUnlock()

		for _, s := range snaps {
			if !yield(s.Summary()) {
				return
			}
		}
	}
}

// Len returns the number of stored snapshots.
func (h *History[S]) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.stack)
}

// State reports Empty or HasSnapshots.
func (h *History[S]) State() HistoryState {
	if h.Len() == 0 {
		return Empty
	}
	return HasSnapshots
}

// Clear discards every snapshot.
func (h *History[S]) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	clear(h.stack)
	h.stack = h.stack[:0]
}

func (h *History[S]) publish(ctx context.Context, kind EventKind, subject, detail string) {
	_ = h.cfg.publisher.Publish(ctx, Event{
		Kind:      kind,
		Subject:   subject,
		Detail:    detail,
		Timestamp: h.cfg.now(),
	})
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width])
}
