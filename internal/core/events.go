// Package core defines the pluggable seams the components report through.
package core

import (
	"context"
	"time"
)

// EventKind names a lifecycle event.
type EventKind string

const (
	EventInternCreated    EventKind = "intern.created"
	EventInternReused     EventKind = "intern.reused"
	EventCloneCompleted   EventKind = "clone.completed"
	EventCloneFailed      EventKind = "clone.failed"
	EventSnapshotCaptured EventKind = "history.captured"
	EventRestoreRejected  EventKind = "history.rejected"
	EventRestored         EventKind = "history.restored"
	EventHistoryEmpty     EventKind = "history.empty"
)

// Event describes something a component did.
type Event struct {
	Kind EventKind `json:"kind" yaml:"kind"`
	// Subject is the canonical key, handle or snapshot ID the event is about.
	Subject   string    `json:"subject" yaml:"subject"`
	Detail    string    `json:"detail,omitempty" yaml:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// Publisher receives lifecycle events. Publish must not block for long; the
// components call it synchronously.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// CloneMode distinguishes shallow and deep clones in metrics.
type CloneMode string

const (
	CloneShallow CloneMode = "shallow"
	CloneDeep    CloneMode = "deep"
)

// RestoreResult labels one restore attempt in metrics.
type RestoreResult string

const (
	RestoreAccepted RestoreResult = "accepted"
	RestoreRejected RestoreResult = "rejected"
)

// Metrics observes component activity. Implementations must be safe for
// concurrent use; the interner calls them from many goroutines.
type Metrics interface {
	InternServed(outcome Outcome)
	CloneFinished(mode CloneMode, entities int, err error)
	SnapshotCaptured(depth int)
	RestoreAttempted(result RestoreResult)
}

type nopMetrics struct{}

func (nopMetrics) InternServed(Outcome)                {}
func (nopMetrics) CloneFinished(CloneMode, int, error) {}
func (nopMetrics) SnapshotCaptured(int)                {}
func (nopMetrics) RestoreAttempted(RestoreResult)      {}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) error { return nil }
func (nopPublisher) Close() error                         { return nil }
