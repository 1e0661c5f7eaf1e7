// Package core defines the error taxonomy of the lifecycle components.
package core

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/comalice/statekeep/internal/primitives"
)

var (
	// ErrEmptyHistory signals Undo on a history with no snapshots. Like
	// io.EOF it is a condition, not a fault: state is left unchanged.
	ErrEmptyHistory = errors.New("empty history")

	// ErrNoValidState is returned when every snapshot was rejected and the
	// history is now empty.
	ErrNoValidState = errors.New("no valid prior state available")

	// ErrRestoreAttemptsExceeded is returned when the configured restore
	// attempt cap is reached before any snapshot was accepted.
	ErrRestoreAttemptsExceeded = errors.New("restore attempts exceeded")

	// ErrCloneExhausted is returned when a deep clone would allocate more
	// entities than allowed. No partial clone survives the call.
	ErrCloneExhausted = errors.New("clone exhausted entity budget")

	// ErrInvalidHandle re-exports the arena error for callers of core.
	ErrInvalidHandle = primitives.ErrInvalidHandle
)

// RestoreRejectedError records one snapshot the originator refused.
type RestoreRejectedError struct {
	SnapshotID uuid.UUID
	Err        error
}

func (e *RestoreRejectedError) Error() string {
	return fmt.Sprintf("snapshot %s rejected: %v", e.SnapshotID, e.Err)
}

func (e *RestoreRejectedError) Unwrap() error { return e.Err }
