// Package statekeep manages entity state in three ways: interning
// identical shared state so it is stored once, cloning entity graphs
// shallowly or deeply (cycles and shared references included), and keeping
// an undo history of an originator's snapshots.
//
// The building blocks live in internal packages; this package re-exports
// them under one import:
//
//	in := statekeep.NewInterner()
//	model, _ := in.Intern(statekeep.Texts("BMW", "X6", "black")...)
//
//	a := statekeep.NewArena()
//	car := a.New()
//	_ = a.Set(car, "model", statekeep.SharedValue(model))
//	copy, err := statekeep.NewCloner().Deep(ctx, a, car)
//
//	h := statekeep.NewHistory[string](editor)
//	_, _ = h.Capture(ctx)
//	_, err = h.Undo(ctx)
package statekeep

import (
	"github.com/comalice/statekeep/internal/core"
	"github.com/comalice/statekeep/internal/primitives"
)

// Data model.
type (
	Scalar       = primitives.Scalar
	Kind         = primitives.Kind
	Value        = primitives.Value
	ValueKind    = primitives.ValueKind
	Handle       = primitives.Handle
	Arena        = primitives.Arena
	SharedState  = primitives.SharedState
	CanonicalKey = primitives.CanonicalKey
	Config       = primitives.Config
)

// Components.
type (
	Interner             = core.Interner
	InternStats          = core.InternStats
	Outcome              = core.Outcome
	Cloner               = core.Cloner
	Memo                 = core.Memo
	Graph                = core.Graph
	GraphOriginator      = core.GraphOriginator
	Summary              = core.Summary
	UndoResult           = core.UndoResult
	HistoryState         = core.HistoryState
	RestoreRejectedError = core.RestoreRejectedError
	Option               = core.Option
	Event                = core.Event
	EventKind            = core.EventKind
	Publisher            = core.Publisher
	Metrics              = core.Metrics
)

// History is the caretaker of an Originator's snapshots.
type History[S any] = core.History[S]

// Originator produces and accepts copies of its own state.
type Originator[S any] = core.Originator[S]

// Copier duplicates a state so a snapshot never aliases live data.
type Copier[S any] = core.Copier[S]

const (
	Created = core.Created
	Reused  = core.Reused

	Empty        = core.Empty
	HasSnapshots = core.HasSnapshots
)

var (
	ErrEmptyHistory            = core.ErrEmptyHistory
	ErrNoValidState            = core.ErrNoValidState
	ErrRestoreAttemptsExceeded = core.ErrRestoreAttemptsExceeded
	ErrCloneExhausted          = core.ErrCloneExhausted
	ErrInvalidHandle           = core.ErrInvalidHandle
)

// Scalar and value constructors.
var (
	Text        = primitives.Text
	Int         = primitives.Int
	Float       = primitives.Float
	Bool        = primitives.Bool
	Texts       = primitives.Texts
	ScalarValue = primitives.ScalarValue
	RefValue    = primitives.RefValue
	ListValue   = primitives.ListValue
	SetValue    = primitives.SetValue
	SharedValue = primitives.SharedValue
	NewArena    = primitives.NewArena
	NewMemo     = core.NewMemo
	NewGraph    = core.NewGraph
	Detach      = core.Detach

	DefaultConfig  = primitives.DefaultConfig
	LoadConfig     = primitives.LoadConfig
	LoadConfigFile = primitives.LoadConfigFile
)

// Options.
var (
	WithConfig             = core.WithConfig
	WithLogger             = core.WithLogger
	WithMetrics            = core.WithMetrics
	WithPublisher          = core.WithPublisher
	WithTracerProvider     = core.WithTracerProvider
	WithClock              = core.WithClock
	WithPreload            = core.WithPreload
	WithMaxCloneEntities   = core.WithMaxCloneEntities
	WithInterner           = core.WithInterner
	WithMaxRestoreAttempts = core.WithMaxRestoreAttempts
	WithSummaryWidth       = core.WithSummaryWidth
)

// NewInterner creates an empty Interner.
func NewInterner(opts ...Option) *Interner { return core.NewInterner(opts...) }

// NewCloner creates a Cloner.
func NewCloner(opts ...Option) *Cloner { return core.NewCloner(opts...) }

// NewHistory creates an empty History for o.
func NewHistory[S any](o Originator[S], opts ...Option) *History[S] {
	return core.NewHistory(o, opts...)
}

// NewGraphOriginator exposes root in a as an Originator of *Graph.
func NewGraphOriginator(c *Cloner, a *Arena, root Handle, validate func(*Graph) error) *GraphOriginator {
	return core.NewGraphOriginator(c, a, root, validate)
}

// WithCopier overrides how a History copies states.
func WithCopier[S any](c Copier[S]) Option { return core.WithCopier(c) }

// WithDescriber overrides how a History renders a state in its summaries.
func WithDescriber[S any](d func(S) string) Option { return core.WithDescriber(d) }
