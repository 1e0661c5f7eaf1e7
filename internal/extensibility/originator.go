package extensibility

import (
	"log/slog"
	"time"

	"github.com/comalice/statekeep/internal/core"
)

// ValidatingOriginator rejects a state on restore when check fails, before
// the wrapped originator sees it.
type ValidatingOriginator[S any] struct {
	inner core.Originator[S]
	check func(S) error
}

// Validated wraps o so every ApplyState is checked first. A nil check
// accepts everything.
func Validated[S any](o core.Originator[S], check func(S) error) *ValidatingOriginator[S] {
	return &ValidatingOriginator[S]{inner: o, check: check}
}

func (v *ValidatingOriginator[S]) CaptureState() (S, error) {
	return v.inner.CaptureState()
}

func (v *ValidatingOriginator[S]) ApplyState(s S) error {
	if v.check != nil {
		if err := v.check(s); err != nil {
			return err
		}
	}
	return v.inner.ApplyState(s)
}

// LoggingOriginator wraps an Originator and logs around capture and apply.
type LoggingOriginator[S any] struct {
	inner  core.Originator[S]
	logger *slog.Logger
}

// Logged creates a LoggingOriginator. A nil logger uses slog.Default().
func Logged[S any](o core.Originator[S], logger *slog.Logger) *LoggingOriginator[S] {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingOriginator[S]{inner: o, logger: logger}
}

func (l *LoggingOriginator[S]) CaptureState() (S, error) {
	start := time.Now()
	s, err := l.inner.CaptureState()
	l.logger.Debug("originator: capture", slog.Duration("took", time.Since(start)), slog.Any("error", err))
	return s, err
}

func (l *LoggingOriginator[S]) ApplyState(s S) error {
	start := time.Now()
	err := l.inner.ApplyState(s)
	if err != nil {
		l.logger.Info("originator: state rejected", slog.Duration("took", time.Since(start)), slog.String("error", err.Error()))
		return err
	}
	l.logger.Debug("originator: state applied", slog.Duration("took", time.Since(start)))
	return nil
}
