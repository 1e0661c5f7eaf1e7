// Tests for the lifecycle event publishers.
package production

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/comalice/statekeep/internal/core"
	"github.com/comalice/statekeep/internal/primitives"
)

func TestChannelPublisher_Delivery(t *testing.T) {
	ch := make(chan core.Event, 10)
	p := NewChannelPublisher(ch)

	event := core.Event{Kind: core.EventInternCreated, Subject: "abc", Timestamp: time.Now()}
	if err := p.Publish(context.Background(), event); err != nil {
		t.Errorf("Publish failed: %v", err)
	}

	select {
	case got := <-ch:
		if got.Kind != event.Kind || got.Subject != event.Subject {
			t.Errorf("event mismatch: got %+v, want %+v", got, event)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("No event delivered")
	}
}

func TestChannelPublisher_BackpressureDrop(t *testing.T) {
	ch := make(chan core.Event, 1)
	p := NewChannelPublisher(ch)
	ch <- core.Event{} // Fill buffer

	if err := p.Publish(context.Background(), core.Event{Kind: core.EventRestored}); err != nil {
		t.Errorf("Publish on full channel failed: %v", err)
	}
	if p.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", p.Dropped())
	}
}

func TestChannelPublisher_CloseTwice(t *testing.T) {
	ch := make(chan core.Event)
	p := NewChannelPublisher(ch)
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if _, ok := <-ch; ok {
		t.Error("channel should be closed")
	}
}

func TestChannelPublisher_PublishAfterClose(t *testing.T) {
	ch := make(chan core.Event, 1)
	p := NewChannelPublisher(ch)
	in := core.NewInterner(core.WithPublisher(p))
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if err := p.Publish(context.Background(), core.Event{Kind: core.EventRestored}); !errors.Is(err, ErrPublisherClosed) {
		t.Errorf("Publish after Close = %v, want ErrPublisherClosed", err)
	}
	// A component still holding the publisher keeps working.
	in.Intern(primitives.Text("late"))
	if in.Len() != 1 {
		t.Errorf("Len() = %d, want 1", in.Len())
	}
}

func TestInterner_PublishesThroughChannel(t *testing.T) {
	ch := make(chan core.Event, 4)
	in := core.NewInterner(core.WithPublisher(NewChannelPublisher(ch)))

	in.Intern(primitives.Texts("BMW", "X6", "black")...)
	in.Intern(primitives.Texts("X6", "BMW", "black")...)

	first, second := <-ch, <-ch
	if first.Kind != core.EventInternCreated || second.Kind != core.EventInternReused {
		t.Errorf("kinds = %s, %s; want created, reused", first.Kind, second.Kind)
	}
	if first.Subject != second.Subject {
		t.Error("both events must name the same canonical key")
	}
}

func TestLogAndMultiPublisher(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ch := make(chan core.Event, 1)
	m := MultiPublisher{NewLogPublisher(logger, slog.LevelInfo), NewChannelPublisher(ch)}

	if err := m.Publish(context.Background(), core.Event{Kind: core.EventHistoryEmpty, Subject: "s"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "kind=history.empty") {
		t.Errorf("log output missing kind: %q", buf.String())
	}
	if got := <-ch; got.Kind != core.EventHistoryEmpty {
		t.Errorf("channel got %s", got.Kind)
	}
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
}
