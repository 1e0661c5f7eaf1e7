package extensibility

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/comalice/statekeep/internal/core"
	"github.com/comalice/statekeep/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestCheckpointer_CapturesPeriodically(t *testing.T) {
	o := testutil.NewTextOriginator("A")
	h := core.NewHistory[string](o)
	c, err := NewCheckpointer(context.Background(), h, 5*time.Millisecond, nil)
	if err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for h.Len() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	c.Stop()
	c.Stop()

	captured, failed := c.Counts()
	if captured < 3 || failed != 0 {
		t.Errorf("captured = %d, failed = %d", captured, failed)
	}
	if h.Len() != captured {
		t.Errorf("history depth %d != captured %d", h.Len(), captured)
	}
}

type flakyCapturer struct {
	calls atomic.Int32
}

func (f *flakyCapturer) Capture(ctx context.Context) (core.Summary, error) {
	if f.calls.Add(1)%2 == 0 {
		return core.Summary{}, errors.New("capture failed")
	}
	return core.Summary{Descriptor: "ok"}, nil
}

func TestCheckpointer_KeepsGoingAfterFailure(t *testing.T) {
	f := &flakyCapturer{}
	c, err := NewCheckpointer(context.Background(), f, 2*time.Millisecond, nil)
	if err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for f.calls.Load() < 4 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	c.Stop()

	captured, failed := c.Counts()
	if captured == 0 || failed == 0 {
		t.Errorf("captured = %d, failed = %d", captured, failed)
	}
}

func TestCheckpointer_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c, err := NewCheckpointer(ctx, &flakyCapturer{}, time.Hour, nil)
	if err != nil {
		t.Fatal(err)
	}
	cancel()
	select {
	case <-c.done:
	case <-time.After(time.Second):
		t.Fatal("checkpointer did not stop after cancel")
	}
	c.Stop()
}

func TestCheckpointer_RejectsNonPositiveInterval(t *testing.T) {
	for _, d := range []time.Duration{0, -time.Second} {
		c, err := NewCheckpointer(context.Background(), &flakyCapturer{}, d, nil)
		if err == nil {
			c.Stop()
			t.Errorf("NewCheckpointer(%s) should fail", d)
		}
	}
}
