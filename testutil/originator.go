// Package testutil provides originators with scripted behavior for tests
// and walkthroughs.
package testutil

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
)

// ErrRejected is the default rejection cause used by RejectState.
var ErrRejected = errors.New("state rejected")

// TextOriginator holds a single text state, like the classic memento
// originator. Specific states can be scripted to be rejected on restore.
type TextOriginator struct {
	mu      sync.Mutex
	state   string
	reject  map[string]error
	applied []string
}

// NewTextOriginator creates an originator in state initial.
func NewTextOriginator(initial string) *TextOriginator {
	return &TextOriginator{state: initial, reject: make(map[string]error)}
}

// State returns the live state.
func (o *TextOriginator) State() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Set replaces the live state.
func (o *TextOriginator) Set(state string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = state
}

// DoSomething replaces the state with n random letters and returns it.
func (o *TextOriginator) DoSomething(n int) string {
	s := RandomLetters(n)
	o.Set(s)
	return s
}

// RejectState makes ApplyState fail for state. A nil err uses ErrRejected.
func (o *TextOriginator) RejectState(state string, err error) {
	if err == nil {
		err = ErrRejected
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reject[state] = err
}

// Applied lists every state ApplyState accepted, oldest first.
func (o *TextOriginator) Applied() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.applied...)
}

func (o *TextOriginator) CaptureState() (string, error) {
	return o.State(), nil
}

func (o *TextOriginator) ApplyState(state string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err, ok := o.reject[state]; ok {
		return fmt.Errorf("restore %q: %w", state, err)
	}
	o.state = state
	o.applied = append(o.applied, state)
	return nil
}

const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// RandomLetters returns n distinct ASCII letters (n is capped at 52).
func RandomLetters(n int) string {
	n = min(max(n, 0), len(letters))
	perm := rand.Perm(len(letters))
	out := make([]byte, n)
	for i := range out {
		out[i] = letters[perm[i]]
	}
	return string(out)
}
