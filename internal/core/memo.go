package core

import "github.com/comalice/statekeep/internal/primitives"

// Memo maps original entities to their clones for one clone call. Every
// entity reachable from the root is cloned at most once, and every later
// reference to it (including cycles back to the root) resolves through the
// memo to that single clone.
//
// A Memo may be pre-seeded before DeepInto to map a source entity onto an
// existing destination entity, which is then overwritten instead of
// allocated. A Memo owns no entities.
type Memo struct {
	clones map[primitives.Handle]primitives.Handle
}

// NewMemo creates an empty Memo.
func NewMemo() *Memo {
	return &Memo{clones: make(map[primitives.Handle]primitives.Handle)}
}

// Lookup returns the clone registered for orig.
func (m *Memo) Lookup(orig primitives.Handle) (primitives.Handle, bool) {
	c, ok := m.clones[orig]
	return c, ok
}

// Register records clone as the one copy of orig.
func (m *Memo) Register(orig, clone primitives.Handle) {
	m.clones[orig] = clone
}

// Len returns the number of registered originals.
func (m *Memo) Len() int { return len(m.clones) }

func (m *Memo) forget(orig primitives.Handle) {
	delete(m.clones, orig)
}
