// Package primitives provides the entity arena.
//
// Entities live in an Arena and are addressed by generational Handles rather
// than pointers, so identity is a comparable value and cyclic graphs need no
// special treatment by the owner. Arena is not safe for concurrent use;
// callers owning an Arena synchronize access themselves.
package primitives

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// ErrInvalidHandle is returned when a handle is nil, out of range or stale.
var ErrInvalidHandle = errors.New("invalid entity handle")

// Handle addresses an entity in an Arena. The zero Handle is Nil.
type Handle struct {
	index uint32
	gen   uint32
}

// Nil is the zero Handle; it never resolves.
var Nil Handle

func (h Handle) IsNil() bool { return h.gen == 0 }

func (h Handle) String() string {
	if h.IsNil() {
		return "nil"
	}
	return fmt.Sprintf("e%d.%d", h.index, h.gen)
}

// Compare orders handles by slot index, then generation.
func (h Handle) Compare(o Handle) int {
	switch {
	case h.index < o.index:
		return -1
	case h.index > o.index:
		return 1
	case h.gen < o.gen:
		return -1
	case h.gen > o.gen:
		return 1
	}
	return 0
}

type entity struct {
	fields map[string]Value
}

type slot struct {
	gen    uint32
	entity *entity
}

// Arena owns a set of entities.
type Arena struct {
	slots []slot
	free  []uint32
	live  int
}

// NewArena creates an empty Arena.
func NewArena() *Arena {
	return &Arena{}
}

// New allocates an empty entity and returns its handle.
func (a *Arena) New() Handle {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = uint32(len(a.slots))
		a.slots = append(a.slots, slot{})
	}
	s := &a.slots[idx]
	s.gen++
	if s.gen == 0 {
		// Generation wrapped; skip 0 so the handle is not Nil.
		s.gen = 1
	}
	s.entity = &entity{fields: make(map[string]Value)}
	a.live++
	return Handle{index: idx, gen: s.gen}
}

// Free releases h. Handles still pointing at the slot become stale.
func (a *Arena) Free(h Handle) error {
	if _, err := a.lookup(h); err != nil {
		return err
	}
	s := &a.slots[h.index]
	s.entity = nil
	a.free = append(a.free, h.index)
	a.live--
	return nil
}

// Valid reports whether h resolves to a live entity.
func (a *Arena) Valid(h Handle) bool {
	_, err := a.lookup(h)
	return err == nil
}

// Len returns the number of live entities.
func (a *Arena) Len() int { return a.live }

// Get returns a copy of field name of h.
func (a *Arena) Get(h Handle, name string) (Value, bool) {
	e, err := a.lookup(h)
	if err != nil {
		return Value{}, false
	}
	v, ok := e.fields[name]
	if !ok {
		return Value{}, false
	}
	return v.clone(), true
}

// Scalar is a convenience accessor for scalar fields.
func (a *Arena) Scalar(h Handle, name string) (Scalar, bool) {
	v, ok := a.Get(h, name)
	if !ok {
		return Scalar{}, false
	}
	return v.Scalar()
}

// Ref is a convenience accessor for reference fields.
func (a *Arena) Ref(h Handle, name string) (Handle, bool) {
	v, ok := a.Get(h, name)
	if !ok {
		return Nil, false
	}
	return v.Ref()
}

// Set stores a copy of v in field name of h.
func (a *Arena) Set(h Handle, name string, v Value) error {
	e, err := a.lookup(h)
	if err != nil {
		return err
	}
	e.fields[name] = v.clone()
	return nil
}

// SetScalar is shorthand for Set(h, name, ScalarValue(s)).
func (a *Arena) SetScalar(h Handle, name string, s Scalar) error {
	return a.Set(h, name, ScalarValue(s))
}

// SetRef is shorthand for Set(h, name, RefValue(target)).
func (a *Arena) SetRef(h Handle, name string, target Handle) error {
	return a.Set(h, name, RefValue(target))
}

// Delete removes field name from h.
func (a *Arena) Delete(h Handle, name string) error {
	e, err := a.lookup(h)
	if err != nil {
		return err
	}
	delete(e.fields, name)
	return nil
}

// Append adds items to the list field name of h, creating it if absent.
func (a *Arena) Append(h Handle, name string, items ...Value) error {
	e, err := a.lookup(h)
	if err != nil {
		return err
	}
	cur, ok := e.fields[name]
	switch {
	case !ok:
		cur = Value{kind: ValueList}
	case cur.kind != ValueList:
		return fmt.Errorf("append to %s.%s: field holds %s, not list", h, name, cur.kind)
	}
	cur.list = append(cur.list, cloneValues(items)...)
	e.fields[name] = cur
	return nil
}

// AddToSet inserts members into the set field name of h, creating it if
// absent.
func (a *Arena) AddToSet(h Handle, name string, members ...Scalar) error {
	e, err := a.lookup(h)
	if err != nil {
		return err
	}
	cur, ok := e.fields[name]
	switch {
	case !ok:
		cur = Value{kind: ValueSet}
	case cur.kind != ValueSet:
		return fmt.Errorf("add to %s.%s: field holds %s, not set", h, name, cur.kind)
	}
	e.fields[name] = SetValue(append(cur.set, members...)...)
	return nil
}

// Fields returns the field names of h in sorted order.
func (a *Arena) Fields(h Handle) []string {
	e, err := a.lookup(h)
	if err != nil {
		return nil
	}
	return slices.Sorted(maps.Keys(e.fields))
}

// Refs returns every handle referenced by h's fields, in field-name order.
// Duplicates are kept.
func (a *Arena) Refs(h Handle) []Handle {
	e, err := a.lookup(h)
	if err != nil {
		return nil
	}
	var out []Handle
	for _, name := range slices.Sorted(maps.Keys(e.fields)) {
		out = e.fields[name].Refs(out)
	}
	return out
}

// Reachable returns root and every live entity reachable from it, in
// breadth-first order. Dangling references are skipped.
func (a *Arena) Reachable(root Handle) []Handle {
	if !a.Valid(root) {
		return nil
	}
	seen := map[Handle]bool{root: true}
	order := []Handle{root}
	for i := 0; i < len(order); i++ {
		for _, ref := range a.Refs(order[i]) {
			if seen[ref] || !a.Valid(ref) {
				continue
			}
			seen[ref] = true
			order = append(order, ref)
		}
	}
	return order
}

// Handles returns every live handle in slot order.
func (a *Arena) Handles() []Handle {
	out := make([]Handle, 0, a.live)
	for i, s := range a.slots {
		if s.entity != nil {
			out = append(out, Handle{index: uint32(i), gen: s.gen})
		}
	}
	return out
}

// RangeFields calls fn for each field of h in sorted order until fn returns
// false. The Value passed to fn is a copy.
func (a *Arena) RangeFields(h Handle, fn func(name string, v Value) bool) error {
	e, err := a.lookup(h)
	if err != nil {
		return err
	}
	for _, name := range slices.Sorted(maps.Keys(e.fields)) {
		if !fn(name, e.fields[name].clone()) {
			break
		}
	}
	return nil
}

func (a *Arena) lookup(h Handle) (*entity, error) {
	if h.IsNil() || int(h.index) >= len(a.slots) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidHandle, h)
	}
	s := a.slots[h.index]
	if s.entity == nil || s.gen != h.gen {
		return nil, fmt.Errorf("%w: %s is stale", ErrInvalidHandle, h)
	}
	return s.entity, nil
}
