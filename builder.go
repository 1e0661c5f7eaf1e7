package statekeep

import (
	"errors"
	"fmt"
	"slices"
)

// GraphBuilder provides a fluent API for constructing entity graphs using
// string names instead of manual handle bookkeeping.
type GraphBuilder struct {
	arena    *Arena
	interner *Interner
	handles  map[string]Handle
	names    map[Handle]string
	declared map[string]bool
	errs     []error
}

// EntityBuilder provides fluent methods for configuring one entity's fields.
type EntityBuilder struct {
	b    *GraphBuilder
	h    Handle
	name string
}

// Item is one element of a list field: a scalar, or a reference to a named
// entity.
type Item struct {
	target string
	value  Value
}

// ItemRef references the entity called name.
func ItemRef(name string) Item { return Item{target: name} }

// ItemScalar wraps a scalar list element.
func ItemScalar(s Scalar) Item { return Item{value: ScalarValue(s)} }

// NewGraphBuilder creates a builder over a fresh arena. Shared fields are
// interned through in; a nil in gets a private Interner.
func NewGraphBuilder(in *Interner) *GraphBuilder {
	if in == nil {
		in = NewInterner()
	}
	return &GraphBuilder{
		arena:    NewArena(),
		interner: in,
		handles:  make(map[string]Handle),
		names:    make(map[Handle]string),
		declared: make(map[string]bool),
	}
}

// Entity creates or retrieves the entity called name.
func (b *GraphBuilder) Entity(name string) *EntityBuilder {
	b.declared[name] = true
	return &EntityBuilder{b: b, h: b.assign(name), name: name}
}

// Handle returns the handle assigned to name, or the nil handle.
func (b *GraphBuilder) Handle(name string) Handle {
	return b.handles[name]
}

// Name returns the name for h, or "" if h was not assigned here.
func (b *GraphBuilder) Name(h Handle) string {
	return b.names[h]
}

// Arena returns the arena under construction.
func (b *GraphBuilder) Arena() *Arena { return b.arena }

// Interner returns the interner shared fields go through.
func (b *GraphBuilder) Interner() *Interner { return b.interner }

// Build validates the graph and returns it rooted at rootName. Every
// referenced name must have been declared with Entity.
func (b *GraphBuilder) Build(rootName string) (*Graph, error) {
	if err := b.validate(rootName); err != nil {
		return nil, err
	}
	return NewGraph(b.arena, b.handles[rootName]), nil
}

// assign returns the existing handle for a name, or allocates a new entity.
// Forward references are allowed until Build.
func (b *GraphBuilder) assign(name string) Handle {
	if h, ok := b.handles[name]; ok {
		return h
	}
	h := b.arena.New()
	b.handles[name] = h
	b.names[h] = name
	return h
}

func (b *GraphBuilder) validate(rootName string) error {
	errs := slices.Clone(b.errs)
	if !b.declared[rootName] {
		errs = append(errs, fmt.Errorf("root entity %q not declared", rootName))
	}
	for _, name := range sortedNames(b.handles) {
		if !b.declared[name] {
			errs = append(errs, fmt.Errorf("entity %q referenced but never declared", name))
		}
	}
	return errors.Join(errs...)
}

func sortedNames(m map[string]Handle) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func (eb *EntityBuilder) record(field string, err error) *EntityBuilder {
	if err != nil {
		eb.b.errs = append(eb.b.errs, fmt.Errorf("entity %q field %q: %w", eb.name, field, err))
	}
	return eb
}

// Handle returns the entity's handle.
func (eb *EntityBuilder) Handle() Handle { return eb.h }

// Scalar sets a scalar field.
func (eb *EntityBuilder) Scalar(field string, s Scalar) *EntityBuilder {
	return eb.record(field, eb.b.arena.SetScalar(eb.h, field, s))
}

// Text sets a text field.
func (eb *EntityBuilder) Text(field, s string) *EntityBuilder {
	return eb.Scalar(field, Text(s))
}

// Int sets an integer field.
func (eb *EntityBuilder) Int(field string, n int64) *EntityBuilder {
	return eb.Scalar(field, Int(n))
}

// Ref points field at the entity called target. A self-reference is fine.
func (eb *EntityBuilder) Ref(field, target string) *EntityBuilder {
	return eb.record(field, eb.b.arena.SetRef(eb.h, field, eb.b.assign(target)))
}

// List sets an ordered list field.
func (eb *EntityBuilder) List(field string, items ...Item) *EntityBuilder {
	values := make([]Value, len(items))
	for i, it := range items {
		if it.target != "" {
			values[i] = RefValue(eb.b.assign(it.target))
			continue
		}
		values[i] = it.value
	}
	return eb.record(field, eb.b.arena.Set(eb.h, field, ListValue(values...)))
}

// Set sets an unordered, duplicate-free set field.
func (eb *EntityBuilder) Set(field string, members ...Scalar) *EntityBuilder {
	return eb.record(field, eb.b.arena.Set(eb.h, field, SetValue(members...)))
}

// Shared interns fields and stores the canonical SharedState.
func (eb *EntityBuilder) Shared(field string, fields ...Scalar) *EntityBuilder {
	s, _ := eb.b.interner.Intern(fields...)
	return eb.record(field, eb.b.arena.Set(eb.h, field, SharedValue(s)))
}
