package primitives

import (
	"slices"
	"strings"
)

// ValueKind enumerates what an entity field can hold.
type ValueKind uint8

const (
	ValueNone ValueKind = iota
	ValueScalar
	ValueRef
	ValueList
	ValueSet
	ValueShared
)

func (k ValueKind) String() string {
	switch k {
	case ValueScalar:
		return "scalar"
	case ValueRef:
		return "ref"
	case ValueList:
		return "list"
	case ValueSet:
		return "set"
	case ValueShared:
		return "shared"
	default:
		return "none"
	}
}

// Value is the content of one entity field.
//
// Lists and sets are owned by the field holding them: the Arena copies them
// on the way in and out, so a Value read from one entity can never mutate
// another. References to other entities go through Handle, and shared
// immutable state through *SharedState.
type Value struct {
	kind   ValueKind
	scalar Scalar
	ref    Handle
	list   []Value
	set    []Scalar
	shared *SharedState
}

// ScalarValue wraps a scalar.
func ScalarValue(s Scalar) Value { return Value{kind: ValueScalar, scalar: s} }

// RefValue wraps a reference to another entity.
func RefValue(h Handle) Value { return Value{kind: ValueRef, ref: h} }

// ListValue wraps an ordered list. The items are copied.
func ListValue(items ...Value) Value {
	return Value{kind: ValueList, list: cloneValues(items)}
}

// SetValue wraps a set of scalars; duplicates collapse and members are kept
// sorted.
func SetValue(members ...Scalar) Value {
	set := append([]Scalar(nil), members...)
	slices.SortFunc(set, Scalar.Compare)
	set = slices.CompactFunc(set, Scalar.Equal)
	return Value{kind: ValueSet, set: set}
}

// SharedValue wraps a reference to interned shared state.
func SharedValue(s *SharedState) Value { return Value{kind: ValueShared, shared: s} }

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) IsZero() bool { return v.kind == ValueNone }

func (v Value) Scalar() (Scalar, bool) { return v.scalar, v.kind == ValueScalar }

func (v Value) Ref() (Handle, bool) { return v.ref, v.kind == ValueRef }

func (v Value) Shared() (*SharedState, bool) { return v.shared, v.kind == ValueShared }

// List returns a copy of the list items.
func (v Value) List() ([]Value, bool) {
	if v.kind != ValueList {
		return nil, false
	}
	return cloneValues(v.list), true
}

// Set returns a copy of the set members in sorted order.
func (v Value) Set() ([]Scalar, bool) {
	if v.kind != ValueSet {
		return nil, false
	}
	return append([]Scalar(nil), v.set...), true
}

// Contains reports whether a set value holds m.
func (v Value) Contains(m Scalar) bool {
	if v.kind != ValueSet {
		return false
	}
	_, found := slices.BinarySearchFunc(v.set, m, Scalar.Compare)
	return found
}

// Len returns the number of list items or set members, and 1 for any other
// non-empty value.
func (v Value) Len() int {
	switch v.kind {
	case ValueNone:
		return 0
	case ValueList:
		return len(v.list)
	case ValueSet:
		return len(v.set)
	default:
		return 1
	}
}

// Refs appends every handle referenced by v (including inside lists) to dst.
func (v Value) Refs(dst []Handle) []Handle {
	switch v.kind {
	case ValueRef:
		return append(dst, v.ref)
	case ValueList:
		for _, item := range v.list {
			dst = item.Refs(dst)
		}
	}
	return dst
}

// MapRefs returns a copy of v with every reference replaced by fn(ref).
// fn may fail, in which case the error is returned unchanged.
func (v Value) MapRefs(fn func(Handle) (Handle, error)) (Value, error) {
	switch v.kind {
	case ValueRef:
		h, err := fn(v.ref)
		if err != nil {
			return Value{}, err
		}
		return RefValue(h), nil
	case ValueList:
		items := make([]Value, len(v.list))
		for i, item := range v.list {
			mapped, err := item.MapRefs(fn)
			if err != nil {
				return Value{}, err
			}
			items[i] = mapped
		}
		return Value{kind: ValueList, list: items}, nil
	default:
		return v.clone(), nil
	}
}

// MapShared returns a copy of v with every shared state replaced by fn(s).
func (v Value) MapShared(fn func(*SharedState) *SharedState) Value {
	switch v.kind {
	case ValueShared:
		return SharedValue(fn(v.shared))
	case ValueList:
		items := make([]Value, len(v.list))
		for i, item := range v.list {
			items[i] = item.MapShared(fn)
		}
		return Value{kind: ValueList, list: items}
	default:
		return v.clone()
	}
}

// Equal reports structural equality. References compare by handle and
// shared state by canonical key.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case ValueScalar:
		return v.scalar.Equal(o.scalar)
	case ValueRef:
		return v.ref == o.ref
	case ValueList:
		return slices.EqualFunc(v.list, o.list, Value.Equal)
	case ValueSet:
		return slices.EqualFunc(v.set, o.set, Scalar.Equal)
	case ValueShared:
		return v.shared.Equal(o.shared)
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.kind {
	case ValueScalar:
		return v.scalar.String()
	case ValueRef:
		return "&" + v.ref.String()
	case ValueList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case ValueSet:
		return "{" + joinScalars(v.set) + "}"
	case ValueShared:
		if v.shared == nil {
			return "(<nil>)"
		}
		return "(" + v.shared.String() + ")"
	default:
		return "<none>"
	}
}

// clone copies owned containers; references and shared state are kept.
func (v Value) clone() Value {
	switch v.kind {
	case ValueList:
		return Value{kind: ValueList, list: cloneValues(v.list)}
	case ValueSet:
		return Value{kind: ValueSet, set: append([]Scalar(nil), v.set...)}
	default:
		return v
	}
}

func cloneValues(items []Value) []Value {
	if items == nil {
		return nil
	}
	out := make([]Value, len(items))
	for i, item := range items {
		out[i] = item.clone()
	}
	return out
}
