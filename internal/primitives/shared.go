package primitives

import "strings"

// SharedState is an immutable tuple of scalars that many entities may
// reference. Instances are created by an interner; two SharedState values
// obtained from the same interner for equal field multisets are the same
// pointer.
type SharedState struct {
	key    CanonicalKey
	fields []Scalar
}

// NewSharedState copies fields into a new SharedState.
// Most callers want Interner.Intern instead, which canonicalizes.
func NewSharedState(fields []Scalar) *SharedState {
	return &SharedState{
		key:    ComputeKey(fields),
		fields: append([]Scalar(nil), fields...),
	}
}

func (s *SharedState) Key() CanonicalKey { return s.key }

func (s *SharedState) Len() int { return len(s.fields) }

// Fields returns a copy of the fields in first-interned order.
func (s *SharedState) Fields() []Scalar {
	return append([]Scalar(nil), s.fields...)
}

// Field returns the i-th field.
func (s *SharedState) Field(i int) Scalar { return s.fields[i] }

// Equal reports value equality (same canonical key).
func (s *SharedState) Equal(o *SharedState) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.key == o.key
}

func (s *SharedState) String() string {
	return joinScalars(s.fields)
}

// Describe renders the shared part alongside caller-owned extrinsic state.
func (s *SharedState) Describe(extrinsic ...Scalar) string {
	return "shared [" + s.String() + "] with unique [" + joinScalars(extrinsic) + "]"
}

func joinScalars(ss []Scalar) string {
	parts := make([]string, len(ss))
	for i, f := range ss {
		parts[i] = f.String()
	}
	return strings.Join(parts, ", ")
}
