// Scalar provides the closed, tagged scalar variant stored in entity fields
// and shared state.
//
// Scalars are value types. Once created they cannot be mutated; use the
// constructors Text, Int, Float and Bool.
//
// # Canonical form
//
// Every scalar has a canonical text form that encodes its kind, so that
// Text("1") and Int(1) never collide:
//
//	t:BMW     i:42     f:0.5     b:true
//
// The canonical form drives key derivation and text marshaling.
package primitives

import (
	"cmp"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind enumerates the scalar kinds.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindText
	KindInt
	KindFloat
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	default:
		return "invalid"
	}
}

// prefix is the single-letter tag used in the canonical form.
func (k Kind) prefix() string {
	switch k {
	case KindText:
		return "t"
	case KindInt:
		return "i"
	case KindFloat:
		return "f"
	case KindBool:
		return "b"
	default:
		return "?"
	}
}

type Scalar struct {
	kind Kind
	text string
	num  int64
	flt  float64
	flag bool
}

// Text returns a text scalar.
func Text(s string) Scalar { return Scalar{kind: KindText, text: s} }

// Int returns an integer scalar.
func Int(n int64) Scalar { return Scalar{kind: KindInt, num: n} }

// Float returns a floating point scalar.
func Float(f float64) Scalar { return Scalar{kind: KindFloat, flt: f} }

// Bool returns a boolean scalar.
func Bool(b bool) Scalar { return Scalar{kind: KindBool, flag: b} }

// Texts converts plain strings into text scalars.
func Texts(ss ...string) []Scalar {
	out := make([]Scalar, len(ss))
	for i, s := range ss {
		out[i] = Text(s)
	}
	return out
}

func (s Scalar) Kind() Kind { return s.kind }

// IsZero reports whether s is the zero (invalid) scalar.
func (s Scalar) IsZero() bool { return s.kind == KindInvalid }

// AsText returns the text payload and whether s is a text scalar.
func (s Scalar) AsText() (string, bool) { return s.text, s.kind == KindText }

// AsInt returns the integer payload and whether s is an integer scalar.
func (s Scalar) AsInt() (int64, bool) { return s.num, s.kind == KindInt }

// AsFloat returns the float payload and whether s is a float scalar.
func (s Scalar) AsFloat() (float64, bool) { return s.flt, s.kind == KindFloat }

// AsBool returns the boolean payload and whether s is a bool scalar.
func (s Scalar) AsBool() (bool, bool) { return s.flag, s.kind == KindBool }

// String renders the payload without its kind tag.
func (s Scalar) String() string {
	switch s.kind {
	case KindText:
		return s.text
	case KindInt:
		return strconv.FormatInt(s.num, 10)
	case KindFloat:
		return strconv.FormatFloat(s.flt, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(s.flag)
	default:
		return "<invalid>"
	}
}

// Canonical returns the kind-tagged canonical form. Negative zero is
// written as zero and every NaN as "NaN", so Canonical agrees with Equal.
func (s Scalar) Canonical() string {
	if s.kind == KindFloat {
		f := s.flt
		switch {
		case f == 0:
			f = 0
		case math.IsNaN(f):
			f = math.NaN()
		}
		return s.kind.prefix() + ":" + strconv.FormatFloat(f, 'g', -1, 64)
	}
	return s.kind.prefix() + ":" + s.String()
}

// Equal reports structural equality. Floats use the same order as Compare:
// -0 equals 0 and NaN equals NaN.
func (s Scalar) Equal(o Scalar) bool {
	if s.kind != o.kind {
		return false
	}
	switch s.kind {
	case KindText:
		return s.text == o.text
	case KindInt:
		return s.num == o.num
	case KindFloat:
		return cmp.Compare(s.flt, o.flt) == 0
	case KindBool:
		return s.flag == o.flag
	default:
		return true
	}
}

// Compare orders scalars by kind, then by payload. It is a total order
// (floats use cmp.Compare, which places NaN first).
func (s Scalar) Compare(o Scalar) int {
	if c := cmp.Compare(s.kind, o.kind); c != 0 {
		return c
	}
	switch s.kind {
	case KindText:
		return strings.Compare(s.text, o.text)
	case KindInt:
		return cmp.Compare(s.num, o.num)
	case KindFloat:
		return cmp.Compare(s.flt, o.flt)
	case KindBool:
		switch {
		case s.flag == o.flag:
			return 0
		case !s.flag:
			return -1
		default:
			return 1
		}
	default:
		return 0
	}
}

// ParseScalar parses a canonical form back into a Scalar.
func ParseScalar(canonical string) (Scalar, error) {
	tag, payload, ok := strings.Cut(canonical, ":")
	if !ok {
		return Scalar{}, fmt.Errorf("scalar %q: missing kind tag", canonical)
	}
	switch tag {
	case "t":
		return Text(payload), nil
	case "i":
		n, err := strconv.ParseInt(payload, 10, 64)
		if err != nil {
			return Scalar{}, fmt.Errorf("scalar %q: %w", canonical, err)
		}
		return Int(n), nil
	case "f":
		f, err := strconv.ParseFloat(payload, 64)
		if err != nil {
			return Scalar{}, fmt.Errorf("scalar %q: %w", canonical, err)
		}
		return Float(f), nil
	case "b":
		b, err := strconv.ParseBool(payload)
		if err != nil {
			return Scalar{}, fmt.Errorf("scalar %q: %w", canonical, err)
		}
		return Bool(b), nil
	default:
		return Scalar{}, fmt.Errorf("scalar %q: unknown kind tag %q", canonical, tag)
	}
}

// MarshalText implements encoding.TextMarshaler using the canonical form.
func (s Scalar) MarshalText() ([]byte, error) {
	if s.kind == KindInvalid {
		return nil, fmt.Errorf("marshal invalid scalar")
	}
	return []byte(s.Canonical()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Scalar) UnmarshalText(b []byte) error {
	v, err := ParseScalar(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
