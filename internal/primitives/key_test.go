package primitives

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeKeyOrderIndependent(t *testing.T) {
	a := ComputeKey(Texts("BMW", "X6", "black"))
	b := ComputeKey(Texts("black", "BMW", "X6"))
	assert.Equal(t, a, b)
	assert.Len(t, a.String(), KeySize*2)
	assert.Len(t, a.Short(), 8)
}

func TestComputeKeyDiscriminates(t *testing.T) {
	tests := []struct {
		name string
		a, b []Scalar
	}{
		{"different values", Texts("BMW", "M5", "red"), Texts("BMW", "X6", "black")},
		{"multiset counts", Texts("a", "a", "b"), Texts("a", "b")},
		{"delimiter forging", Texts("a_b", "c"), Texts("a", "b_c")},
		{"length prefix forging", Texts("1:a"), Texts("a", "")},
		{"kind tags", []Scalar{Text("1")}, []Scalar{Int(1)}},
		{"empty vs empty text", nil, Texts("")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, ComputeKey(tt.a), ComputeKey(tt.b))
		})
	}
}

func TestComputeKeyAgreesWithFloatEquality(t *testing.T) {
	negZero := Float(math.Copysign(0, -1))
	assert.True(t, Float(0).Equal(negZero))
	assert.Equal(t, ComputeKey([]Scalar{Float(0)}), ComputeKey([]Scalar{negZero}))

	nan := Float(math.NaN())
	otherNaN := Float(math.Float64frombits(0x7ff8000000000001))
	assert.True(t, nan.Equal(otherNaN))
	assert.Equal(t, ComputeKey([]Scalar{nan}), ComputeKey([]Scalar{otherNaN}))
	assert.Equal(t, "f:NaN", otherNaN.Canonical())
	assert.Equal(t, "f:0", negZero.Canonical())
}

func TestComputeKeyEmptyIsStable(t *testing.T) {
	assert.Equal(t, ComputeKey(nil), ComputeKey([]Scalar{}))
}

func TestSharedStateDescribe(t *testing.T) {
	s := NewSharedState(Texts("BMW", "X6", "black"))
	assert.Equal(t, "BMW, X6, black", s.String())
	assert.Equal(t, "shared [BMW, X6, black] with unique [X564FG, James Bond]",
		s.Describe(Texts("X564FG", "James Bond")...))

	fields := s.Fields()
	fields[0] = Text("Audi")
	assert.Equal(t, "BMW", s.Field(0).String(), "Fields must return a copy")
	assert.True(t, s.Equal(NewSharedState(Texts("black", "X6", "BMW"))))
}
