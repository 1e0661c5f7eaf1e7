package primitives

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalarCanonical(t *testing.T) {
	tests := []struct {
		name string
		in   Scalar
		want string
	}{
		{"text", Text("BMW"), "t:BMW"},
		{"empty text", Text(""), "t:"},
		{"int", Int(-42), "i:-42"},
		{"float", Float(0.5), "f:0.5"},
		{"bool", Bool(true), "b:true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Canonical())

			parsed, err := ParseScalar(tt.want)
			require.NoError(t, err)
			assert.True(t, parsed.Equal(tt.in), "round trip %v != %v", parsed, tt.in)
		})
	}
}

func TestScalarKindsNeverCollide(t *testing.T) {
	assert.False(t, Text("1").Equal(Int(1)))
	assert.NotEqual(t, Text("1").Canonical(), Int(1).Canonical())
	assert.NotEqual(t, Text("true").Canonical(), Bool(true).Canonical())
}

func TestScalarCompareIsTotal(t *testing.T) {
	ordered := []Scalar{Text("a"), Text("b"), Int(-1), Int(3), Float(math.NaN()), Float(1.5), Bool(false), Bool(true)}
	for i := range ordered {
		for j := range ordered {
			got := ordered[i].Compare(ordered[j])
			switch {
			case i < j:
				assert.Negative(t, got, "%v vs %v", ordered[i], ordered[j])
			case i > j:
				assert.Positive(t, got, "%v vs %v", ordered[i], ordered[j])
			default:
				assert.Zero(t, got)
			}
		}
	}
}

func TestParseScalarErrors(t *testing.T) {
	for _, in := range []string{"BMW", "x:1", "i:abc", "f:", "b:maybe"} {
		_, err := ParseScalar(in)
		assert.Error(t, err, in)
	}
}

func TestScalarAccessors(t *testing.T) {
	s, ok := Text("x").AsText()
	assert.True(t, ok)
	assert.Equal(t, "x", s)

	_, ok = Text("x").AsInt()
	assert.False(t, ok)

	n, ok := Int(7).AsInt()
	assert.True(t, ok)
	assert.EqualValues(t, 7, n)

	assert.True(t, Scalar{}.IsZero())
	_, err := Scalar{}.MarshalText()
	assert.Error(t, err)
}
