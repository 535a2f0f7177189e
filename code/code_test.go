package code

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudcmds/codedata/linetable"
	"github.com/cloudcmds/codedata/op"
)

func TestConstantKeys(t *testing.T) {
	tests := []struct {
		name  string
		a, b  Constant
		equal bool
	}{
		{"zero vs false", NewInt(0), Bool(false), false},
		{"one vs true", NewInt(1), Bool(true), false},
		{"int vs float", NewInt(1), Float(1), false},
		{"zero vs negative zero", Float(0), Float(math.Copysign(0, -1)), false},
		{"nan equals nan", Float(math.NaN()), Float(math.NaN()), true},
		{"complex negative zero imag", Complex(complex(1, 0)), Complex(complex(1, math.Copysign(0, -1))), false},
		{"str vs bytes", Str("x"), Bytes("x"), false},
		{"none vs ellipsis", None{}, Ellipsis{}, false},
		{"tuple order matters", Tuple{NewInt(1), NewInt(2)}, Tuple{NewInt(2), NewInt(1)}, false},
		{"frozenset order ignored", FrozenSet{NewInt(1), NewInt(2)}, FrozenSet{NewInt(2), NewInt(1)}, true},
		{"nested tuple identity", Tuple{Bool(false)}, Tuple{NewInt(0)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.equal {
				require.Equal(t, ConstKey(tt.a), ConstKey(tt.b))
			} else {
				require.NotEqual(t, ConstKey(tt.a), ConstKey(tt.b))
			}
		})
	}
}

func sample() *Code {
	return &Code{
		Version:   op.V310,
		Name:      "f",
		Filename:  "<test>",
		FirstLine: 1,
		Flags:     []string{"NEWLOCALS", "OPTIMIZED"},
		Args:      Args{PosOrKw: 1},
		Blocks: []Block{
			{
				{Name: "LOAD_CONST", Arg: ConstRef{Index: 1}},
				{Name: "RETURN_VALUE", Arg: NoArg{}},
			},
		},
		Constants: []Constant{Str("doc"), NewInt(42)},
		Varnames:  []string{"x"},
		StackSize: 1,
		Lines:     linetable.Mapping{{Start: 0, End: 2, Location: linetable.LineOnly(1)}},
	}
}

func TestEqualAndHash(t *testing.T) {
	a, b := sample(), sample()
	require.True(t, Equal(a, b))
	require.Equal(t, Hash(a), Hash(b))

	b.Blocks[0][0].Arg = ConstRef{Index: 0}
	require.False(t, Equal(a, b))

	c := sample()
	c.Flags = []string{"OPTIMIZED"}
	require.False(t, Equal(a, c))

	d := sample()
	d.Blocks[0][0].EncUnits = 2
	require.False(t, Equal(a, d))
}

func TestDocstringAndFunctionType(t *testing.T) {
	c := sample()
	doc, ok := c.Docstring()
	require.True(t, ok)
	require.Equal(t, "doc", doc)
	require.Equal(t, "", c.FunctionType())

	c.Flags = append(c.Flags, "GENERATOR")
	require.Equal(t, "generator", c.FunctionType())

	mod := sample()
	mod.Flags = nil
	require.False(t, mod.IsFunction())
	_, ok = mod.Docstring()
	require.False(t, ok)
}

func TestNormalizePrunesConstants(t *testing.T) {
	c := sample()
	c.Constants = []Constant{Str("doc"), NewInt(42), Str("unused")}
	c.Blocks[0][0].EncUnits = 2

	n := Normalize(c)
	require.Equal(t, []Constant{NewInt(42)}, n.Constants)
	require.Equal(t, ConstRef{Index: 0}, n.Blocks[0][0].Arg)
	require.Zero(t, n.Blocks[0][0].EncUnits)

	// Input untouched.
	require.Len(t, c.Constants, 3)
	require.Equal(t, 2, c.Blocks[0][0].EncUnits)

	// Idempotent.
	require.True(t, Equal(n, Normalize(n)))
}

func TestNormalizeRecursesNestedCode(t *testing.T) {
	inner := sample()
	inner.Constants = append(inner.Constants, Str("dead"))

	c := sample()
	c.Constants = []Constant{Str("doc"), CodeConst{Code: inner}}

	n := Normalize(c)
	require.Len(t, n.Constants, 1)
	nested := n.Constants[0].(CodeConst).Code
	require.Equal(t, []Constant{NewInt(42)}, nested.Constants)
}

func TestArgsCount(t *testing.T) {
	a := Args{PosOnly: 1, PosOrKw: 2, VarArg: true, KwOnly: 1, KwArg: true}
	require.Equal(t, 6, a.Count())
	require.Zero(t, Args{}.Count())
}
