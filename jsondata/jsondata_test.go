package jsondata

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudcmds/codedata/code"
	"github.com/cloudcmds/codedata/linetable"
	"github.com/cloudcmds/codedata/op"
)

func sample() *code.Code {
	inner := &code.Code{
		Version:   op.V310,
		Name:      "g",
		Filename:  "<test>",
		FirstLine: 3,
		Flags:     []string{"NEWLOCALS", "OPTIMIZED"},
		Blocks: []code.Block{
			{
				{Name: "LOAD_CONST", Arg: code.ConstRef{Index: 0}},
				{Name: "RETURN_VALUE", Arg: code.NoArg{}},
			},
		},
		Constants: []code.Constant{code.None{}},
		StackSize: 1,
		Lines:     linetable.Mapping{{Start: 0, End: 2, Location: linetable.LineOnly(3)}},
	}
	return &code.Code{
		Version:   op.V310,
		Name:      "<module>",
		Filename:  "<test>",
		FirstLine: 1,
		Blocks: []code.Block{
			{
				{Name: "LOAD_NAME", Arg: code.NameRef{Index: 0}},
				{Name: "LOAD_CONST", Arg: code.ConstRef{Index: 1}},
				{Name: "COMPARE_OP", Arg: code.CompareArg{Op: op.CompareEQ}},
				{Name: "POP_JUMP_IF_FALSE", Arg: code.JumpRef{Block: 1}, EncUnits: 2},
			},
			{
				{Name: "LOAD_CONST", Arg: code.ConstRef{Index: 0}},
				{Name: "RETURN_VALUE", Arg: code.NoArg{}},
			},
		},
		Constants: []code.Constant{
			code.None{},
			code.Tuple{
				code.NewInt(1),
				code.Float(math.Copysign(0, -1)),
				code.Float(math.NaN()),
				code.Complex(complex(1, -2)),
				code.Str("s"),
				code.Bytes{0, 1, 2},
				code.FrozenSet{code.Bool(true), code.Ellipsis{}},
				code.CodeConst{Code: inner},
			},
		},
		Names:     []string{"x"},
		StackSize: 2,
		Lines: linetable.Mapping{
			{Start: 0, End: 4, Location: linetable.Location{Line: 1, EndLine: 1, Col: 0, EndCol: 10}},
			{Start: 4, End: 6, Location: linetable.NoLocation()},
		},
	}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	c := sample()
	data, err := Marshal(c)
	require.NoError(t, err)

	back, err := Unmarshal(data)
	require.NoError(t, err)
	require.True(t, code.Equal(c, back))
}

func TestMarshalFlattensNestedCodes(t *testing.T) {
	data, err := MarshalIndent(sample())
	require.NoError(t, err)
	require.Contains(t, string(data), `"code_index": 1`)
	require.Contains(t, string(data), `"name": "g"`)
	require.Contains(t, string(data), `"op": "=="`)
}

func TestUnmarshalBigInt(t *testing.T) {
	c := sample()
	huge, ok := c.Constants[1].(code.Tuple)[0].(code.Int).Value.SetString("123456789012345678901234567890", 10)
	require.True(t, ok)
	require.NotNil(t, huge)

	data, err := Marshal(c)
	require.NoError(t, err)
	back, err := Unmarshal(data)
	require.NoError(t, err)

	got := back.Constants[1].(code.Tuple)[0].(code.Int)
	require.Equal(t, "123456789012345678901234567890", got.Value.String())
}

func TestUnmarshalErrors(t *testing.T) {
	_, err := Unmarshal([]byte(`{"codes":[]}`))
	require.Error(t, err)

	_, err = Unmarshal([]byte(`{"codes":[{"version":"9.9","name":"f","blocks":[]}]}`))
	require.Error(t, err)

	_, err = Unmarshal([]byte(`{"codes":[{"version":"3.8","name":"f","blocks":[],"constants":[{"type":"martian"}]}]}`))
	require.Error(t, err)

	_, err = Unmarshal([]byte(`{"codes":[{"version":"3.8","name":"f","blocks":[],"constants":[{"type":"code","code_index":7}]}]}`))
	require.Error(t, err)
}

func TestFloatSpecialsSurviveJSON(t *testing.T) {
	c := sample()
	data, err := Marshal(c)
	require.NoError(t, err)
	back, err := Unmarshal(data)
	require.NoError(t, err)

	tup := back.Constants[1].(code.Tuple)
	negZero := float64(tup[1].(code.Float))
	require.True(t, negZero == 0 && math.Signbit(negZero))
	require.True(t, math.IsNaN(float64(tup[2].(code.Float))))
}
