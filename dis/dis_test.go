package dis

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/cloudcmds/codedata/code"
	"github.com/cloudcmds/codedata/linetable"
	"github.com/cloudcmds/codedata/op"
)

func plainColors(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func sample() *code.Code {
	return &code.Code{
		Version:   op.V38,
		Name:      "f",
		Filename:  "<test>",
		FirstLine: 1,
		Blocks: []code.Block{
			{
				{Name: "LOAD_FAST", Arg: code.VarRef{Index: 0}},
				{Name: "LOAD_CONST", Arg: code.ConstRef{Index: 0}},
				{Name: "COMPARE_OP", Arg: code.CompareArg{Op: op.CompareEQ}},
				{Name: "POP_JUMP_IF_FALSE", Arg: code.JumpRef{Block: 1}},
			},
			{
				{Name: "RETURN_VALUE", Arg: code.NoArg{}},
			},
		},
		Constants: []code.Constant{code.NewInt(42)},
		Varnames:  []string{"x"},
		StackSize: 2,
		Lines: linetable.Mapping{
			{Start: 0, End: 4, Location: linetable.LineOnly(1)},
			{Start: 4, End: 5, Location: linetable.LineOnly(2)},
		},
	}
}

func TestDisassemble(t *testing.T) {
	plainColors(t)
	rows := Disassemble(sample())
	require.Equal(t, []Row{
		{Block: 0, Index: 0, Line: "1", Name: "LOAD_FAST", Operand: "0", Annotation: "x"},
		{Block: 0, Index: 1, Line: "1", Name: "LOAD_CONST", Operand: "0", Annotation: "42"},
		{Block: 0, Index: 2, Line: "1", Name: "COMPARE_OP", Annotation: "=="},
		{Block: 0, Index: 3, Line: "1", Name: "POP_JUMP_IF_FALSE", Operand: "1", Annotation: "to block 1"},
		{Block: 1, Index: 4, Line: "2", Name: "RETURN_VALUE"},
	}, rows)
}

func TestPrint(t *testing.T) {
	plainColors(t)
	var buf bytes.Buffer
	Print(Disassemble(sample()), &buf)

	out := buf.String()
	require.Contains(t, out, "| BLOCK | INDEX | LINE | OPCODE")
	require.Contains(t, out, "POP_JUMP_IF_FALSE")
	require.Contains(t, out, "to block 1")
}

func TestFprintRecursesIntoNestedCode(t *testing.T) {
	plainColors(t)
	inner := sample()
	inner.Name = "g"
	outer := sample()
	outer.Constants = []code.Constant{code.CodeConst{Code: inner}}

	var buf bytes.Buffer
	Fprint(&buf, outer)
	out := buf.String()
	require.Contains(t, out, "f (<test>:1)")
	require.Contains(t, out, "g (<test>:1)")
	require.Contains(t, out, "code:g")
}

func TestLongStringConstantTruncated(t *testing.T) {
	plainColors(t)
	c := sample()
	long := make([]byte, 120)
	for i := range long {
		long[i] = 'a'
	}
	c.Constants = []code.Constant{code.Str(long)}
	rows := Disassemble(c)
	require.Contains(t, rows[1].Annotation, "...")
	require.Less(t, len(rows[1].Annotation), 90)
}
