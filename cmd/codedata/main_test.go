package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/cloudcmds/codedata/code"
	"github.com/cloudcmds/codedata/jsondata"
	"github.com/cloudcmds/codedata/linetable"
	"github.com/cloudcmds/codedata/op"
)

func writeFixture(t *testing.T) string {
	t.Helper()
	c := &code.Code{
		Version:   op.V38,
		Name:      "<module>",
		Filename:  "<test>",
		FirstLine: 1,
		Blocks: []code.Block{
			{
				{Name: "LOAD_CONST", Arg: code.ConstRef{Index: 1}},
				{Name: "RETURN_VALUE", Arg: code.NoArg{}},
			},
		},
		Constants: []code.Constant{code.Str("unused"), code.NewInt(7)},
		StackSize: 1,
		Lines:     linetable.Mapping{{Start: 0, End: 2, Location: linetable.LineOnly(1)}},
	}
	doc, err := jsondata.Marshal(c)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "module.json")
	require.NoError(t, os.WriteFile(path, doc, 0o644))
	return path
}

func runCommand(t *testing.T, args ...string) string {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	rootCmd.SetArgs(args)
	execErr := rootCmd.Execute()

	w.Close()
	os.Stdout = old
	require.NoError(t, execErr)

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String()
}

func TestDisCommand(t *testing.T) {
	out := runCommand(t, "dis", "--no-color", writeFixture(t))
	require.Contains(t, out, "<module> (<test>:1)")
	require.Contains(t, out, "LOAD_CONST")
	require.Contains(t, out, "| BLOCK |")
	require.Contains(t, out, "7")
}

func TestVerifyCommand(t *testing.T) {
	out := runCommand(t, "verify", "--no-color", writeFixture(t))
	require.Contains(t, out, "verified 1 code objects")
}

func TestNormalizeCommand(t *testing.T) {
	out := runCommand(t, "normalize", "--no-color", writeFixture(t))
	require.NotContains(t, out, "unused")
	require.Contains(t, out, `"version": "3.8"`)
}
