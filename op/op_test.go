package op

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudcmds/codedata/errz"
)

func TestTableLookup(t *testing.T) {
	tbl, err := TableFor(V38)
	require.NoError(t, err)

	info, ok := tbl.Lookup(100)
	require.True(t, ok)
	require.Equal(t, "LOAD_CONST", info.Name)
	require.Equal(t, ArgConst, info.Kind)

	code, ok := tbl.ByName("POP_JUMP_IF_FALSE")
	require.True(t, ok)
	require.Equal(t, Code(114), code)
	info, _ = tbl.Lookup(code)
	require.Equal(t, ArgJumpAbs, info.Kind)

	info, _ = tbl.Lookup(110)
	require.Equal(t, "JUMP_FORWARD", info.Name)
	require.Equal(t, ArgJumpRel, info.Kind)

	// 7 is unassigned in every supported version.
	_, ok = tbl.Lookup(7)
	require.False(t, ok)
}

func TestVersionGating(t *testing.T) {
	tests := []struct {
		version Version
		name    string
		present bool
	}{
		{V37, "SETUP_LOOP", true},
		{V38, "SETUP_LOOP", false},
		{V37, "ROT_FOUR", false},
		{V38, "ROT_FOUR", true},
		{V38, "END_FINALLY", true},
		{V39, "END_FINALLY", false},
		{V39, "IS_OP", true},
		{V38, "IS_OP", false},
		{V310, "GEN_START", true},
		{V39, "GEN_START", false},
		{V310, "MATCH_CLASS", true},
	}
	for _, tt := range tests {
		tbl, err := TableFor(tt.version)
		require.NoError(t, err)
		_, ok := tbl.ByName(tt.name)
		require.Equal(t, tt.present, ok, "%s in %s", tt.name, tt.version)
	}
}

func TestReraiseMoved(t *testing.T) {
	t39, err := TableFor(V39)
	require.NoError(t, err)
	c, ok := t39.ByName("RERAISE")
	require.True(t, ok)
	require.Equal(t, Code(48), c)

	t310, err := TableFor(V310)
	require.NoError(t, err)
	c, ok = t310.ByName("RERAISE")
	require.True(t, ok)
	require.Equal(t, Code(119), c)
}

func TestCompares(t *testing.T) {
	t38, _ := TableFor(V38)
	require.Len(t, t38.Compares(), 12)
	cmp, ok := t38.CompareByArg(8)
	require.True(t, ok)
	require.Equal(t, CompareIs, cmp)

	t39, _ := TableFor(V39)
	require.Len(t, t39.Compares(), 6)
	_, ok = t39.CompareByArg(8)
	require.False(t, ok)

	arg, ok := t39.ArgForCompare(CompareNE)
	require.True(t, ok)
	require.Equal(t, 3, arg)
}

func TestJumpUnit(t *testing.T) {
	t39, _ := TableFor(V39)
	require.Equal(t, 1, t39.JumpUnit())
	t310, _ := TableFor(V310)
	require.Equal(t, 2, t310.JumpUnit())
}

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion("3.9")
	require.NoError(t, err)
	require.Equal(t, V39, v)

	_, err = ParseVersion("3.11")
	require.Error(t, err)
	var uv *errz.UnsupportedVersionError
	require.ErrorAs(t, err, &uv)
	require.Equal(t, "3.11", uv.Version)
}

func TestFlagsRoundTrip(t *testing.T) {
	names, err := FlagsToNames(0x1 | 0x2 | 0x20 | 0x1000000)
	require.NoError(t, err)
	require.Equal(t, []string{"OPTIMIZED", "NEWLOCALS", "GENERATOR", "annotations"}, names)

	bits, err := NamesToFlags(names)
	require.NoError(t, err)
	require.Equal(t, uint32(0x1|0x2|0x20|0x1000000), bits)

	_, err = FlagsToNames(0x8000)
	require.Error(t, err)

	_, err = NamesToFlags([]string{"BOGUS"})
	require.Error(t, err)
}

func TestTerminal(t *testing.T) {
	t37, _ := TableFor(V37)
	ret, _ := t37.ByName("RETURN_VALUE")
	info, _ := t37.Lookup(ret)
	require.True(t, info.Terminal())

	load, _ := t37.ByName("LOAD_CONST")
	info, _ = t37.Lookup(load)
	require.False(t, info.Terminal())
}
