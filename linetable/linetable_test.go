package linetable

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudcmds/codedata/errz"
	"github.com/cloudcmds/codedata/op"
)

func TestLegacyDecodeSimple(t *testing.T) {
	// Two instructions on line 1, two on line 2, one on line 5.
	raw := []byte{4, 1, 4, 3}
	m, err := Decode(raw, op.V38, 1, 5)
	require.NoError(t, err)
	require.Equal(t, Mapping{
		{Start: 0, End: 2, Location: LineOnly(1)},
		{Start: 2, End: 4, Location: LineOnly(2)},
		{Start: 4, End: 5, Location: LineOnly(5)},
	}, m)
}

func TestLegacyEmptyTable(t *testing.T) {
	m, err := Decode(nil, op.V37, 7, 3)
	require.NoError(t, err)
	require.Equal(t, Mapping{{Start: 0, End: 3, Location: LineOnly(7)}}, m)

	raw, err := Encode(m, op.V37, 7)
	require.NoError(t, err)
	require.Empty(t, raw)
}

func TestLegacyRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		m    Mapping
	}{
		{
			name: "ascending",
			m: Mapping{
				{Start: 0, End: 1, Location: LineOnly(1)},
				{Start: 1, End: 4, Location: LineOnly(2)},
				{Start: 4, End: 9, Location: LineOnly(10)},
			},
		},
		{
			name: "backward line jump",
			m: Mapping{
				{Start: 0, End: 2, Location: LineOnly(20)},
				{Start: 2, End: 3, Location: LineOnly(3)},
			},
		},
		{
			name: "large line delta needs split pairs",
			m: Mapping{
				{Start: 0, End: 1, Location: LineOnly(1)},
				{Start: 1, End: 2, Location: LineOnly(500)},
			},
		},
		{
			name: "large instruction run needs split pairs",
			m: Mapping{
				{Start: 0, End: 200, Location: LineOnly(1)},
				{Start: 200, End: 201, Location: LineOnly(2)},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count := tt.m[len(tt.m)-1].End
			raw, err := Encode(tt.m, op.V39, 1)
			require.NoError(t, err)
			decoded, err := Decode(raw, op.V39, 1, count)
			require.NoError(t, err)
			require.Equal(t, tt.m, decoded)
		})
	}
}

func TestLegacyRejectsNoLine(t *testing.T) {
	m := Mapping{{Start: 0, End: 1, Location: NoLocation()}}
	_, err := Encode(m, op.V38, 1)
	var mlt *errz.MalformedLineTableError
	require.ErrorAs(t, err, &mlt)
}

func TestLegacyMalformed(t *testing.T) {
	// Odd length.
	_, err := Decode([]byte{4}, op.V38, 1, 4)
	var mlt *errz.MalformedLineTableError
	require.ErrorAs(t, err, &mlt)

	// Range extends past the code.
	_, err = Decode([]byte{200, 1}, op.V38, 1, 4)
	require.ErrorAs(t, err, &mlt)
}

func TestModernRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		m    Mapping
	}{
		{
			name: "columns on one line",
			m: Mapping{
				{Start: 0, End: 2, Location: Location{Line: 1, EndLine: 1, Col: 0, EndCol: 5}},
				{Start: 2, End: 3, Location: Location{Line: 1, EndLine: 1, Col: 8, EndCol: 12}},
			},
		},
		{
			name: "line advance with columns",
			m: Mapping{
				{Start: 0, End: 1, Location: Location{Line: 3, EndLine: 3, Col: 4, EndCol: 9}},
				{Start: 1, End: 2, Location: Location{Line: 5, EndLine: 5, Col: 0, EndCol: 100}},
			},
		},
		{
			name: "no line marker",
			m: Mapping{
				{Start: 0, End: 1, Location: Location{Line: 1, EndLine: 1, Col: 0, EndCol: 3}},
				{Start: 1, End: 3, Location: NoLocation()},
				{Start: 3, End: 4, Location: Location{Line: 2, EndLine: 2, Col: 0, EndCol: 3}},
			},
		},
		{
			name: "no columns",
			m: Mapping{
				{Start: 0, End: 4, Location: LineOnly(10)},
				{Start: 4, End: 5, Location: LineOnly(2)},
			},
		},
		{
			name: "multi-line span uses long form",
			m: Mapping{
				{Start: 0, End: 2, Location: Location{Line: 1, EndLine: 4, Col: 0, EndCol: 7}},
			},
		},
		{
			name: "run longer than eight instructions",
			m: Mapping{
				{Start: 0, End: 25, Location: Location{Line: 1, EndLine: 1, Col: 0, EndCol: 1}},
				{Start: 25, End: 26, Location: Location{Line: 2, EndLine: 2, Col: 0, EndCol: 1}},
			},
		},
		{
			name: "large deltas use varints",
			m: Mapping{
				{Start: 0, End: 1, Location: Location{Line: 1, EndLine: 1, Col: 300, EndCol: 400}},
				{Start: 1, End: 2, Location: Location{Line: 900, EndLine: 905, Col: 2, EndCol: 3}},
				{Start: 2, End: 3, Location: LineOnly(4)},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count := tt.m[len(tt.m)-1].End
			raw, err := Encode(tt.m, op.V310, 1)
			require.NoError(t, err)
			decoded, err := Decode(raw, op.V310, 1, count)
			require.NoError(t, err)
			require.Equal(t, tt.m, decoded)
		})
	}
}

func TestModernMalformed(t *testing.T) {
	var mlt *errz.MalformedLineTableError

	// Missing marker bit on the first entry byte.
	_, err := Decode([]byte{0x01}, op.V310, 1, 1)
	require.ErrorAs(t, err, &mlt)

	// Truncated short-form entry.
	_, err = Decode([]byte{0x80}, op.V310, 1, 1)
	require.ErrorAs(t, err, &mlt)

	// Truncated varint in a no-column entry.
	_, err = Decode([]byte{0x80 | formNoColumn<<3, varintMore | 1}, op.V310, 1, 1)
	require.ErrorAs(t, err, &mlt)

	// Coverage short of the instruction count.
	_, err = Decode([]byte{0x80 | formNone<<3}, op.V310, 1, 5)
	require.ErrorAs(t, err, &mlt)
}

func TestCoverageValidation(t *testing.T) {
	m := Mapping{
		{Start: 0, End: 2, Location: LineOnly(1)},
		{Start: 3, End: 4, Location: LineOnly(2)}, // gap at 2
	}
	require.Error(t, m.Validate(4))

	m = Mapping{
		{Start: 0, End: 2, Location: LineOnly(1)},
		{Start: 2, End: 4, Location: LineOnly(2)},
	}
	require.NoError(t, m.Validate(4))
	require.Error(t, m.Validate(5))
}

func TestLookup(t *testing.T) {
	m := Mapping{
		{Start: 0, End: 2, Location: LineOnly(1)},
		{Start: 2, End: 4, Location: LineOnly(9)},
	}
	loc, ok := m.Lookup(3)
	require.True(t, ok)
	require.Equal(t, 9, loc.Line)
	_, ok = m.Lookup(4)
	require.False(t, ok)
}
