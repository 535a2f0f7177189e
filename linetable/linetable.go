// Package linetable converts between the raw byte encodings of a code
// object's line table and a normalized sequence of instruction-range to
// source-position records. Two incompatible byte grammars exist: the legacy
// signed-delta pair format (3.7 through 3.9) and the modern op-coded ranged
// format with column information (3.10). The grammar is selected by the
// format version; everything else about the mapping is version-independent.
package linetable

import (
	"fmt"
	"strings"

	"github.com/cloudcmds/codedata/errz"
	"github.com/cloudcmds/codedata/op"
)

// NoValue marks an absent line or column.
const NoValue = -1

// Location is the source position attached to a range of instructions.
// Line == NoValue means the range has no associated line. Column fields are
// only populated by the modern format; the legacy format leaves them NoValue
// and sets EndLine equal to Line.
type Location struct {
	Line    int
	EndLine int
	Col     int
	EndCol  int
}

// NoLocation returns the location marking "no line".
func NoLocation() Location {
	return Location{Line: NoValue, EndLine: NoValue, Col: NoValue, EndCol: NoValue}
}

// LineOnly returns a location with only a line number, as produced by the
// legacy format.
func LineOnly(line int) Location {
	return Location{Line: line, EndLine: line, Col: NoValue, EndCol: NoValue}
}

// IsNone reports whether the location marks "no line".
func (l Location) IsNone() bool {
	return l.Line == NoValue
}

// String formats the location for disassembly output.
func (l Location) String() string {
	if l.IsNone() {
		return "--"
	}
	if l.Col == NoValue {
		return fmt.Sprintf("%d", l.Line)
	}
	return fmt.Sprintf("%d:%d-%d:%d", l.Line, l.Col, l.EndLine, l.EndCol)
}

// Entry associates the instruction range [Start, End) with a location.
// Positions count 2-byte code units.
type Entry struct {
	Start int
	End   int
	Location
}

// Mapping is an ordered sequence of entries tiling [0, instruction count)
// with no gaps or overlaps. Adjacent entries carry distinct locations; the
// decoders merge runs and the encoders re-split as their grammar requires.
type Mapping []Entry

// Validate checks the tiling invariant against an instruction count.
func (m Mapping) Validate(instrCount int) error {
	pos := 0
	for i, e := range m {
		if e.Start != pos || e.End <= e.Start {
			return fmt.Errorf("line mapping entry %d: range [%d,%d) does not continue from %d", i, e.Start, e.End, pos)
		}
		pos = e.End
	}
	if pos != instrCount {
		return fmt.Errorf("line mapping covers [0,%d), expected [0,%d)", pos, instrCount)
	}
	return nil
}

// Lookup returns the location covering an instruction index.
func (m Mapping) Lookup(instr int) (Location, bool) {
	for _, e := range m {
		if instr >= e.Start && instr < e.End {
			return e.Location, true
		}
	}
	return NoLocation(), false
}

// Equal reports deep equality of two mappings.
func (m Mapping) Equal(other Mapping) bool {
	if len(m) != len(other) {
		return false
	}
	for i := range m {
		if m[i] != other[i] {
			return false
		}
	}
	return true
}

// Key writes a canonical form used for structural hashing.
func (m Mapping) Key(sb *strings.Builder) {
	for _, e := range m {
		fmt.Fprintf(sb, "[%d,%d)%d,%d,%d,%d;", e.Start, e.End, e.Line, e.EndLine, e.Col, e.EndCol)
	}
}

// append adds a range, merging it into the previous entry when the location
// is identical. Keeping the mapping merged is what makes decode(encode(m))
// an identity for well-formed mappings.
func (m Mapping) append(start, end int, loc Location) Mapping {
	if end <= start {
		return m
	}
	if n := len(m); n > 0 && m[n-1].End == start && m[n-1].Location == loc {
		m[n-1].End = end
		return m
	}
	return append(m, Entry{Start: start, End: end, Location: loc})
}

// Decode parses the raw line-table bytes for the given format version.
// firstLine is the code object's first source line, the base all deltas in
// the table are relative to. instrCount is the number of 2-byte code units
// the mapping must cover.
func Decode(raw []byte, v op.Version, firstLine, instrCount int) (Mapping, error) {
	if v >= op.V310 {
		return decodeModern(raw, firstLine, instrCount)
	}
	return decodeLegacy(raw, firstLine, instrCount)
}

// Encode produces the raw line-table bytes for the given format version.
// The emitted encoding is the canonical one: alternate byte sequences for
// the same mapping exist, so callers comparing the reverse direction must
// compare decoded structures rather than bytes.
func Encode(m Mapping, v op.Version, firstLine int) ([]byte, error) {
	if v >= op.V310 {
		return encodeModern(m, firstLine)
	}
	return encodeLegacy(m, firstLine)
}

func malformed(offset int, format string, args ...interface{}) error {
	return &errz.MalformedLineTableError{Offset: offset, Reason: fmt.Sprintf(format, args...)}
}
