// Package op defines the per-version opcode metadata tables: the mapping
// between opcode names, numbers, argument kinds, and jump kinds for each
// supported CPython bytecode format version. Tables are built once and are
// read-only configuration; all argument-kind dispatch in the codec goes
// through them rather than through per-opcode code paths.
package op

// Code is a one-byte numeric opcode.
type Code uint8

// HaveArgument is the opcode number at or above which instructions take an
// argument. Constant across all supported versions.
const HaveArgument Code = 90

// ArgKind describes how an instruction's numeric argument is interpreted.
type ArgKind int

const (
	// ArgNone means the opcode takes no operand.
	ArgNone ArgKind = iota
	// ArgConst indexes the constant table.
	ArgConst
	// ArgName indexes the global/attribute name table.
	ArgName
	// ArgLocal indexes the local variable name table.
	ArgLocal
	// ArgFree indexes the combined cellvars++freevars table.
	ArgFree
	// ArgJumpAbs is an absolute jump target.
	ArgJumpAbs
	// ArgJumpRel is a jump target relative to the next instruction.
	ArgJumpRel
	// ArgCompare selects a comparison operator.
	ArgCompare
	// ArgInt is a plain integer operand.
	ArgInt
)

// String returns a short name for the argument kind.
func (k ArgKind) String() string {
	switch k {
	case ArgNone:
		return "none"
	case ArgConst:
		return "const"
	case ArgName:
		return "name"
	case ArgLocal:
		return "local"
	case ArgFree:
		return "free"
	case ArgJumpAbs:
		return "jabs"
	case ArgJumpRel:
		return "jrel"
	case ArgCompare:
		return "compare"
	case ArgInt:
		return "int"
	default:
		return "invalid"
	}
}

// IsJump reports whether the kind is a jump (absolute or relative).
func (k ArgKind) IsJump() bool {
	return k == ArgJumpAbs || k == ArgJumpRel
}

// Compare identifies a comparison operator carried by a COMPARE_OP argument.
type Compare int

const (
	CompareLT Compare = iota
	CompareLE
	CompareEQ
	CompareNE
	CompareGT
	CompareGE
	CompareIn
	CompareNotIn
	CompareIs
	CompareIsNot
	CompareExcMatch
	CompareBad
)

var compareNames = []string{
	"<", "<=", "==", "!=", ">", ">=",
	"in", "not in", "is", "is not", "exception match", "BAD",
}

// String returns the operator's source form, e.g. "<" or "not in".
func (c Compare) String() string {
	if int(c) < 0 || int(c) >= len(compareNames) {
		return "BAD"
	}
	return compareNames[c]
}

// Info holds the metadata for one opcode in one format version.
type Info struct {
	Code Code
	Name string
	Kind ArgKind
}

// Terminal reports whether the instruction unconditionally transfers control
// out of sequence: a return or raise-like instruction. Jumps are reported by
// Kind.IsJump instead.
func (i Info) Terminal() bool {
	switch i.Name {
	case "RETURN_VALUE", "RAISE_VARARGS", "RERAISE", "BREAK_LOOP":
		return true
	}
	return false
}

// Table is the opcode metadata for one format version. It is immutable after
// construction and safe for concurrent use.
type Table struct {
	version  Version
	infos    [256]Info
	valid    [256]bool
	byName   map[string]Code
	compares []Compare
}

// Version returns the format version this table describes.
func (t *Table) Version() Version {
	return t.version
}

// Lookup returns the metadata for an opcode number.
func (t *Table) Lookup(c Code) (Info, bool) {
	return t.infos[c], t.valid[c]
}

// ByName returns the opcode number for a name.
func (t *Table) ByName(name string) (Code, bool) {
	c, ok := t.byName[name]
	return c, ok
}

// Compares returns the comparison operators addressable by a COMPARE_OP
// argument, in argument order.
func (t *Table) Compares() []Compare {
	out := make([]Compare, len(t.compares))
	copy(out, t.compares)
	return out
}

// CompareByArg resolves a COMPARE_OP argument to its operator.
func (t *Table) CompareByArg(arg int) (Compare, bool) {
	if arg < 0 || arg >= len(t.compares) {
		return CompareBad, false
	}
	return t.compares[arg], true
}

// ArgForCompare returns the argument value encoding the given operator.
func (t *Table) ArgForCompare(c Compare) (int, bool) {
	for i, v := range t.compares {
		if v == c {
			return i, true
		}
	}
	return 0, false
}

// ExtendedArg is the EXTENDED_ARG prefix opcode. Constant across all
// supported versions.
const ExtendedArg Code = 144

// JumpUnit returns the byte width of one jump-argument unit: jump arguments
// count instructions (2 bytes each) from 3.10 on and bytes before that.
func (t *Table) JumpUnit() int {
	if t.version >= V310 {
		return 2
	}
	return 1
}
