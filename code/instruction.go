package code

import (
	"fmt"
	"strings"

	"github.com/cloudcmds/codedata/op"
)

// Arg is the decoded operand of an instruction. Each variant names the
// pool or space the raw integer indexes into, so a code object can be
// edited without tracking offsets by hand.
type Arg interface {
	argKey(b *strings.Builder)
}

// NoArg marks an instruction whose opcode takes no operand. The wire
// format still carries an arg byte; Value preserves it when it is not
// zero so decoding remains lossless.
type NoArg struct {
	Value uint32
}

func (a NoArg) argKey(b *strings.Builder) { fmt.Fprintf(b, "_%d", a.Value) }

func (a NoArg) String() string {
	if a.Value != 0 {
		return fmt.Sprintf("(%d)", a.Value)
	}
	return ""
}

// ConstRef indexes the constant pool.
type ConstRef struct {
	Index uint32
}

func (a ConstRef) argKey(b *strings.Builder) { fmt.Fprintf(b, "k%d", a.Index) }

func (a ConstRef) String() string { return fmt.Sprintf("const %d", a.Index) }

// NameRef indexes the names tuple.
type NameRef struct {
	Index uint32
}

func (a NameRef) argKey(b *strings.Builder) { fmt.Fprintf(b, "n%d", a.Index) }

func (a NameRef) String() string { return fmt.Sprintf("name %d", a.Index) }

// VarRef indexes the varnames tuple.
type VarRef struct {
	Index uint32
}

func (a VarRef) argKey(b *strings.Builder) { fmt.Fprintf(b, "v%d", a.Index) }

func (a VarRef) String() string { return fmt.Sprintf("var %d", a.Index) }

// FreeRef indexes the combined cellvars+freevars space, cellvars first,
// the way CPython resolves closure operands.
type FreeRef struct {
	Index uint32
}

func (a FreeRef) argKey(b *strings.Builder) { fmt.Fprintf(b, "r%d", a.Index) }

func (a FreeRef) String() string { return fmt.Sprintf("cell %d", a.Index) }

// JumpRef targets a block by index instead of a bytecode offset, so
// blocks can be reordered or resized without breaking control flow.
type JumpRef struct {
	Block int
}

func (a JumpRef) argKey(b *strings.Builder) { fmt.Fprintf(b, "j%d", a.Block) }

func (a JumpRef) String() string { return fmt.Sprintf("block %d", a.Block) }

// CompareArg is the operator operand of COMPARE_OP.
type CompareArg struct {
	Op op.Compare
}

func (a CompareArg) argKey(b *strings.Builder) { fmt.Fprintf(b, "p%d", a.Op) }

func (a CompareArg) String() string { return a.Op.String() }

// IntArg is a plain numeric operand (argument counts, flag bitmasks,
// stack depths).
type IntArg struct {
	Value uint32
}

func (a IntArg) argKey(b *strings.Builder) { fmt.Fprintf(b, "d%d", a.Value) }

func (a IntArg) String() string { return fmt.Sprintf("%d", a.Value) }

// Instruction is one decoded operation inside a block.
type Instruction struct {
	Name string
	Arg  Arg

	// EncUnits, when nonzero, fixes how many 2-byte code units the
	// instruction occupies on re-encoding, counting EXTENDED_ARG
	// prefixes. Decoding sets it on jump instructions whose encoded
	// width exceeds the minimum so that encode(decode(b)) == b.
	// Normalize clears it.
	EncUnits int
}

func (in Instruction) key(b *strings.Builder) {
	b.WriteString(in.Name)
	b.WriteString("/")
	in.Arg.argKey(b)
	if in.EncUnits != 0 {
		fmt.Fprintf(b, "@%d", in.EncUnits)
	}
}

func (in Instruction) String() string {
	if s := fmt.Sprintf("%v", in.Arg); s != "" {
		return in.Name + " " + s
	}
	return in.Name
}

// Block is a straight-line run of instructions. Only the last
// instruction may transfer control elsewhere.
type Block []Instruction

func (blk Block) key(b *strings.Builder) {
	b.WriteString("[")
	for i, in := range blk {
		if i > 0 {
			b.WriteString(";")
		}
		in.key(b)
	}
	b.WriteString("]")
}
