package codec

import (
	"fmt"

	"github.com/cloudcmds/codedata/errz"
	"github.com/cloudcmds/codedata/op"
)

// decoded is one instruction with its EXTENDED_ARG prefixes folded in.
// Offsets are byte offsets into the original stream; Start points at the
// first prefix, so [Start, Next) spans Units code units.
type decoded struct {
	Info  op.Info
	Arg   int
	Start int
	Next  int
	Units int
}

const (
	cIntMax  = 1<<31 - 1
	cIntSpan = 1 << 32
)

// decodeInstructions parses a flat instruction stream into decoded
// instructions. EXTENDED_ARG prefixes never appear in the output; their
// high bytes accumulate into the following instruction's argument,
// wrapping the way CPython's signed 32-bit accumulator wraps.
func decodeInstructions(codeBytes []byte, tbl *op.Table) ([]decoded, error) {
	if len(codeBytes)%2 != 0 {
		return nil, fmt.Errorf("truncated instruction stream: odd length %d", len(codeBytes))
	}
	out := make([]decoded, 0, len(codeBytes)/2)
	arg := 0
	units := 0
	for i := 0; i < len(codeBytes); i += 2 {
		opcode := codeBytes[i]
		arg |= int(codeBytes[i+1])
		units++
		if op.Code(opcode) == op.ExtendedArg {
			arg <<= 8
			if arg > cIntMax {
				arg -= cIntSpan
			}
			continue
		}
		info, ok := tbl.Lookup(op.Code(opcode))
		if !ok {
			return nil, &errz.UnknownOpcodeError{
				Version: tbl.Version().String(),
				Opcode:  opcode,
				Offset:  i,
			}
		}
		out = append(out, decoded{
			Info:  info,
			Arg:   arg,
			Start: i - (units-1)*2,
			Next:  i + 2,
			Units: units,
		})
		arg = 0
		units = 0
	}
	if units != 0 {
		return nil, fmt.Errorf("instruction stream ends inside an EXTENDED_ARG chain at offset %d", len(codeBytes))
	}
	return out, nil
}

// jumpTarget returns the absolute byte offset a decoded jump refers to.
// Arguments count instructions on 3.10 and bytes on earlier versions;
// relative jumps are measured from the following instruction.
func jumpTarget(in decoded, tbl *op.Table) int {
	scaled := in.Arg * tbl.JumpUnit()
	if in.Info.Kind == op.ArgJumpRel {
		return in.Next + scaled
	}
	return scaled
}
