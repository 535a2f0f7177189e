package codec

import (
	"github.com/cloudcmds/codedata/code"
	"github.com/cloudcmds/codedata/errz"
	"github.com/cloudcmds/codedata/op"
)

// buildBlocks partitions decoded instructions into basic blocks and
// rewrites jump arguments to block indices. A block starts at offset 0,
// at every jump target, and immediately after every jump or terminator,
// whether or not anything jumps there. A jump target that does not land
// on an instruction boundary is a decode failure, not a truncation.
func buildBlocks(instrs []decoded, tbl *op.Table) ([]code.Block, error) {
	startAt := make(map[int]bool)
	startAt[0] = true
	for _, in := range instrs {
		if in.Info.Kind.IsJump() {
			startAt[jumpTarget(in, tbl)] = true
			startAt[in.Next] = true
		} else if in.Info.Terminal() {
			startAt[in.Next] = true
		}
	}

	// Block index for every byte offset that begins an instruction and
	// is marked as a start. Offsets past the last instruction cannot
	// begin a block.
	blockAt := make(map[int]int)
	n := 0
	for _, in := range instrs {
		if startAt[in.Start] {
			blockAt[in.Start] = n
			n++
		}
	}

	blocks := make([]code.Block, n)
	cur := -1
	for _, in := range instrs {
		if bi, ok := blockAt[in.Start]; ok {
			cur = bi
		}
		instr, err := toInstruction(in, tbl, blockAt)
		if err != nil {
			return nil, err
		}
		blocks[cur] = append(blocks[cur], instr)
	}
	return blocks, nil
}

// toInstruction converts a decoded instruction's numeric argument into
// the symbolic form its opcode calls for.
func toInstruction(in decoded, tbl *op.Table, blockAt map[int]int) (code.Instruction, error) {
	instr := code.Instruction{Name: in.Info.Name}
	value := uint32(in.Arg)
	switch in.Info.Kind {
	case op.ArgNone:
		instr.Arg = code.NoArg{Value: value}
	case op.ArgConst:
		instr.Arg = code.ConstRef{Index: value}
	case op.ArgName:
		instr.Arg = code.NameRef{Index: value}
	case op.ArgLocal:
		instr.Arg = code.VarRef{Index: value}
	case op.ArgFree:
		instr.Arg = code.FreeRef{Index: value}
	case op.ArgCompare:
		if cmp, ok := tbl.CompareByArg(in.Arg); ok {
			instr.Arg = code.CompareArg{Op: cmp}
		} else {
			instr.Arg = code.IntArg{Value: value}
		}
	case op.ArgJumpAbs, op.ArgJumpRel:
		target := jumpTarget(in, tbl)
		bi, ok := blockAt[target]
		if !ok {
			return code.Instruction{}, &errz.DanglingJumpTargetError{
				Offset: in.Start,
				Target: target,
			}
		}
		instr.Arg = code.JumpRef{Block: bi}
		// Jumps with the same target can be encoded at different
		// widths; remember the width so re-encoding is byte-exact.
		if in.Units > 1 {
			instr.EncUnits = in.Units
		}
	default:
		instr.Arg = code.IntArg{Value: value}
	}
	return instr, nil
}
