package codec

import (
	"fmt"

	"github.com/cloudcmds/codedata/code"
	"github.com/cloudcmds/codedata/errz"
	"github.com/cloudcmds/codedata/op"
)

// maxEncodeIterations bounds the offset fixed point. Widening one jump
// can widen another, but each pass only ever grows offsets, so real
// inputs settle in two or three passes.
const maxEncodeIterations = 64

type flatInstr struct {
	info     op.Info
	arg      int
	override int
	block    int // owning block index
	jump     int // target block index, -1 if not a jump
}

// linearize flattens blocks into the wire encoding. It resolves jump
// references to numeric arguments, iterating offset assignment to a
// fixed point because EXTENDED_ARG prefixes added for one jump can push
// another jump's target far enough to need prefixes of its own. The
// returned offsets give each instruction's first code unit, prefixes
// included, for aligning the line mapping.
func linearize(blocks []code.Block, tbl *op.Table) (codeBytes []byte, offsets []int, err error) {
	var flat []flatInstr
	for bi, blk := range blocks {
		for _, in := range blk {
			fi, err := toFlat(in, bi, len(blocks), tbl)
			if err != nil {
				return nil, nil, err
			}
			flat = append(flat, fi)
		}
	}

	argPerUnit := 2 / tbl.JumpUnit()
	blockStarts := make([]int, len(blocks))
	for iter := 0; ; iter++ {
		if iter == maxEncodeIterations {
			return nil, nil, &errz.JumpEncodingError{Iterations: iter}
		}

		// Assign offsets from the current argument widths.
		unit := 0
		prev := -1
		for _, fi := range flat {
			if fi.block != prev {
				for b := prev + 1; b <= fi.block; b++ {
					blockStarts[b] = unit
				}
				prev = fi.block
			}
			unit += width(fi)
		}
		for b := prev + 1; b < len(blocks); b++ {
			blockStarts[b] = unit
		}

		// Re-resolve jumps against those offsets.
		changed := false
		unit = 0
		for i := range flat {
			fi := &flat[i]
			w := width(*fi)
			unit += w
			if fi.jump < 0 {
				continue
			}
			target := blockStarts[fi.jump]
			var arg int
			if fi.info.Kind == op.ArgJumpRel {
				arg = (target - unit) * argPerUnit
			} else {
				arg = target * argPerUnit
			}
			if fi.override == 0 && w != instrsize(arg) {
				changed = true
			}
			fi.arg = arg
		}
		if !changed {
			break
		}
	}

	offsets = make([]int, len(flat))
	unit := 0
	for i, fi := range flat {
		offsets[i] = unit
		w := width(fi)
		unit += w
		for j := w - 1; j >= 0; j-- {
			c := op.ExtendedArg
			if j == 0 {
				c = fi.info.Code
			}
			codeBytes = append(codeBytes, byte(c), byte(uint32(fi.arg)>>(8*j)))
		}
	}
	return codeBytes, offsets, nil
}

func toFlat(in code.Instruction, block, nblocks int, tbl *op.Table) (flatInstr, error) {
	c, ok := tbl.ByName(in.Name)
	if !ok {
		return flatInstr{}, fmt.Errorf("opcode %q does not exist in version %s", in.Name, tbl.Version())
	}
	info, _ := tbl.Lookup(c)
	fi := flatInstr{info: info, override: in.EncUnits, block: block, jump: -1}
	switch a := in.Arg.(type) {
	case code.NoArg:
		fi.arg = int(a.Value)
	case code.ConstRef:
		fi.arg = int(a.Index)
	case code.NameRef:
		fi.arg = int(a.Index)
	case code.VarRef:
		fi.arg = int(a.Index)
	case code.FreeRef:
		fi.arg = int(a.Index)
	case code.CompareArg:
		v, ok := tbl.ArgForCompare(a.Op)
		if !ok {
			return flatInstr{}, fmt.Errorf("compare operator %s does not exist in version %s", a.Op, tbl.Version())
		}
		fi.arg = v
	case code.IntArg:
		fi.arg = int(a.Value)
	case code.JumpRef:
		if a.Block < 0 || a.Block >= nblocks {
			return flatInstr{}, fmt.Errorf("jump to block %d of %d", a.Block, nblocks)
		}
		fi.jump = a.Block
		fi.arg = 1
	default:
		return flatInstr{}, fmt.Errorf("opcode %q has argument of unsupported type %T", in.Name, in.Arg)
	}
	return fi, nil
}

func width(fi flatInstr) int {
	if fi.override > 0 {
		return fi.override
	}
	return instrsize(fi.arg)
}

// instrsize is the minimum number of code units needed to encode an
// argument, counting EXTENDED_ARG prefixes. Negative arguments wrap to
// the full 32-bit width.
func instrsize(arg int) int {
	switch {
	case arg < 0:
		return 4
	case arg <= 0xFF:
		return 1
	case arg <= 0xFFFF:
		return 2
	case arg <= 0xFFFFFF:
		return 3
	default:
		return 4
	}
}
