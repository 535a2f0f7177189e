package code

// Normalize returns a copy of c with every constant that no instruction
// references removed and the remaining ConstRef indices renumbered, and
// with recorded encoding widths cleared so re-encoding is minimal.
// Nested code objects are normalized independently. The result compares
// equal under Equal when applied twice.
func Normalize(c *Code) *Code {
	used := make(map[uint32]bool)
	for _, blk := range c.Blocks {
		for _, in := range blk {
			if ref, ok := in.Arg.(ConstRef); ok {
				used[ref.Index] = true
			}
		}
	}

	remap := make(map[uint32]uint32, len(used))
	consts := make([]Constant, 0, len(used))
	for i, cst := range c.Constants {
		if !used[uint32(i)] {
			continue
		}
		remap[uint32(i)] = uint32(len(consts))
		consts = append(consts, normalizeConstant(cst))
	}

	blocks := make([]Block, len(c.Blocks))
	for bi, blk := range c.Blocks {
		out := make(Block, len(blk))
		for i, in := range blk {
			in.EncUnits = 0
			if ref, ok := in.Arg.(ConstRef); ok {
				if idx, ok := remap[ref.Index]; ok {
					in.Arg = ConstRef{Index: idx}
				}
			}
			out[i] = in
		}
		blocks[bi] = out
	}

	out := *c
	out.Blocks = blocks
	out.Constants = consts
	return &out
}

func normalizeConstant(cst Constant) Constant {
	switch v := cst.(type) {
	case CodeConst:
		return CodeConst{Code: Normalize(v.Code)}
	case Tuple:
		out := make(Tuple, len(v))
		for i, e := range v {
			out[i] = normalizeConstant(e)
		}
		return out
	case FrozenSet:
		out := make(FrozenSet, len(v))
		for i, e := range v {
			out[i] = normalizeConstant(e)
		}
		return out
	default:
		return cst
	}
}
