package codec

import (
	"fmt"
	"sort"

	"github.com/cloudcmds/codedata/code"
	"github.com/cloudcmds/codedata/linetable"
	"github.com/cloudcmds/codedata/op"
)

// FromBinary decodes a raw code object into block-structured form,
// descending into nested code objects among the constants.
func FromBinary(raw *Raw) (*code.Code, error) {
	tbl, err := op.TableFor(raw.Version)
	if err != nil {
		return nil, err
	}

	instrs, err := decodeInstructions(raw.Code, tbl)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", raw.Name, err)
	}
	blocks, err := buildBlocks(instrs, tbl)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", raw.Name, err)
	}
	unitLines, err := linetable.Decode(raw.LineTable, raw.Version, raw.FirstLine, len(raw.Code)/2)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", raw.Name, err)
	}

	flagNames, err := op.FlagsToNames(raw.Flags)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", raw.Name, err)
	}
	args, flagNames, err := splitArgFlags(raw, flagNames)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", raw.Name, err)
	}

	consts := make([]code.Constant, len(raw.Consts))
	for i, rc := range raw.Consts {
		switch v := rc.(type) {
		case *Raw:
			nested, err := FromBinary(v)
			if err != nil {
				return nil, err
			}
			consts[i] = code.CodeConst{Code: nested}
		case code.Constant:
			consts[i] = v
		default:
			return nil, fmt.Errorf("decode %s: constant %d has unsupported type %T", raw.Name, i, rc)
		}
	}

	return &code.Code{
		Version:   raw.Version,
		Name:      raw.Name,
		Filename:  raw.Filename,
		FirstLine: raw.FirstLine,
		Flags:     flagNames,
		Args:      args,
		Blocks:    blocks,
		Constants: consts,
		Names:     raw.Names,
		Varnames:  raw.Varnames,
		Freevars:  raw.Freevars,
		Cellvars:  raw.Cellvars,
		StackSize: raw.StackSize,
		Lines:     contractLines(unitLines, instrs),
	}, nil
}

// ToBinary encodes a block-structured code object back into its raw
// binary fields. For a code object produced by FromBinary, the result
// matches the original input byte for byte.
func ToBinary(c *code.Code) (*Raw, error) {
	tbl, err := op.TableFor(c.Version)
	if err != nil {
		return nil, err
	}

	codeBytes, offsets, err := linearize(c.Blocks, tbl)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", c.Name, err)
	}
	if err := c.Lines.Validate(len(offsets)); err != nil {
		return nil, fmt.Errorf("encode %s: %w", c.Name, err)
	}
	lt, err := linetable.Encode(expandLines(c.Lines, offsets, len(codeBytes)/2), c.Version, c.FirstLine)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", c.Name, err)
	}

	bits, err := op.NamesToFlags(joinArgFlags(c))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", c.Name, err)
	}

	consts := make([]any, len(c.Constants))
	for i, cst := range c.Constants {
		if cc, ok := cst.(code.CodeConst); ok {
			nested, err := ToBinary(cc.Code)
			if err != nil {
				return nil, err
			}
			consts[i] = nested
		} else {
			consts[i] = cst
		}
	}

	return &Raw{
		Version:         c.Version,
		Name:            c.Name,
		Filename:        c.Filename,
		FirstLine:       c.FirstLine,
		Flags:           bits,
		ArgCount:        c.Args.PosOnly + c.Args.PosOrKw,
		PosOnlyArgCount: c.Args.PosOnly,
		KwOnlyArgCount:  c.Args.KwOnly,
		NLocals:         len(c.Varnames),
		StackSize:       c.StackSize,
		Code:            codeBytes,
		LineTable:       lt,
		Consts:          consts,
		Names:           c.Names,
		Varnames:        c.Varnames,
		Freevars:        c.Freevars,
		Cellvars:        c.Cellvars,
	}, nil
}

// splitArgFlags folds the VARARGS and VARKEYWORDS flags into Args and
// strips NOFREE, which is fully determined by the cellvars and freevars
// tables. The remaining flag names come back sorted.
func splitArgFlags(raw *Raw, flagNames []string) (code.Args, []string, error) {
	if raw.PosOnlyArgCount > raw.ArgCount {
		return code.Args{}, nil, fmt.Errorf("posonlyargcount %d exceeds argcount %d", raw.PosOnlyArgCount, raw.ArgCount)
	}
	args := code.Args{
		PosOnly: raw.PosOnlyArgCount,
		PosOrKw: raw.ArgCount - raw.PosOnlyArgCount,
		KwOnly:  raw.KwOnlyArgCount,
	}
	noFree := false
	kept := flagNames[:0]
	for _, f := range flagNames {
		switch f {
		case "VARARGS":
			args.VarArg = true
		case "VARKEYWORDS":
			args.KwArg = true
		case "NOFREE":
			noFree = true
		default:
			kept = append(kept, f)
		}
	}
	if wantNoFree := len(raw.Freevars) == 0 && len(raw.Cellvars) == 0; noFree != wantNoFree {
		return code.Args{}, nil, fmt.Errorf("NOFREE flag is %v with %d cellvars and %d freevars",
			noFree, len(raw.Cellvars), len(raw.Freevars))
	}
	sort.Strings(kept)
	return args, kept, nil
}

func joinArgFlags(c *code.Code) []string {
	names := make([]string, 0, len(c.Flags)+3)
	names = append(names, c.Flags...)
	if c.Args.VarArg {
		names = append(names, "VARARGS")
	}
	if c.Args.KwArg {
		names = append(names, "VARKEYWORDS")
	}
	if len(c.Freevars) == 0 && len(c.Cellvars) == 0 {
		names = append(names, "NOFREE")
	}
	return names
}

// contractLines converts a code-unit mapping to instruction index
// space. Each instruction takes the location of its first code unit,
// the unit CPython records line information against.
func contractLines(m linetable.Mapping, instrs []decoded) linetable.Mapping {
	var out linetable.Mapping
	for i, in := range instrs {
		loc, ok := m.Lookup(in.Start / 2)
		if !ok {
			loc = linetable.NoLocation()
		}
		if n := len(out); n > 0 && out[n-1].Location == loc && out[n-1].End == i {
			out[n-1].End = i + 1
		} else {
			out = append(out, linetable.Entry{Start: i, End: i + 1, Location: loc})
		}
	}
	return out
}

// expandLines converts an instruction index mapping back to code units
// using the final offset assignment from linearize.
func expandLines(m linetable.Mapping, offsets []int, totalUnits int) linetable.Mapping {
	unitAt := func(instr int) int {
		if instr >= len(offsets) {
			return totalUnits
		}
		return offsets[instr]
	}
	out := make(linetable.Mapping, 0, len(m))
	for _, e := range m {
		start, end := unitAt(e.Start), unitAt(e.End)
		if start == end {
			continue
		}
		out = append(out, linetable.Entry{Start: start, End: end, Location: e.Location})
	}
	return out
}
