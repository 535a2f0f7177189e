// Package jsondata serializes code objects to a plain JSON tree and
// back. Nested code objects are flattened into one array and referenced
// by index; constants are tagged unions so every value kind survives
// the trip, including arbitrary-precision ints, negative zero and NaN.
package jsondata

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"

	"github.com/cloudcmds/codedata/code"
	"github.com/cloudcmds/codedata/linetable"
	"github.com/cloudcmds/codedata/op"
)

// Marshal converts a code object into its JSON representation.
func Marshal(c *code.Code) ([]byte, error) {
	state, err := stateFromCode(c)
	if err != nil {
		return nil, err
	}
	return json.Marshal(state)
}

// MarshalIndent is Marshal with indented output.
func MarshalIndent(c *code.Code) ([]byte, error) {
	state, err := stateFromCode(c)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(state, "", "  ")
}

// Unmarshal converts a JSON representation back into a code object.
func Unmarshal(data []byte) (*code.Code, error) {
	var state codeState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return codeFromState(&state)
}

// Serialization types

type codeState struct {
	Codes []*codeDef `json:"codes"`
}

type codeDef struct {
	Version   string             `json:"version"`
	Name      string             `json:"name"`
	Filename  string             `json:"filename"`
	FirstLine int                `json:"first_line"`
	Flags     []string           `json:"flags,omitempty"`
	Args      argsDef            `json:"args"`
	Blocks    [][]instructionDef `json:"blocks"`
	Constants []json.RawMessage  `json:"constants,omitempty"`
	Names     []string           `json:"names,omitempty"`
	Varnames  []string           `json:"varnames,omitempty"`
	Freevars  []string           `json:"freevars,omitempty"`
	Cellvars  []string           `json:"cellvars,omitempty"`
	StackSize int                `json:"stack_size"`
	Lines     []lineDef          `json:"lines,omitempty"`
}

type argsDef struct {
	PosOnly int  `json:"pos_only,omitempty"`
	PosOrKw int  `json:"pos_or_kw,omitempty"`
	VarArg  bool `json:"var_arg,omitempty"`
	KwOnly  int  `json:"kw_only,omitempty"`
	KwArg   bool `json:"kw_arg,omitempty"`
}

type instructionDef struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Value int64  `json:"value,omitempty"`
	Op    string `json:"op,omitempty"`
	Width int    `json:"width,omitempty"`
}

type lineDef struct {
	Start   int  `json:"start"`
	End     int  `json:"end"`
	Line    *int `json:"line,omitempty"`
	EndLine *int `json:"end_line,omitempty"`
	Col     *int `json:"col,omitempty"`
	EndCol  *int `json:"end_col,omitempty"`
}

type taggedDef struct {
	Type string `json:"type"`
}

type boolDef struct {
	Type  string `json:"type"`
	Value bool   `json:"value"`
}

type intDef struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

type floatDef struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type complexDef struct {
	Type string `json:"type"`
	Real string `json:"real"`
	Imag string `json:"imag"`
}

type strDef struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type bytesDef struct {
	Type  string `json:"type"`
	Value []byte `json:"value"`
}

type seqDef struct {
	Type  string            `json:"type"`
	Value []json.RawMessage `json:"value"`
}

type codeRefDef struct {
	Type      string `json:"type"`
	CodeIndex int    `json:"code_index"`
}

func stateFromCode(c *code.Code) (*codeState, error) {
	var all []*code.Code
	index := make(map[*code.Code]int)
	var flatten func(*code.Code)
	flatten = func(c *code.Code) {
		index[c] = len(all)
		all = append(all, c)
		var walk func(code.Constant)
		walk = func(cst code.Constant) {
			switch v := cst.(type) {
			case code.CodeConst:
				flatten(v.Code)
			case code.Tuple:
				for _, e := range v {
					walk(e)
				}
			case code.FrozenSet:
				for _, e := range v {
					walk(e)
				}
			}
		}
		for _, cst := range c.Constants {
			walk(cst)
		}
	}
	flatten(c)

	state := &codeState{Codes: make([]*codeDef, len(all))}
	for i, c := range all {
		def, err := defFromCode(c, index)
		if err != nil {
			return nil, err
		}
		state.Codes[i] = def
	}
	return state, nil
}

func defFromCode(c *code.Code, index map[*code.Code]int) (*codeDef, error) {
	blocks := make([][]instructionDef, len(c.Blocks))
	for bi, blk := range c.Blocks {
		defs := make([]instructionDef, len(blk))
		for j, in := range blk {
			d, err := defFromInstruction(in)
			if err != nil {
				return nil, err
			}
			defs[j] = d
		}
		blocks[bi] = defs
	}

	constants := make([]json.RawMessage, len(c.Constants))
	for j, cst := range c.Constants {
		raw, err := marshalConstant(cst, index)
		if err != nil {
			return nil, err
		}
		constants[j] = raw
	}

	lines := make([]lineDef, len(c.Lines))
	for j, e := range c.Lines {
		lines[j] = lineDef{
			Start:   e.Start,
			End:     e.End,
			Line:    optInt(e.Line),
			EndLine: optInt(e.EndLine),
			Col:     optInt(e.Col),
			EndCol:  optInt(e.EndCol),
		}
	}

	return &codeDef{
		Version:   c.Version.String(),
		Name:      c.Name,
		Filename:  c.Filename,
		FirstLine: c.FirstLine,
		Flags:     c.Flags,
		Args: argsDef{
			PosOnly: c.Args.PosOnly,
			PosOrKw: c.Args.PosOrKw,
			VarArg:  c.Args.VarArg,
			KwOnly:  c.Args.KwOnly,
			KwArg:   c.Args.KwArg,
		},
		Blocks:    blocks,
		Constants: constants,
		Names:     c.Names,
		Varnames:  c.Varnames,
		Freevars:  c.Freevars,
		Cellvars:  c.Cellvars,
		StackSize: c.StackSize,
		Lines:     lines,
	}, nil
}

func codeFromState(state *codeState) (*code.Code, error) {
	if len(state.Codes) == 0 {
		return nil, fmt.Errorf("no code objects in document")
	}
	// Children always follow their parent in the flattened array, so a
	// reverse pass builds children before anything references them.
	codes := make([]*code.Code, len(state.Codes))
	for i := len(state.Codes) - 1; i >= 0; i-- {
		c, err := codeFromDef(state.Codes[i], codes)
		if err != nil {
			return nil, err
		}
		codes[i] = c
	}
	return codes[0], nil
}

func codeFromDef(def *codeDef, codes []*code.Code) (*code.Code, error) {
	version, err := op.ParseVersion(def.Version)
	if err != nil {
		return nil, err
	}

	blocks := make([]code.Block, len(def.Blocks))
	for bi, defs := range def.Blocks {
		blk := make(code.Block, len(defs))
		for j, d := range defs {
			in, err := instructionFromDef(d)
			if err != nil {
				return nil, err
			}
			blk[j] = in
		}
		blocks[bi] = blk
	}

	constants := make([]code.Constant, len(def.Constants))
	for j, raw := range def.Constants {
		cst, err := unmarshalConstant(raw, codes)
		if err != nil {
			return nil, err
		}
		constants[j] = cst
	}

	lines := make(linetable.Mapping, len(def.Lines))
	for j, d := range def.Lines {
		lines[j] = linetable.Entry{
			Start: d.Start,
			End:   d.End,
			Location: linetable.Location{
				Line:    fromOpt(d.Line),
				EndLine: fromOpt(d.EndLine),
				Col:     fromOpt(d.Col),
				EndCol:  fromOpt(d.EndCol),
			},
		}
	}

	return &code.Code{
		Version:   version,
		Name:      def.Name,
		Filename:  def.Filename,
		FirstLine: def.FirstLine,
		Flags:     def.Flags,
		Args: code.Args{
			PosOnly: def.Args.PosOnly,
			PosOrKw: def.Args.PosOrKw,
			VarArg:  def.Args.VarArg,
			KwOnly:  def.Args.KwOnly,
			KwArg:   def.Args.KwArg,
		},
		Blocks:    blocks,
		Constants: constants,
		Names:     def.Names,
		Varnames:  def.Varnames,
		Freevars:  def.Freevars,
		Cellvars:  def.Cellvars,
		StackSize: def.StackSize,
		Lines:     lines,
	}, nil
}

func defFromInstruction(in code.Instruction) (instructionDef, error) {
	d := instructionDef{Name: in.Name, Width: in.EncUnits}
	switch a := in.Arg.(type) {
	case code.NoArg:
		d.Kind, d.Value = "none", int64(a.Value)
	case code.ConstRef:
		d.Kind, d.Value = "const", int64(a.Index)
	case code.NameRef:
		d.Kind, d.Value = "name", int64(a.Index)
	case code.VarRef:
		d.Kind, d.Value = "var", int64(a.Index)
	case code.FreeRef:
		d.Kind, d.Value = "free", int64(a.Index)
	case code.JumpRef:
		d.Kind, d.Value = "jump", int64(a.Block)
	case code.CompareArg:
		d.Kind, d.Op = "compare", a.Op.String()
	case code.IntArg:
		d.Kind, d.Value = "int", int64(a.Value)
	default:
		return d, fmt.Errorf("instruction %s has argument of unsupported type %T", in.Name, in.Arg)
	}
	return d, nil
}

func instructionFromDef(d instructionDef) (code.Instruction, error) {
	in := code.Instruction{Name: d.Name, EncUnits: d.Width}
	switch d.Kind {
	case "none":
		in.Arg = code.NoArg{Value: uint32(d.Value)}
	case "const":
		in.Arg = code.ConstRef{Index: uint32(d.Value)}
	case "name":
		in.Arg = code.NameRef{Index: uint32(d.Value)}
	case "var":
		in.Arg = code.VarRef{Index: uint32(d.Value)}
	case "free":
		in.Arg = code.FreeRef{Index: uint32(d.Value)}
	case "jump":
		in.Arg = code.JumpRef{Block: int(d.Value)}
	case "compare":
		cmp, err := parseCompare(d.Op)
		if err != nil {
			return in, err
		}
		in.Arg = code.CompareArg{Op: cmp}
	case "int":
		in.Arg = code.IntArg{Value: uint32(d.Value)}
	default:
		return in, fmt.Errorf("instruction %s has unknown argument kind %q", d.Name, d.Kind)
	}
	return in, nil
}

func parseCompare(s string) (op.Compare, error) {
	for c := op.CompareLT; c <= op.CompareBad; c++ {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown compare operator %q", s)
}

func marshalConstant(cst code.Constant, index map[*code.Code]int) (json.RawMessage, error) {
	switch v := cst.(type) {
	case code.None:
		return json.Marshal(taggedDef{Type: "none"})
	case code.Ellipsis:
		return json.Marshal(taggedDef{Type: "ellipsis"})
	case code.Bool:
		return json.Marshal(boolDef{Type: "bool", Value: bool(v)})
	case code.Int:
		return json.Marshal(intDef{Type: "int", Value: json.RawMessage(v.Value.String())})
	case code.Float:
		return json.Marshal(floatDef{Type: "float", Value: formatJSONFloat(float64(v))})
	case code.Complex:
		return json.Marshal(complexDef{
			Type: "complex",
			Real: formatJSONFloat(real(complex128(v))),
			Imag: formatJSONFloat(imag(complex128(v))),
		})
	case code.Str:
		return json.Marshal(strDef{Type: "str", Value: string(v)})
	case code.Bytes:
		return json.Marshal(bytesDef{Type: "bytes", Value: []byte(v)})
	case code.Tuple:
		elems, err := marshalElements([]code.Constant(v), index)
		if err != nil {
			return nil, err
		}
		return json.Marshal(seqDef{Type: "tuple", Value: elems})
	case code.FrozenSet:
		elems, err := marshalElements([]code.Constant(v), index)
		if err != nil {
			return nil, err
		}
		return json.Marshal(seqDef{Type: "frozenset", Value: elems})
	case code.CodeConst:
		idx, ok := index[v.Code]
		if !ok {
			return nil, fmt.Errorf("nested code %s was not flattened", v.Code.Name)
		}
		return json.Marshal(codeRefDef{Type: "code", CodeIndex: idx})
	default:
		return nil, fmt.Errorf("unknown constant type: %T", cst)
	}
}

func marshalElements(cs []code.Constant, index map[*code.Code]int) ([]json.RawMessage, error) {
	elems := make([]json.RawMessage, len(cs))
	for i, e := range cs {
		raw, err := marshalConstant(e, index)
		if err != nil {
			return nil, err
		}
		elems[i] = raw
	}
	return elems, nil
}

func unmarshalConstant(raw json.RawMessage, codes []*code.Code) (code.Constant, error) {
	var tag taggedDef
	if err := json.Unmarshal(raw, &tag); err != nil {
		return nil, err
	}
	switch tag.Type {
	case "none":
		return code.None{}, nil
	case "ellipsis":
		return code.Ellipsis{}, nil
	case "bool":
		var def boolDef
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, err
		}
		return code.Bool(def.Value), nil
	case "int":
		var def intDef
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, err
		}
		n, ok := new(big.Int).SetString(string(def.Value), 10)
		if !ok {
			return nil, fmt.Errorf("invalid int constant %q", def.Value)
		}
		return code.Int{Value: n}, nil
	case "float":
		var def floatDef
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, err
		}
		f, err := strconv.ParseFloat(def.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float constant %q", def.Value)
		}
		return code.Float(f), nil
	case "complex":
		var def complexDef
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, err
		}
		re, err1 := strconv.ParseFloat(def.Real, 64)
		im, err2 := strconv.ParseFloat(def.Imag, 64)
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("invalid complex constant (%q, %q)", def.Real, def.Imag)
		}
		return code.Complex(complex(re, im)), nil
	case "str":
		var def strDef
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, err
		}
		return code.Str(def.Value), nil
	case "bytes":
		var def bytesDef
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, err
		}
		return code.Bytes(def.Value), nil
	case "tuple", "frozenset":
		var def seqDef
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, err
		}
		elems := make([]code.Constant, len(def.Value))
		for i, e := range def.Value {
			cst, err := unmarshalConstant(e, codes)
			if err != nil {
				return nil, err
			}
			elems[i] = cst
		}
		if tag.Type == "tuple" {
			return code.Tuple(elems), nil
		}
		return code.FrozenSet(elems), nil
	case "code":
		var def codeRefDef
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, err
		}
		if def.CodeIndex < 0 || def.CodeIndex >= len(codes) || codes[def.CodeIndex] == nil {
			return nil, fmt.Errorf("code constant references invalid index %d", def.CodeIndex)
		}
		return code.CodeConst{Code: codes[def.CodeIndex]}, nil
	default:
		return nil, fmt.Errorf("unknown constant type: %q", tag.Type)
	}
}

func formatJSONFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func optInt(v int) *int {
	if v == linetable.NoValue {
		return nil
	}
	out := v
	return &out
}

func fromOpt(p *int) int {
	if p == nil {
		return linetable.NoValue
	}
	return *p
}
