// Package codec converts between the flat binary layout of a compiled
// code object and the block-structured form in package code. Decoding
// folds EXTENDED_ARG prefixes, rebuilds basic blocks from jump targets,
// and normalizes the line table; encoding reverses each step and
// reproduces the input bytes exactly.
package codec

import (
	"bytes"
	"fmt"

	"github.com/cloudcmds/codedata/code"
	"github.com/cloudcmds/codedata/op"
)

// Raw is the binary-side view of a code object: the fields CPython
// marshals, with the instruction stream and line table still encoded.
// Consts entries are either code.Constant leaves or *Raw for nested
// code objects.
type Raw struct {
	Version op.Version

	Name      string
	Filename  string
	FirstLine int

	Flags           uint32
	ArgCount        int
	PosOnlyArgCount int
	KwOnlyArgCount  int
	NLocals         int
	StackSize       int

	Code      []byte
	LineTable []byte

	Consts   []any
	Names    []string
	Varnames []string
	Freevars []string
	Cellvars []string
}

// Equal reports whether two raw code objects are byte-for-byte and
// field-for-field identical. Constants compare by canonical key, so NaN
// payloads and negative zeros are honored the way the structured model
// honors them.
func (r *Raw) Equal(o *Raw) bool {
	if r == nil || o == nil {
		return r == o
	}
	if r.Version != o.Version ||
		r.Name != o.Name ||
		r.Filename != o.Filename ||
		r.FirstLine != o.FirstLine ||
		r.Flags != o.Flags ||
		r.ArgCount != o.ArgCount ||
		r.PosOnlyArgCount != o.PosOnlyArgCount ||
		r.KwOnlyArgCount != o.KwOnlyArgCount ||
		r.NLocals != o.NLocals ||
		r.StackSize != o.StackSize {
		return false
	}
	if !bytes.Equal(r.Code, o.Code) || !bytes.Equal(r.LineTable, o.LineTable) {
		return false
	}
	if len(r.Consts) != len(o.Consts) {
		return false
	}
	for i := range r.Consts {
		if !rawConstEqual(r.Consts[i], o.Consts[i]) {
			return false
		}
	}
	return stringsEqual(r.Names, o.Names) &&
		stringsEqual(r.Varnames, o.Varnames) &&
		stringsEqual(r.Freevars, o.Freevars) &&
		stringsEqual(r.Cellvars, o.Cellvars)
}

func rawConstEqual(a, b any) bool {
	switch av := a.(type) {
	case *Raw:
		bv, ok := b.(*Raw)
		return ok && av.Equal(bv)
	case code.Constant:
		bv, ok := b.(code.Constant)
		return ok && code.ConstKey(av) == code.ConstKey(bv)
	default:
		return false
	}
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (r *Raw) String() string {
	return fmt.Sprintf("<raw code %s at %s:%d (%s)>", r.Name, r.Filename, r.FirstLine, r.Version)
}
