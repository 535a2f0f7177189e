// Package code defines the structured, editable form of a compiled
// code object: instructions grouped into basic blocks with symbolic
// jump targets, a typed constant pool, and normalized line mappings.
package code

import (
	"fmt"
	"strings"

	"github.com/cloudcmds/codedata/linetable"
	"github.com/cloudcmds/codedata/op"
)

// Args describes the calling convention of a function code object. The
// parameter names are not duplicated here; they are the leading entries
// of Varnames, in the order positional-only, positional-or-keyword,
// *args, keyword-only, **kwargs.
type Args struct {
	PosOnly int
	PosOrKw int
	VarArg  bool
	KwOnly  int
	KwArg   bool
}

// Count reports how many leading Varnames entries are parameters.
func (a Args) Count() int {
	n := a.PosOnly + a.PosOrKw + a.KwOnly
	if a.VarArg {
		n++
	}
	if a.KwArg {
		n++
	}
	return n
}

func (a Args) key(b *strings.Builder) {
	fmt.Fprintf(b, "%d,%d,%v,%d,%v", a.PosOnly, a.PosOrKw, a.VarArg, a.KwOnly, a.KwArg)
}

// Flags that mark a code object as a function body.
var fnFlags = []string{"NEWLOCALS", "OPTIMIZED"}

// Code is a compiled code object in block-structured form. It carries
// everything needed to reproduce the original flat encoding byte for
// byte, but jumps reference blocks and line numbers are absolute.
type Code struct {
	Version   op.Version
	Name      string
	Filename  string
	FirstLine int

	// Flags holds CPython flag names, sorted. VARARGS and VARKEYWORDS
	// live in Args instead, and NOFREE is derived from the cellvars and
	// freevars tables, so none of the three appear here.
	Flags []string

	Args      Args
	Blocks    []Block
	Constants []Constant

	Names    []string
	Varnames []string
	Freevars []string
	Cellvars []string

	StackSize int
	Lines     linetable.Mapping
}

// HasFlag reports whether the named flag is set.
func (c *Code) HasFlag(name string) bool {
	for _, f := range c.Flags {
		if f == name {
			return true
		}
	}
	return false
}

// IsFunction reports whether this code object is a function body, as
// opposed to a module or class body.
func (c *Code) IsFunction() bool {
	for _, f := range fnFlags {
		if !c.HasFlag(f) {
			return false
		}
	}
	return true
}

// FunctionType returns "generator", "coroutine" or "async generator"
// for function bodies carrying the corresponding flag, and "" otherwise.
func (c *Code) FunctionType() string {
	if !c.IsFunction() {
		return ""
	}
	switch {
	case c.HasFlag("ASYNC_GENERATOR"):
		return "async generator"
	case c.HasFlag("COROUTINE"):
		return "coroutine"
	case c.HasFlag("GENERATOR"):
		return "generator"
	}
	return ""
}

// Docstring returns the docstring of a function body. CPython stores it
// as the first constant when it is a string.
func (c *Code) Docstring() (string, bool) {
	if !c.IsFunction() || len(c.Constants) == 0 {
		return "", false
	}
	s, ok := c.Constants[0].(Str)
	if !ok {
		return "", false
	}
	return string(s), true
}

// InstructionCount returns the total number of instructions across all
// blocks.
func (c *Code) InstructionCount() int {
	n := 0
	for _, blk := range c.Blocks {
		n += len(blk)
	}
	return n
}

func (c *Code) key(b *strings.Builder) {
	fmt.Fprintf(b, "%s|%q|%q|%d|", c.Version, c.Name, c.Filename, c.FirstLine)
	b.WriteString(strings.Join(c.Flags, ","))
	b.WriteString("|")
	c.Args.key(b)
	b.WriteString("|")
	for _, blk := range c.Blocks {
		blk.key(b)
	}
	b.WriteString("|")
	for i, cst := range c.Constants {
		if i > 0 {
			b.WriteString(",")
		}
		cst.Key(b)
	}
	fmt.Fprintf(b, "|%q|%q|%q|%q|%d|", c.Names, c.Varnames, c.Freevars, c.Cellvars, c.StackSize)
	c.Lines.Key(b)
}
